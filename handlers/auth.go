package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"food-storefront/middleware"
	"food-storefront/models"
	"food-storefront/store"
	"food-storefront/validation"
)

// Register creates a new user account
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !h.bindAndValidate(c, validation.Registration, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// Check email uniqueness
	if _, err := h.store.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
		respondError(c, http.StatusConflict, "User already exists with this email")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		respondServerError(c, "Server error during registration", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		respondServerError(c, "Failed to hash password", err)
		return
	}

	user := models.User{
		ID:           models.NewID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		Role:         req.Role,
		Preferences:  models.Preferences{Cuisines: []string{}, DietaryRestrictions: []string{}, Notifications: true},
		IsActive:     true,
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	if err := h.store.CreateUser(c.Request.Context(), &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			respondError(c, http.StatusConflict, "User already exists with this email")
			return
		}
		respondServerError(c, "Server error during registration", err)
		return
	}

	token, err := h.tokens.GenerateToken(&user)
	if err != nil {
		respondServerError(c, "Failed to generate token", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.bindAndValidate(c, validation.Login, &req) {
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		respondServerError(c, "Server error during login", err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !user.IsActive {
		respondError(c, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		respondServerError(c, "Failed to generate token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Me returns the account behind the bearer token
func (h *Handler) Me(c *gin.Context) {
	user, err := h.store.GetUser(c.Request.Context(), middleware.MustIdentity(c).UserID)
	if err != nil {
		respondStoreError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// Logout is stateless; the client drops its token.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}
