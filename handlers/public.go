package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-storefront/models"
	"food-storefront/statemachine"
)

const serviceName = "Food Storefront API"

// Health reports whether the store answers.
func (h *Handler) Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if _, err := h.store.ListUsers(c.Request.Context(), models.RoleAdmin); err != nil {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"service": serviceName,
		"version": "1.0.0",
	})
}

func (h *Handler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the " + serviceName,
		"docs":    "/api/orders/state-machine",
		"health":  "/health",
		"roles": []models.UserRole{
			models.RoleCustomer, models.RoleRestaurantOwner, models.RoleDeliveryDriver, models.RoleAdmin,
		},
	})
}

// StateMachineInfo returns the order lifecycle for documentation
func (h *Handler) StateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stateMachine":   statemachine.GetAllTransitions(),
		"terminalStates": statemachine.TerminalStates(),
		"adminOverride":  "restaurant owners and admins may set any status",
		"description":    "Order lifecycle state machine",
	})
}
