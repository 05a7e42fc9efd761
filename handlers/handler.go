// Package handlers implements the storefront REST resources on gin.
package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"food-storefront/events"
	"food-storefront/metrics"
	"food-storefront/middleware"
	"food-storefront/models"
	"food-storefront/store"
	"food-storefront/validation"
)

const maxPageSize = 100

// Deps are the collaborators a Handler needs. Only Store and Tokens are
// required; the rest fall back to working defaults.
type Deps struct {
	Store       store.Store
	Tokens      *middleware.TokenIssuer
	Validator   *validation.Validator
	Events      events.Publisher
	Metrics     *metrics.Metrics
	Now         func() time.Time
	OrderNumber func(time.Time) string
	BcryptCost  int
}

type Handler struct {
	store       store.Store
	tokens      *middleware.TokenIssuer
	validator   *validation.Validator
	events      events.Publisher
	metrics     *metrics.Metrics
	now         func() time.Time
	orderNumber func(time.Time) string
	bcryptCost  int
}

func New(d Deps) *Handler {
	h := &Handler{
		store:       d.Store,
		tokens:      d.Tokens,
		validator:   d.Validator,
		events:      d.Events,
		metrics:     d.Metrics,
		now:         d.Now,
		orderNumber: d.OrderNumber,
		bcryptCost:  d.BcryptCost,
	}
	if h.validator == nil {
		h.validator = validation.New()
	}
	if h.events == nil {
		h.events = events.NopPublisher{}
	}
	if h.metrics == nil {
		h.metrics = metrics.New()
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.orderNumber == nil {
		h.orderNumber = models.NewOrderNumber
	}
	if h.bcryptCost == 0 {
		h.bcryptCost = bcrypt.DefaultCost
	}
	return h
}

// ── responses ────────────────────────────────────────────────────

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "details": err.Error()})
}

// respondServerError logs the cause and answers with a generic message.
func respondServerError(c *gin.Context, msg string, err error) {
	middleware.Entry(c).WithError(err).Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"message": msg})
}

// respondStoreError maps a failed lookup onto 404 or 500.
func respondStoreError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, notFound)
		return
	}
	respondServerError(c, "Server error", err)
}

func respondList(c *gin.Context, key string, items any, count int, total int64, p store.Page) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
		"total":   total,
		"page":    p.Page,
		"pages":   store.Pages(total, p.Limit),
		key:       items,
	})
}

// ── request helpers ──────────────────────────────────────────────

// bindAndValidate decodes the JSON body into dst and checks it against schema.
func (h *Handler) bindAndValidate(c *gin.Context, schema validation.Schema, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondValidation(c, err)
		return false
	}
	if err := h.validator.Validate(schema, dst); err != nil {
		respondValidation(c, err)
		return false
	}
	return true
}

// pathID returns the named path parameter, answering 404 when it cannot be
// an identifier.
func pathID(c *gin.Context, name, notFound string) (string, bool) {
	id := c.Param(name)
	if !models.IsValidID(id) {
		respondError(c, http.StatusNotFound, notFound)
		return "", false
	}
	return id, true
}

func parsePage(c *gin.Context, defaultLimit int) store.Page {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return store.Page{Page: page, Limit: limit}
}

// splitList parses a comma separated query value.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func queryFloat(c *gin.Context, name string) (*float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return &v, true
}

// publish sends an order event; failures are logged and never reach the client.
func (h *Handler) publish(c *gin.Context, kind string, o *models.Order, previous models.OrderStatus) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 5*time.Second)
	defer cancel()
	if err := h.events.Publish(ctx, events.NewOrderEvent(kind, o, previous)); err != nil {
		middleware.Entry(c).WithError(err).WithField("order", o.OrderNumber).Warn("failed to publish order event")
	}
}
