package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"install-schedule-backend/internal/mw"
	"install-schedule-backend/internal/negotiation"
	"install-schedule-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	svc     *negotiation.Service
	webpush *webpush.Options
	cache   *cache.Cache
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, svc *negotiation.Service, webpushOptions *webpush.Options, responseCache *cache.Cache) *Handler {
	return &Handler{
		store:   s,
		svc:     svc,
		webpush: webpushOptions,
		cache:   responseCache,
	}
}

// flushBooking drops one booking's cached reads after a successful mutation.
// Other bookings' negotiations are untouched, so their reads stay cached.
func (h *Handler) flushBooking(bookingID int64) {
	if h.cache != nil {
		mw.FlushBookingReads(h.cache, bookingID)
	}
}

// writeError maps domain errors onto HTTP responses: validation failures are
// 400 with the offending field, missing records are 404, and state conflicts
// (including lost optimistic races) are 409 carrying the current status so the
// client can refresh.
func writeError(c *gin.Context, err error) {
	var validationErr *store.ValidationError
	var notFoundErr *store.NotFoundError
	var stateErr *store.InvalidStateError

	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": validationErr.Reason, "field": validationErr.Field})
	case errors.As(err, &notFoundErr):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &stateErr):
		payload := gin.H{"error": stateErr.Reason}
		if stateErr.Current != "" {
			payload["status"] = stateErr.Current
		}
		c.AbortWithStatusJSON(http.StatusConflict, payload)
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
