package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"install-schedule-backend/internal/model"
)

type createBookingRequest struct {
	Reference    string `json:"reference"`
	CustomerName string `json:"customerName" binding:"required"`
	Postcode     string `json:"postcode"`
	ServiceType  string `json:"serviceType"`
}

// PostBooking handles POST /api/bookings. Bookings normally arrive through the
// platform poller; this is the manual path, minting a reference when the
// caller does not supply one.
func (h *Handler) PostBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Reference == "" {
		req.Reference = uuid.NewString()
	}

	booking := model.Booking{
		Reference:    req.Reference,
		CustomerName: req.CustomerName,
		Postcode:     req.Postcode,
		ServiceType:  req.ServiceType,
		Status:       model.BookingStatusPending,
	}
	if err := h.store.CreateBooking(c.Request.Context(), &booking); err != nil {
		writeError(c, err)
		return
	}

	h.flushBooking(booking.ID)
	c.JSON(http.StatusCreated, booking)
}

// GetBookingSummary handles GET /api/bookings/{booking_id}?role={role}. The
// derived state is relative to the asking role, defaulting to the customer
// view.
func (h *Handler) GetBookingSummary(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("booking_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	role := model.Role(c.DefaultQuery("role", string(model.RoleCustomer)))
	if !role.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "role must be customer or installer"})
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), bookingID, role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
