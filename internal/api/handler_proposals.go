package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"install-schedule-backend/internal/model"
	"install-schedule-backend/internal/negotiation"
)

type submitProposalRequest struct {
	Role         string `json:"role" binding:"required"`
	ProposedDate string `json:"proposedDate" binding:"required"`
	TimeSlot     string `json:"timeSlot"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Message      string `json:"message"`
}

// PostProposal handles POST /api/bookings/{booking_id}/proposals.
func (h *Handler) PostProposal(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("booking_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req submitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.svc.Submit(c.Request.Context(), negotiation.SubmitRequest{
		BookingID:    bookingID,
		Role:         model.Role(req.Role),
		ProposedDate: req.ProposedDate,
		TimeSlot:     req.TimeSlot,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Message:      req.Message,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.flushBooking(proposal.BookingID)
	c.JSON(http.StatusCreated, proposal)
}

type respondProposalRequest struct {
	Role     string `json:"role" binding:"required"`
	Decision string `json:"decision" binding:"required"`
	Message  string `json:"message"`
}

// RespondProposal handles PATCH /api/proposals/{id}/response.
func (h *Handler) RespondProposal(c *gin.Context) {
	proposalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	var req respondProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.svc.Respond(c.Request.Context(), proposalID, model.Role(req.Role), req.Decision, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}

	h.flushBooking(proposal.BookingID)
	c.JSON(http.StatusOK, proposal)
}

// DeleteProposal handles DELETE /api/proposals/{id}?role={role}.
func (h *Handler) DeleteProposal(c *gin.Context) {
	proposalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	proposal, err := h.svc.Delete(c.Request.Context(), proposalID, model.Role(c.Query("role")))
	if err != nil {
		writeError(c, err)
		return
	}

	h.flushBooking(proposal.BookingID)
	c.Status(http.StatusNoContent)
}

// GetHistory handles GET /api/bookings/{booking_id}/proposals. Always 200; a
// booking with no negotiation yields an empty list.
func (h *Handler) GetHistory(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("booking_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	proposals, err := h.svc.History(c.Request.Context(), bookingID)
	if err != nil {
		writeError(c, err)
		return
	}
	if proposals == nil {
		proposals = []model.ScheduleProposal{}
	}
	c.JSON(http.StatusOK, proposals)
}

// GetActive handles GET /api/bookings/{booking_id}/negotiation. Always 200;
// the body is null when nothing is active.
func (h *Handler) GetActive(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("booking_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	proposal, err := h.svc.Active(c.Request.Context(), bookingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposal)
}
