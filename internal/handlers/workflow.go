package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resumehub/api/internal/models"
)

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

type statusLogResponse struct {
	ID             string    `json:"id"`
	ResumeID       string    `json:"resumeId"`
	ReviewerID     string    `json:"reviewerId"`
	ReviewerName   string    `json:"reviewerName,omitempty"`
	PreviousStatus string    `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	Reason         string    `json:"reason"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toStatusLogResponse(entry models.StatusLog) statusLogResponse {
	return statusLogResponse{
		ID:             entry.ID,
		ResumeID:       entry.ResumeID,
		ReviewerID:     entry.ReviewerID,
		ReviewerName:   entry.ReviewerName,
		PreviousStatus: string(entry.PreviousStatus),
		NewStatus:      string(entry.NewStatus),
		Reason:         entry.Reason,
		CreatedAt:      entry.CreatedAt,
	}
}

// ChangeStatus is recruiter-only (enforced by the route's role gate).
// Recruiters always address resumes by global id.
func (h HandlerSet) ChangeStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.workflow.ChangeStatus(
		c.Request.Context(),
		c.Param("resumeId"),
		user.ID,
		models.ResumeStatus(req.Status),
		req.Reason,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toStatusLogResponse(entry))
}

func (h HandlerSet) ListStatusLogs(c *gin.Context) {
	logs, err := h.workflow.ListHistory(c.Request.Context(), c.Param("resumeId"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]statusLogResponse, 0, len(logs))
	for _, entry := range logs {
		resp = append(resp, toStatusLogResponse(entry))
	}

	c.JSON(http.StatusOK, resp)
}
