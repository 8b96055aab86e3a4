package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resumehub/api/internal/models"
)

const maxAttachmentBytes = 10 << 20

type createResumeRequest struct {
	Title        string `json:"title" binding:"required"`
	Introduction string `json:"introduction" binding:"required"`
}

type resumeResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	UserResumeID  int       `json:"userResumeId"`
	Title         string    `json:"title"`
	Introduction  string    `json:"introduction"`
	Status        string    `json:"status"`
	HasAttachment bool      `json:"hasAttachment"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toResumeResponse(resume models.Resume) resumeResponse {
	return resumeResponse{
		ID:            resume.ID,
		UserID:        resume.UserID,
		UserResumeID:  resume.UserResumeID,
		Title:         resume.Title,
		Introduction:  resume.Introduction,
		Status:        string(resume.Status),
		HasAttachment: resume.AttachmentKey != nil,
		CreatedAt:     resume.CreatedAt,
		UpdatedAt:     resume.UpdatedAt,
	}
}

// resumeRef reads the :resumeId path param. Applicants address resumes by
// their per-account sequence number, recruiters by the global id; the
// services pick whichever fits the caller's role.
func resumeRef(c *gin.Context) (globalID string, ownerSeq int) {
	param := c.Param("resumeId")
	seq, _ := strconv.Atoi(param)
	return param, seq
}

func (h HandlerSet) CreateResume(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resume, err := h.resumes.Create(c.Request.Context(), user.ID, req.Title, req.Introduction)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toResumeResponse(resume))
}

func (h HandlerSet) ListResumes(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	resumes, err := h.resumes.List(c.Request.Context(), user, c.Query("status"), c.Query("sort"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]resumeResponse, 0, len(resumes))
	for _, resume := range resumes {
		resp = append(resp, toResumeResponse(resume))
	}

	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) GetResume(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	globalID, ownerSeq := resumeRef(c)
	resume, err := h.resumes.GetForViewer(c.Request.Context(), user, globalID, ownerSeq)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResumeResponse(resume))
}

type updateResumeRequest struct {
	Title        *string `json:"title"`
	Introduction *string `json:"introduction"`
}

func (h HandlerSet) UpdateResume(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, ownerSeq := resumeRef(c)
	resume, err := h.resumes.Update(c.Request.Context(), user.ID, ownerSeq, req.Title, req.Introduction)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResumeResponse(resume))
}

func (h HandlerSet) DeleteResume(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	_, ownerSeq := resumeRef(c)
	resume, err := h.resumes.Delete(c.Request.Context(), user.ID, ownerSeq)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"userResumeId": resume.UserResumeID})
}

func (h HandlerSet) UploadAttachment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	if fileHeader.Size > maxAttachmentBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file_too_large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_unreadable"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAttachmentBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_unreadable"})
		return
	}
	if len(data) > maxAttachmentBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file_too_large"})
		return
	}

	_, ownerSeq := resumeRef(c)
	resume, err := h.resumes.Attach(c.Request.Context(), user.ID, ownerSeq, data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResumeResponse(resume))
}

func (h HandlerSet) DownloadAttachment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	globalID, ownerSeq := resumeRef(c)
	url, err := h.resumes.AttachmentURL(c.Request.Context(), user, globalID, ownerSeq)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
