package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"resumehub/api/internal/ids"
	"resumehub/api/internal/models"
	"resumehub/api/internal/repository"
)

// WorkflowStore performs the status mutation and the audit insert as one
// atomic unit, serialized per resume.
type WorkflowStore interface {
	UpdateStatusWithLog(
		ctx context.Context,
		resumeID string,
		reviewerID string,
		newStatus models.ResumeStatus,
		reason string,
		logID string,
	) (models.StatusLog, error)
}

type AuditStore interface {
	ListByResume(ctx context.Context, resumeID string) ([]models.StatusLog, error)
}

// WorkflowService guards résumé status transitions. Authorization (the
// reviewer role gate) happens in middleware before any call lands here.
type WorkflowService struct {
	resumes WorkflowStore
	audit   AuditStore
	log     zerolog.Logger
}

func NewWorkflowService(resumes WorkflowStore, audit AuditStore, log zerolog.Logger) *WorkflowService {
	return &WorkflowService{resumes: resumes, audit: audit, log: log}
}

func (s *WorkflowService) ChangeStatus(
	ctx context.Context,
	resumeID string,
	reviewerID string,
	newStatus models.ResumeStatus,
	reason string,
) (models.StatusLog, error) {
	if !newStatus.IsValid() {
		return models.StatusLog{}, ErrInvalidStatus
	}
	if strings.TrimSpace(reason) == "" {
		return models.StatusLog{}, ErrMissingReason
	}

	entry, err := s.resumes.UpdateStatusWithLog(ctx, resumeID, reviewerID, newStatus, reason, ids.New())
	if err != nil {
		if errors.Is(err, repository.ErrResumeNotFound) {
			return models.StatusLog{}, err
		}
		return models.StatusLog{}, persistenceErr("change status", err)
	}

	s.log.Info().
		Str("resume_id", entry.ResumeID).
		Str("reviewer_id", entry.ReviewerID).
		Str("from", string(entry.PreviousStatus)).
		Str("to", string(entry.NewStatus)).
		Msg("resume status changed")

	return entry, nil
}

// ListHistory returns the audit trail most recent first. It never mutates
// anything; repeated calls without intervening writes return the same
// sequence.
func (s *WorkflowService) ListHistory(ctx context.Context, resumeID string) ([]models.StatusLog, error) {
	logs, err := s.audit.ListByResume(ctx, resumeID)
	if err != nil {
		return nil, persistenceErr("list history", err)
	}
	return logs, nil
}
