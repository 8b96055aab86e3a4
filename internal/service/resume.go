package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"resumehub/api/internal/attachment"
	"resumehub/api/internal/config"
	"resumehub/api/internal/ids"
	"resumehub/api/internal/models"
	"resumehub/api/internal/repository"
)

type ResumeStore interface {
	Create(ctx context.Context, resume models.Resume) (models.Resume, error)
	GetByID(ctx context.Context, id string) (models.Resume, error)
	GetByOwnerSeq(ctx context.Context, userID string, userResumeID int) (models.Resume, error)
	List(ctx context.Context, filter repository.ResumeFilter) ([]models.Resume, error)
	Update(ctx context.Context, id string, title, introduction *string) (models.Resume, error)
	SetAttachmentKey(ctx context.Context, id string, objectKey string) error
	Delete(ctx context.Context, id string) error
}

type AttachmentStore interface {
	Put(ctx context.Context, objectKey string, data []byte, contentType string) error
	PresignGet(ctx context.Context, objectKey string) (string, error)
}

var ErrEmptyUpdate = errors.New("nothing to update")

type ResumeService struct {
	resumes     ResumeStore
	attachments AttachmentStore
	minIntro    int
	log         zerolog.Logger
}

func NewResumeService(resumes ResumeStore, attachments AttachmentStore, cfg config.WorkflowConfig, log zerolog.Logger) *ResumeService {
	return &ResumeService{
		resumes:     resumes,
		attachments: attachments,
		minIntro:    cfg.MinIntroductionLength,
		log:         log,
	}
}

func (s *ResumeService) Create(ctx context.Context, ownerID, title, introduction string) (models.Resume, error) {
	if utf8.RuneCountInString(introduction) < s.minIntro {
		return models.Resume{}, ErrIntroductionTooShort
	}

	resume, err := s.resumes.Create(ctx, models.Resume{
		ID:           ids.New(),
		UserID:       ownerID,
		Title:        title,
		Introduction: introduction,
		Status:       models.ResumeStatusSubmitted,
	})
	if err != nil {
		return models.Resume{}, persistenceErr("create resume", err)
	}
	return resume, nil
}

// List returns the viewer's own resumes, or every resume when the viewer is
// a recruiter. Status filter and sort direction follow the query contract of
// the original API: empty means no filter / newest first.
func (s *ResumeService) List(ctx context.Context, viewer models.User, status, sort string) ([]models.Resume, error) {
	sort = strings.ToUpper(strings.TrimSpace(sort))
	if sort == "" {
		sort = "DESC"
	}
	if sort != "ASC" && sort != "DESC" {
		return nil, ErrInvalidSort
	}

	filter := repository.ResumeFilter{Ascending: sort == "ASC"}
	if viewer.Role != models.UserRoleRecruiter {
		filter.UserID = viewer.ID
	}
	if status != "" {
		st := models.ResumeStatus(strings.ToUpper(status))
		if !st.IsValid() {
			return nil, ErrInvalidStatus
		}
		filter.Status = st
	}

	resumes, err := s.resumes.List(ctx, filter)
	if err != nil {
		return nil, persistenceErr("list resumes", err)
	}
	return resumes, nil
}

// GetForViewer resolves a resume the way the caller addresses it: recruiters
// use the global id, applicants their own per-account sequence number.
func (s *ResumeService) GetForViewer(ctx context.Context, viewer models.User, globalID string, ownerSeq int) (models.Resume, error) {
	var (
		resume models.Resume
		err    error
	)
	if viewer.Role == models.UserRoleRecruiter {
		resume, err = s.resumes.GetByID(ctx, globalID)
	} else {
		resume, err = s.resumes.GetByOwnerSeq(ctx, viewer.ID, ownerSeq)
	}
	if err != nil {
		if errors.Is(err, repository.ErrResumeNotFound) {
			return models.Resume{}, err
		}
		return models.Resume{}, persistenceErr("get resume", err)
	}
	return resume, nil
}

func (s *ResumeService) Update(ctx context.Context, ownerID string, ownerSeq int, title, introduction *string) (models.Resume, error) {
	if title == nil && introduction == nil {
		return models.Resume{}, ErrEmptyUpdate
	}
	if introduction != nil && utf8.RuneCountInString(*introduction) < s.minIntro {
		return models.Resume{}, ErrIntroductionTooShort
	}

	resume, err := s.ownedResume(ctx, ownerID, ownerSeq)
	if err != nil {
		return models.Resume{}, err
	}

	updated, err := s.resumes.Update(ctx, resume.ID, title, introduction)
	if err != nil {
		if errors.Is(err, repository.ErrResumeNotFound) {
			return models.Resume{}, err
		}
		return models.Resume{}, persistenceErr("update resume", err)
	}
	return updated, nil
}

func (s *ResumeService) Delete(ctx context.Context, ownerID string, ownerSeq int) (models.Resume, error) {
	resume, err := s.ownedResume(ctx, ownerID, ownerSeq)
	if err != nil {
		return models.Resume{}, err
	}

	if err := s.resumes.Delete(ctx, resume.ID); err != nil {
		if errors.Is(err, repository.ErrResumeNotFound) {
			return models.Resume{}, err
		}
		return models.Resume{}, persistenceErr("delete resume", err)
	}
	return resume, nil
}

// Attach stores one document for the resume and records its object key. A
// later upload replaces the key; the old object is left to bucket lifecycle
// rules.
func (s *ResumeService) Attach(ctx context.Context, ownerID string, ownerSeq int, data []byte) (models.Resume, error) {
	result, err := attachment.DetectHead(head(data))
	if err != nil {
		return models.Resume{}, ErrUnsupportedFileType
	}

	resume, err := s.ownedResume(ctx, ownerID, ownerSeq)
	if err != nil {
		return models.Resume{}, err
	}

	objectKey := buildObjectKey(resume.ID, string(result.Type))
	if err := s.attachments.Put(ctx, objectKey, data, result.MIME); err != nil {
		return models.Resume{}, fmt.Errorf("store attachment: %w", err)
	}

	if err := s.resumes.SetAttachmentKey(ctx, resume.ID, objectKey); err != nil {
		if errors.Is(err, repository.ErrResumeNotFound) {
			return models.Resume{}, err
		}
		return models.Resume{}, persistenceErr("set attachment", err)
	}

	resume.AttachmentKey = &objectKey
	s.log.Info().Str("resume_id", resume.ID).Str("type", string(result.Type)).Msg("attachment stored")
	return resume, nil
}

func (s *ResumeService) AttachmentURL(ctx context.Context, viewer models.User, globalID string, ownerSeq int) (string, error) {
	resume, err := s.GetForViewer(ctx, viewer, globalID, ownerSeq)
	if err != nil {
		return "", err
	}
	if resume.AttachmentKey == nil {
		return "", ErrNoAttachment
	}
	return s.attachments.PresignGet(ctx, *resume.AttachmentKey)
}

func (s *ResumeService) ownedResume(ctx context.Context, ownerID string, ownerSeq int) (models.Resume, error) {
	resume, err := s.resumes.GetByOwnerSeq(ctx, ownerID, ownerSeq)
	if err != nil {
		if errors.Is(err, repository.ErrResumeNotFound) {
			return models.Resume{}, err
		}
		return models.Resume{}, persistenceErr("get resume", err)
	}
	return resume, nil
}

func buildObjectKey(resumeID string, ext string) string {
	datePrefix := time.Now().UTC().Format("2006/01/02")
	return path.Join(datePrefix, fmt.Sprintf("%s.%s", resumeID, ext))
}

func head(data []byte) []byte {
	if len(data) > 512 {
		return data[:512]
	}
	return data
}
