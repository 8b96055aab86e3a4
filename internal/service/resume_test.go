package service

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumehub/api/internal/config"
	"resumehub/api/internal/models"
	"resumehub/api/internal/repository"
)

type memResumeStore struct {
	resumes map[string]models.Resume
	nextSeq map[string]int
}

func newMemResumeStore() *memResumeStore {
	return &memResumeStore{
		resumes: make(map[string]models.Resume),
		nextSeq: make(map[string]int),
	}
}

func (s *memResumeStore) Create(_ context.Context, resume models.Resume) (models.Resume, error) {
	s.nextSeq[resume.UserID]++
	resume.UserResumeID = s.nextSeq[resume.UserID]
	s.resumes[resume.ID] = resume
	return resume, nil
}

func (s *memResumeStore) GetByID(_ context.Context, id string) (models.Resume, error) {
	resume, ok := s.resumes[id]
	if !ok {
		return models.Resume{}, repository.ErrResumeNotFound
	}
	return resume, nil
}

func (s *memResumeStore) GetByOwnerSeq(_ context.Context, userID string, seq int) (models.Resume, error) {
	for _, resume := range s.resumes {
		if resume.UserID == userID && resume.UserResumeID == seq {
			return resume, nil
		}
	}
	return models.Resume{}, repository.ErrResumeNotFound
}

func (s *memResumeStore) List(_ context.Context, filter repository.ResumeFilter) ([]models.Resume, error) {
	var out []models.Resume
	for _, resume := range s.resumes {
		if filter.UserID != "" && resume.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && resume.Status != filter.Status {
			continue
		}
		out = append(out, resume)
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.Ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[j].CreatedAt.Before(out[i].CreatedAt)
	})
	return out, nil
}

func (s *memResumeStore) Update(_ context.Context, id string, title, introduction *string) (models.Resume, error) {
	resume, ok := s.resumes[id]
	if !ok {
		return models.Resume{}, repository.ErrResumeNotFound
	}
	if title != nil {
		resume.Title = *title
	}
	if introduction != nil {
		resume.Introduction = *introduction
	}
	s.resumes[id] = resume
	return resume, nil
}

func (s *memResumeStore) SetAttachmentKey(_ context.Context, id string, objectKey string) error {
	resume, ok := s.resumes[id]
	if !ok {
		return repository.ErrResumeNotFound
	}
	resume.AttachmentKey = &objectKey
	s.resumes[id] = resume
	return nil
}

func (s *memResumeStore) Delete(_ context.Context, id string) error {
	if _, ok := s.resumes[id]; !ok {
		return repository.ErrResumeNotFound
	}
	delete(s.resumes, id)
	return nil
}

type memAttachmentStore struct {
	objects map[string][]byte
}

func newMemAttachmentStore() *memAttachmentStore {
	return &memAttachmentStore{objects: make(map[string][]byte)}
}

func (s *memAttachmentStore) Put(_ context.Context, objectKey string, data []byte, _ string) error {
	s.objects[objectKey] = data
	return nil
}

func (s *memAttachmentStore) PresignGet(_ context.Context, objectKey string) (string, error) {
	return "https://store.example/" + objectKey, nil
}

func newTestResumeService() (*ResumeService, *memResumeStore, *memAttachmentStore) {
	resumes := newMemResumeStore()
	attachments := newMemAttachmentStore()
	svc := NewResumeService(resumes, attachments, config.WorkflowConfig{MinIntroductionLength: 10}, zerolog.Nop())
	return svc, resumes, attachments
}

func longIntro() string {
	return strings.Repeat("experience ", 5)
}

func TestResumeCreate_SequencePerOwner(t *testing.T) {
	svc, _, _ := newTestResumeService()
	ctx := context.Background()

	first, err := svc.Create(ctx, "owner-1", "Backend Engineer", longIntro())
	require.NoError(t, err)
	second, err := svc.Create(ctx, "owner-1", "Platform Engineer", longIntro())
	require.NoError(t, err)
	other, err := svc.Create(ctx, "owner-2", "Designer", longIntro())
	require.NoError(t, err)

	assert.Equal(t, 1, first.UserResumeID)
	assert.Equal(t, 2, second.UserResumeID)
	assert.Equal(t, 1, other.UserResumeID)
	assert.Equal(t, models.ResumeStatusSubmitted, first.Status)
}

func TestResumeCreate_IntroductionTooShort(t *testing.T) {
	svc, _, _ := newTestResumeService()

	_, err := svc.Create(context.Background(), "owner-1", "Backend Engineer", "too short")
	assert.ErrorIs(t, err, ErrIntroductionTooShort)
}

func TestResumeList_RoleScoping(t *testing.T) {
	svc, _, _ := newTestResumeService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner-1", "A", longIntro())
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner-2", "B", longIntro())
	require.NoError(t, err)

	applicant := models.User{ID: "owner-1", Role: models.UserRoleApplicant}
	recruiter := models.User{ID: "rec-1", Role: models.UserRoleRecruiter}

	mine, err := svc.List(ctx, applicant, "", "")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.List(ctx, recruiter, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestResumeList_BadFilters(t *testing.T) {
	svc, _, _ := newTestResumeService()
	viewer := models.User{ID: "owner-1", Role: models.UserRoleApplicant}

	_, err := svc.List(context.Background(), viewer, "NOT_A_STATUS", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.List(context.Background(), viewer, "", "sideways")
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestResumeUpdate_Validation(t *testing.T) {
	svc, _, _ := newTestResumeService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", "A", longIntro())
	require.NoError(t, err)

	_, err = svc.Update(ctx, "owner-1", created.UserResumeID, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	short := "tiny"
	_, err = svc.Update(ctx, "owner-1", created.UserResumeID, nil, &short)
	assert.ErrorIs(t, err, ErrIntroductionTooShort)

	title := "Senior Backend Engineer"
	updated, err := svc.Update(ctx, "owner-1", created.UserResumeID, &title, nil)
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
}

func TestResumeAttach_DetectsTypeAndStoresKey(t *testing.T) {
	svc, resumes, attachments := newTestResumeService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", "A", longIntro())
	require.NoError(t, err)

	pdf := append([]byte("%PDF-1.7\n"), []byte("content")...)
	attached, err := svc.Attach(ctx, "owner-1", created.UserResumeID, pdf)
	require.NoError(t, err)
	require.NotNil(t, attached.AttachmentKey)
	assert.Contains(t, *attached.AttachmentKey, created.ID)
	assert.Len(t, attachments.objects, 1)

	stored, err := resumes.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AttachmentKey)

	viewer := models.User{ID: "owner-1", Role: models.UserRoleApplicant}
	url, err := svc.AttachmentURL(ctx, viewer, created.ID, created.UserResumeID)
	require.NoError(t, err)
	assert.Contains(t, url, *stored.AttachmentKey)
}

func TestResumeAttach_UnsupportedType(t *testing.T) {
	svc, _, _ := newTestResumeService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", "A", longIntro())
	require.NoError(t, err)

	_, err = svc.Attach(ctx, "owner-1", created.UserResumeID, []byte{0x00, 0x01, 0x02})
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestResumeAttachmentURL_NoAttachment(t *testing.T) {
	svc, _, _ := newTestResumeService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", "A", longIntro())
	require.NoError(t, err)

	viewer := models.User{ID: "owner-1", Role: models.UserRoleApplicant}
	_, err = svc.AttachmentURL(ctx, viewer, created.ID, created.UserResumeID)
	assert.ErrorIs(t, err, ErrNoAttachment)
}

func TestResumeDelete_OwnerScoped(t *testing.T) {
	svc, _, _ := newTestResumeService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", "A", longIntro())
	require.NoError(t, err)

	_, err = svc.Delete(ctx, "owner-2", created.UserResumeID)
	assert.ErrorIs(t, err, repository.ErrResumeNotFound)

	deleted, err := svc.Delete(ctx, "owner-1", created.UserResumeID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
}
