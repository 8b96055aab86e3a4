package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumehub/api/internal/models"
	"resumehub/api/internal/repository"
)

// memWorkflowStore mimics the transactional repository: the mutex stands in
// for the per-resume row lock, so each log entry sees the status that truly
// preceded it.
type memWorkflowStore struct {
	mu      sync.Mutex
	resumes map[string]models.Resume
	logs    []models.StatusLog
	fail    error
}

func newMemWorkflowStore(resumes ...models.Resume) *memWorkflowStore {
	s := &memWorkflowStore{resumes: make(map[string]models.Resume)}
	for _, resume := range resumes {
		s.resumes[resume.ID] = resume
	}
	return s
}

func (s *memWorkflowStore) UpdateStatusWithLog(
	_ context.Context,
	resumeID string,
	reviewerID string,
	newStatus models.ResumeStatus,
	reason string,
	logID string,
) (models.StatusLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return models.StatusLog{}, s.fail
	}

	resume, ok := s.resumes[resumeID]
	if !ok {
		return models.StatusLog{}, repository.ErrResumeNotFound
	}

	entry := models.StatusLog{
		ID:             logID,
		ResumeID:       resumeID,
		ReviewerID:     reviewerID,
		PreviousStatus: resume.Status,
		NewStatus:      newStatus,
		Reason:         reason,
		CreatedAt:      time.Now(),
	}

	resume.Status = newStatus
	s.resumes[resumeID] = resume
	s.logs = append(s.logs, entry)

	return entry, nil
}

func (s *memWorkflowStore) ListByResume(_ context.Context, resumeID string) ([]models.StatusLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}

	var out []models.StatusLog
	for i := len(s.logs) - 1; i >= 0; i-- {
		if s.logs[i].ResumeID == resumeID {
			out = append(out, s.logs[i])
		}
	}
	return out, nil
}

func (s *memWorkflowStore) status(resumeID string) models.ResumeStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumes[resumeID].Status
}

func (s *memWorkflowStore) logCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs)
}

func submittedResume(id string) models.Resume {
	return models.Resume{ID: id, UserID: "owner-1", Status: models.ResumeStatusSubmitted}
}

func newTestWorkflow(store *memWorkflowStore) *WorkflowService {
	return NewWorkflowService(store, store, zerolog.Nop())
}

func TestChangeStatus_InvalidStatus(t *testing.T) {
	store := newMemWorkflowStore(submittedResume("resume-1"))
	svc := newTestWorkflow(store)

	_, err := svc.ChangeStatus(context.Background(), "resume-1", "reviewer-1", "NOT_A_STATUS", "because")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// No partial effect: status untouched, no audit row.
	assert.Equal(t, models.ResumeStatusSubmitted, store.status("resume-1"))
	assert.Equal(t, 0, store.logCount())
}

func TestChangeStatus_MissingReason(t *testing.T) {
	store := newMemWorkflowStore(submittedResume("resume-1"))
	svc := newTestWorkflow(store)

	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := svc.ChangeStatus(context.Background(), "resume-1", "reviewer-1", models.ResumeStatusUnderReview, reason)
		assert.ErrorIs(t, err, ErrMissingReason)
	}

	assert.Equal(t, models.ResumeStatusSubmitted, store.status("resume-1"))
	assert.Equal(t, 0, store.logCount())
}

func TestChangeStatus_ResumeNotFound(t *testing.T) {
	store := newMemWorkflowStore()
	svc := newTestWorkflow(store)

	_, err := svc.ChangeStatus(context.Background(), "missing", "reviewer-1", models.ResumeStatusUnderReview, "passed screen")
	assert.ErrorIs(t, err, repository.ErrResumeNotFound)
}

func TestChangeStatus_RecordsTransition(t *testing.T) {
	store := newMemWorkflowStore(submittedResume("resume-1"))
	svc := newTestWorkflow(store)
	ctx := context.Background()

	entry, err := svc.ChangeStatus(ctx, "resume-1", "reviewer-1", models.ResumeStatusUnderReview, "passed screen")
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, models.ResumeStatusSubmitted, entry.PreviousStatus)
	assert.Equal(t, models.ResumeStatusUnderReview, entry.NewStatus)
	assert.Equal(t, "reviewer-1", entry.ReviewerID)
	assert.Equal(t, "passed screen", entry.Reason)
	assert.False(t, entry.CreatedAt.IsZero())

	assert.Equal(t, models.ResumeStatusUnderReview, store.status("resume-1"))

	history, err := svc.ListHistory(ctx, "resume-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entry.ID, history[0].ID)
}

func TestChangeStatus_PersistenceFailure(t *testing.T) {
	store := newMemWorkflowStore(submittedResume("resume-1"))
	store.fail = assert.AnError
	svc := newTestWorkflow(store)

	_, err := svc.ChangeStatus(context.Background(), "resume-1", "reviewer-1", models.ResumeStatusUnderReview, "passed screen")
	assert.ErrorIs(t, err, ErrPersistenceUnavailable)
}

func TestChangeStatus_ConcurrentTransitionsChain(t *testing.T) {
	store := newMemWorkflowStore(submittedResume("resume-1"))
	svc := newTestWorkflow(store)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := models.ResumeStatusUnderReview
			if i%2 == 1 {
				status = models.ResumeStatusInterview
			}
			_, err := svc.ChangeStatus(ctx, "resume-1", "reviewer-1", status, "batch review")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, err := svc.ListHistory(ctx, "resume-1")
	require.NoError(t, err)
	require.Len(t, history, n)

	// Most recent first; walking backwards, each record's previous status
	// must equal its predecessor's new status: one consistent chain, no
	// lost update.
	for i := len(history) - 1; i > 0; i-- {
		assert.Equal(t, history[i].NewStatus, history[i-1].PreviousStatus)
	}
	assert.Equal(t, models.ResumeStatusSubmitted, history[len(history)-1].PreviousStatus)
	assert.Equal(t, store.status("resume-1"), history[0].NewStatus)
}

func TestListHistory_Restartable(t *testing.T) {
	store := newMemWorkflowStore(submittedResume("resume-1"))
	svc := newTestWorkflow(store)
	ctx := context.Background()

	_, err := svc.ChangeStatus(ctx, "resume-1", "reviewer-1", models.ResumeStatusUnderReview, "passed screen")
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, "resume-1", "reviewer-1", models.ResumeStatusInterview, "strong candidate")
	require.NoError(t, err)

	first, err := svc.ListHistory(ctx, "resume-1")
	require.NoError(t, err)
	second, err := svc.ListHistory(ctx, "resume-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
