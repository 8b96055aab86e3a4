package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resumehub/api/internal/models"
)

var ErrResumeNotFound = errors.New("resume not found")

type ResumeRepository struct {
	pool *pgxpool.Pool
}

func NewResumeRepository(pool *pgxpool.Pool) *ResumeRepository {
	return &ResumeRepository{pool: pool}
}

const resumeColumns = `
	id, user_id, user_resume_id, title, introduction, status, attachment_key,
	created_at, updated_at
`

// Create assigns the per-owner sequence number inside the insert itself, so
// two concurrent creates by the same owner cannot pick the same number.
func (r *ResumeRepository) Create(ctx context.Context, resume models.Resume) (models.Resume, error) {
	const query = `
		INSERT INTO resumes (
			id, user_id, user_resume_id, title, introduction, status, created_at, updated_at
		) VALUES (
			$1, $2,
			(SELECT COALESCE(MAX(user_resume_id), 0) + 1 FROM resumes WHERE user_id = $2),
			$3, $4, $5, NOW(), NOW()
		)
		RETURNING user_resume_id, created_at, updated_at
	`

	row := r.pool.QueryRow(ctx, query,
		resume.ID,
		resume.UserID,
		resume.Title,
		resume.Introduction,
		resume.Status,
	)
	if err := row.Scan(&resume.UserResumeID, &resume.CreatedAt, &resume.UpdatedAt); err != nil {
		return models.Resume{}, err
	}
	return resume, nil
}

func (r *ResumeRepository) GetByID(ctx context.Context, id string) (models.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByOwnerSeq resolves an owner's resume by its per-account sequence
// number, the identifier applicants see.
func (r *ResumeRepository) GetByOwnerSeq(ctx context.Context, userID string, userResumeID int) (models.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE user_id = $1 AND user_resume_id = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, userID, userResumeID))
}

type ResumeFilter struct {
	UserID    string // empty means all owners
	Status    models.ResumeStatus
	Ascending bool
}

func (r *ResumeRepository) List(ctx context.Context, filter ResumeFilter) ([]models.Resume, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + resumeColumns + ` FROM resumes`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}
	query += " ORDER BY created_at " + direction

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resumes []models.Resume
	for rows.Next() {
		resume, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, resume)
	}
	return resumes, rows.Err()
}

func (r *ResumeRepository) Update(ctx context.Context, id string, title, introduction *string) (models.Resume, error) {
	const query = `
		UPDATE resumes
		SET title = COALESCE($2, title),
		    introduction = COALESCE($3, introduction),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + resumeColumns

	return r.scanOne(r.pool.QueryRow(ctx, query, id, title, introduction))
}

func (r *ResumeRepository) SetAttachmentKey(ctx context.Context, id string, objectKey string) error {
	const query = `
		UPDATE resumes SET attachment_key = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, objectKey)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrResumeNotFound
	}
	return nil
}

func (r *ResumeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM resumes WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrResumeNotFound
	}
	return nil
}

// UpdateStatusWithLog changes a resume's status and appends the audit row in
// one transaction. The row lock taken by FOR UPDATE serializes concurrent
// status changes on the same resume, so every log row records the status
// that actually preceded it; commit makes both writes visible together or
// not at all.
func (r *ResumeRepository) UpdateStatusWithLog(
	ctx context.Context,
	resumeID string,
	reviewerID string,
	newStatus models.ResumeStatus,
	reason string,
	logID string,
) (models.StatusLog, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.StatusLog{}, err
	}
	defer tx.Rollback(ctx)

	var previous models.ResumeStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM resumes WHERE id = $1 FOR UPDATE`,
		resumeID,
	).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.StatusLog{}, ErrResumeNotFound
		}
		return models.StatusLog{}, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE resumes SET status = $2, updated_at = NOW() WHERE id = $1`,
		resumeID, newStatus,
	); err != nil {
		return models.StatusLog{}, err
	}

	var createdAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO resume_status_logs (
			id, resume_id, reviewer_id, previous_status, new_status, reason, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW()
		)
		RETURNING created_at
	`, logID, resumeID, reviewerID, previous, newStatus, reason).Scan(&createdAt)
	if err != nil {
		return models.StatusLog{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.StatusLog{}, err
	}

	return models.StatusLog{
		ID:             logID,
		ResumeID:       resumeID,
		ReviewerID:     reviewerID,
		PreviousStatus: previous,
		NewStatus:      newStatus,
		Reason:         reason,
		CreatedAt:      createdAt,
	}, nil
}

func (r *ResumeRepository) scanOne(row pgx.Row) (models.Resume, error) {
	var resume models.Resume
	if err := row.Scan(
		&resume.ID,
		&resume.UserID,
		&resume.UserResumeID,
		&resume.Title,
		&resume.Introduction,
		&resume.Status,
		&resume.AttachmentKey,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Resume{}, ErrResumeNotFound
		}
		return models.Resume{}, err
	}
	return resume, nil
}
