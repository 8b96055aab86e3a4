package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"resumehub/api/internal/models"
)

// StatusLogRepository reads the append-only audit trail. Writes happen only
// inside ResumeRepository.UpdateStatusWithLog; there is deliberately no
// update or delete here.
type StatusLogRepository struct {
	pool *pgxpool.Pool
}

func NewStatusLogRepository(pool *pgxpool.Pool) *StatusLogRepository {
	return &StatusLogRepository{pool: pool}
}

func (r *StatusLogRepository) ListByResume(ctx context.Context, resumeID string) ([]models.StatusLog, error) {
	const query = `
		SELECT l.id, l.resume_id, l.reviewer_id, u.display_name,
		       l.previous_status, l.new_status, l.reason, l.created_at
		FROM resume_status_logs l
		JOIN users u ON u.id = l.reviewer_id
		WHERE l.resume_id = $1
		ORDER BY l.created_at DESC, l.id DESC
	`

	rows, err := r.pool.Query(ctx, query, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.StatusLog
	for rows.Next() {
		var entry models.StatusLog
		if err := rows.Scan(
			&entry.ID,
			&entry.ResumeID,
			&entry.ReviewerID,
			&entry.ReviewerName,
			&entry.PreviousStatus,
			&entry.NewStatus,
			&entry.Reason,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
