package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/interview-master/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InterviewRepository handles persisted interview results.
type InterviewRepository struct {
	pool *pgxpool.Pool
}

// NewInterviewRepository creates a new InterviewRepository.
func NewInterviewRepository(pool *pgxpool.Pool) *InterviewRepository {
	return &InterviewRepository{pool: pool}
}

// GetByID retrieves one finished interview.
func (r *InterviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.InterviewRecord, error) {
	rec := &model.InterviewRecord{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, domain, difficulty, correct_count, total_questions,
		        accuracy_percent, credits_earned, elapsed_seconds, reason, finished_at
		 FROM interview_results WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.UserID, &rec.Domain, &rec.Difficulty, &rec.CorrectCount, &rec.TotalQuestions,
		&rec.AccuracyPercent, &rec.CreditsEarned, &rec.ElapsedSeconds, &rec.Reason, &rec.FinishedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListByUser retrieves a user's finished interviews with pagination,
// newest first.
func (r *InterviewRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]model.InterviewRecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM interview_results WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, domain, difficulty, correct_count, total_questions,
		        accuracy_percent, credits_earned, elapsed_seconds, reason, finished_at
		 FROM interview_results WHERE user_id = $1
		 ORDER BY finished_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []model.InterviewRecord
	for rows.Next() {
		var rec model.InterviewRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Domain, &rec.Difficulty, &rec.CorrectCount, &rec.TotalQuestions,
			&rec.AccuracyPercent, &rec.CreditsEarned, &rec.ElapsedSeconds, &rec.Reason, &rec.FinishedAt); err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

// RecalculateStats recomputes a user's aggregates from their result
// history: lifetime credits, completed count, mean accuracy and the
// streak of consecutive recent sessions scoring 70 or above.
func (r *InterviewRepository) RecalculateStats(ctx context.Context, userID int) error {
	_, err := r.pool.Exec(ctx, `
		WITH ranked AS (
			SELECT accuracy_percent,
			       ROW_NUMBER() OVER (ORDER BY finished_at DESC) AS rn
			FROM interview_results
			WHERE user_id = $1
		)
		UPDATE users SET
			credits = (SELECT COALESCE(SUM(credits_earned), 0) FROM interview_results WHERE user_id = $1),
			interviews_completed = (SELECT COUNT(*) FROM interview_results WHERE user_id = $1),
			accuracy = (SELECT COALESCE(ROUND(AVG(accuracy_percent)::numeric, 2), 0) FROM interview_results WHERE user_id = $1),
			streak = (SELECT COALESCE(MIN(rn), (SELECT COUNT(*) FROM ranked) + 1) - 1
			          FROM ranked WHERE accuracy_percent < 70)
		WHERE id = $1`,
		userID,
	)
	return err
}
