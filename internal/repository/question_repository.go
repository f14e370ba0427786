package repository

import (
	"context"

	"github.com/interview-master/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository handles question-bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByDomainAndDifficulty retrieves the full question pool for one
// domain at one difficulty. The caller shuffles and truncates.
func (r *QuestionRepository) ListByDomainAndDifficulty(ctx context.Context, domain, difficulty string) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, domain, difficulty, question_text, question_type, options, correct_answer, keywords
		 FROM questions WHERE domain = $1 AND difficulty = $2`, domain, difficulty,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Domain, &q.Difficulty, &q.Text, &q.Type, &q.Options, &q.CorrectAnswer, &q.Keywords); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// BulkInsert loads a batch of questions in one round trip. Used by the
// seeding tool.
func (r *QuestionRepository) BulkInsert(ctx context.Context, questions []model.Question) (int64, error) {
	rows := make([][]interface{}, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, []interface{}{
			q.Domain, q.Difficulty, q.Text, q.Type, q.Options, q.CorrectAnswer, q.Keywords,
		})
	}

	return r.pool.CopyFrom(ctx,
		pgx.Identifier{"questions"},
		[]string{"domain", "difficulty", "question_text", "question_type", "options", "correct_answer", "keywords"},
		pgx.CopyFromRows(rows),
	)
}
