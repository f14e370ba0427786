package service

import (
	"context"
	"errors"
	"math/rand"

	"github.com/interview-master/backend/internal/config"
	"github.com/interview-master/backend/internal/model"
	"github.com/interview-master/backend/internal/repository"
)

// Question selection errors.
var (
	ErrUnknownDomain     = errors.New("unknown interview domain")
	ErrUnknownDifficulty = errors.New("unknown difficulty level")
	ErrPoolTooSmall      = errors.New("not enough questions available for this domain and difficulty")
)

// QuestionService assembles the question set for a new session.
type QuestionService struct {
	questions *repository.QuestionRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questions: questions}
}

// SelectForSession draws a shuffled question set of the size fixed by
// the difficulty level. The whole pool is loaded and shuffled so every
// session sees a different ordering.
func (s *QuestionService) SelectForSession(ctx context.Context, domain, difficulty string) ([]model.Question, config.DifficultyRule, error) {
	if !config.ValidDomain(domain) {
		return nil, config.DifficultyRule{}, ErrUnknownDomain
	}
	rule, ok := config.DifficultyFor(difficulty)
	if !ok {
		return nil, config.DifficultyRule{}, ErrUnknownDifficulty
	}

	pool, err := s.questions.ListByDomainAndDifficulty(ctx, domain, difficulty)
	if err != nil {
		return nil, config.DifficultyRule{}, err
	}
	if len(pool) < rule.QuestionCount {
		return nil, config.DifficultyRule{}, ErrPoolTooSmall
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	return pool[:rule.QuestionCount], rule, nil
}
