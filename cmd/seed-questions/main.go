package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/interview-master/backend/internal/config"
	"github.com/interview-master/backend/internal/database"
	"github.com/interview-master/backend/internal/logger"
	"github.com/interview-master/backend/internal/model"
	"github.com/interview-master/backend/internal/repository"
)

// seedQuestion mirrors model.Question but exposes the grading fields,
// which the model deliberately hides from JSON.
type seedQuestion struct {
	Domain        string   `json:"domain"`
	Difficulty    string   `json:"difficulty"`
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
}

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "questions.json", "Path to the question bank JSON file")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	raw, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", filePath).Msg("Failed to read question file")
	}

	var seeds []seedQuestion
	if err := json.Unmarshal(raw, &seeds); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse question file")
	}
	if len(seeds) == 0 {
		fmt.Println("Question file is empty, nothing to do")
		return
	}

	questions := make([]model.Question, 0, len(seeds))
	skipped := 0
	for i, s := range seeds {
		if err := validateSeed(s); err != nil {
			fmt.Printf("Skipping entry %d: %v\n", i, err)
			skipped++
			continue
		}
		questions = append(questions, model.Question{
			Domain:        s.Domain,
			Difficulty:    s.Difficulty,
			Text:          s.Text,
			Type:          model.QuestionType(s.Type),
			Options:       s.Options,
			CorrectAnswer: s.CorrectAnswer,
			Keywords:      s.Keywords,
		})
	}

	repo := repository.NewQuestionRepository(pool)

	inserted, err := repo.BulkInsert(ctx, questions)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to insert questions")
	}

	fmt.Printf("\nSeed completed! Inserted %d questions (%d skipped).\n", inserted, skipped)
}

func validateSeed(s seedQuestion) error {
	if !config.ValidDomain(s.Domain) {
		return fmt.Errorf("unknown domain %q", s.Domain)
	}
	if _, ok := config.DifficultyFor(s.Difficulty); !ok {
		return fmt.Errorf("unknown difficulty %q", s.Difficulty)
	}
	if s.Text == "" {
		return fmt.Errorf("question text is empty")
	}
	switch model.QuestionType(s.Type) {
	case model.QuestionTypeMCQ:
		if len(s.Options) < 2 {
			return fmt.Errorf("MCQ question needs at least two options")
		}
		found := false
		for _, opt := range s.Options {
			if opt == s.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("correct answer %q is not among the options", s.CorrectAnswer)
		}
	case model.QuestionTypeText:
		if len(s.Keywords) == 0 {
			return fmt.Errorf("TEXT question needs at least one keyword")
		}
	default:
		return fmt.Errorf("unknown question type %q", s.Type)
	}
	return nil
}
