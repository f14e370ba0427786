package config

import "time"

// DifficultyRule fixes the time limit and question count for one
// difficulty level. The table mirrors the product's interview formats.
type DifficultyRule struct {
	TimeLimit     time.Duration
	QuestionCount int
}

var difficultyRules = map[string]DifficultyRule{
	"easy":   {TimeLimit: 60 * time.Minute, QuestionCount: 45},
	"medium": {TimeLimit: 45 * time.Minute, QuestionCount: 30},
	"hard":   {TimeLimit: 30 * time.Minute, QuestionCount: 15},
}

// DifficultyFor returns the rule for a difficulty level.
// The second return is false for unknown levels.
func DifficultyFor(level string) (DifficultyRule, bool) {
	rule, ok := difficultyRules[level]
	return rule, ok
}

// Domains lists the interview domains known to the question bank.
var Domains = []string{
	"data-analytics",
	"machine-learning",
	"web-development",
	"dsa",
	"group-discussion",
	"cloud-computing",
}

// ValidDomain reports whether the given domain is a known question bank.
func ValidDomain(domain string) bool {
	for _, d := range Domains {
		if d == domain {
			return true
		}
	}
	return false
}
