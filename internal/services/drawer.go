package services

import (
	"math/rand"

	"github.com/ai-olympiad/qcm-service/internal/models"
)

// DrawConfig is the slice of a session definition the drawer needs.
type DrawConfig struct {
	TotalQuestions int
	Categories     []string
	Difficulties   []models.Difficulty
	Distribution   models.DifficultyDistribution
}

// DrawQuestions selects TotalQuestions from the given active-bank snapshot
// without replacement. With a distribution it samples each difficulty bucket
// separately (stratified draw); otherwise it samples flat under the category
// and difficulty filters. The final order gets an extra shuffle so bucket
// boundaries never leak into presentation order.
//
// Pure function of (bank, cfg, rng): the same seed reproduces the same draw,
// and a failed draw has no side effects.
func DrawQuestions(bank []*models.Question, cfg DrawConfig, rng *rand.Rand) ([]*models.Question, error) {
	if len(cfg.Distribution) > 0 {
		return drawStratified(bank, cfg, rng)
	}
	return drawFlat(bank, cfg, rng)
}

func drawStratified(bank []*models.Question, cfg DrawConfig, rng *rand.Rand) ([]*models.Question, error) {
	drawn := make([]*models.Question, 0, cfg.TotalQuestions)
	used := make(map[string]bool, cfg.TotalQuestions)

	// Buckets are drawn in fixed difficulty order so a given seed always
	// produces the same draw.
	for _, difficulty := range models.Difficulties {
		need := cfg.Distribution[difficulty]
		if need <= 0 {
			continue
		}

		pool := filterBank(bank, cfg.Categories, []models.Difficulty{difficulty}, used)
		if len(pool) < need {
			return nil, &InsufficientQuestionsError{
				Difficulty: difficulty,
				Requested:  need,
				Available:  len(pool),
			}
		}

		for _, idx := range rng.Perm(len(pool))[:need] {
			question := pool[idx]
			drawn = append(drawn, question)
			used[question.ID] = true
		}
	}

	shuffle(drawn, rng)
	return drawn, nil
}

func drawFlat(bank []*models.Question, cfg DrawConfig, rng *rand.Rand) ([]*models.Question, error) {
	pool := filterBank(bank, cfg.Categories, cfg.Difficulties, nil)
	if len(pool) < cfg.TotalQuestions {
		return nil, &InsufficientQuestionsError{
			Requested: cfg.TotalQuestions,
			Available: len(pool),
		}
	}

	drawn := make([]*models.Question, 0, cfg.TotalQuestions)
	for _, idx := range rng.Perm(len(pool))[:cfg.TotalQuestions] {
		drawn = append(drawn, pool[idx])
	}

	shuffle(drawn, rng)
	return drawn, nil
}

// filterBank selects active questions matching the category and difficulty
// constraints, excluding already used ids.
func filterBank(bank []*models.Question, categories []string, difficulties []models.Difficulty, used map[string]bool) []*models.Question {
	categorySet := make(map[string]bool, len(categories))
	for _, id := range categories {
		categorySet[id] = true
	}

	difficultySet := make(map[models.Difficulty]bool, len(difficulties))
	for _, d := range difficulties {
		difficultySet[d] = true
	}

	var pool []*models.Question
	for _, question := range bank {
		if !question.IsActive {
			continue
		}
		if used != nil && used[question.ID] {
			continue
		}
		if len(categorySet) > 0 {
			if question.CategoryID == nil || !categorySet[*question.CategoryID] {
				continue
			}
		}
		if len(difficultySet) > 0 && !difficultySet[question.Difficulty] {
			continue
		}
		pool = append(pool, question)
	}
	return pool
}

func shuffle(questions []*models.Question, rng *rand.Rand) {
	rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
}
