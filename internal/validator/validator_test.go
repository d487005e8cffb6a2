package validator

import (
	"testing"
	"time"

	"github.com/ai-olympiad/qcm-service/internal/models"
)

func validQuestionRequest() *QuestionCreateRequest {
	return &QuestionCreateRequest{
		Text: "What is the derivative of x^2?",
		Options: []models.QuestionOption{
			{Index: 0, Text: "2x"},
			{Index: 1, Text: "x"},
			{Index: 2, Text: "x^2"},
		},
		CorrectAnswers: []int{0},
		Difficulty:     models.DifficultyEasy,
		Points:         1,
	}
}

func TestValidateQuestionCreateRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		mutate  func(r *QuestionCreateRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *QuestionCreateRequest) {}, wantErr: false},
		{name: "empty text", mutate: func(r *QuestionCreateRequest) { r.Text = "" }, wantErr: true},
		{
			name: "single option",
			mutate: func(r *QuestionCreateRequest) {
				r.Options = []models.QuestionOption{{Index: 0, Text: "only"}}
			},
			wantErr: true,
		},
		{
			name: "seven options",
			mutate: func(r *QuestionCreateRequest) {
				r.Options = make([]models.QuestionOption, 7)
				for i := range r.Options {
					r.Options[i] = models.QuestionOption{Index: i, Text: "opt"}
				}
			},
			wantErr: true,
		},
		{name: "empty key", mutate: func(r *QuestionCreateRequest) { r.CorrectAnswers = nil }, wantErr: true},
		{name: "bad difficulty", mutate: func(r *QuestionCreateRequest) { r.Difficulty = "extreme" }, wantErr: true},
		{name: "zero points allowed as omitted", mutate: func(r *QuestionCreateRequest) { r.Points = 0 }, wantErr: false},
		{name: "negative points", mutate: func(r *QuestionCreateRequest) { r.Points = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validQuestionRequest()
			tt.mutate(req)

			err := v.Validate(req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsValidationError(err) {
				t.Errorf("error %v is not a ValidationErrors", err)
			}
		})
	}
}

func TestValidateQuestionContent(t *testing.T) {
	v := New()
	options := []models.QuestionOption{
		{Index: 0, Text: "a"},
		{Index: 1, Text: "b"},
		{Index: 2, Text: "c"},
	}

	tests := []struct {
		name     string
		options  []models.QuestionOption
		key      []int
		multiple bool
		wantErrs int
	}{
		{name: "valid single", options: options, key: []int{1}, multiple: false, wantErrs: 0},
		{name: "valid multiple", options: options, key: []int{0, 2}, multiple: true, wantErrs: 0},
		{name: "key out of range", options: options, key: []int{3}, multiple: false, wantErrs: 1},
		{name: "negative key index", options: options, key: []int{-1}, multiple: false, wantErrs: 1},
		{name: "duplicate key index", options: options, key: []int{1, 1}, multiple: true, wantErrs: 1},
		{name: "multiple keys on single-answer", options: options, key: []int{0, 1}, multiple: false, wantErrs: 1},
		{
			name: "gapped option indices",
			options: []models.QuestionOption{
				{Index: 0, Text: "a"},
				{Index: 2, Text: "b"},
			},
			key: []int{0}, multiple: false, wantErrs: 1,
		},
		{
			name: "duplicate option indices",
			options: []models.QuestionOption{
				{Index: 0, Text: "a"},
				{Index: 0, Text: "b"},
			},
			key: []int{0}, multiple: false, wantErrs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateQuestionContent(tt.options, tt.key, tt.multiple)
			if len(errs) != tt.wantErrs {
				t.Errorf("got %d errors (%v), want %d", len(errs), errs, tt.wantErrs)
			}
		})
	}
}

func validSessionRequest() *SessionCreateRequest {
	return &SessionCreateRequest{
		Title:           "Selection Round 1",
		StartDate:       time.Now(),
		EndDate:         time.Now().Add(2 * time.Hour),
		TotalQuestions:  10,
		TimePerQuestion: 2,
		PassingScore:    50,
	}
}

func TestValidateSessionCreateRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		mutate  func(r *SessionCreateRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *SessionCreateRequest) {}, wantErr: false},
		{name: "blank title", mutate: func(r *SessionCreateRequest) { r.Title = "   " }, wantErr: true},
		{name: "time per question zero", mutate: func(r *SessionCreateRequest) { r.TimePerQuestion = 0 }, wantErr: true},
		{name: "time per question too long", mutate: func(r *SessionCreateRequest) { r.TimePerQuestion = 31 }, wantErr: true},
		{name: "time per question at upper bound", mutate: func(r *SessionCreateRequest) { r.TimePerQuestion = 30 }, wantErr: false},
		{name: "passing score above 100", mutate: func(r *SessionCreateRequest) { r.PassingScore = 101 }, wantErr: true},
		{name: "zero passing score allowed", mutate: func(r *SessionCreateRequest) { r.PassingScore = 0 }, wantErr: false},
		{name: "too many questions", mutate: func(r *SessionCreateRequest) { r.TotalQuestions = 500 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSessionRequest()
			tt.mutate(req)

			err := v.Validate(req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSessionDefinition(t *testing.T) {
	v := New()

	t.Run("window must be ordered", func(t *testing.T) {
		req := validSessionRequest()
		req.EndDate = req.StartDate.Add(-time.Hour)

		errs := v.ValidateSessionDefinition(req)
		if len(errs) != 1 || errs[0].Field != "end_date" {
			t.Errorf("errs = %v, want one end_date error", errs)
		}
	})

	t.Run("distribution must sum to total", func(t *testing.T) {
		req := validSessionRequest()
		req.DistributionByDifficulty = models.DifficultyDistribution{
			models.DifficultyEasy:   4,
			models.DifficultyMedium: 4,
			models.DifficultyHard:   4,
		}

		errs := v.ValidateSessionDefinition(req)
		if len(errs) != 1 || errs[0].Rule != "distribution_sum" {
			t.Errorf("errs = %v, want one distribution_sum error", errs)
		}
	})

	t.Run("matching distribution passes", func(t *testing.T) {
		req := validSessionRequest()
		req.DistributionByDifficulty = models.DifficultyDistribution{
			models.DifficultyEasy:   4,
			models.DifficultyMedium: 4,
			models.DifficultyHard:   2,
		}

		if errs := v.ValidateSessionDefinition(req); len(errs) != 0 {
			t.Errorf("errs = %v, want none", errs)
		}
	})
}

func TestValidateDistribution(t *testing.T) {
	v := New()

	tests := []struct {
		name         string
		distribution models.DifficultyDistribution
		total        int
		wantErrs     int
	}{
		{name: "empty distribution is fine", distribution: nil, total: 10, wantErrs: 0},
		{
			name:         "unknown level",
			distribution: models.DifficultyDistribution{"impossible": 10},
			total:        10,
			wantErrs:     1,
		},
		{
			name:         "negative count",
			distribution: models.DifficultyDistribution{models.DifficultyEasy: -2, models.DifficultyMedium: 12},
			total:        10,
			wantErrs:     1,
		},
		{
			name:         "sum mismatch",
			distribution: models.DifficultyDistribution{models.DifficultyEasy: 3},
			total:        10,
			wantErrs:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateDistribution(tt.distribution, tt.total)
			if len(errs) != tt.wantErrs {
				t.Errorf("got %d errors (%v), want %d", len(errs), errs, tt.wantErrs)
			}
		})
	}
}

func TestValidateCategorySlug(t *testing.T) {
	v := New()

	tests := []struct {
		slug    string
		wantErr bool
	}{
		{slug: "algebra", wantErr: false},
		{slug: "machine-learning-101", wantErr: false},
		{slug: "Algebra", wantErr: true},
		{slug: "with space", wantErr: true},
		{slug: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			req := &CategoryCreateRequest{Name: "Algebra", Slug: tt.slug}
			err := v.Validate(req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(slug=%q) error = %v, wantErr %v", tt.slug, err, tt.wantErr)
			}
		})
	}
}
