package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/PYTHTRADER/findtrader/internal/config"
	"github.com/PYTHTRADER/findtrader/internal/logging"
	"github.com/PYTHTRADER/findtrader/internal/model"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func sampleSubmission() model.Submission {
	key := "ciphertext"
	return model.Submission{
		ID:              "s-1",
		FullName:        "Rahul Sharma",
		Email:           "r@x.com",
		Mobile:          "9999999999",
		Category:        model.CategoryOptions,
		Broker:          "Zerodha",
		Strategy:        "Weekly Nifty credit spreads",
		EncryptedAPIKey: &key,
	}
}

func TestPrompt(t *testing.T) {
	p := Prompt(sampleSubmission())
	assert.Contains(t, p, "Trader Name: Rahul Sharma")
	assert.Contains(t, p, "Category: Options")
	assert.Contains(t, p, "Strategy: Weekly Nifty credit spreads")
	assert.Contains(t, p, "City: not provided")
	assert.NotContains(t, p, "r@x.com")
	assert.NotContains(t, p, "9999999999")
	assert.NotContains(t, p, "ciphertext")
}

func TestGemini_Analyze(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
		want string
	}{
		{"success", "  Looks consistent.  ", nil, "Looks consistent."},
		{"api error", "", errors.New("quota exceeded"), Unavailable},
		{"empty text", "", nil, Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(mockGenerator)
			gen.On("GenerateContent", mock.Anything, mock.AnythingOfType("string")).Return(tt.text, tt.err)

			g := &Gemini{gen: gen, log: logging.Discard()}
			assert.Equal(t, tt.want, g.Analyze(context.Background(), sampleSubmission()))
			gen.AssertExpectations(t)
		})
	}
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), config.GeminiConfig{}, logging.Discard())
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	assert.Equal(t, Disabled, Static(Disabled).Analyze(context.Background(), model.Submission{}))
}
