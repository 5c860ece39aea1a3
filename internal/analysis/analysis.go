// Package analysis produces a short reviewer-facing summary of a submission
// using Gemini. It is advisory only and never blocks a review.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/PYTHTRADER/findtrader/internal/config"
	"github.com/PYTHTRADER/findtrader/internal/model"
)

const (
	// Unavailable is returned whenever generation fails.
	Unavailable = "Unable to generate analysis at this time."
	// Disabled is returned when no API key is configured.
	Disabled = "Analysis is not configured."
)

// Analyzer summarizes a submission for reviewers.
type Analyzer interface {
	Analyze(ctx context.Context, s model.Submission) string
}

type generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Gemini is an Analyzer backed by the Gemini API.
type Gemini struct {
	gen    generator
	client *genai.Client
	log    *slog.Logger
}

// NewGemini creates a client for cfg.Model.
func NewGemini(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{
		gen:    &genaiGenerator{model: client.GenerativeModel(cfg.Model)},
		client: client,
		log:    log.With("component", "analysis"),
	}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

func (g *Gemini) Analyze(ctx context.Context, s model.Submission) string {
	text, err := g.gen.GenerateContent(ctx, Prompt(s))
	if err != nil {
		g.log.Error("analysis_failed", "submission_id", s.ID, "error", err.Error())
		return Unavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Unavailable
	}
	return text
}

// Prompt builds the reviewer prompt. Contact details and secrets are left out.
func Prompt(s model.Submission) string {
	var b strings.Builder
	b.WriteString("You are a professional financial analyst for FindTrader India.\n")
	b.WriteString("Review the following trader verification request and give a brief, 3-sentence summary of ")
	b.WriteString("how credible the described strategy is, the risks implied by it, and what a reviewer should check in the attached proof.\n\n")
	fmt.Fprintf(&b, "Trader Name: %s\n", s.FullName)
	fmt.Fprintf(&b, "Category: %s\n", s.Category)
	fmt.Fprintf(&b, "Broker: %s\n", orNA(s.Broker))
	fmt.Fprintf(&b, "City: %s\n", orNA(s.City))
	fmt.Fprintf(&b, "Strategy: %s\n\n", orNA(s.Strategy))
	b.WriteString("Keep it professional, encouraging but realistic.")
	return b.String()
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not provided"
	}
	return v
}

// Static answers every request with the same text.
type Static string

func (s Static) Analyze(context.Context, model.Submission) string { return string(s) }

type genaiGenerator struct {
	model *genai.GenerativeModel
}

func (g *genaiGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}
	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}
	return out.String(), nil
}
