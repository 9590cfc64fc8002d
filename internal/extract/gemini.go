// Package extract implements the AI extraction collaborators: turning
// receipt images and statement documents into raw transaction candidates.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/aronveress/tripledger/internal/common"
	"github.com/aronveress/tripledger/internal/model"
	"github.com/aronveress/tripledger/internal/service"
)

const defaultModel = "gemini-2.5-flash"

// Config holds configuration for the Gemini extractor.
type Config struct {
	APIKey     string
	Model      string
	MaxRetries int
	RetryDelay time.Duration
}

// Gemini extracts candidates with the Gemini API. It implements both
// service.ReceiptExtractor and service.StatementExtractor.
type Gemini struct {
	client    *genai.Client
	model     string
	retryOpts service.RetryOptions
}

// NewGemini creates a Gemini-backed extractor.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", common.ErrMissingConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Gemini{
		client:    client,
		model:     modelName,
		retryOpts: retryOpts,
	}, nil
}

// ExtractReceipt scans one receipt image into a raw candidate.
func (g *Gemini) ExtractReceipt(ctx context.Context, image []byte, mimeType string, catalog model.Catalog) (*model.RawCandidate, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	prompt := receiptPrompt + "\n\n" + catalogPrompt(catalog) + "\nExtract data from this receipt:"

	parts := []*genai.Part{
		{Text: prompt},
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
	}

	text, err := g.generate(ctx, parts)
	if err != nil {
		return nil, err
	}

	candidate, err := decodeReceipt(text)
	if err != nil {
		return nil, err
	}

	slog.Debug("extracted receipt",
		"merchant", candidate.Merchant,
		"amount", candidate.Amount,
		"currency", candidate.Currency)

	return candidate, nil
}

// ExtractStatement parses one document's text content into statement-origin
// candidates.
func (g *Gemini) ExtractStatement(ctx context.Context, content string, catalog model.Catalog) ([]model.RawCandidate, error) {
	prompt := statementPrompt + "\n\n" + catalogPrompt(catalog) +
		"\nAnalyze the following file content and extract transactions:\n\n" + content

	parts := []*genai.Part{{Text: prompt}}

	text, err := g.generate(ctx, parts)
	if err != nil {
		return nil, err
	}

	candidates, err := decodeStatement(text)
	if err != nil {
		return nil, err
	}

	slog.Info("extracted statement", "transaction_count", len(candidates))
	return candidates, nil
}

func (g *Gemini) generate(ctx context.Context, parts []*genai.Part) (string, error) {
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	var text string
	err := common.WithRetry(ctx, func() error {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
		if err != nil {
			return fmt.Errorf("generate content: %w", err)
		}

		text = resp.Text()
		if text == "" {
			return fmt.Errorf("%w: empty response from model", common.ErrExtractionFailed)
		}
		return nil
	}, g.retryOpts)
	if err != nil {
		return "", err
	}

	return text, nil
}
