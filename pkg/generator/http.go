package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
)

const defaultTimeoutSeconds = 120

// HTTPGenerator talks to a remote generation service over JSON request/response.
// The service owns the model; this client only shapes requests and decodes
// responses.
type HTTPGenerator struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewHTTPGenerator(baseURL string, logger *slog.Logger) *HTTPGenerator {
	return &HTTPGenerator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeoutSeconds * time.Second},
		logger:  logger.With("module", "generator_client"),
	}
}

func (g *HTTPGenerator) Generate(ctx context.Context, prompt, platform string, opts Options) (*GenerationResult, error) {
	payload := map[string]any{
		"prompt":   prompt,
		"platform": platform,
	}
	if opts.TemplateID != "" {
		payload["template_id"] = opts.TemplateID
	}

	if opts.MaxNodes > 0 {
		payload["max_nodes"] = opts.MaxNodes
	}

	var result struct {
		Document    map[string]any `json:"document"`
		TokensUsed  int            `json:"tokens_used"`
		CreditsUsed int            `json:"credits_used"`
	}

	if err := g.post(ctx, "/v1/generate", payload, &result); err != nil {
		return nil, err
	}

	return &GenerationResult{
		Document:    result.Document,
		TokensUsed:  result.TokensUsed,
		CreditsUsed: result.CreditsUsed,
	}, nil
}

func (g *HTTPGenerator) Plan(ctx context.Context, prompt string, maxArtifacts int) (*models.BatchPlan, error) {
	payload := map[string]any{
		"prompt":        prompt,
		"max_artifacts": maxArtifacts,
	}

	var plan models.BatchPlan
	if err := g.post(ctx, "/v1/plan", payload, &plan); err != nil {
		return nil, err
	}

	return &plan, nil
}

func (g *HTTPGenerator) GenerateArtifact(ctx context.Context, item models.PlannedArtifact, shared SharedContext) (map[string]any, error) {
	payload := map[string]any{
		"artifact": item,
		"prompt":   shared.Prompt,
		"platform": shared.Platform,
		"plan":     shared.Plan,
		"context":  shared.Generated,
	}

	var result struct {
		Document map[string]any `json:"document"`
	}

	if err := g.post(ctx, "/v1/artifact", payload, &result); err != nil {
		return nil, err
	}

	return result.Document, nil
}

func (g *HTTPGenerator) Fix(ctx context.Context, doc *models.Document, issues []string, userError string) (*FixResult, error) {
	payload := map[string]any{
		"document":   doc,
		"issues":     issues,
		"user_error": userError,
	}

	var result struct {
		Document     map[string]any `json:"document"`
		FixesApplied []string       `json:"fixes_applied"`
	}

	if err := g.post(ctx, "/v1/fix", payload, &result); err != nil {
		return nil, err
	}

	return &FixResult{Document: result.Document, FixesApplied: result.FixesApplied}, nil
}

func (g *HTTPGenerator) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode generator request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build generator request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("generator request %s: %w", path, err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			g.logger.WarnContext(ctx, "Failed to close generator response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return fmt.Errorf("generator returned %d for %s: %s", resp.StatusCode, path, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode generator response: %w", err)
	}

	return nil
}
