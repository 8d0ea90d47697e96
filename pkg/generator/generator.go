// Package generator defines the contract with the external text/graph generator.
package generator

import (
	"context"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
)

// Options tunes a single-shot generation call.
type Options struct {
	TemplateID string
	MaxNodes   int
}

// GenerationResult is the generator's raw response. Document is the decoded
// JSON object as emitted; it has not been sanitized yet.
type GenerationResult struct {
	Document    map[string]any
	TokensUsed  int
	CreditsUsed int
}

// FixResult is the regeneration response: a repaired raw document plus a
// human-readable list of fixes the generator applied.
type FixResult struct {
	Document     map[string]any
	FixesApplied []string
}

// SharedContext carries what earlier batch stages produced into later
// per-artifact generation calls.
type SharedContext struct {
	Prompt    string
	Platform  string
	Plan      *models.BatchPlan
	Generated []models.GeneratedArtifact
}

// Generator is the external text/graph generation service. All calls are
// request/response; progress is synthesized by the pipeline from stage
// boundaries, not streamed by the generator.
type Generator interface {
	// Generate produces a workflow document from a prompt in one shot.
	Generate(ctx context.Context, prompt, platform string, opts Options) (*GenerationResult, error)

	// Plan asks the external planner for a dependency-tagged batch plan.
	Plan(ctx context.Context, prompt string, maxArtifacts int) (*models.BatchPlan, error)

	// GenerateArtifact produces one planned artifact's raw document.
	GenerateArtifact(ctx context.Context, item models.PlannedArtifact, shared SharedContext) (map[string]any, error)

	// Fix repairs a document given the analyzer's issues and user error text.
	Fix(ctx context.Context, doc *models.Document, issues []string, userError string) (*FixResult, error)
}
