package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/ledger"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/otelhelper"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/sanitizer"
)

// AnalyzeDocument runs the structural analyzer over an existing document.
// Analysis is free; no credits move.
func (s *Service) AnalyzeDocument(doc *models.Document, userError string) []string {
	return s.analyzer.Analyze(doc, userError)
}

// RegenerateResult is the outcome of a metered repair run.
type RegenerateResult struct {
	RequestID    string                   `json:"request_id"`
	Document     *models.Document         `json:"document"`
	FixesApplied []string                 `json:"fixes_applied,omitempty"`
	Issues       []string                 `json:"issues,omitempty"`
	Ledger       models.CreditLedgerState `json:"ledger"`
	Warnings     []string                 `json:"warnings,omitempty"`
}

// Regenerate repairs a broken document through the external generator. When
// issues is nil the analyzer runs first so the generator receives concrete
// findings alongside the user's error text. Repair is metered like a single
// generation.
func (s *Service) Regenerate(ctx context.Context, doc *models.Document, issues []string, userError string) (*RegenerateResult, error) {
	requestID := uuid.New().String()

	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "pipeline.regenerate",
		attribute.String(otelhelper.RequestIDKey, requestID),
		attribute.String(otelhelper.StageKey, "regenerate"),
	)
	defer span.End()

	if issues == nil {
		issues = s.analyzer.Analyze(doc, userError)
	}

	estimated := s.policy.Pricing().EstimateCost(userError, models.ModeSingle)
	meta := ledger.DeductionMetadata{
		RequestID: requestID,
		Mode:      models.ModeSingle,
		Reason:    "regeneration",
	}

	var (
		repaired *models.Document
		fixes    []string
	)

	ledgerResult, err := s.policy.RunMetered(ctx, estimated, meta, func(ctx context.Context) (int, error) {
		fixResult, fixErr := s.generator.Fix(ctx, doc, issues, userError)
		if fixErr != nil {
			return 0, &GenerationError{Stage: "fix", Err: fixErr}
		}

		clean, sanErr := sanitizer.Sanitize(fixResult.Document)
		if sanErr != nil {
			return 0, sanErr
		}

		repaired = clean
		fixes = fixResult.FixesApplied

		return estimated, nil
	})
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return &RegenerateResult{
		RequestID:    requestID,
		Document:     repaired,
		FixesApplied: fixes,
		Issues:       issues,
		Ledger:       ledgerResult.State,
		Warnings:     ledgerResult.Warnings,
	}, nil
}
