package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/events"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/generator"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/ledger"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/otelhelper"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/sanitizer"
)

// SingleResult is the outcome of a one-shot generation run.
type SingleResult struct {
	RequestID string                   `json:"request_id"`
	Artifact  models.GeneratedArtifact `json:"artifact"`
	Ledger    models.CreditLedgerState `json:"ledger"`
	Warnings  []string                 `json:"warnings,omitempty"`
}

// GenerateSingle runs the metered single-shot pipeline: credit gate, external
// generation, sanitization, post-hoc settlement, low-balance warning.
func (s *Service) GenerateSingle(ctx context.Context, req models.GenerationRequest) (*SingleResult, error) {
	requestID := uuid.New().String()

	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "pipeline.generate_single",
		attribute.String(otelhelper.RequestIDKey, requestID),
		attribute.String(otelhelper.ModeKey, string(req.Mode)),
		attribute.String(otelhelper.PlatformKey, req.Platform),
	)
	defer span.End()

	s.publish(ctx, requestID, events.GenerationStarted{
		BaseEvent: s.baseEvent(events.GenerationStartedEvent, requestID),
		Mode:      req.Mode,
		Platform:  req.Platform,
	})

	estimated := s.policy.Pricing().EstimateCost(req.Prompt, req.Mode)
	meta := ledger.DeductionMetadata{
		RequestID: requestID,
		Mode:      req.Mode,
		Platform:  req.Platform,
		Reason:    "single generation",
	}

	var artifact models.GeneratedArtifact

	ledgerResult, err := s.policy.RunMetered(ctx, estimated, meta, func(ctx context.Context) (int, error) {
		genResult, genErr := s.generator.Generate(ctx, req.Prompt, req.Platform, generator.Options{
			TemplateID: req.TemplateID,
		})
		if genErr != nil {
			return 0, &GenerationError{Stage: "generate", Err: genErr}
		}

		doc, sanErr := sanitizer.Sanitize(genResult.Document)
		if sanErr != nil {
			return 0, sanErr
		}

		artifact = models.GeneratedArtifact{
			CorrelationID: uuid.New().String(),
			Name:          doc.Name,
			Document:      doc,
			NodeCount:     len(doc.Nodes),
			Kind:          models.ArtifactKindUtility,
		}

		return s.policy.Pricing().ActualCost(genResult.CreditsUsed, genResult.TokensUsed), nil
	})
	if err != nil {
		otelhelper.SetError(span, err)
		s.publish(ctx, requestID, events.GenerationFailed{
			BaseEvent: s.baseEvent(events.GenerationFailedEvent, requestID),
			Error:     err.Error(),
		})

		return nil, err
	}

	s.publish(ctx, requestID, events.GenerationCompleted{
		BaseEvent:     s.baseEvent(events.GenerationCompletedEvent, requestID),
		CorrelationID: artifact.CorrelationID,
		NodeCount:     artifact.NodeCount,
		ActualCost:    ledgerResult.State.ActualCost,
	})
	s.publishDeductionWarnings(ctx, requestID, ledgerResult)

	return &SingleResult{
		RequestID: requestID,
		Artifact:  artifact,
		Ledger:    ledgerResult.State,
		Warnings:  ledgerResult.Warnings,
	}, nil
}
