package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/events"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/generator"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/ledger"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/otelhelper"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/progress"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/sanitizer"
)

// BatchResult is the outcome of a multi-artifact run. On failure or
// cancellation Artifacts holds everything completed before the run stopped.
type BatchResult struct {
	RequestID string                     `json:"request_id"`
	Plan      *models.BatchPlan          `json:"plan,omitempty"`
	Artifacts []models.GeneratedArtifact `json:"artifacts"`
	Ledger    models.CreditLedgerState   `json:"ledger"`
	Warnings  []string                   `json:"warnings,omitempty"`
	Progress  models.ProgressState       `json:"progress"`
	Aborted   bool                       `json:"aborted,omitempty"`
}

// Stage boundaries for the batch progress bar. Each stage advances to its
// upper bound when it completes; generation interpolates per artifact.
const (
	pctAnalyzed  = 10
	pctPlanned   = 30
	pctGenerated = 80
	pctValidated = 95
	pctDone      = 100
)

// GenerateBatch runs the planned multi-artifact pipeline: analyze the prompt,
// plan artifacts, generate them in dependency order, sanitize and validate,
// then spend one flat batch credit. A mid-run failure or cancellation skips
// the deduction and returns the artifacts completed so far.
func (s *Service) GenerateBatch(ctx context.Context, req models.GenerationRequest) (*BatchResult, error) {
	requestID := uuid.New().String()

	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "pipeline.generate_batch",
		attribute.String(otelhelper.RequestIDKey, requestID),
		attribute.String(otelhelper.ModeKey, string(req.Mode)),
		attribute.String(otelhelper.PlatformKey, req.Platform),
	)
	defer span.End()

	tracker := s.newTracker(requestID)
	result := &BatchResult{RequestID: requestID}

	s.publish(ctx, requestID, events.GenerationStarted{
		BaseEvent: s.baseEvent(events.GenerationStartedEvent, requestID),
		Mode:      req.Mode,
		Platform:  req.Platform,
	})

	meta := ledger.DeductionMetadata{
		RequestID: requestID,
		Mode:      req.Mode,
		Platform:  req.Platform,
		Reason:    "batch generation",
	}

	ledgerResult, err := s.policy.RunBatch(ctx, meta, func(ctx context.Context) error {
		return s.runBatchStages(ctx, req, requestID, tracker, result)
	})

	result.Progress = tracker.Snapshot()

	if err != nil {
		result.Aborted = errors.Is(err, ErrRunCancelled)

		otelhelper.SetError(span, err)
		s.publish(ctx, requestID, events.GenerationFailed{
			BaseEvent: s.baseEvent(events.GenerationFailedEvent, requestID),
			Error:     err.Error(),
		})

		return result, err
	}

	result.Ledger = ledgerResult.State
	result.Warnings = append(result.Warnings, ledgerResult.Warnings...)

	s.publish(ctx, requestID, events.GenerationCompleted{
		BaseEvent:  s.baseEvent(events.GenerationCompletedEvent, requestID),
		NodeCount:  totalNodes(result.Artifacts),
		ActualCost: ledgerResult.State.ActualCost,
	})
	s.publishDeductionWarnings(ctx, requestID, ledgerResult)

	return result, nil
}

// runBatchStages drives the five stages, checking for cancellation at each
// stage boundary and between artifacts. Partial output accumulates on result
// so callers see it even when a later stage fails.
func (s *Service) runBatchStages(
	ctx context.Context,
	req models.GenerationRequest,
	requestID string,
	tracker *progress.Tracker,
	result *BatchResult,
) error {
	// Stage 1: analyze the prompt.
	tracker.AppendStep("Analyzing request", models.StepStatusInProgress)

	if err := checkCancelled(ctx); err != nil {
		tracker.UpdateStep(models.StepStatusError)

		return err
	}

	tracker.UpdateStep(models.StepStatusCompleted)
	tracker.SetPercentage(pctAnalyzed)

	// Stage 2: plan.
	tracker.AppendStep("Planning artifacts", models.StepStatusInProgress)

	plan, err := s.generator.Plan(ctx, req.Prompt, s.limits.MaxArtifacts(req.Mode))
	if err != nil {
		tracker.UpdateStep(models.StepStatusError)

		return &GenerationError{Stage: "plan", Err: err}
	}

	if len(plan.Artifacts) == 0 {
		tracker.UpdateStep(models.StepStatusError)

		return &GenerationError{Stage: "plan", Err: fmt.Errorf("planner returned an empty plan")}
	}

	if limit := s.limits.MaxArtifacts(req.Mode); len(plan.Artifacts) > limit {
		plan.Artifacts = plan.Artifacts[:limit]
	}

	result.Plan = plan
	tracker.SetArtifactEstimate(len(plan.Artifacts))
	tracker.UpdateStep(models.StepStatusCompleted)
	tracker.SetPercentage(pctPlanned)

	if err := checkCancelled(ctx); err != nil {
		return err
	}

	// Stage 3: generate in dependency order. Each artifact is sanitized as
	// soon as it lands so later artifacts see the cleaned versions of their
	// dependencies in the shared context.
	ordered := orderByDependencies(plan.Artifacts)
	shared := generator.SharedContext{
		Prompt:   req.Prompt,
		Platform: req.Platform,
		Plan:     plan,
	}

	for i, item := range ordered {
		if err := checkCancelled(ctx); err != nil {
			return err
		}

		tracker.AppendStep(fmt.Sprintf("Generating %s", item.Name), models.StepStatusInProgress)

		raw, err := s.generator.GenerateArtifact(ctx, item, shared)
		if err != nil {
			tracker.UpdateStep(models.StepStatusError)

			return &GenerationError{Stage: "generate", Err: fmt.Errorf("artifact %s: %w", item.Name, err)}
		}

		doc, err := sanitizer.Sanitize(raw)
		if err != nil {
			tracker.UpdateStep(models.StepStatusError)

			return fmt.Errorf("artifact %s: %w", item.Name, err)
		}

		artifact := models.GeneratedArtifact{
			CorrelationID: uuid.New().String(),
			Name:          item.Name,
			Description:   item.Purpose,
			Document:      doc,
			NodeCount:     len(doc.Nodes),
			Kind:          item.Kind,
			DependsOn:     item.DependsOn,
		}

		result.Artifacts = append(result.Artifacts, artifact)
		shared.Generated = append(shared.Generated, artifact)

		s.publish(ctx, requestID, events.BatchArtifactCompleted{
			BaseEvent:     s.baseEvent(events.BatchArtifactCompletedEvent, requestID),
			CorrelationID: artifact.CorrelationID,
			ArtifactName:  artifact.Name,
			Index:         i + 1,
			Total:         len(ordered),
		})

		tracker.UpdateStep(models.StepStatusCompleted)
		tracker.SetPercentage(pctPlanned + (pctGenerated-pctPlanned)*(i+1)/len(ordered))
	}

	// Stage 4: structural review of every artifact. Findings are advisory;
	// they never fail a batch that generated successfully.
	tracker.AppendStep("Reviewing artifact structure", models.StepStatusInProgress)

	for _, artifact := range result.Artifacts {
		if err := checkCancelled(ctx); err != nil {
			tracker.UpdateStep(models.StepStatusError)

			return err
		}

		for _, issue := range s.analyzer.Analyze(artifact.Document, "") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: %s", artifact.Name, issue))
		}
	}

	tracker.UpdateStep(models.StepStatusCompleted)
	tracker.SetPercentage(pctValidated)

	if err := checkCancelled(ctx); err != nil {
		return err
	}

	// Stage 5: finalize. The flat batch deduction happens in the policy
	// wrapper once this returns nil.
	tracker.AppendStep("Finalizing batch", models.StepStatusCompleted)
	tracker.SetPercentage(pctDone)

	return nil
}

func totalNodes(artifacts []models.GeneratedArtifact) int {
	total := 0
	for _, a := range artifacts {
		total += a.NodeCount
	}

	return total
}
