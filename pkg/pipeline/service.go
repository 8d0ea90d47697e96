package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/analyzer"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/eventbus"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/events"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/generator"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/ledger"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/progress"
)

// PlanLimits caps how many artifacts the external planner may declare per mode.
type PlanLimits struct {
	BatchMaxArtifacts      int `yaml:"batch_max_artifacts"`
	EnterpriseMaxArtifacts int `yaml:"enterprise_max_artifacts"`
}

func DefaultPlanLimits() PlanLimits {
	return PlanLimits{BatchMaxArtifacts: 3, EnterpriseMaxArtifacts: 8}
}

func (l PlanLimits) MaxArtifacts(mode models.GenerationMode) int {
	if mode == models.ModeEnterprise {
		return l.EnterpriseMaxArtifacts
	}

	return l.BatchMaxArtifacts
}

// Service composes the generator, credit policy, sanitizer and analyzer into
// the generation pipeline. One Service serves many runs; each run owns its
// own progress state.
type Service struct {
	generator generator.Generator
	policy    *ledger.Policy
	analyzer  *analyzer.Analyzer
	eventBus  eventbus.EventBus
	limits    PlanLimits
	logger    *slog.Logger
	tracer    trace.Tracer
	clock     func() time.Time
}

func NewService(
	gen generator.Generator,
	policy *ledger.Policy,
	anlz *analyzer.Analyzer,
	eventBus eventbus.EventBus,
	limits PlanLimits,
	logger *slog.Logger,
) *Service {
	if anlz == nil {
		anlz = analyzer.New(nil)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		generator: gen,
		policy:    policy,
		analyzer:  anlz,
		eventBus:  eventBus,
		limits:    limits,
		logger:    logger,
		tracer:    otel.Tracer("streamsuite-pipeline"),
		clock:     time.Now,
	}
}

// WithClock replaces the wall clock; tests drive progress deterministically.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock

	return s
}

func (s *Service) newTracker(requestID string) *progress.Tracker {
	return progress.NewTracker(s.progressNotifier(requestID), s.clock)
}

// progressNotifier forwards every tracker mutation to the event bus so UI
// tiers can render a live bar. Publishing is best-effort.
func (s *Service) progressNotifier(requestID string) progress.Notifier {
	if s.eventBus == nil {
		return nil
	}

	return func(state models.ProgressState) {
		event := events.GenerationProgress{
			BaseEvent: s.baseEvent(events.GenerationProgressEvent, requestID),
			State:     state,
		}

		if err := s.eventBus.Publish(context.Background(), requestID, event); err != nil {
			s.logger.Warn("Failed to publish progress event", "request_id", requestID, "error", err)
		}
	}
}

func (s *Service) baseEvent(eventType events.EventType, requestID string) events.BaseEvent {
	base := events.BaseEvent{
		Type:      eventType,
		Timestamp: s.clock(),
		RequestID: requestID,
	}

	if s.eventBus != nil {
		base.ID = s.eventBus.GenerateID()
	}

	return base
}

func (s *Service) publish(ctx context.Context, requestID string, event eventbus.Event) {
	if s.eventBus == nil {
		return
	}

	if err := s.eventBus.Publish(context.WithoutCancel(ctx), requestID, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event",
			"request_id", requestID, "event_type", event.GetType(), "error", err)
	}
}

func (s *Service) publishDeductionWarnings(ctx context.Context, requestID string, result *ledger.MeteredResult) {
	if result.State.DeductionStatus != models.DeductionStatusFailed {
		return
	}

	reason := ""
	if len(result.Warnings) > 0 {
		reason = result.Warnings[0]
	}

	s.publish(ctx, requestID, events.CreditsDeductionFailed{
		BaseEvent: s.baseEvent(events.CreditsDeductionFailedEvent, requestID),
		Amount:    result.State.ActualCost,
		Reason:    reason,
	})
}

// checkCancelled is the between-stage cancellation point.
func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ErrRunCancelled
	default:
		return nil
	}
}
