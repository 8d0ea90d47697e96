package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/export"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/ledger"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/pipeline"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/sanitizer"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// serviceProblem maps a pipeline error onto an HTTP problem and status.
// Accounting warnings never reach here; they travel inside 200 responses.
func serviceProblem(c fiber.Ctx, err error) (*problems.Problem, int) {
	switch {
	case sanitizer.IsValidationError(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("invalid_document").
			WithDetail(err.Error())

		return problem, fiber.StatusBadRequest

	case errors.Is(err, ledger.ErrInsufficientCredits),
		errors.Is(err, ledger.ErrInsufficientBatchCredits):
		problem := problems.NewStatusProblem(402).
			WithInstance(c.Path()).
			WithType("insufficient_credits").
			WithDetail(err.Error())

		return problem, fiber.StatusPaymentRequired

	case pipeline.IsGenerationError(err):
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType("generation_failed").
			WithDetail(err.Error())

		return problem, fiber.StatusBadGateway

	case errors.Is(err, pipeline.ErrRunCancelled):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("run_cancelled").
			WithDetail(err.Error())

		return problem, fiber.StatusConflict

	case errors.Is(err, export.ErrSchemaViolation):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("schema_violation").
			WithDetail(err.Error())

		return problem, fiber.StatusUnprocessableEntity

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return problem, fiber.StatusInternalServerError
	}
}

func handleServiceError(c fiber.Ctx, err error) error {
	problem, status := serviceProblem(c, err)

	return c.Status(status).JSON(problem)
}

// BatchFailureResponse extends the problem body with whatever the batch run
// produced before failing: plan, artifacts, progress and the aborted flag.
type BatchFailureResponse struct {
	*problems.Problem

	Partial *pipeline.BatchResult `json:"partial,omitempty"`
}

// handleBatchError keeps partial batch results on the error response; the
// caller paid nothing for them but should not lose them.
func handleBatchError(c fiber.Ctx, err error, result *pipeline.BatchResult) error {
	problem, status := serviceProblem(c, err)
	if result == nil {
		return c.Status(status).JSON(problem)
	}

	return c.Status(status).JSON(BatchFailureResponse{
		Problem:        problem,
		Partial:        result,
	})
}
