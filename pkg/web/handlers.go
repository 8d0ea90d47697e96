package web

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/export"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/ledger"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/pipeline"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/sanitizer"
)

type APIHandlers struct {
	service   *pipeline.Service
	store     ledger.Store
	validator *validator.Validate
}

func NewAPIHandlers(service *pipeline.Service, store ledger.Store, validate *validator.Validate) *APIHandlers {
	return &APIHandlers{
		service:   service,
		store:     store,
		validator: validate,
	}
}

// Register mounts every route on the app.
func (h *APIHandlers) Register(app *fiber.App) {
	app.Post("/generate", h.Generate)
	app.Post("/generate/batch", h.GenerateBatch)
	app.Post("/debug/analyze", h.Analyze)
	app.Post("/debug/regenerate", h.Regenerate)
	app.Post("/documents/sanitize", h.Sanitize)
	app.Post("/export/batch", h.ExportBatch)
	app.Get("/credits", h.Credits)
}

func (h *APIHandlers) Generate(c fiber.Ctx) error {
	var req GenerateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.service.GenerateSingle(c.Context(), models.GenerationRequest{
		Prompt:     req.Prompt,
		Mode:       models.ModeSingle,
		Platform:   req.Platform,
		TemplateID: req.TemplateID,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GenerateBatch(c fiber.Ctx) error {
	var req GenerateBatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	mode := req.Mode
	if mode == "" {
		mode = models.ModeBatch
	}

	result, err := h.service.GenerateBatch(c.Context(), models.GenerationRequest{
		Prompt:   req.Prompt,
		Mode:     mode,
		Platform: req.Platform,
	})
	if err != nil {
		return handleBatchError(c, err, result)
	}

	return c.JSON(result)
}

func (h *APIHandlers) Analyze(c fiber.Ctx) error {
	var req AnalyzeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	issues := h.service.AnalyzeDocument(req.Document, req.UserError)
	if issues == nil {
		issues = []string{}
	}

	return c.JSON(AnalyzeResponse{Issues: issues})
}

func (h *APIHandlers) Regenerate(c fiber.Ctx) error {
	var req RegenerateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.service.Regenerate(c.Context(), req.Document, req.Issues, req.UserError)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) Sanitize(c fiber.Ctx) error {
	var req SanitizeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	doc, err := sanitizer.SanitizeJSON(req.Content)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(SanitizeResponse{Document: doc})
}

func (h *APIHandlers) ExportBatch(c fiber.Ctx) error {
	var req ExportBatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	batch, err := export.BatchExport(req.Prompt, req.Artifacts)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformExportResponse(batch))
}

func (h *APIHandlers) Credits(c fiber.Ctx) error {
	balance, err := h.store.Balance(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(CreditsResponse{
		Credits:      balance.Credits,
		BatchCredits: balance.BatchCredits,
	})
}
