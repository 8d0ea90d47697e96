// Package web provides HTTP request and response types for the generation API.
package web

import (
	"encoding/json"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/export"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
)

// GenerateRequest represents the request body for a single generation run.
type GenerateRequest struct {
	Prompt     string `json:"prompt"      validate:"required,min=3"`
	Platform   string `json:"platform"    validate:"required"`
	TemplateID string `json:"template_id,omitempty"`
}

// GenerateBatchRequest represents the request body for a batch generation run.
// Mode defaults to batch when omitted.
type GenerateBatchRequest struct {
	Prompt   string                `json:"prompt"   validate:"required,min=3"`
	Platform string                `json:"platform" validate:"required"`
	Mode     models.GenerationMode `json:"mode,omitempty" validate:"omitempty,oneof=batch enterprise"`
}

// AnalyzeRequest represents the request body for structural analysis.
type AnalyzeRequest struct {
	Document  *models.Document `json:"document" validate:"required"`
	UserError string           `json:"user_error,omitempty"`
}

// AnalyzeResponse lists the analyzer's findings. An empty list means the
// document looks structurally sound.
type AnalyzeResponse struct {
	Issues []string `json:"issues"`
}

// RegenerateRequest represents the request body for a metered repair run.
type RegenerateRequest struct {
	Document  *models.Document `json:"document" validate:"required"`
	Issues    []string         `json:"issues,omitempty"`
	UserError string           `json:"user_error,omitempty"`
}

// SanitizeRequest carries raw generator output for standalone sanitization.
type SanitizeRequest struct {
	Content string `json:"content" validate:"required"`
}

// SanitizeResponse is the cleaned, import-ready document.
type SanitizeResponse struct {
	Document *models.Document `json:"document"`
}

// CreditsResponse reports the account's current balances.
type CreditsResponse struct {
	Credits      int `json:"credits"`
	BatchCredits int `json:"batch_credits"`
}

// ExportBatchRequest renders previously generated artifacts into import files.
type ExportBatchRequest struct {
	Prompt    string                     `json:"prompt"    validate:"required"`
	Artifacts []models.GeneratedArtifact `json:"artifacts" validate:"required,min=1"`
}

// ExportFileResponse is one rendered import file with its payload inline.
type ExportFileResponse struct {
	Name     string          `json:"name"`
	Document json.RawMessage `json:"document"`
}

// ExportBatchResponse carries the rendered files plus the import manifest.
type ExportBatchResponse struct {
	Files    []ExportFileResponse `json:"files"`
	Manifest export.Manifest      `json:"manifest"`
}

// TransformExportResponse maps a rendered batch into the wire shape, inlining
// each file's payload as raw JSON.
func TransformExportResponse(batch *export.Batch) ExportBatchResponse {
	response := ExportBatchResponse{
		Files:    make([]ExportFileResponse, 0, len(batch.Files)),
		Manifest: batch.Manifest,
	}

	for _, file := range batch.Files {
		response.Files = append(response.Files, ExportFileResponse{
			Name:     file.Name,
			Document: json.RawMessage(file.Data),
		})
	}

	return response
}
