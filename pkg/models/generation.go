package models

// GenerationMode selects the generation pipeline variant.
type GenerationMode string

const (
	ModeSingle     GenerationMode = "single"
	ModeBatch      GenerationMode = "batch"
	ModeEnterprise GenerationMode = "enterprise"
)

// ArtifactKind classifies a planned artifact's role within a batch.
type ArtifactKind string

const (
	ArtifactKindOrchestrator ArtifactKind = "orchestrator" // Top-level workflow invoking others
	ArtifactKindChild        ArtifactKind = "child"        // Sub-workflow invoked by an orchestrator
	ArtifactKindUtility      ArtifactKind = "utility"      // Standalone helper workflow
)

// GenerationRequest describes one user-initiated generation run.
type GenerationRequest struct {
	Prompt     string         `json:"prompt"      validate:"required,min=3"`
	Mode       GenerationMode `json:"mode"        validate:"required,oneof=single batch enterprise"`
	Platform   string         `json:"platform"    validate:"required"`
	TemplateID string         `json:"template_id,omitempty"`
}

// PlannedArtifact is one unit of batch work declared by the external planner.
type PlannedArtifact struct {
	Name      string       `json:"name"       validate:"required"`
	Purpose   string       `json:"purpose"`
	Kind      ArtifactKind `json:"kind"       validate:"required,oneof=orchestrator child utility"`
	DependsOn []string     `json:"depends_on,omitempty"`
}

// BatchPlan is the planner's declaration of what a batch run will produce.
// It is immutable after creation.
type BatchPlan struct {
	Artifacts []PlannedArtifact `json:"artifacts"`
}

// GeneratedArtifact is a realized planned artifact plus its metadata.
// CorrelationID is minted by the pipeline for stable UI reference; it is
// unrelated to node IDs and to any ID the downstream platform assigns on
// import.
type GeneratedArtifact struct {
	CorrelationID string       `json:"correlation_id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Document      *Document    `json:"document"`
	NodeCount     int          `json:"node_count"`
	Kind          ArtifactKind `json:"kind"`
	DependsOn     []string     `json:"depends_on,omitempty"`
}
