// Package export renders sanitized documents into import-ready payloads.
package export

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
)

//go:embed schema.json
var importSchema string

// ErrSchemaViolation signals that an export payload does not match the
// downstream platform's import schema.
var ErrSchemaViolation = errors.New("export does not match import schema")

// Marshal renders a document as import-ready JSON. Output is deterministic
// for a given document: object keys are emitted in struct order and map keys
// are sorted by the encoder.
func Marshal(doc *models.Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}

	return json.MarshalIndent(doc, "", "  ")
}

// ValidateExport checks a rendered payload against the embedded import
// schema. Violations wrap ErrSchemaViolation with one line per finding.
func ValidateExport(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(importSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil
	}

	findings := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		findings = append(findings, desc.String())
	}

	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(findings, "; "))
}

// File is one named payload in a batch export.
type File struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// ManifestEntry describes one artifact in the batch manifest.
type ManifestEntry struct {
	File      string              `json:"file"`
	Name      string              `json:"name"`
	Kind      models.ArtifactKind `json:"kind"`
	NodeCount int                 `json:"node_count"`
	DependsOn []string            `json:"depends_on,omitempty"`
}

// Manifest summarizes a batch export for the person doing the import.
type Manifest struct {
	Prompt        string          `json:"prompt"`
	ArtifactCount int             `json:"artifact_count"`
	ImportNote    string          `json:"import_note"`
	Artifacts     []ManifestEntry `json:"artifacts"`
}

// Batch is a complete batch export: one file per artifact plus a manifest.
type Batch struct {
	Files    []File   `json:"files"`
	Manifest Manifest `json:"manifest"`
}

const importNote = "Import orchestrator workflows before their children so cross-workflow references resolve on first run."

// BatchExport renders every artifact and builds the manifest. Each payload
// is schema-checked before inclusion; one bad artifact fails the export.
func BatchExport(prompt string, artifacts []models.GeneratedArtifact) (*Batch, error) {
	batch := &Batch{
		Manifest: Manifest{
			Prompt:        prompt,
			ArtifactCount: len(artifacts),
			ImportNote:    importNote,
			Artifacts:     make([]ManifestEntry, 0, len(artifacts)),
		},
	}

	for i, artifact := range artifacts {
		data, err := Marshal(artifact.Document)
		if err != nil {
			return nil, fmt.Errorf("artifact %s: %w", artifact.Name, err)
		}

		if err := ValidateExport(data); err != nil {
			return nil, fmt.Errorf("artifact %s: %w", artifact.Name, err)
		}

		fileName := fmt.Sprintf("%02d-%s.json", i+1, slugify(artifact.Name))

		batch.Files = append(batch.Files, File{Name: fileName, Data: data})
		batch.Manifest.Artifacts = append(batch.Manifest.Artifacts, ManifestEntry{
			File:      fileName,
			Name:      artifact.Name,
			Kind:      artifact.Kind,
			NodeCount: artifact.NodeCount,
			DependsOn: artifact.DependsOn,
		})
	}

	return batch, nil
}

// slugify lowercases a name and collapses every non-alphanumeric run into a
// single hyphen.
func slugify(name string) string {
	var b strings.Builder

	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)

			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')

				lastHyphen = true
			}
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "workflow"
	}

	return slug
}
