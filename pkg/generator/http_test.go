package generator

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPGenerator_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/generate", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "send a message", req["prompt"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"document":    map[string]any{"name": "Messenger"},
			"tokens_used": 1200,
		})
	}))
	defer server.Close()

	gen := NewHTTPGenerator(server.URL, discardLogger())

	result, err := gen.Generate(context.Background(), "send a message", "n8n", Options{})

	require.NoError(t, err)
	assert.Equal(t, "Messenger", result.Document["name"])
	assert.Equal(t, 1200, result.TokensUsed)
}

func TestHTTPGenerator_Plan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/plan", r.URL.Path)

		_ = json.NewEncoder(w).Encode(models.BatchPlan{Artifacts: []models.PlannedArtifact{
			{Name: "Fetcher", Kind: models.ArtifactKindChild},
		}})
	}))
	defer server.Close()

	gen := NewHTTPGenerator(server.URL, discardLogger())

	plan, err := gen.Plan(context.Background(), "sync", 3)

	require.NoError(t, err)
	require.Len(t, plan.Artifacts, 1)
	assert.Equal(t, "Fetcher", plan.Artifacts[0].Name)
}

func TestHTTPGenerator_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	gen := NewHTTPGenerator(server.URL, discardLogger())

	_, err := gen.Generate(context.Background(), "send a message", "n8n", Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
