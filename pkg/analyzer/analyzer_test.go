package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
)

func cleanDocument() *models.Document {
	return &models.Document{
		Name: "Clean",
		Nodes: []models.Node{
			{Name: "A", Type: "webhookTrigger", Parameters: map[string]any{"path": "/hook"}},
			{Name: "B", Type: "setFields", Parameters: map[string]any{"x": 1}},
		},
		Connections: map[string]models.OutputGroup{
			"A": {Main: [][]models.TargetRef{{{Node: "B"}}}},
		},
	}
}

func TestAnalyze_CleanDocument(t *testing.T) {
	issues := New(nil).Analyze(cleanDocument(), "")

	assert.Empty(t, issues)
}

func TestAnalyze_TriggerWithoutParametersIsClean(t *testing.T) {
	doc := &models.Document{
		Nodes: []models.Node{
			{Name: "A", Type: "webhookTrigger"},
			{Name: "B", Type: "setFields", Parameters: map[string]any{"x": 1}},
		},
		Connections: map[string]models.OutputGroup{
			"A": {Main: [][]models.TargetRef{{{Node: "B"}}}},
		},
	}

	issues := New(nil).Analyze(doc, "")

	assert.Empty(t, issues)
}

func TestAnalyze_NilDocument(t *testing.T) {
	issues := New(nil).Analyze(nil, "")

	assert.Equal(t, []string{IssueMissingNodes, IssueMissingConnections}, issues)
}

func TestAnalyze_MissingArrays(t *testing.T) {
	doc := &models.Document{Name: "bare"}

	issues := New(nil).Analyze(doc, "")

	assert.Contains(t, issues, IssueMissingNodes)
	assert.Contains(t, issues, IssueMissingConnections)
}

func TestAnalyze_NoTrigger(t *testing.T) {
	doc := &models.Document{
		Nodes: []models.Node{
			{Name: "A", Type: "setFields", Parameters: map[string]any{"x": 1}},
		},
		Connections: map[string]models.OutputGroup{},
	}

	issues := New(nil).Analyze(doc, "")

	assert.Contains(t, issues, IssueNoTrigger)
}

func TestAnalyze_Disconnection(t *testing.T) {
	doc := cleanDocument()
	doc.Nodes = append(doc.Nodes, models.Node{
		Name: "C", Type: "httpRequest", Parameters: map[string]any{"url": "https://example.com"},
	})

	issues := New(nil).Analyze(doc, "")

	assert.Contains(t, issues, "Node C appears to be disconnected")
	assert.NotContains(t, issues, "Node A appears to be disconnected")
	assert.NotContains(t, issues, "Node B appears to be disconnected")
}

func TestAnalyze_SingleNodeNeverDisconnected(t *testing.T) {
	doc := &models.Document{
		Nodes: []models.Node{
			{Name: "Only", Type: "httpRequest", Parameters: map[string]any{"url": "x"}},
		},
		Connections: map[string]models.OutputGroup{},
	}

	issues := New(nil).Analyze(doc, "")

	assert.NotContains(t, issues, "Node Only appears to be disconnected")
}

func TestAnalyze_UnconfiguredNode(t *testing.T) {
	doc := cleanDocument()
	doc.Nodes[1].Parameters = map[string]any{}

	issues := New(nil).Analyze(doc, "")

	assert.Contains(t, issues, "Node B has no parameters configured")
}

func TestAnalyze_DuplicateNames(t *testing.T) {
	doc := cleanDocument()
	doc.Nodes = append(doc.Nodes, models.Node{
		Name: "B", Type: "httpRequest", Parameters: map[string]any{"url": "x"},
	})

	issues := New(nil).Analyze(doc, "")

	assert.Contains(t, issues, "Duplicate node name B")
}

func TestAnalyze_DanglingTarget(t *testing.T) {
	doc := cleanDocument()
	doc.Connections["A"] = models.OutputGroup{
		Main: [][]models.TargetRef{{{Node: "B"}, {Node: "Ghost"}}},
	}

	issues := New(nil).Analyze(doc, "")

	assert.Contains(t, issues, "Connection target Ghost does not exist")
}

func TestAnalyze_UserErrorAppendedLast(t *testing.T) {
	doc := cleanDocument()
	doc.Nodes[1].Parameters = nil

	issues := New(nil).Analyze(doc, "it loops forever")

	require.NotEmpty(t, issues)
	assert.Equal(t, UserErrorPrefix+"it loops forever", issues[len(issues)-1])
}

func TestAnalyze_ReadOnly(t *testing.T) {
	doc := cleanDocument()
	before := *doc

	_ = New(nil).Analyze(doc, "whatever")

	assert.Equal(t, before.Name, doc.Name)
	assert.Len(t, doc.Nodes, len(before.Nodes))
	assert.Len(t, doc.Connections, len(before.Connections))
}

func TestAnalyze_CustomTriggerRegistry(t *testing.T) {
	matcher := &models.TriggerMatcher{Types: []string{"startEvent"}}

	doc := &models.Document{
		Nodes: []models.Node{
			{Name: "Start", Type: "startEvent", Parameters: map[string]any{"a": 1}},
		},
		Connections: map[string]models.OutputGroup{},
	}

	issues := New(matcher).Analyze(doc, "")

	assert.NotContains(t, issues, IssueNoTrigger)
}
