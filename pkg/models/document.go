// Package models defines the core domain models for workflow artifact generation.
package models

// Document represents a workflow graph in the downstream platform's import format.
type Document struct {
	Name        string                 `json:"name"        validate:"required"`
	Nodes       []Node                 `json:"nodes"`
	Connections map[string]OutputGroup `json:"connections"`
	Active      bool                   `json:"active"`
	Settings    Settings               `json:"settings"`
	PinData     map[string]any         `json:"pinData"`
	Tags        []string               `json:"tags"`
}

// Settings holds workflow execution settings recognized by the downstream platform.
type Settings struct {
	ExecutionOrder string `json:"executionOrder"`
}

// Node represents one executable step in a workflow document.
type Node struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type" validate:"required"`
	Parameters  map[string]any `json:"parameters"`
	Position    [2]float64     `json:"position"`
	TypeVersion float64        `json:"typeVersion"`
}

// OutputGroup holds the ordered output lists of one source node.
type OutputGroup struct {
	Main [][]TargetRef `json:"main"`
}

// TargetRef names a downstream node receiving data from a source output.
type TargetRef struct {
	Node  string `json:"node"`
	Type  string `json:"type,omitempty"`
	Index int    `json:"index,omitempty"`
}

// NodeByName returns the first node with the given name, or nil.
// Node names are the graph-connection keys; duplicates resolve first-match.
func (d *Document) NodeByName(name string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].Name == name {
			return &d.Nodes[i]
		}
	}

	return nil
}
