// Package analyzer performs read-only structural diagnostics over workflow documents.
package analyzer

import (
	"sort"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
)

// Issue strings for defects that do not name a node.
const (
	IssueMissingNodes       = "Missing or invalid nodes array"
	IssueMissingConnections = "Missing or invalid connections"
	IssueNoTrigger          = "No trigger node found"
)

// UserErrorPrefix marks an issue as user-reported rather than detected.
const UserErrorPrefix = "User reported: "

// Analyzer diagnoses structural defects in a document's connection graph.
// It never mutates the document; issues are informational presentation-order
// strings, not errors.
type Analyzer struct {
	triggers *models.TriggerMatcher
}

func New(triggers *models.TriggerMatcher) *Analyzer {
	if triggers == nil {
		triggers = models.DefaultTriggerMatcher()
	}

	return &Analyzer{triggers: triggers}
}

// Analyze returns the ordered issue list for a document, appending the
// user-reported error text verbatim when present.
func (a *Analyzer) Analyze(doc *models.Document, userErrorText string) []string {
	issues := []string{}

	if doc == nil {
		issues = append(issues, IssueMissingNodes, IssueMissingConnections)

		return appendUserError(issues, userErrorText)
	}

	if doc.Nodes == nil {
		issues = append(issues, IssueMissingNodes)
	}

	if doc.Connections == nil {
		issues = append(issues, IssueMissingConnections)
	}

	if !a.hasTrigger(doc) {
		issues = append(issues, IssueNoTrigger)
	}

	issues = append(issues, duplicateNameIssues(doc)...)

	targets := connectionTargets(doc)

	issues = append(issues, danglingTargetIssues(doc, targets)...)
	issues = append(issues, disconnectionIssues(a.triggers, doc, targets)...)
	issues = append(issues, configurationIssues(a.triggers, doc)...)

	return appendUserError(issues, userErrorText)
}

func (a *Analyzer) hasTrigger(doc *models.Document) bool {
	for i := range doc.Nodes {
		if a.triggers.IsTriggerNode(&doc.Nodes[i]) {
			return true
		}
	}

	return false
}

// connectionTargets collects every node name referenced as a target anywhere
// under any source's main output lists. A single pass suffices: the checks
// ask "is this node ever a target", not full reachability from the trigger.
func connectionTargets(doc *models.Document) map[string]bool {
	targets := map[string]bool{}

	for _, group := range doc.Connections {
		for _, list := range group.Main {
			for _, target := range list {
				targets[target.Node] = true
			}
		}
	}

	return targets
}

func duplicateNameIssues(doc *models.Document) []string {
	issues := []string{}
	seen := map[string]bool{}

	for i := range doc.Nodes {
		name := doc.Nodes[i].Name
		if seen[name] {
			issues = append(issues, "Duplicate node name "+name)

			continue
		}

		seen[name] = true
	}

	return issues
}

func danglingTargetIssues(doc *models.Document, targets map[string]bool) []string {
	issues := []string{}

	for _, name := range sortedKeys(targets) {
		if doc.NodeByName(name) == nil {
			issues = append(issues, "Connection target "+name+" does not exist")
		}
	}

	return issues
}

// sortedKeys keeps dangling-target ordering stable; connection map iteration
// order is not.
func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func disconnectionIssues(triggers *models.TriggerMatcher, doc *models.Document, targets map[string]bool) []string {
	issues := []string{}

	if len(doc.Nodes) <= 1 {
		return issues
	}

	for i := range doc.Nodes {
		node := &doc.Nodes[i]

		if targets[node.Name] || triggers.IsTriggerNode(node) {
			continue
		}

		issues = append(issues, "Node "+node.Name+" appears to be disconnected")
	}

	return issues
}

// configurationIssues flags action nodes with nothing configured. Trigger
// nodes are exempt: many platform triggers are valid with zero parameters.
func configurationIssues(triggers *models.TriggerMatcher, doc *models.Document) []string {
	issues := []string{}

	for i := range doc.Nodes {
		node := &doc.Nodes[i]

		if triggers.IsTriggerNode(node) {
			continue
		}

		if len(node.Parameters) == 0 {
			issues = append(issues, "Node "+node.Name+" has no parameters configured")
		}
	}

	return issues
}

func appendUserError(issues []string, userErrorText string) []string {
	if userErrorText != "" {
		issues = append(issues, UserErrorPrefix+userErrorText)
	}

	return issues
}
