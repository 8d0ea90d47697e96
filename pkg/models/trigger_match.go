package models

import "strings"

// TriggerMatcher decides whether a node type qualifies as a trigger. It is a
// configurable registry so the analyzer stays decoupled from any one
// downstream platform's type taxonomy: a type matches either exactly against
// a known trigger identifier or by containing a trigger-marker token.
type TriggerMatcher struct {
	Types   []string `yaml:"types"`
	Markers []string `yaml:"markers"`
}

// DefaultTriggerMatcher covers the common platform trigger taxonomy.
func DefaultTriggerMatcher() *TriggerMatcher {
	return &TriggerMatcher{
		Types: []string{
			"webhookTrigger",
			"scheduleTrigger",
			"manualTrigger",
			"chatTrigger",
			"formTrigger",
			"emailTrigger",
		},
		Markers: []string{"trigger", "webhook", "cron", "schedule", "poll"},
	}
}

// Matches reports whether the given node type qualifies as a trigger.
func (m *TriggerMatcher) Matches(nodeType string) bool {
	if nodeType == "" {
		return false
	}

	for _, t := range m.Types {
		if nodeType == t {
			return true
		}
	}

	lowered := strings.ToLower(nodeType)
	for _, marker := range m.Markers {
		if strings.Contains(lowered, strings.ToLower(marker)) {
			return true
		}
	}

	return false
}

// IsTriggerNode reports whether the node qualifies as a trigger under this matcher.
func (m *TriggerMatcher) IsTriggerNode(node *Node) bool {
	return m.Matches(node.Type)
}
