package sanitizer

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
)

const (
	defaultWorkflowName   = "Untitled Workflow"
	defaultExecutionOrder = "v1"
)

// Canonical 8-4-4-4-12 form with version nibble 4 and variant in {8,9,a,b}.
var uuid4Pattern = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// SanitizeJSON parses a raw JSON string and sanitizes the result. Generated
// text is often not strictly valid JSON (single quotes, trailing commas,
// fenced code blocks), so a failed strict parse falls back to jsonrepair
// before giving up.
func SanitizeJSON(input string) (*models.Document, error) {
	var raw map[string]any

	if err := json.Unmarshal([]byte(input), &raw); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(input)
		if repairErr != nil {
			return nil, newValidationError(ErrInvalidJSON, "invalid JSON payload")
		}

		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return nil, newValidationError(ErrInvalidJSON, "invalid JSON payload")
		}
	}

	return Sanitize(raw)
}

// Sanitize normalizes an arbitrary decoded JSON object into a valid Document.
// Every repair rule is conditional on the defect being present, so the
// function is idempotent: re-running it on its own output is a no-op. The
// only unrepairable defects are a missing nodes array and a node without a
// type, both of which fail with a ValidationError. Platform-assigned identity
// fields (id, versionId, meta.instanceId) are dropped because a fresh
// Document carries none of them.
func Sanitize(raw map[string]any) (*models.Document, error) {
	doc := &models.Document{}

	if name, ok := raw["name"].(string); ok && name != "" {
		doc.Name = name
	} else {
		doc.Name = defaultWorkflowName
	}

	rawNodes, ok := raw["nodes"].([]any)
	if !ok {
		return nil, newValidationError(ErrMissingNodes, "missing nodes array")
	}

	doc.Nodes = make([]models.Node, 0, len(rawNodes))

	for i, rawNode := range rawNodes {
		node, err := sanitizeNode(rawNode, i)
		if err != nil {
			return nil, err
		}

		doc.Nodes = append(doc.Nodes, node)
	}

	doc.Connections = sanitizeConnections(raw["connections"])

	if active, ok := raw["active"].(bool); ok {
		doc.Active = active
	}

	doc.Settings = sanitizeSettings(raw["settings"])
	doc.PinData = sanitizePinData(raw["pinData"])
	doc.Tags = sanitizeTags(raw["tags"])

	return doc, nil
}

func sanitizeNode(rawNode any, index int) (models.Node, error) {
	node := models.Node{}

	obj, ok := rawNode.(map[string]any)
	if !ok {
		obj = map[string]any{}
	}

	if id, ok := obj["id"].(string); ok && uuid4Pattern.MatchString(id) {
		node.ID = id
	} else {
		node.ID = uuid.New().String()
	}

	if name, ok := obj["name"].(string); ok && name != "" {
		node.Name = name
	} else {
		node.Name = "Node " + strconv.Itoa(index+1)
	}

	nodeType, ok := obj["type"].(string)
	if !ok || nodeType == "" {
		return node, newValidationError(ErrMissingNodeType, "node %s missing type field", node.Name)
	}

	node.Type = nodeType

	if params, ok := obj["parameters"].(map[string]any); ok {
		node.Parameters = params
	} else {
		node.Parameters = map[string]any{}
	}

	node.Position = sanitizePosition(obj["position"], index)

	if version, ok := obj["typeVersion"].(float64); ok {
		node.TypeVersion = version
	} else {
		node.TypeVersion = 1
	}

	return node, nil
}

// sanitizePosition accepts only a 2-element numeric pair; anything else gets
// a deterministic layout slot so imported nodes do not stack at the origin.
func sanitizePosition(raw any, index int) [2]float64 {
	fallback := [2]float64{100 + float64(index)*200, 300}

	pair, ok := raw.([]any)
	if !ok || len(pair) != 2 {
		return fallback
	}

	x, xOK := pair[0].(float64)
	y, yOK := pair[1].(float64)

	if !xOK || !yOK {
		return fallback
	}

	return [2]float64{x, y}
}

func sanitizeConnections(raw any) map[string]models.OutputGroup {
	connections := map[string]models.OutputGroup{}

	obj, ok := raw.(map[string]any)
	if !ok {
		return connections
	}

	for source, rawGroup := range obj {
		connections[source] = sanitizeOutputGroup(rawGroup)
	}

	return connections
}

func sanitizeOutputGroup(raw any) models.OutputGroup {
	group := models.OutputGroup{Main: [][]models.TargetRef{}}

	obj, ok := raw.(map[string]any)
	if !ok {
		return group
	}

	rawMain, ok := obj["main"].([]any)
	if !ok {
		return group
	}

	for _, rawList := range rawMain {
		targets := []models.TargetRef{}

		list, ok := rawList.([]any)
		if ok {
			for _, rawTarget := range list {
				if target, ok := sanitizeTargetRef(rawTarget); ok {
					targets = append(targets, target)
				}
			}
		}

		group.Main = append(group.Main, targets)
	}

	return group
}

func sanitizeTargetRef(raw any) (models.TargetRef, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return models.TargetRef{}, false
	}

	name, ok := obj["node"].(string)
	if !ok || name == "" {
		return models.TargetRef{}, false
	}

	target := models.TargetRef{Node: name}

	if refType, ok := obj["type"].(string); ok {
		target.Type = refType
	}

	if index, ok := obj["index"].(float64); ok {
		target.Index = int(index)
	}

	return target, true
}

func sanitizeSettings(raw any) models.Settings {
	settings := models.Settings{ExecutionOrder: defaultExecutionOrder}

	obj, ok := raw.(map[string]any)
	if !ok {
		return settings
	}

	if order, ok := obj["executionOrder"].(string); ok && order != "" {
		settings.ExecutionOrder = order
	}

	return settings
}

func sanitizePinData(raw any) map[string]any {
	if pinData, ok := raw.(map[string]any); ok {
		return pinData
	}

	return map[string]any{}
}

func sanitizeTags(raw any) []string {
	tags := []string{}

	list, ok := raw.([]any)
	if !ok {
		return tags
	}

	for _, rawTag := range list {
		if tag, ok := rawTag.(string); ok {
			tags = append(tags, tag)
		}
	}

	return tags
}
