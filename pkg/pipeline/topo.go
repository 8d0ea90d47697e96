package pipeline

import "github.com/thecyberginehost/streamsuite-sub000/pkg/models"

// orderByDependencies sorts planned artifacts so that every artifact comes
// after the artifacts it depends on, keeping plan order among independent
// items (stable Kahn). Dependencies naming nothing in the plan are ignored;
// if the metadata is cyclic the remaining items fall back to plan order.
// Items are tracked by plan index, so a planner reply reusing an artifact
// name still terminates. The dependsOn metadata itself is preserved
// untouched for the export manifest either way.
func orderByDependencies(items []models.PlannedArtifact) []models.PlannedArtifact {
	inPlan := make(map[string]bool, len(items))
	for _, item := range items {
		inPlan[item.Name] = true
	}

	pending := make([]int, len(items))

	for i, item := range items {
		for _, dep := range item.DependsOn {
			if inPlan[dep] && dep != item.Name {
				pending[i]++
			}
		}
	}

	ordered := make([]models.PlannedArtifact, 0, len(items))
	emitted := make([]bool, len(items))

	for len(ordered) < len(items) {
		progressed := false

		for i, item := range items {
			if emitted[i] || pending[i] > 0 {
				continue
			}

			ordered = append(ordered, item)
			emitted[i] = true
			progressed = true

			for j, other := range items {
				if emitted[j] {
					continue
				}

				for _, dep := range other.DependsOn {
					if dep == item.Name {
						pending[j]--
					}
				}
			}
		}

		if !progressed {
			// Cycle: emit the rest in plan order.
			for i, item := range items {
				if !emitted[i] {
					ordered = append(ordered, item)
					emitted[i] = true
				}
			}
		}
	}

	return ordered
}
