package graph

import (
	"fmt"
	"strings"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// Overlay contains session data to highlight on the graph.
type Overlay struct {
	Completed []string
	Current   string
}

// GenerateMermaid produces a Mermaid flowchart of a flow's declared steps.
// Steps are chained in declaration order and end in the results sentinel.
// Shapes:
// - Question step: [/Parallelogram/]
// - Contact step: [[Subroutine]]
// - Results: ((Circle))
// Conditional steps get a dotted "skip" edge from their predecessor to their
// successor, since they are only shown when their predicate holds.
func GenerateMermaid(steps []domain.Step, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make([]string, 0, len(steps)+1)
	for _, st := range steps {
		safeID := sanitizeMermaidID(st.ID)
		ids = append(ids, safeID)

		opener, closer := "[/", "/]"
		if isContact(st) {
			opener, closer = "[[", "]]"
		}

		label := st.ID
		if st.Title != "" {
			label = st.Title
		}
		label = strings.ReplaceAll(label, "\"", "'")
		if fields := st.Fields(); len(fields) > 0 {
			label = fmt.Sprintf("%s <br/> %s", label, strings.Join(fields, ", "))
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))
	}

	results := sanitizeMermaidID(domain.ResultsStepID)
	ids = append(ids, results)
	sb.WriteString(fmt.Sprintf("    %s((\"Results\"))\n", results))

	for i := 0; i+1 < len(ids); i++ {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", ids[i], ids[i+1]))
	}
	for i, st := range steps {
		if st.Applicable == nil {
			continue
		}
		from := "start"
		if i > 0 {
			from = ids[i-1]
		}
		if i == 0 {
			sb.WriteString("    start((\" \"))\n")
			sb.WriteString(fmt.Sprintf("    start --> %s\n", ids[0]))
		}
		sb.WriteString(fmt.Sprintf("    %s -. skip .-> %s\n", from, ids[i+1]))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Completed {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Current)))
		}
	}

	return sb.String()
}

func isContact(st domain.Step) bool {
	for _, q := range st.Questions {
		if q.Kind == domain.KindContact {
			return true
		}
	}
	return false
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
