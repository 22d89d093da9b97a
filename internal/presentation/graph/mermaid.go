package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/wizard"
)

// Overlay contains session state to visualize on the graph.
type Overlay struct {
	// Visited are screens of wizard steps already marked valid.
	Visited []domain.Screen
	Current domain.Screen
}

// OverlayFor derives the overlay of a stored session.
func OverlayFor(snap *domain.Snapshot, defs []wizard.Definition) *Overlay {
	if snap == nil {
		return nil
	}
	o := &Overlay{Current: snap.Route.Screen}
	for _, def := range defs {
		state, ok := snap.Wizards[def.Name]
		if !ok {
			continue
		}
		for i, valid := range state.Valid {
			if screen, ok := def.ScreenFor(i + 1); ok && valid {
				o.Visited = append(o.Visited, screen)
			}
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the screens and the moves
// between them. It applies semantic styling:
// - Landing: ((Circle))
// - Protected (member or admin): [[Subroutine]]
// - Auth (input): [/Parallelogram/]
// - Default: [Rectangle]
// Protected screens point at auth with a dotted arrow. Wizards bound to
// screens are chained step by step up to their submit route.
func GenerateMermaid(wizards []wizard.Definition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, screen := range domain.Screens() {
		safeID := sanitizeMermaidID(string(screen))

		opener, closer := "[", "]"
		switch {
		case screen == domain.ScreenLanding:
			opener, closer = "((", "))"
		case screen == domain.ScreenAuth:
			opener, closer = "[/", "/]"
		case screen.Access() != domain.AccessPublic:
			opener, closer = "[[", "]]"
		}

		label := string(screen)
		if screen.Access() == domain.AccessAdmin {
			label += " <br/> 🔒 admin"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		if screen.Access() != domain.AccessPublic {
			fmt.Fprintf(&sb, "    %s -. \"signed out\" .-> %s\n", safeID, sanitizeMermaidID(string(domain.ScreenAuth)))
		}
	}
	fmt.Fprintf(&sb, "    %s -- \"sign in\" --> %s\n",
		sanitizeMermaidID(string(domain.ScreenAuth)), sanitizeMermaidID(string(domain.ScreenDashboard)))

	for _, def := range wizards {
		if len(def.Screens) == 0 {
			continue
		}
		for i := 0; i+1 < len(def.Screens); i++ {
			fmt.Fprintf(&sb, "    %s -- \"%s: next\" --> %s\n",
				sanitizeMermaidID(string(def.Screens[i])), def.Name, sanitizeMermaidID(string(def.Screens[i+1])))
		}
		if def.SubmitRoute != "" {
			last := def.Screens[len(def.Screens)-1]
			fmt.Fprintf(&sb, "    %s == \"%s: submit\" ==> %s\n",
				sanitizeMermaidID(string(last)), def.Name, sanitizeMermaidID(string(def.SubmitRoute)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, s := range overlay.Visited {
			safeID := sanitizeMermaidID(string(s))
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(overlay.Current)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
