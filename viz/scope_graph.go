// ABOUTME: GraphViz rendering of which roles can reach which view modes
// ABOUTME: Highlights each role's default mode and, optionally, one user's current lens
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/abbrubin150-ui/crmhtml/belonging"
	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// ScopeGraph summarises what GenerateScopeGraph drew.
type ScopeGraph struct {
	DOT       string
	NodeCount int
	EdgeCount int
}

// GenerateScopeGraph renders the role catalog as a DOT graph. When user is
// non-nil its role and current view mode are filled in.
func GenerateScopeGraph(ctx context.Context, user *models.User) (*ScopeGraph, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLabel("Role reachability")
	graph.SetRankDir(cgraph.LRRank)

	out := &ScopeGraph{}

	modes := make(map[models.ViewMode]*cgraph.Node)
	for _, mode := range belonging.ViewModes() {
		node, err := graph.CreateNodeByName("mode_" + string(mode))
		if err != nil {
			return nil, fmt.Errorf("failed to create node for %s: %w", mode, err)
		}
		node.SetLabel(fmt.Sprintf("%s\n(%s)", belonging.ViewModeLabel(mode), mode))
		node.SetShape("ellipse")
		node.SetStyle("filled")
		node.SetFillColor("lightgreen")
		if user != nil && user.ViewMode == mode {
			node.SetFillColor("gold")
		}
		modes[mode] = node
		out.NodeCount++
	}

	for _, role := range belonging.Roles() {
		node, err := graph.CreateNodeByName("role_" + string(role))
		if err != nil {
			return nil, fmt.Errorf("failed to create node for %s: %w", role, err)
		}
		node.SetLabel(string(role))
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor("lightblue")
		if user != nil && user.Role == role {
			node.SetFillColor("gold")
		}
		out.NodeCount++

		def := belonging.DefaultViewMode(role)
		for _, mode := range belonging.ViewModesForRole(role) {
			edge, err := graph.CreateEdgeByName("", node, modes[mode])
			if err != nil {
				return nil, fmt.Errorf("failed to link %s to %s: %w", role, mode, err)
			}
			if mode == def {
				edge.SetLabel("default")
			} else {
				edge.SetStyle("dashed")
			}
			out.EdgeCount++
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("failed to render graph: %w", err)
	}
	out.DOT = buf.String()

	return out, nil
}
