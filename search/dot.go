package search

import (
	"fmt"
	"io"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
)

// ExportDOT writes the search tree from the last Search call in Graphviz
// DOT form, down to maxDepth plies. Node labels carry the move, the visit
// count and the mean value from the parent's perspective. Intended for
// debugging searches, not for large trees.
func (m *MCTS) ExportDOT(out io.Writer, maxDepth int) error {
	if m.tree == nil {
		return errors.New("no search tree: run Search first")
	}
	graph := gographviz.NewGraph()
	if err := graph.SetName("mcts"); err != nil {
		return err
	}
	if err := graph.SetDir(true); err != nil {
		return err
	}

	rootName := `"root"`
	rootVisits := m.tree.arena.at(m.tree.root).visits.Load()
	if err := graph.AddNode("mcts", rootName, map[string]string{
		"label": fmt.Sprintf(`"root\n%d visits"`, rootVisits),
		"shape": "box",
	}); err != nil {
		return err
	}
	if err := m.addDOTChildren(graph, m.tree.root, rootName, maxDepth); err != nil {
		return err
	}
	_, err := io.WriteString(out, graph.String())
	return errors.Wrap(err, "writing DOT graph")
}

func (m *MCTS) addDOTChildren(graph *gographviz.Graph, idx uint32, parentName string, depth int) error {
	if depth <= 0 {
		return nil
	}
	n := m.tree.arena.at(idx)
	if !n.expanded.Load() || n.terminal {
		return nil
	}
	for i := range n.edges {
		e := &n.edges[i]
		visits := e.visits.Load()
		if visits == 0 {
			continue
		}
		name := fmt.Sprintf(`"%s_%d_%s"`, parentName[1:len(parentName)-1], depth, e.mv)
		label := fmt.Sprintf(`"%s\n%d visits, value %.3f"`, e.mv, visits, 1-e.mean())
		if err := graph.AddNode("mcts", name, map[string]string{"label": label}); err != nil {
			return err
		}
		if err := graph.AddEdge(parentName, name, true, nil); err != nil {
			return err
		}
		if ci := e.child.Load(); ci != 0 {
			if err := m.addDOTChildren(graph, ci-1, name, depth-1); err != nil {
				return err
			}
		}
	}
	return nil
}
