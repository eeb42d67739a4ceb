package tree

import (
	"sort"

	"github.com/pkg/errors"
)

// DirectedTree is a rooted tree over uniquely named nodes. Iteration order is
// breadth-first from the root with children visited in ascending name order,
// so index assignment is reproducible regardless of declaration order.
type DirectedTree struct {
	root    *Node
	nodes   map[string]*Node
	ordered []*Node
}

// New builds a tree from a root and the set of nodes reachable from it,
// assigning BFS indices. Construction fails if two nodes share a name.
func New(root *Node, nodes []*Node) (*DirectedTree, error) {
	byName := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		if _, ok := byName[n.Name()]; ok {
			return nil, errors.Errorf("nodes of a directed tree must have unique names: %q", n.Name())
		}
		byName[n.Name()] = n
	}
	if _, ok := byName[root.Name()]; !ok {
		return nil, errors.Errorf("root node %q not among the tree nodes", root.Name())
	}

	t := &DirectedTree{root: root, nodes: byName}
	t.ordered = t.breadthFirst()
	for idx, node := range t.ordered {
		node.Index = idx
	}
	return t, nil
}

// breadthFirst walks the tree from the root, sorting the children of each
// node by name so that insertion order does not influence indexing.
func (t *DirectedTree) breadthFirst() []*Node {
	visited := map[string]bool{t.root.Name(): true}
	ordered := []*Node{t.root}

	queue := []*Node{t.root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		children := node.Children()
		sort.Strings(children)
		for _, childName := range children {
			child, ok := t.nodes[childName]
			if !ok || visited[childName] {
				continue
			}
			visited[childName] = true
			ordered = append(ordered, child)
			queue = append(queue, child)
		}
	}
	return ordered
}

// Root returns the root node.
func (t *DirectedTree) Root() *Node { return t.root }

// Len returns the number of nodes in the tree.
func (t *DirectedTree) Len() int { return len(t.ordered) }

// Nodes returns the nodes in BFS order.
func (t *DirectedTree) Nodes() []*Node {
	out := make([]*Node, len(t.ordered))
	copy(out, t.ordered)
	return out
}

// Names returns the node names in BFS order.
func (t *DirectedTree) Names() []string {
	names := make([]string, 0, len(t.ordered))
	for _, n := range t.ordered {
		names = append(names, n.Name())
	}
	return names
}

// Node looks up a node by name.
func (t *DirectedTree) Node(name string) (*Node, error) {
	node, ok := t.nodes[name]
	if !ok {
		return nil, errors.Errorf("node %q not found in tree", name)
	}
	return node, nil
}

// NodeAt returns the node with the given BFS index.
func (t *DirectedTree) NodeAt(index int) (*Node, error) {
	if index < 0 || index >= len(t.ordered) {
		return nil, errors.Errorf("node index %d out of range [0, %d)", index, len(t.ordered))
	}
	return t.ordered[index], nil
}

// Contains reports whether a node with the given name is in the tree.
func (t *DirectedTree) Contains(name string) bool {
	_, ok := t.nodes[name]
	return ok
}

// ContainsNode reports whether a node with the same name as the given node is
// in the tree. Name equality is the sole identity basis for tree elements.
func (t *DirectedTree) ContainsNode(node *Node) bool {
	return t.Contains(node.Name())
}
