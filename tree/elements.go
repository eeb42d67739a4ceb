// Package tree implements the rooted directed tree underlying a robot's
// kinematic structure: links as nodes, joints as edges, and non-structural
// frames referencing into the tree.
package tree

import (
	"fmt"

	"github.com/robodesc/robodesc/sdf"
)

// Element is implemented by every tree member (node, edge, frame). Identity
// is the element name alone; names are globally unique within a tree.
type Element interface {
	Name() string
	Pose() *sdf.Pose
}

// Node is a tree node wrapping a link. Parent and children are stored by
// name and resolved through the owning tree, so nodes never form pointer
// cycles.
type Node struct {
	Link *sdf.Link

	// Index is the BFS-assigned position of the node, 0 for the root. It is
	// -1 until the node is adopted by a DirectedTree.
	Index int

	Parent   string
	children []string
}

// NewNode wraps a link in an unindexed, unparented node.
func NewNode(link *sdf.Link) *Node {
	return &Node{Link: link, Index: -1}
}

// Name returns the node name, which is the wrapped link's name.
func (n *Node) Name() string { return n.Link.Name }

// Pose returns the wrapped link's pose, defaulting to a zero pose in the
// world frame when the link declares none.
func (n *Node) Pose() *sdf.Pose {
	if n.Link != nil && n.Link.Pose != nil {
		return n.Link.Pose
	}
	return sdf.NewPose(sdf.World)
}

// Children returns the names of the node's children.
func (n *Node) Children() []string {
	out := make([]string, len(n.children))
	copy(out, n.children)
	return out
}

// AddChild records a child by name, ignoring duplicates.
func (n *Node) AddChild(name string) {
	for _, c := range n.children {
		if c == name {
			return
		}
	}
	n.children = append(n.children, name)
}

func (n *Node) String() string {
	return fmt.Sprintf("Node(name=%s, index=%d, parent=%s, children=%v)",
		n.Name(), n.Index, n.Parent, n.children)
}

// Edge is a tree edge wrapping a joint. Its endpoints are the joint's parent
// and child link names.
type Edge struct {
	Joint *sdf.Joint

	// Index matches the index of the edge's child node.
	Index int
}

// NewEdge wraps a joint in an unindexed edge.
func NewEdge(joint *sdf.Joint) *Edge {
	return &Edge{Joint: joint, Index: -1}
}

// Name returns the edge name, which is the wrapped joint's name.
func (e *Edge) Name() string { return e.Joint.Name }

// Parent returns the name of the edge's parent node.
func (e *Edge) Parent() string { return e.Joint.Parent }

// Child returns the name of the edge's child node.
func (e *Edge) Child() string { return e.Joint.Child }

// Pose returns the wrapped joint's pose.
func (e *Edge) Pose() *sdf.Pose { return e.Joint.Pose }

func (e *Edge) String() string {
	return fmt.Sprintf("Edge(name=%s, index=%d, parent=%s, child=%s)",
		e.Name(), e.Index, e.Parent(), e.Child())
}

// Frame is a non-structural pseudo-node wrapping a frame record. Frames do
// not participate in the rigid tree topology but reference into it through
// their attachment.
type Frame struct {
	F *sdf.Frame

	// Index continues the node indexing of the owning tree.
	Index int
}

// NewFrame wraps a frame record in an unindexed tree frame.
func NewFrame(f *sdf.Frame) *Frame {
	return &Frame{F: f, Index: -1}
}

// Name returns the frame name.
func (f *Frame) Name() string { return f.F.Name }

// AttachedTo returns the name of the element the frame is attached to.
func (f *Frame) AttachedTo() string { return f.F.AttachedTo }

// Pose returns the wrapped frame's pose.
func (f *Frame) Pose() *sdf.Pose { return f.F.Pose }

func (f *Frame) String() string {
	return fmt.Sprintf("Frame(name=%s, index=%d, attached_to=%s)",
		f.Name(), f.Index, f.AttachedTo())
}

// FrameFromNode converts a node into a frame attached to the given element.
func FrameFromNode(node *Node, attachedTo string) *Frame {
	return NewFrame(&sdf.Frame{
		Name:       node.Name(),
		AttachedTo: attachedTo,
		Pose:       node.Link.Pose,
	})
}

// FrameFromEdge converts an edge into a frame attached to the given element.
func FrameFromEdge(edge *Edge, attachedTo string) *Frame {
	return NewFrame(&sdf.Frame{
		Name:       edge.Name(),
		AttachedTo: attachedTo,
		Pose:       edge.Joint.Pose,
	})
}
