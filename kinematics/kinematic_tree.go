// Package kinematics builds directed kinematic trees from robot-description
// models, resolves rigid-body transforms across them, and rewrites model
// poses between reference-frame conventions.
package kinematics

import (
	"math"
	"strings"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/robodesc/robodesc/sdf"
	"github.com/robodesc/robodesc/spatialmath"
	"github.com/robodesc/robodesc/tree"
)

const zeroInertialTol = 1e-9

// KinematicTree is the directed tree of a single model: links as nodes,
// joints as edges, frames as non-structural references into the tree. It is
// built fresh from a deep copy of the model and never mutated afterwards.
type KinematicTree struct {
	*tree.DirectedTree

	// Model is the pose-resolved snapshot the tree was built from.
	Model *sdf.Model

	joints []*tree.Edge
	frames []*tree.Frame

	jointsByName       map[string]*tree.Edge
	framesByName       map[string]*tree.Frame
	jointsByConnection map[[2]string]*tree.Edge
}

// BuildKinematicTree constructs the kinematic tree of a model. The model is
// deep-copied and frame-resolved first, so the input is never mutated. The
// build validates that the joints form a single tree rooted at the canonical
// link, with exactly one extra world-connecting joint for fixed-base models
// and none for floating-base models.
func BuildKinematicTree(model *sdf.Model, isTopLevel bool) (*KinematicTree, error) {
	golog.Global.Debugf("building kinematic tree for model %q", model.Name)

	model = model.Clone()
	if err := sdf.ResolveFrames(model, isTopLevel, true); err != nil {
		return nil, err
	}

	if len(model.Models) > 0 {
		golog.Global.Warnf("model composition not supported, ignoring sub-models of %q", model.Name)
		model.Models = nil
	}

	canonical, err := model.CanonicalLink()
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*tree.Node, len(model.Links)+1)
	for _, link := range model.Links {
		if _, ok := nodes[link.Name]; ok {
			return nil, errors.Errorf("duplicate link name %q", link.Name)
		}
		nodes[link.Name] = tree.NewNode(link)
	}
	nodes[sdf.World] = tree.NewNode(&sdf.Link{
		Name: sdf.World,
		Pose: sdf.NewPose(sdf.World),
	})

	frames := make([]*tree.Frame, 0, len(model.Frames)+1)
	for _, frame := range model.Frames {
		frames = append(frames, tree.NewFrame(frame))
	}
	frames = append(frames, tree.NewFrame(&sdf.Frame{
		Name:       sdf.ModelFrame,
		AttachedTo: canonical,
		Pose:       model.Pose,
	}))

	edges, err := connectJoints(model, nodes)
	if err != nil {
		return nil, err
	}

	reachable := reachableFrom(canonical, nodes)
	inTree, extra := partitionEdges(edges, reachable)
	if err := validateExtraEdges(model, extra); err != nil {
		return nil, err
	}

	root := nodes[canonical]
	if model.IsFixedBase() {
		// Lump the world node into the base node; the removed edge and the
		// world node survive as frames.
		newRoot, newFrames, err := removeEdge(extra[0], false, nodes)
		if err != nil {
			return nil, err
		}
		reachable[newRoot.Name()] = newRoot
		root = newRoot
		frames = append(frames, newFrames...)
	} else {
		frames = append(frames, tree.FrameFromNode(nodes[sdf.World], canonical))
	}
	delete(reachable, sdf.World)

	return newKinematicTree(root, reachable, inTree, frames, model)
}

// connectJoints links parent and child nodes for every joint, returning the
// edge set. A joint whose child is the reserved world frame is a structural
// error, as is a joint referencing an undeclared link.
func connectJoints(model *sdf.Model, nodes map[string]*tree.Node) ([]*tree.Edge, error) {
	edges := make([]*tree.Edge, 0, len(model.Joints))
	for _, joint := range model.Joints {
		if joint.Child == sdf.World {
			return nil, NewJointChildWorldError(joint.Name)
		}

		var errs error
		parent, ok := nodes[joint.Parent]
		if !ok {
			errs = multierr.Append(errs, errors.Errorf("joint %q: parent link %q not found", joint.Name, joint.Parent))
		}
		child, ok := nodes[joint.Child]
		if !ok {
			errs = multierr.Append(errs, errors.Errorf("joint %q: child link %q not found", joint.Name, joint.Child))
		}
		if errs != nil {
			return nil, errs
		}

		child.Parent = parent.Name()
		parent.AddChild(child.Name())
		edges = append(edges, tree.NewEdge(joint))
	}
	return edges, nil
}

// reachableFrom enumerates the nodes discoverable from the given root by
// walking children, i.e. the tree actually rooted at the canonical link.
func reachableFrom(root string, nodes map[string]*tree.Node) map[string]*tree.Node {
	reachable := map[string]*tree.Node{root: nodes[root]}
	queue := []string{root}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, child := range nodes[name].Children() {
			if _, seen := reachable[child]; seen {
				continue
			}
			reachable[child] = nodes[child]
			queue = append(queue, child)
		}
	}
	return reachable
}

func partitionEdges(edges []*tree.Edge, reachable map[string]*tree.Node) (inTree, extra []*tree.Edge) {
	for _, e := range edges {
		_, parentIn := reachable[e.Parent()]
		_, childIn := reachable[e.Child()]
		if parentIn && childIn {
			inTree = append(inTree, e)
		} else {
			extra = append(extra, e)
		}
	}
	return inTree, extra
}

// validateExtraEdges enforces the extra-joint count: a floating-base model
// has none, a fixed-base model has exactly the one joint anchoring it to
// world. Anything else is a structural error.
func validateExtraEdges(model *sdf.Model, extra []*tree.Edge) error {
	worldJoints := 0
	for _, j := range model.Joints {
		if j.Parent == sdf.World {
			worldJoints++
		}
	}
	if worldJoints > 1 {
		return errors.Errorf(
			"model %q has %d joints connecting to world, expected at most one", model.Name, worldJoints)
	}

	if len(extra) == worldJoints {
		return nil
	}
	if worldJoints == 1 {
		hasWorldEdge := false
		for _, e := range extra {
			if e.Parent() == sdf.World {
				hasWorldEdge = true
			}
		}
		if !hasWorldEdge {
			return errors.Errorf("model %q is missing its world-connecting joint in the tree", model.Name)
		}
	}

	names := make([]string, 0, len(extra))
	for _, e := range extra {
		if e.Parent() != sdf.World {
			names = append(names, e.Name())
		}
	}
	return errors.Errorf(
		"model %q has unexpected dangling joints not part of the kinematic tree: %s",
		model.Name, strings.Join(names, ", "))
}

// removeEdge collapses an edge, discarding one endpoint. It returns a
// replacement for the kept endpoint with its parentage re-pointed, plus two
// new frames: the edge converted to a frame attached to the replacement node,
// and the discarded node converted to a frame attached to that edge frame,
// posed at the inverse of the edge transform. Lumping the discarded node's
// inertial parameters into the replacement is required when they are
// non-trivial, and is not implemented.
func removeEdge(edge *tree.Edge, keepParent bool, nodes map[string]*tree.Node) (*tree.Node, []*tree.Frame, error) {
	parent, ok := nodes[edge.Parent()]
	if !ok {
		return nil, nil, NewUnknownElementError(edge.Parent())
	}
	child, ok := nodes[edge.Child()]
	if !ok {
		return nil, nil, NewUnknownElementError(edge.Child())
	}

	removed, replaced := child, parent
	if !keepParent {
		removed, replaced = parent, child
	}

	newNode := tree.NewNode(replaced.Link)
	for _, child := range replaced.Children() {
		newNode.AddChild(child)
	}
	if !keepParent {
		newNode.Parent = removed.Parent
	}

	edgeFrame := tree.FrameFromEdge(edge, newNode.Name())
	nodeFrame := tree.NewFrame(&sdf.Frame{
		Name:       removed.Name(),
		AttachedTo: edgeFrame.Name(),
		Pose:       sdf.PoseFromTransform(spatialmath.Inverse(edge.Pose().Transform()), edgeFrame.Name()),
	})
	golog.Global.Debugf("edge %q became a frame attached to %q", edge.Name(), newNode.Name())
	golog.Global.Debugf("node %q became a frame attached to %q", removed.Name(), edgeFrame.Name())

	if !hasZeroInertial(removed.Link) {
		return nil, nil, errLumpingNotImplemented
	}
	return newNode, []*tree.Frame{nodeFrame, edgeFrame}, nil
}

// newKinematicTree assembles the final tree, assigns indices, and builds the
// constructor-time lookup tables. Frame indices continue the link indexing;
// each joint's index matches the index of its child link. All node, edge, and
// frame names must be unique across the whole tree.
func newKinematicTree(
	root *tree.Node,
	nodes map[string]*tree.Node,
	joints []*tree.Edge,
	frames []*tree.Frame,
	model *sdf.Model,
) (*KinematicTree, error) {
	nodeList := make([]*tree.Node, 0, len(nodes))
	for _, n := range nodes {
		nodeList = append(nodeList, n)
	}
	dt, err := tree.New(root, nodeList)
	if err != nil {
		return nil, err
	}

	kt := &KinematicTree{
		DirectedTree:       dt,
		Model:              model,
		joints:             joints,
		frames:             frames,
		jointsByName:       make(map[string]*tree.Edge, len(joints)),
		framesByName:       make(map[string]*tree.Frame, len(frames)),
		jointsByConnection: make(map[[2]string]*tree.Edge, len(joints)),
	}

	lastNodeIdx := dt.Len() - 1
	for i, frame := range frames {
		if dt.Contains(frame.Name()) {
			return nil, errors.Errorf("frame %q clashes with a link of the same name", frame.Name())
		}
		if _, ok := kt.framesByName[frame.Name()]; ok {
			return nil, errors.Errorf("duplicate frame name %q", frame.Name())
		}
		frame.Index = lastNodeIdx + 1 + i
		kt.framesByName[frame.Name()] = frame
	}

	for _, joint := range joints {
		if dt.Contains(joint.Name()) {
			return nil, errors.Errorf("joint %q clashes with a link of the same name", joint.Name())
		}
		if _, ok := kt.framesByName[joint.Name()]; ok {
			return nil, errors.Errorf("joint %q clashes with a frame of the same name", joint.Name())
		}
		if _, ok := kt.jointsByName[joint.Name()]; ok {
			return nil, errors.Errorf("duplicate joint name %q", joint.Name())
		}
		child, err := dt.Node(joint.Child())
		if err != nil {
			return nil, errors.Wrapf(err, "joint %q", joint.Name())
		}
		joint.Index = child.Index
		kt.jointsByName[joint.Name()] = joint
		kt.jointsByConnection[[2]string{joint.Parent(), joint.Child()}] = joint
	}

	return kt, nil
}

// LinkNames returns the link names in BFS index order.
func (kt *KinematicTree) LinkNames() []string { return kt.Names() }

// JointNames returns the joint names in declaration order.
func (kt *KinematicTree) JointNames() []string {
	names := make([]string, 0, len(kt.joints))
	for _, j := range kt.joints {
		names = append(names, j.Name())
	}
	return names
}

// FrameNames returns the frame names in index order.
func (kt *KinematicTree) FrameNames() []string {
	names := make([]string, 0, len(kt.frames))
	for _, f := range kt.frames {
		names = append(names, f.Name())
	}
	return names
}

// Joints returns the tree's joint edges.
func (kt *KinematicTree) Joints() []*tree.Edge {
	out := make([]*tree.Edge, len(kt.joints))
	copy(out, kt.joints)
	return out
}

// Frames returns the tree's frames.
func (kt *KinematicTree) Frames() []*tree.Frame {
	out := make([]*tree.Frame, len(kt.frames))
	copy(out, kt.frames)
	return out
}

// Joint looks up a joint edge by name.
func (kt *KinematicTree) Joint(name string) (*tree.Edge, error) {
	j, ok := kt.jointsByName[name]
	if !ok {
		return nil, errors.Errorf("joint %q not found in tree", name)
	}
	return j, nil
}

// Frame looks up a frame by name.
func (kt *KinematicTree) Frame(name string) (*tree.Frame, error) {
	f, ok := kt.framesByName[name]
	if !ok {
		return nil, errors.Errorf("frame %q not found in tree", name)
	}
	return f, nil
}

// JointConnecting looks up the joint between a parent and child link.
func (kt *KinematicTree) JointConnecting(parent, child string) (*tree.Edge, error) {
	j, ok := kt.jointsByConnection[[2]string{parent, child}]
	if !ok {
		return nil, errors.Errorf("no joint connecting %q to %q", parent, child)
	}
	return j, nil
}

func hasZeroInertial(link *sdf.Link) bool {
	if link == nil || link.Inertial == nil {
		return true
	}
	if math.Abs(link.Inertial.Mass) > zeroInertialTol {
		return false
	}
	if link.Inertial.Inertia == nil {
		return true
	}
	m := link.Inertial.Inertia.Matrix()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(m.At(i, j)) > zeroInertialTol {
				return false
			}
		}
	}
	return true
}
