package kinematics

import (
	"testing"

	"go.viam.com/test"

	"github.com/robodesc/robodesc/sdf"
	"github.com/robodesc/robodesc/tree"
)

// pendulumModel is a fixed-base two-link pendulum: the base link is welded to
// the world one meter up, the arm hangs off a revolute joint.
func pendulumModel() *sdf.Model {
	return &sdf.Model{
		Name: "pendulum",
		Links: []*sdf.Link{
			{Name: "base"},
			{Name: "arm", Pose: &sdf.Pose{P: [6]float64{0, 0, -0.5, 0, 0, 0}, RelativeTo: "base_to_arm"}},
		},
		Joints: []*sdf.Joint{
			{
				Name: "base_to_arm", Type: sdf.JointTypeRevolute,
				Parent: "base", Child: "arm",
				Pose: &sdf.Pose{P: [6]float64{0, 0, 0.1, 0, 0, 0}, RelativeTo: "base"},
			},
			{
				Name: "world_to_base", Type: sdf.JointTypeFixed,
				Parent: sdf.World, Child: "base",
				Pose: &sdf.Pose{P: [6]float64{0, 0, 1, 0, 0, 0}},
			},
		},
	}
}

func singleLinkModel() *sdf.Model {
	return &sdf.Model{
		Name:  "brick",
		Links: []*sdf.Link{{Name: "body"}},
	}
}

func TestBuildFixedBasePendulum(t *testing.T) {
	m := pendulumModel()
	kt, err := BuildKinematicTree(m, true)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, kt.Root().Name(), test.ShouldEqual, "base")
	test.That(t, kt.Root().Parent, test.ShouldEqual, "")
	test.That(t, kt.Root().Children(), test.ShouldResemble, []string{"arm"})
	test.That(t, kt.Len(), test.ShouldEqual, 2)

	// The world node was lumped away; it survives only as a frame posed at
	// the inverse of the removed edge.
	test.That(t, kt.Contains(sdf.World), test.ShouldBeFalse)
	worldFrame, err := kt.Frame(sdf.World)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, worldFrame.AttachedTo(), test.ShouldEqual, "world_to_base")
	test.That(t, worldFrame.Pose().P[2], test.ShouldAlmostEqual, -1, 1e-9)

	edgeFrame, err := kt.Frame("world_to_base")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, edgeFrame.AttachedTo(), test.ShouldEqual, "base")
	test.That(t, edgeFrame.Pose().P[2], test.ShouldAlmostEqual, 1, 1e-9)

	// The removed joint is no longer an edge of the tree.
	_, err = kt.Joint("world_to_base")
	test.That(t, err, test.ShouldNotBeNil)

	// Input model untouched: builds operate on a deep copy.
	test.That(t, m.Links[0].Pose, test.ShouldBeNil)
}

func TestIndexAssignment(t *testing.T) {
	kt, err := BuildKinematicTree(pendulumModel(), true)
	test.That(t, err, test.ShouldBeNil)

	arm, err := kt.Node("arm")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, kt.Root().Index, test.ShouldEqual, 0)
	test.That(t, arm.Index, test.ShouldEqual, 1)

	// The joint index matches its child link's index.
	joint, err := kt.Joint("base_to_arm")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, joint.Index, test.ShouldEqual, arm.Index)

	// Frame indices continue the link indexing.
	modelFrame, err := kt.Frame(sdf.ModelFrame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, modelFrame.Index, test.ShouldEqual, 2)
	worldFrame, err := kt.Frame(sdf.World)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, worldFrame.Index, test.ShouldEqual, 3)
	edgeFrame, err := kt.Frame("world_to_base")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, edgeFrame.Index, test.ShouldEqual, 4)
}

func TestIndexDeterminismAcrossDeclarationOrder(t *testing.T) {
	build := func(reversed bool) *KinematicTree {
		m := &sdf.Model{
			Name:          "star",
			CanonicalName: "hub",
			Links: []*sdf.Link{
				{Name: "hub"}, {Name: "alpha"}, {Name: "zeta"}, {Name: "beta"},
			},
			Joints: []*sdf.Joint{
				{Name: "j1", Type: sdf.JointTypeRevolute, Parent: "hub", Child: "zeta"},
				{Name: "j2", Type: sdf.JointTypeRevolute, Parent: "hub", Child: "alpha"},
				{Name: "j3", Type: sdf.JointTypeRevolute, Parent: "hub", Child: "beta"},
			},
		}
		if reversed {
			m.Links = []*sdf.Link{m.Links[0], m.Links[3], m.Links[2], m.Links[1]}
			m.Joints = []*sdf.Joint{m.Joints[2], m.Joints[1], m.Joints[0]}
		}
		kt, err := BuildKinematicTree(m, true)
		test.That(t, err, test.ShouldBeNil)
		return kt
	}

	a, b := build(false), build(true)
	test.That(t, a.Names(), test.ShouldResemble, b.Names())
	test.That(t, a.Names(), test.ShouldResemble, []string{"hub", "alpha", "beta", "zeta"})
}

func TestBuildFloatingBase(t *testing.T) {
	kt, err := BuildKinematicTree(singleLinkModel(), true)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, kt.Len(), test.ShouldEqual, 1)
	test.That(t, kt.Root().Name(), test.ShouldEqual, "body")
	test.That(t, len(kt.Joints()), test.ShouldEqual, 0)

	worldFrame, err := kt.Frame(sdf.World)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, worldFrame.AttachedTo(), test.ShouldEqual, "body")
}

func TestBuildRejectsJointWithWorldChild(t *testing.T) {
	m := singleLinkModel()
	m.Joints = []*sdf.Joint{
		{Name: "bad", Type: sdf.JointTypeFixed, Parent: "body", Child: sdf.World},
	}
	_, err := BuildKinematicTree(m, true)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `cannot have "world" as child`)
}

func TestBuildRejectsDuplicateLinkNames(t *testing.T) {
	m := &sdf.Model{
		Name:  "dup",
		Links: []*sdf.Link{{Name: "a"}, {Name: "a"}},
	}
	_, err := BuildKinematicTree(m, true)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate link name")
}

func TestBuildRejectsUnknownCanonicalLink(t *testing.T) {
	m := singleLinkModel()
	m.CanonicalName = "ghost"
	_, err := BuildKinematicTree(m, true)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "canonical link")
}

func TestBuildRejectsTwoWorldJoints(t *testing.T) {
	m := pendulumModel()
	m.Joints = append(m.Joints, &sdf.Joint{
		Name: "world_to_arm", Type: sdf.JointTypeFixed, Parent: sdf.World, Child: "arm",
	})
	_, err := BuildKinematicTree(m, true)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "expected at most one")
}

func TestBuildRejectsDanglingJoints(t *testing.T) {
	m := &sdf.Model{
		Name:  "forest",
		Links: []*sdf.Link{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}},
		Joints: []*sdf.Joint{
			{Name: "a_to_b", Type: sdf.JointTypeRevolute, Parent: "a", Child: "b"},
			{Name: "c_to_d", Type: sdf.JointTypeRevolute, Parent: "c", Child: "d"},
		},
	}
	_, err := BuildKinematicTree(m, true)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "dangling joints")
	test.That(t, err.Error(), test.ShouldContainSubstring, "c_to_d")
}

func TestBuildRejectsJointWithUnknownLinks(t *testing.T) {
	m := singleLinkModel()
	m.Joints = []*sdf.Joint{
		{Name: "bad", Type: sdf.JointTypeFixed, Parent: "body", Child: "ghost"},
	}
	_, err := BuildKinematicTree(m, true)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "ghost")
}

func TestBuildIgnoresSubModels(t *testing.T) {
	m := pendulumModel()
	m.Models = []*sdf.Model{singleLinkModel()}

	kt, err := BuildKinematicTree(m, true)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, kt.Model.Models, test.ShouldBeNil)
	test.That(t, kt.Len(), test.ShouldEqual, 2)
}

func TestRemoveEdgeLumpingNotImplemented(t *testing.T) {
	heavy := &sdf.Link{
		Name:     "heavy",
		Inertial: &sdf.Inertial{Mass: 3, Inertia: &sdf.Inertia{Ixx: 0.1, Iyy: 0.1, Izz: 0.1}},
	}
	light := &sdf.Link{Name: "light"}

	nodes := map[string]*tree.Node{
		"heavy": tree.NewNode(heavy),
		"light": tree.NewNode(light),
	}
	joint := &sdf.Joint{
		Name: "weld", Type: sdf.JointTypeFixed,
		Parent: "heavy", Child: "light",
		Pose: sdf.NewPose("light"),
	}

	// Discarding the massive endpoint requires lumping its inertia.
	_, _, err := removeEdge(tree.NewEdge(joint), false, nodes)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not implemented")

	// Discarding the massless endpoint is fine.
	replacement, frames, err := removeEdge(tree.NewEdge(joint), true, nodes)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, replacement.Name(), test.ShouldEqual, "heavy")
	test.That(t, len(frames), test.ShouldEqual, 2)
	test.That(t, frames[1].Name(), test.ShouldEqual, "weld")
	test.That(t, frames[1].AttachedTo(), test.ShouldEqual, "heavy")
	test.That(t, frames[0].Name(), test.ShouldEqual, "light")
	test.That(t, frames[0].AttachedTo(), test.ShouldEqual, "weld")
}
