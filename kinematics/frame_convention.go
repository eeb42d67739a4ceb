package kinematics

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/robodesc/robodesc/sdf"
)

// FrameConvention selects the reference frame every model element's pose is
// rewritten against.
type FrameConvention int

const (
	// FrameConventionWorld expresses every pose relative to the world frame.
	FrameConventionWorld FrameConvention = iota + 1
	// FrameConventionModel expresses every pose relative to the model frame.
	FrameConventionModel
	// FrameConventionSdf expresses poses the way SDF defaults them: links in
	// the model frame, joints in their child link, frames in their
	// attachment.
	FrameConventionSdf
	// FrameConventionUrdf expresses poses the way URDF expects them: links in
	// their incoming joint, joints in their parent link.
	FrameConventionUrdf
)

func (c FrameConvention) String() string {
	switch c {
	case FrameConventionWorld:
		return "World"
	case FrameConventionModel:
		return "Model"
	case FrameConventionSdf:
		return "Sdf"
	case FrameConventionUrdf:
		return "Urdf"
	default:
		return "Unknown"
	}
}

// SwitchFrameConvention rewrites every pose of the model so all elements are
// expressed in the reference frames mandated by the given convention. The
// input model is deep-copied and never mutated; the rewritten copy is
// returned. With attachFramesToLinks set, every frame is additionally
// re-attached directly to a real link, which URDF export requires.
func SwitchFrameConvention(
	model *sdf.Model,
	convention FrameConvention,
	isTopLevel bool,
	attachFramesToLinks bool,
) (*sdf.Model, error) {
	m := model.Clone()
	if err := sdf.ResolveFrames(m, isTopLevel, true); err != nil {
		return nil, err
	}

	kin, err := NewTreeTransforms(m, isTopLevel)
	if err != nil {
		return nil, err
	}

	if attachFramesToLinks {
		if err := attachFrames(m, kin); err != nil {
			return nil, err
		}
	}

	targets, err := newTargetResolver(convention, m)
	if err != nil {
		return nil, err
	}

	if err := rewritePoses(m, kin, targets, isTopLevel); err != nil {
		return nil, err
	}

	if err := sdf.ResolveFrames(m, isTopLevel, true); err != nil {
		return nil, err
	}
	return m, nil
}

// targetResolver computes, per element kind, the reference frame a pose must
// end up relative to under a given convention.
type targetResolver struct {
	convention FrameConvention
	canonical  string
	fixedBase  bool

	// incomingJoint maps each link to the name of its unique incoming joint,
	// with the canonical link of a fixed-base model mapping to world.
	incomingJoint map[string]string
}

func newTargetResolver(convention FrameConvention, m *sdf.Model) (*targetResolver, error) {
	canonical, err := m.CanonicalLink()
	if err != nil {
		return nil, err
	}

	tr := &targetResolver{
		convention: convention,
		canonical:  canonical,
		fixedBase:  m.IsFixedBase(),
	}

	if convention == FrameConventionUrdf {
		tr.incomingJoint = make(map[string]string, len(m.Joints))
		for _, joint := range m.Joints {
			if joint.Child == canonical && tr.fixedBase {
				tr.incomingJoint[joint.Child] = sdf.World
			} else {
				tr.incomingJoint[joint.Child] = joint.Name
			}
		}
	}
	return tr, nil
}

// modelTarget is the frame a non-top-level model pose ends up relative to.
func (tr *targetResolver) modelTarget() string {
	return sdf.World
}

func (tr *targetResolver) linkTarget(link *sdf.Link) (string, error) {
	switch tr.convention {
	case FrameConventionWorld:
		return sdf.World, nil
	case FrameConventionModel, FrameConventionSdf:
		return sdf.ModelFrame, nil
	case FrameConventionUrdf:
		if link.Name == tr.canonical {
			if target, ok := tr.incomingJoint[tr.canonical]; ok {
				return target, nil
			}
			return sdf.ModelFrame, nil
		}
		target, ok := tr.incomingJoint[link.Name]
		if !ok {
			return "", errors.Errorf("link %q has no incoming joint", link.Name)
		}
		return target, nil
	}
	return "", errors.Errorf("unknown frame convention %d", tr.convention)
}

func (tr *targetResolver) frameTarget(frame *sdf.Frame) string {
	switch tr.convention {
	case FrameConventionWorld:
		return sdf.World
	case FrameConventionModel:
		return sdf.ModelFrame
	default:
		return frame.AttachedTo
	}
}

func (tr *targetResolver) jointTarget(joint *sdf.Joint) string {
	switch tr.convention {
	case FrameConventionWorld:
		return sdf.World
	case FrameConventionModel:
		return sdf.ModelFrame
	case FrameConventionSdf:
		return joint.Child
	default:
		return joint.Parent
	}
}

// ownedTarget is the frame for elements owned by a link: visuals, collisions,
// and the inertial block.
func (tr *targetResolver) ownedTarget(link *sdf.Link) string {
	switch tr.convention {
	case FrameConventionWorld:
		return sdf.World
	case FrameConventionModel:
		return sdf.ModelFrame
	default:
		return link.Name
	}
}

// rewritePoses walks every pose-bearing element and re-expresses its pose in
// the convention's target frame, using the resolver built over the
// pre-rewrite snapshot.
func rewritePoses(m *sdf.Model, kin *TreeTransforms, targets *targetResolver, isTopLevel bool) error {
	if !isTopLevel {
		target := targets.modelTarget()
		if m.Pose.RelativeTo != target {
			pose, err := transformPose(kin, m.Pose, target)
			if err != nil {
				return err
			}
			m.Pose = pose
		}
	}

	for _, joint := range m.Joints {
		pose, err := transformPose(kin, joint.Pose, targets.jointTarget(joint))
		if err != nil {
			return err
		}
		joint.Pose = pose
	}

	for _, frame := range m.Frames {
		pose, err := transformPose(kin, frame.Pose, targets.frameTarget(frame))
		if err != nil {
			return err
		}
		frame.Pose = pose
	}

	for _, link := range m.Links {
		target, err := targets.linkTarget(link)
		if err != nil {
			return err
		}
		pose, err := transformPose(kin, link.Pose, target)
		if err != nil {
			return err
		}
		link.Pose = pose

		if link.Inertial != nil {
			pose, err := transformPose(kin, link.Inertial.Pose, targets.ownedTarget(link))
			if err != nil {
				return err
			}
			link.Inertial.Pose = pose
		}
		for _, visual := range link.Visuals {
			pose, err := transformPose(kin, visual.Pose, targets.ownedTarget(link))
			if err != nil {
				return err
			}
			visual.Pose = pose
		}
		for _, collision := range link.Collisions {
			pose, err := transformPose(kin, collision.Pose, targets.ownedTarget(link))
			if err != nil {
				return err
			}
			collision.Pose = pose
		}
	}
	return nil
}

// transformPose re-expresses a pose relative to the target frame, preserving
// the world transform it describes.
func transformPose(kin *TreeTransforms, pose *sdf.Pose, target string) (*sdf.Pose, error) {
	targetHCurrent, err := kin.RelativeTransform(target, pose.RelativeTo)
	if err != nil {
		return nil, err
	}
	return sdf.PoseFromTransform(targetHCurrent.Mul4(pose.Transform()), target), nil
}

// attachFrames re-attaches every frame of the model directly to a real link,
// preserving each frame's world pose. URDF cannot express frames referencing
// joints or other frames.
func attachFrames(m *sdf.Model, kin *TreeTransforms) error {
	for _, frame := range m.Frames {
		parentLink, err := FindParentLinkOfFrame(frame, m)
		if err != nil {
			return err
		}

		modelHFrame, err := kin.RelativeTransform(sdf.ModelFrame, frame.Pose.RelativeTo)
		if err != nil {
			return err
		}
		modelHFrame = modelHFrame.Mul4(frame.Pose.Transform())

		parentHModel, err := kin.RelativeTransform(parentLink, sdf.ModelFrame)
		if err != nil {
			return err
		}

		golog.Global.Debugf("attaching frame %q to link %q", frame.Name, parentLink)
		frame.AttachedTo = parentLink
		frame.Pose = sdf.PoseFromTransform(parentHModel.Mul4(modelHFrame), parentLink)
	}
	return nil
}

// FindParentLinkOfFrame walks a frame's attachment chain until it reaches a
// link. Intermediate frames recurse into their own attachment, a model
// resolves to its canonical link, and a joint reached through the chain
// resolves to its child link. A frame attached directly to a joint is a
// structural error, as is a chain that never terminates.
func FindParentLinkOfFrame(frame *sdf.Frame, m *sdf.Model) (string, error) {
	if joint := m.JointByName(frame.AttachedTo); joint != nil {
		return "", NewFrameAttachedToJointError(frame.Name, joint.Name)
	}

	maxDepth := len(m.Links) + len(m.Frames) + len(m.Joints) + len(m.Models) + 1
	current := frame.AttachedTo
	for depth := 0; depth <= maxDepth; depth++ {
		if current == m.Name || current == sdf.ModelFrame {
			return m.CanonicalLink()
		}
		if link := m.LinkByName(current); link != nil {
			return link.Name, nil
		}
		if f := m.FrameByName(current); f != nil {
			current = f.AttachedTo
			continue
		}
		if joint := m.JointByName(current); joint != nil {
			current = joint.Child
			continue
		}
		for _, sub := range m.Models {
			if sub.Name == current {
				return "", errors.Errorf("frame %q is attached to sub-model %q: model composition is not supported",
					frame.Name, sub.Name)
			}
		}
		return "", NewUnknownElementError(current)
	}
	return "", NewFrameChainCycleError(frame.Name)
}
