package kinematics

import "github.com/pkg/errors"

// errLumpingNotImplemented is returned when edge removal would require
// merging non-trivial inertial parameters into the surviving node.
var errLumpingNotImplemented = errors.New("lumping of inertial parameters is not implemented")

// NewJointChildWorldError returns an error indicating that a joint declares
// the reserved world frame as its child.
func NewJointChildWorldError(joint string) error {
	return errors.Errorf("joint %q cannot have %q as child", joint, "world")
}

// NewUnknownElementError returns an error indicating that a name could not be
// resolved to any link, joint, or frame of the tree.
func NewUnknownElementError(name string) error {
	return errors.Errorf("unknown element %q", name)
}

// NewFrameChainCycleError returns an error indicating that resolving an
// element's reference-frame chain never reached the world frame.
func NewFrameChainCycleError(name string) error {
	return errors.Errorf("reference-frame chain of %q does not terminate at world (cycle?)", name)
}

// NewFrameAttachedToJointError returns an error indicating that a frame is
// attached directly to a joint, which has no well-defined link attachment.
func NewFrameAttachedToJointError(frame, joint string) error {
	return errors.Errorf("frame %q is attached to joint %q: frames cannot be attached to joints", frame, joint)
}
