package sdf

import "github.com/pkg/errors"

const trivialPoseTol = 1e-9

// updatePose normalizes a single pose field. In explicit mode it synthesizes
// a zero pose when the field is empty and fills in the first default when the
// reference frame is implicit. In collapse mode it strips poses and reference
// frames back to nothing when they match a default choice and are trivial.
func updatePose(pose **Pose, defaultRelativeTo []string, explicitFrames bool) error {
	if len(defaultRelativeTo) == 0 {
		return errors.New("at least one default reference frame is required")
	}

	if explicitFrames {
		if *pose == nil {
			*pose = NewPose(defaultRelativeTo[0])
			return nil
		}
		if (*pose).RelativeTo == "" {
			(*pose).RelativeTo = defaultRelativeTo[0]
		}
		return nil
	}

	if *pose == nil {
		return nil
	}
	isDefault := (*pose).RelativeTo == ""
	for _, d := range defaultRelativeTo {
		isDefault = isDefault || (*pose).RelativeTo == d
	}
	if !isDefault {
		return nil
	}
	if (*pose).IsTrivial(trivialPoseTol) {
		*pose = nil
	} else {
		(*pose).RelativeTo = ""
	}
	return nil
}

// ResolveFrames rewrites every pose-bearing element of the model so that its
// reference frame is explicit (explicitFrames=true), or collapses trivial
// poses and implicit references back to their compact form
// (explicitFrames=false). The explicit form is a precondition for building a
// kinematic tree; the collapsed form is used when preparing final output.
func ResolveFrames(m *Model, isTopLevel, explicitFrames bool) error {
	canonical, err := m.CanonicalLink()
	if err != nil {
		return err
	}

	if isTopLevel && explicitFrames {
		if m.Pose == nil {
			m.Pose = &Pose{}
		} else if m.Pose.RelativeTo != "" {
			return errors.Errorf(
				"top-level model %q cannot have a pose relative to %q", m.Name, m.Pose.RelativeTo)
		}
	} else if err := updatePose(&m.Pose, []string{World}, explicitFrames); err != nil {
		return err
	}

	for _, frame := range m.Frames {
		defaults := []string{}
		if frame.AttachedTo != "" {
			defaults = append(defaults, frame.AttachedTo)
		}
		defaults = append(defaults, canonical)
		if err := updatePose(&frame.Pose, defaults, explicitFrames); err != nil {
			return err
		}
	}

	for _, link := range m.Links {
		if err := updatePose(&link.Pose, []string{ModelFrame, m.Name}, explicitFrames); err != nil {
			return err
		}
		if link.Inertial != nil {
			if err := updatePose(&link.Inertial.Pose, []string{link.Name}, explicitFrames); err != nil {
				return err
			}
		}
		for _, visual := range link.Visuals {
			if err := updatePose(&visual.Pose, []string{link.Name}, explicitFrames); err != nil {
				return err
			}
		}
		for _, collision := range link.Collisions {
			if err := updatePose(&collision.Pose, []string{link.Name}, explicitFrames); err != nil {
				return err
			}
		}
	}

	for _, joint := range m.Joints {
		if err := updatePose(&joint.Pose, []string{joint.Child}, explicitFrames); err != nil {
			return err
		}
	}

	for _, sub := range m.Models {
		if err := ResolveFrames(sub, false, explicitFrames); err != nil {
			return err
		}
	}
	return nil
}
