package kinematics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/robodesc/robodesc/sdf"
	"github.com/robodesc/robodesc/spatialmath"
)

// TreeTransforms resolves world transforms of the elements of a kinematic
// tree, caching results by name. Instances are cheap to build and are not
// safe for concurrent use; build one per goroutine.
type TreeTransforms struct {
	Tree *KinematicTree

	cache map[string]mgl64.Mat4
}

// NewTreeTransforms builds a transform resolver over a fresh kinematic tree
// of the given model. The model is deep-copied and frame-resolved by the tree
// build, so the input is never mutated.
func NewTreeTransforms(model *sdf.Model, isTopLevel bool) (*TreeTransforms, error) {
	kt, err := BuildKinematicTree(model, isTopLevel)
	if err != nil {
		return nil, err
	}
	return &TreeTransforms{Tree: kt, cache: map[string]mgl64.Mat4{}}, nil
}

// Transform returns the world transform of the named element. The resolution
// walks parent reference frames until a cached or root transform is found,
// then composes local transforms top-down, caching every intermediate result.
func (tt *TreeTransforms) Transform(name string) (mgl64.Mat4, error) {
	if cached, ok := tt.cache[name]; ok {
		return cached, nil
	}

	// Collect the chain up to the first cached ancestor or world. The walk is
	// bounded by the element count so attachment cycles surface as errors.
	maxDepth := tt.Tree.Len() + len(tt.Tree.frames) + len(tt.Tree.joints) + 2
	var path []string
	current := name
	for current != "" {
		if _, ok := tt.cache[current]; ok {
			break
		}
		if len(path) > maxDepth {
			return mgl64.Mat4{}, NewFrameChainCycleError(name)
		}
		path = append(path, current)
		parent, err := tt.parentOf(current)
		if err != nil {
			return mgl64.Mat4{}, err
		}
		current = parent
	}

	base := mgl64.Ident4()
	if current != "" {
		base = tt.cache[current]
	}
	for i := len(path) - 1; i >= 0; i-- {
		local, err := tt.localTransform(path[i])
		if err != nil {
			return mgl64.Mat4{}, err
		}
		base = base.Mul4(local)
		tt.cache[path[i]] = base
	}
	return tt.cache[name], nil
}

// RelativeTransform returns the transform expressing toFrame in fromFrame's
// coordinates.
func (tt *TreeTransforms) RelativeTransform(fromFrame, toFrame string) (mgl64.Mat4, error) {
	from, err := tt.Transform(fromFrame)
	if err != nil {
		return mgl64.Mat4{}, err
	}
	to, err := tt.Transform(toFrame)
	if err != nil {
		return mgl64.Mat4{}, err
	}
	return spatialmath.Inverse(from).Mul4(to), nil
}

// Invalidate removes the cached transform of the named element and of every
// cached element whose resolution chain passes through it.
func (tt *TreeTransforms) Invalidate(name string) {
	for key := range tt.cache {
		if tt.dependsOn(key, name) {
			delete(tt.cache, key)
		}
	}
}

// ClearCache drops all cached transforms.
func (tt *TreeTransforms) ClearCache() {
	tt.cache = map[string]mgl64.Mat4{}
}

// parentOf returns the name of the reference frame an element's pose is
// expressed in. The world frame has no parent; the model frame resolves to
// the model pose's own reference, defaulting to world.
func (tt *TreeTransforms) parentOf(name string) (string, error) {
	if name == sdf.World {
		return "", nil
	}

	if name == sdf.ModelFrame || name == tt.Tree.Model.Name {
		if tt.Tree.Model.Pose == nil || tt.Tree.Model.Pose.RelativeTo == "" {
			return sdf.World, nil
		}
		return tt.Tree.Model.Pose.RelativeTo, nil
	}

	pose, err := tt.elementPose(name)
	if err != nil {
		return "", err
	}
	if pose == nil || pose.RelativeTo == "" {
		return sdf.World, nil
	}
	return pose.RelativeTo, nil
}

// localTransform returns an element's own pose as a homogeneous transform,
// identity for the world frame.
func (tt *TreeTransforms) localTransform(name string) (mgl64.Mat4, error) {
	if name == sdf.World {
		return mgl64.Ident4(), nil
	}

	if name == sdf.ModelFrame || name == tt.Tree.Model.Name {
		if tt.Tree.Model.Pose == nil {
			return mgl64.Ident4(), nil
		}
		return tt.Tree.Model.Pose.Transform(), nil
	}

	pose, err := tt.elementPose(name)
	if err != nil {
		return mgl64.Mat4{}, err
	}
	if pose == nil {
		return mgl64.Ident4(), nil
	}
	return pose.Transform(), nil
}

// elementPose finds the pose of a joint, link, or frame by name.
func (tt *TreeTransforms) elementPose(name string) (*sdf.Pose, error) {
	if joint, ok := tt.Tree.jointsByName[name]; ok {
		return joint.Pose(), nil
	}
	if node, err := tt.Tree.Node(name); err == nil {
		return node.Pose(), nil
	}
	if frame, ok := tt.Tree.framesByName[name]; ok {
		return frame.Pose(), nil
	}
	return nil, NewUnknownElementError(name)
}

// dependsOn reports whether child's resolution chain passes through ancestor.
func (tt *TreeTransforms) dependsOn(child, ancestor string) bool {
	maxDepth := tt.Tree.Len() + len(tt.Tree.frames) + len(tt.Tree.joints) + 2
	current := child
	for depth := 0; current != "" && depth <= maxDepth; depth++ {
		if current == ancestor {
			return true
		}
		parent, err := tt.parentOf(current)
		if err != nil {
			return false
		}
		current = parent
	}
	return false
}
