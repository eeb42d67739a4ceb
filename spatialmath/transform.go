// Package spatialmath provides the rigid-transform primitives used to move
// poses between reference frames of a robot description.
package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/num/quat"
)

const radToDeg = 180 / math.Pi

// NewTransformFromPose builds a 4x4 homogeneous transform from a translation
// and a set of roll-pitch-yaw angles in radians. The rpy sequence used by both
// URDF and SDF implements the x-y-z Tait-Bryan angles with the extrinsic
// convention (rotations about the axes of a fixed frame).
func NewTransformFromPose(xyz, rpy mgl64.Vec3) mgl64.Mat4 {
	m := mgl64.HomogRotate3DZ(rpy.Z()).Mul4(
		mgl64.HomogRotate3DY(rpy.Y()).Mul4(
			mgl64.HomogRotate3DX(rpy.X())))
	m.SetCol(3, mgl64.Vec4{xyz.X(), xyz.Y(), xyz.Z(), 1})
	return m
}

// Inverse inverts a rigid transform. Rather than a general matrix inversion,
// it exploits the orthogonality of the rotation block: the inverse of
// [R, p; 0, 1] is [Rᵀ, -Rᵀp; 0, 1].
func Inverse(t mgl64.Mat4) mgl64.Mat4 {
	rt := t.Mat3().Transpose()
	p := t.Col(3).Vec3()
	ip := rt.Mul3x1(p).Mul(-1)

	inv := rt.Mat4()
	inv.SetCol(3, mgl64.Vec4{ip.X(), ip.Y(), ip.Z(), 1})
	return inv
}

// Translation returns the xyz translation block of a homogeneous transform.
func Translation(t mgl64.Mat4) mgl64.Vec3 {
	return t.Col(3).Vec3()
}

// MatToEulerXYZ converts the rotation block of a 4x4 transform back to
// extrinsic x-y-z Tait-Bryan angles in radians. Near the pitch singularity
// the roll component is folded into yaw, which is pinned to zero.
func MatToEulerXYZ(t mgl64.Mat4) mgl64.Vec3 {
	sy := math.Sqrt(t.At(0, 0)*t.At(0, 0) + t.At(1, 0)*t.At(1, 0))
	if sy < 1e-6 {
		return mgl64.Vec3{
			math.Atan2(-t.At(1, 2), t.At(1, 1)),
			math.Atan2(-t.At(2, 0), sy),
			0,
		}
	}
	return mgl64.Vec3{
		math.Atan2(t.At(2, 1), t.At(2, 2)),
		math.Atan2(-t.At(2, 0), sy),
		math.Atan2(t.At(1, 0), t.At(0, 0)),
	}
}

// EulerXYZToQuat converts extrinsic x-y-z Tait-Bryan angles in radians to a
// unit quaternion. The extrinsic x-y-z sequence composes as qz * qy * qx.
func EulerXYZToQuat(roll, pitch, yaw float64) quat.Number {
	cr, sr := math.Cos(roll/2), math.Sin(roll/2)
	cp, sp := math.Cos(pitch/2), math.Sin(pitch/2)
	cy, sy := math.Cos(yaw/2), math.Sin(yaw/2)

	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

// QuatToEulerXYZ converts a rotation unit quaternion to extrinsic x-y-z
// Tait-Bryan angles in radians.
// https://en.wikipedia.org/wiki/Conversion_between_quaternions_and_Euler_angles
func QuatToEulerXYZ(q quat.Number) mgl64.Vec3 {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	return mgl64.Vec3{
		math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y)),
		math.Asin(mgl64.Clamp(2*(w*y-x*z), -1, 1)),
		math.Atan2(2*(w*z+y*x), 1-2*(y*y+z*z)),
	}
}

// MatToQuat extracts the rotation block of a 4x4 transform as a unit
// quaternion.
func MatToQuat(t mgl64.Mat4) quat.Number {
	q := mgl64.Mat4ToQuat(t)
	return quat.Number{Real: q.W, Imag: q.X(), Jmag: q.Y(), Kmag: q.Z()}
}

// QuatAlmostEqual reports whether two unit quaternions represent orientations
// within the given tolerance, treating q and -q as the same rotation.
func QuatAlmostEqual(a, b quat.Number, tol float64) bool {
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	return 1-math.Abs(dot) < tol
}

// TransformAlmostEqual reports whether two rigid transforms agree within tol,
// comparing translations componentwise and rotations through quaternions so
// that equivalent Euler decompositions compare equal.
func TransformAlmostEqual(a, b mgl64.Mat4, tol float64) bool {
	pa, pb := Translation(a), Translation(b)
	for i := 0; i < 3; i++ {
		if math.Abs(pa[i]-pb[i]) > tol {
			return false
		}
	}
	return QuatAlmostEqual(MatToQuat(a), MatToQuat(b), tol)
}

// DegreesToRadians converts a vector of angles from degrees to radians.
func DegreesToRadians(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X() / radToDeg, v.Y() / radToDeg, v.Z() / radToDeg}
}
