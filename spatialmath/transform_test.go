package spatialmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"go.viam.com/test"
)

const tol = 1e-9

func poseCases() [][6]float64 {
	return [][6]float64{
		{0, 0, 0, 0, 0, 0},
		{1, 2, 3, 0, 0, 0},
		{0, 0, 1, 0.1, -0.2, 0.3},
		{-4, 2.5, 0.01, math.Pi / 4, -math.Pi / 3, math.Pi / 6},
		{0.3, -0.7, 1.9, -1.2, 1.4, -2.8},
		{10, -10, 5, 3.1, -0.001, 1.57},
	}
}

func TestPoseRoundTrip(t *testing.T) {
	for _, c := range poseCases() {
		xyz := mgl64.Vec3{c[0], c[1], c[2]}
		rpy := mgl64.Vec3{c[3], c[4], c[5]}

		m := NewTransformFromPose(xyz, rpy)
		gotXyz := Translation(m)
		gotRpy := MatToEulerXYZ(m)

		// The Euler decomposition may differ from the input angles, but the
		// rotation it describes must not.
		rebuilt := NewTransformFromPose(gotXyz, gotRpy)
		test.That(t, TransformAlmostEqual(m, rebuilt, tol), test.ShouldBeTrue)
		for i := 0; i < 3; i++ {
			test.That(t, gotXyz[i], test.ShouldAlmostEqual, c[i], tol)
		}
	}
}

func TestEulerExtractionElementwise(t *testing.T) {
	// Away from the pitch singularity, extraction returns the same angles.
	for _, c := range poseCases() {
		if math.Abs(math.Abs(c[4])-math.Pi/2) < 1e-3 {
			continue
		}
		m := NewTransformFromPose(mgl64.Vec3{}, mgl64.Vec3{c[3], c[4], c[5]})
		rpy := MatToEulerXYZ(m)

		q1 := EulerXYZToQuat(c[3], c[4], c[5])
		q2 := EulerXYZToQuat(rpy.X(), rpy.Y(), rpy.Z())
		test.That(t, QuatAlmostEqual(q1, q2, tol), test.ShouldBeTrue)
	}
}

func TestInverseLaw(t *testing.T) {
	for _, c := range poseCases() {
		m := NewTransformFromPose(mgl64.Vec3{c[0], c[1], c[2]}, mgl64.Vec3{c[3], c[4], c[5]})

		prod := m.Mul4(Inverse(m))
		test.That(t, TransformAlmostEqual(prod, mgl64.Ident4(), tol), test.ShouldBeTrue)

		test.That(t, TransformAlmostEqual(Inverse(Inverse(m)), m, tol), test.ShouldBeTrue)
	}
}

func TestQuatEulerRoundTrip(t *testing.T) {
	for _, c := range poseCases() {
		q := EulerXYZToQuat(c[3], c[4], c[5])
		rpy := QuatToEulerXYZ(q)
		q2 := EulerXYZToQuat(rpy.X(), rpy.Y(), rpy.Z())
		test.That(t, QuatAlmostEqual(q, q2, tol), test.ShouldBeTrue)
	}
}

func TestMatToQuatAgreesWithEuler(t *testing.T) {
	for _, c := range poseCases() {
		m := NewTransformFromPose(mgl64.Vec3{}, mgl64.Vec3{c[3], c[4], c[5]})
		test.That(t, QuatAlmostEqual(MatToQuat(m), EulerXYZToQuat(c[3], c[4], c[5]), 1e-8), test.ShouldBeTrue)
	}
}

func TestDegreesToRadians(t *testing.T) {
	rad := DegreesToRadians(mgl64.Vec3{180, 90, -45})
	test.That(t, rad.X(), test.ShouldAlmostEqual, math.Pi, tol)
	test.That(t, rad.Y(), test.ShouldAlmostEqual, math.Pi/2, tol)
	test.That(t, rad.Z(), test.ShouldAlmostEqual, -math.Pi/4, tol)
}
