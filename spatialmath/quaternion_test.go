package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestRotationVectorToQuat(t *testing.T) {
	t.Run("zero vector is the identity", func(t *testing.T) {
		dq := RotationVectorToQuat(r3.Vector{})
		test.That(t, dq, test.ShouldResemble, NewZeroQuaternion())
	})

	t.Run("half turn about z", func(t *testing.T) {
		dq := RotationVectorToQuat(r3.Vector{Z: math.Pi})
		test.That(t, dq.Real, test.ShouldAlmostEqual, 0, 1e-12)
		test.That(t, dq.Imag, test.ShouldAlmostEqual, 0)
		test.That(t, dq.Jmag, test.ShouldAlmostEqual, 0)
		test.That(t, dq.Kmag, test.ShouldAlmostEqual, 1)
	})

	t.Run("result is always unit norm", func(t *testing.T) {
		for _, v := range []r3.Vector{
			{X: 0.1},
			{X: 1, Y: 2, Z: 3},
			{X: -4.2, Y: 0.001, Z: 9},
			{Z: 2 * math.Pi},
		} {
			dq := RotationVectorToQuat(v)
			test.That(t, quat.Abs(dq), test.ShouldAlmostEqual, 1, 1e-12)
		}
	})
}

func TestNormalize(t *testing.T) {
	q := Normalize(quat.Number{Real: 3, Imag: 4})
	test.That(t, q.Real, test.ShouldAlmostEqual, 0.6)
	test.That(t, q.Imag, test.ShouldAlmostEqual, 0.8)

	// zero quaternion becomes the identity rather than NaN
	test.That(t, Normalize(quat.Number{}), test.ShouldResemble, NewZeroQuaternion())
}

func TestQuaternionAlmostEqual(t *testing.T) {
	q := RotationVectorToQuat(r3.Vector{X: 0.3, Y: -0.2, Z: 0.9})
	test.That(t, QuaternionAlmostEqual(q, q, 1e-8), test.ShouldBeTrue)
	// double cover: -q is the same orientation
	test.That(t, QuaternionAlmostEqual(q, quat.Scale(-1, q), 1e-8), test.ShouldBeTrue)
	other := RotationVectorToQuat(r3.Vector{X: 0.3, Y: -0.2, Z: 1.0})
	test.That(t, QuaternionAlmostEqual(q, other, 1e-3), test.ShouldBeFalse)
}

func TestSlerp(t *testing.T) {
	q0 := NewZeroQuaternion()
	q1 := RotationVectorToQuat(r3.Vector{Z: math.Pi / 2})

	t.Run("endpoints", func(t *testing.T) {
		test.That(t, QuaternionAlmostEqual(Slerp(q0, q1, 0), q0, 1e-9), test.ShouldBeTrue)
		test.That(t, QuaternionAlmostEqual(Slerp(q0, q1, 1), q1, 1e-9), test.ShouldBeTrue)
	})

	t.Run("midpoint bisects the arc", func(t *testing.T) {
		mid := Slerp(q0, q1, 0.5)
		want := RotationVectorToQuat(r3.Vector{Z: math.Pi / 4})
		test.That(t, QuaternionAlmostEqual(mid, want, 1e-9), test.ShouldBeTrue)
	})

	t.Run("nearly parallel inputs", func(t *testing.T) {
		nearby := RotationVectorToQuat(r3.Vector{Z: 1e-12})
		mid := Slerp(q0, nearby, 0.5)
		test.That(t, quat.Abs(mid), test.ShouldAlmostEqual, 1, 1e-12)
	})
}

func TestQuatMatrixRoundTrip(t *testing.T) {
	for _, v := range []r3.Vector{
		{},
		{X: 0.5},
		{Y: -1.2},
		{Z: 2.9},
		{X: 0.3, Y: 0.4, Z: -0.5},
		{X: -2, Y: 1, Z: 0.25},
	} {
		q := RotationVectorToQuat(v)
		back := QuatToRotationMatrix(q).Quaternion()
		test.That(t, QuaternionAlmostEqual(q, back, 1e-9), test.ShouldBeTrue)
	}
}
