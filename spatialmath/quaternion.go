// Package spatialmath defines the spatial mathematical operations needed for
// strapdown integration: unit quaternions, rotation matrices, and rigid poses.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// NewZeroQuaternion returns the identity quaternion, signifying no rotation.
func NewZeroQuaternion() quat.Number {
	return quat.Number{Real: 1}
}

// Normalize scales a quaternion back onto the unit sphere. A zero quaternion
// normalizes to the identity rather than dividing by zero.
func Normalize(q quat.Number) quat.Number {
	length := quat.Abs(q)
	if length == 0 {
		return NewZeroQuaternion()
	}
	return quat.Scale(1/length, q)
}

// RotationVectorToQuat is the exponential map of a rotation vector onto the
// unit quaternion manifold. The vector's direction is the rotation axis and
// its magnitude the rotation angle in radians. It is exact for a rotation at
// constant angular velocity over the interval the vector was integrated from.
func RotationVectorToQuat(v r3.Vector) quat.Number {
	mag := v.Norm()
	// A zero rotation has no defined axis; any unit axis yields the identity
	// since sin(0) kills the imaginary part.
	dir := r3.Vector{X: 1, Y: 0, Z: 0}
	if mag != 0 {
		dir = v.Mul(1 / mag)
	}
	sinA := math.Sin(mag / 2)
	return quat.Number{
		Real: math.Cos(mag / 2),
		Imag: sinA * dir.X,
		Jmag: sinA * dir.Y,
		Kmag: sinA * dir.Z,
	}
}

// QuaternionAlmostEqual determines if two quaternions represent the same
// rotation to within tol, accounting for the double cover (q and -q are the
// same orientation).
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	diff := quat.Mul(a, quat.Conj(b))
	return 2*math.Acos(math.Min(math.Abs(diff.Real), 1)) < tol
}

// Slerp performs spherical linear interpolation between two unit quaternions.
// The parameter t runs from 0 (returns q1) to 1 (returns q2), following the
// shorter great-circle arc between the two orientations.
func Slerp(q1, q2 quat.Number, t float64) quat.Number {
	dot := q1.Real*q2.Real + q1.Imag*q2.Imag + q1.Jmag*q2.Jmag + q1.Kmag*q2.Kmag
	if dot < 0 {
		q2 = quat.Scale(-1, q2)
		dot = -dot
	}
	if dot > 1-1e-10 {
		// Nearly parallel; the arc degenerates and linear interpolation
		// followed by normalization is numerically safer.
		return Normalize(quat.Add(quat.Scale(1-t, q1), quat.Scale(t, q2)))
	}
	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	s1 := math.Sin((1-t)*theta) / sinTheta
	s2 := math.Sin(t*theta) / sinTheta
	return Normalize(quat.Add(quat.Scale(s1, q1), quat.Scale(s2, q2)))
}

// QuatToRotationMatrix converts a quaternion to its rotation matrix. The
// input need not be normalized; the conversion normalizes first so the result
// is always orthonormal.
func QuatToRotationMatrix(q quat.Number) *RotationMatrix {
	q = Normalize(q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return &RotationMatrix{mat: [9]float64{
		1 - 2*y*y - 2*z*z, 2*x*y - 2*z*w, 2*x*z + 2*y*w,
		2*x*y + 2*z*w, 1 - 2*x*x - 2*z*z, 2*y*z - 2*x*w,
		2*x*z - 2*y*w, 2*y*z + 2*x*w, 1 - 2*x*x - 2*y*y,
	}}
}
