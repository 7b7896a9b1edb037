package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// RotationMatrix is a 3x3 matrix in row major order representing a rotation
// from the body frame to the navigation frame.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates the rotation matrix from a slice of floats in row
// major order. Orthonormality of the input is the caller's responsibility.
func NewRotationMatrix(m [9]float64) *RotationMatrix {
	return &RotationMatrix{mat: m}
}

// NewZeroRotationMatrix returns the identity, signifying no rotation.
func NewZeroRotationMatrix() *RotationMatrix {
	return &RotationMatrix{mat: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// At returns the float corresponding to the given row and column.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[3*row+col]
}

// Row returns the a vector with the given row of the matrix.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	return r3.Vector{X: rm.mat[3*row], Y: rm.mat[3*row+1], Z: rm.mat[3*row+2]}
}

// Mul returns the matrix-vector product, rotating a body frame vector into
// the navigation frame.
func (rm *RotationMatrix) Mul(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: rm.mat[0]*v.X + rm.mat[1]*v.Y + rm.mat[2]*v.Z,
		Y: rm.mat[3]*v.X + rm.mat[4]*v.Y + rm.mat[5]*v.Z,
		Z: rm.mat[6]*v.X + rm.mat[7]*v.Y + rm.mat[8]*v.Z,
	}
}

// Transpose returns the transpose, which for an orthonormal rotation matrix
// is its inverse (navigation frame to body frame).
func (rm *RotationMatrix) Transpose() *RotationMatrix {
	m := rm.mat
	return &RotationMatrix{mat: [9]float64{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}}
}

// Quaternion converts the rotation matrix to a unit quaternion using
// Shepperd's method, branching on the largest diagonal term for stability.
func (rm *RotationMatrix) Quaternion() quat.Number {
	m := rm.mat
	var q quat.Number
	tr := m[0] + m[4] + m[8]
	switch {
	case tr > 0:
		s := 2 * math.Sqrt(tr+1)
		q = quat.Number{
			Real: 0.25 * s,
			Imag: (m[7] - m[5]) / s,
			Jmag: (m[2] - m[6]) / s,
			Kmag: (m[3] - m[1]) / s,
		}
	case m[0] > m[4] && m[0] > m[8]:
		s := 2 * math.Sqrt(1+m[0]-m[4]-m[8])
		q = quat.Number{
			Real: (m[7] - m[5]) / s,
			Imag: 0.25 * s,
			Jmag: (m[1] + m[3]) / s,
			Kmag: (m[2] + m[6]) / s,
		}
	case m[4] > m[8]:
		s := 2 * math.Sqrt(1+m[4]-m[0]-m[8])
		q = quat.Number{
			Real: (m[2] - m[6]) / s,
			Imag: (m[1] + m[3]) / s,
			Jmag: 0.25 * s,
			Kmag: (m[5] + m[7]) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m[8]-m[0]-m[4])
		q = quat.Number{
			Real: (m[3] - m[1]) / s,
			Imag: (m[2] + m[6]) / s,
			Jmag: (m[5] + m[7]) / s,
			Kmag: 0.25 * s,
		}
	}
	return Normalize(q)
}
