package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Pose is a rigid transform in the navigation frame: a rotation paired with a
// translation. The rotation is stored as a matrix so that per-sample frame
// changes stay a single matrix-vector product; updates that compose rotations
// convert through quaternions and re-orthonormalize on the way back.
type Pose struct {
	rotation    *RotationMatrix
	translation r3.Vector
}

// NewZeroPose returns a pose at the origin with no rotation.
func NewZeroPose() *Pose {
	return &Pose{rotation: NewZeroRotationMatrix()}
}

// NewPose creates a pose from a rotation and a translation.
func NewPose(rotation *RotationMatrix, translation r3.Vector) *Pose {
	return &Pose{rotation: rotation, translation: translation}
}

// Rotation returns the pose's rotation matrix.
func (p *Pose) Rotation() *RotationMatrix {
	return p.rotation
}

// Point returns the pose's translation.
func (p *Pose) Point() r3.Vector {
	return p.translation
}

// SetRotation replaces the pose's rotation.
func (p *Pose) SetRotation(rm *RotationMatrix) {
	p.rotation = rm
}

// SetPoint replaces the pose's translation.
func (p *Pose) SetPoint(pt r3.Vector) {
	p.translation = pt
}

// Clone returns a pose identical to this one that shares no memory with it.
func (p *Pose) Clone() *Pose {
	rm := *p.rotation
	return &Pose{rotation: &rm, translation: p.translation}
}

// PoseAlmostEqual reports whether two poses agree in both translation and
// orientation to within tol.
func PoseAlmostEqual(a, b *Pose, tol float64) bool {
	return a.translation.Sub(b.translation).Norm() < tol &&
		QuaternionAlmostEqual(a.rotation.Quaternion(), b.rotation.Quaternion(), tol)
}
