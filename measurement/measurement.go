// Package measurement defines the timestamped samples consumed by the
// estimator and the time-ordered buffers that hold them between cycles.
package measurement

import (
	"github.com/golang/geo/r3"

	"go.viam.com/strapdown/spatialmath"
)

// InertialSample is a single IMU measurement in the body frame. Samples are
// immutable once produced.
type InertialSample struct {
	// Time is a monotonic timestamp in seconds.
	Time float64
	// AngularVelocity is in rad/s.
	AngularVelocity r3.Vector
	// LinearAcceleration is specific force in m/s².
	LinearAcceleration r3.Vector
}

// ReferenceSample is a ground-truth pose/velocity measurement in the
// navigation frame, used only to bootstrap the estimator.
type ReferenceSample struct {
	Time     float64
	Pose     *spatialmath.Pose
	Velocity r3.Vector
}
