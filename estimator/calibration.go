// Package estimator implements mid-value strapdown inertial integration: it
// bootstraps a pose/velocity estimate from a ground-truth reference stream,
// then dead-reckons by integrating bias-corrected IMU samples.
package estimator

import (
	"github.com/golang/geo/r3"

	"go.viam.com/strapdown/spatialmath"
)

// Calibration holds the fixed sensor biases and the navigation-frame gravity
// vector. Set once at construction and immutable thereafter; the values are
// trusted inputs and validated upstream.
type Calibration struct {
	Gravity                r3.Vector
	AngularVelocityBias    r3.Vector
	LinearAccelerationBias r3.Vector
}

// DefaultGravity is the navigation-frame gravity used when none is configured.
var DefaultGravity = r3.Vector{Z: -9.81}

// UnbiasedAngularVelocity removes the fixed gyro bias from a raw body-frame
// angular velocity measurement.
func (c Calibration) UnbiasedAngularVelocity(raw r3.Vector) r3.Vector {
	return raw.Sub(c.AngularVelocityBias)
}

// UnbiasedLinearAcceleration removes the accelerometer bias from a raw
// body-frame specific-force measurement, rotates it into the navigation frame
// through rot (the body-to-navigation rotation valid at the sample's
// timestamp), and removes the gravity contribution, yielding true
// navigation-frame acceleration. Specific force is a − g, so adding the
// configured downward gravity vector recovers a; a body at rest measuring the
// +9.81 reaction comes out at exactly zero.
func (c Calibration) UnbiasedLinearAcceleration(raw r3.Vector, rot *spatialmath.RotationMatrix) r3.Vector {
	return rot.Mul(raw.Sub(c.LinearAccelerationBias)).Add(c.Gravity)
}
