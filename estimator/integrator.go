package estimator

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/strapdown/measurement"
	"go.viam.com/strapdown/spatialmath"
)

// ErrSampleOrder indicates the current sample does not strictly follow the
// previous one in time, so no interval exists to integrate over.
// Recoverable: the cycle is skipped and retried once a newer sample arrives.
var ErrSampleOrder = errors.New("current sample does not strictly follow previous")

// Mode selects how the integrator approximates the integrals of angular
// velocity and acceleration over a sample interval.
type Mode byte

const (
	// ModeMidValue integrates with the trapezoidal rule, averaging both
	// endpoint measurements. Second-order accurate.
	ModeMidValue Mode = iota
	// ModeEuler integrates with only the earlier endpoint's measurement.
	// First-order accurate; kept for comparison against ModeMidValue.
	ModeEuler
)

func (m Mode) String() string {
	switch m {
	case ModeMidValue:
		return "midvalue"
	case ModeEuler:
		return "euler"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name as used in flags and config files.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "midvalue", "":
		return ModeMidValue, nil
	case "euler":
		return ModeEuler, nil
	default:
		return 0, errors.Errorf("unknown integration mode %q", s)
	}
}

// Integrator converts pairs of consecutive bias-corrected inertial samples
// into incremental rotation and velocity and folds them into a pose/velocity
// state.
type Integrator struct {
	calibration Calibration
	mode        Mode
}

// NewIntegrator returns an integrator with the given calibration and mode.
func NewIntegrator(calibration Calibration, mode Mode) *Integrator {
	return &Integrator{calibration: calibration, mode: mode}
}

// AngularDelta approximates the integral of unbiased angular velocity over
// [prev.Time, curr.Time] as a rotation vector in the body frame at the start
// of the interval.
func (ig *Integrator) AngularDelta(prev, curr measurement.InertialSample) (r3.Vector, error) {
	deltaT := curr.Time - prev.Time
	if deltaT <= 0 {
		return r3.Vector{}, ErrSampleOrder
	}

	prevVel := ig.calibration.UnbiasedAngularVelocity(prev.AngularVelocity)
	if ig.mode == ModeEuler {
		return prevVel.Mul(deltaT), nil
	}
	currVel := ig.calibration.UnbiasedAngularVelocity(curr.AngularVelocity)
	return currVel.Add(prevVel).Mul(0.5 * deltaT), nil
}

// UpdateOrientation composes the incremental rotation described by
// angularDelta onto the pose's orientation, right-multiplying since the
// increment lives in the body frame at the start of the interval. It returns
// the rotations before and after the update; the velocity delta needs both
// because each sample's acceleration must be rotated by the orientation valid
// at its own timestamp. A zero-magnitude delta degenerates to the identity
// and leaves orientation unchanged.
func (ig *Integrator) UpdateOrientation(
	angularDelta r3.Vector, pose *spatialmath.Pose,
) (rPrev, rCurr *spatialmath.RotationMatrix) {
	dq := spatialmath.RotationVectorToQuat(angularDelta)
	q := spatialmath.Normalize(quat.Mul(pose.Rotation().Quaternion(), dq))

	rPrev = pose.Rotation()
	pose.SetRotation(spatialmath.QuatToRotationMatrix(q))
	rCurr = pose.Rotation()
	return rPrev, rCurr
}

// VelocityDelta approximates the integral of unbiased navigation-frame
// acceleration over [prev.Time, curr.Time]. rPrev and rCurr are the
// orientations valid at the two sample timestamps, as returned by
// UpdateOrientation.
func (ig *Integrator) VelocityDelta(
	prev, curr measurement.InertialSample,
	rPrev, rCurr *spatialmath.RotationMatrix,
) (float64, r3.Vector, error) {
	deltaT := curr.Time - prev.Time
	if deltaT <= 0 {
		return 0, r3.Vector{}, ErrSampleOrder
	}

	prevAcc := ig.calibration.UnbiasedLinearAcceleration(prev.LinearAcceleration, rPrev)
	if ig.mode == ModeEuler {
		return deltaT, prevAcc.Mul(deltaT), nil
	}
	currAcc := ig.calibration.UnbiasedLinearAcceleration(curr.LinearAcceleration, rCurr)
	return deltaT, currAcc.Add(prevAcc).Mul(0.5 * deltaT), nil
}

// UpdatePosition folds a velocity delta into the pose's translation and the
// velocity estimate. The translation advances by the old velocity plus half
// the velocity increment, the mid-value integral of velocity over the
// interval; both modes share this formula.
func (ig *Integrator) UpdatePosition(
	deltaT float64, velocityDelta r3.Vector,
	pose *spatialmath.Pose, velocity *r3.Vector,
) {
	pose.SetPoint(pose.Point().
		Add(velocity.Mul(deltaT)).
		Add(velocityDelta.Mul(0.5 * deltaT)))
	*velocity = velocity.Add(velocityDelta)
}
