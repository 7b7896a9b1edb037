package estimator

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/strapdown/measurement"
	"go.viam.com/strapdown/spatialmath"
)

// State is the running estimate. Exactly one instance lives inside an
// Estimator; State() hands out deep snapshots of it. Pose and Velocity are
// undefined until Initialized is true and must not be read by consumers
// before then.
type State struct {
	Pose     *spatialmath.Pose
	Velocity r3.Vector
	// Time is the timestamp of the last sample folded into the estimate.
	Time        float64
	InitTime    float64
	Initialized bool
}

// Estimator owns the measurement buffers and the running state, and
// orchestrates bootstrap versus steady-state integration. It is not safe for
// concurrent use; the caller must serialize ingestion and stepping.
type Estimator struct {
	integrator *Integrator
	inertial   measurement.InertialBuffer
	reference  measurement.ReferenceBuffer
	state      State
	logger     golog.Logger
}

// New returns an uninitialized estimator. The first successful TryStep after
// both buffers hold at least two samples bootstraps the state from the
// reference stream.
func New(calibration Calibration, mode Mode, logger golog.Logger) *Estimator {
	return &Estimator{
		integrator: NewIntegrator(calibration, mode),
		logger:     logger,
	}
}

// AddInertial appends an IMU sample to the inertial buffer.
func (e *Estimator) AddInertial(s measurement.InertialSample) error {
	return errors.Wrap(e.inertial.Append(s), "inertial sample rejected")
}

// AddReference appends a ground-truth sample to the reference buffer.
func (e *Estimator) AddReference(s measurement.ReferenceSample) error {
	return errors.Wrap(e.reference.Append(s), "reference sample rejected")
}

// State returns a read-only snapshot of the running estimate, valid only when
// Initialized is true.
func (e *Estimator) State() State {
	snapshot := e.state
	if snapshot.Pose != nil {
		snapshot.Pose = snapshot.Pose.Clone()
	}
	return snapshot
}

// LatestReference returns the most recent reference sample, which after
// bootstrap is informational only (logging alongside the estimate).
func (e *Estimator) LatestReference() (measurement.ReferenceSample, bool) {
	return e.reference.Latest()
}

// TryStep attempts one integration cycle, bootstrap or steady-state depending
// on the current regime, and reports whether the state was updated. Every
// failure mode is recoverable; the caller retries on the next cycle.
func (e *Estimator) TryStep() bool {
	if e.inertial.Len() < 2 || (!e.state.Initialized && e.reference.Len() < 2) {
		return false
	}
	if !e.state.Initialized {
		return e.bootstrap()
	}
	return e.step()
}

// bootstrap aligns the reference stream to the latest inertial timestamp and
// seeds the state from it. Both buffers collapse to the single sample used so
// the first steady-state cycle integrates from the bootstrap instant.
func (e *Estimator) bootstrap() bool {
	latest, ok := e.inertial.Latest()
	if !ok {
		return false
	}

	synced, err := e.reference.Synchronize(latest.Time)
	if err != nil {
		e.logger.Debugw("bootstrap synchronization not possible yet", "error", err)
		return false
	}

	e.state = State{
		Pose:        synced.Pose.Clone(),
		Velocity:    synced.Velocity,
		Time:        synced.Time,
		InitTime:    synced.Time,
		Initialized: true,
	}
	e.inertial.Collapse()
	e.logger.Infow("estimator initialized",
		"time", synced.Time,
		"position", synced.Pose.Point(),
		"velocity", synced.Velocity,
	)
	return true
}

// step runs one steady-state integration cycle over the oldest and latest
// retained inertial samples, then collapses both buffers to single-slot
// latest caches.
func (e *Estimator) step() bool {
	prev, _ := e.inertial.Oldest()
	curr, _ := e.inertial.Latest()

	angularDelta, err := e.integrator.AngularDelta(prev, curr)
	if err != nil {
		e.logger.Debugw("skipping cycle", "error", err)
		return false
	}

	rPrev, rCurr := e.integrator.UpdateOrientation(angularDelta, e.state.Pose)

	deltaT, velocityDelta, err := e.integrator.VelocityDelta(prev, curr, rPrev, rCurr)
	if err != nil {
		e.logger.Debugw("skipping cycle", "error", err)
		return false
	}

	e.integrator.UpdatePosition(deltaT, velocityDelta, e.state.Pose, &e.state.Velocity)
	e.state.Time = curr.Time

	e.inertial.Collapse()
	e.reference.Collapse()
	return true
}
