package measurement

import (
	"github.com/pkg/errors"

	"go.viam.com/strapdown/spatialmath"
)

// ErrOutOfRange indicates the synchronization target falls outside the time
// span covered by the buffer; extrapolation is forbidden. Recoverable: retry
// once more reference samples arrive.
var ErrOutOfRange = errors.New("target time outside buffered reference span")

// Synchronize produces a reference sample at exactly targetTime by
// interpolating between the two buffered samples bracketing it: translation
// and velocity linearly, orientation by spherical interpolation. On success
// the buffer is replaced by the single synchronized sample. Fails with
// ErrInsufficientData below two samples and ErrOutOfRange when targetTime is
// not covered.
func (b *ReferenceBuffer) Synchronize(targetTime float64) (ReferenceSample, error) {
	if len(b.samples) < 2 {
		return ReferenceSample{}, ErrInsufficientData
	}
	if targetTime < b.samples[0].Time || targetTime > b.samples[len(b.samples)-1].Time {
		return ReferenceSample{}, errors.Wrapf(ErrOutOfRange,
			"target %f not in [%f, %f]", targetTime, b.samples[0].Time, b.samples[len(b.samples)-1].Time)
	}

	// latest sample at or before the target, and the one after it
	lo := 0
	for lo+1 < len(b.samples) && b.samples[lo+1].Time <= targetTime {
		lo++
	}
	before := b.samples[lo]
	synced := before
	if before.Time != targetTime {
		after := b.samples[lo+1]
		synced = interpolate(before, after, targetTime)
	}
	synced.Pose = synced.Pose.Clone()

	b.samples = b.samples[:1]
	b.samples[0] = synced
	return synced, nil
}

func interpolate(before, after ReferenceSample, t float64) ReferenceSample {
	ratio := (t - before.Time) / (after.Time - before.Time)

	translation := before.Pose.Point().Mul(1 - ratio).Add(after.Pose.Point().Mul(ratio))
	rotation := spatialmath.Slerp(
		before.Pose.Rotation().Quaternion(),
		after.Pose.Rotation().Quaternion(),
		ratio,
	)
	velocity := before.Velocity.Mul(1 - ratio).Add(after.Velocity.Mul(ratio))

	return ReferenceSample{
		Time:     t,
		Pose:     spatialmath.NewPose(spatialmath.QuatToRotationMatrix(rotation), translation),
		Velocity: velocity,
	}
}
