// Package mqttstream connects the estimator to an MQTT broker: it decodes
// sample messages into the estimator's buffers and publishes the running pose
// estimate.
package mqttstream

import (
	"encoding/json"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/strapdown/estimator"
	"go.viam.com/strapdown/measurement"
	"go.viam.com/strapdown/spatialmath"
)

// inertialMessage is the wire form of an IMU sample. Vectors are [x, y, z],
// quaternions [qx, qy, qz, qw].
type inertialMessage struct {
	Time               float64    `json:"time"`
	AngularVelocity    [3]float64 `json:"angular_velocity"`
	LinearAcceleration [3]float64 `json:"linear_acceleration"`
}

type referenceMessage struct {
	Time        float64    `json:"time"`
	Position    [3]float64 `json:"position"`
	Orientation [4]float64 `json:"orientation"`
	Velocity    [3]float64 `json:"velocity"`
}

type estimateMessage struct {
	Time        float64    `json:"time"`
	Position    [3]float64 `json:"position"`
	Orientation [4]float64 `json:"orientation"`
	Velocity    [3]float64 `json:"velocity"`
}

func toVector(a [3]float64) r3.Vector {
	return r3.Vector{X: a[0], Y: a[1], Z: a[2]}
}

func fromVector(v r3.Vector) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// DecodeInertial parses an IMU sample payload.
func DecodeInertial(payload []byte) (measurement.InertialSample, error) {
	var msg inertialMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return measurement.InertialSample{}, errors.Wrap(err, "bad inertial payload")
	}
	return measurement.InertialSample{
		Time:               msg.Time,
		AngularVelocity:    toVector(msg.AngularVelocity),
		LinearAcceleration: toVector(msg.LinearAcceleration),
	}, nil
}

// DecodeReference parses a ground-truth pose payload.
func DecodeReference(payload []byte) (measurement.ReferenceSample, error) {
	var msg referenceMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return measurement.ReferenceSample{}, errors.Wrap(err, "bad reference payload")
	}
	orientation := spatialmath.Normalize(quat.Number{
		Imag: msg.Orientation[0],
		Jmag: msg.Orientation[1],
		Kmag: msg.Orientation[2],
		Real: msg.Orientation[3],
	})
	return measurement.ReferenceSample{
		Time: msg.Time,
		Pose: spatialmath.NewPose(
			spatialmath.QuatToRotationMatrix(orientation),
			toVector(msg.Position),
		),
		Velocity: toVector(msg.Velocity),
	}, nil
}

// EncodeInertial serializes an IMU sample for publication.
func EncodeInertial(s measurement.InertialSample) ([]byte, error) {
	return json.Marshal(inertialMessage{
		Time:               s.Time,
		AngularVelocity:    fromVector(s.AngularVelocity),
		LinearAcceleration: fromVector(s.LinearAcceleration),
	})
}

// EncodeReference serializes a ground-truth sample for publication.
func EncodeReference(s measurement.ReferenceSample) ([]byte, error) {
	q := s.Pose.Rotation().Quaternion()
	return json.Marshal(referenceMessage{
		Time:        s.Time,
		Position:    fromVector(s.Pose.Point()),
		Orientation: [4]float64{q.Imag, q.Jmag, q.Kmag, q.Real},
		Velocity:    fromVector(s.Velocity),
	})
}

// EncodeEstimate serializes an estimator state for publication.
func EncodeEstimate(s estimator.State) ([]byte, error) {
	q := s.Pose.Rotation().Quaternion()
	return json.Marshal(estimateMessage{
		Time:        s.Time,
		Position:    fromVector(s.Pose.Point()),
		Orientation: [4]float64{q.Imag, q.Jmag, q.Kmag, q.Real},
		Velocity:    fromVector(s.Velocity),
	})
}
