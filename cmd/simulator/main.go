// Package main publishes a synthetic circular trajectory over MQTT — IMU
// samples plus matching ground-truth poses — for exercising the estimator end
// to end without hardware.
package main

import (
	"context"
	"math"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/utils"

	"go.viam.com/strapdown/estimator"
	"go.viam.com/strapdown/measurement"
	"go.viam.com/strapdown/mqttstream"
	"go.viam.com/strapdown/spatialmath"
)

var logger = golog.NewDevelopmentLogger("strapdown-sim")

const (
	// circle of radius 5 m traversed at 0.5 rad/s, heading tangent locked
	radius    = 5.0
	turnRate  = 0.5
	imuPeriod = 10 * time.Millisecond
	// one ground-truth pose per ten IMU samples
	referenceEvery = 10
)

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	Broker         string `flag:"broker,default=tcp://localhost:1883,usage=MQTT broker address"`
	InertialTopic  string `flag:"inertial-topic,default=sim/sensor/imu,usage=IMU sample topic"`
	ReferenceTopic string `flag:"reference-topic,default=pose/ground_truth,usage=ground truth topic"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	client, err := mqttstream.Dial(argsParsed.Broker, "strapdown-simulator")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	logger.Infow("publishing synthetic trajectory",
		"broker", argsParsed.Broker,
		"radius", radius,
		"turn_rate", turnRate,
	)

	ticker := time.NewTicker(imuPeriod)
	defer ticker.Stop()

	dt := imuPeriod.Seconds()
	for tick := 0; ; tick++ {
		if !utils.SelectContextOrWaitChan(ctx, ticker.C) {
			return ctx.Err()
		}

		now := float64(tick) * dt
		publish(client, argsParsed.InertialTopic, inertialAt(now), logger)
		if tick%referenceEvery == 0 {
			publishReference(client, argsParsed.ReferenceTopic, referenceAt(now), logger)
		}
	}
}

// The body traverses a circle with its heading locked to the tangent, so its
// angular velocity is the constant turn rate about z and the accelerometer
// measures the centripetal acceleration plus the gravity reaction, both
// rotated into the body frame.
func inertialAt(t float64) measurement.InertialSample {
	theta := turnRate * t
	centripetal := r3.Vector{
		X: -radius * turnRate * turnRate * math.Cos(theta),
		Y: -radius * turnRate * turnRate * math.Sin(theta),
	}
	bodyToNav := spatialmath.QuatToRotationMatrix(
		spatialmath.RotationVectorToQuat(r3.Vector{Z: theta}))
	specificForce := bodyToNav.Transpose().Mul(centripetal.Sub(estimator.DefaultGravity))

	return measurement.InertialSample{
		Time:               t,
		AngularVelocity:    r3.Vector{Z: turnRate},
		LinearAcceleration: specificForce,
	}
}

func referenceAt(t float64) measurement.ReferenceSample {
	theta := turnRate * t
	return measurement.ReferenceSample{
		Time: t,
		Pose: spatialmath.NewPose(
			spatialmath.QuatToRotationMatrix(spatialmath.RotationVectorToQuat(r3.Vector{Z: theta})),
			r3.Vector{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)},
		),
		Velocity: r3.Vector{
			X: -radius * turnRate * math.Sin(theta),
			Y: radius * turnRate * math.Cos(theta),
		},
	}
}

func publish(client mqtt.Client, topic string, sample measurement.InertialSample, logger golog.Logger) {
	payload, err := mqttstream.EncodeInertial(sample)
	if err != nil {
		logger.Errorw("could not encode inertial sample", "error", err)
		return
	}
	if token := client.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
		logger.Errorw("could not publish inertial sample", "error", token.Error())
	}
}

func publishReference(client mqtt.Client, topic string, sample measurement.ReferenceSample, logger golog.Logger) {
	payload, err := mqttstream.EncodeReference(sample)
	if err != nil {
		logger.Errorw("could not encode reference sample", "error", err)
		return
	}
	if token := client.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
		logger.Errorw("could not publish reference sample", "error", token.Error())
	}
}
