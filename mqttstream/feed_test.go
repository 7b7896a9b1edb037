package mqttstream

import (
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/strapdown/estimator"
	"go.viam.com/strapdown/measurement"
	"go.viam.com/strapdown/spatialmath"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// fakeClient records subscriptions and publications; only the methods the
// feed exercises are implemented.
type fakeClient struct {
	mqtt.Client
	handlers  map[string]mqtt.MessageHandler
	published map[string][][]byte
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		handlers:  map[string]mqtt.MessageHandler{},
		published: map[string][][]byte{},
	}
}

func (c *fakeClient) Subscribe(topic string, _ byte, callback mqtt.MessageHandler) mqtt.Token {
	c.handlers[topic] = callback
	return &fakeToken{}
}

func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	c.published[topic] = append(c.published[topic], payload.([]byte))
	return &fakeToken{}
}

type fakeMessage struct {
	mqtt.Message
	payload []byte
}

func (m *fakeMessage) Payload() []byte { return m.payload }

func (c *fakeClient) deliver(t *testing.T, topic string, payload []byte) {
	t.Helper()
	handler, ok := c.handlers[topic]
	test.That(t, ok, test.ShouldBeTrue)
	handler(c, &fakeMessage{payload: payload})
}

func TestFeedRoutesSamples(t *testing.T) {
	logger := golog.NewTestLogger(t)
	client := newFakeClient()
	est := estimator.New(estimator.Calibration{Gravity: estimator.DefaultGravity}, estimator.ModeMidValue, logger)
	feed := NewFeed(client, est, logger)
	test.That(t, feed.Subscribe("imu", "truth"), test.ShouldBeNil)

	atRest := func(tm float64) []byte {
		payload, err := EncodeInertial(measurement.InertialSample{
			Time:               tm,
			LinearAcceleration: r3.Vector{Z: 9.81},
		})
		test.That(t, err, test.ShouldBeNil)
		return payload
	}
	reference := func(tm float64) []byte {
		payload, err := EncodeReference(measurement.ReferenceSample{
			Time: tm,
			Pose: spatialmath.NewPose(spatialmath.NewZeroRotationMatrix(), r3.Vector{X: 1}),
		})
		test.That(t, err, test.ShouldBeNil)
		return payload
	}

	// nothing to do before data arrives
	_, updated := feed.Step()
	test.That(t, updated, test.ShouldBeFalse)

	client.deliver(t, "imu", atRest(0))
	client.deliver(t, "imu", atRest(0.1))
	client.deliver(t, "truth", reference(0))
	client.deliver(t, "truth", reference(0.2))

	// bootstrap
	result, updated := feed.Step()
	test.That(t, updated, test.ShouldBeTrue)
	test.That(t, result.State.Initialized, test.ShouldBeTrue)
	test.That(t, result.State.Pose.Point().X, test.ShouldAlmostEqual, 1)
	test.That(t, result.HasReference, test.ShouldBeTrue)

	// steady state
	client.deliver(t, "imu", atRest(0.2))
	result, updated = feed.Step()
	test.That(t, updated, test.ShouldBeTrue)
	test.That(t, result.State.Time, test.ShouldAlmostEqual, 0.2)

	// malformed and stale messages are dropped without wedging the feed
	client.deliver(t, "imu", []byte("not json"))
	client.deliver(t, "imu", atRest(0.05))
	client.deliver(t, "imu", atRest(0.3))
	_, updated = feed.Step()
	test.That(t, updated, test.ShouldBeTrue)
}

func TestPublisher(t *testing.T) {
	client := newFakeClient()
	publisher := NewPublisher(client, "pose/estimation")

	state := estimator.State{
		Pose:        spatialmath.NewPose(spatialmath.NewZeroRotationMatrix(), r3.Vector{Z: 2}),
		Time:        1.5,
		Initialized: true,
	}
	test.That(t, publisher.Publish(state), test.ShouldBeNil)
	test.That(t, client.published["pose/estimation"], test.ShouldHaveLength, 1)
	test.That(t, string(client.published["pose/estimation"][0]), test.ShouldContainSubstring, `"position":[0,0,2]`)
}
