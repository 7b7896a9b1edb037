package mqttstream

import (
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/edaniels/golog"

	"go.viam.com/strapdown/estimator"
	"go.viam.com/strapdown/measurement"
)

// Dial connects to an MQTT broker.
func Dial(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return client, nil
}

// CycleResult is what one stepping cycle observed, captured atomically with
// the step itself so the reference never races ahead of the estimate.
type CycleResult struct {
	State        estimator.State
	Reference    measurement.ReferenceSample
	HasReference bool
}

// Feed routes sample messages from MQTT subscriptions into an estimator. The
// broker delivers messages on its own goroutines while the run loop steps the
// estimator, so the feed serializes all estimator access behind one mutex,
// preserving the core's single-consumer contract.
type Feed struct {
	client mqtt.Client
	logger golog.Logger

	mu  sync.Mutex
	est *estimator.Estimator
}

// NewFeed wraps an estimator with a connected MQTT client.
func NewFeed(client mqtt.Client, est *estimator.Estimator, logger golog.Logger) *Feed {
	return &Feed{client: client, est: est, logger: logger}
}

// Subscribe starts routing the two sample topics into the estimator buffers.
func (f *Feed) Subscribe(inertialTopic, referenceTopic string) error {
	token := f.client.Subscribe(inertialTopic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		sample, err := DecodeInertial(msg.Payload())
		if err != nil {
			f.logger.Errorw("dropping inertial message", "error", err)
			return
		}
		f.mu.Lock()
		err = f.est.AddInertial(sample)
		f.mu.Unlock()
		if err != nil {
			f.logger.Errorw("dropping inertial sample", "error", err)
		}
	})
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}

	token = f.client.Subscribe(referenceTopic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		sample, err := DecodeReference(msg.Payload())
		if err != nil {
			f.logger.Errorw("dropping reference message", "error", err)
			return
		}
		f.mu.Lock()
		err = f.est.AddReference(sample)
		f.mu.Unlock()
		if err != nil {
			f.logger.Errorw("dropping reference sample", "error", err)
		}
	})
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Step runs one estimator cycle and, when the state advanced, returns a
// consistent snapshot of the estimate and the latest reference sample.
func (f *Feed) Step() (CycleResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.est.TryStep() {
		return CycleResult{}, false
	}
	result := CycleResult{State: f.est.State()}
	result.Reference, result.HasReference = f.est.LatestReference()
	return result, true
}

// State returns a snapshot of the estimator state without stepping.
func (f *Feed) State() estimator.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.est.State()
}

// Publisher emits pose estimates on an MQTT topic.
type Publisher struct {
	client mqtt.Client
	topic  string
}

// NewPublisher returns a publisher for the given topic.
func NewPublisher(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Publish sends one estimate.
func (p *Publisher) Publish(state estimator.State) error {
	payload, err := EncodeEstimate(state)
	if err != nil {
		return err
	}
	token := p.client.Publish(p.topic, 0, false, payload)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}
