// Package config loads the estimator's JSON configuration: broker and topic
// names for the sample streams plus the fixed sensor calibration.
package config

import (
	"encoding/json"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/strapdown/estimator"
)

// Vector is a 3-vector as it appears in config files.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vector) r3() r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

// Config holds everything the estimator process needs at startup. Immutable
// after Read.
type Config struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`

	InertialTopic  string `json:"inertial_topic"`
	ReferenceTopic string `json:"reference_topic"`
	EstimateTopic  string `json:"estimate_topic,omitempty"`

	Gravity                *Vector `json:"gravity,omitempty"`
	AngularVelocityBias    Vector  `json:"angular_velocity_bias,omitempty"`
	LinearAccelerationBias Vector  `json:"linear_acceleration_bias,omitempty"`

	// Mode selects the integration variant, "midvalue" (default) or "euler".
	Mode string `json:"mode,omitempty"`

	TrajectoryDir string `json:"trajectory_dir,omitempty"`
	WebAddress    string `json:"web_address,omitempty"`
}

// Read loads and validates a config file.
func Read(path string) (*Config, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not read config")
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "could not parse config")
	}
	if err := cfg.Validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures all required fields are present and the optional ones are
// well formed.
func (cfg *Config) Validate(path string) error {
	if cfg.Broker == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "broker")
	}
	if cfg.ClientID == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "client_id")
	}
	if cfg.InertialTopic == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "inertial_topic")
	}
	if cfg.ReferenceTopic == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "reference_topic")
	}
	if _, err := estimator.ParseMode(cfg.Mode); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return nil
}

// Calibration converts the configured biases and gravity into the
// estimator's calibration, defaulting gravity to -9.81 on z when omitted.
func (cfg *Config) Calibration() estimator.Calibration {
	gravity := estimator.DefaultGravity
	if cfg.Gravity != nil {
		gravity = cfg.Gravity.r3()
	}
	return estimator.Calibration{
		Gravity:                gravity,
		AngularVelocityBias:    cfg.AngularVelocityBias.r3(),
		LinearAccelerationBias: cfg.LinearAccelerationBias.r3(),
	}
}

// IntegrationMode returns the parsed integration mode; Validate has already
// rejected unknown names.
func (cfg *Config) IntegrationMode() estimator.Mode {
	mode, err := estimator.ParseMode(cfg.Mode)
	if err != nil {
		return estimator.ModeMidValue
	}
	return mode
}
