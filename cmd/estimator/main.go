// Package main runs the strapdown inertial odometry estimator against an
// MQTT broker, optionally publishing the estimate, recording TUM trajectory
// files, and serving a live pose viewer.
package main

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/strapdown/config"
	"go.viam.com/strapdown/estimator"
	"go.viam.com/strapdown/mqttstream"
	"go.viam.com/strapdown/trajectory"
	"go.viam.com/strapdown/web"
)

var logger = golog.NewDevelopmentLogger("strapdown")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string `flag:"config,required,usage=path to estimator config file"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cfg, err := config.Read(argsParsed.ConfigFile)
	if err != nil {
		return err
	}
	return runEstimator(ctx, cfg, clock.New(), logger)
}

func runEstimator(ctx context.Context, cfg *config.Config, clk clock.Clock, logger golog.Logger) (err error) {
	client, err := mqttstream.Dial(cfg.Broker, cfg.ClientID)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	logger.Infow("connected to broker", "broker", cfg.Broker, "mode", cfg.IntegrationMode())

	est := estimator.New(cfg.Calibration(), cfg.IntegrationMode(), logger)
	feed := mqttstream.NewFeed(client, est, logger)
	if err := feed.Subscribe(cfg.InertialTopic, cfg.ReferenceTopic); err != nil {
		return err
	}

	var publisher *mqttstream.Publisher
	if cfg.EstimateTopic != "" {
		publisher = mqttstream.NewPublisher(client, cfg.EstimateTopic)
	}

	var pair *trajectory.Pair
	if cfg.TrajectoryDir != "" {
		pair, err = trajectory.NewPair(cfg.TrajectoryDir)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Combine(err, pair.Close())
		}()
	}

	if cfg.WebAddress != "" {
		viewer := web.NewServer(cfg.WebAddress, feed.State, logger)
		viewer.Start(ctx)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			err = multierr.Combine(err, viewer.Stop(stopCtx))
		}()
	}

	ticker := clk.Ticker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		if !utils.SelectContextOrWaitChan(ctx, ticker.C) {
			return ctx.Err()
		}

		result, updated := feed.Step()
		if !updated {
			continue
		}
		if publisher != nil {
			if err := publisher.Publish(result.State); err != nil {
				logger.Errorw("could not publish estimate", "error", err)
			}
		}
		if pair != nil {
			recordCycle(pair, result, logger)
		}
	}
}

func recordCycle(pair *trajectory.Pair, result mqttstream.CycleResult, logger golog.Logger) {
	state := result.State
	if err := pair.Estimate.Write(trajectory.Record{
		Elapsed:     state.Time - state.InitTime,
		Position:    state.Pose.Point(),
		Orientation: state.Pose.Rotation().Quaternion(),
	}); err != nil {
		logger.Errorw("could not record estimate", "error", err)
	}

	if !result.HasReference {
		return
	}
	ref := result.Reference
	if err := pair.Reference.Write(trajectory.Record{
		Elapsed:     ref.Time - state.InitTime,
		Position:    ref.Pose.Point(),
		Orientation: ref.Pose.Rotation().Quaternion(),
	}); err != nil {
		logger.Errorw("could not record reference", "error", err)
	}
}
