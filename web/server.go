// Package web serves the latest pose estimate to browser viewers over a
// websocket.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/edaniels/golog"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/strapdown/estimator"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local viewer only
	},
}

// StateFunc returns the latest estimator state snapshot.
type StateFunc func() estimator.State

type poseMessage struct {
	Time        float64    `json:"time"`
	Position    [3]float64 `json:"position"`
	Orientation [4]float64 `json:"orientation"`
	Velocity    [3]float64 `json:"velocity"`
}

// Server pushes pose updates to each connected websocket client at a fixed
// cadence.
type Server struct {
	httpServer *http.Server
	state      StateFunc
	interval   time.Duration
	logger     golog.Logger
}

// NewServer returns a server listening on addr once Start is called.
func NewServer(addr string, state StateFunc, logger golog.Logger) *Server {
	server := &Server{
		state:    state,
		interval: 100 * time.Millisecond,
		logger:   logger,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/pose", server.handlePose)
	server.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server
}

// Start serves until Stop is called.
func (s *Server) Start(ctx context.Context) {
	utils.PanicCapturingGo(func() {
		s.logger.Infow("pose viewer listening", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorw("pose viewer stopped", "error", err)
		}
	})
}

// Stop shuts the server down, closing client connections.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handlePose(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer func() {
		utils.UncheckedError(conn.Close())
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for range ticker.C {
		state := s.state()
		if !state.Initialized {
			continue
		}
		q := state.Pose.Rotation().Quaternion()
		point := state.Pose.Point()
		payload, err := json.Marshal(poseMessage{
			Time:        state.Time,
			Position:    [3]float64{point.X, point.Y, point.Z},
			Orientation: [4]float64{q.Imag, q.Jmag, q.Kmag, q.Real},
			Velocity:    [3]float64{state.Velocity.X, state.Velocity.Y, state.Velocity.Z},
		})
		if err != nil {
			s.logger.Errorw("could not encode pose", "error", err)
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			// client went away
			return
		}
	}
}
