package api

import (
	"sync"

	"github.com/mcdsl/watercarry/internal/config"
	"github.com/mcdsl/watercarry/internal/sim"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the gRPC health service name of the simulation.
const HealthService = "watercarry.Simulation"

// Session owns one manager. The manager is single-threaded; every access
// goes through the session mutex.
type Session struct {
	ID string

	mu     sync.Mutex
	m      *sim.Manager
	scene  *Scene
	health *health.Server
	log    *logrus.Logger
}

// NewSession builds the manager for plan. Collaborators left nil in opts
// are served by a headless Scene. hs may be nil.
func NewSession(id string, plan *config.SimulationPlan, opts sim.Options, hs *health.Server) *Session {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	scene := NewScene(opts.Logger)
	if opts.Audio == nil {
		opts.Audio = scene
	}
	if opts.Display == nil {
		opts.Display = scene
	}
	if opts.Flow == nil {
		opts.Flow = scene
	}
	if opts.Carrier == nil {
		opts.Carrier = scene
	}
	if a := opts.Actuators; a.Fog == nil && a.Gravity == nil && a.Shake == nil && a.SpeedPenalty == nil {
		opts.Actuators = LoggingActuators(opts.Logger)
	}
	opts.SessionID = id

	s := &Session{
		ID:     id,
		m:      sim.New(plan, opts),
		scene:  scene,
		health: hs,
		log:    opts.Logger,
	}
	s.syncHealth()
	return s
}

// Do runs fn with exclusive access to the manager and refreshes the
// health status afterwards.
func (s *Session) Do(fn func(m *sim.Manager)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.m)
	s.syncHealth()
}

// DoErr is Do for operations that can fail.
func (s *Session) DoErr(fn func(m *sim.Manager) error) error {
	var err error
	s.Do(func(m *sim.Manager) { err = fn(m) })
	return err
}

// Apply runs fn and returns the State it left behind, under one lock.
func (s *Session) Apply(fn func(m *sim.Manager)) State {
	var st State
	s.Do(func(m *sim.Manager) {
		fn(m)
		st = s.snapshot()
	})
	return st
}

// ApplyErr is Apply for operations that can fail.
func (s *Session) ApplyErr(fn func(m *sim.Manager) error) (State, error) {
	var err error
	st := s.Apply(func(m *sim.Manager) { err = fn(m) })
	return st, err
}

func (s *Session) syncHealth() {
	if s.health == nil {
		return
	}
	status := healthpb.HealthCheckResponse_SERVING
	if st := s.m.CurrentState(); st == sim.Error || st == sim.Complete {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(HealthService, status)
}
