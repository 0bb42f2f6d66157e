package api

import (
	"github.com/mcdsl/watercarry/internal/config"
	"github.com/mcdsl/watercarry/internal/impairment"
	"github.com/mcdsl/watercarry/internal/sim"
	"github.com/sirupsen/logrus"
)

// Scene is a headless stand-in for the VR scene. It records what the
// manager asked for so clients can render it from /state. Access is
// serialised by the owning Session.
type Scene struct {
	log *logrus.Entry

	instruction   *config.Instruction
	treatmentUI   bool
	flowing       bool
	pickupEnabled bool
	lastCue       sim.Cue
}

func NewScene(log *logrus.Logger) *Scene {
	return &Scene{log: log.WithField("component", "scene"), pickupEnabled: true}
}

func (s *Scene) Play(c sim.Cue) {
	s.lastCue = c
	s.log.WithField("cue", c).Debug("audio")
}

func (s *Scene) ShowInstruction(in config.Instruction) {
	s.instruction = &in
	s.log.WithField("key", in.Key).Debug("instruction shown")
}

func (s *Scene) ClearInstruction()          { s.instruction = nil }
func (s *Scene) ShowTreatment(visible bool) { s.treatmentUI = visible }
func (s *Scene) Start()                     { s.flowing = true }
func (s *Scene) Stop()                      { s.flowing = false }
func (s *Scene) Detach()                    { s.log.Debug("bucket detached") }
func (s *Scene) SetPickupEnabled(on bool)   { s.pickupEnabled = on }
func (s *Scene) Reset()                     { s.pickupEnabled = true }

// kindActuator logs what a hand-tracking or overlay actuator would do.
type kindActuator struct {
	log *logrus.Entry
}

func (a kindActuator) Apply(strength float64) { a.log.WithField("strength", strength).Info("impairment applied") }
func (a kindActuator) Clear()                 { a.log.Info("impairment cleared") }
func (a kindActuator) Modify(factor float64)  { a.log.WithField("factor", factor).Info("impairment modified") }

// LoggingActuators returns one logging actuator per impairment kind.
func LoggingActuators(log *logrus.Logger) impairment.Actuators {
	mk := func(k impairment.Kind) impairment.Actuator {
		return kindActuator{log: log.WithFields(logrus.Fields{"component": "actuator", "kind": k.String()})}
	}
	return impairment.Actuators{
		Fog:          mk(impairment.Fog),
		Gravity:      mk(impairment.Gravity),
		Shake:        mk(impairment.Shake),
		SpeedPenalty: mk(impairment.SpeedPenalty),
	}
}
