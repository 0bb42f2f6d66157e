package sim

import (
	"errors"
	"strings"
	"testing"

	"github.com/mcdsl/watercarry/internal/config"
	"github.com/mcdsl/watercarry/internal/impairment"
	"github.com/mcdsl/watercarry/internal/treatment"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type audioRec struct{ cues []Cue }

func (a *audioRec) Play(c Cue) { a.cues = append(a.cues, c) }

func (a *audioRec) count(c Cue) int {
	n := 0
	for _, x := range a.cues {
		if x == c {
			n++
		}
	}
	return n
}

type displayRec struct {
	shown     []string
	cleared   int
	treatment bool
}

func (d *displayRec) ShowInstruction(in config.Instruction) { d.shown = append(d.shown, in.Key) }
func (d *displayRec) ClearInstruction()                     { d.cleared++ }
func (d *displayRec) ShowTreatment(visible bool)            { d.treatment = visible }

func (d *displayRec) last() string {
	if len(d.shown) == 0 {
		return ""
	}
	return d.shown[len(d.shown)-1]
}

type flowRec struct {
	on            bool
	starts, stops int
}

func (f *flowRec) Start() { f.on = true; f.starts++ }
func (f *flowRec) Stop()  { f.on = false; f.stops++ }

type carrierRec struct {
	detached int
	pickup   bool
	resets   int
}

func (c *carrierRec) Detach()                       { c.detached++ }
func (c *carrierRec) SetPickupEnabled(enabled bool) { c.pickup = enabled }
func (c *carrierRec) Reset()                        { c.resets++ }

type persistRec struct {
	records []Record
	err     error
}

func (p *persistRec) Persist(r Record) error {
	p.records = append(p.records, r)
	return p.err
}

type actuatorRec struct {
	applied  []float64
	modified []float64
	cleared  int
}

func (a *actuatorRec) Apply(strength float64) { a.applied = append(a.applied, strength) }
func (a *actuatorRec) Clear()                 { a.cleared++ }
func (a *actuatorRec) Modify(factor float64)  { a.modified = append(a.modified, factor) }

type rig struct {
	m         *Manager
	audio     *audioRec
	display   *displayRec
	flow      *flowRec
	carrier   *carrierRec
	persister *persistRec
	fog       *actuatorRec
	shake     *actuatorRec
	hook      *test.Hook
}

func newRig(t *testing.T, plan *config.SimulationPlan) *rig {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	r := &rig{
		audio:     &audioRec{},
		display:   &displayRec{},
		flow:      &flowRec{},
		carrier:   &carrierRec{pickup: true},
		persister: &persistRec{},
		fog:       &actuatorRec{},
		shake:     &actuatorRec{},
		hook:      hook,
	}
	r.m = New(plan, Options{
		Audio: r.audio,
		Actuators: impairment.Actuators{
			Fog:          r.fog,
			Shake:        r.shake,
			Gravity:      &actuatorRec{},
			SpeedPenalty: &actuatorRec{},
		},
		Display:   r.display,
		Flow:      r.flow,
		Carrier:   r.carrier,
		Persister: r.persister,
		Logger:    logger,
		SessionID: "test-session",
	})
	return r
}

// parsePlan builds a plan whose treatments always succeed.
func parsePlan(t *testing.T, ls ...string) *config.SimulationPlan {
	t.Helper()
	logger, _ := test.NewNullLogger()
	plan, err := config.Parse(strings.Join(ls, "\n")+"\n", config.WithLogger(logger), config.WithRNG(treatment.FixedRNG(0)))
	require.NoError(t, err)
	return plan
}

// passTutorial earns the day-zero score and waits out the transition.
func (r *rig) passTutorial(t *testing.T) {
	t.Helper()
	r.m.TogglePayment(true)
	r.m.PayReward(r.m.Plan().DayZeroUnimpairedThreshold)
	r.m.Advance(0.1)
	require.Equal(t, Transition, r.m.CurrentState())
	r.m.Advance(TransitionTime + 0.5)
}

var errDisk = errors.New("disk full")
