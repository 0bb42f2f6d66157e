package sim

import (
	"errors"
	"math"

	"github.com/mcdsl/watercarry/internal/config"
	"github.com/mcdsl/watercarry/internal/impairment"
	"github.com/mcdsl/watercarry/internal/treatment"
	"github.com/sirupsen/logrus"
)

const (
	TransitionTime         = 10.0 // seconds between days
	CountdownThreshold     = 10.0 // remaining seconds at which ticking starts
	CriticalCountdown      = 5.0  // remaining seconds at which ticking turns critical
	DefaultPersistInterval = 1.0
)

var (
	ErrNotRunning        = errors.New("simulation is not running")
	ErrNoTreatment       = errors.New("no treatment offered today")
	ErrAlreadyObtained   = errors.New("treatment already obtained today")
	ErrOptionUnavailable = errors.New("treatment option not offered today")
	ErrInsufficientFunds = errors.New("score too low to pay for treatment")
	ErrTutorialStep      = errors.New("not the next tutorial step")
)

// Options wires the manager to its collaborators. Nil collaborators are
// replaced with no-ops.
type Options struct {
	Audio     AudioSink
	Actuators impairment.Actuators
	Display   Display
	Flow      Flow
	Carrier   Carrier
	Persister Persister
	Logger    *logrus.Logger

	// seconds of total time between persisted records
	PersistInterval float64
	SessionID       string
}

type activeImpairment struct {
	imp     impairment.Impairment
	current float64
}

// Manager is the frame-driven simulation state machine. It is not safe
// for concurrent use; callers serialise Advance and the input methods.
type Manager struct {
	plan      *config.SimulationPlan
	log       *logrus.Entry
	audio     AudioSink
	act       impairment.Actuators
	display   Display
	flow      Flow
	carrier   Carrier
	persister Persister
	sessionID string

	state, resumeState State
	currentDay         int
	totalDays          int
	day                config.DayConfiguration

	currentScore, dayScore, cumulativePayment float64
	treatmentSpend                            float64
	paymentEnabled                            bool

	currentPayload, cumulativePayload, dailyCumulativePayload int
	cumulativeDelivered, dailyCumulativeDelivered             int
	totalSpilled, todaySpilled                                int

	elapsedDayTime, elapsedTotalTime float64

	active     []activeImpairment
	obtainType treatment.ObtainType

	tutorialStep     TutorialStep
	tutorialImpaired bool

	limbo limbo

	waiting        bool
	waitRemaining  float64
	delayRemaining float64

	lastTick        int
	persistInterval float64
	sincePersist    float64
}

// New builds a manager for plan. A nil plan or one without days leaves the
// manager in Error, where every call is a no-op.
func New(plan *config.SimulationPlan, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	m := &Manager{
		plan:            plan,
		log:             logger.WithField("component", "sim"),
		audio:           opts.Audio,
		act:             opts.Actuators,
		display:         opts.Display,
		flow:            opts.Flow,
		carrier:         opts.Carrier,
		persister:       opts.Persister,
		sessionID:       opts.SessionID,
		persistInterval: opts.PersistInterval,
		lastTick:        -1,
	}
	if m.audio == nil {
		m.audio = noopAudio{}
	}
	if m.display == nil {
		m.display = noopDisplay{}
	}
	if m.flow == nil {
		m.flow = noopFlow{}
	}
	if m.carrier == nil {
		m.carrier = noopCarrier{}
	}
	if m.persister == nil {
		m.persister = noopPersister{}
	}
	if m.persistInterval <= 0 {
		m.persistInterval = DefaultPersistInterval
	}

	if plan == nil || plan.TotalDays() == 0 {
		m.state = Error
		m.log.Error("startup error: simulation plan has no days")
		m.persist()
		return m
	}

	m.totalDays = plan.TotalDays()
	m.day = plan.Tutorial
	m.state = Running
	m.log.WithFields(logrus.Fields{"days": m.totalDays, "name": plan.SimName}).Info("simulation started")
	m.showStep()
	m.flow.Start()
	m.persist()
	return m
}

// Advance moves the simulation forward by dt seconds. Time is accumulated
// before any threshold is checked. Non-finite dt is ignored.
func (m *Manager) Advance(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) || m.state == Paused || m.state.terminal() {
		return
	}
	m.elapsedTotalTime += dt

	switch m.state {
	case Running:
		m.elapsedDayTime += dt
		m.tickTreatment(dt)
		m.checkRunning()
	case Transition:
		m.elapsedDayTime += dt
		if m.elapsedDayTime > TransitionTime {
			m.startNextDay()
		}
	case Limbo:
		m.advanceLimbo(dt)
	}

	m.sincePersist += dt
	if m.sincePersist >= m.persistInterval {
		m.sincePersist = math.Mod(m.sincePersist, m.persistInterval)
		m.persist()
	}
}

func (m *Manager) checkRunning() {
	if m.currentDay == 0 {
		m.checkTutorial()
		return
	}

	if m.elapsedDayTime > m.day.Duration {
		m.endDay()
		return
	}

	remaining := m.day.Duration - m.elapsedDayTime
	if remaining >= CountdownThreshold {
		return
	}
	sec := int(math.Ceil(remaining))
	if sec == m.lastTick {
		return
	}
	m.lastTick = sec
	if remaining < CriticalCountdown {
		m.play(CueCriticalTick)
	} else {
		m.play(CueNormalTick)
	}
}

// Pause freezes the simulation. Only Running and Limbo can be paused.
func (m *Manager) Pause() {
	if m.state != Running && m.state != Limbo {
		return
	}
	m.resumeState = m.state
	m.setState(Paused)
	m.flow.Stop()
}

// Resume returns to the state Pause interrupted.
func (m *Manager) Resume() {
	if m.state != Paused {
		return
	}
	m.setState(m.resumeState)
	if m.state == Running && m.delayRemaining <= 0 {
		m.flow.Start()
	}
}

func (m *Manager) setState(s State) {
	if s == m.state {
		return
	}
	m.log.WithFields(logrus.Fields{"from": m.state, "to": s, "day": m.currentDay}).Debug("state change")
	m.state = s
	m.persist()
}

func (m *Manager) CurrentState() State { return m.state }
func (m *Manager) IsComplete() bool    { return m.state == Complete }
func (m *Manager) CurrentDay() int     { return m.currentDay }
func (m *Manager) TotalDays() int      { return m.totalDays }

func (m *Manager) CurrentScore() float64 { return m.currentScore }
func (m *Manager) DayScore() float64     { return m.dayScore }

// RemainingDayTime is the time left in the current day, 0 outside Running
// days and for the tutorial.
func (m *Manager) RemainingDayTime() float64 {
	if m.currentDay == 0 || m.state.terminal() {
		return 0
	}
	return math.Max(0, m.day.Duration-m.elapsedDayTime)
}

func (m *Manager) ElapsedDayTime() float64   { return m.elapsedDayTime }
func (m *Manager) ElapsedTotalTime() float64 { return m.elapsedTotalTime }

// Plan is the shared, read-only plan the manager runs.
func (m *Manager) Plan() *config.SimulationPlan { return m.plan }

// ActiveImpairments returns the impairments currently applied.
func (m *Manager) ActiveImpairments() []impairment.Impairment {
	out := make([]impairment.Impairment, len(m.active))
	for i, a := range m.active {
		out[i] = a.imp
	}
	return out
}

// ImpairmentStrength is the current strength of kind after treatment, 0
// when it is not active.
func (m *Manager) ImpairmentStrength(kind impairment.Kind) float64 {
	for _, a := range m.active {
		if a.imp.Kind() == kind {
			return a.current
		}
	}
	return 0
}

// ActiveTreatment is today's treatment, nil when there is none.
func (m *Manager) ActiveTreatment() *treatment.Treatment {
	if m.currentDay == 0 {
		return nil
	}
	return m.day.Treatment
}
