package sim

import (
	"github.com/mcdsl/watercarry/internal/config"
	"github.com/mcdsl/watercarry/internal/impairment"
	"github.com/sirupsen/logrus"
)

// endDay runs when a timed day expires.
func (m *Manager) endDay() {
	m.cancelTreatmentTimers()
	m.clearImpairments()
	m.display.ShowTreatment(false)
	m.flow.Stop()
	m.play(CueDayComplete)
	m.log.WithFields(logrus.Fields{
		"day":       m.currentDay,
		"day_score": m.dayScore,
		"score":     m.currentScore,
	}).Info("day complete")

	if m.currentDay >= m.totalDays {
		m.play(CueSimComplete)
		m.setState(Complete)
		m.log.WithField("score", m.currentScore).Info("simulation complete")
		return
	}
	m.enterTransition()
}

func (m *Manager) enterTransition() {
	m.elapsedDayTime = 0
	m.currentPayload = 0
	m.paymentEnabled = false
	m.carrier.Reset()
	m.setState(Transition)
}

// startNextDay loads the next day once the transition countdown is over.
func (m *Manager) startNextDay() {
	m.currentDay++
	if m.currentDay > m.totalDays {
		m.setState(Complete)
		return
	}
	m.day, _ = m.plan.Day(m.currentDay)
	m.elapsedDayTime = 0
	m.lastTick = -1
	m.obtainType = 0
	m.resetDayCounters()
	m.applyImpairments(m.day.Impairments)

	tr := m.day.Treatment
	m.display.ShowTreatment(tr != nil)
	if tr != nil {
		switch {
		case tr.HasPayOption() && !tr.HasWaitOption():
			m.enterLimbo(m.beginDay, config.TRPayOnly)
			return
		case tr.HasWaitOption() && !tr.HasPayOption():
			m.enterLimbo(m.beginDay, config.TRWaitOnly)
			return
		}
	}
	m.beginDay()
}

func (m *Manager) beginDay() {
	m.setState(Running)
	m.play(CueStartDay)
	m.flow.Start()
	m.play(CueWaterFlow)
	m.log.WithFields(logrus.Fields{
		"day":         m.currentDay,
		"duration":    m.day.Duration,
		"impairments": len(m.active),
		"treatment":   m.day.Treatment != nil,
	}).Info("day started")
}

func (m *Manager) resetDayCounters() {
	m.dayScore = 0
	m.dailyCumulativePayload = 0
	m.dailyCumulativeDelivered = 0
	m.todaySpilled = 0
}

func (m *Manager) applyImpairments(imps []impairment.Impairment) {
	for _, imp := range imps {
		if err := imp.Apply(m.act); err != nil {
			m.log.WithError(err).WithField("impairment", imp.String()).Warn("impairment not applied")
			continue
		}
		m.active = append(m.active, activeImpairment{imp: imp, current: imp.Strength()})
	}
}

func (m *Manager) clearImpairments() {
	for _, a := range m.active {
		if err := a.imp.Clear(m.act); err != nil {
			m.log.WithError(err).WithField("impairment", a.imp.String()).Warn("impairment not cleared")
		}
	}
	m.active = nil
}

func (m *Manager) play(c Cue) {
	if m.plan != nil && !m.plan.SoundEnabled {
		return
	}
	m.audio.Play(c)
}
