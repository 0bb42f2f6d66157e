package sim

import (
	"errors"
	"math"

	"github.com/mcdsl/watercarry/internal/config"
	"github.com/mcdsl/watercarry/internal/treatment"
	"github.com/sirupsen/logrus"
)

// CurrentTreatmentCost is what paying would charge right now, or
// treatment.Unavailable when there is nothing to buy.
func (m *Manager) CurrentTreatmentCost() float64 {
	tr := m.ActiveTreatment()
	if tr == nil || m.state.terminal() || !tr.HasPayOption() || tr.HasBeenObtained() {
		return treatment.Unavailable
	}
	return math.Max(0, tr.CurrentCost(m.elapsedDayTime))
}

// CurrentTreatmentWaitTime is how long waiting would take right now, or
// treatment.Unavailable.
func (m *Manager) CurrentTreatmentWaitTime() float64 {
	tr := m.ActiveTreatment()
	if tr == nil || m.state.terminal() || !tr.HasWaitOption() || tr.HasBeenObtained() {
		return treatment.Unavailable
	}
	return math.Max(0, tr.CurrentWaitTime(m.elapsedDayTime))
}

// PurchaseTreatment obtains today's treatment by paying or waiting.
func (m *Manager) PurchaseTreatment(kind treatment.ObtainType) error {
	if m.state != Running || m.currentDay == 0 {
		return ErrNotRunning
	}
	tr := m.day.Treatment
	if tr == nil {
		return ErrNoTreatment
	}
	if tr.HasBeenObtained() {
		return ErrAlreadyObtained
	}

	var cost, wait float64
	switch kind {
	case treatment.ObtainPay:
		if !tr.HasPayOption() {
			return ErrOptionUnavailable
		}
		cost = math.Max(0, tr.CurrentCost(m.elapsedDayTime))
		if m.currentScore < cost {
			return ErrInsufficientFunds
		}
	case treatment.ObtainWait:
		if !tr.HasWaitOption() {
			return ErrOptionUnavailable
		}
		wait = math.Max(0, tr.CurrentWaitTime(m.elapsedDayTime))
	default:
		return ErrOptionUnavailable
	}

	if err := tr.Obtain(m.elapsedDayTime); err != nil {
		if errors.Is(err, treatment.ErrAlreadyObtained) {
			return ErrAlreadyObtained
		}
		return err
	}
	m.DeterminePostTreatmentActions(kind, cost, wait)
	return nil
}

// DeterminePostTreatmentActions carries out an obtained treatment: paying
// charges cost and takes effect at once, waiting blocks the bucket for
// wait seconds first.
func (m *Manager) DeterminePostTreatmentActions(kind treatment.ObtainType, cost, wait float64) {
	if m.ActiveTreatment() == nil {
		m.log.Warn("post-treatment actions without a treatment")
		return
	}
	m.obtainType = kind
	m.display.ShowTreatment(false)
	m.log.WithFields(logrus.Fields{
		"day":  m.currentDay,
		"type": kind,
		"cost": cost,
		"wait": wait,
		"at":   m.elapsedDayTime,
	}).Info("treatment obtained")

	switch kind {
	case treatment.ObtainPay:
		m.currentScore -= cost
		m.dayScore -= cost
		m.treatmentSpend += cost
		m.play(CueTakeMedicine)
		m.treatmentTakesEffect()
	case treatment.ObtainWait:
		m.carrier.Detach()
		m.carrier.SetPickupEnabled(false)
		m.waiting = true
		m.waitRemaining = wait
		if m.plan.InstructionsEnabled {
			m.display.ShowInstruction(m.plan.Instruction(config.TRWaiting))
		}
		if wait <= 0 {
			m.finishWait()
		}
	}
}

// tickTreatment counts down the delay penalty and the wait.
func (m *Manager) tickTreatment(dt float64) {
	if m.delayRemaining > 0 {
		m.delayRemaining -= dt
		if m.delayRemaining <= 0 {
			m.delayRemaining = 0
			m.flow.Start()
			m.log.WithField("day", m.currentDay).Info("delay penalty over")
		}
	}
	if m.waiting {
		m.waitRemaining -= dt
		if m.waitRemaining <= 0 {
			m.finishWait()
		}
	}
}

func (m *Manager) finishWait() {
	m.waiting = false
	m.waitRemaining = 0
	m.carrier.SetPickupEnabled(true)
	m.display.ClearInstruction()
	m.play(CueTakeMedicine)
	m.treatmentTakesEffect()
}

// cancelTreatmentTimers force-clears a pending wait and delay when the
// day times out. A cancelled wait never takes effect.
func (m *Manager) cancelTreatmentTimers() {
	if m.waiting {
		m.log.WithField("day", m.currentDay).Info("treatment wait cancelled by day end")
		m.waiting = false
		m.waitRemaining = 0
		m.carrier.SetPickupEnabled(true)
		m.display.ClearInstruction()
	}
	m.delayRemaining = 0
}

func (m *Manager) treatmentTakesEffect() {
	tr := m.day.Treatment
	logger := m.log.WithField("day", m.currentDay)

	if tr.IsEffective() {
		logger.WithField("effectiveness", tr.Effectiveness()).Info("treatment effective")
		m.ModifyImpairmentFactors(tr.Effectiveness())
	} else {
		logger.Info("treatment ineffective")
	}
	if tr.CausesDeath() {
		logger.Warn("treatment death penalty drawn")
	}
	if tr.CausesDelay() && tr.DelayPenaltyAmount() > 0 {
		m.delayRemaining = tr.DelayPenaltyAmount()
		m.flow.Stop()
		logger.WithField("seconds", m.delayRemaining).Info("delay penalty started")
	}
}

// ModifyImpairmentFactors removes factor of every active impairment's
// strength. factor >= 1 clears them all.
func (m *Manager) ModifyImpairmentFactors(factor float64) {
	if factor <= 0 {
		return
	}
	if factor >= 1 {
		m.clearImpairments()
		return
	}
	for i := range m.active {
		a := &m.active[i]
		if err := a.imp.Modify(m.act, factor); err != nil {
			m.log.WithError(err).WithField("impairment", a.imp.String()).Warn("impairment not modified")
			continue
		}
		a.current *= 1 - factor
	}
}

func (m *Manager) Waiting() bool                    { return m.waiting }
func (m *Manager) WaitRemaining() float64           { return m.waitRemaining }
func (m *Manager) DelayRemaining() float64          { return m.delayRemaining }
func (m *Manager) TreatmentSpend() float64          { return m.treatmentSpend }
func (m *Manager) ObtainType() treatment.ObtainType { return m.obtainType }
