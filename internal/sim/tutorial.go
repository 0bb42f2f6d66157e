package sim

import (
	"github.com/mcdsl/watercarry/internal/config"
	"github.com/mcdsl/watercarry/internal/impairment"
)

// checkTutorial gates day zero on score. The unimpaired phase is followed
// by an impaired phase when the plan lists day-zero impairments.
func (m *Manager) checkTutorial() {
	if !m.tutorialImpaired {
		if m.currentScore < m.plan.DayZeroUnimpairedThreshold {
			return
		}
		if len(m.plan.DayZeroImpairments) > 0 {
			m.beginImpairedTutorial()
			return
		}
	} else if m.currentScore < m.plan.DayZeroImpairedThreshold {
		return
	}
	m.endTutorial()
}

func (m *Manager) beginImpairedTutorial() {
	m.log.Info("tutorial: unimpaired phase passed")
	m.tutorialImpaired = true
	m.currentScore = 0
	m.resetDayCounters()
	m.applyImpairments(m.plan.DayZeroImpairments)
	m.flow.Stop()
	m.enterLimbo(func() {
		m.setState(Running)
		m.flow.Start()
	}, impairmentIntro(m.plan.DayZeroImpairments)...)
}

func (m *Manager) endTutorial() {
	m.log.Info("tutorial complete")
	m.clearImpairments()
	m.currentScore = 0
	m.resetDayCounters()
	m.flow.Stop()
	m.display.ClearInstruction()
	m.enterTransition()
}

// impairmentIntro lists the instructions that introduce imps.
func impairmentIntro(imps []impairment.Impairment) []string {
	var fog, shake, other bool
	for _, imp := range imps {
		switch imp.Kind() {
		case impairment.Fog:
			fog = true
		case impairment.Shake:
			shake = true
		default:
			other = true
		}
	}
	var keys []string
	if fog {
		keys = append(keys, config.DZImpStartFog)
	}
	if shake {
		keys = append(keys, config.DZImpStartShake, config.DZImpExplainShake)
	}
	if other {
		keys = append(keys, config.DZImpStartGeneric)
	}
	if fog || other {
		keys = append(keys, config.DZImpExplainGeneric)
	}
	return append(keys, config.DZImpObjective)
}

// AdvanceTutorialStep moves the walkthrough on by one step. With a step
// argument it only advances when that step is the next one.
func (m *Manager) AdvanceTutorialStep(step ...TutorialStep) error {
	if m.currentDay != 0 || m.state != Running {
		return ErrNotRunning
	}
	if m.tutorialStep >= StepObjective {
		return nil
	}
	next := m.tutorialStep + 1
	if len(step) > 0 && step[0] != next {
		return ErrTutorialStep
	}
	m.tutorialStep = next
	m.showStep()
	return nil
}

func (m *Manager) TutorialStep() TutorialStep { return m.tutorialStep }
func (m *Manager) TutorialImpaired() bool     { return m.tutorialImpaired }

func (m *Manager) showStep() {
	if !m.plan.InstructionsEnabled {
		return
	}
	m.display.ShowInstruction(m.plan.Instruction(m.tutorialStep.Instruction()))
}
