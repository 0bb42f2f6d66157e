package sim

import "github.com/mcdsl/watercarry/internal/config"

// limbo holds the instruction queue shown while the simulation waits.
type limbo struct {
	queue []config.Instruction
	shown float64
	done  func()
}

// enterLimbo shows the instructions for keys one after the other and then
// calls done. With instructions disabled done runs immediately.
func (m *Manager) enterLimbo(done func(), keys ...string) {
	if !m.plan.InstructionsEnabled || len(keys) == 0 {
		done()
		return
	}
	q := make([]config.Instruction, 0, len(keys))
	for _, k := range keys {
		q = append(q, m.plan.Instruction(k))
	}
	m.limbo = limbo{queue: q, done: done}
	m.display.ShowInstruction(q[0])
	m.setState(Limbo)
}

func (m *Manager) advanceLimbo(dt float64) {
	m.limbo.shown += dt
	for len(m.limbo.queue) > 0 && m.limbo.shown > m.limbo.queue[0].Duration {
		m.limbo.shown -= m.limbo.queue[0].Duration
		m.limbo.queue = m.limbo.queue[1:]
		if len(m.limbo.queue) > 0 {
			m.display.ShowInstruction(m.limbo.queue[0])
		}
	}
	if len(m.limbo.queue) > 0 {
		return
	}
	done := m.limbo.done
	m.limbo = limbo{}
	m.display.ClearInstruction()
	if done != nil {
		done()
	}
}

// LimboQueue is the number of instructions still to be shown.
func (m *Manager) LimboQueue() int { return len(m.limbo.queue) }
