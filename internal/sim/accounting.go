package sim

// PayReward credits amount while payment is enabled and the simulation
// is running. A running delay penalty blocks payment.
func (m *Manager) PayReward(amount float64) {
	if !m.paymentEnabled || m.state != Running || m.delayRemaining > 0 {
		return
	}
	m.currentScore += amount
	m.dayScore += amount
	m.cumulativePayment += amount

	if m.currentDay == 0 && m.tutorialStep == StepPourBucket {
		if err := m.AdvanceTutorialStep(StepObjective); err != nil {
			m.log.WithError(err).Debug("tutorial step not advanced")
		}
	}
}

// TogglePayment is driven by the bucket entering or leaving the sink.
func (m *Manager) TogglePayment(enabled bool) {
	if m.state.terminal() {
		return
	}
	m.paymentEnabled = enabled
}

func (m *Manager) PaymentEnabled() bool { return m.paymentEnabled }

// IncreasePayload records n droplets entering the bucket.
func (m *Manager) IncreasePayload(n int) {
	if n <= 0 || m.state.terminal() {
		return
	}
	m.currentPayload += n
	m.cumulativePayload += n
	m.dailyCumulativePayload += n
}

// DecreasePayload records n droplets leaving the bucket. The payload
// never drops below zero.
func (m *Manager) DecreasePayload(n int) {
	if n <= 0 {
		return
	}
	m.currentPayload -= n
	if m.currentPayload < 0 {
		m.currentPayload = 0
	}
}

// RegisterSpill counts one droplet lost outside the sink.
func (m *Manager) RegisterSpill() {
	if m.state.terminal() {
		return
	}
	m.totalSpilled++
	m.todaySpilled++
}

// RegisterDelivery counts n droplets reaching the drain and pays for them
// at the day's ball value.
func (m *Manager) RegisterDelivery(n int) {
	if n <= 0 || m.state != Running {
		return
	}
	m.cumulativeDelivered += n
	m.dailyCumulativeDelivered += n
	m.DecreasePayload(n)
	m.PayReward(float64(n) * m.day.RewardMultiplier)
}

func (m *Manager) CurrentPayload() int        { return m.currentPayload }
func (m *Manager) CumulativePayment() float64 { return m.cumulativePayment }
