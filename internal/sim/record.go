package sim

import (
	"strconv"

	"github.com/mcdsl/watercarry/internal/impairment"
	"github.com/mcdsl/watercarry/internal/treatment"
)

// Record is one persisted row: the manager's state at a point in time.
type Record struct {
	SessionID  string
	GlobalTime float64
	Day        int
	State      State
	DayTime    float64

	TotalScore        float64
	DayScore          float64
	CumulativePayment float64
	TreatmentSpend    float64
	PaymentEnabled    bool

	Payload           int
	CumulativePayload int
	DailyPayload      int
	Delivered         int
	DailyDelivered    int
	Spilled           int
	DailySpilled      int

	TutorialStep TutorialStep

	// current strengths, 0 when inactive
	Fog          float64
	Shake        float64
	Gravity      float64
	SpeedPenalty float64

	TreatmentCost  float64
	TreatmentWait  float64
	ObtainType     treatment.ObtainType
	ObtainTime     float64
	Effective      string
	WaitRemaining  float64
	DelayRemaining float64
}

var recordColumns = []string{
	"session_id", "global_time", "day", "state", "day_time",
	"total_score", "day_score", "cumulative_payment", "treatment_spend", "payment_enabled",
	"payload", "cumulative_payload", "daily_payload", "delivered", "daily_delivered", "spilled", "daily_spilled",
	"tutorial_step",
	"fog", "shake", "gravity", "speed_penalty",
	"treatment_cost", "treatment_wait", "obtain_type", "obtain_time", "effective", "wait_remaining", "delay_remaining",
}

// Columns names the fields returned by Values, in order.
func Columns() []string {
	out := make([]string, len(recordColumns))
	copy(out, recordColumns)
	return out
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }

// Values renders the record as CSV fields matching Columns.
func (r Record) Values() []string {
	return []string{
		r.SessionID, ff(r.GlobalTime), strconv.Itoa(r.Day), r.State.String(), ff(r.DayTime),
		ff(r.TotalScore), ff(r.DayScore), ff(r.CumulativePayment), ff(r.TreatmentSpend), strconv.FormatBool(r.PaymentEnabled),
		strconv.Itoa(r.Payload), strconv.Itoa(r.CumulativePayload), strconv.Itoa(r.DailyPayload),
		strconv.Itoa(r.Delivered), strconv.Itoa(r.DailyDelivered), strconv.Itoa(r.Spilled), strconv.Itoa(r.DailySpilled),
		r.TutorialStep.String(),
		ff(r.Fog), ff(r.Shake), ff(r.Gravity), ff(r.SpeedPenalty),
		ff(r.TreatmentCost), ff(r.TreatmentWait), r.ObtainType.String(), ff(r.ObtainTime), r.Effective,
		ff(r.WaitRemaining), ff(r.DelayRemaining),
	}
}

// Snapshot captures the current state without side effects.
func (m *Manager) Snapshot() Record {
	r := Record{
		SessionID:         m.sessionID,
		GlobalTime:        m.elapsedTotalTime,
		Day:               m.currentDay,
		State:             m.state,
		DayTime:           m.elapsedDayTime,
		TotalScore:        m.currentScore,
		DayScore:          m.dayScore,
		CumulativePayment: m.cumulativePayment,
		TreatmentSpend:    m.treatmentSpend,
		PaymentEnabled:    m.paymentEnabled,
		Payload:           m.currentPayload,
		CumulativePayload: m.cumulativePayload,
		DailyPayload:      m.dailyCumulativePayload,
		Delivered:         m.cumulativeDelivered,
		DailyDelivered:    m.dailyCumulativeDelivered,
		Spilled:           m.totalSpilled,
		DailySpilled:      m.todaySpilled,
		TutorialStep:      m.tutorialStep,
		Fog:               m.ImpairmentStrength(impairment.Fog),
		Shake:             m.ImpairmentStrength(impairment.Shake),
		Gravity:           m.ImpairmentStrength(impairment.Gravity),
		SpeedPenalty:      m.ImpairmentStrength(impairment.SpeedPenalty),
		TreatmentCost:     m.CurrentTreatmentCost(),
		TreatmentWait:     m.CurrentTreatmentWaitTime(),
		ObtainType:        m.obtainType,
		ObtainTime:        treatment.Unavailable,
		WaitRemaining:     m.waitRemaining,
		DelayRemaining:    m.delayRemaining,
	}
	// outcomes are only drawn once the treatment is obtained
	if tr := m.ActiveTreatment(); tr != nil && tr.HasBeenObtained() {
		r.ObtainTime = tr.ObtainTime()
		if !m.waiting {
			r.Effective = strconv.FormatBool(tr.IsEffective())
		}
	}
	return r
}

func (m *Manager) persist() {
	if err := m.persister.Persist(m.Snapshot()); err != nil {
		m.log.WithError(err).Warn("persist failed")
	}
}
