package sim

import (
	"errors"
	"testing"

	"github.com/mcdsl/watercarry/internal/config"
	"github.com/mcdsl/watercarry/internal/impairment"
	"github.com/mcdsl/watercarry/internal/treatment"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// treatmentDay is a one-day plan with a shake impairment and the given
// treatment lines; instructions are off so no limbo is entered.
func treatmentDay(t *testing.T, extra ...string) *rig {
	t.Helper()
	ls := append([]string{
		"Simulation",
		"\tInstructions: disabled",
		"Day",
		"\tDuration: 01:00",
		"\tImpairment",
		"\t\tType: Physical/Shake",
		"\t\tStrength: 80%",
	}, extra...)
	r := newRig(t, parsePlan(t, ls...))
	r.passTutorial(t)
	require.Equal(t, Running, r.m.CurrentState())
	require.Equal(t, 1, r.m.CurrentDay())
	return r
}

var constantWait = []string{"\tWait", "\t\tC: 1", "\t\ta: 0", "\t\tb: 0", "\t\tc: 5"}

func TestWaitTreatment(t *testing.T) {
	r := treatmentDay(t, constantWait...)
	r.m.Advance(1)
	assert.Equal(t, treatment.Unavailable, r.m.CurrentTreatmentCost())
	assert.InDelta(t, 5.0, r.m.CurrentTreatmentWaitTime(), 1e-9)

	require.NoError(t, r.m.PurchaseTreatment(treatment.ObtainWait))
	assert.True(t, r.m.Waiting())
	assert.Equal(t, 1, r.carrier.detached)
	assert.False(t, r.carrier.pickup)
	assert.Equal(t, treatment.Unavailable, r.m.CurrentTreatmentWaitTime())
	assert.Equal(t, treatment.ObtainWait, r.m.ObtainType())
	assert.InDelta(t, 1.0, r.m.ActiveTreatment().ObtainTime(), 1e-9)

	r.m.Advance(3)
	assert.True(t, r.m.Waiting())
	assert.InDelta(t, 2.0, r.m.WaitRemaining(), 1e-9)
	assert.Len(t, r.m.ActiveImpairments(), 1)

	r.m.Advance(2.5)
	assert.False(t, r.m.Waiting())
	assert.True(t, r.carrier.pickup)
	assert.Empty(t, r.m.ActiveImpairments())
	assert.Equal(t, 1, r.shake.cleared)
	assert.Equal(t, "true", r.m.Snapshot().Effective)
}

func TestDayTimeoutCancelsWait(t *testing.T) {
	r := treatmentDay(t, "\tWait", "\t\tC: 1", "\t\ta: 0", "\t\tb: 0", "\t\tc: 500")
	require.NoError(t, r.m.PurchaseTreatment(treatment.ObtainWait))
	r.m.Advance(61)

	assert.Equal(t, Complete, r.m.CurrentState())
	assert.False(t, r.m.Waiting())
	assert.True(t, r.carrier.pickup)
	assert.Zero(t, r.audio.count(CueTakeMedicine), "a cancelled wait never takes effect")
	assert.Empty(t, r.shake.modified)
}

func TestPurchaseErrors(t *testing.T) {
	r := treatmentDay(t, "\tCost", "\t\tC: 1", "\t\ta: 0", "\t\tb: 0", "\t\tc: 10")

	assert.ErrorIs(t, r.m.PurchaseTreatment(treatment.ObtainWait), ErrOptionUnavailable)
	assert.ErrorIs(t, r.m.PurchaseTreatment(treatment.ObtainPay), ErrInsufficientFunds)

	r.m.TogglePayment(true)
	r.m.PayReward(12)
	require.NoError(t, r.m.PurchaseTreatment(treatment.ObtainPay))
	assert.ErrorIs(t, r.m.PurchaseTreatment(treatment.ObtainPay), ErrAlreadyObtained)
	assert.InDelta(t, 2.0, r.m.CurrentScore(), 1e-9)
	assert.InDelta(t, 2.0, r.m.DayScore(), 1e-9)
	assert.InDelta(t, 12.0, r.m.CumulativePayment(), 1e-9)

	r.m.Pause()
	assert.ErrorIs(t, r.m.PurchaseTreatment(treatment.ObtainPay), ErrNotRunning)
}

func TestPurchaseOutsideTreatmentDays(t *testing.T) {
	r := newRig(t, parsePlan(t, "Day", "\tDuration: 01:00"))
	assert.ErrorIs(t, r.m.PurchaseTreatment(treatment.ObtainPay), ErrNotRunning, "tutorial")

	r.passTutorial(t)
	assert.ErrorIs(t, r.m.PurchaseTreatment(treatment.ObtainPay), ErrNoTreatment)
}

func TestNegativeCostIsFree(t *testing.T) {
	// 1 * (0 - 1*T + 0) is negative once the day has started
	r := treatmentDay(t, "\tCost", "\t\tC: 1", "\t\ta: 0", "\t\tb: 1", "\t\tc: 0")
	r.m.Advance(10)
	assert.Zero(t, r.m.CurrentTreatmentCost())
	assert.InDelta(t, -10.0, r.m.ActiveTreatment().CurrentCost(10), 1e-9)

	require.NoError(t, r.m.PurchaseTreatment(treatment.ObtainPay))
	assert.Zero(t, r.m.CurrentScore())
	assert.Zero(t, r.m.TreatmentSpend())
}

func TestPartialEffectiveness(t *testing.T) {
	r := treatmentDay(t,
		"\tCost", "\t\tC: 1", "\t\ta: 0", "\t\tb: 0", "\t\tc: 0",
		"\tEffectiveness", "\t\tProbability: 100%", "\t\tEffect: 50%",
	)
	require.NoError(t, r.m.PurchaseTreatment(treatment.ObtainPay))
	assert.Equal(t, []float64{0.5}, r.shake.modified)
	assert.Len(t, r.m.ActiveImpairments(), 1)
	assert.InDelta(t, 0.4, r.m.ImpairmentStrength(impairment.Shake), 1e-9)
	assert.InDelta(t, 0.4, r.m.Snapshot().Shake, 1e-9)
}

func TestIneffectiveTreatmentKeepsImpairment(t *testing.T) {
	r := treatmentDay(t,
		"\tCost", "\t\tC: 1", "\t\ta: 0", "\t\tb: 0", "\t\tc: 0",
		"\tEffectiveness", "\t\tProbability: 0%",
	)
	require.NoError(t, r.m.PurchaseTreatment(treatment.ObtainPay))
	assert.False(t, r.m.ActiveTreatment().IsEffective())
	assert.Len(t, r.m.ActiveImpairments(), 1)
	assert.InDelta(t, 0.8, r.m.ImpairmentStrength(impairment.Shake), 1e-9)
	assert.Equal(t, "false", r.m.Snapshot().Effective)
}

func TestDelayPenaltyBlocksPayment(t *testing.T) {
	r := treatmentDay(t,
		"\tTreatment", "\t\tDelayProbability: 100%", "\t\tDelay: 00:05",
		"\tCost", "\t\tC: 1", "\t\ta: 0", "\t\tb: 0", "\t\tc: 0",
	)
	r.m.TogglePayment(true)
	require.NoError(t, r.m.PurchaseTreatment(treatment.ObtainPay))
	assert.InDelta(t, 5.0, r.m.DelayRemaining(), 1e-9)
	assert.False(t, r.flow.on)

	r.m.PayReward(3)
	assert.Zero(t, r.m.CurrentScore())

	r.m.Advance(5.5)
	assert.Zero(t, r.m.DelayRemaining())
	assert.True(t, r.flow.on)
	r.m.PayReward(3)
	assert.Equal(t, 3.0, r.m.CurrentScore())
}

func TestModifyImpairmentFactors(t *testing.T) {
	r := treatmentDay(t)
	r.m.ModifyImpairmentFactors(0)
	assert.Empty(t, r.shake.modified)

	r.m.ModifyImpairmentFactors(0.25)
	assert.InDelta(t, 0.6, r.m.ImpairmentStrength(impairment.Shake), 1e-9)

	r.m.ModifyImpairmentFactors(1)
	assert.Empty(t, r.m.ActiveImpairments())
	assert.Zero(t, r.m.ImpairmentStrength(impairment.Shake))
}

func TestMissingActuatorSkipsImpairment(t *testing.T) {
	plan := parsePlan(t, "Simulation", "\tInstructions: disabled", "Day", "\tDuration: 01:00",
		"\tImpairment", "\t\tType: Visual/Fog", "\t\tStrength: 50%")
	logger, hook := test.NewNullLogger()
	m := New(plan, Options{Logger: logger})
	m.TogglePayment(true)
	m.PayReward(15)
	m.Advance(0.1)
	m.Advance(TransitionTime + 0.5)
	require.Equal(t, Running, m.CurrentState())
	assert.Empty(t, m.ActiveImpairments())

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "impairment not applied" {
			warned = errors.Is(e.Data[logrus.ErrorKey].(error), impairment.ErrNoActuator)
		}
	}
	assert.True(t, warned)
}

func TestWaitOnlyDayEntersLimbo(t *testing.T) {
	ls := append([]string{"Day", "\tDuration: 01:00"}, constantWait...)
	r := newRig(t, parsePlan(t, ls...))
	r.passTutorial(t)
	require.Equal(t, Limbo, r.m.CurrentState())
	assert.Equal(t, config.TRWaitOnly, r.display.last())
	assert.Zero(t, r.audio.count(CueStartDay), "start cue is deferred")

	r.m.Advance(r.m.Plan().Instruction(config.TRWaitOnly).Duration + 0.1)
	assert.Equal(t, Running, r.m.CurrentState())
	assert.Equal(t, 1, r.audio.count(CueStartDay))
}
