package sim

import (
	"math"
	"testing"

	"github.com/mcdsl/watercarry/internal/config"
	"github.com/mcdsl/watercarry/internal/impairment"
	"github.com/mcdsl/watercarry/internal/treatment"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutDaysIsError(t *testing.T) {
	for name, plan := range map[string]*config.SimulationPlan{
		"nil plan": nil,
		"no days":  parsePlan(t, "Simulation", "\tName: empty", "Tutorial", "\tScore: 5"),
	} {
		r := newRig(t, plan)
		require.Equal(t, Error, r.m.CurrentState(), name)

		r.m.TogglePayment(true)
		r.m.PayReward(100)
		r.m.IncreasePayload(3)
		r.m.Advance(50)
		r.m.Pause()
		assert.Equal(t, Error, r.m.CurrentState(), name)
		assert.Zero(t, r.m.CurrentScore(), name)
		assert.Zero(t, r.m.ElapsedTotalTime(), name)
		assert.Zero(t, r.m.CurrentPayload(), name)
		assert.False(t, r.m.IsComplete(), name)
		assert.Equal(t, logrus.ErrorLevel, r.hook.LastEntry().Level, name)
	}
}

func TestPayRewardAccounting(t *testing.T) {
	r := newRig(t, parsePlan(t, "Day", "\tDuration: 02:00"))
	require.Equal(t, Running, r.m.CurrentState())

	r.m.TogglePayment(true)
	for i := 0; i < 3; i++ {
		r.m.PayReward(5)
	}
	assert.Equal(t, 15.0, r.m.CurrentScore())
	assert.Equal(t, 15.0, r.m.DayScore())
	assert.Equal(t, 15.0, r.m.CumulativePayment())

	r.m.TogglePayment(false)
	r.m.PayReward(5)
	assert.Equal(t, 15.0, r.m.CurrentScore())
	assert.Equal(t, 15.0, r.m.DayScore())
	assert.Equal(t, 15.0, r.m.CumulativePayment())
}

func TestPayRewardOnlyWhileRunning(t *testing.T) {
	r := newRig(t, parsePlan(t, "Day", "\tDuration: 02:00"))
	r.m.TogglePayment(true)
	r.m.Pause()
	r.m.PayReward(5)
	assert.Zero(t, r.m.CurrentScore())
}

func TestDayTransitionBoundary(t *testing.T) {
	r := newRig(t, parsePlan(t, "Day", "\tDuration: 02:00", "Day", "\tDuration: 02:00"))
	r.passTutorial(t)
	require.Equal(t, Running, r.m.CurrentState())
	require.Equal(t, 1, r.m.CurrentDay())

	r.m.Advance(120)
	assert.Equal(t, Running, r.m.CurrentState(), "not past the duration yet")
	r.m.Advance(0.01)
	assert.Equal(t, Transition, r.m.CurrentState())

	r.m.Advance(TransitionTime + 0.5)
	require.Equal(t, 2, r.m.CurrentDay())
	r.m.Advance(120.01)
	assert.Equal(t, Complete, r.m.CurrentState())
	assert.True(t, r.m.IsComplete())
	assert.Equal(t, 1, r.audio.count(CueSimComplete))
	assert.Equal(t, 2, r.audio.count(CueDayComplete))

	// terminal
	r.m.Advance(100)
	assert.Equal(t, Complete, r.m.CurrentState())
	assert.Equal(t, 2, r.m.CurrentDay())
}

type step struct {
	state State
	day   int
}

func stateTrail(records []Record) []step {
	var out []step
	for _, rec := range records {
		s := step{rec.State, rec.Day}
		if len(out) == 0 || out[len(out)-1] != s {
			out = append(out, s)
		}
	}
	return out
}

func TestEndToEndTwoDays(t *testing.T) {
	plan := parsePlan(t,
		"Simulation",
		"\tName: e2e",
		"Day",
		"\tDuration: 01:00",
		"Day",
		"\tDuration: 01:00",
		"\tImpairment",
		"\t\tType: Physical/Shake",
		"\t\tStrength: 50%",
		"\tCost",
		"\t\tC: 1",
		"\t\ta: 0",
		"\t\tb: 0",
		"\t\tc: 10",
	)
	r := newRig(t, plan)

	r.passTutorial(t)
	require.Equal(t, Running, r.m.CurrentState())
	require.Equal(t, 1, r.m.CurrentDay())
	assert.Empty(t, r.m.ActiveImpairments())
	assert.Equal(t, treatment.Unavailable, r.m.CurrentTreatmentCost())
	assert.Zero(t, r.m.CurrentScore(), "tutorial earnings do not carry over")

	r.m.TogglePayment(true)
	r.m.PayReward(20)
	r.m.Advance(60.5)
	require.Equal(t, Transition, r.m.CurrentState())

	r.m.Advance(TransitionTime + 0.5)
	require.Equal(t, 2, r.m.CurrentDay())
	require.Equal(t, Limbo, r.m.CurrentState(), "pay-only days are explained first")
	assert.Equal(t, config.TRPayOnly, r.display.last())
	require.Len(t, r.m.ActiveImpairments(), 1)
	assert.Equal(t, impairment.Shake, r.m.ActiveImpairments()[0].Kind())
	assert.Equal(t, []float64{0.5}, r.shake.applied)

	r.m.Advance(plan.Instruction(config.TRPayOnly).Duration + 0.5)
	require.Equal(t, Running, r.m.CurrentState())
	assert.True(t, r.display.treatment)
	assert.InDelta(t, 10.0, r.m.CurrentTreatmentCost(), 1e-9)
	assert.Equal(t, treatment.Unavailable, r.m.CurrentTreatmentWaitTime())

	require.NoError(t, r.m.PurchaseTreatment(treatment.ObtainPay))
	assert.True(t, r.m.ActiveTreatment().IsEffective())
	assert.Empty(t, r.m.ActiveImpairments())
	assert.Equal(t, 1, r.shake.cleared)
	assert.InDelta(t, 10.0, r.m.CurrentScore(), 1e-9)
	assert.InDelta(t, 10.0, r.m.TreatmentSpend(), 1e-9)
	assert.Equal(t, 1, r.audio.count(CueTakeMedicine))

	r.m.Advance(60.5)
	assert.Equal(t, Complete, r.m.CurrentState())

	assert.Equal(t, []step{
		{Running, 0},
		{Transition, 0},
		{Running, 1},
		{Transition, 1},
		{Limbo, 2},
		{Running, 2},
		{Complete, 2},
	}, stateTrail(r.persister.records))
}

func TestPayloadNeverNegative(t *testing.T) {
	r := newRig(t, parsePlan(t, "Day", "\tDuration: 01:00"))
	r.m.IncreasePayload(2)
	for i := 0; i < 5; i++ {
		r.m.DecreasePayload(1)
		assert.GreaterOrEqual(t, r.m.CurrentPayload(), 0)
	}
	assert.Zero(t, r.m.CurrentPayload())
	assert.Equal(t, 2, r.m.Snapshot().CumulativePayload)
}

func TestRegisterDeliveryPaysBallValue(t *testing.T) {
	r := newRig(t, parsePlan(t, "Day", "\tDuration: 01:00", "\tBallValue: 0.5", "Day", "\tDuration: 01:00"))
	r.passTutorial(t)

	r.m.IncreasePayload(10)
	r.m.TogglePayment(true)
	r.m.RegisterDelivery(4)
	r.m.RegisterSpill()

	snap := r.m.Snapshot()
	assert.Equal(t, 6, snap.Payload)
	assert.Equal(t, 4, snap.Delivered)
	assert.Equal(t, 4, snap.DailyDelivered)
	assert.Equal(t, 1, snap.Spilled)
	assert.InDelta(t, 2.0, r.m.CurrentScore(), 1e-9)

	r.m.Advance(61)
	r.m.Advance(TransitionTime + 0.5)
	snap = r.m.Snapshot()
	assert.Zero(t, snap.DailyDelivered)
	assert.Zero(t, snap.DailySpilled)
	assert.Equal(t, 4, snap.Delivered)
	assert.Zero(t, snap.Payload, "carried water is dropped between days")
	assert.False(t, snap.PaymentEnabled)
}

func TestCountdownCadence(t *testing.T) {
	r := newRig(t, parsePlan(t, "Day", "\tDuration: 00:30"))
	r.passTutorial(t)
	require.Equal(t, 1, r.m.CurrentDay())

	r.m.Advance(19.5)
	assert.Zero(t, r.audio.count(CueNormalTick))
	for r.m.CurrentState() == Running {
		r.m.Advance(0.25)
	}
	// one cue per whole second: 10..5 normal, 4..0 critical
	assert.Equal(t, 6, r.audio.count(CueNormalTick))
	assert.Equal(t, 5, r.audio.count(CueCriticalTick))
	assert.Equal(t, Complete, r.m.CurrentState())
}

func TestSoundDisabledSilencesCues(t *testing.T) {
	r := newRig(t, parsePlan(t, "Simulation", "\tSound: disabled", "Day", "\tDuration: 00:30"))
	r.passTutorial(t)
	r.m.Advance(31)
	assert.Empty(t, r.audio.cues)
	assert.Equal(t, Complete, r.m.CurrentState())
}

func TestPauseFreezes(t *testing.T) {
	r := newRig(t, parsePlan(t, "Day", "\tDuration: 01:00"))
	r.passTutorial(t)
	r.m.Advance(5)
	day, total := r.m.ElapsedDayTime(), r.m.ElapsedTotalTime()
	records := len(r.persister.records)

	r.m.Pause()
	require.Equal(t, Paused, r.m.CurrentState())
	assert.False(t, r.flow.on)
	r.m.Advance(500)
	assert.Equal(t, day, r.m.ElapsedDayTime())
	assert.Equal(t, total, r.m.ElapsedTotalTime())
	assert.Equal(t, records+1, len(r.persister.records), "only the state change is persisted")

	r.m.Resume()
	assert.Equal(t, Running, r.m.CurrentState())
	assert.True(t, r.flow.on)
	r.m.Resume()
	assert.Equal(t, Running, r.m.CurrentState())
}

func TestPauseInTransitionIgnored(t *testing.T) {
	r := newRig(t, parsePlan(t, "Day", "\tDuration: 01:00"))
	r.m.TogglePayment(true)
	r.m.PayReward(15)
	r.m.Advance(0.1)
	require.Equal(t, Transition, r.m.CurrentState())
	r.m.Pause()
	assert.Equal(t, Transition, r.m.CurrentState())
}

func TestTutorialImpairedPhase(t *testing.T) {
	plan := parsePlan(t,
		"Tutorial",
		"\tScore: 5",
		"\tImpairedScore: 3",
		"\tImpairment",
		"\t\tType: Visual/Fog",
		"\t\tStrength: 40%",
		"Day",
		"\tDuration: 01:00",
	)
	r := newRig(t, plan)
	r.m.TogglePayment(true)
	r.m.PayReward(5)
	r.m.Advance(0.1)

	require.Equal(t, Limbo, r.m.CurrentState())
	assert.True(t, r.m.TutorialImpaired())
	assert.Zero(t, r.m.CurrentScore())
	assert.Equal(t, []float64{0.4}, r.fog.applied)
	assert.Equal(t, 3, r.m.LimboQueue())
	assert.Equal(t, config.DZImpStartFog, r.display.last())

	r.m.PayReward(10)
	assert.Zero(t, r.m.CurrentScore(), "no payment in limbo")

	r.m.Advance(6.1)
	assert.Equal(t, 2, r.m.LimboQueue())
	assert.Equal(t, config.DZImpExplainGeneric, r.display.last())
	r.m.Advance(8)
	assert.Equal(t, 1, r.m.LimboQueue())
	assert.Equal(t, config.DZImpObjective, r.display.last())
	r.m.Advance(8)
	require.Equal(t, Running, r.m.CurrentState())
	assert.Equal(t, 0, r.m.CurrentDay())
	assert.True(t, r.flow.on)

	r.m.PayReward(3)
	r.m.Advance(0.1)
	assert.Equal(t, Transition, r.m.CurrentState())
	assert.Equal(t, 1, r.fog.cleared)
	assert.Empty(t, r.m.ActiveImpairments())
}

func TestTutorialWithoutInstructionsSkipsLimbo(t *testing.T) {
	plan := parsePlan(t,
		"Simulation",
		"\tInstructions: disabled",
		"Tutorial",
		"\tImpairment",
		"\t\tType: Physical/Shake",
		"\t\tStrength: 20%",
		"Day",
		"\tDuration: 01:00",
	)
	r := newRig(t, plan)
	r.m.TogglePayment(true)
	r.m.PayReward(15)
	r.m.Advance(0.1)
	assert.Equal(t, Running, r.m.CurrentState())
	assert.True(t, r.m.TutorialImpaired())
	assert.Empty(t, r.display.shown)
}

func TestTutorialSteps(t *testing.T) {
	r := newRig(t, parsePlan(t, "Day", "\tDuration: 01:00"))
	assert.Equal(t, StepLocateBucket, r.m.TutorialStep())
	assert.Equal(t, config.DZLocateBucket, r.display.last())

	require.NoError(t, r.m.AdvanceTutorialStep())
	assert.Equal(t, StepHoldBucket, r.m.TutorialStep())
	assert.ErrorIs(t, r.m.AdvanceTutorialStep(StepGoToSink), ErrTutorialStep)
	require.NoError(t, r.m.AdvanceTutorialStep(StepFillBucket))
	require.NoError(t, r.m.AdvanceTutorialStep(StepGoToSink))
	require.NoError(t, r.m.AdvanceTutorialStep(StepPourBucket))
	assert.Equal(t, config.DZPourOutBucket, r.display.last())

	r.m.TogglePayment(true)
	r.m.PayReward(1)
	assert.Equal(t, StepObjective, r.m.TutorialStep())
	assert.Equal(t, config.DZObjective, r.display.last())
	require.NoError(t, r.m.AdvanceTutorialStep())
	assert.Equal(t, StepObjective, r.m.TutorialStep())

	step, ok := ParseTutorialStep("GO_TO_SINK")
	assert.True(t, ok)
	assert.Equal(t, StepGoToSink, step)
	_, ok = ParseTutorialStep("DANCE")
	assert.False(t, ok)
}

func TestPersistCadenceAndFailures(t *testing.T) {
	r := newRig(t, parsePlan(t, "Day", "\tDuration: 01:00"))
	initial := len(r.persister.records)
	require.Equal(t, 1, initial)

	for i := 0; i < 10; i++ {
		r.m.Advance(0.25)
	}
	assert.Len(t, r.persister.records, initial+2)
	assert.Equal(t, "test-session", r.persister.records[1].SessionID)

	r.persister.err = errDisk
	r.m.Advance(1)
	assert.Equal(t, Running, r.m.CurrentState())
	require.NotNil(t, r.hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, r.hook.LastEntry().Level)
	assert.ErrorIs(t, r.hook.LastEntry().Data[logrus.ErrorKey].(error), errDisk)
}

func TestNonFiniteTickIgnored(t *testing.T) {
	r := newRig(t, parsePlan(t, "Day", "\tDuration: 01:00"))
	initial := len(r.persister.records)

	r.m.Advance(math.Inf(1))
	r.m.Advance(math.NaN())
	r.m.Advance(math.Inf(-1))
	assert.Equal(t, 0.0, r.m.ElapsedTotalTime())
	assert.Len(t, r.persister.records, initial)

	for i := 0; i < 3; i++ {
		r.m.Advance(1)
	}
	assert.Equal(t, 3.0, r.m.ElapsedTotalTime())
	assert.Len(t, r.persister.records, initial+3)
}

func TestRecordValuesMatchColumns(t *testing.T) {
	r := newRig(t, parsePlan(t, "Day", "\tDuration: 01:00"))
	rec := r.m.Snapshot()
	assert.Len(t, rec.Values(), len(Columns()))
	assert.Equal(t, "RUNNING", rec.Values()[3])
	assert.Equal(t, "LOCATE_BUCKET", rec.Values()[17])
}
