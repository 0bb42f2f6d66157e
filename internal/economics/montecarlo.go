package economics

import (
	"errors"

	"github.com/mcdsl/watercarry/internal/treatment"
)

// TrialGoal selects what one trial measures.
type TrialGoal string

const (
	// impairment strength left after the treatment takes effect
	GoalRemainingStrength TrialGoal = "remaining_strength"
	// seconds of delay penalty served
	GoalDelaySeconds TrialGoal = "delay_seconds"
	// 1 when the death penalty is drawn, else 0
	GoalDeath TrialGoal = "death"
)

// MaxTrials bounds one Monte-Carlo run.
const MaxTrials = 1_000_000

var (
	ErrGoal   = errors.New("unknown trial goal")
	ErrTrials = errors.New("too many trials")
)

// simulateOne draws the outcomes of one fresh treatment.
func simulateOne(p treatment.Params, strength float64, goal TrialGoal) (float64, error) {
	tr, err := treatment.New(p)
	if err != nil {
		return 0, err
	}
	switch goal {
	case GoalRemainingStrength:
		if !tr.IsEffective() {
			return strength, nil
		}
		e := tr.Effectiveness()
		if e >= 1 {
			return 0, nil
		}
		return strength * (1 - e), nil
	case GoalDelaySeconds:
		if tr.CausesDelay() {
			return tr.DelayPenaltyAmount(), nil
		}
		return 0, nil
	case GoalDeath:
		if tr.CausesDeath() {
			return 1, nil
		}
		return 0, nil
	}
	return 0, ErrGoal
}

// RunMonteCarlo repeats trials against fresh copies of p, sharing rng
// between them, and summarizes the goal metric.
func RunMonteCarlo(p treatment.Params, strength float64, goal TrialGoal, trials int, rng treatment.RandomSource) (Stats, error) {
	if trials <= 0 {
		return Stats{}, nil
	}
	if trials > MaxTrials {
		return Stats{}, ErrTrials
	}
	if rng != nil {
		p.RNG = rng
	}
	samples := make([]float64, trials)
	for i := range samples {
		v, err := simulateOne(p, strength, goal)
		if err != nil {
			return Stats{}, err
		}
		samples[i] = v
	}
	return Summarize(samples), nil
}

// EstimateEffect is RunMonteCarlo for the remaining impairment strength.
func EstimateEffect(p treatment.Params, strength float64, trials int, rng treatment.RandomSource) (Stats, error) {
	return RunMonteCarlo(p, strength, GoalRemainingStrength, trials, rng)
}
