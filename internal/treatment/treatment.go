package treatment

import (
	"errors"
	"fmt"
	"sync"
)

// None marks every coefficient of a curve whose option is not offered.
const None = -99.0

// Unavailable is what display helpers return when there is nothing to show.
const Unavailable = -1.0

const notObtained = -1.0

var (
	ErrAlreadyObtained = errors.New("treatment already obtained")
	ErrObtainTime      = errors.New("obtain time must be >= 0")
)

// ObtainType is how the participant acquired the treatment.
type ObtainType int

const (
	ObtainPay ObtainType = iota + 1
	ObtainWait
)

func (o ObtainType) String() string {
	switch o {
	case ObtainPay:
		return "pay"
	case ObtainWait:
		return "wait"
	default:
		return "none"
	}
}

// Curve is C * (c - b*T + (a*T)^2) over elapsed day seconds T.
type Curve struct {
	C, A, B, Cst float64
}

// NoneCurve is the sentinel for an unavailable option.
func NoneCurve() Curve {
	return Curve{C: None, A: None, B: None, Cst: None}
}

// Available reports whether all four coefficients are set.
func (c Curve) Available() bool {
	return c.C != None && c.A != None && c.B != None && c.Cst != None
}

// At evaluates the curve. No clamping is applied.
func (c Curve) At(t float64) float64 {
	at := c.A * t
	return c.C * (c.Cst - c.B*t + at*at)
}

// Params configures a Treatment. Probabilities are fractions in [0,1];
// DelayPenaltyAmount is in seconds.
type Params struct {
	Cost Curve
	Wait Curve

	EffectiveProbability    float64
	Effectiveness           float64
	DelayPenaltyProbability float64
	DelayPenaltyAmount      float64
	DeathPenaltyProbability float64

	RNG RandomSource
}

// Treatment is one day's offer to remove (part of) the impairment.
// It is immutable except for the obtain time and the memoised outcomes.
type Treatment struct {
	params Params
	rng    RandomSource

	mu         sync.RWMutex
	obtainTime float64

	effectiveOnce, deathOnce, delayOnce sync.Once
	effective, death, delay             bool
}

// New validates the probabilities in p and builds a Treatment.
func New(p Params) (*Treatment, error) {
	for name, v := range map[string]float64{
		"effective probability":     p.EffectiveProbability,
		"effectiveness":             p.Effectiveness,
		"delay penalty probability": p.DelayPenaltyProbability,
		"death penalty probability": p.DeathPenaltyProbability,
	} {
		if err := validateProb(v); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	if p.DelayPenaltyAmount < 0 {
		return nil, fmt.Errorf("delay penalty amount must be >= 0, got %v", p.DelayPenaltyAmount)
	}
	rng := p.RNG
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Treatment{params: p, rng: rng, obtainTime: notObtained}, nil
}

func (t *Treatment) HasPayOption() bool  { return t.params.Cost.Available() }
func (t *Treatment) HasWaitOption() bool { return t.params.Wait.Available() }

// CurrentCost evaluates the cost curve at elapsed day time sec.
// Callers check HasPayOption first.
func (t *Treatment) CurrentCost(sec float64) float64 {
	return t.params.Cost.At(sec)
}

// CurrentWaitTime evaluates the wait curve at elapsed day time sec.
func (t *Treatment) CurrentWaitTime(sec float64) float64 {
	return t.params.Wait.At(sec)
}

// DisplayCost is CurrentCost for UI polling: Unavailable once obtained or
// when no pay option exists.
func (t *Treatment) DisplayCost(sec float64) float64 {
	if !t.HasPayOption() || t.HasBeenObtained() {
		return Unavailable
	}
	return t.CurrentCost(sec)
}

func (t *Treatment) DisplayWaitTime(sec float64) float64 {
	if !t.HasWaitOption() || t.HasBeenObtained() {
		return Unavailable
	}
	return t.CurrentWaitTime(sec)
}

// Obtain records the acquisition time. Only the first call succeeds.
func (t *Treatment) Obtain(at float64) error {
	if at < 0 {
		return ErrObtainTime
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.obtainTime != notObtained {
		return ErrAlreadyObtained
	}
	t.obtainTime = at
	return nil
}

func (t *Treatment) HasBeenObtained() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.obtainTime != notObtained
}

// ObtainTime is -1 until Obtain succeeds.
func (t *Treatment) ObtainTime() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.obtainTime
}

// IsEffective draws once against EffectiveProbability and then keeps
// returning that outcome.
func (t *Treatment) IsEffective() bool {
	t.effectiveOnce.Do(func() {
		t.effective = t.roll(t.params.EffectiveProbability)
	})
	return t.effective
}

func (t *Treatment) CausesDeath() bool {
	t.deathOnce.Do(func() {
		t.death = t.roll(t.params.DeathPenaltyProbability)
	})
	return t.death
}

func (t *Treatment) CausesDelay() bool {
	t.delayOnce.Do(func() {
		t.delay = t.roll(t.params.DelayPenaltyProbability)
	})
	return t.delay
}

// probabilities were validated in New
func (t *Treatment) roll(p float64) bool {
	hit, _ := Roll(p, t.rng)
	return hit
}

func (t *Treatment) Effectiveness() float64           { return t.params.Effectiveness }
func (t *Treatment) EffectiveProbability() float64    { return t.params.EffectiveProbability }
func (t *Treatment) DelayPenaltyProbability() float64 { return t.params.DelayPenaltyProbability }
func (t *Treatment) DelayPenaltyAmount() float64      { return t.params.DelayPenaltyAmount }
func (t *Treatment) DeathPenaltyProbability() float64 { return t.params.DeathPenaltyProbability }

func (t *Treatment) CostCurve() Curve { return t.params.Cost }
func (t *Treatment) WaitCurve() Curve { return t.params.Wait }

// Params returns the construction parameters, e.g. to build fresh copies
// for estimation.
func (t *Treatment) Params() Params { return t.params }
