package economics

import (
	"errors"
	"math"

	"github.com/mcdsl/watercarry/internal/config"
	"github.com/mcdsl/watercarry/internal/treatment"
)

// MaxSamples bounds the points one Schedule call may produce.
const MaxSamples = 100_000

var (
	ErrStep    = errors.New("step must be > 0")
	ErrSamples = errors.New("step too small for the day, too many samples")
)

// Point is a curve sampled at day time T. Value is what the participant
// is charged (cost) or served (wait); Raw is the unclamped curve.
type Point struct {
	T     float64 `json:"t"`
	Value float64 `json:"value"`
	Raw   float64 `json:"raw"`
}

// Schedule samples c every step seconds from 0 to duration inclusive.
func Schedule(c treatment.Curve, duration, step float64) ([]Point, error) {
	if step <= 0 {
		return nil, ErrStep
	}
	if !c.Available() || duration < 0 {
		return nil, nil
	}
	ratio := math.Floor(duration / step)
	if math.IsInf(ratio, 0) || math.IsNaN(ratio) || ratio+1 > MaxSamples {
		return nil, ErrSamples
	}
	n := int(ratio) + 1
	out := make([]Point, 0, n+1)
	for i := 0; i < n; i++ {
		t := float64(i) * step
		raw := c.At(t)
		out = append(out, Point{T: t, Value: math.Max(0, raw), Raw: raw})
	}
	if last := out[len(out)-1].T; last < duration {
		raw := c.At(duration)
		out = append(out, Point{T: duration, Value: math.Max(0, raw), Raw: raw})
	}
	return out, nil
}

// Cheapest returns the lowest-valued point, the earliest on ties.
func Cheapest(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	best := points[0]
	for _, p := range points[1:] {
		if p.Value < best.Value {
			best = p
		}
	}
	return best, true
}

// Dearest returns the highest-valued point, the earliest on ties.
func Dearest(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	best := points[0]
	for _, p := range points[1:] {
		if p.Value > best.Value {
			best = p
		}
	}
	return best, true
}

// FirstAffordable returns the earliest point whose value fits budget.
func FirstAffordable(points []Point, budget float64) (Point, bool) {
	for _, p := range points {
		if p.Value <= budget {
			return p, true
		}
	}
	return Point{}, false
}

// CurveReport describes one treatment option over a day.
type CurveReport struct {
	Curve    treatment.Curve `json:"curve"`
	Points   []Point         `json:"points"`
	Cheapest Point           `json:"cheapest"`
	Dearest  Point           `json:"dearest"`
}

// Report is the economics of one day's treatment.
type Report struct {
	Day      int              `json:"day"`
	Duration float64          `json:"duration"`
	Pay      *CurveReport     `json:"pay,omitempty"`
	Wait     *CurveReport     `json:"wait,omitempty"`
	Effect   map[string]Stats `json:"effect,omitempty"`
	Delay    *Stats           `json:"delay,omitempty"`
}

// ReportOptions tunes DayReport.
type ReportOptions struct {
	Step   float64 // seconds between samples
	Trials int     // Monte-Carlo trials per impairment
	RNG    treatment.RandomSource
}

// DayReport samples the day's cost and wait curves and estimates what the
// treatment leaves of each impairment.
func DayReport(day config.DayConfiguration, o ReportOptions) (Report, error) {
	r := Report{Day: day.DayNumber, Duration: day.Duration}
	tr := day.Treatment
	if tr == nil {
		return r, nil
	}

	curve := func(c treatment.Curve) (*CurveReport, error) {
		pts, err := Schedule(c, day.Duration, o.Step)
		if err != nil || len(pts) == 0 {
			return nil, err
		}
		lo, _ := Cheapest(pts)
		hi, _ := Dearest(pts)
		return &CurveReport{Curve: c, Points: pts, Cheapest: lo, Dearest: hi}, nil
	}
	var err error
	if r.Pay, err = curve(tr.CostCurve()); err != nil {
		return Report{}, err
	}
	if r.Wait, err = curve(tr.WaitCurve()); err != nil {
		return Report{}, err
	}

	if o.Trials <= 0 {
		return r, nil
	}
	params := tr.Params()
	if len(day.Impairments) > 0 {
		r.Effect = make(map[string]Stats, len(day.Impairments))
		for _, imp := range day.Impairments {
			st, err := EstimateEffect(params, imp.Strength(), o.Trials, o.RNG)
			if err != nil {
				return Report{}, err
			}
			st.Samples = nil
			r.Effect[imp.Kind().String()] = st
		}
	}
	if params.DelayPenaltyProbability > 0 {
		st, err := RunMonteCarlo(params, 0, GoalDelaySeconds, o.Trials, o.RNG)
		if err != nil {
			return Report{}, err
		}
		st.Samples = nil
		r.Delay = &st
	}
	return r, nil
}
