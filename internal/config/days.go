package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcdsl/watercarry/internal/impairment"
	"github.com/mcdsl/watercarry/internal/treatment"
)

type block int

const (
	blockNone block = iota
	blockImpairment
	blockTreatment
	blockWait
	blockCost
	blockEffectiveness
)

var blockKeywords = map[string]block{
	kwImpairment:    blockImpairment,
	kwTreatment:     blockTreatment,
	kwWait:          blockWait,
	kwCost:          blockCost,
	kwEffectiveness: blockEffectiveness,
}

// coef is one curve coefficient as written: unset, a number, or "default".
type coef struct {
	set        bool
	useDefault bool
	v          float64
}

type curveSpec struct {
	C, A, B, Cst coef
}

// leading reports whether the curve was given a usable leading coefficient.
func (c curveSpec) leading() bool {
	return c.C.set && (c.C.useDefault || c.C.v != 0)
}

type pendingImpairment struct {
	no       int
	kind     string
	strength *float64
}

type optFloat struct {
	set bool
	v   float64
}

// dayAcc accumulates one day block until the next Day marker.
type dayAcc struct {
	no     int // line of the marker
	number int

	duration      float64
	ballValue     optFloat
	score         optFloat
	impairedScore optFloat

	impairments []pendingImpairment
	cost, wait  curveSpec

	certainty, probability, effect optFloat
	delayProb, delay, deathProb    optFloat
	sawTreatment                   bool
}

// parseConfig is the third pass over the flattened day list.
func (p *parser) parseConfig(lines []line, plan *SimulationPlan) error {
	var acc *dayAcc
	active := blockNone

	for _, l := range lines {
		if l.depth == 0 {
			if acc != nil {
				if err := p.finalize(acc, plan); err != nil {
					return err
				}
			}
			n, _ := strconv.Atoi(strings.TrimPrefix(l.text, kwDay+" "))
			acc = &dayAcc{no: l.no, number: n}
			active = blockNone
			continue
		}

		perr := func(err error) error { return &ParseError{Line: l.no, Text: l.text, Err: err} }
		key, value, hasValue := splitKV(l.text)

		switch l.depth {
		case 1:
			if b, ok := blockKeywords[key]; ok && value == "" {
				active = b
				switch b {
				case blockImpairment:
					acc.impairments = append(acc.impairments, pendingImpairment{no: l.no})
				case blockTreatment, blockEffectiveness:
					acc.sawTreatment = true
				}
				continue
			}
			active = blockNone
			if !hasValue {
				p.log.WithField("line", l.no).Warnf("config: ignoring %q in day %d", l.text, acc.number)
				continue
			}
			if err := p.dayField(acc, key, value); err != nil {
				return perr(err)
			}

		case 2:
			if active == blockNone {
				return perr(fmt.Errorf("%w: attribute without an enclosing block", ErrSyntax))
			}
			if !hasValue {
				return perr(fmt.Errorf("%w: want Key: Value", ErrSyntax))
			}
			if err := p.blockField(acc, active, l.no, key, value); err != nil {
				return perr(err)
			}

		default:
			return perr(fmt.Errorf("%w: nesting deeper than two levels", ErrSyntax))
		}
	}

	if acc != nil {
		return p.finalize(acc, plan)
	}
	return nil
}

func (p *parser) dayField(acc *dayAcc, key, value string) error {
	var err error
	switch key {
	case kwDuration:
		acc.duration, err = parseDuration(value)
	case kwBallValue:
		acc.ballValue.v, err = parseFloat(value)
		acc.ballValue.set = true
	case kwScore:
		acc.score.v, err = parseFloat(value)
		acc.score.set = true
	case kwImpairedScore:
		acc.impairedScore.v, err = parseFloat(value)
		acc.impairedScore.set = true
	default:
		p.log.Warnf("config: unknown key %q in day %d", key, acc.number)
	}
	return err
}

func (p *parser) blockField(acc *dayAcc, b block, no int, key, value string) error {
	pct := func(dst *optFloat) error {
		v, err := parsePercent(value)
		dst.v, dst.set = v, true
		return err
	}

	switch b {
	case blockImpairment:
		imp := &acc.impairments[len(acc.impairments)-1]
		switch key {
		case kwType:
			imp.kind = value
			return nil
		case kwStrength:
			v, err := parsePercent(value)
			imp.strength = &v
			return err
		}

	case blockTreatment:
		switch key {
		case kwCertainty:
			return pct(&acc.certainty)
		case kwDelayProbability:
			return pct(&acc.delayProb)
		case kwDeathProbability:
			return pct(&acc.deathProb)
		case kwDelay:
			v, err := parseSeconds(value)
			acc.delay = optFloat{set: true, v: v}
			return err
		}

	case blockCost, blockWait:
		spec := &acc.cost
		if b == blockWait {
			spec = &acc.wait
		}
		var dst *coef
		switch key {
		case kwCoefC:
			dst = &spec.C
		case kwCoefA:
			dst = &spec.A
		case kwCoefB:
			dst = &spec.B
		case kwCoefConst:
			dst = &spec.Cst
		}
		if dst != nil {
			*dst = coef{set: true}
			if strings.EqualFold(value, defaultValue) {
				dst.useDefault = true
				return nil
			}
			v, err := parseFloat(value)
			dst.v = v
			return err
		}

	case blockEffectiveness:
		switch key {
		case kwProbability:
			return pct(&acc.probability)
		case kwEffect:
			return pct(&acc.effect)
		}
	}

	p.log.WithField("line", no).Warnf("config: unknown attribute %q in day %d", key, acc.number)
	return nil
}

// finalize turns an accumulator into a DayConfiguration and appends it.
func (p *parser) finalize(acc *dayAcc, plan *SimulationPlan) error {
	perr := func(err error) error {
		return &ParseError{Line: acc.no, Text: fmt.Sprintf("%s %d", kwDay, acc.number), Err: err}
	}
	logger := p.log.WithField("day", acc.number)

	imps := make([]impairment.Impairment, 0, len(acc.impairments))
	for _, pi := range acc.impairments {
		if pi.kind == "" || pi.strength == nil {
			logger.WithField("line", pi.no).Warn("config: impairment without Type or Strength skipped")
			continue
		}
		kind, err := impairment.ParseKind(pi.kind)
		if err != nil {
			logger.WithField("line", pi.no).Warnf("config: %v; impairment skipped", err)
			continue
		}
		imp, err := impairment.New(kind, *pi.strength)
		if err != nil {
			return &ParseError{Line: pi.no, Text: pi.kind, Err: err}
		}
		imps = append(imps, imp)
	}

	mult := 1.0
	if acc.ballValue.set {
		mult = acc.ballValue.v
	}

	if acc.number == 0 {
		plan.Tutorial = DayConfiguration{Impairments: imps, RewardMultiplier: mult}
		plan.DayZeroImpairments = imps
		if acc.score.set {
			plan.DayZeroUnimpairedThreshold = acc.score.v
		}
		plan.DayZeroImpairedThreshold = plan.DayZeroUnimpairedThreshold
		if acc.impairedScore.set {
			plan.DayZeroImpairedThreshold = acc.impairedScore.v
		}
		return nil
	}

	day := DayConfiguration{
		DayNumber:        acc.number,
		Duration:         acc.duration,
		Impairments:      imps,
		RewardMultiplier: mult,
	}

	pay, wait := acc.cost.leading(), acc.wait.leading()
	switch {
	case pay || wait:
		tr, err := p.buildTreatment(acc, pay, wait)
		if err != nil {
			return perr(err)
		}
		day.Treatment = tr
	case acc.sawTreatment:
		logger.Warn("config: treatment has neither Cost nor Wait; day has no treatment")
	}

	plan.Days = append(plan.Days, day)
	return nil
}

func (p *parser) buildTreatment(acc *dayAcc, pay, wait bool) (*treatment.Treatment, error) {
	params := treatment.Params{
		Cost:                    treatment.NoneCurve(),
		Wait:                    treatment.NoneCurve(),
		EffectiveProbability:    1,
		Effectiveness:           1,
		DelayPenaltyProbability: acc.delayProb.v,
		DelayPenaltyAmount:      acc.delay.v,
		DeathPenaltyProbability: acc.deathProb.v,
		RNG:                     p.rng,
	}
	if acc.certainty.set {
		params.EffectiveProbability = acc.certainty.v
	}
	if acc.probability.set {
		params.EffectiveProbability = acc.probability.v
	}
	if acc.effect.set {
		params.Effectiveness = acc.effect.v
	}

	var err error
	if pay {
		if params.Cost, err = resolveCurve(acc.cost, acc.duration, acc.number); err != nil {
			return nil, err
		}
	}
	if wait {
		if params.Wait, err = resolveCurve(acc.wait, acc.duration, acc.number); err != nil {
			return nil, err
		}
	}
	return treatment.New(params)
}

// resolveCurve fills unset and "default" coefficients from the day:
// with ω the day length in minutes and D the day number, the default curve
// is C=1, a=1/ω, b=D, c=ω.
func resolveCurve(spec curveSpec, duration float64, dayNumber int) (treatment.Curve, error) {
	omega := duration / 60
	needsDefault := func(c coef) bool { return !c.set || c.useDefault }
	if (needsDefault(spec.A) || needsDefault(spec.Cst)) && omega <= 0 {
		return treatment.Curve{}, fmt.Errorf("%w: default coefficients need a Duration", ErrSyntax)
	}

	pick := func(c coef, def float64) float64 {
		if needsDefault(c) {
			return def
		}
		return c.v
	}
	out := treatment.Curve{
		C: pick(spec.C, 1),
		B: pick(spec.B, float64(dayNumber)),
	}
	if omega > 0 {
		out.A = pick(spec.A, 1/omega)
		out.Cst = pick(spec.Cst, omega)
	} else {
		out.A, out.Cst = spec.A.v, spec.Cst.v
	}
	return out, nil
}
