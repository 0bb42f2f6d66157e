package config

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/mcdsl/watercarry/internal/impairment"
	"github.com/mcdsl/watercarry/internal/treatment"
)

// DefaultTutorialScore is the day-zero score threshold when the Tutorial
// block does not set one.
const DefaultTutorialScore = 15.0

// DayConfiguration is one simulated day. Day 0 is the tutorial: it has no
// duration and is passed by reaching a score threshold.
type DayConfiguration struct {
	DayNumber        int
	Duration         float64 // seconds
	Impairments      []impairment.Impairment
	Treatment        *treatment.Treatment // nil when the day offers none
	RewardMultiplier float64
}

// SimulationPlan is the parsed configuration. It is not mutated after
// Parse returns, apart from the Treatments' own obtain/outcome state.
type SimulationPlan struct {
	SimName             string
	Output              []string
	Description         string
	Scene               string
	SoundEnabled        bool
	InstructionsEnabled bool
	LowNauseaMode       bool
	ClaustrophobicMode  bool

	DayZeroUnimpairedThreshold float64
	DayZeroImpairedThreshold   float64
	DayZeroImpairments         []impairment.Impairment

	Tutorial DayConfiguration
	Days     []DayConfiguration // day 1..N

	// Instruction overrides in file order.
	Instructions *orderedmap.OrderedMap[string, Instruction]

	Fingerprint uint64 // xxh3 of the source text
}

func newPlan() *SimulationPlan {
	return &SimulationPlan{
		SoundEnabled:               true,
		InstructionsEnabled:        true,
		DayZeroUnimpairedThreshold: DefaultTutorialScore,
		DayZeroImpairedThreshold:   DefaultTutorialScore,
		DayZeroImpairments:         []impairment.Impairment{},
		Tutorial:                   DayConfiguration{Impairments: []impairment.Impairment{}, RewardMultiplier: 1},
		Instructions:               orderedmap.NewOrderedMap[string, Instruction](),
	}
}

// TotalDays excludes the tutorial.
func (p *SimulationPlan) TotalDays() int {
	if p == nil {
		return 0
	}
	return len(p.Days)
}

// Day returns day n; 0 is the tutorial.
func (p *SimulationPlan) Day(n int) (DayConfiguration, bool) {
	if p == nil || n < 0 || n > len(p.Days) {
		return DayConfiguration{}, false
	}
	if n == 0 {
		return p.Tutorial, true
	}
	return p.Days[n-1], true
}

// Instruction resolves key to the plan's override or the built-in text.
func (p *SimulationPlan) Instruction(key string) Instruction {
	if p != nil && p.Instructions != nil {
		if in, ok := p.Instructions.Get(key); ok {
			return in
		}
	}
	in, _ := DefaultInstruction(key)
	return in
}
