package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mcdsl/watercarry/internal/treatment"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
)

var (
	ErrSyntax   = errors.New("syntax error")
	ErrNumber   = errors.New("malformed number")
	ErrDuration = errors.New("malformed duration, want MM:SS")
	ErrPercent  = errors.New("malformed percentage")
)

// ParseError pins a configuration problem to its source line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config line %d: %v (%q)", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

type ParseOption func(*parser)

// WithLogger routes parser warnings (skipped keys, unknown impairment types).
func WithLogger(l *logrus.Logger) ParseOption {
	return func(p *parser) { p.log = l }
}

// WithRNG sets the random source shared by every treatment in the plan.
func WithRNG(rng treatment.RandomSource) ParseOption {
	return func(p *parser) { p.rng = rng }
}

type line struct {
	no    int
	depth int
	text  string
}

type parser struct {
	log *logrus.Logger
	rng treatment.RandomSource
}

// ParseFile reads and parses a configuration file.
func ParseFile(path string, opts ...ParseOption) (*SimulationPlan, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(string(b), opts...)
}

// Parse builds a SimulationPlan from configuration text. Any error aborts
// the whole parse; no partial plan is returned.
func Parse(text string, opts ...ParseOption) (*SimulationPlan, error) {
	p := &parser{log: logrus.StandardLogger()}
	for _, o := range opts {
		o(p)
	}

	sim, days, err := splitBlocks(text)
	if err != nil {
		return nil, err
	}
	plan := newPlan()
	plan.Fingerprint = xxh3.HashString(text)
	if err := p.parseSim(sim, plan); err != nil {
		return nil, err
	}
	if err := p.parseConfig(days, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// splitBlocks is the first pass: it strips comments, measures indentation
// and sorts lines into the simulation buffer and the flattened day list.
// Tutorial and Day headers become synthetic "Day n" markers.
func splitBlocks(text string) (sim, days []line, err error) {
	const (
		none = iota
		inSim
		inDays
	)
	section := none
	dayCount := 0

	for i, raw := range strings.Split(text, "\n") {
		no := i + 1
		if idx := strings.Index(raw, commentMarker); idx >= 0 {
			raw = raw[:idx]
		}
		raw = strings.TrimRight(raw, " \t\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		depth := 0
		for strings.HasPrefix(raw[depth:], indent) {
			depth++
		}
		content := strings.TrimSpace(raw[depth:])

		if depth == 0 {
			switch {
			case content == kwSimulation:
				section = inSim
			case content == kwTutorial:
				section = inDays
				days = append(days, line{no: no, text: kwDay + " 0"})
			case content == kwDay || strings.HasPrefix(content, kwDay+" "):
				section = inDays
				dayCount++
				days = append(days, line{no: no, text: fmt.Sprintf("%s %d", kwDay, dayCount)})
			default:
				return nil, nil, &ParseError{Line: no, Text: content, Err: fmt.Errorf("%w: unknown top-level keyword", ErrSyntax)}
			}
			continue
		}

		l := line{no: no, depth: depth, text: content}
		switch section {
		case inSim:
			sim = append(sim, l)
		case inDays:
			days = append(days, l)
		default:
			return nil, nil, &ParseError{Line: no, Text: content, Err: fmt.Errorf("%w: attribute outside of a block", ErrSyntax)}
		}
	}
	return sim, days, nil
}

func splitKV(s string) (key, value string, ok bool) {
	idx := strings.Index(s, separator)
	if idx < 0 {
		return strings.TrimSpace(s), "", false
	}
	return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:]), true
}

// parseSim is the second pass over the Simulation block.
func (p *parser) parseSim(lines []line, plan *SimulationPlan) error {
	for _, l := range lines {
		if l.depth != 1 {
			return &ParseError{Line: l.no, Text: l.text, Err: fmt.Errorf("%w: unexpected nesting in Simulation", ErrSyntax)}
		}
		key, value, ok := splitKV(l.text)
		if !ok {
			p.log.WithField("line", l.no).Warnf("config: ignoring %q in Simulation block", l.text)
			continue
		}
		var err error
		switch key {
		case kwName:
			plan.SimName = value
		case kwOutput:
			plan.Output = splitList(value)
		case kwDescription:
			plan.Description = value
		case kwScene:
			plan.Scene = value
		case kwInstructions:
			plan.InstructionsEnabled, err = parseToggle(value)
		case kwSound:
			plan.SoundEnabled, err = parseToggle(value)
		case kwLowNausea:
			plan.LowNauseaMode, err = parseToggle(value)
		case kwClaustrophobic:
			plan.ClaustrophobicMode, err = parseToggle(value)
		default:
			if !IsInstructionKey(key) {
				p.log.WithField("line", l.no).Warnf("config: unknown simulation key %q", key)
				continue
			}
			var in Instruction
			in, err = parseInstruction(key, value)
			if err == nil {
				plan.Instructions.Set(key, in)
			}
		}
		if err != nil {
			return &ParseError{Line: l.no, Text: l.text, Err: err}
		}
	}
	return nil
}

// parseInstruction reads "message,seconds"; the message itself may contain commas.
func parseInstruction(key, value string) (Instruction, error) {
	idx := strings.LastIndex(value, ",")
	if idx < 0 {
		return Instruction{}, fmt.Errorf("%w: instruction wants message,duration", ErrSyntax)
	}
	d, err := parseFloat(value[idx+1:])
	if err != nil {
		return Instruction{}, err
	}
	def, _ := DefaultInstruction(key)
	return Instruction{
		Key:       key,
		Message:   strings.TrimSpace(value[:idx]),
		Duration:  d,
		PlaySound: def.PlaySound,
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func parseToggle(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enabled", "on", "true", "yes":
		return true, nil
	case "disabled", "off", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("%w: want enabled|disabled, got %q", ErrSyntax, s)
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNumber, s)
	}
	return v, nil
}

// parsePercent turns "80%" (or "80") into 0.8.
func parsePercent(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), percentSuffix), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrPercent, s)
	}
	return v / 100, nil
}

// parseDuration turns "MM:SS" into seconds.
func parseDuration(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), separator)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrDuration, s)
	}
	mm, err1 := strconv.Atoi(parts[0])
	ss, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || mm < 0 || ss < 0 {
		return 0, fmt.Errorf("%w: %q", ErrDuration, s)
	}
	return float64(mm*60 + ss), nil
}

// parseSeconds accepts plain seconds or MM:SS.
func parseSeconds(s string) (float64, error) {
	if strings.Contains(s, separator) {
		return parseDuration(s)
	}
	return parseFloat(s)
}
