package impairment

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Kind names the capability an impairment degrades.
type Kind int

const (
	Fog Kind = iota + 1
	Gravity
	Shake
	SpeedPenalty
)

var (
	ErrKind       = errors.New("unknown impairment kind")
	ErrStrength   = errors.New("impairment strength must be in [0,1]")
	ErrNoActuator = errors.New("no actuator wired for impairment kind")
)

func (k Kind) String() string {
	switch k {
	case Fog:
		return "fog"
	case Gravity:
		return "gravity"
	case Shake:
		return "shake"
	case SpeedPenalty:
		return "speed_penalty"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) valid() bool {
	return k >= Fog && k <= SpeedPenalty
}

// ParseKind maps a configuration type token onto a Kind.
// "Visual/Fog" and "Physical/Shake" are the canonical spellings; anything
// else falls back to a case-insensitive substring match.
func ParseKind(token string) (Kind, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	switch t {
	case "visual/fog":
		return Fog, nil
	case "physical/shake":
		return Shake, nil
	}
	switch {
	case strings.Contains(t, "fog"):
		return Fog, nil
	case strings.Contains(t, "shake"):
		return Shake, nil
	case strings.Contains(t, "gravity"):
		return Gravity, nil
	case strings.Contains(t, "speed"):
		return SpeedPenalty, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrKind, token)
}

// Impairment is a per-day degradation with a severity in [0,1].
type Impairment struct {
	kind     Kind
	strength float64
}

// New validates kind and strength.
func New(kind Kind, strength float64) (Impairment, error) {
	if !kind.valid() {
		return Impairment{}, ErrKind
	}
	if math.IsNaN(strength) || strength < 0 || strength > 1 {
		return Impairment{}, fmt.Errorf("%w: got %v", ErrStrength, strength)
	}
	return Impairment{kind: kind, strength: strength}, nil
}

func (i Impairment) Kind() Kind        { return i.kind }
func (i Impairment) Strength() float64 { return i.strength }

func (i Impairment) String() string {
	return fmt.Sprintf("%s@%.2f", i.kind, i.strength)
}

// Remaining is the strength left after a treatment removes factor of it.
func (i Impairment) Remaining(factor float64) float64 {
	if factor >= 1 {
		return 0
	}
	if factor <= 0 {
		return i.strength
	}
	return i.strength * (1 - factor)
}
