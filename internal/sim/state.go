package sim

import "github.com/mcdsl/watercarry/internal/config"

// State is the simulation's top-level phase.
type State int

const (
	Running State = iota + 1
	Paused
	Transition
	Limbo
	Complete
	Error
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	case Transition:
		return "TRANSITION"
	case Limbo:
		return "LIMBO"
	case Complete:
		return "COMPLETE"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// terminal states never transition again
func (s State) terminal() bool { return s == Complete || s == Error }

// Cue names an audio clip.
type Cue string

const (
	CueWaterFlow    Cue = "WATER_FLOW"
	CueTakeMedicine Cue = "TAKE_MEDICINE"
	CueStartDay     Cue = "START_DAY"
	CueDayComplete  Cue = "DAY_COMPLETE"
	CueSimComplete  Cue = "SIM_COMPLETE"
	CueNormalTick   Cue = "NORMAL_TICK"
	CueCriticalTick Cue = "CRITICAL_TICK"
)

// TutorialStep is a checkpoint of the day-zero walkthrough.
type TutorialStep int

const (
	StepLocateBucket TutorialStep = iota
	StepHoldBucket
	StepFillBucket
	StepGoToSink
	StepPourBucket
	StepObjective
)

var stepInstructions = [...]string{
	StepLocateBucket: config.DZLocateBucket,
	StepHoldBucket:   config.DZHoldBucket,
	StepFillBucket:   config.DZFillBucket,
	StepGoToSink:     config.DZGoToSink,
	StepPourBucket:   config.DZPourOutBucket,
	StepObjective:    config.DZObjective,
}

func (s TutorialStep) String() string {
	switch s {
	case StepLocateBucket:
		return "LOCATE_BUCKET"
	case StepHoldBucket:
		return "HOLD_BUCKET"
	case StepFillBucket:
		return "FILL_BUCKET"
	case StepGoToSink:
		return "GO_TO_SINK"
	case StepPourBucket:
		return "POUR_BUCKET"
	case StepObjective:
		return "OBJECTIVE"
	default:
		return "UNKNOWN"
	}
}

// Instruction is the instruction key shown when the step begins.
func (s TutorialStep) Instruction() string {
	if s < 0 || int(s) >= len(stepInstructions) {
		return ""
	}
	return stepInstructions[s]
}

// ParseTutorialStep accepts the names produced by String.
func ParseTutorialStep(name string) (TutorialStep, bool) {
	for s := StepLocateBucket; s <= StepObjective; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}
