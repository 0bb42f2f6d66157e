package config

// Instruction is a HUD message shown for a fixed number of seconds.
type Instruction struct {
	Key       string  `json:"key"`
	Message   string  `json:"message"`
	Duration  float64 `json:"duration"`
	PlaySound bool    `json:"play_sound,omitempty"`
}

// Instruction keywords. Any of them may be overridden in the Simulation
// block as `KEYWORD: message,seconds`.
const (
	DZLocateBucket      = "DZ_LOCATE_BUCKET"
	DZHoldBucket        = "DZ_HOLD_BUCKET"
	DZFillBucket        = "DZ_FILL_BUCKET"
	DZGoToSink          = "DZ_GO_TO_SINK"
	DZPourOutBucket     = "DZ_POUR_OUT_BUCKET"
	DZObjective         = "DZ_OBJECTIVE"
	DZImpStartFog       = "DZ_IMP_START_FOG"
	DZImpStartShake     = "DZ_IMP_START_SHAKE"
	DZImpStartGeneric   = "DZ_IMP_START_GENERIC"
	DZImpExplainShake   = "DZ_IMP_EXPLAIN_SHAKE"
	DZImpExplainGeneric = "DZ_IMP_EXPLAIN_GENERIC"
	DZImpObjective      = "DZ_IMP_OBJECTIVE"
	TRPayOnly           = "TR_PAY_ONLY"
	TRWaitOnly          = "TR_WAIT_ONLY"
	TRWaiting           = "TR_WAITING"
)

var defaultInstructions = map[string]Instruction{
	DZLocateBucket:      {Message: "Find the bucket on the table.", Duration: 6},
	DZHoldBucket:        {Message: "Pick the bucket up by squeezing the grip button.", Duration: 6},
	DZFillBucket:        {Message: "Hold the bucket under the tap to fill it.", Duration: 6},
	DZGoToSink:          {Message: "Carry the water over to the sink.", Duration: 6},
	DZPourOutBucket:     {Message: "Tip the bucket to pour the water into the sink.", Duration: 6},
	DZObjective:         {Message: "Each drop you deliver earns money. Keep going!", Duration: 8},
	DZImpStartFog:       {Message: "Your vision is about to become foggy.", Duration: 6, PlaySound: true},
	DZImpStartShake:     {Message: "Your hands are about to start shaking.", Duration: 6, PlaySound: true},
	DZImpStartGeneric:   {Message: "You are about to become impaired.", Duration: 6, PlaySound: true},
	DZImpExplainShake:   {Message: "Shaking hands make it easy to spill water.", Duration: 8},
	DZImpExplainGeneric: {Message: "Impairments make the task harder. Some days offer a treatment.", Duration: 8},
	DZImpObjective:      {Message: "Deliver water while impaired to finish the tutorial.", Duration: 8},
	TRPayOnly:           {Message: "Today the treatment can only be bought with money.", Duration: 8},
	TRWaitOnly:          {Message: "Today the treatment is free, but you must wait for it.", Duration: 8},
	TRWaiting:           {Message: "Waiting for treatment. You cannot carry the bucket.", Duration: 5},
}

// IsInstructionKey reports whether key names a known instruction.
func IsInstructionKey(key string) bool {
	_, ok := defaultInstructions[key]
	return ok
}

// DefaultInstruction returns the built-in text for key.
func DefaultInstruction(key string) (Instruction, bool) {
	in, ok := defaultInstructions[key]
	in.Key = key
	return in, ok
}
