package config

// Keywords of the simulation configuration format.
const (
	commentMarker = "#"
	separator     = ":"
	indent        = "\t"
	percentSuffix = "%"
	defaultValue  = "default"

	kwSimulation = "Simulation"
	kwTutorial   = "Tutorial"
	kwDay        = "Day"

	// Simulation block
	kwName           = "Name"
	kwOutput         = "Output"
	kwDescription    = "Description"
	kwInstructions   = "Instructions"
	kwSound          = "Sound"
	kwScene          = "Scene"
	kwLowNausea      = "LowNausea"
	kwClaustrophobic = "Claustrophobic"

	// Tutorial block
	kwScore         = "Score"
	kwImpairedScore = "ImpairedScore"

	// Day block
	kwDuration      = "Duration"
	kwBallValue     = "BallValue"
	kwImpairment    = "Impairment"
	kwTreatment     = "Treatment"
	kwCost          = "Cost"
	kwWait          = "Wait"
	kwEffectiveness = "Effectiveness"

	// Sub-block attributes
	kwType             = "Type"
	kwStrength         = "Strength"
	kwCertainty        = "Certainty"
	kwDelayProbability = "DelayProbability"
	kwDelay            = "Delay"
	kwDeathProbability = "DeathProbability"
	kwProbability      = "Probability"
	kwEffect           = "Effect"
	kwCoefC            = "C"
	kwCoefA            = "a"
	kwCoefB            = "b"
	kwCoefConst        = "c"
)
