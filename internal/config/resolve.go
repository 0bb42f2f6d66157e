// resolve.go
package config

// Overrides carries command-line values that take precedence over the
// session file.
type Overrides struct {
	Participant *string
	PlanPath    *string
	OutputDir   *string
	Seed        *uint64
	HTTPAddr    *string
	GRPCAddr    *string
}

// Resolve layers defaults <- file <- overrides.
func Resolve(file SessionConfig, o Overrides) SessionConfig {
	out := mergeSession(DefaultSession(), file)

	if o.Participant != nil && *o.Participant != "" {
		out.Participant.Name = *o.Participant
	}
	if o.PlanPath != nil && *o.PlanPath != "" {
		out.PlanPath = *o.PlanPath
	}
	if o.OutputDir != nil && *o.OutputDir != "" {
		out.OutputDir = *o.OutputDir
	}
	if o.Seed != nil {
		seed := *o.Seed
		out.Seed = &seed
	}
	if o.HTTPAddr != nil && *o.HTTPAddr != "" {
		out.HTTPAddr = *o.HTTPAddr
	}
	if o.GRPCAddr != nil && *o.GRPCAddr != "" {
		out.GRPCAddr = *o.GRPCAddr
	}
	return out
}

// mergeSession copies every set field of b over a.
func mergeSession(a, b SessionConfig) SessionConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if b.Participant.Name != "" {
		out.Participant.Name = b.Participant.Name
	}
	// sensitivities are opt-in, so true always wins
	out.Participant.NauseaSensitive = a.Participant.NauseaSensitive || b.Participant.NauseaSensitive
	out.Participant.ClaustrophobicSensitive = a.Participant.ClaustrophobicSensitive || b.Participant.ClaustrophobicSensitive

	if b.PlanPath != "" {
		out.PlanPath = b.PlanPath
	}
	if b.OutputDir != "" {
		out.OutputDir = b.OutputDir
	}
	if b.Seed != nil {
		seed := *b.Seed
		out.Seed = &seed
	}
	if b.HTTPAddr != "" {
		out.HTTPAddr = b.HTTPAddr
	}
	if b.GRPCAddr != "" {
		out.GRPCAddr = b.GRPCAddr
	}
	if b.PersistInterval != nil {
		v := *b.PersistInterval
		out.PersistInterval = &v
	}
	return out
}
