// types.go
package config

// SessionConfig is the per-run YAML file: who is taking part and where the
// plan and logs live. Pointer fields distinguish "unset" from zero values
// so defaults and overrides can be merged.
type SessionConfig struct {
	Version     string      `yaml:"version"`
	Participant Participant `yaml:"participant"`
	PlanPath    string      `yaml:"plan"`
	OutputDir   string      `yaml:"output_dir,omitempty"`
	Seed        *uint64     `yaml:"seed,omitempty"`

	HTTPAddr string `yaml:"http_addr,omitempty"`
	GRPCAddr string `yaml:"grpc_addr,omitempty"`

	// seconds between persisted rows
	PersistInterval *float64 `yaml:"persist_interval,omitempty"`
	Notes           string   `yaml:"notes,omitempty"`
}

// Participant is captured on the welcome screen before the run starts.
type Participant struct {
	Name                    string `yaml:"name"`
	NauseaSensitive         bool   `yaml:"nausea_sensitive"`
	ClaustrophobicSensitive bool   `yaml:"claustrophobic_sensitive"`
}

// DefaultSession is used for anything the file and flags leave unset.
func DefaultSession() SessionConfig {
	interval := 1.0
	return SessionConfig{
		Version:         "1",
		Participant:     Participant{Name: "anonymous"},
		OutputDir:       "logs",
		HTTPAddr:        ":8080",
		GRPCAddr:        ":9090",
		PersistInterval: &interval,
	}
}
