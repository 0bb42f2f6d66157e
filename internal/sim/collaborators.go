package sim

import "github.com/mcdsl/watercarry/internal/config"

// AudioSink plays named cues. Muting is the sink's business.
type AudioSink interface {
	Play(c Cue)
}

// Display shows HUD instructions and the treatment station.
type Display interface {
	ShowInstruction(in config.Instruction)
	ClearInstruction()
	ShowTreatment(visible bool)
}

// Flow is the water tap.
type Flow interface {
	Start()
	Stop()
}

// Carrier is the participant's hold on the bucket.
type Carrier interface {
	Detach()
	SetPickupEnabled(enabled bool)
	Reset()
}

// Persister stores one Record per persistence tick. Errors are logged by
// the manager and never stop the simulation.
type Persister interface {
	Persist(r Record) error
}

type noopAudio struct{}

func (noopAudio) Play(Cue) {}

type noopDisplay struct{}

func (noopDisplay) ShowInstruction(config.Instruction) {}
func (noopDisplay) ClearInstruction()                  {}
func (noopDisplay) ShowTreatment(bool)                 {}

type noopFlow struct{}

func (noopFlow) Start() {}
func (noopFlow) Stop()  {}

type noopCarrier struct{}

func (noopCarrier) Detach()               {}
func (noopCarrier) SetPickupEnabled(bool) {}
func (noopCarrier) Reset()                {}

type noopPersister struct{}

func (noopPersister) Persist(Record) error { return nil }
