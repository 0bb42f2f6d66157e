package api

import (
	"encoding/json"

	"github.com/mcdsl/watercarry/internal/config"
	"github.com/mcdsl/watercarry/internal/sim"
	"github.com/mcdsl/watercarry/internal/treatment"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type ImpairmentState struct {
	Kind     string  `json:"kind"`
	Strength float64 `json:"strength"`
	Current  float64 `json:"current"`
}

type TreatmentState struct {
	Offered    bool    `json:"offered"`
	Pay        bool    `json:"pay"`
	Wait       bool    `json:"wait"`
	Cost       float64 `json:"cost"`
	WaitTime   float64 `json:"wait_time"`
	Obtained   bool    `json:"obtained"`
	ObtainType string  `json:"obtain_type,omitempty"`
	Effective  *bool   `json:"effective,omitempty"`
}

// State is what GET /state returns.
type State struct {
	Session  string `json:"session"`
	State    string `json:"state"`
	Day      int    `json:"day"`
	Days     int    `json:"days"`
	Complete bool   `json:"complete"`

	Score             float64 `json:"score"`
	DayScore          float64 `json:"day_score"`
	CumulativePayment float64 `json:"cumulative_payment"`
	TreatmentSpend    float64 `json:"treatment_spend"`
	PaymentEnabled    bool    `json:"payment_enabled"`
	Payload           int     `json:"payload"`

	ElapsedDay   float64 `json:"elapsed_day"`
	ElapsedTotal float64 `json:"elapsed_total"`
	RemainingDay float64 `json:"remaining_day"`
	TutorialStep string  `json:"tutorial_step,omitempty"`

	Impairments []ImpairmentState `json:"impairments"`
	Treatment   TreatmentState    `json:"treatment"`

	Waiting        bool    `json:"waiting"`
	WaitRemaining  float64 `json:"wait_remaining"`
	DelayRemaining float64 `json:"delay_remaining"`

	Instruction    *config.Instruction `json:"instruction,omitempty"`
	TreatmentShown bool                `json:"treatment_shown"`
	Flowing        bool                `json:"flowing"`
	PickupEnabled  bool                `json:"pickup_enabled"`
	LastCue        string              `json:"last_cue,omitempty"`
}

func treatmentState(m *sim.Manager) TreatmentState {
	tr := m.ActiveTreatment()
	if tr == nil {
		return TreatmentState{Cost: treatment.Unavailable, WaitTime: treatment.Unavailable}
	}
	ts := TreatmentState{
		Offered:  true,
		Pay:      tr.HasPayOption(),
		Wait:     tr.HasWaitOption(),
		Cost:     m.CurrentTreatmentCost(),
		WaitTime: m.CurrentTreatmentWaitTime(),
		Obtained: tr.HasBeenObtained(),
	}
	if ts.Obtained {
		ts.ObtainType = m.ObtainType().String()
		if !m.Waiting() {
			eff := tr.IsEffective()
			ts.Effective = &eff
		}
	}
	return ts
}

// snapshot must be called under the session lock.
func (s *Session) snapshot() State {
	m := s.m
	st := State{
		Session:           s.ID,
		State:             m.CurrentState().String(),
		Day:               m.CurrentDay(),
		Days:              m.TotalDays(),
		Complete:          m.IsComplete(),
		Score:             m.CurrentScore(),
		DayScore:          m.DayScore(),
		CumulativePayment: m.CumulativePayment(),
		TreatmentSpend:    m.TreatmentSpend(),
		PaymentEnabled:    m.PaymentEnabled(),
		Payload:           m.CurrentPayload(),
		ElapsedDay:        m.ElapsedDayTime(),
		ElapsedTotal:      m.ElapsedTotalTime(),
		RemainingDay:      m.RemainingDayTime(),
		Impairments:       []ImpairmentState{},
		Treatment:         treatmentState(m),
		Waiting:           m.Waiting(),
		WaitRemaining:     m.WaitRemaining(),
		DelayRemaining:    m.DelayRemaining(),
		Instruction:       s.scene.instruction,
		TreatmentShown:    s.scene.treatmentUI,
		Flowing:           s.scene.flowing,
		PickupEnabled:     s.scene.pickupEnabled,
		LastCue:           string(s.scene.lastCue),
	}
	if m.CurrentDay() == 0 && m.CurrentState() != sim.Error {
		st.TutorialStep = m.TutorialStep().String()
	}
	for _, imp := range m.ActiveImpairments() {
		st.Impairments = append(st.Impairments, ImpairmentState{
			Kind:     imp.Kind().String(),
			Strength: imp.Strength(),
			Current:  m.ImpairmentStrength(imp.Kind()),
		})
	}
	return st
}

// Snapshot returns the current State.
func (s *Session) Snapshot() State {
	var st State
	s.Do(func(*sim.Manager) { st = s.snapshot() })
	return st
}

// protoJSON renders v through a structpb.Struct, which yields the
// canonical protobuf JSON encoding.
func protoJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	pb, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(pb)
}
