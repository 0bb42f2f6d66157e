package impairment

// Actuator drives one impairment effect on the participant side
// (overlay alpha for fog, tremor on hand tracking, and so on).
type Actuator interface {
	Apply(strength float64)
	Clear()
	Modify(factor float64)
}

// Actuators holds one actuator per kind. A nil field means the scene does
// not support that kind; dispatch then reports ErrNoActuator.
type Actuators struct {
	Fog          Actuator
	Gravity      Actuator
	Shake        Actuator
	SpeedPenalty Actuator
}

func (a Actuators) lookup(k Kind) (Actuator, error) {
	var act Actuator
	switch k {
	case Fog:
		act = a.Fog
	case Gravity:
		act = a.Gravity
	case Shake:
		act = a.Shake
	case SpeedPenalty:
		act = a.SpeedPenalty
	default:
		return nil, ErrKind
	}
	if act == nil {
		return nil, ErrNoActuator
	}
	return act, nil
}

// Apply switches the impairment on at its configured strength.
func (i Impairment) Apply(a Actuators) error {
	act, err := a.lookup(i.kind)
	if err != nil {
		return err
	}
	act.Apply(i.strength)
	return nil
}

// Clear removes the impairment entirely.
func (i Impairment) Clear(a Actuators) error {
	act, err := a.lookup(i.kind)
	if err != nil {
		return err
	}
	act.Clear()
	return nil
}

// Modify removes factor of the impairment's strength. factor >= 1 clears it.
func (i Impairment) Modify(a Actuators, factor float64) error {
	act, err := a.lookup(i.kind)
	if err != nil {
		return err
	}
	if factor >= 1 {
		act.Clear()
		return nil
	}
	if factor <= 0 {
		return nil
	}
	act.Modify(factor)
	return nil
}
