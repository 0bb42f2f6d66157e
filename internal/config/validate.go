package config

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNoDays = errors.New("plan has no days")

// ValidatePlan checks the constraints a runnable plan must meet and
// reports every violation at once.
func ValidatePlan(p *SimulationPlan) error {
	if p == nil {
		return errors.New("plan validation failed: no plan")
	}
	var errs []string

	if p.TotalDays() == 0 {
		errs = append(errs, ErrNoDays.Error())
	}
	if p.DayZeroUnimpairedThreshold <= 0 {
		errs = append(errs, "tutorial score must be > 0")
	}
	if len(p.DayZeroImpairments) > 0 && p.DayZeroImpairedThreshold <= 0 {
		errs = append(errs, "tutorial impaired score must be > 0")
	}

	for _, d := range p.Days {
		if d.Duration <= 0 {
			errs = append(errs, fmt.Sprintf("day %d: duration must be > 0", d.DayNumber))
		}
		if d.RewardMultiplier < 0 {
			errs = append(errs, fmt.Sprintf("day %d: ball value must be >= 0", d.DayNumber))
		}
		if d.Treatment != nil && !d.Treatment.HasPayOption() && !d.Treatment.HasWaitOption() {
			errs = append(errs, fmt.Sprintf("day %d: treatment offers neither pay nor wait", d.DayNumber))
		}
	}

	if len(errs) > 0 {
		if p.TotalDays() == 0 {
			return fmt.Errorf("%w: plan validation failed: %s", ErrNoDays, strings.Join(errs, "; "))
		}
		return fmt.Errorf("plan validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ValidateSession checks a resolved session configuration.
func ValidateSession(cfg SessionConfig) error {
	var errs []string

	if cfg.PlanPath == "" {
		errs = append(errs, "plan path is required")
	}
	if strings.TrimSpace(cfg.Participant.Name) == "" {
		errs = append(errs, "participant.name must not be empty")
	}
	if cfg.PersistInterval != nil && *cfg.PersistInterval <= 0 {
		errs = append(errs, "persist_interval must be > 0")
	}
	if cfg.HTTPAddr == "" {
		errs = append(errs, "http_addr must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("session validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
