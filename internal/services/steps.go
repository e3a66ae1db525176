package services

// Step indexes the customizer's fixed step sequence.
type Step int

const (
	StepBase Step = iota
	StepShapeSize
	StepFillings
	StepFrosting
	StepAddons
	StepMessage
)

var stepLabels = [...]string{
	StepBase:      "Choose Base",
	StepShapeSize: "Shape & Size",
	StepFillings:  "Fillings",
	StepFrosting:  "Frosting",
	StepAddons:    "Add-ons",
	StepMessage:   "Custom Message",
}

// Steps returns the full step sequence in order.
func Steps() []Step {
	return []Step{StepBase, StepShapeSize, StepFillings, StepFrosting, StepAddons, StepMessage}
}

// Valid reports whether the step is within the sequence.
func (s Step) Valid() bool {
	return s >= StepBase && s <= StepMessage
}

// Label returns the step title, or "" for an out-of-range step.
func (s Step) Label() string {
	if !s.Valid() {
		return ""
	}
	return stepLabels[s]
}

// Last reports whether the step is the final one.
func (s Step) Last() bool {
	return s == StepMessage
}

// CanAdvance reports whether the configuration satisfies the given step.
// Optional steps are always satisfied; out-of-range steps never are.
func CanAdvance(cfg Configuration, step Step) bool {
	switch step {
	case StepBase:
		return cfg.Base != nil
	case StepShapeSize:
		return cfg.Shape != nil && cfg.Size != nil
	case StepFrosting:
		return cfg.Frosting != nil
	case StepFillings, StepAddons, StepMessage:
		return true
	default:
		return false
	}
}

// IsComplete reports whether the configuration can become a CustomCake,
// independent of the step being viewed.
func IsComplete(cfg Configuration) bool {
	return cfg.Base != nil && cfg.Shape != nil && cfg.Size != nil && cfg.Frosting != nil
}
