package checkout

import (
	"errors"
	"strings"
)

// Step is one stage of the linear checkout wizard.
type Step int

const (
	StepAddress Step = iota
	StepShipping
	StepPayment
	StepReview
	StepConfirmation
)

var stepNames = map[Step]string{
	StepAddress:      "address",
	StepShipping:     "shipping",
	StepPayment:      "payment",
	StepReview:       "review",
	StepConfirmation: "confirmation",
}

// ErrUnknownStep reports an unparseable step name.
var ErrUnknownStep = errors.New("unknown checkout step")

// String returns the wire name of the step.
func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStep resolves a wire name into a Step.
func ParseStep(name string) (Step, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for step, stepName := range stepNames {
		if stepName == normalized {
			return step, nil
		}
	}
	return StepAddress, ErrUnknownStep
}

// The wizard is linear: the allowed-transition tables below are the only
// way a session moves between steps, so branches and skips cannot be
// expressed at all.
var (
	nextStep = map[Step]Step{
		StepAddress:  StepShipping,
		StepShipping: StepPayment,
		StepPayment:  StepReview,
	}
	prevStep = map[Step]Step{
		StepShipping: StepAddress,
		StepPayment:  StepShipping,
		StepReview:   StepPayment,
	}
)
