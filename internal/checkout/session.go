package checkout

import (
	"errors"
	"sync"
	"time"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/constants"
)

// FSM errors surfaced to callers.
var (
	ErrAddressInvalid  = errors.New("address step has validation errors")
	ErrPaymentInvalid  = errors.New("payment step has validation errors")
	ErrCartEmpty       = errors.New("cannot place an order with an empty cart")
	ErrStepLocked      = errors.New("step has not been reached yet")
	ErrNoNextStep      = errors.New("no next step from here")
	ErrSessionComplete = errors.New("checkout session is complete")
	ErrNotAtReview     = errors.New("order can only be placed from the review step")
)

// Session is the state of one checkout wizard, keyed by cart token.
// Card details live here only for the lifetime of the session and are
// never persisted. The embedded mutex serializes concurrent requests
// for the same token; callers hold it across any read or mutation.
type Session struct {
	sync.Mutex

	Token           string
	Step            Step
	MaxStep         Step
	Address         Address
	Card            CardDetails
	Tier            string
	Touched         map[string]bool
	SubmitAttempted bool
	OrderRef        string
	ExpiresAt       time.Time
}

// NewSession starts a wizard at the address step with standard shipping.
func NewSession(token string) *Session {
	return &Session{
		Token:   token,
		Step:    StepAddress,
		MaxStep: StepAddress,
		Tier:    constants.ShippingTierStandard,
		Touched: map[string]bool{},
	}
}

// Complete reports whether the wizard reached confirmation.
func (s *Session) Complete() bool {
	return s.Step == StepConfirmation
}

// Touch marks a field as visited so its error becomes visible.
func (s *Session) Touch(field string) {
	s.Touched[field] = true
}

func (s *Session) touchAll(fields []string) {
	for _, f := range fields {
		s.Touched[f] = true
	}
}

// SetAddress replaces the address form state.
func (s *Session) SetAddress(a Address) {
	s.Address = a
}

// SetTier selects the shipping tier, falling back to standard for
// unrecognized values.
func (s *Session) SetTier(tier string) {
	if tier == constants.ShippingTierExpress {
		s.Tier = constants.ShippingTierExpress
		return
	}
	s.Tier = constants.ShippingTierStandard
}

// SetCard replaces the payment form state, normalizing the expiry as a
// form input mask would.
func (s *Session) SetCard(c CardDetails) {
	c.Expiry = NormalizeExpiry(c.Expiry)
	s.Card = c
}

// Advance moves the wizard one step forward. Leaving a step with invalid
// input marks every field on it as touched and keeps the wizard in place.
func (s *Session) Advance(now time.Time) error {
	next, ok := nextStep[s.Step]
	if !ok {
		if s.Complete() {
			return ErrSessionComplete
		}
		return ErrNoNextStep
	}
	switch s.Step {
	case StepAddress:
		if len(ValidateAddress(s.Address)) > 0 {
			s.touchAll(addressFields)
			return ErrAddressInvalid
		}
	case StepPayment:
		if len(ValidateCard(s.Card, now)) > 0 {
			s.touchAll(cardFields)
			return ErrPaymentInvalid
		}
	}
	s.Step = next
	if next > s.MaxStep {
		s.MaxStep = next
	}
	return nil
}

// Back moves one step backward. The address and confirmation steps have
// no previous step, so the call is a no-op there.
func (s *Session) Back() {
	if prev, ok := prevStep[s.Step]; ok {
		s.Step = prev
	}
}

// Goto jumps directly to an already-reached step. Confirmation can never
// be a jump target, and a completed wizard cannot be left.
func (s *Session) Goto(target Step) error {
	if s.Complete() {
		return ErrSessionComplete
	}
	if target == StepConfirmation {
		return ErrStepLocked
	}
	if target > s.MaxStep {
		return ErrStepLocked
	}
	s.Step = target
	return nil
}

// PlaceOrder finalizes the wizard from the review step. All fields are
// re-validated; on failure the wizard jumps back to the first invalid
// step, address before payment. The caller assigns OrderRef after the
// gateway accepts the charge.
func (s *Session) PlaceOrder(now time.Time, cartEmpty bool) error {
	if s.Complete() {
		return ErrSessionComplete
	}
	if s.Step != StepReview {
		return ErrNotAtReview
	}
	if cartEmpty {
		return ErrCartEmpty
	}
	s.SubmitAttempted = true
	if len(ValidateAddress(s.Address)) > 0 {
		s.touchAll(addressFields)
		s.Step = StepAddress
		return ErrAddressInvalid
	}
	if len(ValidateCard(s.Card, now)) > 0 {
		s.touchAll(cardFields)
		s.Step = StepPayment
		return ErrPaymentInvalid
	}
	s.Step = StepConfirmation
	s.MaxStep = StepConfirmation
	return nil
}

// VisibleErrors filters validation failures down to fields the shopper
// has touched, or everything once a submit was attempted.
func (s *Session) VisibleErrors(now time.Time) FieldErrors {
	all := ValidateAddress(s.Address)
	for f, msg := range ValidateCard(s.Card, now) {
		all[f] = msg
	}
	if s.SubmitAttempted {
		return all
	}
	visible := FieldErrors{}
	for f, msg := range all {
		if s.Touched[f] {
			visible[f] = msg
		}
	}
	return visible
}
