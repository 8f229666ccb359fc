// Package policy implements the two message-acceptance rules: the epistemic
// bubble, which accepts every message it is handed, and the echo chamber,
// which discards messages from senders the recipient does not trust.
package policy

import (
	"errors"
	"fmt"
	"math"

	"github.com/Harshitk-cp/echosim/internal/domain"
)

const (
	DefaultStepSize       = 0.1
	DefaultTrustThreshold = 0.5
	DefaultTrust          = 0.1
)

var ErrInvalidMessage = errors.New("invalid message")

// Options configures delivery. TrustThreshold and DefaultTrust only matter
// for the chamber.
type Options struct {
	StepSize       float64
	TrustThreshold float64
	DefaultTrust   float64
}

func DefaultOptions() Options {
	return Options{
		StepSize:       DefaultStepSize,
		TrustThreshold: DefaultTrustThreshold,
		DefaultTrust:   DefaultTrust,
	}
}

// withDefaults replaces values that cannot drive an update. Zero is a
// meaningful threshold or trust, so only NaN is replaced there.
func (o Options) withDefaults() Options {
	if math.IsNaN(o.StepSize) || o.StepSize <= 0 {
		o.StepSize = DefaultStepSize
	}
	if math.IsNaN(o.TrustThreshold) {
		o.TrustThreshold = DefaultTrustThreshold
	}
	if math.IsNaN(o.DefaultTrust) {
		o.DefaultTrust = DefaultTrust
	}
	return o
}

// OptionsFrom extracts the delivery options from run parameters.
func OptionsFrom(p domain.Params) Options {
	return Options{
		StepSize:       p.BeliefUpdateStepSize,
		TrustThreshold: p.TrustThreshold,
		DefaultTrust:   p.DefaultOutsiderTrust,
	}
}

// Policy decides how a recipient's belief reacts to a message. The set of
// implementations is closed: Bubble and Chamber.
type Policy interface {
	// Deliver applies content, the sender's belief at send time, to
	// recipient. accepted reports whether the belief update rule ran.
	Deliver(recipient *domain.Agent, content float64, sender *domain.Agent) (accepted bool, err error)
	Model() domain.ModelType
	sealed()
}

// New returns the policy for model. It is the only place a model type
// string is dispatched on.
func New(model domain.ModelType, opts Options) (Policy, error) {
	opts = opts.withDefaults()
	switch model {
	case domain.ModelBubble:
		return Bubble{stepSize: opts.StepSize}, nil
	case domain.ModelChamber:
		return Chamber{
			stepSize:       opts.StepSize,
			trustThreshold: opts.TrustThreshold,
			defaultTrust:   opts.DefaultTrust,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownModelType, model)
	}
}

// Nudge moves current one fixed step toward target, bounded to [0,1]. A
// step larger than the gap overshoots target.
func Nudge(current, target, stepSize float64) float64 {
	switch {
	case target > current:
		return math.Min(1, current+stepSize)
	case target < current:
		return math.Max(0, current-stepSize)
	default:
		return current
	}
}

// Bubble accepts every message. Isolation comes from the network: the
// engine only delivers between neighbours.
type Bubble struct {
	stepSize float64
}

func (b Bubble) Deliver(recipient *domain.Agent, content float64, sender *domain.Agent) (bool, error) {
	if err := checkMessage(recipient, content, sender); err != nil {
		return false, err
	}
	recipient.UpdateBelief(Nudge(recipient.Belief(), content, b.stepSize))
	return true, nil
}

func (Bubble) Model() domain.ModelType { return domain.ModelBubble }

func (Bubble) sealed() {}

// Chamber accepts a message only when the recipient's trust in the sender
// is at least the threshold. Rejected messages change nothing.
type Chamber struct {
	stepSize       float64
	trustThreshold float64
	defaultTrust   float64
}

func (c Chamber) Deliver(recipient *domain.Agent, content float64, sender *domain.Agent) (bool, error) {
	if err := checkMessage(recipient, content, sender); err != nil {
		return false, err
	}
	if recipient.TrustScore(sender.ID(), c.defaultTrust) < c.trustThreshold {
		return false, nil
	}
	recipient.UpdateBelief(Nudge(recipient.Belief(), content, c.stepSize))
	return true, nil
}

func (Chamber) Model() domain.ModelType { return domain.ModelChamber }

func (Chamber) sealed() {}

func checkMessage(recipient *domain.Agent, content float64, sender *domain.Agent) error {
	if recipient == nil || sender == nil {
		return fmt.Errorf("%w: missing recipient or sender", ErrInvalidMessage)
	}
	if math.IsNaN(content) {
		return fmt.Errorf("%w: content is NaN", ErrInvalidMessage)
	}
	return nil
}
