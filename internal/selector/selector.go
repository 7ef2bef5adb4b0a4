package selector

import (
	"context"
	"fmt"
	"sync"

	"github.com/vburojevic/simlaunch/internal/domain"
)

// Kind is the state a selection ended in.
type Kind int

const (
	NoMatch Kind = iota
	AutoSelected
	UserSelected
	AmbiguousPendingUserInput
)

func (k Kind) String() string {
	switch k {
	case AutoSelected:
		return "auto"
	case UserSelected:
		return "user"
	case AmbiguousPendingUserInput:
		return "pending"
	default:
		return "no_match"
	}
}

// Outcome is the result of a selection. Device is set for AutoSelected and
// UserSelected; Candidates holds the filtered set in every case.
type Outcome struct {
	Kind       Kind
	Device     domain.Device
	Candidates []domain.Device
}

// Selected reports whether a single device was determined.
func (o Outcome) Selected() bool {
	return o.Kind == AutoSelected || o.Kind == UserSelected
}

// Chooser asks the user to pick exactly one of devices. Implementations block
// until a choice is made, the user cancels (ErrSelectionCanceled) or ctx is
// done.
type Chooser interface {
	Choose(ctx context.Context, devices []domain.Device) (domain.Device, error)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(ctx context.Context, devices []domain.Device) (domain.Device, error)

func (f ChooserFunc) Choose(ctx context.Context, devices []domain.Device) (domain.Device, error) {
	return f(ctx, devices)
}

// Selector owns the single active-dialog slot. The zero value is not usable;
// construct with New.
type Selector struct {
	match   MatchFunc
	chooser Chooser

	mu     sync.Mutex
	active []domain.Device
}

// New returns a Selector using match (PrefixMatch when nil) and chooser for
// ambiguous results.
func New(match MatchFunc, chooser Chooser) *Selector {
	if match == nil {
		match = PrefixMatch
	}
	return &Selector{match: match, chooser: chooser}
}

// Resolve filters devices by target without prompting. Ambiguous results are
// reported as AmbiguousPendingUserInput.
func (s *Selector) Resolve(target string, devices []domain.Device) Outcome {
	matched := Filter(devices, target, s.match)
	switch len(matched) {
	case 0:
		return Outcome{Kind: NoMatch}
	case 1:
		return Outcome{Kind: AutoSelected, Device: matched[0], Candidates: matched}
	default:
		return Outcome{Kind: AmbiguousPendingUserInput, Candidates: matched}
	}
}

// Select resolves target to exactly one device, asking the chooser when more
// than one device matches. A zero match count yields *NoSuitableDeviceError.
func (s *Selector) Select(ctx context.Context, target string, devices []domain.Device) (Outcome, error) {
	out := s.Resolve(target, devices)
	switch out.Kind {
	case NoMatch:
		return out, &NoSuitableDeviceError{Target: target}
	case AutoSelected:
		return out, nil
	}

	chosen, err := s.await(ctx, out.Candidates)
	if err != nil {
		return out, err
	}
	return Outcome{Kind: UserSelected, Device: chosen, Candidates: out.Candidates}, nil
}

// Pending returns the candidates of the open dialog, or nil.
func (s *Selector) Pending() []domain.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Selector) await(ctx context.Context, candidates []domain.Device) (domain.Device, error) {
	if s.chooser == nil {
		return domain.Device{}, fmt.Errorf("%d simulators match and no chooser is configured", len(candidates))
	}

	s.mu.Lock()
	if s.active != nil {
		s.mu.Unlock()
		return domain.Device{}, ErrDialogActive
	}
	s.active = candidates
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.active = nil
		s.mu.Unlock()
	}()

	chosen, err := s.chooser.Choose(ctx, candidates)
	if err != nil {
		return domain.Device{}, err
	}
	if ctx.Err() != nil {
		return domain.Device{}, ctx.Err()
	}

	for _, c := range candidates {
		if c.UDID == chosen.UDID {
			return c, nil
		}
	}
	return domain.Device{}, fmt.Errorf("chooser returned %s, which is not one of the matching simulators", chosen.Label())
}
