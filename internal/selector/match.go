package selector

import (
	"fmt"
	"strings"

	"github.com/vburojevic/simlaunch/internal/domain"
)

// MatchFunc reports whether device satisfies the target identifier.
type MatchFunc func(device domain.Device, target string) bool

// PrefixMatch accepts devices whose identifier ("iPhone 14 (17.0)") or UDID
// begins with target. The identifier comparison is case-sensitive; UDIDs are
// compared ignoring case, as in every match mode. An empty target matches
// every device.
func PrefixMatch(device domain.Device, target string) bool {
	return strings.HasPrefix(device.Identifier(), target) || hasPrefixFold(device.UDID, target)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// ExactMatch accepts devices whose name, identifier or UDID equals target.
func ExactMatch(device domain.Device, target string) bool {
	if target == "" {
		return true
	}
	return device.Name == target || device.Identifier() == target || strings.EqualFold(device.UDID, target)
}

// ContainsMatch is a case-insensitive substring match on the identifier or
// UDID.
func ContainsMatch(device domain.Device, target string) bool {
	target = strings.ToLower(target)
	return strings.Contains(strings.ToLower(device.Identifier()), target) ||
		strings.Contains(strings.ToLower(device.UDID), target)
}

// Matchers maps the --match flag values to predicates.
var Matchers = map[string]MatchFunc{
	"prefix":   PrefixMatch,
	"exact":    ExactMatch,
	"contains": ContainsMatch,
}

// MatcherFor returns the named predicate.
func MatcherFor(name string) (MatchFunc, error) {
	if name == "" {
		return PrefixMatch, nil
	}
	m, ok := Matchers[name]
	if !ok {
		return nil, fmt.Errorf("unknown match mode %q (expected prefix, exact or contains)", name)
	}
	return m, nil
}

// Filter returns the devices matching target, preserving input order.
func Filter(devices []domain.Device, target string, match MatchFunc) []domain.Device {
	if match == nil {
		match = PrefixMatch
	}
	var matched []domain.Device
	for _, d := range devices {
		if match(d, target) {
			matched = append(matched, d)
		}
	}
	return matched
}
