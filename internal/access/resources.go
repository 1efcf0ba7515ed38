package access

import (
	"slices"
	"strings"
)

// DefaultSensitiveResources are the resources that require manager approval
// when SENSITIVE_RESOURCES is unset or names no resources.
var DefaultSensitiveResources = []string{"finance-db", "hr-payroll-db"}

// ResourceSet is an immutable set of resource identifiers. The zero value is
// an empty set.
type ResourceSet struct {
	ids map[string]struct{}
}

// NewResourceSet builds a set from ids, ignoring blanks and surrounding spaces.
func NewResourceSet(ids ...string) ResourceSet {
	set := ResourceSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			set.ids[id] = struct{}{}
		}
	}
	return set
}

// Contains reports whether id is in the set. Matching is exact.
func (s ResourceSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of identifiers in the set.
func (s ResourceSet) Len() int {
	return len(s.ids)
}

// List returns the identifiers in sorted order.
func (s ResourceSet) List() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
