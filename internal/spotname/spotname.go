// Package spotname is the single authority on the lot's spot naming scheme.
// Both the preference-write path and the allocation-read path validate
// against the same Scheme so the two can never drift apart.
package spotname

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Scheme describes the lot's naming scheme: one letter zone prefix followed
// by a 1-based index, e.g. "A1".."A10", "B1".."B10".
type Scheme struct {
	zones        map[string]bool
	spotsPerZone int
}

// NewScheme builds a Scheme from the configured zones and zone size.
func NewScheme(zones []string, spotsPerZone int) *Scheme {
	zoneSet := make(map[string]bool, len(zones))
	for _, z := range zones {
		zoneSet[strings.ToUpper(z)] = true
	}
	return &Scheme{zones: zoneSet, spotsPerZone: spotsPerZone}
}

// Valid reports whether name is a well-formed spot name within the scheme.
func (s *Scheme) Valid(name string) bool {
	if len(name) < 2 {
		return false
	}
	zone := name[:1]
	if !s.zones[zone] {
		return false
	}
	if name[1] == '0' {
		return false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil {
		return false
	}
	return n >= 1 && n <= s.spotsPerZone
}

// All returns every spot name in the scheme, zone by zone, index ascending.
func (s *Scheme) All() []string {
	zones := make([]string, 0, len(s.zones))
	for z := range s.zones {
		zones = append(zones, z)
	}
	sort.Strings(zones)

	names := make([]string, 0, len(zones)*s.spotsPerZone)
	for _, z := range zones {
		for i := 1; i <= s.spotsPerZone; i++ {
			names = append(names, fmt.Sprintf("%s%d", z, i))
		}
	}
	return names
}

// Describe renders the scheme for error messages, e.g. "A1-B10".
func (s *Scheme) Describe() string {
	all := s.All()
	if len(all) == 0 {
		return ""
	}
	return all[0] + "-" + all[len(all)-1]
}
