// Package allocation selects a parking spot for an arriving vehicle based
// on the user's placement preference and the set of currently available
// spots. Selection is pure and deterministic; reservation races are the
// caller's concern.
package allocation

import (
	"errors"
	"fmt"
	"sort"

	"parking-allocation-backend/internal/geo"
	"parking-allocation-backend/internal/model"
	"parking-allocation-backend/internal/spotname"
)

var (
	// ErrNoAvailableSpot is returned when the available-spot pool is empty.
	ErrNoAvailableSpot = errors.New("no available spots")

	// ErrInvalidPreference is returned when a stored preference fits neither
	// the lot's naming scheme nor one of the named reference points.
	ErrInvalidPreference = errors.New("invalid spot preference")
)

// TargetKind discriminates the outcome of preference resolution.
type TargetKind int

const (
	// TargetNone means no usable preference; allocation falls back to the
	// first available spot by name.
	TargetNone TargetKind = iota
	// TargetSpotName means the user wants one specific named spot.
	TargetSpotName
	// TargetCoordinate means the user wants the spot closest to a
	// reference coordinate.
	TargetCoordinate
)

// Target is a resolved placement preference.
type Target struct {
	Kind     TargetKind
	SpotName string
	Lat      float64
	Lng      float64
}

// ResolvePreference maps a user's stored preference and the lot config into
// a Target the engine can act on.
func ResolvePreference(user *model.User, cfg *model.ParkingConfig, scheme *spotname.Scheme) (Target, error) {
	switch user.PreferenceType {
	case model.PreferenceNone:
		return Target{Kind: TargetNone}, nil
	case model.PreferenceSpecific:
		if !scheme.Valid(user.PreferredSpot) {
			return Target{}, fmt.Errorf("%w: %q is not in %s", ErrInvalidPreference, user.PreferredSpot, scheme.Describe())
		}
		return Target{Kind: TargetSpotName, SpotName: user.PreferredSpot}, nil
	case model.PreferenceEntrance:
		return Target{Kind: TargetCoordinate, Lat: cfg.EntranceLat, Lng: cfg.EntranceLng}, nil
	case model.PreferenceExit:
		return Target{Kind: TargetCoordinate, Lat: cfg.ExitLat, Lng: cfg.ExitLng}, nil
	case model.PreferenceShop:
		return Target{Kind: TargetCoordinate, Lat: cfg.ShopLat, Lng: cfg.ShopLng}, nil
	default:
		return Target{}, fmt.Errorf("%w: unknown preference type %q", ErrInvalidPreference, user.PreferenceType)
	}
}

// SelectSpot picks exactly one spot from the available pool.
//
// An exact name match wins over distance. Otherwise the spot nearest the
// target coordinate wins, considering only spots that carry coordinates;
// equidistant spots are ordered by name so the result does not depend on
// store iteration order. With no usable preference the first spot by name
// ascending is returned.
func SelectSpot(available []model.Spot, target Target) (model.Spot, error) {
	if len(available) == 0 {
		return model.Spot{}, ErrNoAvailableSpot
	}

	if target.Kind == TargetSpotName {
		for _, spot := range available {
			if spot.Name == target.SpotName {
				return spot, nil
			}
		}
		// Preferred spot is taken; fall through to the default ordering.
	}

	if target.Kind == TargetCoordinate {
		type candidate struct {
			spot     model.Spot
			distance float64
		}
		candidates := make([]candidate, 0, len(available))
		for _, spot := range available {
			if !spot.HasCoordinates() {
				continue
			}
			candidates = append(candidates, candidate{
				spot:     spot,
				distance: geo.Distance(target.Lat, target.Lng, *spot.Lat, *spot.Lng),
			})
		}
		if len(candidates) > 0 {
			sort.Slice(candidates, func(i, j int) bool {
				if candidates[i].distance != candidates[j].distance {
					return candidates[i].distance < candidates[j].distance
				}
				return candidates[i].spot.Name < candidates[j].spot.Name
			})
			return candidates[0].spot, nil
		}
		// No spot in the pool carries coordinates; fall through.
	}

	first := available[0]
	for _, spot := range available[1:] {
		if spot.Name < first.Name {
			first = spot
		}
	}
	return first, nil
}
