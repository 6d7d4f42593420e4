// Package parking implements the scan-driven session state machine. A scan
// token does not say whether the vehicle is arriving or leaving; the gateway
// infers it from the presence of an open session and drives the spot
// registry and session ledger accordingly.
package parking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"parking-allocation-backend/internal/allocation"
	"parking-allocation-backend/internal/model"
	"parking-allocation-backend/internal/spotname"
	"parking-allocation-backend/internal/store"
)

// Action tags a scan result as an arrival or a departure.
type Action string

const (
	ActionEntrance Action = "entrance"
	ActionExit     Action = "exit"
)

// ScanResult is the outcome of a successful scan.
type ScanResult struct {
	Action  Action         `json:"action"`
	Message string         `json:"message"`
	Session *model.Session `json:"session"`
	Spot    *model.Spot    `json:"allocatedSpot,omitempty"`
}

// Gateway is the entry point for scan events.
type Gateway struct {
	store         store.Store
	scheme        *spotname.Scheme
	retryAttempts int
	now           func() time.Time
}

// NewGateway creates a scan gateway. retryAttempts bounds how often the
// arrival path re-selects after losing a reservation race.
func NewGateway(s store.Store, scheme *spotname.Scheme, retryAttempts int) *Gateway {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &Gateway{
		store:         s,
		scheme:        scheme,
		retryAttempts: retryAttempts,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Scan processes one scan event. spotID, when non-nil, is an explicit spot
// request that bypasses preference-based allocation on arrival.
func (g *Gateway) Scan(ctx context.Context, token string, spotID *int64) (*ScanResult, error) {
	user, err := g.store.FindUserByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	open, err := g.store.FindOpenSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return g.exit(ctx, open)
	}
	return g.entrance(ctx, user, spotID)
}

// exit closes the open session and releases its spot.
func (g *Gateway) exit(ctx context.Context, open *model.Session) (*ScanResult, error) {
	closed, err := g.store.CloseSession(ctx, open.ID, g.now())
	if err != nil {
		return nil, err
	}
	if err := g.store.ReleaseSpot(ctx, closed.SpotID); err != nil {
		return nil, fmt.Errorf("session %d closed but spot %d not released: %w", closed.ID, closed.SpotID, err)
	}
	closed.Spot.Status = model.SpotAvailable
	return &ScanResult{
		Action:  ActionExit,
		Message: "Parking session ended",
		Session: closed,
		Spot:    &closed.Spot,
	}, nil
}

// entrance reserves a spot and opens a session against it.
func (g *Gateway) entrance(ctx context.Context, user *model.User, spotID *int64) (*ScanResult, error) {
	var spot *model.Spot
	var err error
	if spotID != nil {
		spot, err = g.reserveExplicit(ctx, *spotID)
	} else {
		spot, err = g.allocate(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	session, err := g.store.OpenSession(ctx, user.ID, spot.ID, g.now())
	if err != nil {
		// The spot is reserved but the session never opened; hand the
		// spot back before surfacing the error.
		if relErr := g.store.ReleaseSpot(ctx, spot.ID); relErr != nil {
			log.Printf("failed to release spot %d after open-session error: %v", spot.ID, relErr)
		}
		return nil, err
	}

	return &ScanResult{
		Action:  ActionEntrance,
		Message: "Parking session started",
		Session: session,
		Spot:    &session.Spot,
	}, nil
}

// reserveExplicit validates and reserves a caller-chosen spot.
func (g *Gateway) reserveExplicit(ctx context.Context, spotID int64) (*model.Spot, error) {
	spot, err := g.store.GetSpot(ctx, spotID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSpotNotFound
	}
	if err != nil {
		return nil, err
	}
	if spot.Status != model.SpotAvailable {
		return nil, ErrSpotUnavailable
	}
	reserved, err := g.store.TryReserveSpot(ctx, spot.ID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		// Lost the race for the requested spot; the caller asked for this
		// one specifically, so there is nothing to retry.
		return nil, ErrSpotUnavailable
	}
	spot.Status = model.SpotOccupied
	return spot, nil
}

// allocate runs preference-based selection over the available pool and
// reserves the chosen spot. Selection works on an advisory snapshot;
// TryReserveSpot decides the winner, and losers re-select from a fresh
// snapshot up to a bounded number of attempts.
func (g *Gateway) allocate(ctx context.Context, user *model.User) (*model.Spot, error) {
	cfg, err := g.store.GetParkingConfig(ctx)
	if err != nil {
		return nil, err
	}

	target, err := allocation.ResolvePreference(user, cfg, g.scheme)
	if err != nil {
		// A corrupt stored preference must not block arrival; degrade to
		// no-preference allocation.
		log.Printf("user %d has unusable preference: %v", user.ID, err)
		target = allocation.Target{Kind: allocation.TargetNone}
	}

	for attempt := 0; attempt < g.retryAttempts; attempt++ {
		available, err := g.store.ListAvailableSpots(ctx)
		if err != nil {
			return nil, err
		}
		spot, err := allocation.SelectSpot(available, target)
		if err != nil {
			// An empty pool is terminal; retrying cannot help.
			return nil, err
		}
		reserved, err := g.store.TryReserveSpot(ctx, spot.ID)
		if err != nil {
			return nil, err
		}
		if reserved {
			spot.Status = model.SpotOccupied
			return &spot, nil
		}
		log.Printf("lost reservation race for spot %s (attempt %d/%d), re-selecting", spot.Name, attempt+1, g.retryAttempts)
	}
	return nil, allocation.ErrNoAvailableSpot
}
