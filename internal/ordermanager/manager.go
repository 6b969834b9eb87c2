// Package ordermanager maintains the registry of live orders, enforces
// the order status machine, aggregates fills, and fans status changes out
// to registered listeners (used by persistence and UI broadcast layers
// that live outside the core).
package ordermanager

import (
	"errors"
	"sync"

	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/rs/zerolog"
)

// ErrUnknownOrder is returned when a lifecycle event names a client or
// venue order id the manager has never seen.
var ErrUnknownOrder = errors.New("ordermanager: unknown order")

// Listener observes every status transition the manager makes. Expressed
// as a one-way capability (registered here, never holding a back-pointer
// into the manager) per SPEC_FULL.md §9's note on cyclic references.
type Listener interface {
	OnOrderUpdate(order *domain.Order, oldStatus, newStatus domain.OrderStatus, at int64)
}

// ListenerFunc adapts a plain func to the Listener interface.
type ListenerFunc func(order *domain.Order, oldStatus, newStatus domain.OrderStatus, at int64)

func (f ListenerFunc) OnOrderUpdate(order *domain.Order, oldStatus, newStatus domain.OrderStatus, at int64) {
	f(order, oldStatus, newStatus, at)
}

// allowedTransitions enumerates §4.2's status machine. A from-state with
// no entry, or a to-state absent from its entry's set, is an error the
// manager ignores with a warning rather than applying.
var allowedTransitions = map[domain.OrderStatus]map[domain.OrderStatus]bool{
	domain.StatusPending: {
		domain.StatusSubmitted: true,
		domain.StatusRejected:  true,
	},
	domain.StatusSubmitted: {
		domain.StatusAccepted: true,
		domain.StatusRejected: true,
	},
	domain.StatusAccepted: {
		domain.StatusPartiallyFilled: true,
		domain.StatusFilled:          true,
		domain.StatusCancelled:       true,
		domain.StatusRejected:        true,
		domain.StatusExpired:         true,
	},
	domain.StatusPartiallyFilled: {
		domain.StatusPartiallyFilled: true,
		domain.StatusFilled:          true,
		domain.StatusCancelled:       true,
		domain.StatusRejected:        true,
		domain.StatusExpired:         true,
	},
}

// Manager owns clientOrderID -> Order and exchangeOrderID -> Order maps,
// written only from the OrderHandler stage; external readers get pointers
// to the live orders via ActiveOrders/Get and must treat them as read-only.
type Manager struct {
	mu         sync.RWMutex
	byClientID map[uint64]*domain.Order
	byVenueID  map[string]*domain.Order
	listeners  []Listener
	log        zerolog.Logger
}

// New builds an empty Manager.
func New(log zerolog.Logger) *Manager {
	return &Manager{
		byClientID: make(map[uint64]*domain.Order),
		byVenueID:  make(map[string]*domain.Order),
		log:        log.With().Str("component", "ordermanager").Logger(),
	}
}

// AddListener registers an observer for every future status transition.
func (m *Manager) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Register records a newly submitted order under its client id. Called on
// NEW_ORDER, after the synchronous risk check has approved the order.
func (m *Manager) Register(o *domain.Order) {
	m.mu.Lock()
	m.byClientID[o.ClientOrderID] = o
	m.mu.Unlock()
}

// Get returns the order registered under clientID, if any.
func (m *Manager) Get(clientID uint64) (*domain.Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.byClientID[clientID]
	return o, ok
}

// GetByVenueID returns the order registered under venueOrderID, if any.
func (m *Manager) GetByVenueID(venueOrderID string) (*domain.Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.byVenueID[venueOrderID]
	return o, ok
}

// ActiveOrders returns a snapshot slice of every order currently in
// {PENDING, SUBMITTED, ACCEPTED, PARTIALLY_FILLED}. The slice holds
// pointers to the live orders: callers must treat them as read-only, since
// only the OrderHandler stage is allowed to mutate them.
func (m *Manager) ActiveOrders() []*domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Order, 0, len(m.byClientID))
	for _, o := range m.byClientID {
		if o.Status.IsActive() {
			out = append(out, o)
		}
	}
	return out
}

// transition applies the status machine, logging and declining any
// transition absent from allowedTransitions. Caller must hold m.mu.
func (m *Manager) transition(o *domain.Order, to domain.OrderStatus, at int64) bool {
	if o.Status.IsTerminal() {
		m.log.Warn().
			Str("from", o.Status.String()).
			Str("to", to.String()).
			Uint64("client_order_id", o.ClientOrderID).
			Msg("ignoring transition out of a terminal order status")
		return false
	}
	allowed := allowedTransitions[o.Status]
	if !allowed[to] {
		m.log.Warn().
			Str("from", o.Status.String()).
			Str("to", to.String()).
			Uint64("client_order_id", o.ClientOrderID).
			Msg("ignoring disallowed order status transition")
		return false
	}
	old := o.Status
	o.Status = to
	o.UpdatedAt = at
	m.notify(o, old, to, at)
	return true
}

func (m *Manager) notify(o *domain.Order, old, new domain.OrderStatus, at int64) {
	for _, l := range m.listeners {
		l.OnOrderUpdate(o, old, new, at)
	}
}

// Submit transitions an order from PENDING to SUBMITTED, recording the
// submit timestamp for latency metrics.
func (m *Manager) Submit(clientID uint64, at int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byClientID[clientID]
	if !ok {
		return ErrUnknownOrder
	}
	if m.transition(o, domain.StatusSubmitted, at) {
		o.SubmittedAt = at
	}
	return nil
}

// Accept transitions an order to ACCEPTED and records its venue order id.
func (m *Manager) Accept(clientID uint64, venueOrderID string, at int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byClientID[clientID]
	if !ok {
		return ErrUnknownOrder
	}
	if m.transition(o, domain.StatusAccepted, at) {
		o.VenueOrderID = venueOrderID
		o.AcceptedAt = at
		if venueOrderID != "" {
			m.byVenueID[venueOrderID] = o
		}
	}
	return nil
}

// Reject transitions an order to REJECTED with reason.
func (m *Manager) Reject(clientID uint64, reason string, at int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byClientID[clientID]
	if !ok {
		return ErrUnknownOrder
	}
	if m.transition(o, domain.StatusRejected, at) {
		o.RejectReason = reason
	}
	return nil
}

// Cancel transitions an order to CANCELLED. A cancel-ack on an
// already-terminal order (e.g. a fill raced it) is ignored, matching §5's
// cancellation race rule.
func (m *Manager) Cancel(clientID uint64, at int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byClientID[clientID]
	if !ok {
		return ErrUnknownOrder
	}
	m.transition(o, domain.StatusCancelled, at)
	return nil
}

// Expire transitions an order to EXPIRED (time-in-force elapsed).
func (m *Manager) Expire(clientID uint64, at int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byClientID[clientID]
	if !ok {
		return ErrUnknownOrder
	}
	m.transition(o, domain.StatusExpired, at)
	return nil
}

// Fill folds an execution into the order: volume-weighted average fill
// price over all fills, filled quantity, and a transition to FILLED or
// PARTIALLY_FILLED depending on whether the cumulative fill reaches the
// order's quantity. A fill against a non-{ACCEPTED,PARTIALLY_FILLED}
// order is ignored with a warning; a non-positive fill, or one larger than
// the order's remaining quantity, is not applied and returns an
// InvariantError.
func (m *Manager) Fill(clientID uint64, fillQty, fillPrice, at int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byClientID[clientID]
	if !ok {
		return ErrUnknownOrder
	}
	if o.Status != domain.StatusAccepted && o.Status != domain.StatusPartiallyFilled {
		m.log.Warn().
			Str("status", o.Status.String()).
			Uint64("client_order_id", clientID).
			Msg("ignoring fill against an order not ACCEPTED or PARTIALLY_FILLED")
		return nil
	}
	if fillQty <= 0 || fillQty > o.RemainingQuantity() {
		return &domain.InvariantError{Component: "ordermanager", Detail: "fill quantity outside (0, remaining quantity]"}
	}
	old := o.Status
	o.ApplyFill(fillQty, fillPrice, at)
	m.notify(o, old, o.Status, at)
	return nil
}
