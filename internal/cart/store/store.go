package store

import (
	"strings"
	"sync"
	"time"

	cartdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/cart/domain"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/clock"
)

// Store keeps one in-memory cart per session. Carts are explicit per-session
// state: nothing here is shared across sessions and nothing touches the
// network. Sessions idle longer than the TTL are dropped.
type Store struct {
	mu       sync.Mutex
	clk      clock.Clock
	ttl      time.Duration
	sessions map[string]*session
}

type session struct {
	cart      cartdomain.Cart
	touchedAt time.Time
}

func New(clk clock.Clock, ttl time.Duration) *Store {
	return &Store{
		clk:      clk,
		ttl:      ttl,
		sessions: make(map[string]*session),
	}
}

// Add merges a line into the session's cart. An existing line with the same
// item id absorbs the incoming quantity; its unit price, currency and title
// are preserved so a tampered payload cannot reprice a pending line.
func (s *Store) Add(sessionID string, line cartdomain.Line) (cartdomain.Cart, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return cartdomain.Cart{}, cartdomain.ErrInvalidSession
	}
	line.ItemID = strings.TrimSpace(line.ItemID)
	if line.ItemID == "" {
		return cartdomain.Cart{}, cartdomain.ErrInvalidItem
	}
	if line.Quantity <= 0 {
		return cartdomain.Cart{}, cartdomain.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID)
	merged := false
	for i := range sess.cart.Lines {
		if sess.cart.Lines[i].ItemID == line.ItemID {
			sess.cart.Lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		sess.cart.Lines = append(sess.cart.Lines, line)
	}

	now := s.clk.Now()
	sess.cart.UpdatedAt = now
	sess.touchedAt = now
	return copyCart(sess.cart), nil
}

// Remove drops the line with the given item id.
func (s *Store) Remove(sessionID, itemID string) (cartdomain.Cart, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return cartdomain.Cart{}, cartdomain.ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID)
	for i := range sess.cart.Lines {
		if sess.cart.Lines[i].ItemID == itemID {
			sess.cart.Lines = append(sess.cart.Lines[:i], sess.cart.Lines[i+1:]...)
			now := s.clk.Now()
			sess.cart.UpdatedAt = now
			sess.touchedAt = now
			return copyCart(sess.cart), nil
		}
	}
	return cartdomain.Cart{}, cartdomain.ErrLineNotFound
}

// Clear empties the session's cart.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, strings.TrimSpace(sessionID))
}

// Snapshot returns an immutable copy of the session's cart for checkout.
func (s *Store) Snapshot(sessionID string) cartdomain.Cart {
	sessionID = strings.TrimSpace(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || s.expired(sess) {
		delete(s.sessions, sessionID)
		return cartdomain.Cart{SessionID: sessionID}
	}
	sess.touchedAt = s.clk.Now()
	return copyCart(sess.cart)
}

// Prune drops all expired sessions and returns how many were removed.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// session returns the live session, resetting it first when expired.
func (s *Store) session(sessionID string) *session {
	sess, ok := s.sessions[sessionID]
	if ok && !s.expired(sess) {
		return sess
	}
	sess = &session{
		cart:      cartdomain.Cart{SessionID: sessionID},
		touchedAt: s.clk.Now(),
	}
	s.sessions[sessionID] = sess
	return sess
}

func (s *Store) expired(sess *session) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.clk.Now().Sub(sess.touchedAt) > s.ttl
}

func copyCart(cart cartdomain.Cart) cartdomain.Cart {
	out := cart
	out.Lines = make([]cartdomain.Line, len(cart.Lines))
	copy(out.Lines, cart.Lines)
	return out
}
