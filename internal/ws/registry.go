package ws

import (
	"sync"
	"time"
)

// session is a connection's affiliation record. It lives exactly as long as
// the connection is registered and is only ever touched under the registry
// mutex.
type session struct {
	client       *Client
	venueID      uint
	role         Role
	customerName string
	lastAck      time.Time
}

func (s *session) affiliated() bool {
	return s.venueID != 0
}

// Registry owns every live connection's record. The map is never handed out;
// connect, disconnect, queries and delivery all go through its methods, so
// the mutex here is the single mutation point for shared connection state.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*session),
	}
}

func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[c.id] = &session{
		client:  c,
		lastAck: time.Now(),
	}
}

func (r *Registry) Unregister(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(clientID)
}

// removeLocked drops the session, closes the send channel so the write pump
// exits, and closes the socket. Callers must hold the write lock; closing
// under the lock is what makes enqueue-after-close impossible.
func (r *Registry) removeLocked(clientID string) {
	sess, ok := r.sessions[clientID]
	if !ok {
		return
	}

	delete(r.sessions, clientID)
	close(sess.client.send)
	sess.client.close()
}

// Join sets the connection's affiliation. The customer name is only kept for
// guests. It reports false for unknown connections.
func (r *Registry) Join(clientID string, venueID uint, role Role, customerName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[clientID]
	if !ok {
		return false
	}

	sess.venueID = venueID
	sess.role = role
	if role == RoleGuest {
		sess.customerName = customerName
	} else {
		sess.customerName = ""
	}

	return true
}

// Leave clears the affiliation but keeps the connection registered. It
// returns the previous affiliation so the caller can notify interested
// parties about a departing guest.
func (r *Registry) Leave(clientID string) (venueID uint, role Role, customerName string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, found := r.sessions[clientID]
	if !found || !sess.affiliated() {
		return 0, "", "", false
	}

	venueID, role, customerName = sess.venueID, sess.role, sess.customerName
	sess.venueID = 0
	sess.role = ""
	sess.customerName = ""

	return venueID, role, customerName, true
}

func (r *Registry) Affiliation(clientID string) (venueID uint, role Role, customerName string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, found := r.sessions[clientID]
	if !found || !sess.affiliated() {
		return 0, "", "", false
	}

	return sess.venueID, sess.role, sess.customerName, true
}

func (r *Registry) TouchLiveness(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[clientID]; ok {
		sess.lastAck = time.Now()
	}
}

func (r *Registry) ByVenue(venueID uint) []string {
	return r.matching(func(s *session) bool {
		return s.venueID == venueID
	})
}

func (r *Registry) ByVenueAndRole(venueID uint, role Role) []string {
	return r.matching(func(s *session) bool {
		return s.venueID == venueID && s.role == role
	})
}

func (r *Registry) ByVenueAndCustomer(venueID uint, customerName string) []string {
	return r.matching(func(s *session) bool {
		return s.venueID == venueID && s.customerName == customerName && s.role == RoleGuest
	})
}

// Stale returns the connections whose last liveness acknowledgement is older
// than the timeout.
func (r *Registry) Stale(now time.Time, timeout time.Duration) []string {
	return r.matching(func(s *session) bool {
		return now.Sub(s.lastAck) > timeout
	})
}

func (r *Registry) matching(match func(*session) bool) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, sess := range r.sessions {
		if match(sess) {
			ids = append(ids, id)
		}
	}

	return ids
}

// Evict forcibly removes a connection, closing its socket. It reports whether
// the connection was still registered.
func (r *Registry) Evict(clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[clientID]; !ok {
		return false
	}
	r.removeLocked(clientID)

	return true
}

func (r *Registry) ConnectionCount(venueID uint) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, sess := range r.sessions {
		if sess.venueID == venueID {
			count++
		}
	}

	return count
}

func (r *Registry) Stats(venueID uint) VenueStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := VenueStats{GuestNames: []string{}}
	for _, sess := range r.sessions {
		if sess.venueID != venueID {
			continue
		}
		stats.TotalConnections++
		switch sess.role {
		case RoleBartender:
			stats.Bartenders++
		case RoleGuest:
			stats.Guests++
			if sess.customerName != "" {
				stats.GuestNames = append(stats.GuestNames, sess.customerName)
			}
		}
	}

	return stats
}

// deliver enqueues the message on every matching connection. Peers whose
// queue is full or gone are pruned in place and the delivery continues; a
// single dead peer never aborts the rest of the fan-out. It returns how many
// connections received the message and how many were pruned.
func (r *Registry) deliver(match func(*session) bool, message []byte) (sent, dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, sess := range r.sessions {
		if !match(sess) {
			continue
		}
		if sess.client.enqueue(message) {
			sent++
			continue
		}
		r.removeLocked(id)
		dropped++
	}

	return sent, dropped
}

// send delivers a message to one connection, pruning it on failure.
func (r *Registry) send(clientID string, message []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[clientID]
	if !ok {
		return false
	}
	if !sess.client.enqueue(message) {
		r.removeLocked(clientID)
		return false
	}

	return true
}
