package store

import "sync"

// PresenceIndex maps a user ID to the set of their live sessions. Presence
// transitions are count-based: a user comes online when their first session
// appears and goes offline when the last one vanishes, so duplicate
// sessions never double-fire presence events. Empty entries are removed.
type PresenceIndex struct {
	mu       sync.Mutex
	sessions map[string]map[string]struct{}
}

// NewPresenceIndex creates an empty index.
func NewPresenceIndex() *PresenceIndex {
	return &PresenceIndex{sessions: make(map[string]map[string]struct{})}
}

// Add registers a session for a user and reports whether this was the
// user's 0 -> 1 transition (they just came online).
func (p *PresenceIndex) Add(userID, sessionID string) (cameOnline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.sessions[userID]
	if !ok {
		set = make(map[string]struct{})
		p.sessions[userID] = set
	}
	set[sessionID] = struct{}{}
	return len(set) == 1
}

// Remove drops a session for a user and reports whether this was the
// user's 1 -> 0 transition (they just went offline).
func (p *PresenceIndex) Remove(userID, sessionID string) (wentOffline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.sessions[userID]
	if !ok {
		return false
	}
	if _, present := set[sessionID]; !present {
		return false
	}
	delete(set, sessionID)
	if len(set) == 0 {
		delete(p.sessions, userID)
		return true
	}
	return false
}

// IsOnline reports whether a user has at least one live session.
func (p *PresenceIndex) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions[userID]) > 0
}

// SessionIDs returns a snapshot of a user's live session IDs.
func (p *PresenceIndex) SessionIDs(userID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.sessions[userID]))
	for id := range p.sessions[userID] {
		ids = append(ids, id)
	}
	return ids
}
