package conversation

import (
	"sync"
	"time"
)

// DefaultMaxLoggedMessages bounds the per-user message log.
const DefaultMaxLoggedMessages = 50

// ProfileConfig bounds per-user profile retention.
type ProfileConfig struct {
	MaxMessages int // rolling message-log size per user
}

func (c ProfileConfig) withDefaults() ProfileConfig {
	if c.MaxMessages <= 0 {
		c.MaxMessages = DefaultMaxLoggedMessages
	}
	return c
}

// LoggedMessage is one entry in a user's rolling message log.
type LoggedMessage struct {
	Content   string
	Timestamp time.Time
}

// UserProfile is a snapshot of one user's accumulated activity. Profiles
// never expire; TotalMessages counts every recorded message, including
// those already rotated out of MessageLog.
type UserProfile struct {
	UserID          string
	Username        string // most recently seen display name
	FirstSeen       time.Time
	LastInteraction time.Time
	TotalMessages   int
	MessageLog      []LoggedMessage
}

type profileState struct {
	username        string
	firstSeen       time.Time
	lastInteraction time.Time
	totalMessages   int
	messageLog      []LoggedMessage
}

// ProfileStore accumulates per-user activity across all channels. Safe
// for concurrent use; reads return copies.
type ProfileStore struct {
	cfg ProfileConfig

	mu       sync.Mutex
	profiles map[string]*profileState
}

// NewProfileStore builds an empty store. Zero config fields take the
// package defaults.
func NewProfileStore(cfg ProfileConfig) *ProfileStore {
	return &ProfileStore{
		cfg:      cfg.withDefaults(),
		profiles: make(map[string]*profileState),
	}
}

// Record logs one message from the user. First sight of a user fixes
// FirstSeen; the message log drops its oldest entry once full.
func (s *ProfileStore) Record(userID, username, content string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		p = &profileState{firstSeen: now}
		s.profiles[userID] = p
	}
	p.username = username
	p.lastInteraction = now
	p.totalMessages++
	p.messageLog = append(p.messageLog, LoggedMessage{Content: content, Timestamp: now})
	if excess := len(p.messageLog) - s.cfg.MaxMessages; excess > 0 {
		p.messageLog = append(p.messageLog[:0], p.messageLog[excess:]...)
	}
}

// Get returns a snapshot of the user's profile. The second return is
// false when the user has never been recorded.
func (s *ProfileStore) Get(userID string) (UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return UserProfile{}, false
	}
	log := make([]LoggedMessage, len(p.messageLog))
	copy(log, p.messageLog)
	return UserProfile{
		UserID:          userID,
		Username:        p.username,
		FirstSeen:       p.firstSeen,
		LastInteraction: p.lastInteraction,
		TotalMessages:   p.totalMessages,
		MessageLog:      log,
	}, true
}

// Len returns the number of known users.
func (s *ProfileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles)
}
