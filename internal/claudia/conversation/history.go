package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// History defaults mirror the service limits: a channel keeps at most 50
// turns and is forgotten after 48 hours of silence.
const (
	DefaultMaxTurns = 50
	DefaultMaxAge   = 48 * time.Hour
)

// HistoryConfig bounds per-channel history retention.
type HistoryConfig struct {
	MaxTurns int           // rolling window size per channel
	MaxAge   time.Duration // inactivity after which a channel expires
}

func (c HistoryConfig) withDefaults() HistoryConfig {
	if c.MaxTurns <= 0 {
		c.MaxTurns = DefaultMaxTurns
	}
	if c.MaxAge <= 0 {
		c.MaxAge = DefaultMaxAge
	}
	return c
}

// ChannelConversation is a snapshot of one channel's rolling history.
type ChannelConversation struct {
	ID              string // stable identity for the conversation's lifetime
	Turns           []Turn
	LastInteraction time.Time
}

type channelState struct {
	id              string
	turns           []Turn
	lastInteraction time.Time
}

// HistoryStore keeps a bounded rolling conversation per channel. All
// methods are safe for concurrent use; reads return copies so callers
// never observe later mutation.
type HistoryStore struct {
	cfg HistoryConfig

	mu       sync.Mutex
	channels map[string]*channelState
}

// NewHistoryStore builds an empty store. Zero config fields take the
// package defaults.
func NewHistoryStore(cfg HistoryConfig) *HistoryStore {
	return &HistoryStore{
		cfg:      cfg.withDefaults(),
		channels: make(map[string]*channelState),
	}
}

func (s *HistoryStore) channel(channelID string) *channelState {
	ch, ok := s.channels[channelID]
	if !ok {
		ch = &channelState{id: uuid.NewString()}
		s.channels[channelID] = ch
	}
	return ch
}

// Touch marks the channel active at now, creating it if absent. A touched
// channel survives an immediately following sweep even when it holds no
// turns yet.
func (s *HistoryStore) Touch(channelID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := s.channel(channelID)
	if now.After(ch.lastInteraction) {
		ch.lastInteraction = now
	}
}

// Append records a turn in the channel, creating the channel if absent.
// When the window is full the oldest turns are dropped from the head.
func (s *HistoryStore) Append(channelID string, turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := s.channel(channelID)
	ch.turns = append(ch.turns, turn)
	if excess := len(ch.turns) - s.cfg.MaxTurns; excess > 0 {
		ch.turns = append(ch.turns[:0], ch.turns[excess:]...)
	}
	if turn.Timestamp.After(ch.lastInteraction) {
		ch.lastInteraction = turn.Timestamp
	}
}

// Get returns a snapshot of the channel's conversation. The second return
// is false when the channel is unknown.
func (s *HistoryStore) Get(channelID string) (ChannelConversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[channelID]
	if !ok {
		return ChannelConversation{}, false
	}
	turns := make([]Turn, len(ch.turns))
	copy(turns, ch.turns)
	return ChannelConversation{
		ID:              ch.id,
		Turns:           turns,
		LastInteraction: ch.lastInteraction,
	}, true
}

// Clear forgets the channel entirely. It reports whether the channel
// existed.
func (s *HistoryStore) Clear(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channels[channelID]; !ok {
		return false
	}
	delete(s.channels, channelID)
	return true
}

// SweepExpired removes every channel whose inactivity strictly exceeds
// MaxAge at now and returns the removed channel IDs. A channel exactly at
// the boundary is kept.
func (s *HistoryStore) SweepExpired(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	for id, ch := range s.channels {
		if now.Sub(ch.lastInteraction) > s.cfg.MaxAge {
			delete(s.channels, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Len returns the number of tracked channels.
func (s *HistoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.channels)
}
