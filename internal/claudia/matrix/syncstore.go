package matrix

// syncstore.go implements mautrix.SyncStore on top of the Claudia SQLite
// store. Persisting the next_batch token across restarts prevents the bot
// from replaying old room history and re-answering questions that were
// already handled in a previous run.

import (
	"context"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"

	"github.com/JackJackJ/claudia/internal/claudia/store"
)

var _ mautrix.SyncStore = (*DBSyncStore)(nil)

// DBSyncStore implements the mautrix.SyncStore interface using the SQLite
// store. Each value is a row in matrix_sync_state keyed by (user_id, key).
type DBSyncStore struct {
	store *store.Store
}

// NewDBSyncStore creates a DBSyncStore backed by the given store.
func NewDBSyncStore(s *store.Store) *DBSyncStore {
	return &DBSyncStore{store: s}
}

// SaveFilterID persists the Matrix event-filter ID for the given user.
func (s *DBSyncStore) SaveFilterID(ctx context.Context, userID id.UserID, filterID string) error {
	return s.store.SaveSyncValue(ctx, userID.String(), "filter_id", filterID)
}

// LoadFilterID retrieves the persisted event-filter ID for the given user.
// Returns ("", nil) when no filter has been saved yet.
func (s *DBSyncStore) LoadFilterID(ctx context.Context, userID id.UserID) (string, error) {
	return s.store.LoadSyncValue(ctx, userID.String(), "filter_id")
}

// SaveNextBatch persists the opaque /sync next_batch token so the bot can
// resume from the correct position after a restart.
func (s *DBSyncStore) SaveNextBatch(ctx context.Context, userID id.UserID, nextBatchToken string) error {
	return s.store.SaveSyncValue(ctx, userID.String(), "next_batch", nextBatchToken)
}

// LoadNextBatch retrieves the last saved next_batch token. Returns
// ("", nil) when no token has been saved yet.
func (s *DBSyncStore) LoadNextBatch(ctx context.Context, userID id.UserID) (string, error) {
	return s.store.LoadSyncValue(ctx, userID.String(), "next_batch")
}
