package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/datastore"
	"github.com/rs/zerolog/log"

	"github.com/tt-P607/biometric-sleep-bot/internal/sleep"
)

const (
	sessionsKey   = "sleep_sessions"
	suppressedKey = "suppressed_history"
	commandsKey   = "command_history"

	suppressedHistoryLimit = 50
	commandHistoryLimit    = 20
)

// Storage is the durability layer: session sleep records, the history of
// suppressed messages (so the agent can see what happened while it slept),
// and an admin command log. Everything lives in one JSON-file datastore.
//
// The datastore serializes individual Get/Set calls only; mu guards the
// read-modify-write sequences, since discordgo dispatches handlers for
// different sessions concurrently.
type Storage struct {
	mu sync.Mutex
	ds *datastore.DataStore
}

// SuppressedMessage is one intercepted message kept for the record.
type SuppressedMessage struct {
	SessionKey string    `json:"session_key"`
	ChannelID  string    `json:"channel_id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Content    string    `json:"content"`
	Kind       string    `json:"kind"`
	Mood       string    `json:"mood"`
	Datetime   time.Time `json:"datetime"`
}

// CommandHistoryRecord is one executed admin command.
type CommandHistoryRecord struct {
	GuildID  string    `json:"guild_id"`
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Command  string    `json:"command"`
	Param    string    `json:"param"`
	Datetime time.Time `json:"datetime"`
}

// New opens (or creates) the datastore at filePath.
func New(ctx context.Context, filePath string) (*Storage, error) {
	ds, err := datastore.New(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("open datastore: %w", err)
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// --- sleep.Store implementation ---

// sessions reads the full session map. Caller must hold mu.
func (s *Storage) sessions() map[string]sleep.SessionRecord {
	out := make(map[string]sleep.SessionRecord)
	if _, err := s.ds.Get(sessionsKey, &out); err != nil {
		log.Warn().Err(err).Msg("storage: dropping unreadable session records")
		return make(map[string]sleep.SessionRecord)
	}
	return out
}

// SaveSession persists one session record.
func (s *Storage) SaveSession(key string, rec sleep.SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sessions()
	all[key] = rec
	if err := s.ds.Set(sessionsKey, all); err != nil {
		log.Error().Err(err).Str("session", key).Msg("storage: session save failed")
	}
}

// DeleteSession removes one session record.
func (s *Storage) DeleteSession(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sessions()
	delete(all, key)
	if err := s.ds.Set(sessionsKey, all); err != nil {
		log.Error().Err(err).Str("session", key).Msg("storage: session delete failed")
	}
}

// LoadSessions returns every persisted session record, for engine restore.
func (s *Storage) LoadSessions() map[string]sleep.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions()
}

// --- suppressed-message history ---

// AppendSuppressed records an intercepted message, keeping the most recent
// entries per session.
func (s *Storage) AppendSuppressed(m SuppressedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make(map[string][]SuppressedMessage)
	if _, err := s.ds.Get(suppressedKey, &all); err != nil {
		return err
	}
	list := append(all[m.SessionKey], m)
	if len(list) > suppressedHistoryLimit {
		list = list[len(list)-suppressedHistoryLimit:]
	}
	all[m.SessionKey] = list
	return s.ds.Set(suppressedKey, all)
}

// FetchSuppressed returns the recorded suppressed messages for a session,
// oldest first.
func (s *Storage) FetchSuppressed(sessionKey string) ([]SuppressedMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make(map[string][]SuppressedMessage)
	if _, err := s.ds.Get(suppressedKey, &all); err != nil {
		return nil, err
	}
	return all[sessionKey], nil
}

// --- admin command log ---

// AppendCommandToHistory logs one executed command, keeping the most recent
// entries.
func (s *Storage) AppendCommandToHistory(rec CommandHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []CommandHistoryRecord
	if _, err := s.ds.Get(commandsKey, &list); err != nil {
		return err
	}
	list = append(list, rec)
	if len(list) > commandHistoryLimit {
		list = list[len(list)-commandHistoryLimit:]
	}
	return s.ds.Set(commandsKey, list)
}

// FetchCommandHistory returns the recent command log, oldest first.
func (s *Storage) FetchCommandHistory() ([]CommandHistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []CommandHistoryRecord
	if _, err := s.ds.Get(commandsKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}
