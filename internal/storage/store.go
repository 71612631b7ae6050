package storage

import (
	"context"
	"encoding/json"

	"github.com/gopherchat/gopherchat/internal/models"
)

const (
	keyUsers         = "gopherchat:users"
	keyCurrentUserID = "gopherchat:current_user_id"
	keyAppState      = "gopherchat:app_state"
	keyChatsPrefix   = "gopherchat:chats:"
)

// Store persists users, the current-session pointer, UI state and per-user
// chat lists as whole-region JSON blobs over a KV backend. Every mutation is
// read-modify-write of the full region; concurrent writers can clobber each
// other, which is an accepted limitation of this layout.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// readRegion unmarshals the region at key into dst. A missing key, a backend
// error or corrupt content all report false so the caller falls back to the
// region's default value; corruption is never surfaced as an error.
func (s *Store) readRegion(ctx context.Context, key string, dst any) bool {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil || !found {
		return false
	}
	return json.Unmarshal([]byte(raw), dst) == nil
}

func (s *Store) writeRegion(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, string(b))
}

func (s *Store) Users(ctx context.Context) []models.User {
	var users []models.User
	if !s.readRegion(ctx, keyUsers, &users) {
		return []models.User{}
	}
	return users
}

// SaveUser upserts by id: replace in place when the id exists, append
// otherwise.
func (s *Store) SaveUser(ctx context.Context, user models.User) error {
	users := s.Users(ctx)
	replaced := false
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = user
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, user)
	}
	return s.writeRegion(ctx, keyUsers, users)
}

func (s *Store) CurrentUserID(ctx context.Context) (string, bool) {
	id, found, err := s.kv.Get(ctx, keyCurrentUserID)
	if err != nil || !found || id == "" {
		return "", false
	}
	return id, true
}

// SetCurrentUserID stores the active session pointer. An empty id clears it.
func (s *Store) SetCurrentUserID(ctx context.Context, id string) error {
	if id == "" {
		return s.kv.Delete(ctx, keyCurrentUserID)
	}
	return s.kv.Set(ctx, keyCurrentUserID, id)
}

func (s *Store) UserChats(ctx context.Context, userID string) []models.Chat {
	var chats []models.Chat
	if !s.readRegion(ctx, keyChatsPrefix+userID, &chats) {
		return []models.Chat{}
	}
	return chats
}

func (s *Store) SaveUserChats(ctx context.Context, userID string, chats []models.Chat) error {
	return s.writeRegion(ctx, keyChatsPrefix+userID, chats)
}

// SaveChat upserts a chat in the owner's list, placing genuinely new chats at
// the head. Temporary chats are never persisted; saving one is a no-op.
func (s *Store) SaveChat(ctx context.Context, userID string, chat models.Chat) error {
	if chat.IsTemporary {
		return nil
	}

	chats := s.UserChats(ctx, userID)
	for i := range chats {
		if chats[i].ID == chat.ID {
			chats[i] = chat
			return s.SaveUserChats(ctx, userID, chats)
		}
	}
	chats = append([]models.Chat{chat}, chats...)
	return s.SaveUserChats(ctx, userID, chats)
}

func (s *Store) DeleteChat(ctx context.Context, userID, chatID string) error {
	chats := s.UserChats(ctx, userID)
	filtered := chats[:0]
	for _, c := range chats {
		if c.ID != chatID {
			filtered = append(filtered, c)
		}
	}
	return s.SaveUserChats(ctx, userID, filtered)
}

func (s *Store) AppState(ctx context.Context) models.StoredAppState {
	var state models.StoredAppState
	if !s.readRegion(ctx, keyAppState, &state) {
		return models.StoredAppState{}
	}
	return state
}

// SaveAppState merges the given partial state onto what is already stored so
// unrelated fields persisted earlier survive the write.
func (s *Store) SaveAppState(ctx context.Context, next models.StoredAppState) error {
	merged := s.AppState(ctx).Merge(next)
	return s.writeRegion(ctx, keyAppState, merged)
}
