package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gopherchat/gopherchat/internal/auth"
	"github.com/gopherchat/gopherchat/internal/common"
	"github.com/gopherchat/gopherchat/internal/convo"
	"github.com/gopherchat/gopherchat/internal/models"
	"github.com/gopherchat/gopherchat/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already exists")
	ErrMissingFields      = errors.New("please fill in all fields")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrNotAuthenticated   = errors.New("no active user")
	ErrReplyPending       = errors.New("a reply is already pending for this session")
	ErrUnknownUser        = errors.New("unknown user")
	ErrUnknownChat        = errors.New("unknown chat")
)

const (
	minPasswordLen   = 8
	maxTitleLen      = 40
	defaultChatTitle = "New Chat"
)

// Controller coordinates one interactive session: the active user, the live
// transcript and every cross-entity invariant. All session state lives here
// explicitly, so independent sessions can coexist in one process.
type Controller struct {
	store     *storage.Store
	convo     *convo.Service
	hasAPIKey bool

	mu               sync.Mutex
	user             *models.User
	chats            []models.Chat
	transcript       []models.Message
	currentChatID    string
	temporary        bool
	pending          bool
	sidebarCollapsed bool
}

func NewController(store *storage.Store, svc *convo.Service, hasAPIKey bool) *Controller {
	return &Controller{store: store, convo: svc, hasAPIKey: hasAPIKey}
}

// RestoreSession re-enters the persisted current-user pointer and stored UI
// state, if any. It reports whether a user was restored.
func (c *Controller) RestoreSession(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st := c.store.AppState(ctx); st.SidebarCollapsed != nil {
		c.sidebarCollapsed = *st.SidebarCollapsed
	}

	id, ok := c.store.CurrentUserID(ctx)
	if !ok {
		return false
	}
	for _, u := range c.store.Users(ctx) {
		if u.ID == id {
			c.becomeLocked(ctx, u)
			return true
		}
	}
	return false
}

// Login resolves a user by case-insensitive email and exact match of the
// stored credential encoding. Any mismatch is the same opaque failure so the
// response never reveals which field was wrong.
func (c *Controller) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Read through to the store so logins see accounts created elsewhere.
	for _, u := range c.store.Users(ctx) {
		if strings.ToLower(u.Email) == email && auth.VerifyPassword(u.PasswordEnc, password) {
			if err := c.store.SetCurrentUserID(ctx, u.ID); err != nil {
				return nil, err
			}
			c.becomeLocked(ctx, u)
			return c.userCopyLocked(), nil
		}
	}
	return nil, ErrInvalidCredentials
}

// Register creates an account and immediately establishes it as the active
// session. Mock mode defaults to on exactly when no API key is configured.
func (c *Controller) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if len(password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, u := range c.store.Users(ctx) {
		if strings.ToLower(u.Email) == email {
			return nil, ErrEmailTaken
		}
	}

	user := models.User{
		ID:          uuid.NewString(),
		Email:       email,
		PasswordEnc: auth.EncodePassword(password),
		Plan:        models.PlanFree,
		CreatedAt:   time.Now(),
		Settings: models.UserSettings{
			Theme:      models.ThemeLight,
			UseMockAPI: !c.hasAPIKey,
		},
	}
	if err := c.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	if err := c.store.SetCurrentUserID(ctx, user.ID); err != nil {
		return nil, err
	}
	c.becomeLocked(ctx, user)
	return c.userCopyLocked(), nil
}

func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.SetCurrentUserID(ctx, ""); err != nil {
		return err
	}
	c.user = nil
	c.chats = nil
	c.resetChatLocked(false)
	return nil
}

// SwitchAccount activates another known user: their chats are reloaded, their
// theme reapplied, and the session lands on a fresh empty conversation.
func (c *Controller) SwitchAccount(ctx context.Context, userID string) (*models.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, u := range c.store.Users(ctx) {
		if u.ID == userID {
			if err := c.store.SetCurrentUserID(ctx, u.ID); err != nil {
				return nil, err
			}
			c.becomeLocked(ctx, u)
			return c.userCopyLocked(), nil
		}
	}
	return nil, ErrUnknownUser
}

func (c *Controller) becomeLocked(ctx context.Context, u models.User) {
	c.user = &u
	c.loadChatsLocked(ctx)
	c.resetChatLocked(false)
}

func (c *Controller) loadChatsLocked(ctx context.Context) {
	chats := c.store.UserChats(ctx, c.user.ID)
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	c.chats = chats
}

func (c *Controller) resetChatLocked(temporary bool) {
	c.temporary = temporary
	c.currentChatID = ""
	c.transcript = nil
}

// NewChat resets the composition state. No chat record exists yet; an id is
// minted only when the first message is actually sent.
func (c *Controller) NewChat(temporary bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetChatLocked(temporary)
}

func (c *Controller) SelectChat(id string) (*models.Chat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.chats {
		if c.chats[i].ID == id {
			c.currentChatID = id
			c.transcript = append([]models.Message(nil), c.chats[i].Messages...)
			c.temporary = false
			chat := c.chats[i]
			return &chat, nil
		}
	}
	return nil, ErrUnknownChat
}

func (c *Controller) DeleteChat(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return ErrNotAuthenticated
	}
	if err := c.store.DeleteChat(ctx, c.user.ID, id); err != nil {
		return err
	}
	c.loadChatsLocked(ctx)
	if c.currentChatID == id {
		c.resetChatLocked(false)
	}
	return nil
}

// ToggleTemporary flips incognito mode. Mid-conversation the flag cannot
// change in place; a fresh conversation starts in the opposite mode instead,
// abandoning the current in-memory transcript.
func (c *Controller) ToggleTemporary() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.transcript) == 0 {
		c.temporary = !c.temporary
	} else {
		c.resetChatLocked(!c.temporary)
	}
	return c.temporary
}

func (c *Controller) ToggleSidebar(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sidebarCollapsed = !c.sidebarCollapsed
	collapsed := c.sidebarCollapsed
	err := c.store.SaveAppState(ctx, models.StoredAppState{SidebarCollapsed: &collapsed})
	return collapsed, err
}

// ToggleTheme mutates and persists the active user record immediately.
func (c *Controller) ToggleTheme(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return "", ErrNotAuthenticated
	}
	u := *c.user
	if u.Settings.Theme == models.ThemeDark {
		u.Settings.Theme = models.ThemeLight
	} else {
		u.Settings.Theme = models.ThemeDark
	}
	if err := c.store.SaveUser(ctx, u); err != nil {
		return "", err
	}
	c.user = &u
	return u.Settings.Theme, nil
}

// ToggleMockAPI takes effect on the next conversation turn, never on one
// already in flight.
func (c *Controller) ToggleMockAPI(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return false, ErrNotAuthenticated
	}
	u := *c.user
	u.Settings.UseMockAPI = !u.Settings.UseMockAPI
	if err := c.store.SaveUser(ctx, u); err != nil {
		return false, err
	}
	c.user = &u
	return u.Settings.UseMockAPI, nil
}

func (c *Controller) UpgradeToPro(ctx context.Context) (*models.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return nil, ErrNotAuthenticated
	}
	u := *c.user
	u.Plan = models.PlanPro
	if err := c.store.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	c.user = &u
	return c.userCopyLocked(), nil
}

// SendMessage runs one conversation turn. The user message joins the live
// transcript before the reply arrives, and a brand-new conversation gets its
// id only now. At most one turn may be in flight per session; a provider
// failure becomes a visible model-role error turn and persists nothing.
func (c *Controller) SendMessage(ctx context.Context, text string) ([]models.Message, error) {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	if c.pending {
		c.mu.Unlock()
		return nil, ErrReplyPending
	}
	c.pending = true

	userMsg := models.Message{
		ID:        uuid.NewString(),
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	}
	history := append([]models.Message(nil), c.transcript...)
	c.transcript = append(c.transcript, userMsg)

	isNewChat := false
	if c.currentChatID == "" {
		id, err := common.NewULID()
		if err != nil {
			c.pending = false
			c.mu.Unlock()
			return nil, err
		}
		c.currentChatID = id
		isNewChat = true
	}
	chatID := c.currentChatID
	userID := c.user.ID
	useMock := c.user.Settings.UseMockAPI
	temporary := c.temporary
	c.mu.Unlock()

	// The lock is not held across the provider call; the pending flag keeps
	// this session to one outstanding turn.
	replyText, sources, convErr := c.convo.Converse(ctx, history, text, useMock)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.pending = false }()

	if convErr != nil {
		c.transcript = append(c.transcript, models.Message{
			ID:        uuid.NewString(),
			Role:      models.RoleModel,
			Content:   fmt.Sprintf("I'm sorry, I encountered an error: %s. Please check your API key or try enabling Mock Mode.", convErr.Error()),
			Timestamp: time.Now(),
		})
		return append([]models.Message(nil), c.transcript...), nil
	}

	c.transcript = append(c.transcript, models.Message{
		ID:        uuid.NewString(),
		Role:      models.RoleModel,
		Content:   replyText,
		Sources:   sources,
		Timestamp: time.Now(),
	})

	if !temporary {
		now := time.Now()
		createdAt := now
		if existing := c.chatByIDLocked(chatID); existing != nil {
			createdAt = existing.CreatedAt
		}
		chat := models.Chat{
			ID:          chatID,
			UserID:      userID,
			Title:       c.titleLocked(chatID, isNewChat, text),
			Messages:    append([]models.Message(nil), c.transcript...),
			IsTemporary: false,
			CreatedAt:   createdAt,
			UpdatedAt:   now,
		}
		if err := c.store.SaveChat(ctx, userID, chat); err != nil {
			return nil, err
		}
		c.loadChatsLocked(ctx)
	}
	return append([]models.Message(nil), c.transcript...), nil
}

// titleLocked computes a chat title only on first save; afterwards the
// existing title is kept.
func (c *Controller) titleLocked(chatID string, isNew bool, firstMessage string) string {
	if isNew {
		return deriveTitle(firstMessage)
	}
	if existing := c.chatByIDLocked(chatID); existing != nil && existing.Title != "" {
		return existing.Title
	}
	return defaultChatTitle
}

func (c *Controller) chatByIDLocked(id string) *models.Chat {
	for i := range c.chats {
		if c.chats[i].ID == id {
			return &c.chats[i]
		}
	}
	return nil
}

// deriveTitle truncates the first user message to 40 characters, appending an
// ellipsis marker when it was longer.
func deriveTitle(text string) string {
	r := []rune(text)
	if len(r) > maxTitleLen {
		return string(r[:maxTitleLen]) + "..."
	}
	return text
}

func (c *Controller) userCopyLocked() *models.User {
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Controller) CurrentUser() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userCopyLocked()
}

func (c *Controller) Chats() []models.Chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Chat(nil), c.chats...)
}

func (c *Controller) Transcript() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Message(nil), c.transcript...)
}

func (c *Controller) CurrentChatID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentChatID
}

func (c *Controller) Temporary() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.temporary
}

func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

func (c *Controller) SidebarCollapsed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sidebarCollapsed
}

// Users lists every known account, for the switch-account surface.
func (c *Controller) Users(ctx context.Context) []models.User {
	return c.store.Users(ctx)
}
