package models

import "time"

const (
	PlanFree = "free"
	PlanPro  = "pro"

	ThemeLight = "light"
	ThemeDark  = "dark"

	RoleUser  = "user"
	RoleModel = "model"
)

type UserSettings struct {
	Theme      string `json:"theme"`
	UseMockAPI bool   `json:"use_mock_api"`
}

type User struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	PasswordEnc string       `json:"password_enc"` // reversible demo encoding, not a hash
	Plan        string       `json:"plan"`
	CreatedAt   time.Time    `json:"created_at"`
	Settings    UserSettings `json:"settings"`
}

// Source is a citation attached to a model message when the reply was
// produced with search grounding.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Message is immutable once created. Sources are only ever set on model-role
// messages from the real API path.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []Source  `json:"sources,omitempty"`
}

type Chat struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Messages    []Message `json:"messages"`
	IsTemporary bool      `json:"is_temporary"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StoredAppState holds persisted UI preferences. Fields are pointers so a
// partial state can be merged without clobbering fields that were not set.
type StoredAppState struct {
	SidebarCollapsed *bool `json:"sidebar_collapsed,omitempty"`
}

// Merge overlays the fields present in next onto s and returns the result.
func (s StoredAppState) Merge(next StoredAppState) StoredAppState {
	if next.SidebarCollapsed != nil {
		s.SidebarCollapsed = next.SidebarCollapsed
	}
	return s
}
