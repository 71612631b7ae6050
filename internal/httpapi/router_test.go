package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/gopherchat/gopherchat/internal/ai"
	"github.com/gopherchat/gopherchat/internal/config"
	"github.com/gopherchat/gopherchat/internal/convo"
	"github.com/gopherchat/gopherchat/internal/storage"
	"github.com/gopherchat/gopherchat/internal/store/gormkv"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "kv.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	kv, err := gormkv.New(db)
	if err != nil {
		t.Fatalf("migrate kv: %v", err)
	}

	reg := ai.NewRegistry()
	reg.Register("mock", func(ctx context.Context) (ai.Provider, error) {
		return ai.NewMockProvider(0, 0), nil
	})

	cfg := config.Config{
		JWTSecret:    "test-secret",
		PaymentDelay: 0,
	}
	return NewRouter(cfg, storage.NewStore(kv), convo.NewService(reg))
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode envelope from %q: %v", method, path, w.Body.String(), err)
	}
	return w, env
}

func registerUser(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w, env := doJSON(t, r, http.MethodPost, "/register", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode register data: %v", err)
	}
	if data.Token == "" {
		t.Fatal("register returned no token")
	}
	return data.Token
}

func TestRegisterLoginFlow(t *testing.T) {
	r := newTestRouter(t)
	registerUser(t, r, "alice@example.com")

	// Duplicate email.
	w, env := doJSON(t, r, http.MethodPost, "/register", "", gin.H{
		"email":    "Alice@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusConflict || env.Code != 10010 {
		t.Fatalf("duplicate register: status %d code %d", w.Code, env.Code)
	}

	// Short password.
	w, env = doJSON(t, r, http.MethodPost, "/register", "", gin.H{
		"email":    "bob@example.com",
		"password": "short",
	})
	if w.Code != http.StatusBadRequest || env.Code != 10011 {
		t.Fatalf("short password: status %d code %d", w.Code, env.Code)
	}

	// Wrong password is a generic unauthorized.
	w, env = doJSON(t, r, http.MethodPost, "/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrongpassword",
	})
	if w.Code != http.StatusUnauthorized || env.Code != 10020 {
		t.Fatalf("bad login: status %d code %d", w.Code, env.Code)
	}

	// Correct login.
	w, _ = doJSON(t, r, http.MethodPost, "/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", w.Code, w.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/me", "", nil)
	if w.Code != http.StatusUnauthorized || env.Code != 40101 {
		t.Fatalf("no token: status %d code %d", w.Code, env.Code)
	}

	w, env = doJSON(t, r, http.MethodGet, "/me", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized || env.Code != 40102 {
		t.Fatalf("bad token: status %d code %d", w.Code, env.Code)
	}
}

func TestSendMessageAndListChats(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "alice@example.com")

	w, env := doJSON(t, r, http.MethodPost, "/chat/messages", token, gin.H{"message": "hello"})
	if w.Code != http.StatusOK {
		t.Fatalf("send: status %d body %s", w.Code, w.Body.String())
	}
	var sendData struct {
		ChatID   string `json:"chat_id"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(env.Data, &sendData); err != nil {
		t.Fatalf("decode send data: %v", err)
	}
	if sendData.ChatID == "" {
		t.Fatal("expected a chat id after the first turn")
	}
	if len(sendData.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sendData.Messages))
	}
	// No API key is configured, so the account defaults to mock mode.
	if !strings.Contains(sendData.Messages[1].Content, "Mock Mode") {
		t.Fatalf("model turn: %q", sendData.Messages[1].Content)
	}

	w, env = doJSON(t, r, http.MethodGet, "/chats", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	var listData struct {
		Groups []struct {
			Label string `json:"label"`
			Chats []struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"chats"`
		} `json:"groups"`
		CurrentChatID string `json:"current_chat_id"`
	}
	if err := json.Unmarshal(env.Data, &listData); err != nil {
		t.Fatalf("decode list data: %v", err)
	}
	if len(listData.Groups) != 1 || listData.Groups[0].Label != "Today" {
		t.Fatalf("groups: %+v", listData.Groups)
	}
	if listData.Groups[0].Chats[0].Title != "hello" {
		t.Fatalf("title: %q", listData.Groups[0].Chats[0].Title)
	}
	if listData.CurrentChatID != sendData.ChatID {
		t.Fatalf("current chat: %q want %q", listData.CurrentChatID, sendData.ChatID)
	}

	// Delete the chat and confirm the sidebar is empty again.
	w, _ = doJSON(t, r, http.MethodDelete, "/chats/"+sendData.ChatID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status %d body %s", w.Code, w.Body.String())
	}
	_, env = doJSON(t, r, http.MethodGet, "/chats", token, nil)
	if err := json.Unmarshal(env.Data, &listData); err != nil {
		t.Fatalf("decode list data: %v", err)
	}
	if len(listData.Groups) != 0 {
		t.Fatalf("expected no groups after delete, got %+v", listData.Groups)
	}
}

func TestTemporaryChatOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "alice@example.com")

	w, env := doJSON(t, r, http.MethodPost, "/chats", token, gin.H{"temporary": true})
	if w.Code != http.StatusOK {
		t.Fatalf("new chat: status %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/chat/messages", token, gin.H{"message": "hello"})
	if w.Code != http.StatusOK {
		t.Fatalf("send: status %d", w.Code)
	}

	_, env = doJSON(t, r, http.MethodGet, "/chats", token, nil)
	var listData struct {
		Groups    []json.RawMessage `json:"groups"`
		Temporary bool              `json:"temporary"`
	}
	if err := json.Unmarshal(env.Data, &listData); err != nil {
		t.Fatalf("decode list data: %v", err)
	}
	if len(listData.Groups) != 0 {
		t.Fatalf("temporary chat must not appear in the sidebar: %+v", listData.Groups)
	}
	if !listData.Temporary {
		t.Fatal("temporary flag should be reported")
	}
}

func TestSettingsAndUpgrade(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "alice@example.com")

	_, env := doJSON(t, r, http.MethodPost, "/settings/theme", token, nil)
	var themeData struct {
		Theme string `json:"theme"`
	}
	if err := json.Unmarshal(env.Data, &themeData); err != nil {
		t.Fatalf("decode theme: %v", err)
	}
	if themeData.Theme != "dark" {
		t.Fatalf("theme: %q", themeData.Theme)
	}

	_, env = doJSON(t, r, http.MethodPost, "/settings/mock", token, nil)
	var mockData struct {
		UseMockAPI bool `json:"use_mock_api"`
	}
	if err := json.Unmarshal(env.Data, &mockData); err != nil {
		t.Fatalf("decode mock: %v", err)
	}
	// Mock started on (no API key), so the toggle turns it off.
	if mockData.UseMockAPI {
		t.Fatal("expected mock mode off after toggle")
	}

	w, env := doJSON(t, r, http.MethodPost, "/billing/upgrade", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("upgrade: status %d body %s", w.Code, w.Body.String())
	}
	var upgradeData struct {
		User struct {
			Plan string `json:"plan"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &upgradeData); err != nil {
		t.Fatalf("decode upgrade: %v", err)
	}
	if upgradeData.User.Plan != "pro" {
		t.Fatalf("plan: %q", upgradeData.User.Plan)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "alice@example.com")

	w, _ := doJSON(t, r, http.MethodPost, "/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: status %d", w.Code)
	}

	// The JWT is still well formed but the server-side session is gone.
	w, env := doJSON(t, r, http.MethodGet, "/me", token, nil)
	if w.Code != http.StatusUnauthorized || env.Code != 40103 {
		t.Fatalf("after logout: status %d code %d", w.Code, env.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(t)
	w, env := doJSON(t, r, http.MethodGet, "/nope", "", nil)
	if w.Code != http.StatusNotFound || env.Code != 40400 {
		t.Fatalf("status %d code %d", w.Code, env.Code)
	}
}
