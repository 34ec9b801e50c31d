package discord

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/graaaaa/pomwars/internal/chat"
	"github.com/graaaaa/pomwars/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users/@me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "99"})
	})
	mux.Handle("/", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), config.Secret("token"), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewResolvesBotUser(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())
	if c.BotUserID() != 99 {
		t.Errorf("BotUserID = %d, want 99", c.BotUserID())
	}
}

func TestSendMessage(t *testing.T) {
	var gotAuth, gotContent string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/channels/42/messages" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		gotContent = body["content"]
		json.NewEncoder(w).Encode(map[string]any{"id": "1234", "channel_id": "42", "author": map[string]string{"id": "99"}})
	}))

	id, err := c.SendMessage(context.Background(), 42, "hello")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if id != 1234 {
		t.Errorf("message id = %d, want 1234", id)
	}
	if gotAuth != "Bot token" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotContent != "hello" {
		t.Errorf("content = %q", gotContent)
	}
}

func TestForbiddenMapsToSentinel(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := c.SendMessage(context.Background(), 42, "hello")
	if !errors.Is(err, chat.ErrForbidden) {
		t.Errorf("error = %v, want chat.ErrForbidden", err)
	}
}

func TestRateLimitRetriesOnce(t *testing.T) {
	attempts := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "1", "channel_id": "42", "author": map[string]string{"id": "99"}})
	}))

	if _, err := c.SendMessage(context.Background(), 42, "x"); err != nil {
		t.Fatalf("SendMessage after retry: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestOldestMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("after"); got != "0" {
			t.Errorf("after = %q, want 0", got)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "7", "channel_id": "42", "content": "first", "author": map[string]string{"id": "5"}},
		})
	}))

	m, err := c.OldestMessage(context.Background(), 42)
	if err != nil {
		t.Fatalf("OldestMessage: %v", err)
	}
	if m == nil || m.ID != 7 || m.AuthorID != 5 || m.Content != "first" {
		t.Errorf("message = %+v", m)
	}
}

func TestOldestMessageEmptyChannel(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]any{})
	}))

	m, err := c.OldestMessage(context.Background(), 42)
	if err != nil {
		t.Fatalf("OldestMessage: %v", err)
	}
	if m != nil {
		t.Errorf("message = %+v, want nil", m)
	}
}

func TestUserRolesResolvesNames(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/guilds/10/members/5":
			json.NewEncoder(w).Encode(map[string]any{"roles": []string{"100", "101"}})
		case "/guilds/10/roles":
			json.NewEncoder(w).Encode([]map[string]string{
				{"id": "100", "name": "Knights"},
				{"id": "101", "name": "General"},
				{"id": "102", "name": "Vikings"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	roles, err := c.UserRoles(context.Background(), 10, 5)
	if err != nil {
		t.Fatalf("UserRoles: %v", err)
	}
	if len(roles) != 2 || roles[0] != "Knights" || roles[1] != "General" {
		t.Errorf("roles = %v, want [Knights General]", roles)
	}
}

func TestChannelByIDMapsDMToNil(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "42", "type": 1})
	}))

	ch, err := c.ChannelByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("ChannelByID: %v", err)
	}
	if ch != nil {
		t.Errorf("channel = %+v, want nil for DM", ch)
	}
}
