package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"bicochat/internal/models"
)

func TestCreateAndFetchChat(t *testing.T) {
	env := newTestEnv(t)

	env.seed(t, "users/a", models.User{Username: "Alice"})
	env.seed(t, "users/b", models.User{Username: "Bob"})

	w := env.do(t, http.MethodPost, "/api/chats", map[string]interface{}{
		"type":         "individual",
		"participants": []string{"a", "b"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var created models.ChatResponse
	decode(t, w, &created)
	if created.ID == "" {
		t.Fatal("empty chat id")
	}
	if len(created.Chat.Participants) != 2 {
		t.Errorf("participants = %v", created.Chat.Participants)
	}

	w = env.do(t, http.MethodGet, "/api/chats/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var fetched models.ChatResponse
	decode(t, w, &fetched)
	if fetched.ID != created.ID || fetched.Chat.Type != "individual" {
		t.Errorf("fetched = %+v", fetched)
	}

	w = env.do(t, http.MethodGet, "/api/chats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var all []models.ChatResponse
	decode(t, w, &all)
	if len(all) != 1 {
		t.Errorf("got %d chats", len(all))
	}
}

func TestCreateChatDefaultsType(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/chats", map[string]interface{}{
		"participants": []string{"a"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	var created models.ChatResponse
	decode(t, w, &created)
	if created.Chat.Type != "individual" {
		t.Errorf("type = %q, want individual", created.Chat.Type)
	}
}

func TestCreateChatRejectsEmptyParticipants(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []map[string]interface{}{
		{"type": "group"},
		{"type": "group", "participants": []string{}},
	} {
		w := env.do(t, http.MethodPost, "/api/chats", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %v: status = %d, want 400", body, w.Code)
		}
	}
}

func TestGetChatNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/chats/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["error"] != "chat not found" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestListChatsEmpty(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/chats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var all []models.ChatResponse
	decode(t, w, &all)
	if len(all) != 0 {
		t.Errorf("got %d chats, want 0", len(all))
	}

	// An empty collection still serializes as a JSON array.
	if got := w.Body.String(); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestCreateChatSeedsParticipantEntries(t *testing.T) {
	env := newTestEnv(t)

	env.seed(t, "users/a", models.User{Username: "Alice"})

	w := env.do(t, http.MethodPost, "/api/chats", map[string]interface{}{
		"name":         "plans",
		"participants": []string{"a"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	var created models.ChatResponse
	decode(t, w, &created)

	var user models.User
	if err := env.store.Get(context.Background(), "users/a", &user); err != nil {
		t.Fatalf("read user: %v", err)
	}
	info, ok := user.ChatUser[created.ID]
	if !ok {
		t.Fatal("participant entry not seeded")
	}
	if info.Name != "plans" || info.LastUser != "system" {
		t.Errorf("entry = %+v", info)
	}
}
