package handlers_test

import (
	"net/http"
	"testing"

	"bicochat/internal/models"
)

func TestFriendRequestFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "users/a", models.User{Username: "Alice", Email: "a@example.com"})
	env.seed(t, "users/b", models.User{Username: "Bob", Email: "b@example.com"})

	w := env.do(t, http.MethodPost, "/api/friends/request", map[string]string{
		"fromUid": "a", "toUid": "b",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("request status = %d, body %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/friends/requests/b", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list requests status = %d", w.Code)
	}
	var requests []models.FriendResponse
	decode(t, w, &requests)
	if len(requests) != 1 || requests[0].ID != "a" || requests[0].FriendshipStatus != "pending" {
		t.Fatalf("requests = %+v", requests)
	}
	if requests[0].Username != "Alice" || requests[0].Email != "a@example.com" {
		t.Errorf("request not hydrated: %+v", requests[0])
	}

	w = env.do(t, http.MethodPost, "/api/friends/accept", map[string]string{
		"fromUid": "a", "toUid": "b",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("accept status = %d", w.Code)
	}

	for _, uid := range []string{"a", "b"} {
		w = env.do(t, http.MethodGet, "/api/friends/"+uid, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("friends of %s status = %d", uid, w.Code)
		}
		var friends []models.FriendResponse
		decode(t, w, &friends)
		if len(friends) != 1 || friends[0].FriendshipStatus != "active" {
			t.Errorf("friends of %s = %+v", uid, friends)
		}
	}

	w = env.do(t, http.MethodGet, "/api/friends/requests/b", nil)
	var remaining []models.FriendResponse
	decode(t, w, &remaining)
	if len(remaining) != 0 {
		t.Errorf("request survived accept: %+v", remaining)
	}
}

func TestRejectFriendRequestEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "users/a", models.User{Username: "Alice"})
	env.seed(t, "users/b", models.User{Username: "Bob"})

	env.do(t, http.MethodPost, "/api/friends/request", map[string]string{
		"fromUid": "a", "toUid": "b",
	})
	w := env.do(t, http.MethodDelete, "/api/friends/request", map[string]string{
		"fromUid": "a", "toUid": "b",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reject status = %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/friends/requests/b", nil)
	var requests []models.FriendResponse
	decode(t, w, &requests)
	if len(requests) != 0 {
		t.Errorf("request survived reject: %+v", requests)
	}
	w = env.do(t, http.MethodGet, "/api/friends/b", nil)
	var friends []models.FriendResponse
	decode(t, w, &friends)
	if len(friends) != 0 {
		t.Errorf("reject created friendship: %+v", friends)
	}
}

func TestFriendRequestValidation(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []map[string]string{
		{"fromUid": "a"},
		{"toUid": "b"},
		{},
	} {
		w := env.do(t, http.MethodPost, "/api/friends/request", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %v: status = %d, want 400", body, w.Code)
		}
	}
}
