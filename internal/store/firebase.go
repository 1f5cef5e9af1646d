package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// scopes required by the Realtime Database streaming REST endpoint.
var streamScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/firebase.database",
}

// FirebaseStore adapts the Realtime Database to the Store contract. Point
// reads and writes go through the Admin SDK. The SDK has no listener API in
// Go, so watches speak the database's documented streaming REST protocol
// (text/event-stream of put/patch events) directly.
type FirebaseStore struct {
	client      *db.Client
	databaseURL string
	tokens      oauth2.TokenSource
	httpClient  *http.Client
	logger      *zap.Logger
}

func NewFirebaseStore(ctx context.Context, app *firebase.App, credentialsJSON []byte, databaseURL string, logger *zap.Logger) (*FirebaseStore, error) {
	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("database client: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, streamScopes...)
	if err != nil {
		return nil, fmt.Errorf("stream credentials: %w", err)
	}
	return &FirebaseStore{
		client:      client,
		databaseURL: strings.TrimRight(databaseURL, "/"),
		tokens:      creds.TokenSource,
		httpClient:  &http.Client{}, // no timeout: streams are long-lived
		logger:      logger,
	}, nil
}

func (s *FirebaseStore) Get(ctx context.Context, path string, dest interface{}) error {
	if err := s.client.NewRef(path).Get(ctx, dest); err != nil {
		return ErrStore("get", path, err)
	}
	return nil
}

func (s *FirebaseStore) Set(ctx context.Context, path string, value interface{}) error {
	if err := s.client.NewRef(path).Set(ctx, value); err != nil {
		return ErrStore("set", path, err)
	}
	return nil
}

func (s *FirebaseStore) Update(ctx context.Context, path string, values map[string]interface{}) error {
	if err := s.client.NewRef(path).Update(ctx, values); err != nil {
		return ErrStore("update", path, err)
	}
	return nil
}

func (s *FirebaseStore) UpdateMulti(ctx context.Context, values map[string]interface{}) error {
	if err := s.client.NewRef("").Update(ctx, values); err != nil {
		return ErrStore("update", "/", err)
	}
	return nil
}

func (s *FirebaseStore) Delete(ctx context.Context, path string) error {
	if err := s.client.NewRef(path).Delete(ctx); err != nil {
		return ErrStore("delete", path, err)
	}
	return nil
}

func (s *FirebaseStore) Exists(ctx context.Context, path string) (bool, error) {
	var raw json.RawMessage
	if err := s.Get(ctx, path, &raw); err != nil {
		return false, err
	}
	return len(raw) > 0 && string(raw) != "null", nil
}

func (s *FirebaseStore) WatchValue(ctx context.Context, path string, fn func()) error {
	go s.stream(ctx, path, func(ev streamEvent) {
		fn()
	})
	return nil
}

func (s *FirebaseStore) WatchChildren(ctx context.Context, path string, fn func(ChildEvent)) error {
	known := make(map[string]bool)
	var mu sync.Mutex
	go s.stream(ctx, path, func(ev streamEvent) {
		mu.Lock()
		defer mu.Unlock()
		if ev.Path == "/" || ev.Path == "" {
			// initial snapshot or whole-node replacement
			var children map[string]json.RawMessage
			if err := json.Unmarshal(ev.Data, &children); err != nil {
				return
			}
			for key := range known {
				if _, ok := children[key]; !ok {
					delete(known, key)
					fn(ChildEvent{Type: ChildRemoved, Key: key})
				}
			}
			for key := range children {
				if known[key] {
					fn(ChildEvent{Type: ChildChanged, Key: key})
				} else {
					known[key] = true
					fn(ChildEvent{Type: ChildAdded, Key: key})
				}
			}
			return
		}
		key := strings.SplitN(strings.TrimPrefix(ev.Path, "/"), "/", 2)[0]
		switch {
		case string(ev.Data) == "null" && strings.Count(ev.Path, "/") == 1:
			delete(known, key)
			fn(ChildEvent{Type: ChildRemoved, Key: key})
		case known[key]:
			fn(ChildEvent{Type: ChildChanged, Key: key})
		default:
			known[key] = true
			fn(ChildEvent{Type: ChildAdded, Key: key})
		}
	})
	return nil
}

type streamEvent struct {
	Path string          `json:"path"`
	Data json.RawMessage `json:"data"`
}

// stream opens the event-stream endpoint for path and dispatches put/patch
// events until ctx is cancelled. A broken or cancelled stream is logged and
// not re-established; re-subscription requires a process restart.
func (s *FirebaseStore) stream(ctx context.Context, path string, handle func(streamEvent)) {
	url := fmt.Sprintf("%s/%s.json", s.databaseURL, strings.Trim(path, "/"))

	token, err := s.tokens.Token()
	if err != nil {
		s.logger.Error("change stream token", zap.String("path", path), zap.Error(err))
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		s.logger.Error("change stream request", zap.String("path", path), zap.Error(err))
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("change stream connect", zap.String("path", path), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.logger.Error("change stream rejected",
			zap.String("path", path), zap.Int("status", resp.StatusCode))
		return
	}
	s.logger.Info("change stream established", zap.String("path", path))

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var event string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			switch event {
			case "put", "patch":
				var ev streamEvent
				if err := json.Unmarshal([]byte(data), &ev); err != nil {
					s.logger.Error("change stream payload", zap.String("path", path), zap.Error(err))
					continue
				}
				handle(ev)
			case "cancel", "auth_revoked":
				s.logger.Error("change stream cancelled",
					zap.String("path", path), zap.String("event", event))
				return
			}
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		s.logger.Error("change stream closed", zap.String("path", path), zap.Error(err))
	}
}

var _ Store = (*FirebaseStore)(nil)
