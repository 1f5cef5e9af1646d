package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

var errNotFound = errors.New("user not found")

// fakeIdentity is an in-memory IdentityProvider keyed by uid.
type fakeIdentity struct {
	users        map[string]*auth.UserRecord
	verifyToken  *auth.Token
	verifyErr    error
	createdUsers int
	revokedUIDs  []string
	link         string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{users: map[string]*auth.UserRecord{}, link: "https://example.com/verify"}
}

func (f *fakeIdentity) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifyToken, nil
}

func (f *fakeIdentity) GetUser(ctx context.Context, uid string) (*auth.UserRecord, error) {
	if u, ok := f.users[uid]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func (f *fakeIdentity) GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeIdentity) CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error) {
	f.createdUsers++
	record := &auth.UserRecord{UserInfo: &auth.UserInfo{UID: "created-uid", Email: "new@example.com"}}
	f.users[record.UID] = record
	return record, nil
}

func (f *fakeIdentity) CustomToken(ctx context.Context, uid string) (string, error) {
	return "custom-token-" + uid, nil
}

func (f *fakeIdentity) RevokeRefreshTokens(ctx context.Context, uid string) error {
	f.revokedUIDs = append(f.revokedUIDs, uid)
	return nil
}

func (f *fakeIdentity) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	return f.link, nil
}

func (f *fakeIdentity) ListUsers(ctx context.Context) ([]*auth.ExportedUserRecord, error) {
	out := make([]*auth.ExportedUserRecord, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, &auth.ExportedUserRecord{UserRecord: u})
	}
	return out, nil
}

func (f *fakeIdentity) IsUserNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

type fakeEmail struct {
	sentTo   []string
	lastLink string
	err      error
}

func (f *fakeEmail) SendVerificationEmail(email, link string) error {
	if f.err != nil {
		return f.err
	}
	f.sentTo = append(f.sentTo, email)
	f.lastLink = link
	return nil
}

func TestVerifyGoogleTokenExistingUser(t *testing.T) {
	identity := newFakeIdentity()
	identity.verifyToken = &auth.Token{UID: "u1"}
	identity.users["u1"] = &auth.UserRecord{UserInfo: &auth.UserInfo{
		UID: "u1", Email: "u1@example.com", DisplayName: "U One", PhotoURL: "https://example.com/p.png",
	}}
	svc := NewAuthService(identity, &fakeEmail{}, "key", zap.NewNop())

	got, err := svc.VerifyGoogleToken(context.Background(), "token")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got["uid"] != "u1" || got["email"] != "u1@example.com" {
		t.Errorf("result = %+v", got)
	}
	if got["customToken"] != "custom-token-u1" {
		t.Errorf("customToken = %v", got["customToken"])
	}
	if identity.createdUsers != 0 {
		t.Errorf("existing user re-created %d times", identity.createdUsers)
	}
}

func TestVerifyGoogleTokenProvisionsFirstSignIn(t *testing.T) {
	identity := newFakeIdentity()
	identity.verifyToken = &auth.Token{
		UID: "fresh",
		Claims: map[string]interface{}{
			"email": "new@example.com", "name": "New", "email_verified": true,
		},
	}
	svc := NewAuthService(identity, &fakeEmail{}, "key", zap.NewNop())

	got, err := svc.VerifyGoogleToken(context.Background(), "token")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.createdUsers != 1 {
		t.Fatalf("createdUsers = %d, want 1", identity.createdUsers)
	}
	if got["email"] != "new@example.com" {
		t.Errorf("result = %+v", got)
	}
}

func TestVerifyGoogleTokenInvalid(t *testing.T) {
	identity := newFakeIdentity()
	identity.verifyErr = errors.New("bad signature")
	svc := NewAuthService(identity, &fakeEmail{}, "key", zap.NewNop())

	if _, err := svc.VerifyGoogleToken(context.Background(), "junk"); err == nil {
		t.Fatal("expected error for invalid token")
	}
}

func TestCreateUnverifiedUser(t *testing.T) {
	identity := newFakeIdentity()
	svc := NewAuthService(identity, &fakeEmail{}, "key", zap.NewNop())

	msg, err := svc.CreateUnverifiedUser(context.Background(), "new@example.com", "secret12")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(msg, "Successfully created new unverified user:") {
		t.Errorf("msg = %q", msg)
	}

	// Second attempt hits the already-registered branch.
	msg, err = svc.CreateUnverifiedUser(context.Background(), "new@example.com", "secret12")
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if !strings.Contains(msg, "already registered") {
		t.Errorf("msg = %q", msg)
	}
}

func TestVerifyUserSendsEmail(t *testing.T) {
	identity := newFakeIdentity()
	identity.users["u1"] = &auth.UserRecord{UserInfo: &auth.UserInfo{UID: "u1", Email: "u1@example.com"}}
	email := &fakeEmail{}
	svc := NewAuthService(identity, email, "key", zap.NewNop())

	msg, err := svc.VerifyUser(context.Background(), "u1@example.com")
	if err != nil {
		t.Fatalf("verify user: %v", err)
	}
	if !strings.Contains(msg, "u1@example.com") {
		t.Errorf("msg = %q", msg)
	}
	if len(email.sentTo) != 1 || email.sentTo[0] != "u1@example.com" {
		t.Errorf("sentTo = %v", email.sentTo)
	}
	if email.lastLink != identity.link {
		t.Errorf("link = %q", email.lastLink)
	}
}

func TestVerifyUserAlreadyVerified(t *testing.T) {
	identity := newFakeIdentity()
	identity.users["u1"] = &auth.UserRecord{
		UserInfo:      &auth.UserInfo{UID: "u1", Email: "u1@example.com"},
		EmailVerified: true,
	}
	email := &fakeEmail{}
	svc := NewAuthService(identity, email, "key", zap.NewNop())

	msg, err := svc.VerifyUser(context.Background(), "u1@example.com")
	if err != nil {
		t.Fatalf("verify user: %v", err)
	}
	if !strings.Contains(msg, "already registered") {
		t.Errorf("msg = %q", msg)
	}
	if len(email.sentTo) != 0 {
		t.Errorf("mail sent to verified user: %v", email.sentTo)
	}
}

func TestSignInWithPassword(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		w.Write([]byte(`{"idToken":"abc"}`))
	}))
	defer srv.Close()

	svc := NewAuthService(newFakeIdentity(), &fakeEmail{}, "web-api-key", zap.NewNop())
	svc.signInURL = srv.URL

	body, err := svc.SignInWithPassword(context.Background(), "a@example.com", "pw")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if !strings.Contains(body, "idToken") {
		t.Errorf("body = %q", body)
	}
	if gotKey != "web-api-key" {
		t.Errorf("key = %q", gotKey)
	}
}

func TestSignInWithPasswordRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"INVALID_PASSWORD"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	svc := NewAuthService(newFakeIdentity(), &fakeEmail{}, "key", zap.NewNop())
	svc.signInURL = srv.URL

	if _, err := svc.SignInWithPassword(context.Background(), "a@example.com", "wrong"); err == nil {
		t.Fatal("expected error")
	}
}

func TestLogoutRevokesTokens(t *testing.T) {
	identity := newFakeIdentity()
	identity.users["u1"] = &auth.UserRecord{UserInfo: &auth.UserInfo{UID: "u1", Email: "u1@example.com"}}
	svc := NewAuthService(identity, &fakeEmail{}, "key", zap.NewNop())

	if err := svc.Logout(context.Background(), "u1@example.com"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(identity.revokedUIDs) != 1 || identity.revokedUIDs[0] != "u1" {
		t.Errorf("revoked = %v", identity.revokedUIDs)
	}
}

func TestListUserEmails(t *testing.T) {
	identity := newFakeIdentity()
	identity.users["u1"] = &auth.UserRecord{UserInfo: &auth.UserInfo{UID: "u1", Email: "u1@example.com"}}
	identity.users["u2"] = &auth.UserRecord{UserInfo: &auth.UserInfo{UID: "u2", Email: "u2@example.com"}}
	svc := NewAuthService(identity, &fakeEmail{}, "key", zap.NewNop())

	emails, err := svc.ListUserEmails(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(emails) != 2 {
		t.Errorf("emails = %v", emails)
	}
}
