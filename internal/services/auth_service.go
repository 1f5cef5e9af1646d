package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

// IdentityProvider is the slice of the identity backend this service
// needs. firebaseIdentity adapts the Admin SDK client to it; tests supply
// fakes.
type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	CustomToken(ctx context.Context, uid string) (string, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	EmailVerificationLink(ctx context.Context, email string) (string, error)
	ListUsers(ctx context.Context) ([]*auth.ExportedUserRecord, error)
	IsUserNotFound(err error) bool
}

type firebaseIdentity struct {
	client *auth.Client
}

func NewFirebaseIdentity(client *auth.Client) IdentityProvider {
	return &firebaseIdentity{client: client}
}

func (f *firebaseIdentity) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	return f.client.VerifyIDToken(ctx, idToken)
}

func (f *firebaseIdentity) GetUser(ctx context.Context, uid string) (*auth.UserRecord, error) {
	return f.client.GetUser(ctx, uid)
}

func (f *firebaseIdentity) GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error) {
	return f.client.GetUserByEmail(ctx, email)
}

func (f *firebaseIdentity) CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error) {
	return f.client.CreateUser(ctx, user)
}

func (f *firebaseIdentity) CustomToken(ctx context.Context, uid string) (string, error) {
	return f.client.CustomToken(ctx, uid)
}

func (f *firebaseIdentity) RevokeRefreshTokens(ctx context.Context, uid string) error {
	return f.client.RevokeRefreshTokens(ctx, uid)
}

func (f *firebaseIdentity) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	return f.client.EmailVerificationLink(ctx, email)
}

func (f *firebaseIdentity) ListUsers(ctx context.Context) ([]*auth.ExportedUserRecord, error) {
	var out []*auth.ExportedUserRecord
	it := f.client.Users(ctx, "")
	for {
		user, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, nil
}

func (f *firebaseIdentity) IsUserNotFound(err error) bool {
	return auth.IsUserNotFound(err)
}

// AuthService wraps the identity provider behind synchronous calls. It
// holds no state of its own.
type AuthService struct {
	identity  IdentityProvider
	email     EmailService
	webAPIKey string
	signInURL string
	logger    *zap.Logger
}

const defaultSignInURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

func NewAuthService(identity IdentityProvider, email EmailService, webAPIKey string, logger *zap.Logger) *AuthService {
	return &AuthService{
		identity:  identity,
		email:     email,
		webAPIKey: webAPIKey,
		signInURL: defaultSignInURL,
		logger:    logger,
	}
}

// VerifyGoogleToken validates a Google ID token, creating the identity
// record on first sign-in, and returns the user data plus a custom token.
func (s *AuthService) VerifyGoogleToken(ctx context.Context, idToken string) (map[string]interface{}, error) {
	decoded, err := s.identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("google token not valid: %w", err)
	}

	record, err := s.identity.GetUser(ctx, decoded.UID)
	if err != nil {
		create := (&auth.UserToCreate{}).
			UID(decoded.UID).
			Email(stringClaim(decoded, "email")).
			DisplayName(stringClaim(decoded, "name")).
			PhotoURL(stringClaim(decoded, "picture")).
			EmailVerified(boolClaim(decoded, "email_verified"))
		record, err = s.identity.CreateUser(ctx, create)
		if err != nil {
			return nil, fmt.Errorf("google token not valid: %w", err)
		}
	}

	customToken, err := s.identity.CustomToken(ctx, record.UID)
	if err != nil {
		return nil, fmt.Errorf("google token not valid: %w", err)
	}

	return map[string]interface{}{
		"uid":         record.UID,
		"email":       record.Email,
		"name":        record.DisplayName,
		"pictureUrl":  record.PhotoURL,
		"customToken": customToken,
	}, nil
}

func (s *AuthService) UserInfo(ctx context.Context, uid string) string {
	record, err := s.identity.GetUser(ctx, uid)
	if err != nil {
		return "User not Found: " + err.Error()
	}
	return fmt.Sprintf("User Found: %s (%s)", record.DisplayName, record.Email)
}

func (s *AuthService) ListUserEmails(ctx context.Context) ([]string, error) {
	records, err := s.identity.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(records))
	for _, record := range records {
		emails = append(emails, record.Email)
	}
	return emails, nil
}

// CreateUnverifiedUser registers an email/password user with the provider.
// The result strings mirror what the frontend expects.
func (s *AuthService) CreateUnverifiedUser(ctx context.Context, email, password string) (string, error) {
	existing, err := s.identity.GetUserByEmail(ctx, email)
	if err == nil {
		if existing.EmailVerified {
			return "Error: This email is already registered and verified.", nil
		}
		return "Error: This email is already registered but not verified. Please check your inbox.", nil
	}
	if !s.identity.IsUserNotFound(err) {
		return "", fmt.Errorf("error checking user: %w", err)
	}

	create := (&auth.UserToCreate{}).
		Email(email).
		EmailVerified(false).
		Password(password)
	record, err := s.identity.CreateUser(ctx, create)
	if err != nil {
		return "", fmt.Errorf("error creating user: %w", err)
	}
	return "Successfully created new unverified user: " + record.Email, nil
}

// VerifyUser generates an email-verification link and mails it out.
func (s *AuthService) VerifyUser(ctx context.Context, email string) (string, error) {
	existing, err := s.identity.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing.EmailVerified {
		return "Error: This email is already registered", nil
	}

	link, err := s.identity.EmailVerificationLink(ctx, email)
	if err != nil {
		return "", err
	}
	if err := s.email.SendVerificationEmail(email, link); err != nil {
		return "", err
	}
	return "Verification email sent successfully to: " + email, nil
}

// SignInWithPassword proxies to the identity provider's password sign-in
// REST endpoint using the web API key from the environment.
func (s *AuthService) SignInWithPassword(ctx context.Context, email, password string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", s.signInURL, s.webAPIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign-in failed: %s", string(body))
	}
	return string(body), nil
}

// Logout revokes the user's refresh tokens; existing ID tokens expire on
// their own within the hour.
func (s *AuthService) Logout(ctx context.Context, email string) error {
	record, err := s.identity.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.identity.RevokeRefreshTokens(ctx, record.UID)
}

func stringClaim(token *auth.Token, key string) string {
	if v, ok := token.Claims[key].(string); ok {
		return v
	}
	return ""
}

func boolClaim(token *auth.Token, key string) bool {
	v, _ := token.Claims[key].(bool)
	return v
}
