package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mominaamjad/pixel-notes/internal/core"
)

type fakeVerifier struct {
	claims *TokenClaims
	err    error
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*TokenClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

type fakeResolver struct {
	user *AuthUser
	err  error
}

func (f *fakeResolver) ResolveUser(ctx context.Context, userID string) (*AuthUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func runAuthenticated(
	t *testing.T,
	verifier TokenVerifier,
	resolver UserResolver,
	header string,
) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		id, ok := GetUserID(r.Context())
		require.True(t, ok)
		require.NotEmpty(t, id)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/notes", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	rec := httptest.NewRecorder()
	Authenticator(verifier, resolver)(next).ServeHTTP(rec, req)
	return rec, called
}

func validFixtures() (*fakeVerifier, *fakeResolver) {
	issued := time.Now().Add(-time.Minute)
	verifier := &fakeVerifier{claims: &TokenClaims{
		UserID:    "u1",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(time.Hour),
	}}
	resolver := &fakeResolver{user: &AuthUser{
		ID:    "u1",
		Name:  "Momina",
		Email: "momina@example.com",
	}}
	return verifier, resolver
}

func TestAuthenticator_Success(t *testing.T) {
	verifier, resolver := validFixtures()

	rec, called := runAuthenticated(t, verifier, resolver, "Bearer good-token")
	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticator_MissingHeader(t *testing.T) {
	verifier, resolver := validFixtures()

	rec, called := runAuthenticated(t, verifier, resolver, "")
	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticator_MalformedHeader(t *testing.T) {
	verifier, resolver := validFixtures()

	for _, header := range []string{"good-token", "Basic abc", "Bearer"} {
		rec, called := runAuthenticated(t, verifier, resolver, header)
		require.False(t, called, header)
		require.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestAuthenticator_ExpiredToken(t *testing.T) {
	_, resolver := validFixtures()
	verifier := &fakeVerifier{err: core.ErrTokenExpired}

	rec, called := runAuthenticated(t, verifier, resolver, "Bearer stale")
	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "expired")
}

func TestAuthenticator_InvalidToken(t *testing.T) {
	_, resolver := validFixtures()
	verifier := &fakeVerifier{err: core.ErrTokenInvalid}

	rec, called := runAuthenticated(t, verifier, resolver, "Bearer junk")
	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticator_DeletedUser(t *testing.T) {
	verifier, _ := validFixtures()
	resolver := &fakeResolver{err: core.ErrNotFound}

	rec, called := runAuthenticated(t, verifier, resolver, "Bearer orphan")
	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "no longer exists")
}

func TestAuthenticator_PasswordChangedAfterIssue(t *testing.T) {
	verifier, resolver := validFixtures()
	changed := time.Now()
	resolver.user.PasswordChangedAt = &changed

	rec, called := runAuthenticated(t, verifier, resolver, "Bearer pre-change")
	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "password changed")
}

func TestAuthenticator_PasswordChangedBeforeIssue(t *testing.T) {
	verifier, resolver := validFixtures()
	changed := time.Now().Add(-time.Hour)
	resolver.user.PasswordChangedAt = &changed

	rec, called := runAuthenticated(t, verifier, resolver, "Bearer fresh")
	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	require.Empty(t, ExtractToken(req))

	req.Header.Set("Authorization", "Bearer abc123")
	require.Equal(t, "abc123", ExtractToken(req))

	req.Header.Set("Authorization", "bearer abc123")
	require.Equal(t, "abc123", ExtractToken(req))

	req.Header.Set("Authorization", "Token abc123")
	require.Empty(t, ExtractToken(req))
}
