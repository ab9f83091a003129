package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/config"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestJWTService(secret string, at time.Time) *hmacJWTService {
	return newHMACJWTService(secret, TokenLifetime, func() time.Time { return at })
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short"})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(testSecret, fixedTime)
	userID := uuid.New()

	token, expiresAt, err := svc.GenerateToken(context.Background(), userID, domain.RoleManager)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, fixedTime.Add(TokenLifetime), expiresAt)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, domain.RoleManager, claims.Role)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateTokenReportsTruncatedExpiry(t *testing.T) {
	t.Parallel()

	issuedAt := fixedTime.Add(750 * time.Millisecond)
	svc := newTestJWTService(testSecret, issuedAt)

	token, expiresAt, err := svc.GenerateToken(context.Background(), uuid.New(), domain.RoleUser)
	require.NoError(t, err)
	assert.True(t, fixedTime.Add(TokenLifetime).Equal(expiresAt),
		"expiry %s should match the whole-second exp claim", expiresAt)

	claims, err := newTestJWTService(testSecret, fixedTime).ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())

	// One nanosecond past the reported expiry the token is rejected.
	_, err = newTestJWTService(testSecret, expiresAt.Add(time.Nanosecond)).ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	issue := func(secret string) string {
		token, _, err := newTestJWTService(secret, fixedTime).GenerateToken(context.Background(), userID, domain.RoleUser)
		require.NoError(t, err)
		return token
	}
	signWith := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}
	validClaims := jwtCustomClaims{
		UserID: userID,
		Role:   string(domain.RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(fixedTime),
			ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
		},
	}

	tests := []struct {
		name    string
		token   string
		at      time.Time
		wantErr error
	}{
		{
			name:  "valid token",
			token: issue(testSecret),
			at:    fixedTime.Add(30 * time.Minute),
		},
		{
			name:  "valid one second before expiry",
			token: issue(testSecret),
			at:    fixedTime.Add(TokenLifetime - time.Second),
		},
		{
			name:    "expired immediately after lifetime",
			token:   issue(testSecret),
			at:      fixedTime.Add(TokenLifetime + time.Second),
			wantErr: ErrExpiredToken,
		},
		{
			name:    "invalid signature",
			token:   issue(wrongSecret),
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "malformed token",
			token:   "this.is.not.a.valid.jwt.token",
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "empty token",
			token:   "",
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "unexpected algorithm",
			token:   signWith(jwt.SigningMethodHS512, []byte(testSecret), validClaims),
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "none algorithm",
			token:   signWith(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims),
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name: "unknown role",
			token: signWith(jwt.SigningMethodHS256, []byte(testSecret), jwtCustomClaims{
				UserID:           userID,
				Role:             "root",
				RegisteredClaims: validClaims.RegisteredClaims,
			}),
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing expiry",
			token: signWith(jwt.SigningMethodHS256, []byte(testSecret), jwtCustomClaims{
				UserID: userID,
				Role:   string(domain.RoleUser),
			}),
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestJWTService(testSecret, tt.at)
			claims, err := svc.ValidateToken(context.Background(), tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}

func TestValidateTokenTampered(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(testSecret, fixedTime)
	token, _, err := svc.GenerateToken(context.Background(), uuid.New(), domain.RoleUser)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Swap in a payload claiming admin while keeping the original signature.
	forged := jwtCustomClaims{
		UserID: uuid.New(),
		Role:   string(domain.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
		},
	}
	forgedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, forged).SignedString([]byte(wrongSecret))
	require.NoError(t, err)
	forgedParts := strings.Split(forgedToken, ".")

	tampered := strings.Join([]string{parts[0], forgedParts[1], parts[2]}, ".")
	_, err = svc.ValidateToken(context.Background(), tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
