package shared

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx), "Expected empty trace ID in original context")

	ctxWithTrace := SetTraceID(ctx)
	traceID := GetTraceID(ctxWithTrace)
	require.NotEmpty(t, traceID)
	_, err := ulid.ParseStrict(traceID)
	assert.NoError(t, err, "Expected trace ID to be a ULID")

	assert.Empty(t, GetTraceID(ctx), "Expected original context to remain unchanged")
	assert.NotEqual(t, traceID, GetTraceID(SetTraceID(ctx)), "Expected unique trace IDs")
}

func TestGetTraceIDWithInvalidContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, 123) // Not a string
	assert.Empty(t, GetTraceID(ctx))
}

func TestClaimsContext(t *testing.T) {
	assert.Nil(t, GetClaims(context.Background()))

	claims := &auth.Claims{UserID: uuid.New(), Role: domain.RoleManager}
	ctx := WithClaims(context.Background(), claims)
	assert.Same(t, claims, GetClaims(ctx))
}
