package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linksoc/internal/core/apperror"
	"linksoc/internal/domain/auth"
	"linksoc/internal/infrastructure/storage/memory"
)

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	jwtSvc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	svc := auth.NewService(store.Auth(), jwtSvc)

	require.NoError(t, svc.AddPassword(ctx, "first"))
	require.NoError(t, svc.AddPassword(ctx, "second"))

	session, err := svc.Login(ctx, "second")
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), session.ExpiresAt, time.Minute)

	op, err := jwtSvc.ValidateToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.OperatorSubject, op.Subject)
	assert.Equal(t, session.SessionID, op.SessionID)

	_, err = svc.Login(ctx, "wrong")
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	_, err = svc.Login(ctx, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	issuer := auth.NewJWTService(auth.DefaultJWTConfig("secret-a"))
	verifier := auth.NewJWTService(auth.DefaultJWTConfig("secret-b"))

	token, _, _, err := issuer.GenerateAccessToken()
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)

	_, err = verifier.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	cfg := auth.DefaultJWTConfig("secret")
	cfg.AccessTokenTTL = -time.Minute
	svc := auth.NewJWTService(cfg)

	token, _, _, err := svc.GenerateAccessToken()
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestDemoSeed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, memory.SeedDemo(ctx, store))

	svc := auth.NewService(store.Auth(), auth.NewJWTService(auth.DefaultJWTConfig("s")))
	_, err := svc.Login(ctx, memory.DemoPassword)
	assert.NoError(t, err)
}
