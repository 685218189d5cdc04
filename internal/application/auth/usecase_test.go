package auth_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/evraklab-api/internal/application/auth"
	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/infrastructure/memory"
	"github.com/jhoicas/evraklab-api/pkg/jwt"
)

const secret = "test-secret"

func newAuth() *auth.AuthUseCase {
	store := memory.NewStore()
	return auth.NewAuthUseCase(store.Users(), store.Repositories().Profiles,
		auth.JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "evraklab-test"}, zerolog.Nop())
}

func TestRegisterYLogin(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()

	s, err := uc.Register(ctx, "Ayse@Mail.TEST", "supersecret", "Ayşe")
	require.NoError(t, err)
	assert.Equal(t, "ayse@mail.test", s.Profile.Email)
	assert.Equal(t, entity.RoleNormal, s.Profile.Role)
	assert.Nil(t, s.Profile.OrganizationID)

	userID, err := jwt.Parse(secret, s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.Profile.ID, userID)

	logged, err := uc.Login(ctx, "AYSE@mail.test", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, s.Profile.ID, logged.Profile.ID)
}

func TestRegister_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()

	_, err := uc.Register(ctx, "no-es-email", "supersecret", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = uc.Register(ctx, "a@mail.test", "corta", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Register(ctx, "a@mail.test", "supersecret", "")
	require.NoError(t, err)
	_, err = uc.Register(ctx, "A@mail.test", "otrasecreta", "")
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	_, err := uc.Register(ctx, "a@mail.test", "supersecret", "")
	require.NoError(t, err)

	_, err = uc.Login(ctx, "a@mail.test", "incorrecta")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, "b@mail.test", "supersecret")
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "email desconocido responde igual")
}
