// Package auth emisor de identidad de desarrollo: registro y login con bcrypt sobre tokens HS256.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/evraklab-api/internal/application/invitation"
	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
	"github.com/jhoicas/evraklab-api/pkg/jwt"
)

const minPasswordLength = 8

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Session token emitido y perfil asociado.
type Session struct {
	Token   string
	Profile *entity.Profile
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	jwtCfg   JWTConfig
	log      zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users repository.UserRepository, profiles repository.ProfileRepository, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{users: users, profiles: profiles, jwtCfg: jwtCfg, log: log}
}

// Register crea credenciales y un perfil normal sin empresa. Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) Register(ctx context.Context, email, password, fullName string) (*Session, error) {
	norm, err := invitation.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, domain.Invalid("password", "mínimo 8 caracteres")
	}
	existing, err := uc.users.FindByEmail(ctx, norm)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := strings.TrimSpace(fullName)
	if name == "" {
		name = norm
	}
	user := &entity.User{ID: uuid.New().String(), Email: norm, PasswordHash: string(hash), CreatedAt: now}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	profile := &entity.Profile{
		ID:        user.ID,
		Email:     norm,
		FullName:  name,
		Role:      entity.RoleNormal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Msg("usuario registrado")
	return uc.issue(profile)
}

// Login verifica email/password, genera JWT y retorna token + perfil.
// Email desconocido y contraseña errónea responden igual.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*Session, error) {
	norm, err := invitation.NormalizeEmail(email)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.users.FindByEmail(ctx, norm)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	profile, err := uc.profiles.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrUserNotFound
	}
	return uc.issue(profile)
}

func (uc *AuthUseCase) issue(p *entity.Profile) (*Session, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, p.ID, string(p.RoleOrNormal()), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Profile: p}, nil
}
