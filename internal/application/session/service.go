// Package session construye las capacidades del actor una vez por petición a partir
// de una instantánea de perfil cacheada.
package session

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/evraklab-api/internal/application/ports"
	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/access"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
)

// ProfileCache instantáneas de perfil por usuario.
type ProfileCache interface {
	Get(userID string) (*entity.Profile, bool)
	Add(p *entity.Profile)
	Remove(userIDs ...string)
	Purge()
}

// Service carga e invalida sesiones.
type Service struct {
	profiles repository.ProfileRepository
	cache    ProfileCache
	log      zerolog.Logger
	now      func() time.Time

	// gen avanza con cada invalidación; una lectura iniciada antes no se cachea.
	gen atomic.Uint64
}

// NewService cache puede ser nil (sin caché).
func NewService(profiles repository.ProfileRepository, cache ProfileCache, log zerolog.Logger) *Service {
	return &Service{profiles: profiles, cache: cache, log: log, now: time.Now}
}

// Load devuelve las capacidades de userID. El estado premium se evalúa con la hora actual
// aunque el perfil venga de la caché.
func (s *Service) Load(ctx context.Context, userID string) (*access.Capabilities, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if s.cache != nil {
		if p, ok := s.cache.Get(userID); ok {
			return access.New(p, p.Organization, s.now()), nil
		}
	}
	gen := s.gen.Load()
	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cargar perfil: %w", err)
	}
	if p == nil {
		return nil, domain.ErrUserNotFound
	}
	if s.cache != nil && s.gen.Load() == gen {
		s.cache.Add(p)
	}
	return access.New(p, p.Organization, s.now()), nil
}

// Invalidate descarta las instantáneas de estos usuarios.
func (s *Service) Invalidate(userIDs ...string) {
	if s.cache == nil || len(userIDs) == 0 {
		return
	}
	s.gen.Add(1)
	s.cache.Remove(userIDs...)
	s.log.Debug().Strs("user_ids", userIDs).Msg("sesiones invalidadas")
}

// InvalidateAll descarta todas las instantáneas.
func (s *Service) InvalidateAll() {
	if s.cache == nil {
		return
	}
	s.gen.Add(1)
	s.cache.Purge()
}

// Watch escucha cambios de perfiles y empresas publicados por otras instancias.
// La función devuelta deja de escuchar; también termina al cancelarse ctx.
func (s *Service) Watch(ctx context.Context, feed ports.ChangeFeed) (func(), error) {
	stopProfiles, err := feed.Subscribe(ctx, ports.TableProfiles, ports.Filter{}, func(c ports.Change) {
		s.Invalidate(c.ID)
	})
	if err != nil {
		return nil, err
	}
	stopOrgs, err := feed.Subscribe(ctx, ports.TableOrganizations, ports.Filter{}, func(ports.Change) {
		s.InvalidateAll()
	})
	if err != nil {
		stopProfiles()
		return nil, err
	}
	return func() {
		stopProfiles()
		stopOrgs()
	}, nil
}
