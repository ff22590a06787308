package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"loginweb/internal/repository"
)

// PresenceService mantiene el mapeo usuario -> ultima actividad y aplica
// la expiracion perezosa: no hay timers, solo barridos por request.
type PresenceService struct {
	logger  *zap.Logger
	repo    repository.PresenceRepository
	timeout time.Duration
	now     func() time.Time
}

func NewPresenceService(logger *zap.Logger, repo repository.PresenceRepository, timeout time.Duration) *PresenceService {
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &PresenceService{
		logger:  logger,
		repo:    repo,
		timeout: timeout,
		now:     time.Now,
	}
}

// NewPresenceServiceWithClock permite inyectar el reloj en tests.
func NewPresenceServiceWithClock(logger *zap.Logger, repo repository.PresenceRepository, timeout time.Duration, now func() time.Time) *PresenceService {
	svc := NewPresenceService(logger, repo, timeout)
	if now != nil {
		svc.now = now
	}
	return svc
}

// MarkOnline fija la ultima actividad del usuario en ahora. Una entrada
// existente simplemente se sobreescribe.
func (s *PresenceService) MarkOnline(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil
	}
	return s.repo.Touch(ctx, username, s.now().Unix())
}

// MarkOffline elimina la entrada del usuario sin importar su timestamp.
func (s *PresenceService) MarkOffline(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil
	}
	return s.repo.Remove(ctx, username)
}

// SweepExpired elimina toda entrada con mas de timeout segundos sin
// actividad. La comparacion es estricta: exactamente timeout segundos
// sigue contando como activo.
func (s *PresenceService) SweepExpired(ctx context.Context) error {
	cutoff := s.now().Unix() - int64(s.timeout.Seconds())
	return s.repo.SweepOlderThan(ctx, cutoff)
}

// ListActive barre entradas vencidas y devuelve los usuarios activos en
// orden estable.
func (s *PresenceService) ListActive(ctx context.Context) ([]string, error) {
	if err := s.SweepExpired(ctx); err != nil {
		if s.logger != nil {
			s.logger.Warn("presence sweep failed", zap.Error(err))
		}
	}
	online, err := s.repo.All(ctx)
	if err != nil {
		return []string{}, err
	}
	active := make([]string, 0, len(online))
	for username := range online {
		active = append(active, username)
	}
	sort.Strings(active)
	return active, nil
}
