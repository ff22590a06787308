package repository

import (
	"context"

	"loginweb/internal/store"
)

// PresenceRepository define la persistencia del mapeo usuario -> ultimo
// timestamp de actividad (segundos Unix).
type PresenceRepository interface {
	Touch(ctx context.Context, username string, ts int64) error
	Remove(ctx context.Context, username string) error
	SweepOlderThan(ctx context.Context, cutoff int64) error
	All(ctx context.Context) (map[string]int64, error)
}

// FilePresenceRepository implementa PresenceRepository sobre online.json.
// La tabla es tolerante: contenido corrupto se trata como vacio, semantica
// de cache.
type FilePresenceRepository struct {
	table *store.Table[int64]
}

func NewFilePresenceRepository(table *store.Table[int64]) *FilePresenceRepository {
	return &FilePresenceRepository{table: table}
}

func (r *FilePresenceRepository) Touch(_ context.Context, username string, ts int64) error {
	return r.table.Update(func(online map[string]int64) error {
		online[username] = ts
		return nil
	})
}

func (r *FilePresenceRepository) Remove(_ context.Context, username string) error {
	return r.table.Update(func(online map[string]int64) error {
		delete(online, username)
		return nil
	})
}

// SweepOlderThan elimina toda entrada con timestamp anterior a cutoff.
// Una entrada con ts == cutoff se conserva.
func (r *FilePresenceRepository) SweepOlderThan(_ context.Context, cutoff int64) error {
	return r.table.Update(func(online map[string]int64) error {
		for username, ts := range online {
			if ts < cutoff {
				delete(online, username)
			}
		}
		return nil
	})
}

func (r *FilePresenceRepository) All(_ context.Context) (map[string]int64, error) {
	return r.table.Load()
}
