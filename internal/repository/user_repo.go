package repository

import (
	"context"
	"errors"

	"loginweb/internal/domain"
	"loginweb/internal/store"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("username already taken")
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Get(ctx context.Context, username string) (domain.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, username string, user domain.User) error
	SetAvatar(ctx context.Context, username string, avatar string) error
}

// FileUserRepository implementa UserRepository sobre la tabla users.json.
// Los errores de lectura se propagan: un archivo de usuarios corrupto no
// debe aparecer como "no hay usuarios".
type FileUserRepository struct {
	table *store.Table[domain.User]
}

func NewFileUserRepository(table *store.Table[domain.User]) *FileUserRepository {
	return &FileUserRepository{table: table}
}

func (r *FileUserRepository) Get(_ context.Context, username string) (domain.User, error) {
	users, err := r.table.Load()
	if err != nil {
		return domain.User{}, err
	}
	user, ok := users[username]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return user, nil
}

func (r *FileUserRepository) Exists(_ context.Context, username string) (bool, error) {
	users, err := r.table.Load()
	if err != nil {
		return false, err
	}
	_, ok := users[username]
	return ok, nil
}

func (r *FileUserRepository) Create(_ context.Context, username string, user domain.User) error {
	return r.table.Update(func(users map[string]domain.User) error {
		if _, ok := users[username]; ok {
			return ErrDuplicate
		}
		users[username] = user
		return nil
	})
}

func (r *FileUserRepository) SetAvatar(_ context.Context, username string, avatar string) error {
	return r.table.Update(func(users map[string]domain.User) error {
		user, ok := users[username]
		if !ok {
			return ErrNotFound
		}
		user.Avatar = &avatar
		users[username] = user
		return nil
	})
}
