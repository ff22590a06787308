package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"loginweb/internal/domain"
	"loginweb/internal/repository"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyExists      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserService coordina registro, credenciales y perfil de usuarios.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	return &UserService{
		logger: logger,
		users:  users,
	}
}

// Register crea una cuenta nueva con hash bcrypt de la contrasena.
func (s *UserService) Register(ctx context.Context, username, password string) error {
	if s.users == nil {
		return errors.New("user service not configured")
	}

	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return ErrInvalidInput
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	err = s.users.Create(ctx, username, domain.User{PasswordHash: string(hashBytes)})
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}

// Authenticate valida credenciales. Usuario desconocido y contrasena
// incorrecta devuelven el mismo error generico.
func (s *UserService) Authenticate(ctx context.Context, username, password string) error {
	if s.users == nil {
		return errors.New("user service not configured")
	}

	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return ErrInvalidCredentials
	}

	user, err := s.users.Get(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if user.PasswordHash == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// SetAvatar sobreescribe el avatar. Una cuenta inexistente se ignora en
// silencio: la sesion que llega hasta aca se asume valida.
func (s *UserService) SetAvatar(ctx context.Context, username, avatarURL string) error {
	if s.users == nil {
		return errors.New("user service not configured")
	}
	err := s.users.SetAvatar(ctx, username, avatarURL)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// Profile devuelve la vista de perfil de una cuenta.
func (s *UserService) Profile(ctx context.Context, username string) (domain.Profile, error) {
	if s.users == nil {
		return domain.Profile{}, errors.New("user service not configured")
	}
	user, err := s.users.Get(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{
		Username: username,
		Email:    user.Email,
		Avatar:   user.Avatar,
	}, nil
}

// ProvisionExternal crea una cuenta a partir de una identidad externa ya
// verificada. El nombre candidato sale del display name reducido a
// alfanumericos, con el local-part del email como respaldo, y se
// desambigua con sufijos numericos crecientes. La contrasena es un
// secreto aleatorio que nunca se revela.
func (s *UserService) ProvisionExternal(ctx context.Context, displayName, email string) (string, error) {
	if s.users == nil {
		return "", errors.New("user service not configured")
	}

	base := stripNonAlnum(displayName)
	if base == "" {
		base = stripNonAlnum(localPart(email))
	}
	if base == "" {
		return "", ErrInvalidInput
	}

	secret, err := randomSecret()
	if err != nil {
		return "", err
	}
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	user := domain.User{
		PasswordHash: string(hashBytes),
		Email:        strings.TrimSpace(email),
	}

	candidate := base
	for i := 1; ; i++ {
		exists, err := s.users.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			err = s.users.Create(ctx, candidate, user)
			if err == nil {
				return candidate, nil
			}
			if !errors.Is(err, repository.ErrDuplicate) {
				return "", err
			}
			// Otro request gano la carrera por este nombre; seguir probando.
		}
		candidate = base + strconv.Itoa(i)
	}
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func localPart(email string) string {
	email = strings.TrimSpace(email)
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return ""
}

func randomSecret() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
