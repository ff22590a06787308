package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrSessionInvalid = errors.New("session invalid")
	ErrSessionExpired = errors.New("session expired")
)

// SessionService emite y valida los tokens firmados que viajan en la
// cookie de sesion. La revocacion por jti permite que un logout invalide
// la cookie del lado del servidor.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	store  SessionStore
}

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewSessionService(secret string, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "loginweb",
		store:  NewMemorySessionStore(),
	}
}

func NewSessionServiceWithStore(secret string, ttl time.Duration, store SessionStore) *SessionService {
	svc := NewSessionService(secret, ttl)
	if store != nil {
		svc.store = store
	}
	return svc
}

// TTL devuelve la vigencia configurada, util para el max-age de la cookie.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Issue firma un token de sesion nuevo para el usuario.
func (s *SessionService) Issue(username string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSessionInvalid
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrSessionInvalid
	}

	now := time.Now().UTC()
	jti := uuid.NewString()
	claims := sessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	if s.store != nil {
		if err := s.store.Store(jti, username, s.ttl); err != nil {
			return "", err
		}
	}
	return signed, nil
}

// Parse valida un token y devuelve el usuario de la sesion.
func (s *SessionService) Parse(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	if !s.isValidClaims(claims) {
		return "", ErrSessionInvalid
	}
	if s.store != nil {
		ok, err := s.store.Exists(claims.ID)
		if err != nil || !ok {
			return "", ErrSessionInvalid
		}
	}
	return claims.Username, nil
}

// Revoke invalida la sesion del token; tokens ya invalidos se ignoran.
func (s *SessionService) Revoke(token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return err
	}
	if claims.ID == "" || s.store == nil {
		return ErrSessionInvalid
	}
	return s.store.Revoke(claims.ID)
}

func (s *SessionService) parseToken(tokenString string) (sessionClaims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return sessionClaims{}, ErrSessionInvalid
	}
	var claims sessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return sessionClaims{}, ErrSessionExpired
		}
		return sessionClaims{}, ErrSessionInvalid
	}
	return claims, nil
}

func (s *SessionService) isValidClaims(claims sessionClaims) bool {
	if strings.TrimSpace(claims.Username) == "" {
		return false
	}
	if claims.Subject != claims.Username {
		return false
	}
	if claims.ID == "" {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
