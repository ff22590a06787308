package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AvatarService guarda avatares subidos y descarga imagenes de perfil
// externas. Los archivos terminan en uploadDir como <usuario>.<ext> y el
// registro del usuario guarda la ruta publica.
type AvatarService struct {
	logger     *zap.Logger
	users      *UserService
	uploadDir  string
	publicBase string
	client     *http.Client
}

func NewAvatarService(logger *zap.Logger, users *UserService, uploadDir, publicBase string, fetchTimeout time.Duration) *AvatarService {
	if fetchTimeout <= 0 {
		fetchTimeout = 5 * time.Second
	}
	if publicBase == "" {
		publicBase = "/static/uploads/"
	}
	return &AvatarService{
		logger:     logger,
		users:      users,
		uploadDir:  uploadDir,
		publicBase: publicBase,
		client:     &http.Client{Timeout: fetchTimeout},
	}
}

// SaveUpload escribe el archivo subido y actualiza el avatar del usuario.
// La extension sale del nombre del archivo del cliente, en minusculas.
func (s *AvatarService) SaveUpload(ctx context.Context, username, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return "", ErrInvalidInput
	}
	publicURL, err := s.writeAvatar(username, ext, r)
	if err != nil {
		return "", err
	}
	if err := s.users.SetAvatar(ctx, username, publicURL); err != nil {
		return "", err
	}
	return publicURL, nil
}

// FetchExternal descarga la imagen de perfil del proveedor de identidad.
// Cualquier fallo se loguea y se ignora: el avatar queda sin fijar.
func (s *AvatarService) FetchExternal(ctx context.Context, username, pictureURL string) {
	if strings.TrimSpace(pictureURL) == "" {
		return
	}
	publicURL, err := s.fetchAndStore(ctx, username, pictureURL)
	if err == nil {
		err = s.users.SetAvatar(ctx, username, publicURL)
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("external avatar fetch failed",
			zap.String("username", username),
			zap.Error(err),
		)
	}
}

func (s *AvatarService) fetchAndStore(ctx context.Context, username, pictureURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pictureURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("avatar fetch: unexpected status %d", resp.StatusCode)
	}
	return s.writeAvatar(username, "jpg", resp.Body)
}

func (s *AvatarService) writeAvatar(username, ext string, r io.Reader) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", ErrInvalidInput
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}
	name := username + "." + ext
	f, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path.Join(s.publicBase, name), nil
}
