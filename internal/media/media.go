// Package media stores uploaded listing images and videos and returns their public URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/linkmarket/link-server/internal/domain"
	domainerrors "github.com/linkmarket/link-server/internal/errors"
)

const (
	// DefaultMaxFileSize is the per-file upload limit.
	DefaultMaxFileSize = 50 * 1024 * 1024

	// MaxFiles is the number of files accepted per listing request.
	MaxFiles = 10
)

var (
	// ErrUnsupportedType is returned for content that is neither an image nor a video.
	ErrUnsupportedType = errors.New("only images and videos are accepted")

	// ErrTooLarge is returned when a file exceeds the configured size limit.
	ErrTooLarge = errors.New("file exceeds the maximum upload size")

	// ErrEmpty is returned for zero-length uploads.
	ErrEmpty = errors.New("file is empty")

	// ErrNoProvider is returned when no provider is configured.
	ErrNoProvider = errors.New("no media provider configured")
)

// Config is the media store configuration.
// Cloudinary is used when CloudName, APIKey and APISecret are all set; the local
// directory is always available as a fallback when Dir is set.
type Config struct {
	Dir           string
	PublicBaseURL string
	MaxFileSize   int64

	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	// CloudinaryBaseURL overrides the SDK's upload prefix (https://api.cloudinary.com).
	CloudinaryBaseURL string
}

// HasCloudinary reports whether all Cloudinary credentials are present.
func (c Config) HasCloudinary() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Provider persists one object and returns its public URL.
type Provider interface {
	Name() string
	Put(ctx context.Context, object Object) (string, error)
}

// Object is a sniffed upload ready for a provider.
type Object struct {
	Name        string // unique object name including extension
	ContentType string
	Type        domain.MediaType
	Data        []byte
}

// Stored describes a saved upload.
type Stored struct {
	URL      string
	Type     domain.MediaType
	BlurHash string
	Provider string
}

// Store validates uploads and writes them through its providers in order,
// falling back to the next provider when one fails.
type Store struct {
	providers   []Provider
	local       *LocalProvider
	maxFileSize int64
	logger      *slog.Logger
}

// New builds a Store from cfg.
func New(cfg Config, logger *slog.Logger) (*Store, error) {
	s := &Store{maxFileSize: cfg.MaxFileSize, logger: logger}
	if s.maxFileSize <= 0 {
		s.maxFileSize = DefaultMaxFileSize
	}

	if cfg.HasCloudinary() {
		cld, err := NewCloudinaryProvider(cfg)
		if err != nil {
			return nil, err
		}
		s.providers = append(s.providers, cld)
	}
	if cfg.Dir != "" {
		local, err := NewLocalProvider(cfg.Dir, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		s.local = local
		s.providers = append(s.providers, local)
	}
	if len(s.providers) == 0 {
		return nil, ErrNoProvider
	}

	names := make([]string, len(s.providers))
	for i, p := range s.providers {
		names[i] = p.Name()
	}
	logger.Info("media store configured", "providers", strings.Join(names, ","))
	return s, nil
}

// NewWithProviders builds a Store over explicit providers.
func NewWithProviders(logger *slog.Logger, maxFileSize int64, providers ...Provider) *Store {
	s := &Store{providers: providers, maxFileSize: maxFileSize, logger: logger}
	if s.maxFileSize <= 0 {
		s.maxFileSize = DefaultMaxFileSize
	}
	for _, p := range providers {
		if local, ok := p.(*LocalProvider); ok {
			s.local = local
		}
	}
	return s
}

// Local returns the disk provider, or nil when none is configured.
func (s *Store) Local() *LocalProvider {
	return s.local
}

// MaxFileSize returns the per-file limit in bytes.
func (s *Store) MaxFileSize() int64 {
	return s.maxFileSize
}

// Detect sniffs data and returns its MIME type and media kind.
func Detect(data []byte) (*mimetype.MIME, domain.MediaType, error) {
	if len(data) == 0 {
		return nil, "", ErrEmpty
	}
	mt := mimetype.Detect(data)
	typ, ok := domain.MediaTypeFromMIME(mt.String())
	if !ok {
		return nil, "", fmt.Errorf("%w: got %s", ErrUnsupportedType, mt.String())
	}
	return mt, typ, nil
}

// Save validates data and stores it. Images also get a BlurHash placeholder.
func (s *Store) Save(ctx context.Context, filename string, data []byte) (*Stored, error) {
	if len(s.providers) == 0 {
		return nil, ErrNoProvider
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, ErrTooLarge
	}

	mt, typ, err := Detect(data)
	if err != nil {
		return nil, err
	}

	obj := Object{
		Name:        uuid.NewString() + mt.Extension(),
		ContentType: mt.String(),
		Type:        typ,
		Data:        data,
	}

	stored := &Stored{Type: typ}
	if typ == domain.MediaTypeImage {
		hash, err := ComputeBlurHash(data)
		if err != nil {
			s.logger.Debug("blurhash skipped", "filename", filename, "error", err)
		}
		stored.BlurHash = hash
	}

	var errs []error
	for _, p := range s.providers {
		url, err := p.Put(ctx, obj)
		if err != nil {
			s.logger.Warn("media provider failed",
				"provider", p.Name(),
				"filename", filename,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		stored.URL = url
		stored.Provider = p.Name()
		return stored, nil
	}
	return nil, domainerrors.Upstream("media upload failed", errors.Join(errs...))
}
