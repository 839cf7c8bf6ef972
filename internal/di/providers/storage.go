package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/linkmarket/link-server/internal/config"
	"github.com/linkmarket/link-server/internal/logger"
	"github.com/linkmarket/link-server/internal/media"
)

// ProvideMediaStore provides upload storage: Cloudinary when configured, local disk always.
func ProvideMediaStore(i do.Injector) (*media.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	store, err := media.New(media.Config{
		Dir:           cfg.Storage.MediaDir,
		PublicBaseURL: cfg.Server.MediaBaseURL,
		MaxFileSize:   cfg.Storage.MaxUploadSize,
		CloudName:     cfg.Cloudinary.CloudName,
		APIKey:        cfg.Cloudinary.APIKey,
		APISecret:     cfg.Cloudinary.APISecret,
		Folder:        cfg.Cloudinary.Folder,
	}, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("media storage: %w", err)
	}
	return store, nil
}
