package media

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	defaultFolder = "link/products"
	uploadTimeout = 2 * time.Minute
)

// CloudinaryProvider uploads through the Cloudinary upload API.
type CloudinaryProvider struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryProvider creates a provider from the Cloudinary fields of cfg.
func NewCloudinaryProvider(cfg Config) (*CloudinaryProvider, error) {
	cld, err := cloudinary.NewFromParams(
		strings.TrimSpace(cfg.CloudName),
		strings.TrimSpace(cfg.APIKey),
		strings.TrimSpace(cfg.APISecret),
	)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	if cfg.CloudinaryBaseURL != "" {
		cld.Config.API.UploadPrefix = strings.TrimSuffix(cfg.CloudinaryBaseURL, "/")
	}

	folder := cfg.Folder
	if folder == "" {
		folder = defaultFolder
	}
	return &CloudinaryProvider{cld: cld, folder: folder}, nil
}

// Name implements Provider.
func (p *CloudinaryProvider) Name() string { return "cloudinary" }

// Put uploads obj and returns the secure URL Cloudinary assigns.
func (p *CloudinaryProvider) Put(ctx context.Context, obj Object) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	res, err := p.cld.Upload.Upload(ctx, bytes.NewReader(obj.Data), uploader.UploadParams{
		PublicID:     strings.TrimSuffix(obj.Name, path.Ext(obj.Name)),
		Folder:       p.folder,
		ResourceType: string(obj.Type),
	})
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("upload rejected: %s", res.Error.Message)
	}

	if res.SecureURL != "" {
		return res.SecureURL, nil
	}
	if res.URL != "" {
		return res.URL, nil
	}
	return "", fmt.Errorf("upload response carries no url")
}
