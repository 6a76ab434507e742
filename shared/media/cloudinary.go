package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Asset is a file stored on the media host.
type Asset struct {
	PublicID string `json:"public_id" bson:"public_id"`
	URL      string `json:"url"       bson:"url"`
}

// UploadOptions controls where an upload is stored and how it is transformed.
type UploadOptions struct {
	Folder string
	// Width scales the image to the given width; 0 keeps the original size.
	Width int
}

// Uploader stores and removes media on an external host.
type Uploader interface {
	// Upload stores file, which may be a remote URL or a base64 data URI.
	Upload(ctx context.Context, file string, opts UploadOptions) (*Asset, error)
	Destroy(ctx context.Context, publicID string) error
}

// Config holds Cloudinary credentials.
type Config struct {
	CloudName string `env:"CLOUD_NAME"`
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`
}

// Validate checks if the Cloudinary configuration is valid.
func (c Config) Validate() error {
	if c.CloudName == "" {
		return errors.New("missing CLOUDINARY_CLOUD_NAME environment variable")
	}
	if c.APIKey == "" {
		return errors.New("missing CLOUDINARY_API_KEY environment variable")
	}
	if c.APISecret == "" {
		return errors.New("missing CLOUDINARY_API_SECRET environment variable")
	}
	return nil
}

// CloudinaryUploader is an Uploader backed by Cloudinary.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	logger *zerolog.Logger
}

// NewCloudinaryUploader creates a new CloudinaryUploader.
func NewCloudinaryUploader(cfg Config, logger *zerolog.Logger) (*CloudinaryUploader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}

	return &CloudinaryUploader{cld: cld, logger: logger}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, file string, opts UploadOptions) (*Asset, error) {
	params := uploader.UploadParams{Folder: opts.Folder}
	if opts.Width > 0 {
		params.Transformation = fmt.Sprintf("c_scale,w_%d", opts.Width)
	}

	result, err := u.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}

	u.logger.Debug().Str("public_id", result.PublicID).Str("folder", opts.Folder).Msg("media uploaded")

	return &Asset{PublicID: result.PublicID, URL: result.SecureURL}, nil
}

func (u *CloudinaryUploader) Destroy(ctx context.Context, publicID string) error {
	result, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", result.Error.Message)
	}

	return nil
}
