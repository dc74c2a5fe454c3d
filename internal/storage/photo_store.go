// Package storage persists uploaded profile photos on local disk.
//
// Photos are decoded, scaled down to a bounded size and re-encoded as JPEG
// before they are written, so the store never serves a byte stream the
// client controls.
package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vkotliar/profile-backend/internal/config"
	"github.com/vkotliar/profile-backend/internal/constants"
	"github.com/vkotliar/profile-backend/internal/utils"
)

// PhotoStore saves profile photos and returns the public URL path they are
// served under.
type PhotoStore interface {
	// Save reads an image from r, normalizes it and stores it. It returns
	// the public URL path of the stored photo.
	Save(r io.Reader) (string, error)

	// Remove deletes a previously stored photo by its public URL path.
	// Removing a photo that no longer exists is not an error.
	Remove(photoURL string) error
}

// LocalPhotoStore is a PhotoStore backed by a directory on local disk.
type LocalPhotoStore struct {
	dir          string
	maxBytes     int64
	maxDimension int
	jpegQuality  int
}

// NewLocalPhotoStore creates the upload directory if needed and returns a
// store writing into it.
func NewLocalPhotoStore(cfg *config.UploadSettings) (*LocalPhotoStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", cfg.Dir, err)
	}

	return &LocalPhotoStore{
		dir:          cfg.Dir,
		maxBytes:     cfg.MaxBytes,
		maxDimension: cfg.MaxDimension,
		jpegQuality:  cfg.JPEGQuality,
	}, nil
}

// Save stores a photo. Oversized uploads and undecodable payloads are
// rejected before anything touches disk.
func (s *LocalPhotoStore) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded photo: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", utils.NewBadRequestError(constants.MsgPhotoTooLarge)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", utils.NewBadRequestError(constants.MsgUnsupportedImage)
	}

	bounds := img.Bounds()
	if bounds.Dx() > s.maxDimension || bounds.Dy() > s.maxDimension {
		img = imaging.Fit(img, s.maxDimension, s.maxDimension, imaging.Lanczos)
	}

	filename := uuid.NewString() + ".jpg"
	fullPath := filepath.Join(s.dir, filename)

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create photo file: %w", err)
	}
	defer f.Close()

	if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(s.jpegQuality)); err != nil {
		// Best effort: do not leave a partial file behind.
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to encode photo: %w", err)
	}

	log.Debug().
		Str("file", filename).
		Int("original_bytes", len(data)).
		Msg("Profile photo stored")

	return path.Join(constants.UploadsBasePath, filename), nil
}

// Remove deletes the file backing a public photo URL.
func (s *LocalPhotoStore) Remove(photoURL string) error {
	filename := path.Base(photoURL)
	// Guard against paths that escape the upload directory.
	if filename == "." || filename == "/" || strings.Contains(filename, "..") {
		return utils.NewBadRequestError(constants.MsgUnsupportedImage)
	}

	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove photo %s: %w", filename, err)
	}
	return nil
}
