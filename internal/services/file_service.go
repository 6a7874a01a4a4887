package services

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/config"
	"github.com/google/uuid"
)

const (
	maxImageDimension = 1200
	jpegQuality       = 85
)

// FileService validates, normalizes and stores evidence images. Every stored
// image is re-encoded as JPEG bounded to 1200x1200, which both caps disk use
// and strips whatever the original container carried.
type FileService struct {
	cfg *config.Config
}

func NewFileService(cfg *config.Config) *FileService {
	return &FileService{cfg: cfg}
}

// EnsureDirectories creates the upload tree at startup.
func (s *FileService) EnsureDirectories() error {
	dir := filepath.Join(s.cfg.UploadPath, "reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// ValidateBatch rejects an upload set before any file touches disk.
func (s *FileService) ValidateBatch(files []*multipart.FileHeader) error {
	if len(files) == 0 {
		return apperr.Validation("at least one image file is required")
	}
	if len(files) > s.cfg.MaxFiles {
		return apperr.Validation(fmt.Sprintf("at most %d images may be uploaded per report", s.cfg.MaxFiles))
	}
	for _, fh := range files {
		if fh.Size > s.cfg.MaxFileSize {
			return apperr.Validation(fmt.Sprintf("file %s exceeds the %d byte size limit", fh.Filename, s.cfg.MaxFileSize))
		}
		if !s.allowedType(fh.Header.Get("Content-Type")) {
			return apperr.Validation(fmt.Sprintf("file %s has unsupported type; allowed: %s",
				fh.Filename, strings.Join(s.cfg.AllowedImageTypes, ", ")))
		}
	}
	return nil
}

// Store processes one upload: decode, fit inside the dimension bound without
// upscaling, and write as JPEG under a random name.
func (s *FileService) Store(fh *multipart.FileHeader) (*StoredFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("file %s is not a valid image", fh.Filename))
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxImageDimension || bounds.Dy() > maxImageDimension {
		img = imaging.Fit(img, maxImageDimension, maxImageDimension, imaging.Lanczos)
	}

	filename := uuid.New().String() + ".jpg"
	path := filepath.Join(s.cfg.UploadPath, "reports", filename)

	if err := imaging.Save(img, path, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat stored image: %w", err)
	}

	return &StoredFile{
		Filename: filename,
		Path:     path,
		Size:     info.Size(),
	}, nil
}

// StoreBatch validates then stores a set of uploads. On any failure the files
// already written are cleaned up so a rejected batch leaves no orphans.
func (s *FileService) StoreBatch(files []*multipart.FileHeader) ([]StoredFile, error) {
	if err := s.ValidateBatch(files); err != nil {
		return nil, err
	}

	stored := make([]StoredFile, 0, len(files))
	for _, fh := range files {
		sf, err := s.Store(fh)
		if err != nil {
			for _, done := range stored {
				_ = s.Delete(done.Path)
			}
			return nil, err
		}
		stored = append(stored, *sf)
	}
	return stored, nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *FileService) Delete(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *FileService) allowedType(contentType string) bool {
	for _, t := range s.cfg.AllowedImageTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}
