package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"alfredoptarigan/career-planner/internal/models"
)

type StorageService interface {
	SaveFile(file *multipart.FileHeader) (*models.UploadedFile, error)
	GetFilePath(filename string) string
	DeleteFile(filename string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// SaveFile stores the upload under a sanitized name. Any extension is accepted;
// the extractor decides what it can read.
func (s *storageService) SaveFile(file *multipart.FileHeader) (*models.UploadedFile, error) {
	safeName := SanitizeFilename(file.Filename)
	ext := strings.ToLower(filepath.Ext(safeName))

	storedName := fmt.Sprintf("%s_%s", uuid.New().String(), safeName)
	filePath := filepath.Join(s.uploadPath, storedName)

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &models.UploadedFile{
		OriginalName: file.Filename,
		StoredName:   storedName,
		Path:         filePath,
		Ext:          ext,
	}, nil
}

func (s *storageService) GetFilePath(filename string) string {
	return filepath.Join(s.uploadPath, filename)
}

func (s *storageService) DeleteFile(filename string) error {
	filePath := s.GetFilePath(filename)
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// SanitizeFilename drops any directory part and replaces every rune that is not a
// letter, digit, '.', '-' or '_' with '_'. Leading dots are removed so the result
// can never be hidden or climb out of the upload directory.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	safe := strings.TrimLeft(b.String(), ".")
	if safe == "" || safe == "_" {
		return "resume"
	}
	return safe
}
