package file

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storeops/attendance-backend-go/internal/pkg/storage"
)

type Service struct {
	storage storage.FileStorage
}

func NewService(fileStorage storage.FileStorage) *Service {
	return &Service{storage: fileStorage}
}

// UploadPunchProof stores a punch selfie under the advisor and date, with a
// collision-free name, and returns its serving URL.
func (s *Service) UploadPunchProof(ctx context.Context, advisorID string, file io.Reader, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	path := fmt.Sprintf("punches/%s/%s/%s%s", advisorID, time.Now().UTC().Format("2006-01-02"), uuid.NewString(), ext)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	stored, err := s.storage.Upload(ctx, file, path, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload punch proof: %w", err)
	}

	return s.storage.GetURL(ctx, stored, 0)
}
