package file

import (
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	path        string
	contentType string
}

func (f *fakeStorage) Upload(_ context.Context, _ io.Reader, path string, contentType string) (string, error) {
	f.path = path
	f.contentType = contentType
	return path, nil
}

func (f *fakeStorage) Download(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, nil
}

func (f *fakeStorage) Delete(_ context.Context, _ string) error { return nil }

func (f *fakeStorage) GetURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "http://localhost:8080/uploads/" + path, nil
}

func selfieHeader(filename, contentType string) *multipart.FileHeader {
	header := &multipart.FileHeader{Filename: filename, Size: 1024}
	if contentType != "" {
		header.Header = textproto.MIMEHeader{"Content-Type": []string{contentType}}
	}
	return header
}

func TestUploadPunchProof_PathCarriesAdvisorAndDate(t *testing.T) {
	storage := &fakeStorage{}
	svc := NewService(storage)

	url, err := svc.UploadPunchProof(context.Background(), "adv-1",
		strings.NewReader("jpeg"), selfieHeader("Selfie.JPG", "image/jpeg"))

	require.NoError(t, err)
	prefix := "punches/adv-1/" + time.Now().UTC().Format("2006-01-02") + "/"
	assert.True(t, strings.HasPrefix(storage.path, prefix), "got path %q", storage.path)
	assert.True(t, strings.HasSuffix(storage.path, ".jpg"), "got path %q", storage.path)
	assert.Equal(t, "image/jpeg", storage.contentType)
	assert.Equal(t, "http://localhost:8080/uploads/"+storage.path, url)
}

func TestUploadPunchProof_DefaultsContentType(t *testing.T) {
	storage := &fakeStorage{}
	svc := NewService(storage)

	_, err := svc.UploadPunchProof(context.Background(), "adv-1",
		strings.NewReader("jpeg"), selfieHeader("selfie.jpg", ""))

	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", storage.contentType)
}
