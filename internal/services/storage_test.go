package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tt := []struct {
		in   string
		want string
	}{
		{"resume.pdf", "resume.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\简历 2024.docx`, "简历_2024.docx"},
		{".hidden.pdf", "hidden.pdf"},
		{"my cv (final).pdf", "my_cv__final_.pdf"},
		{"", "resume"},
		{"..", "resume"},
	}

	for _, tc := range tt {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeFilename(tc.in))
		})
	}
}

func multipartFile(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File[field][0]
}

func TestSaveFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	storage := NewStorageService(dir)
	require.NoError(t, storage.EnsureUploadDir())

	fh := multipartFile(t, "resume", "My CV.PDF", []byte("%PDF-1.4"))

	first, err := storage.SaveFile(fh)
	require.NoError(t, err)
	second, err := storage.SaveFile(fh)
	require.NoError(t, err)

	assert.Equal(t, "My CV.PDF", first.OriginalName)
	assert.Equal(t, ".pdf", first.Ext)
	assert.True(t, strings.HasSuffix(first.StoredName, "_My_CV.PDF"))
	assert.NotEqual(t, first.StoredName, second.StoredName)
	assert.Equal(t, dir, filepath.Dir(first.Path))

	data, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, storage.DeleteFile(first.StoredName))
	_, err = os.Stat(first.Path)
	assert.True(t, os.IsNotExist(err))
}
