package s3_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cloudconsole/internal/backend"
	"github.com/nhle/cloudconsole/internal/backend/s3"
	"github.com/nhle/cloudconsole/tests/testutil"
)

func TestUploadAppendsOnlyProvidedParams(t *testing.T) {
	fake := testutil.NewBackend(t)
	fake.RespondData(map[string]any{"key": "docs/a.txt", "url": "http://cdn/a.txt"})
	svc := s3.New(fake.Client)
	file := backend.File{Name: "a.txt", Content: []byte("alpha")}

	resp, err := svc.Upload(context.Background(), file, "docs", "")
	require.NoError(t, err)
	assert.Equal(t, "docs/a.txt", resp.Data.Key)
	assert.Empty(t, resp.Data.Bucket)

	req := fake.Last(t)
	assert.Equal(t, "/api/s3/upload", req.Path)
	assert.Equal(t, "folder=docs", req.RawQuery)
	assert.True(t, strings.HasPrefix(req.ContentType, "multipart/form-data"))
	assert.Contains(t, string(req.Body), `name="file"; filename="a.txt"`)

	_, err = svc.Upload(context.Background(), file, "", "")
	require.NoError(t, err)
	assert.Empty(t, fake.Last(t).RawQuery)

	_, err = svc.Upload(context.Background(), file, "docs", "user-7")
	require.NoError(t, err)
	assert.Equal(t, "folder=docs&userId=user-7", fake.Last(t).RawQuery)
}

func TestUploadMultipleReturnsOrderedResults(t *testing.T) {
	fake := testutil.NewBackend(t)
	fake.RespondData([]map[string]any{
		{"key": "a", "url": "u1", "bucket": "b"},
		{"key": "b", "url": "u2"},
	})

	files := []backend.File{{Name: "a", Content: []byte("1")}, {Name: "b", Content: []byte("2")}}
	resp, err := s3.New(fake.Client).UploadMultiple(context.Background(), files, "")
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "b", resp.Data[0].Bucket)
	assert.Equal(t, "u2", resp.Data[1].URL)

	req := fake.Last(t)
	assert.Equal(t, "/api/s3/upload-multiple", req.Path)
	assert.Equal(t, 2, strings.Count(string(req.Body), `name="files"`))
}

func TestSignedURLExpiresParam(t *testing.T) {
	fake := testutil.NewBackend(t)
	fake.RespondData(map[string]any{"url": "http://signed", "expiresIn": 3600})
	svc := s3.New(fake.Client)

	resp, err := svc.SignedURL(context.Background(), "docs/a b.txt", 3600)
	require.NoError(t, err)
	assert.Equal(t, 3600, resp.Data.ExpiresIn)

	req := fake.Last(t)
	assert.Equal(t, "/api/s3/signed-url/docs/a%20b.txt", req.Path)
	assert.Equal(t, "expiresIn=3600", req.RawQuery)

	_, err = svc.SignedURL(context.Background(), "k", 0)
	require.NoError(t, err)
	assert.Empty(t, fake.Last(t).RawQuery)
}

func TestDeleteUsesKeyPath(t *testing.T) {
	fake := testutil.NewBackend(t)

	_, err := s3.New(fake.Client).Delete(context.Background(), "docs/a.txt")
	require.NoError(t, err)

	req := fake.Last(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/api/s3/docs/a.txt", req.Path)
}

func TestReadFileUsesBaseName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b"), 0o600))

	f, err := backend.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "report.csv", f.Name)
	assert.Equal(t, []byte("a,b"), f.Content)

	_, err = backend.ReadFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
