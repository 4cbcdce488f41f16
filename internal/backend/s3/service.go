// Package s3 wraps the backend's object storage endpoints.
package s3

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/cloudconsole/internal/backend"
)

// UploadResult describes one stored object.
type UploadResult struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Bucket string `json:"bucket,omitempty"`
}

// SignedURL is a temporary download link for an object.
type SignedURL struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
}

// Service issues object storage requests against the backend.
type Service struct {
	client *backend.Client
}

// New creates an object storage service on top of client.
func New(client *backend.Client) *Service {
	return &Service{client: client}
}

// Upload stores a single file. Folder and userID are sent as query
// parameters only when non-empty.
func (s *Service) Upload(
	ctx context.Context,
	file backend.File,
	folder string,
	userID string,
) (*backend.Response[UploadResult], error) {
	q := url.Values{}
	if folder != "" {
		q.Set("folder", folder)
	}
	if userID != "" {
		q.Set("userId", userID)
	}

	var resp backend.Response[UploadResult]
	err := s.client.PostMultipart(ctx, "/s3/upload", q, "file", []backend.File{file}, &resp)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", file.Name, err)
	}
	return &resp, nil
}

// UploadMultiple stores several files in one request. Results come back
// in the same order as files.
func (s *Service) UploadMultiple(
	ctx context.Context,
	files []backend.File,
	folder string,
) (*backend.Response[[]UploadResult], error) {
	q := url.Values{}
	if folder != "" {
		q.Set("folder", folder)
	}

	var resp backend.Response[[]UploadResult]
	err := s.client.PostMultipart(ctx, "/s3/upload-multiple", q, "files", files, &resp)
	if err != nil {
		return nil, fmt.Errorf("uploading %d files: %w", len(files), err)
	}
	return &resp, nil
}

// SignedURL requests a temporary link for key. A non-positive expiresIn
// leaves the expiry to the backend default.
func (s *Service) SignedURL(
	ctx context.Context,
	key string,
	expiresIn int,
) (*backend.Response[SignedURL], error) {
	var q url.Values
	if expiresIn > 0 {
		q = url.Values{"expiresIn": {strconv.Itoa(expiresIn)}}
	}

	var resp backend.Response[SignedURL]
	if err := s.client.Get(ctx, "/s3/signed-url/"+backend.EscapePath(key), q, &resp); err != nil {
		return nil, fmt.Errorf("signing url for %s: %w", key, err)
	}
	return &resp, nil
}

// Delete removes the object stored under key.
func (s *Service) Delete(
	ctx context.Context,
	key string,
) (*backend.Response[backend.Raw], error) {
	var resp backend.Response[backend.Raw]
	if err := s.client.Delete(ctx, "/s3/"+backend.EscapePath(key), &resp); err != nil {
		return nil, fmt.Errorf("deleting %s: %w", key, err)
	}
	return &resp, nil
}
