package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// File is one file attached to a multipart upload.
type File struct {
	// Name is the filename reported to the backend.
	Name string

	// Content is the full file body.
	Content []byte
}

// ReadFile loads a local file for upload, naming it after its base name.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return File{Name: filepath.Base(path), Content: data}, nil
}

// PostMultipart sends files as a multipart/form-data POST, every file under
// the same form field, and decodes the envelope into result.
func (c *Client) PostMultipart(
	ctx context.Context,
	path string,
	query url.Values,
	field string,
	files []File,
	result interface{},
) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(
			`form-data; name=%q; filename=%q`, field, f.Name,
		))
		header.Set("Content-Type", mimetype.Detect(f.Content).String())

		part, err := w.CreatePart(header)
		if err != nil {
			return fmt.Errorf("creating form part for %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return fmt.Errorf("writing form part for %s: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}

	return c.send(
		ctx, http.MethodPost, path, query,
		&buf, w.FormDataContentType(), result,
	)
}
