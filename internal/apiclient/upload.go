package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FilesField is the multipart field every uploaded file is sent under.
const FilesField = "files"

// File is one part of a multipart upload.
type File struct {
	Name    string
	Content []byte
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadFiles POSTs files as multipart/form-data, each under the field
// "files", and decodes the response into T.
func UploadFiles[T any](ctx context.Context, c *Client, path string, files []File) (T, error) {
	var out T

	body, contentType, err := encodeFiles(files)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, c.uploadClient, http.MethodPost, path, body, contentType, &out)
	return out, err
}

func encodeFiles(files []File) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			FilesField, quoteEscaper.Replace(f.Name)))
		h.Set("Content-Type", mimetype.Detect(f.Content).String())

		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
