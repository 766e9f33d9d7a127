package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// MultipartBody describes a multipart/form-data request body.
type MultipartBody struct {
	// Fields are plain form fields.
	Fields map[string]string
	// Files are file parts.
	Files []FileField
}

// FileField is a single file part of a multipart body.
type FileField struct {
	// FieldName is the form field name (e.g. "file").
	FieldName string
	// FileName is the reported file name.
	FileName string
	// ContentType overrides the part content type when non-empty.
	ContentType string
	// Data holds the file content. Used when Reader is nil.
	Data []byte
	// Reader streams the file content when set.
	Reader io.Reader
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// encode builds the multipart body, returning the encoded bytes and the
// Content-Type header value with boundary.
func (m *MultipartBody) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range m.Fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write field %q: %w", name, err)
		}
	}

	for _, f := range m.Files {
		var part io.Writer
		var err error
		if f.ContentType != "" {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
				escapeQuotes(f.FieldName), escapeQuotes(f.FileName)))
			h.Set("Content-Type", f.ContentType)
			part, err = w.CreatePart(h)
		} else {
			part, err = w.CreateFormFile(f.FieldName, f.FileName)
		}
		if err != nil {
			return nil, "", fmt.Errorf("create part %q: %w", f.FieldName, err)
		}

		src := f.Reader
		if src == nil {
			src = bytes.NewReader(f.Data)
		}
		if _, err := io.Copy(part, src); err != nil {
			return nil, "", fmt.Errorf("copy part %q: %w", f.FieldName, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
