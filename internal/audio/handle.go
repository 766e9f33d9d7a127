package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"lukechampine.com/blake3"
)

// Handle references a captured or uploaded recording. It is backed either
// by a file on disk (native capture) or by an in-memory blob (web upload).
// Release frees the backing storage and is safe to call more than once.
type Handle struct {
	path string
	blob []byte

	mimeType string
	size     int64
	digest   string

	releaseOnce sync.Once
	releaseErr  error
}

// NewFileHandle creates a handle backed by the file at path.
func NewFileHandle(path string) (*Handle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat recording: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	sum := blake3.Sum256(data)
	return &Handle{
		path:     path,
		mimeType: mimeForPath(path),
		size:     info.Size(),
		digest:   fmt.Sprintf("%x", sum),
	}, nil
}

// NewBlobHandle creates a handle backed by in-memory data. name is used
// only to derive the MIME type.
func NewBlobHandle(name string, data []byte) *Handle {
	sum := blake3.Sum256(data)
	return &Handle{
		blob:     data,
		mimeType: mimeForPath(name),
		size:     int64(len(data)),
		digest:   fmt.Sprintf("%x", sum),
	}
}

// Path returns the backing file path, or "" for blob-backed handles.
func (h *Handle) Path() string { return h.path }

// MIMEType returns the recording's MIME type.
func (h *Handle) MIMEType() string { return h.mimeType }

// Size returns the recording size in bytes.
func (h *Handle) Size() int64 { return h.size }

// Digest returns the BLAKE3 hex digest of the recording content. It
// identifies a recording across retries and persistence.
func (h *Handle) Digest() string { return h.digest }

// FileName returns a name suitable for upload forms.
func (h *Handle) FileName() string {
	if h.path != "" {
		return filepath.Base(h.path)
	}
	return "recording" + extForMIME(h.mimeType)
}

// Reader returns a reader over the recording content. The caller must
// close it.
func (h *Handle) Reader() (io.ReadCloser, error) {
	if h.path != "" {
		f, err := os.Open(h.path)
		if err != nil {
			return nil, fmt.Errorf("open recording: %w", err)
		}
		return f, nil
	}
	return io.NopCloser(bytes.NewReader(h.blob)), nil
}

// Bytes returns the full recording content.
func (h *Handle) Bytes() ([]byte, error) {
	if h.path != "" {
		data, err := os.ReadFile(h.path)
		if err != nil {
			return nil, fmt.Errorf("read recording: %w", err)
		}
		return data, nil
	}
	return h.blob, nil
}

// Release frees the backing storage. File-backed handles remove the file;
// blob-backed handles drop the buffer. Repeated calls return the first
// result.
func (h *Handle) Release() error {
	h.releaseOnce.Do(func() {
		if h.path != "" {
			if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
				h.releaseErr = fmt.Errorf("remove recording: %w", err)
			}
		}
		h.blob = nil
	})
	return h.releaseErr
}

// mimeForPath maps a file extension to its audio MIME type. Unknown
// extensions default to audio/mp4, which matches how mobile capture
// containers are typically labeled.
func mimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	case ".webm":
		return "audio/webm"
	case ".flac":
		return "audio/flac"
	default:
		return "audio/mp4"
	}
}

func extForMIME(mimeType string) string {
	switch mimeType {
	case "audio/wav":
		return ".wav"
	case "audio/mpeg":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/webm":
		return ".webm"
	case "audio/flac":
		return ".flac"
	default:
		return ".m4a"
	}
}
