package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/skillsenselab/medscribe/internal/logger"
)

// Recorder accumulates PCM samples from a Source and turns each take into
// a WAV-backed Handle. It is a two-state machine: stopped or recording.
// Starting while already recording discards the in-flight take and begins
// a fresh one. Stopping while stopped is a no-op that returns a nil handle.
type Recorder struct {
	source Source
	dir    string
	log    *logger.Logger

	mu        sync.Mutex
	recording bool
	buf       []int16

	cleanupOnce sync.Once
	cleanupErr  error
}

// NewRecorder creates a recorder that writes takes into dir. When dir is
// empty a private temp directory is created.
func NewRecorder(source Source, dir string, log *logger.Logger) (*Recorder, error) {
	if dir == "" {
		tmp, err := os.MkdirTemp("", "medscribe-rec-")
		if err != nil {
			return nil, fmt.Errorf("create recording directory: %w", err)
		}
		dir = tmp
	}
	return &Recorder{
		source: source,
		dir:    dir,
		log:    log.WithComponent("audio"),
	}, nil
}

// IsRecording reports whether a take is in progress.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Start begins a new take. An in-flight take is stopped and discarded
// first, so the recorder never holds two takes at once.
func (r *Recorder) Start() error {
	r.mu.Lock()
	wasRecording := r.recording
	r.mu.Unlock()

	if wasRecording {
		r.log.Warn("start while recording, discarding in-flight take")
		if err := r.source.Stop(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.buf = r.buf[:0]
	r.recording = true
	r.mu.Unlock()

	if err := r.source.Start(r.onSamples); err != nil {
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		return err
	}
	r.log.Debug("recording started")
	return nil
}

// Stop ends the take and returns a handle to the captured audio. When no
// take is in progress it returns (nil, nil).
func (r *Recorder) Stop() (*Handle, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return nil, nil
	}
	r.recording = false
	r.mu.Unlock()

	if err := r.source.Stop(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	samples := make([]int16, len(r.buf))
	copy(samples, r.buf)
	r.buf = r.buf[:0]
	r.mu.Unlock()

	path := filepath.Join(r.dir, fmt.Sprintf("take-%d.wav", time.Now().UnixNano()))
	if err := writeWAV(path, samples, SampleRate, Channels); err != nil {
		return nil, err
	}

	handle, err := NewFileHandle(path)
	if err != nil {
		return nil, err
	}
	r.log.Info("recording stopped", logger.Fields(
		"bytes", handle.Size(),
		"digest", handle.Digest(),
	))
	return handle, nil
}

// Cleanup stops any in-flight take and removes the recording directory.
// Safe to call more than once.
func (r *Recorder) Cleanup() error {
	r.cleanupOnce.Do(func() {
		r.mu.Lock()
		recording := r.recording
		r.recording = false
		r.mu.Unlock()

		if recording {
			if err := r.source.Stop(); err != nil {
				r.cleanupErr = err
				return
			}
		}
		if err := os.RemoveAll(r.dir); err != nil {
			r.cleanupErr = fmt.Errorf("remove recording directory: %w", err)
		}
	})
	return r.cleanupErr
}

func (r *Recorder) onSamples(samples []int16) {
	r.mu.Lock()
	if r.recording {
		r.buf = append(r.buf, samples...)
	}
	r.mu.Unlock()
}
