package audio

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/skillsenselab/medscribe/internal/errors"
)

// MicSource captures 16-bit PCM from the default microphone.
type MicSource struct {
	ctx        *malgo.AllocatedContext
	sampleRate uint32
	channels   uint32

	mu     sync.Mutex
	device *malgo.Device
}

// NewMicSource initializes the audio backend. Call Close when done.
func NewMicSource() (*MicSource, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}
	return &MicSource{
		ctx:        ctx,
		sampleRate: SampleRate,
		channels:   Channels,
	}, nil
}

// Start begins capturing from the default capture device. A device
// initialization failure is reported as a permission error, which is the
// common cause on desktop platforms.
func (s *MicSource) Start(onSamples func(samples []int16)) error {
	deviceCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceCfg.Capture.Format = malgo.FormatS16
	deviceCfg.Capture.Channels = s.channels
	deviceCfg.SampleRate = s.sampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pSample []byte, frameCount uint32) {
			onSamples(bytesToInt16(pSample, frameCount*s.channels))
		},
	}

	device, err := malgo.InitDevice(s.ctx.Context, deviceCfg, callbacks)
	if err != nil {
		return errors.PermissionDenied("microphone").WithCause(err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return errors.PermissionDenied("microphone").WithCause(err)
	}

	s.mu.Lock()
	s.device = device
	s.mu.Unlock()
	return nil
}

// Stop ends the capture.
func (s *MicSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device != nil {
		s.device.Uninit()
		s.device = nil
	}
	return nil
}

// Close releases all audio resources.
func (s *MicSource) Close() error {
	if err := s.Stop(); err != nil {
		return err
	}
	if s.ctx != nil {
		if err := s.ctx.Uninit(); err != nil {
			return fmt.Errorf("uninitializing audio context: %w", err)
		}
		s.ctx.Free()
		s.ctx = nil
	}
	return nil
}

// bytesToInt16 converts raw little-endian PCM bytes to int16 samples.
func bytesToInt16(data []byte, sampleCount uint32) []int16 {
	samples := make([]int16, 0, sampleCount)
	for i := uint32(0); i < sampleCount; i++ {
		offset := i * 2
		if offset+2 > uint32(len(data)) {
			break
		}
		samples = append(samples, int16(binary.LittleEndian.Uint16(data[offset:offset+2])))
	}
	return samples
}
