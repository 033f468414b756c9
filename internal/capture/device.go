package capture

import (
	"encoding/hex"
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"github.com/gen2brain/malgo"

	"github.com/thalesmourabh/voxcode/internal/logging"
)

// DeviceInfo describes an available capture device for user selection.
type DeviceInfo struct {
	Index int
	Name  string
	ID    string
}

// MalgoOpener opens capture streams through the miniaudio backend. The zero
// value is usable.
type MalgoOpener struct {
	Debug bool
}

// platformBackend picks the native backend per OS instead of letting
// miniaudio auto-select, which can land on null backends inside containers.
func platformBackend() malgo.Backend {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa
	case "windows":
		return malgo.BackendWasapi
	case "darwin":
		return malgo.BackendCoreaudio
	default:
		return malgo.BackendNull
	}
}

func initContext(debug bool) (*malgo.AllocatedContext, error) {
	logger := logging.ForService("malgo")
	return malgo.InitContext([]malgo.Backend{platformBackend()}, malgo.ContextConfig{}, func(message string) {
		if debug {
			logger.Debug(strings.TrimSpace(message))
		}
	})
}

// ListDevices enumerates the capture devices the backend exposes.
func ListDevices() ([]DeviceInfo, error) {
	ctx, err := initContext(false)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}
	defer func() { _ = ctx.Uninit() }()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate capture devices: %w", err)
	}

	devices := make([]DeviceInfo, 0, len(infos))
	for i, info := range infos {
		decodedID, err := hexToASCII(info.ID.String())
		if err != nil {
			continue
		}
		devices = append(devices, DeviceInfo{
			Index: i,
			Name:  info.Name(),
			ID:    decodedID,
		})
	}
	return devices, nil
}

// Open implements DeviceOpener.
func (o *MalgoOpener) Open(cfg StreamConfig, onChunk func([]byte), onStop func()) (Stream, error) {
	ctx, err := initContext(o.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	if cfg.Source != "" {
		infos, err := ctx.Devices(malgo.Capture)
		if err != nil {
			_ = ctx.Uninit()
			return nil, fmt.Errorf("failed to enumerate capture devices: %w", err)
		}
		source, err := selectCaptureSource(cfg.Source, infos)
		if err != nil {
			_ = ctx.Uninit()
			return nil, err
		}
		deviceConfig.Capture.DeviceID = source.pointer
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pSamples []byte, framecount uint32) {
			onChunk(pSamples)
		},
		Stop: onStop,
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}

	return &malgoStream{ctx: ctx, device: device}, nil
}

type malgoStream struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
}

func (s *malgoStream) Start() error {
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	return nil
}

// Stop halts the device and releases both the device and its context.
// The stream is unusable afterwards.
func (s *malgoStream) Stop() error {
	err := s.device.Stop()
	s.device.Uninit()
	if uerr := s.ctx.Uninit(); err == nil {
		err = uerr
	}
	return err
}

type captureSource struct {
	name    string
	id      string
	pointer unsafe.Pointer
}

// selectCaptureSource resolves a user-facing source setting against the
// enumerated devices.
func selectCaptureSource(audioSource string, infos []malgo.DeviceInfo) (captureSource, error) {
	for _, info := range infos {
		decodedID, err := hexToASCII(info.ID.String())
		if err != nil {
			continue
		}
		if matchesDeviceSettings(decodedID, info, audioSource) {
			return captureSource{
				name:    info.Name(),
				id:      decodedID,
				pointer: info.ID.Pointer(),
			}, nil
		}
	}
	return captureSource{}, fmt.Errorf("no capture source matches %q", audioSource)
}

// matchesDeviceSettings checks whether a device satisfies the user setting.
func matchesDeviceSettings(decodedID string, info malgo.DeviceInfo, audioSource string) bool {
	if runtime.GOOS == "windows" && audioSource == "sysdefault" {
		// Windows has no "sysdefault" device, use miniaudio's default.
		return info.IsDefault == 1
	}
	return decodedID == audioSource || strings.Contains(info.Name(), audioSource)
}

// hexToASCII converts miniaudio's hex encoded device IDs to readable form.
func hexToASCII(hexStr string) (string, error) {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
