//go:build freenect && cgo

// Package freenect streams depth frames from a Kinect through libfreenect.
//
// Build with -tags freenect. libfreenect delivers frames through a callback
// during freenect_process_events; Next pumps the event loop until the
// callback has filled a frame.
package freenect

/*
#cgo LDFLAGS: -lfreenect
#include <stdint.h>
#include <sys/time.h>
#include <libfreenect/libfreenect.h>

extern void kingridDepthCallback(freenect_device *dev, void *depth, uint32_t timestamp);
*/
import "C"

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"go.uber.org/multierr"

	"github.com/bft-labs/kingrid/internal/domain"
	"github.com/bft-labs/kingrid/internal/ports"
)

// pumpTimeoutMicros bounds each freenect_process_events call so Next can observe
// context cancellation.
const pumpTimeoutMicros = 100000

var registry = struct {
	mu      sync.Mutex
	devices map[*C.freenect_device]*Source
}{devices: make(map[*C.freenect_device]*Source)}

// Source implements ports.FrameSource, ports.Indicator and ports.Tilter for
// one Kinect.
type Source struct {
	ctx    *C.freenect_context
	dev    *C.freenect_device
	width  int
	height int
	frame  domain.Frame
	ready  bool
	closed bool
	logger ports.Logger
}

// Open initialises libfreenect, opens the device at index and starts the
// 11-bit depth stream.
func Open(index int, logger ports.Logger) (*Source, error) {
	var fctx *C.freenect_context
	if C.freenect_init(&fctx, nil) < 0 {
		return nil, fmt.Errorf("%w: freenect_init failed", domain.ErrSubsystemInit)
	}
	C.freenect_set_log_level(fctx, C.FREENECT_LOG_WARNING)
	C.freenect_select_subdevices(fctx, C.freenect_device_flags(C.FREENECT_DEVICE_MOTOR|C.FREENECT_DEVICE_CAMERA))

	n := int(C.freenect_num_devices(fctx))
	logger.Info("kinect devices found", ports.Int("count", n))
	if n < 1 || index < 0 || index >= n {
		C.freenect_shutdown(fctx)
		return nil, fmt.Errorf("%w: want index %d, found %d", domain.ErrNoDevice, index, n)
	}

	var dev *C.freenect_device
	if C.freenect_open_device(fctx, &dev, C.int(index)) < 0 {
		C.freenect_shutdown(fctx)
		return nil, fmt.Errorf("%w: device %d", domain.ErrDeviceOpen, index)
	}

	mode := C.freenect_find_depth_mode(C.FREENECT_RESOLUTION_MEDIUM, C.FREENECT_DEPTH_11BIT)
	if mode.is_valid == 0 || C.freenect_set_depth_mode(dev, mode) < 0 {
		C.freenect_close_device(dev)
		C.freenect_shutdown(fctx)
		return nil, fmt.Errorf("%w: 11-bit depth mode unavailable", domain.ErrDeviceOpen)
	}

	s := &Source{
		ctx:    fctx,
		dev:    dev,
		width:  int(mode.width),
		height: int(mode.height),
		logger: logger,
	}
	s.frame = domain.NewFrame(s.width, s.height, domain.RawSentinel)

	registry.mu.Lock()
	registry.devices[dev] = s
	registry.mu.Unlock()

	C.freenect_set_depth_callback(dev, C.freenect_depth_cb(C.kingridDepthCallback))
	if C.freenect_start_depth(dev) < 0 {
		return nil, multierr.Append(
			fmt.Errorf("%w: start depth stream", domain.ErrDeviceOpen),
			s.Close(),
		)
	}

	logger.Info("depth stream started",
		ports.Int("device", index),
		ports.Int("width", s.width),
		ports.Int("height", s.height),
	)
	return s, nil
}

// Resolution returns the depth mode's frame size.
func (s *Source) Resolution() (int, int) {
	return s.width, s.height
}

// Next pumps libfreenect until a depth frame arrives.
func (s *Source) Next(ctx context.Context) (domain.Frame, error) {
	if s.closed {
		return domain.Frame{}, domain.ErrSourceClosed
	}

	s.ready = false
	for !s.ready {
		if err := ctx.Err(); err != nil {
			return domain.Frame{}, err
		}
		tv := C.struct_timeval{tv_sec: 0, tv_usec: pumpTimeoutMicros}
		if rc := C.freenect_process_events_timeout(s.ctx, &tv); rc < 0 {
			return domain.Frame{}, fmt.Errorf("freenect_process_events: %d", int(rc))
		}
	}
	return s.frame, nil
}

// receive copies a callback buffer into the frame. It runs on the goroutine
// blocked in Next.
func (s *Source) receive(depth *uint16, timestamp uint32) {
	copy(s.frame.Depth, unsafe.Slice(depth, len(s.frame.Depth)))
	s.frame.Timestamp = timestamp
	s.ready = true
}

// SetIndicator switches the camera LED.
func (s *Source) SetIndicator(state domain.IndicatorState) error {
	if s.closed {
		return domain.ErrSourceClosed
	}
	if C.freenect_set_led(s.dev, C.freenect_led_options(LEDFor(state))) < 0 {
		return fmt.Errorf("set led %s failed", state)
	}
	return nil
}

// SetTilt moves the motorised mount.
func (s *Source) SetTilt(degrees float64) error {
	if s.closed {
		return domain.ErrSourceClosed
	}
	if C.freenect_set_tilt_degs(s.dev, C.double(degrees)) < 0 {
		return fmt.Errorf("set tilt %.1f failed", degrees)
	}
	return nil
}

// Close stops streaming, turns the LED off and releases the device and
// context.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}

	var err error
	if C.freenect_stop_depth(s.dev) < 0 {
		err = multierr.Append(err, fmt.Errorf("stop depth stream failed"))
	}
	if C.freenect_set_led(s.dev, C.freenect_led_options(LEDOff)) < 0 {
		err = multierr.Append(err, fmt.Errorf("turn led off failed"))
	}
	s.closed = true

	registry.mu.Lock()
	delete(registry.devices, s.dev)
	registry.mu.Unlock()

	if C.freenect_close_device(s.dev) < 0 {
		err = multierr.Append(err, fmt.Errorf("close device failed"))
	}
	if C.freenect_shutdown(s.ctx) < 0 {
		err = multierr.Append(err, fmt.Errorf("freenect_shutdown failed"))
	}
	return err
}
