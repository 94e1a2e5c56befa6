//go:build freenect && cgo

package freenect

/*
#include <stdint.h>
#include <libfreenect/libfreenect.h>
*/
import "C"

import "unsafe"

//export kingridDepthCallback
func kingridDepthCallback(dev *C.freenect_device, depth unsafe.Pointer, timestamp C.uint32_t) {
	registry.mu.Lock()
	s := registry.devices[dev]
	registry.mu.Unlock()
	if s == nil || depth == nil {
		return
	}
	s.receive((*uint16)(depth), uint32(timestamp))
}
