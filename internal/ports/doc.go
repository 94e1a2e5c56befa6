// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// Ports are the boundaries between the viewer core and the outside world.
// They define what the application needs from the camera, the indicator
// light and the logging backend without specifying how those needs are
// fulfilled.
//
// # Port Interfaces
//
//   - [FrameSource]: Delivers depth frames one at a time
//   - [Indicator]: Shows the out-of-range signal on a light
//   - [Tilter]: Optional motorised tilt control
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with libfreenect,
// recorded frame files, a serial line, zerolog, etc.
//
// Callback-style camera SDKs are adapted to [FrameSource] by pumping the SDK's
// event loop inside Next, so the core never sees the SDK's invocation style.
package ports
