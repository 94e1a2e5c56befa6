// Package domain contains the core domain entities and value objects for kingrid.
//
// This package represents the innermost layer of the application. It has no
// dependencies on infrastructure concerns (camera SDK, terminal, logging) and
// contains only the sensor model and its invariants.
//
// # Entities
//
//   - [Frame]: One raw depth frame as delivered by a frame source
//   - [IndicatorState]: The tri-state signal driving the out-of-range light
//
// # Sensor model
//
// Depth values are raw 11-bit sensor units in 0..2047. The top value,
// [RawSentinel], means the sensor could not measure a distance for that
// pixel. Frames are row-major and have a fixed resolution for the lifetime
// of a run.
package domain
