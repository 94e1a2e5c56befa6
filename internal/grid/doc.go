// Package grid aggregates raw depth frames into per-region statistics.
//
// A frame is partitioned into Divisions x Divisions regions. Each pixel is
// assigned by proportional scaling with truncation:
//
//	gridCol = col * Divisions / Width
//	gridRow = row * Divisions / Height
//
// so boundary regions may hold fewer pixels when the resolution is not a
// multiple of Divisions. Statistics are rebuilt from zero for every frame.
//
// The median is approximate: it is the lower edge of the first histogram bin
// at which the running count reaches half of the region's in-range pixels,
// so it is only accurate to one bin width (RawLevels / HistogramBins units).
package grid
