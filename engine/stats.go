package engine

import "time"

type TracerStat struct {
	// The tracer id.
	Id string

	// The block height and the percentage of total frame area it represents.
	BlockH       uint32
	FramePercent float32

	// Render time for assigned block
	RenderTime time.Duration
}

type FrameStats struct {
	// Individual tracer stats.
	Tracers []TracerStat

	// Frame index of the pass since the last accumulation reset.
	Frame uint32

	// Total render time for entire frame.
	RenderTime time.Duration
}
