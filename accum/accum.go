package accum

import (
	"errors"
	"fmt"

	"github.com/swatinair123/OSprayLoadObj/engine"
	"github.com/swatinair123/OSprayLoadObj/log"
	"github.com/swatinair123/OSprayLoadObj/ppm"
)

// The channels reset before accumulation starts.
const ClearChannels = engine.Color | engine.Accum

// The framebuffer operations needed by the accumulator. *engine.FrameBuffer
// implements this interface.
type FrameBuffer interface {
	Size() (width, height uint32)
	Clear(channels engine.Channel) error
	Map(channel engine.Channel) ([]byte, error)
	Unmap(view []byte) error
}

// Renders one synchronous pass into the accumulator's framebuffer.
type RenderFunc func(channels engine.Channel) error

// Bind an engine renderer to a framebuffer.
func EngineRenderer(r *engine.Renderer, fb *engine.FrameBuffer) RenderFunc {
	return func(channels engine.Channel) error {
		return r.RenderFrame(fb, channels)
	}
}

// A snapshot request: render Frames passes and then write the framebuffer
// contents to Path.
type Snapshot struct {
	Frames int
	Path   string
}

// Get the default snapshot sequence: one frame written to first followed by
// accumFrames more frames written to accumulated.
func DefaultSnapshots(first, accumulated string, accumFrames int) []Snapshot {
	return []Snapshot{
		{Frames: 1, Path: first},
		{Frames: accumFrames, Path: accumulated},
	}
}

// Observer is invoked after every rendered pass with the total number of
// passes since the last clear.
type Observer func(frame int)

// An Accumulator drives progressive renders into a single framebuffer and
// writes snapshots of it.
type Accumulator struct {
	logger   log.Logger
	fb       FrameBuffer
	render   RenderFunc
	channels engine.Channel

	// Passes rendered since the last clear.
	frames int

	onFrame Observer
}

// Create a new accumulator that renders the given channels into fb.
func New(fb FrameBuffer, render RenderFunc, channels engine.Channel) *Accumulator {
	return &Accumulator{
		logger:   log.New("accum"),
		fb:       fb,
		render:   render,
		channels: channels,
	}
}

// Register a callback invoked after each rendered pass.
func (a *Accumulator) OnFrame(observer Observer) {
	a.onFrame = observer
}

// Get the number of passes rendered since the last clear.
func (a *Accumulator) Frames() int {
	return a.frames
}

// Render a single pass. On return the framebuffer reflects all passes since
// the last clear.
func (a *Accumulator) RenderFrame() error {
	if err := a.render(a.channels); err != nil {
		return err
	}
	a.frames++
	if a.onFrame != nil {
		a.onFrame(a.frames)
	}
	return nil
}

// Reset the accumulation history of the given channels.
func (a *Accumulator) ClearFramebuffer(channels engine.Channel) error {
	if err := a.fb.Clear(channels); err != nil {
		return err
	}
	if channels&engine.Accum != 0 {
		a.frames = 0
	}
	return nil
}

// Map the color channel, write it to path as a pixel map and unmap it. The
// mapping is always released, even if writing fails.
func (a *Accumulator) SnapshotAndWrite(path string) (err error) {
	view, err := a.fb.Map(engine.Color)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.fb.Unmap(view))
	}()

	width, height := a.fb.Size()
	if err = ppm.WriteFile(path, width, height, view); err != nil {
		return err
	}
	a.logger.Noticef("wrote %dx%d snapshot of %d accumulated frame(s) to %s", width, height, a.frames, path)
	return nil
}

// Clear the framebuffer once and then process each snapshot in order,
// accumulating passes across snapshots.
func (a *Accumulator) Run(snapshots []Snapshot) error {
	if err := a.ClearFramebuffer(ClearChannels); err != nil {
		return err
	}

	for _, snap := range snapshots {
		if snap.Frames < 0 {
			return fmt.Errorf("accum: negative frame count %d for %s", snap.Frames, snap.Path)
		}
		for i := 0; i < snap.Frames; i++ {
			if err := a.RenderFrame(); err != nil {
				return err
			}
		}
		if err := a.SnapshotAndWrite(snap.Path); err != nil {
			return err
		}
	}
	return nil
}
