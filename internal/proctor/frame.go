package proctor

import "sync"

// Frame is one downscaled camera capture in packed RGB order
// (3 bytes per pixel, row-major).
type Frame struct {
	Width  int
	Height int
	Pixels []byte
}

// Valid reports whether the pixel buffer matches the declared dimensions.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0 && len(f.Pixels) == f.Width*f.Height*3
}

// FrameSource is a pull accessor for the most recent camera frame.
// The second return is false when no frame has arrived yet.
type FrameSource interface {
	LatestFrame() (Frame, bool)
}

// FrameBuffer is a FrameSource fed by a push producer (the monitor
// WebSocket stream). Only the newest frame is retained.
type FrameBuffer struct {
	mu    sync.Mutex
	frame Frame
	set   bool
}

// NewFrameBuffer returns an empty FrameBuffer.
func NewFrameBuffer() *FrameBuffer { return &FrameBuffer{} }

// Store replaces the buffered frame. Invalid frames are dropped.
func (b *FrameBuffer) Store(f Frame) {
	if !f.Valid() {
		return
	}
	b.mu.Lock()
	b.frame = f
	b.set = true
	b.mu.Unlock()
}

// LatestFrame implements FrameSource.
func (b *FrameBuffer) LatestFrame() (Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frame, b.set
}
