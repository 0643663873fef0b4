package video

// FramebufferWidth and FramebufferHeight are the DMG's visible resolution.
const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
	framebufferSize   = FramebufferWidth * FramebufferHeight
)

// Framebuffer holds one frame's worth of 2-bit palette indices (0-3), the
// raw shade a pixel resolved to before any host-side palette is applied
// (spec.md §5: the PPU never produces RGB, only these indices).
type Framebuffer struct {
	pixels [framebufferSize]uint8
}

func (f *Framebuffer) set(x, y int, value uint8) {
	f.pixels[y*FramebufferWidth+x] = value & 0x03
}

// At returns the palette index at (x, y).
func (f *Framebuffer) At(x, y int) uint8 {
	return f.pixels[y*FramebufferWidth+x]
}

// Pixels exposes the raw backing array for host-side rendering; callers
// must not retain it across the next frame swap.
func (f *Framebuffer) Pixels() []uint8 {
	return f.pixels[:]
}

// DoubleBuffer holds two Framebuffers so a consumer reading the completed
// frame never observes a partially-rendered one the PPU is actively
// writing into (spec.md §5's tear-detection contract). Frame is a
// monotonically increasing counter bumped every VBlank.
type DoubleBuffer struct {
	buffers [2]Framebuffer
	active  int
	Frame   uint64
}

// write returns the buffer the PPU should currently render into.
func (d *DoubleBuffer) write() *Framebuffer {
	return &d.buffers[d.active]
}

// Swap publishes the buffer just rendered into and bumps the frame
// counter. Called once per VBlank.
func (d *DoubleBuffer) Swap() {
	d.active = 1 - d.active
	d.Frame++
}

// Current returns the most recently completed frame, safe to read while
// the PPU renders into the other buffer.
func (d *DoubleBuffer) Current() *Framebuffer {
	return &d.buffers[1-d.active]
}
