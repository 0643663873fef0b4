// Package terminalfront renders a running core to a tcell terminal screen,
// the interactive counterpart to headless/info mode.
package terminalfront

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/corvee-dev/gbcore/gb"
	"github.com/corvee-dev/gbcore/gb/joypad"
	"github.com/corvee-dev/gbcore/gb/video"
)

const frameTime = time.Second / 60

// shadeChars maps a 2-bit palette index straight to a block glyph; darkest
// index first, since the framebuffer already carries the palette-applied
// shade rather than a raw tile color (gb/video.Framebuffer).
var shadeChars = []rune{'█', '▒', '░', ' '}

// runeMapping maps terminal runes to the joypad button they hold down
// while pressed.
var runeMapping = map[rune]joypad.Key{
	'a': joypad.A,
	's': joypad.B,
	'q': joypad.Select,
	'w': joypad.Start,
}

// Renderer drives a GameBoy core against a tcell screen: it ticks the core
// once per frame, blits the framebuffer as shaded glyphs, and feeds held
// keys back in as joypad state.
type Renderer struct {
	screen tcell.Screen
	core   *gb.GameBoy
	held   map[joypad.Key]bool
	frame  uint64
}

// New initializes the terminal and returns a Renderer bound to core.
func New(core *gb.GameBoy) (*Renderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminalfront: init terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("terminalfront: init terminal: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()

	return &Renderer{
		screen: screen,
		core:   core,
		held:   make(map[joypad.Key]bool),
	}, nil
}

// Run drives the frame loop until the user quits (Escape/Ctrl-C) or the
// terminal is closed.
func (r *Renderer) Run() error {
	defer r.screen.Fini()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := r.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch e := ev.(type) {
			case *tcell.EventKey:
				if r.handleKey(e) {
					return nil
				}
			case *tcell.EventResize:
				r.screen.Sync()
			}
		case <-ticker.C:
			r.core.SetJoypadState(r.joypadState())
			r.core.Tick(1.0 / 60.0)
			r.draw()
		}
	}
}

// handleKey applies one key event to held state and reports whether it
// requested the renderer to quit.
func (r *Renderer) handleKey(e *tcell.EventKey) bool {
	switch e.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRight:
		r.held[joypad.Right] = true
	case tcell.KeyLeft:
		r.held[joypad.Left] = true
	case tcell.KeyUp:
		r.held[joypad.Up] = true
	case tcell.KeyDown:
		r.held[joypad.Down] = true
	case tcell.KeyEnter:
		r.held[joypad.Start] = true
	case tcell.KeyRune:
		if key, ok := runeMapping[e.Rune()]; ok {
			r.held[key] = true
		}
	}
	return false
}

// joypadState snapshots held keys; this front end has no key-up delivery
// over PollEvent, so every press is latched for one frame and released.
func (r *Renderer) joypadState() joypad.State {
	s := joypad.State{
		Right:  r.held[joypad.Right],
		Left:   r.held[joypad.Left],
		Up:     r.held[joypad.Up],
		Down:   r.held[joypad.Down],
		A:      r.held[joypad.A],
		B:      r.held[joypad.B],
		Select: r.held[joypad.Select],
		Start:  r.held[joypad.Start],
	}
	r.held = make(map[joypad.Key]bool)
	return s
}

func (r *Renderer) draw() {
	fb := r.core.Framebuffer().Current()
	r.frame++

	r.screen.Clear()
	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			shade := shadeChars[fb.At(x, y)]
			r.screen.SetContent(x, y, shade, nil, tcell.StyleDefault)
		}
	}

	status := fmt.Sprintf("frame %d  [esc] quit", r.frame)
	for i, ch := range status {
		r.screen.SetContent(i, video.FramebufferHeight+1, ch, nil, tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}

	r.screen.Show()
}
