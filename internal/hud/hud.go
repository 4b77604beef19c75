// Package hud draws a terminal heads-up display of the reduced map state.
package hud

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/mapbridge/internal/glmap"
	"github.com/dshills/mapbridge/internal/mapstate"
	"github.com/dshills/mapbridge/internal/store"
)

var (
	headerStyle = tcell.StyleDefault.Bold(true).Reverse(true)
	rowStyle    = tcell.StyleDefault
	dimStyle    = tcell.StyleDefault.Dim(true)
)

// flagLetters maps debug flags to the letter shown when the flag is on.
var flagLetters = []struct {
	flag   glmap.DebugFlag
	letter rune
}{
	{glmap.ShowCollisionBoxes, 'C'},
	{glmap.ShowTileBoundaries, 'T'},
	{glmap.ShowOverdrawInspector, 'O'},
}

// View renders mapstate.State onto a tcell screen.
type View struct {
	mu     sync.Mutex
	screen tcell.Screen
	owned  bool
}

// New creates a view drawing onto an initialized screen owned by the caller.
func New(screen tcell.Screen) *View {
	return &View{screen: screen}
}

// NewTerminal creates a view on the controlling terminal.
func NewTerminal() (*View, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return &View{screen: screen, owned: true}, nil
}

// Render redraws the whole display.
func (v *View) Render(s mapstate.State) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.screen.Clear()
	width, height := v.screen.Size()

	views := s.Views()
	header := fmt.Sprintf(" mapbridge  maps:%d  last:%s", len(views), orDash(s.Last))
	v.drawLine(0, width, header, headerStyle, true)

	y := 1
	if len(views) == 0 && height > 1 {
		v.drawLine(y, width, " no maps", dimStyle, false)
	}
	for _, mv := range views {
		if y >= height {
			break
		}
		v.drawLine(y, width, FormatRow(mv), rowStyle, false)
		y++
	}

	v.screen.Show()
}

// Subscribe renders st on every state change until the returned function
// is called.
func (v *View) Subscribe(st *store.Store[mapstate.State]) (unsubscribe func()) {
	v.Render(st.State())
	return st.Subscribe(func() {
		v.Render(st.State())
	})
}

// Close releases the terminal if the view created it.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.owned {
		v.screen.Fini()
		v.owned = false
	}
}

// FormatRow formats one map as a single display row.
func FormatRow(mv mapstate.MapView) string {
	if !mv.HasCamera {
		return fmt.Sprintf(" %-12s  (no camera)  last:%s cmd:%d ev:%d",
			mv.MapID, orDash(mv.LastEvent), mv.Commands, mv.Events)
	}
	c := mv.Camera
	return fmt.Sprintf(" %-12s  lng %9.4f lat %8.4f  z %5.2f  b %6.1f  p %4.1f  %s  [%s]  last:%s cmd:%d ev:%d",
		mv.MapID, c.Center.Lng, c.Center.Lat, c.Zoom, c.Bearing, c.Pitch,
		orDash(c.Projection), flagString(c.Debug), orDash(mv.LastEvent), mv.Commands, mv.Events)
}

func flagString(debug map[glmap.DebugFlag]bool) string {
	out := make([]rune, 0, len(flagLetters))
	for _, f := range flagLetters {
		if debug[f.flag] {
			out = append(out, f.letter)
		} else {
			out = append(out, '-')
		}
	}
	return string(out)
}

func (v *View) drawLine(y, width int, text string, style tcell.Style, fill bool) {
	x := 0
	for _, r := range text {
		if x >= width {
			return
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
	if fill {
		for ; x < width; x++ {
			v.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
