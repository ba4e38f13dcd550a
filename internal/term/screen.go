package term

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/platform"
)

var (
	colorAccent = lipgloss.Color("5") // magenta: title
	colorDim    = lipgloss.Color("8") // gray: secondary text

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	dimStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// evdev button codes.
const (
	btnLeft    = 0x110
	btnRight   = 0x111
	btnMiddle  = 0x112
	btnForward = 0x115
	btnBack    = 0x116
)

// repaintMsg asks the program to render the latest frames.
type repaintMsg struct{}

// screen is the bubbletea model. All of its state lives in the Conn so the
// shell side can reach it.
type screen struct {
	c *Conn
}

func (s screen) Init() tea.Cmd { return nil }

func (s screen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	c := s.c
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, c.keys.Quit):
			return s, tea.Quit
		case key.Matches(msg, c.keys.Close):
			c.closeFocused()
		case key.Matches(msg, c.keys.NextWindow):
			c.focusNext()
		default:
			c.key(msg)
		}
	case tea.MouseMsg:
		c.mouse(msg)
	case repaintMsg:
		c.repaintPending.Store(false)
	}
	return s, nil
}

func (s screen) View() string { return s.c.view() }

func (c *Conn) resize(cols, rows int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cols, c.rows = cols, rows
	c.log.Debug("term resized", "cols", cols, "rows", rows)
	c.layout()
}

// closeFocused asks the shell to close the focused pane.
func (c *Conn) closeFocused() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.focus != 0 {
		c.emit(platform.LayerClosed{Surface: c.focus})
	}
}

func (c *Conn) focusNext() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var candidates []platform.SurfaceID
	current := -1
	for _, p := range c.panes {
		if p.settings.KeyboardInteractivity == core.KeyboardNone {
			continue
		}
		if p.id == c.focus {
			current = len(candidates)
		}
		candidates = append(candidates, p.id)
	}
	if len(candidates) == 0 {
		return
	}
	c.setFocus(candidates[(current+1)%len(candidates)])
}

func (c *Conn) key(msg tea.KeyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.focus == 0 {
		return
	}
	for _, k := range decodeKey(msg) {
		held := k.mods != platform.ModifierState{}
		if held {
			c.emit(platform.Modifiers{Keyboard: keyboard, Modifiers: k.mods})
		}
		c.emit(platform.Key{Keyboard: keyboard, Pressed: true, Sym: k.sym, Text: k.text})
		c.emit(platform.Key{Keyboard: keyboard, Pressed: false, Sym: k.sym})
		if held {
			c.emit(platform.Modifiers{Keyboard: keyboard})
		}
	}
}

func mouseButton(b tea.MouseButton) uint32 {
	switch b {
	case tea.MouseButtonLeft:
		return btnLeft
	case tea.MouseButtonRight:
		return btnRight
	case tea.MouseButtonMiddle:
		return btnMiddle
	case tea.MouseButtonForward:
		return btnForward
	case tea.MouseButtonBackward:
		return btnBack
	}
	return 0
}

// paneAt returns the pane covering the cell. c.mu must be held.
func (c *Conn) paneAt(x, y int) *pane {
	for _, p := range c.panes {
		if x >= p.x && x < p.x+p.width && y >= p.y && y < p.y+p.height {
			return p
		}
	}
	return nil
}

func (c *Conn) mouse(msg tea.MouseMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()
	wheel := tea.MouseEvent(msg).IsWheel()

	var events []platform.PointerEvent
	target := c.paneAt(msg.X, msg.Y)
	var id platform.SurfaceID
	if target != nil {
		id = target.id
	}
	if id != c.hover {
		if c.hover != 0 {
			events = append(events, platform.PointerEvent{Surface: c.hover, Kind: platform.PointerLeave})
		}
		c.hover = id
		if target != nil {
			events = append(events, platform.PointerEvent{
				Surface: id,
				Kind:    platform.PointerEnter,
				X:       float64(msg.X - target.x),
				Y:       float64(msg.Y - target.y),
			})
		}
	}
	if target != nil {
		ev := platform.PointerEvent{Surface: id, X: float64(msg.X - target.x), Y: float64(msg.Y - target.y)}
		switch {
		case msg.Action == tea.MouseActionMotion:
			ev.Kind = platform.PointerMotion
			events = append(events, ev)
		case msg.Action == tea.MouseActionPress && wheel:
			ev.Kind = platform.PointerAxis
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				ev.Vertical = -1
			case tea.MouseButtonWheelDown:
				ev.Vertical = 1
			case tea.MouseButtonWheelLeft:
				ev.Horizontal = -1
			case tea.MouseButtonWheelRight:
				ev.Horizontal = 1
			}
			events = append(events, ev)
		case msg.Action == tea.MouseActionPress:
			ev.Kind = platform.PointerPress
			ev.Button = mouseButton(msg.Button)
			c.pressed = ev.Button
			events = append(events, ev)
		case msg.Action == tea.MouseActionRelease:
			ev.Kind = platform.PointerRelease
			ev.Button = mouseButton(msg.Button)
			if ev.Button == 0 {
				ev.Button = c.pressed
			}
			c.pressed = 0
			events = append(events, ev)
		}
	}
	if len(events) > 0 {
		c.emit(platform.PointerFrame{Pointer: pointer, Events: events})
	}
	if target != nil && msg.Action == tea.MouseActionPress && !wheel &&
		target.settings.KeyboardInteractivity != core.KeyboardNone {
		c.setFocus(id)
	}
}

// view composes the panes and the status line.
func (c *Conn) view() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rows <= 0 || c.cols <= 0 {
		return ""
	}
	lines := make([]string, max(c.rows-statusRows, 0))
	for _, p := range c.panes {
		if p.frame == "" {
			continue
		}
		for i, line := range strings.Split(p.frame, "\n") {
			row := p.y + i
			if i >= p.height || row >= len(lines) {
				break
			}
			lines[row] = strings.Repeat(" ", p.x) + line
		}
	}
	return strings.Join(append(lines, c.statusLine()), "\n")
}

// statusLine names the focused pane and lists the terminal bindings. c.mu
// must be held.
func (c *Conn) statusLine() string {
	focused := "none"
	if p := c.pane(c.focus); p != nil {
		focused = p.settings.Namespace
		if focused == "" {
			focused = fmt.Sprintf("#%d", p.id)
		}
	}
	line := titleStyle.Render("layershell") +
		dimStyle.Render(fmt.Sprintf("%d windows · focus %s ", len(c.panes), focused)) +
		c.help.ShortHelpView(c.keys.ShortHelp())
	return lipgloss.NewStyle().MaxWidth(c.cols).Render(line)
}
