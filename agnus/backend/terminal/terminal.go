package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-agnus/agnus/backend"
	"github.com/valerio/go-agnus/agnus/backend/terminal/render"
	"github.com/valerio/go-agnus/agnus/debug"
	"github.com/valerio/go-agnus/agnus/input"
	"github.com/valerio/go-agnus/agnus/input/action"
	"github.com/valerio/go-agnus/agnus/input/event"
	"github.com/valerio/go-agnus/agnus/video"
)

const (
	logPanelWidth = 48
	minTermWidth  = 40
	minTermHeight = 12
)

// Key expiry timeout - slightly longer than typical key repeat interval
const keyTimeout = 100 * time.Millisecond

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen    tcell.Screen
	running   bool
	logBuffer *render.LogBuffer
	logLevel  *slog.LevelVar
	config    backend.BackendConfig

	mu         sync.Mutex
	eventQueue []backend.InputEvent // collected engine events

	keyStates  map[action.Action]time.Time // Last time each key was pressed
	activeKeys map[action.Action]bool      // Keys active in previous frame

	currentFrame *video.FrameBuffer
}

// New creates a new terminal backend
func New() *Backend {
	return &Backend{}
}

// NewWithScreen creates a backend drawing to an existing screen, such as a
// simulation screen in tests.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{screen: screen}
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.running = true

	// Capture logs in a ring buffer shown next to the display
	t.logBuffer = render.NewLogBuffer(200)
	t.logLevel = new(slog.LevelVar)
	t.logLevel.Set(slog.LevelInfo)
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, t.logLevel)))

	slog.Info("Terminal backend initialized")
	if config.ShowDebug {
		t.logLevel.Set(slog.LevelDebug)
		slog.Debug("Debug mode enabled")
	}

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	go t.handleSignals()

	return nil
}

// Update renders a frame and processes events
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	var events []backend.InputEvent
	now := time.Now()

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	// Terminals report key repeats but no releases: a player control is
	// held while its repeats keep arriving.
	currentlyActive := make(map[action.Action]bool)
	for act, lastPressed := range t.keyStates {
		if now.Sub(lastPressed) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}
		currentlyActive[act] = true
		if !t.activeKeys[act] {
			slog.Debug("Key press", "action", act)
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		} else {
			events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
		}
	}
	for act := range t.activeKeys {
		if !currentlyActive[act] {
			slog.Debug("Key release", "action", act)
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = currentlyActive

	t.mu.Lock()
	for _, evt := range t.eventQueue {
		t.HandleAction(evt.Action)
	}
	events = append(events, t.eventQueue...)
	t.eventQueue = nil
	running := t.running
	t.mu.Unlock()

	if !running {
		return events, nil
	}

	t.currentFrame = frame
	t.render(frame)
	t.screen.Show()

	return events, nil
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

// HandleAction processes backend-specific actions
func (t *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EngineSnapshot:
		debug.TakeSnapshot(t.currentFrame, t.config.Scale)
	case action.EngineDebugToggle:
		t.config.ShowDebug = !t.config.ShowDebug
		if t.config.ShowDebug {
			t.logLevel.Set(slog.LevelDebug)
			slog.Info("Debug logging enabled")
		} else {
			t.logLevel.Set(slog.LevelInfo)
			slog.Info("Debug logging disabled")
		}
	}
}

func (t *Backend) queue(act action.Action) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
}

func (t *Backend) handleSignals() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	<-signals
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
	t.queue(action.EngineQuit)
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyEscape: "Escape",
	tcell.KeyF9:     "F9",
	tcell.KeyF10:    "F10",
	tcell.KeyF11:    "F11",
}

// buildKeyMapping creates the key mapping from default mappings
func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)
	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	mapping[tcell.KeyCtrlC] = action.EngineQuit
	return mapping
}

// runeName maps runes whose default mapping name differs from the rune
var runeName = map[rune]string{
	' ': "Space",
}

// keyMapping maps tcell keys to actions
var keyMapping = buildKeyMapping()

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, ok := keyMapping[ev.Key()]
	if !ok && ev.Key() == tcell.KeyRune {
		name, named := runeName[ev.Rune()]
		if !named {
			name = string(ev.Rune())
		}
		act, ok = input.GetDefaultMapping(name)
	}
	if !ok {
		return
	}

	if act == action.EngineQuit {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
	}
	if act.IsPlayer() {
		t.keyStates[act] = now
		return
	}
	t.queue(act)
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		drawText(t.screen, 0, termHeight/2, termWidth, msg, style)
		return
	}

	displayWidth := termWidth
	if termWidth > frame.Width()/2+logPanelWidth {
		displayWidth = termWidth - logPanelWidth - 1
	}
	cols := t.drawFrame(frame, displayWidth, termHeight-2)

	title := " " + t.config.Title + " "
	if t.config.Callbacks.Status != nil {
		title += t.config.Callbacks.Status() + " "
	}
	drawText(t.screen, 1, 0, displayWidth, title, tcell.StyleDefault.Foreground(tcell.ColorYellow))

	// the log pane sits below the title row
	if panelX := cols + 1; panelX < termWidth {
		borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
		for y := 1; y < termHeight-1; y++ {
			t.screen.SetContent(panelX, y, '│', nil, borderStyle)
		}
		t.drawLogs(panelX+1, 1, termWidth-panelX-1, termHeight-2)
	}

	help := " arrows/WASD move  Z fire  SPACE pause  O step  F9 snapshot  F10 debug  F11 copper  Q quit "
	drawText(t.screen, 0, termHeight-1, termWidth, help, tcell.StyleDefault)
}

// drawFrame draws the frame below the title row, sampling it down to fit
// width columns and rows terminal rows. It returns the columns used.
func (t *Backend) drawFrame(frame *video.FrameBuffer, width, rows int) int {
	fw, fh := frame.Width(), frame.Height()
	if fw == 0 || fh == 0 {
		return 0
	}
	step := max(render.Step(fw, width), render.Step(fh, rows*2))
	pixels := frame.ToSlice()

	cols := 0
	for y, row := 0, 1; y < fh && row <= rows; y, row = y+2*step, row+1 {
		for x, col := 0, 0; x < fw; x, col = x+step, col+1 {
			top := pixels[y*fw+x]
			bottom := video.BlackColor
			if y+step < fh {
				bottom = pixels[(y+step)*fw+x]
			}
			ch, style := render.HalfBlockCell(top, bottom)
			t.screen.SetContent(col, row, ch, nil, style)
			cols = max(cols, col+1)
		}
	}
	return cols
}

func (t *Backend) drawLogs(startX, startY, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	for i, entry := range t.logBuffer.GetRecent(height) {
		style := infoStyle
		switch entry.Level {
		case slog.LevelDebug:
			style = debugStyle
		case slog.LevelWarn:
			style = warnStyle
		case slog.LevelError:
			style = errStyle
		}

		text := render.FormatLogEntry(entry)
		if len(text) > width && width > 3 {
			text = text[:width-3] + "..."
		}
		drawText(t.screen, startX, startY+i, width, text, style)
	}
}

func drawText(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	i := 0
	for _, ch := range text {
		if i >= width {
			break
		}
		screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}
