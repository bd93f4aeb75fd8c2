package viz

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/san-kum/morphfield/internal/compute"
	"github.com/san-kum/morphfield/internal/export"
	"github.com/san-kum/morphfield/internal/metrics"
	"github.com/san-kum/morphfield/internal/morph"
	"github.com/san-kum/morphfield/internal/session"
)

const (
	width           = 80
	height          = 24
	panelWidth      = 44
	historyCapacity = 300
	// maxTick bounds dt after a stall so a transition never leaps.
	maxTick = 100 * time.Millisecond
)

type TickMsg time.Time

type Options struct {
	FPS    int
	Theme  string
	Camera *Camera
	// OutDir receives GIF recordings and SVG snapshots.
	OutDir string
	Logger *zap.Logger
	// OnFrame sees every frame the model advances to.
	OnFrame func(session.Frame)
}

// Model is the bubbletea program around one session.
type Model struct {
	sess     *session.Session
	renderer *Renderer
	canvas   *Canvas
	theme    Theme
	st       styles
	log      *zap.Logger

	fps           int
	termW, termH  int
	running       bool
	showHelp      bool
	frame         session.Frame
	last          time.Time
	progressHist  []float64
	spreadHist    []float64
	recorder      *export.GIFRecorder
	recording     bool
	outDir        string
	status        string
	statusExpires time.Time
	onFrame       func(session.Frame)
}

func NewModel(sess *session.Session, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	r := NewRenderer(sess.Palette())
	if opts.Camera != nil {
		r.Camera = opts.Camera
	}
	theme := GetTheme(opts.Theme)
	return Model{
		sess:         sess,
		renderer:     r,
		canvas:       NewCanvas(width, height),
		theme:        theme,
		st:           newStyles(theme),
		log:          opts.Logger,
		fps:          opts.FPS,
		running:      true,
		progressHist: make([]float64, 0, historyCapacity),
		spreadHist:   make([]float64, 0, historyCapacity),
		outDir:       opts.OutDir,
		onFrame:      opts.OnFrame,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Frame() session.Frame { return m.frame }
func (m Model) Running() bool        { return m.running }
func (m Model) Recording() bool      { return m.recording }
func (m Model) Theme() Theme         { return m.theme }
func (m Model) Canvas() *Canvas      { return m.canvas }
func (m Model) Camera() *Camera      { return m.renderer.Camera }

// Update handles input events and advances the session on ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termW, m.termH = msg.Width, msg.Height
		m.layout()
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		m.step(time.Time(msg))
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cam := m.renderer.Camera
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if m.recording {
			m.stopRecording()
		}
		return *m, tea.Quit
	case "1":
		m.sess.Request(morph.Tree)
	case "2":
		m.sess.Request(morph.Scatter)
	case "3":
		m.sess.Request(morph.Love)
	case "h":
		m.sess.ToggleUI()
		m.layout()
	case " ":
		m.running = !m.running
		m.last = time.Time{}
	case "?":
		m.showHelp = !m.showHelp
	case "t":
		m.theme = NextTheme(m.theme.Name)
		m.st = newStyles(m.theme)
	case "x":
		cam.RotateX(0.1)
	case "X":
		cam.RotateX(-0.1)
	case "y":
		cam.RotateY(0.1)
	case "Y":
		cam.RotateY(-0.1)
	case "+", "=":
		cam.ZoomIn()
	case "-", "_":
		cam.ZoomOut()
	case "r":
		cam.Reset()
	case "g":
		if m.recording {
			m.stopRecording()
		} else {
			m.recorder = export.NewGIFRecorder(m.theme.Canvas, m.sess.Palette().Base, m.sess.Palette().Accent, m.sess.Palette().Glow)
			m.recording = true
			m.flash("recording")
		}
	case "p":
		m.snapshot()
	}
	if !m.running {
		m.draw()
	}
	return *m, nil
}

// layout sizes the canvas to the terminal, leaving room for the panel.
func (m *Model) layout() {
	if m.termW == 0 || m.termH == 0 {
		return
	}
	w := m.termW - 4
	if m.sess.UIVisible() {
		w -= panelWidth
	}
	h := m.termH - 2
	if w < 10 {
		w = 10
	}
	if h < 5 {
		h = 5
	}
	if w != m.canvas.Width || h != m.canvas.Height {
		m.canvas = NewCanvas(w, h)
		m.draw()
	}
}

// step advances the session by the wall time since the last tick.
func (m *Model) step(now time.Time) {
	if !m.running {
		return
	}
	dt := time.Second / time.Duration(m.fps)
	if !m.last.IsZero() {
		dt = now.Sub(m.last)
	}
	dt = min(max(dt, 0), maxTick)
	m.last = now

	m.frame = m.sess.Advance(float32(dt.Seconds()))
	if m.onFrame != nil {
		m.onFrame(m.frame)
	}

	m.progressHist = appendCapped(m.progressHist, float64(m.frame.Progress))
	m.spreadHist = appendCapped(m.spreadHist, metrics.RMSRadius(m.frame.Positions))

	m.draw()
	if m.recording {
		m.recorder.Add(m.canvas)
	}
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) draw() {
	m.renderer.Draw(m.canvas, m.frame)
}

func (m *Model) flash(s string) {
	m.status = s
	m.statusExpires = time.Now().Add(3 * time.Second)
}

func (m *Model) outPath(ext string) string {
	name := fmt.Sprintf("morphfield_%s.%s", time.Now().Format("20060102_150405"), ext)
	return filepath.Join(m.outDir, name)
}

func (m *Model) stopRecording() {
	m.recording = false
	path := m.outPath("gif")
	if err := m.recorder.Save(path); err != nil {
		m.log.Warn("saving recording", zap.Error(err))
		m.flash("recording failed")
		return
	}
	m.log.Info("recording saved", zap.String("path", path), zap.Int("frames", m.recorder.Len()))
	m.flash("saved " + filepath.Base(path))
	m.recorder = nil
}

func (m *Model) snapshot() {
	path := m.outPath("svg")
	svg := export.RasterToSVG(m.canvas, 4, m.theme.Canvas)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		m.log.Warn("saving snapshot", zap.Error(err))
		m.flash("snapshot failed")
		return
	}
	m.log.Info("snapshot saved", zap.String("path", path))
	m.flash("saved " + filepath.Base(path))
}

// View renders the canvas and, unless hidden, the side panel.
func (m Model) View() string {
	canvasView := lipgloss.NewStyle().Padding(1, 2).Render(m.canvas.Render(m.theme.Canvas))
	if !m.sess.UIVisible() {
		return canvasView
	}

	var s strings.Builder
	st := m.st
	s.WriteString(GradientText("MORPHFIELD", m.theme.Primary, m.theme.Secondary) + "\n\n")

	status := "RUNNING"
	switch {
	case m.recording:
		status = st.rec.Render(fmt.Sprintf("● REC %d", m.recorder.Len()))
	case !m.running:
		status = st.paused.Render("PAUSED")
	}
	s.WriteString(status + "\n")
	if m.status != "" && time.Now().Before(m.statusExpires) {
		s.WriteString(st.label.Render("") + st.value.Render(m.status) + "\n")
	}
	s.WriteString("\n")

	f := m.frame
	stateLine := f.State.String()
	if req := m.sess.Requested(); req != f.State {
		stateLine += " → " + req.String()
	}
	s.WriteString(st.label.Render("State") + st.active.Render(stateLine) + "\n")
	s.WriteString(st.label.Render("Progress") + ProgressBar(float64(f.Progress), 20) +
		st.value.Render(fmt.Sprintf(" %3.0f%%", f.Progress*100)) + "\n")
	s.WriteString(st.label.Render("Time") + st.value.Render(fmt.Sprintf("%.2fs", f.Elapsed)) + "\n")

	if len(m.progressHist) > 1 {
		chart := asciigraph.Plot(m.progressHist,
			asciigraph.Height(4),
			asciigraph.Width(28),
			asciigraph.LowerBound(0),
			asciigraph.UpperBound(1),
			asciigraph.Caption("progress"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}
	if len(m.spreadHist) > 0 {
		s.WriteString(st.label.Render("Spread") + SparklineChart(m.spreadHist, 20) +
			st.value.Render(fmt.Sprintf(" %.1f", m.spreadHist[len(m.spreadHist)-1])) + "\n")
	}

	s.WriteString("\n")
	hand := f.Hand
	if hand.Detected {
		s.WriteString(st.label.Render("Hand") + st.active.Render(hand.Gesture.String()) +
			st.value.Render(fmt.Sprintf("  %+.2f %+.2f", hand.X, hand.Y)) + "\n")
	} else {
		s.WriteString(st.label.Render("Hand") + st.value.Render("none") + "\n")
	}
	s.WriteString(st.label.Render("Points") + st.value.Render(fmt.Sprintf("%d + %d", len(f.Positions), len(f.Ornaments))) + "\n")
	s.WriteString(st.label.Render("Backend") + st.value.Render(compute.GetBackend().Name()) + "\n")
	s.WriteString(st.label.Render("Theme") + st.value.Render(m.theme.Name) + "\n")

	s.WriteString("\n" + Separator(34, m.theme.Muted) + "\n")
	s.WriteString(st.help.Render("1/2/3:State H:Hide SP:Pause\nT:Theme G:Record P:Snap ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  1 / 2 / 3  - Tree / Scatter / Love  ║
║  H          - Hide or show the panel ║
║  Space      - Pause/Resume           ║
║  x y / X Y  - Rotate                 ║
║  + / -      - Zoom                   ║
║  R          - Reset camera           ║
║  T          - Cycle themes           ║
║  G          - Toggle GIF recording   ║
║  P          - Save SVG snapshot      ║
║  ?          - Toggle this help       ║
║  Q          - Quit                   ║
╚══════════════════════════════════════╝`

// Run starts the program on the alternate screen and blocks until quit.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
