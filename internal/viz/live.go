package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/balls/internal/config"
	"github.com/san-kum/balls/internal/physics"
	"github.com/san-kum/balls/internal/sim"
	"github.com/san-kum/balls/internal/spawn"
)

const (
	width            = 80
	height           = 24
	historyCapacity  = 600
	maxStepsPerFrame = 2000
	frameTime        = time.Second / 60

	// Canvas offset inside the view, from canvasStyle's padding.
	canvasPadX = 2
	canvasPadY = 1
)

// Snapshot stores the bodies at one rendered frame for replay.
type Snapshot struct {
	Bodies  []physics.Body
	Handles []physics.Handle
	Time    float64
	Energy  float64
}

type TickMsg time.Time

// Model is the live arena: it steps a world at the configured dt, maps it
// onto a braille canvas and lets the user spawn and remove bodies.
type Model struct {
	name     string
	world    *physics.World
	engine   *physics.Engine
	arena    physics.Arena
	timeline *sim.Timeline
	spawner  *spawn.Spawner

	initial []physics.Body
	events  []sim.Event

	t, dt         float64
	stepsPerFrame int
	contacts      physics.Contacts

	canvas *Canvas
	// scale is world units per canvas sub-pixel.
	scale float64

	running       bool
	frame         int
	energyHistory []float64
	keHistory     []float64
	history       []Snapshot
	playHead      int
	showHelp      bool
	theme         Theme
	status        string

	now func() time.Time
}

// NewModel builds the live view for cfg. name is shown in the header.
func NewModel(name string, cfg *config.Config) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return Model{}, err
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return Model{}, err
	}
	bodies, err := cfg.InitialBodies()
	if err != nil {
		return Model{}, err
	}
	events, err := cfg.SimEvents()
	if err != nil {
		return Model{}, err
	}

	arena := cfg.ArenaBounds()
	canvas := NewCanvas(width, height)
	pw, ph := canvas.PixelSize()

	m := Model{
		name:          name,
		engine:        physics.NewEngine(cfg.Gravity, opts),
		arena:         arena,
		spawner:       spawn.New(cfg.Seed, cfg.SpawnOptions()),
		initial:       bodies,
		events:        events,
		dt:            cfg.Dt,
		stepsPerFrame: stepsPerFrame(cfg.Dt),
		canvas:        canvas,
		scale:         math.Max(arena.Width()/float64(pw), arena.Height()/float64(ph)),
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		keHistory:     make([]float64, 0, historyCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
		theme:         CurrentTheme,
		now:           time.Now,
	}
	m.reset()
	return m, nil
}

// stepsPerFrame is how many ticks of dt cover one rendered frame.
func stepsPerFrame(dt float64) int {
	n := int(math.Round(frameTime.Seconds() / dt))
	return min(max(n, 1), maxStepsPerFrame)
}

// Run starts m full screen with mouse reporting.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(frameTime, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "s":
			m.spawnAt(m.spawner.Point(m.arena))
		case "x":
			m.removeNewest()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = NextTheme(m.theme.Name)
			SetTheme(m.theme.Name)
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		m.frame++
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		return m, tea.Tick(frameTime, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress || m.showHelp || m.playHead != -1 {
		return
	}
	col, row := msg.X-canvasPadX, msg.Y-canvasPadY
	if col < 0 || row < 0 || col >= m.canvas.Width || row >= m.canvas.Height {
		return
	}
	// Centre of the cell in sub-pixels.
	pos := m.toWorld(col*2+1, row*4+2)

	switch msg.Button {
	case tea.MouseButtonLeft:
		m.spawnAt(pos)
	case tea.MouseButtonRight:
		m.removeAt(pos)
	}
}

// resize fits the canvas into a w x h cell terminal and makes the arena the
// visible region at the current scale.
func (m *Model) resize(w, h int) {
	cw := max(w-statsWidth-1-2*canvasPadX, 10)
	ch := max(h-2*canvasPadY, 5)
	m.canvas.Resize(cw, ch)
	pw, ph := m.canvas.PixelSize()
	m.arena = physics.CenteredArena(float64(pw)*m.scale, float64(ph)*m.scale)
	m.status = fmt.Sprintf("arena %.0fx%.0f", m.arena.Width(), m.arena.Height())
}

// step advances one rendered frame worth of ticks.
func (m *Model) step() {
	if _, err := m.timeline.Advance(m.world, m.t); err != nil {
		m.status = err.Error()
	}
	for i := 0; i < m.stepsPerFrame; i++ {
		m.world.Step(m.engine, m.arena, m.dt)
		m.contacts.Add(m.engine.Contacts())
		m.t += m.dt
	}
	m.record()
}

func (m *Model) record() {
	bodies := m.world.Bodies()
	energy := physics.TotalEnergy(bodies, m.engine.Gravity())
	m.energyHistory = appendCapped(m.energyHistory, energy)
	m.keHistory = appendCapped(m.keHistory, physics.TotalKineticEnergy(bodies))

	m.history = append(m.history, Snapshot{
		Bodies:  m.world.Snapshot(),
		Handles: m.world.Handles(),
		Time:    m.t,
		Energy:  energy,
	})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (m *Model) spawnAt(pos mgl64.Vec2) {
	b, ok := m.spawner.At(pos, m.now())
	if !ok {
		return
	}
	h := m.world.Add(b)
	m.status = fmt.Sprintf("spawned #%d r=%.1f", h, b.Radius)
}

// removeAt removes the newest body whose disk contains pos.
func (m *Model) removeAt(pos mgl64.Vec2) {
	bodies, handles := m.world.Bodies(), m.world.Handles()
	for i := len(bodies) - 1; i >= 0; i-- {
		if bodies[i].Position.Sub(pos).Len() <= bodies[i].Radius {
			m.remove(handles[i])
			return
		}
	}
}

func (m *Model) removeNewest() {
	handles := m.world.Handles()
	if len(handles) == 0 {
		return
	}
	m.remove(handles[len(handles)-1])
}

func (m *Model) remove(h physics.Handle) {
	if err := m.world.Remove(h); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("removed #%d", h)
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset restores the initial bodies and replays the scripted events from
// t = 0. The arena keeps its current size.
func (m *Model) reset() {
	m.world = physics.NewWorld()
	for _, b := range m.initial {
		m.world.Add(b)
	}
	m.engine = physics.NewEngine(m.engine.Gravity(), m.engine.Options())
	m.timeline = sim.NewTimeline(m.events)
	m.t = 0
	m.contacts = physics.Contacts{}
	m.energyHistory = m.energyHistory[:0]
	m.keHistory = m.keHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.status = ""
	m.record()
}

func (m *Model) toCanvas(p mgl64.Vec2) (int, int) {
	pw, ph := m.canvas.PixelSize()
	x := float64(pw)/2 + p[0]/m.scale
	y := float64(ph)/2 - p[1]/m.scale
	return int(math.Round(x)), int(math.Round(y))
}

func (m *Model) toWorld(x, y int) mgl64.Vec2 {
	pw, ph := m.canvas.PixelSize()
	return mgl64.Vec2{
		(float64(x) - float64(pw)/2) * m.scale,
		(float64(ph)/2 - float64(y)) * m.scale,
	}
}

// shown is the frame being displayed: the live world or a replay snapshot.
func (m *Model) shown() Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	energy := 0.0
	if len(m.energyHistory) > 0 {
		energy = m.energyHistory[len(m.energyHistory)-1]
	}
	return Snapshot{Bodies: m.world.Bodies(), Handles: m.world.Handles(), Time: m.t, Energy: energy}
}

func (m *Model) draw(snap Snapshot) {
	m.canvas.Clear()

	m.canvas.SetPen(-1)
	x0, y0 := m.toCanvas(mgl64.Vec2{m.arena.Left, m.arena.Top})
	x1, y1 := m.toCanvas(mgl64.Vec2{m.arena.Right, m.arena.Bottom})
	m.canvas.DrawRect(x0, y0, x1-1, y1-1)

	for i, b := range snap.Bodies {
		m.canvas.SetPen(int(snap.Handles[i] - 1))
		cx, cy := m.toCanvas(b.Position)
		r := int(math.Round(b.Radius / m.scale))
		if r <= 2 {
			m.canvas.FillCircle(cx, cy, r)
		} else {
			m.canvas.DrawCircle(cx, cy, r)
		}
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	st := newStyles(m.theme)
	snap := m.shown()
	m.draw(snap)
	canvasView := st.canvas.Render(m.canvas.Render(m.theme.Palette()))

	var s strings.Builder
	s.WriteString(st.header.Render(GradientText(strings.ToUpper(m.name), m.theme.Primary, m.theme.Secondary)) + "\n")
	s.WriteString(m.statusLine(st) + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", snap.Time))
	row("Bodies", fmt.Sprintf("%d", len(snap.Bodies)))
	row("Energy", fmt.Sprintf("%.4g", snap.Energy))
	row("Kinetic", SparklineChart(m.keHistory, 20, m.theme))
	row("Pair hits", fmt.Sprintf("%d", m.contacts.PairBounces))
	row("Wall hits", fmt.Sprintf("%d", m.contacts.WallBounces))
	row("Steps", fmt.Sprintf("%d/frame dt=%g", m.stepsPerFrame, m.dt))
	row("Theme", m.theme.Name)
	if m.playHead != -1 && len(m.history) > 1 {
		row("Replay", ProgressBar(float64(m.playHead)/float64(len(m.history)-1), 20, m.theme))
	}
	if m.status != "" {
		s.WriteString("\n" + st.label.Render(m.status) + "\n")
	}

	s.WriteString(st.help.Render(Separator(30, m.theme) + "\nSP:Pause R:Reset Q:Quit\nS:Spawn  X:Remove ?:Help\n[ ]:Replay T:Theme"))
	statsView := st.stats.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)

	if m.showHelp {
		return BoxWithTitle("KEYBOARD SHORTCUTS", helpText, 40, m.theme) + "\n\n" + mainView
	}
	return mainView
}

func (m *Model) statusLine(st styles) string {
	switch {
	case m.playHead != -1:
		label := "REPLAY"
		if !m.running {
			label = "REPLAY PAUSED"
		}
		last := m.history[len(m.history)-1].Time
		return st.replay.Render(fmt.Sprintf("%s (%.1fs)", label, m.history[m.playHead].Time-last))
	case !m.running:
		return st.paused.Render("PAUSED")
	default:
		return st.running.Render(AnimatedSpinner(m.frame) + " RUNNING")
	}
}

const helpText = `Space        Pause/Resume
R            Reset to initial bodies
S            Spawn at a random point
X            Remove newest body
Left click   Spawn at cursor
Right click  Remove body under cursor
[ ]          Replay back/forward
T            Cycle themes
?            Toggle this help
Q            Quit`
