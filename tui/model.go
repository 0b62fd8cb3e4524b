package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-pianoroll/config"
	"go-pianoroll/debug"
	"go-pianoroll/sequencer"
	"go-pianoroll/theme"
	"go-pianoroll/widgets"
)

// FrameRate of the playhead redraw while playing
const FrameRate = 30

// DefaultVelocity of notes added from the keyboard
const DefaultVelocity = 0.8

var divisions = []int{1, 2, 4, 8, 16}

var keyHelp = []widgets.KeySection{
	{Title: "Edit", Keys: []widgets.KeyBinding{
		{Key: "hjkl", Desc: "move"},
		{Key: "space", Desc: "toggle note"},
		{Key: "</>", Desc: "length"},
		{Key: "x", Desc: "delete"},
		{Key: "c", Desc: "clear"},
	}},
	{Title: "Context", Keys: []widgets.KeyBinding{
		{Key: "[/]", Desc: "octave"},
		{Key: "d", Desc: "division"},
		{Key: "+/-", Desc: "tempo"},
	}},
	{Title: "Transport", Keys: []widgets.KeyBinding{
		{Key: "p", Desc: "play"},
		{Key: "r", Desc: "restart"},
		{Key: "e", Desc: "export"},
		{Key: "q", Desc: "quit"},
	}},
}

type Model struct {
	Player   *sequencer.PlaybackController
	Exporter *sequencer.MidiExporter
	Config   *config.Config
	Theme    *theme.Theme

	save      func(f func())
	cursorX   int // tick
	cursorY   int // pitch index
	width     int
	height    int
	prompt    textinput.Model
	prompting bool
	status    string
	quitting  bool
}

type frameMsg time.Time

// promptChooser answers the exporter with whatever was typed into the save
// prompt. Relative paths land in the configured export directory.
type promptChooser struct {
	value string
	dir   string
}

func (p promptChooser) ChooseSavePath(ext string) (string, error) {
	v := strings.TrimSpace(p.value)
	if v == "" {
		return "", nil
	}
	if !filepath.IsAbs(v) && p.dir != "" {
		v = filepath.Join(p.dir, v)
	}
	if filepath.Ext(v) == "" {
		v += ext
	}
	return v, nil
}

func NewModel(player *sequencer.PlaybackController, exporter *sequencer.MidiExporter, cfg *config.Config, th *theme.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "pianoroll"
	ti.Prompt = "save as: "
	ti.CharLimit = 256
	ti.Width = 40

	return Model{
		Player:   player,
		Exporter: exporter,
		Config:   cfg,
		Theme:    th,
		save:     debounce.New(500 * time.Millisecond),
		prompt:   ti,
		width:    80,
		height:   24,
	}
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/FrameRate, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case frameMsg:
		if m.Player.State() == sequencer.Playing {
			return m, frame()
		}
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		return m.updateGrid(msg)
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.export(m.prompt.Value())
	case tea.KeyEsc:
		m.export("")
	default:
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	m.prompting = false
	m.prompt.Reset()
	m.prompt.Blur()
	return m, nil
}

func (m *Model) export(value string) {
	exporter := *m.Exporter
	exporter.Chooser = promptChooser{value: value, dir: m.Config.Export.Dir}
	path, err := exporter.Export(m.Player.Track(), m.Player.Context(), m.Player.Tempo())
	switch {
	case err != nil:
		m.status = "export failed: " + err.Error()
	case path == "":
		m.status = "export cancelled"
	default:
		m.status = "exported " + path
	}
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mc := m.Player.Context()
	var err error
	var cmd tea.Cmd

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Player.Stop()
		return m, tea.Quit

	case "h", "left":
		m.cursorX = max(m.cursorX-1, 0)
	case "l", "right":
		m.cursorX = min(m.cursorX+1, mc.TicksPerMeasure()-1)
	case "k", "up":
		m.cursorY = min(m.cursorY+1, mc.ScaleSize()-1)
	case "j", "down":
		m.cursorY = max(m.cursorY-1, 0)

	case " ", "enter":
		if n := m.Player.Track().NoteAt(m.cursorY, m.cursorX); n != nil {
			err = m.Player.DeleteNote(n)
		} else {
			err = m.addNote(1)
		}
	case "x", "backspace":
		if n := m.Player.Track().NoteAt(m.cursorY, m.cursorX); n != nil {
			err = m.Player.DeleteNote(n)
		}
	case ">", ".":
		err = m.resize(1)
	case "<", ",":
		err = m.resize(-1)
	case "c":
		err = m.Player.Clear()

	case "p":
		err = m.Player.TogglePlay()
		if err == nil && m.Player.State() == sequencer.Playing {
			cmd = frame()
		}
	case "r":
		err = m.Player.Restart()

	case "]":
		err = m.Player.SetOctave(min(mc.Octave()+1, sequencer.MaxOctave))
		m.remember()
	case "[":
		err = m.Player.SetOctave(max(mc.Octave()-1, sequencer.MinOctave))
		m.remember()
	case "d":
		err = m.Player.SetDivision(nextDivision(mc.Division()))
		m.cursorX = min(m.cursorX, mc.TicksPerMeasure()-1)
		m.remember()
	case "+", "=":
		m.Player.SetTempo(m.Player.Tempo() + 5)
		m.remember()
	case "-", "_":
		m.Player.SetTempo(m.Player.Tempo() - 5)
		m.remember()

	case "e":
		m.prompting = true
		m.status = ""
		return m, m.prompt.Focus()
	}

	if err != nil {
		m.status = err.Error()
		debug.Log("tui", "key %q: %v", msg.String(), err)
	}
	return m, cmd
}

func (m *Model) addNote(length int) error {
	n, err := sequencer.NewNote(m.cursorY, m.cursorX, length, DefaultVelocity)
	if err != nil {
		return err
	}
	return m.Player.AddNote(n)
}

// resize replaces the note under the cursor with a longer or shorter copy.
// Notes are never edited in place; the schedule is rebuilt from the track.
func (m *Model) resize(delta int) error {
	n := m.Player.Track().NoteAt(m.cursorY, m.cursorX)
	if n == nil {
		return nil
	}
	length := n.Duration + delta
	if length < 1 || n.Start+length > m.Player.Context().TicksPerMeasure() {
		return nil
	}
	next, err := sequencer.NewNote(n.Pitch, n.Start, length, n.Velocity)
	if err != nil {
		return err
	}
	if err := m.Player.DeleteNote(n); err != nil {
		return err
	}
	return m.Player.AddNote(next)
}

func nextDivision(current int) int {
	for i, d := range divisions {
		if d == current {
			return divisions[(i+1)%len(divisions)]
		}
	}
	return divisions[0]
}

// remember saves the current context as the next session's defaults, at most
// once per debounce window.
func (m *Model) remember() {
	m.Config.Remember(m.Player.Context(), m.Player.Tempo())
	snapshot := *m.Config
	m.save(func() {
		if err := snapshot.Save(); err != nil {
			debug.Log("config", "save: %v", err)
		}
	})
}

// playTick is the grid column under the playhead, or -1 when stopped
func (m Model) playTick() int {
	if m.Player.State() != sequencer.Playing {
		return -1
	}
	mc := m.Player.Context()
	beats := m.Player.Position().Seconds() * m.Player.Tempo() / 60
	return int(beats*float64(mc.Division())) % mc.TicksPerMeasure()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	mc := m.Player.Context()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	pitch, _ := mc.PitchName(m.cursorY)
	header := headerStyle.Render(fmt.Sprintf("go-pianoroll  %s  %3.0fbpm  1/%d  oct:%d  %s @ %s",
		m.Player.State(), m.Player.Tempo(), mc.Division()*4, mc.Octave(),
		pitch, mc.ToTransportTime(m.cursorX)))

	grid := widgets.Grid{
		Track:    m.Player.Track(),
		Context:  mc,
		Theme:    m.Theme,
		Width:    max(m.width-widgets.LabelWidth-1, 0),
		Height:   max(m.height-8, 0),
		CursorX:  m.cursorX,
		CursorY:  m.cursorY,
		PlayTick: m.playTick(),
	}

	var out strings.Builder
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(grid.View())
	out.WriteString("\n\n")
	if m.prompting {
		out.WriteString(m.prompt.View())
	} else {
		out.WriteString(dimStyle.Render(widgets.RenderKeyLine(keyHelp)))
	}
	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(statusStyle.Render(m.status))
	}
	return out.String()
}
