// Package tui drives a cube interactively in the terminal.
package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/SeamusWaldron/rubikal"
	"github.com/SeamusWaldron/rubikal/internal/render"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	stateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	moveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// History keeps the most recently completed rotations. Add is safe to call
// from the cube's completion hook.
type History struct {
	mu    sync.Mutex
	max   int
	items []rubikal.Rotation
	total uint64
}

// NewHistory creates a history holding up to max rotations.
func NewHistory(max int) *History {
	return &History{max: max}
}

// Add records a completed rotation.
func (h *History) Add(ev rubikal.RotationEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, ev.Rotation)
	if len(h.items) > h.max {
		h.items = h.items[len(h.items)-h.max:]
	}
	h.total++
}

// Recent returns the kept rotations, oldest first.
func (h *History) Recent() []rubikal.Rotation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]rubikal.Rotation(nil), h.items...)
}

// Total returns how many rotations have been added.
func (h *History) Total() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total
}

// Config configures a Model.
type Config struct {
	Cube    *rubikal.Cube
	History *History // May be nil
	Color   bool     // Colour the facelet net
	Source  string   // Shown in the title, e.g. "keyboard" or a device name
	Status  func() string
}

type tickMsg time.Time

// Model is the bubbletea model. Every tick message advances the cube by one
// Tick, so the animation runs at the cube's frame interval.
type Model struct {
	cube     *rubikal.Cube
	history  *History
	renderer render.Renderer
	source   string
	status   func() string
	interval time.Duration
	err      error
	quitting bool
}

// New creates a model for cfg.Cube.
func New(cfg Config) *Model {
	return &Model{
		cube:     cfg.Cube,
		history:  cfg.History,
		renderer: render.Renderer{Color: cfg.Color},
		source:   cfg.Source,
		status:   cfg.Status,
		interval: cfg.Cube.FrameInterval(),
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the frame loop.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// keyFaces maps lowercase keys to plain turns and uppercase to inverse turns.
var keyFaces = map[string]string{
	"u": "U", "d": "D", "l": "L", "r": "R", "f": "F", "b": "B",
	"U": "Ui", "D": "Di", "L": "Li", "R": "Ri", "F": "Fi", "B": "Bi",
}

// Update handles keys and frame ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "c":
			m.cube.ClearPending()

		default:
			if tok, ok := keyFaces[key]; ok {
				m.err = m.cube.RotateFace(tok)
			}
		}

	case tickMsg:
		m.cube.Tick()
		return m, m.tick()
	}

	return m, nil
}

// View renders the cube and its queue.
func (m *Model) View() string {
	if m.quitting {
		return "Bye.\n"
	}

	snap := m.cube.Snapshot()
	var b strings.Builder

	title := "Rubikal"
	if m.source != "" {
		title += " - " + m.source
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(m.renderer.Snapshot(snap))
	b.WriteString("\n\n")

	state := snap.State.String()
	if snap.Paused {
		state = "paused"
	}
	b.WriteString(fmt.Sprintf("State: %s", stateStyle.Render(state)))
	if snap.Active != nil {
		b.WriteString(fmt.Sprintf("  %s  step %d/%d", moveStyle.Render(formatRotation(*snap.Active)), snap.Step, m.cube.UpdatesPerRotation()))
	}
	b.WriteString("\n")

	b.WriteString(statusStyle.Render(fmt.Sprintf("Completed: %d  Pending: %d  Tick: %d", snap.Completed, len(snap.Pending), snap.Tick)))
	b.WriteString("\n")

	if len(snap.Pending) > 0 {
		b.WriteString("Queue: ")
		b.WriteString(moveStyle.Render(truncate(rubikal.FormatMoves(snap.Pending), 60)))
		b.WriteString("\n")
	}

	if m.history != nil {
		if recent := m.history.Recent(); len(recent) > 0 {
			b.WriteString("Done:  ")
			b.WriteString(moveStyle.Render(rubikal.FormatMoves(recent)))
			b.WriteString("\n")
		}
	}

	if m.status != nil {
		if s := m.status(); s != "" {
			b.WriteString(statusStyle.Render(s))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("u/d/l/r/f/b=turn  shift=inverse  c=clear queue  q=quit"))
	b.WriteString("\n")

	return b.String()
}

func formatRotation(r rubikal.Rotation) string {
	if tok := r.Token(); tok != "" {
		return tok
	}
	return r.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
