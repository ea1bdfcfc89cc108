// Package tui renders a live terminal view of a running release simulation.
package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/relsim/internal/analysis"
	"github.com/san-kum/relsim/internal/dynamo"
	"github.com/san-kum/relsim/internal/polymer"
	"github.com/san-kum/relsim/internal/sim"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

type TickMsg time.Time

// feed is the shared buffer between the simulation goroutine and the view.
type feed struct {
	mu        sync.Mutex
	times     []float64
	fractions []float64
	profile   []float64
	t         float64
	done      bool
	err       error
}

func (f *feed) push(x dynamo.State, t float64, n int, delta, total0 float64) {
	ligand, _, released, err := polymer.Unpack(x, n)
	if err != nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.times = append(f.times, t)
	f.fractions = append(f.fractions, 2*released/delta/total0)
	f.profile = append([]float64(nil), ligand...)
	f.t = t
}

// Model drives the live view: a goroutine integrates the film through the
// simulator callback API while the TUI ticks and renders the latest snapshot.
type Model struct {
	film   *polymer.Film
	cancel context.CancelFunc
	feed   *feed
}

func NewModel(film *polymer.Film, stepper dynamo.Stepper, cfg dynamo.Config) *Model {
	ctx, cancel := context.WithCancel(context.Background())

	f := &feed{}
	m := &Model{film: film, cancel: cancel, feed: f}

	x0 := film.DefaultState()
	total0, err := polymer.TotalMass(x0, film.N, film.Delta())
	if err != nil || total0 == 0 {
		total0 = 1
	}

	go func() {
		s := sim.New(film, stepper)
		err := s.RunWithCallback(ctx, x0, cfg, func(x dynamo.State, t float64) bool {
			f.push(x, t, film.N, film.Delta(), total0)
			return true
		})
		f.mu.Lock()
		f.done = true
		if err != nil && ctx.Err() == nil {
			f.err = err
		}
		f.mu.Unlock()
	}()

	return m
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			return m, tea.Quit
		}
	case TickMsg:
		return m, tick()
	}
	return m, nil
}

func (m *Model) View() string {
	m.feed.mu.Lock()
	times := append([]float64(nil), m.feed.times...)
	fractions := append([]float64(nil), m.feed.fractions...)
	profile := append([]float64(nil), m.feed.profile...)
	t := m.feed.t
	done := m.feed.done
	err := m.feed.err
	m.feed.mu.Unlock()

	var sb []string
	sb = append(sb, headerStyle.Render(fmt.Sprintf(
		"relsim live | N=%d binding=%.3g diffusion=%.3g capacity=%.3g",
		m.film.N, m.film.Binding, m.film.Diffusion, m.film.Capacity)))

	if len(fractions) >= 2 {
		sb = append(sb, graphStyle.Render(asciigraph.Plot(fractions,
			asciigraph.Height(10), asciigraph.Width(70),
			asciigraph.Caption("release fraction"))))
	}
	if len(profile) >= 2 {
		sb = append(sb, graphStyle.Render(asciigraph.Plot(profile,
			asciigraph.Height(6), asciigraph.Width(70),
			asciigraph.Caption("free ligand profile"))))
	}

	stats := labelStyle.Render("time") + valueStyle.Render(fmt.Sprintf("%.4f", t))
	if len(fractions) > 0 {
		stats += "\n" + labelStyle.Render("released") +
			valueStyle.Render(fmt.Sprintf("%.4f", fractions[len(fractions)-1]))
	}
	if t50, ok := analysis.HalfTime(times, fractions); ok {
		stats += "\n" + labelStyle.Render("half time") + valueStyle.Render(fmt.Sprintf("%.4f", t50))
	}
	if done {
		stats += "\n" + labelStyle.Render("status") + valueStyle.Render("finished")
	}
	sb = append(sb, stats)

	if err != nil {
		sb = append(sb, errStyle.Render("error: "+err.Error()))
	}
	sb = append(sb, helpStyle.Render("q: quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sb...)
}

// Run blocks until the user quits the live view.
func Run(film *polymer.Film, stepper dynamo.Stepper, cfg dynamo.Config) error {
	p := tea.NewProgram(NewModel(film, stepper, cfg))
	_, err := p.Run()
	return err
}
