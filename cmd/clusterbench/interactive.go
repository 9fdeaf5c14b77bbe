package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/JeffreyCastellano/cluster-lights-go/acquire"
	"github.com/JeffreyCastellano/cluster-lights-go/control"
	"github.com/JeffreyCastellano/cluster-lights-go/engine"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	gaugeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const frameInterval = 16 * time.Millisecond

type benchModel struct {
	opts   acquire.Options
	lights int
	target float64

	eng  *engine.Engine
	ctrl *control.Controller

	err       error
	rng       *rand.Rand
	start     time.Time
	lastFrame time.Time
	frame     int
	count     int
	editing   bool
	input     textinput.Model
}

type loadedMsg struct {
	err  error
	eng  *engine.Engine
	ctrl *control.Controller
}

type frameMsg time.Time

func newBenchModel(opts acquire.Options, lights int, target float64) *benchModel {
	ti := textinput.New()
	ti.Prompt = "target FPS: "
	ti.Placeholder = fmt.Sprintf("%.0f", target)
	ti.Width = 10

	return &benchModel{
		opts:   opts,
		lights: lights,
		target: target,
		rng:    rand.New(rand.NewSource(1)),
		input:  ti,
	}
}

func (m *benchModel) Init() tea.Cmd {
	return m.load
}

func (m *benchModel) load() tea.Msg {
	ctx := context.Background()

	mod, err := acquire.Acquire(ctx, m.opts)
	if err != nil {
		return loadedMsg{err: err}
	}

	eng, err := engine.New(ctx, mod, engine.Config{MaxLights: maxLights(m.lights)})
	if err != nil {
		mod.Close(ctx)
		return loadedMsg{err: err}
	}

	if err := seedLights(ctx, eng, m.lights); err != nil {
		eng.Close(ctx)
		return loadedMsg{err: err}
	}

	cfg := control.DefaultConfig()
	cfg.TargetFPS = m.target
	return loadedMsg{eng: eng, ctrl: control.New(eng, cfg)}
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *benchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			if m.eng != nil {
				m.eng.Close(context.Background())
			}
			return m, tea.Quit

		case "t":
			m.editing = true
			m.input.SetValue("")
			m.input.Focus()

		case " ":
			if m.ctrl != nil {
				m.ctrl.SetEnabled(!m.ctrl.Enabled())
			}

		case "r":
			if m.ctrl != nil {
				m.ctrl.Reset()
			}

		case "+", "=":
			m.addLight()

		case "-":
			m.removeLight()
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.eng = msg.eng
		m.ctrl = msg.ctrl
		m.count = m.lights
		now := time.Now()
		m.start = now
		m.lastFrame = now
		return m, frameTick()

	case frameMsg:
		if m.eng == nil {
			return m, nil
		}
		if err := m.stepFrame(time.Time(msg)); err != nil {
			m.err = err
			return m, nil
		}
		return m, frameTick()
	}

	return m, nil
}

func (m *benchModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if v, err := strconv.ParseFloat(m.input.Value(), 64); err == nil && m.ctrl != nil {
			m.ctrl.SetTargetFPS(v)
		}
		m.editing = false
		m.input.Blur()
		return m, nil
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *benchModel) stepFrame(now time.Time) error {
	ctx := context.Background()
	t := float32(now.Sub(m.start).Seconds())
	if _, err := m.eng.Update(ctx, t); err != nil {
		return err
	}
	if err := m.eng.Sort(ctx); err != nil {
		return err
	}
	m.ctrl.Step(now.Sub(m.lastFrame))
	m.lastFrame = now
	m.frame++
	return nil
}

func (m *benchModel) addLight() {
	if m.eng == nil {
		return
	}
	_, err := m.eng.AddPointLight(context.Background(), engine.PointLight{
		X:         m.rng.Float32()*200 - 100,
		Y:         m.rng.Float32() * 50,
		Z:         m.rng.Float32()*200 - 100,
		Radius:    5 + m.rng.Float32()*15,
		R:         m.rng.Float32(),
		G:         m.rng.Float32(),
		B:         m.rng.Float32(),
		Intensity: 1,
	})
	if err == nil {
		m.count++
	}
}

func (m *benchModel) removeLight() {
	if m.eng == nil || m.count == 0 {
		return
	}
	if err := m.eng.RemovePointLight(context.Background(), m.count-1); err == nil {
		m.count--
	}
}

func (m *benchModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.eng == nil {
		return "Acquiring module..."
	}

	stats := m.ctrl.Stats()

	var b strings.Builder
	b.WriteString(titleStyle.Render("cluster-lights bench"))
	b.WriteString(" ")
	b.WriteString(m.eng.Module().Tier().String())
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("frame", strconv.Itoa(m.frame))
	row("lights", strconv.Itoa(m.count))
	row("current FPS", fmt.Sprintf("%.1f", stats.CurrentFPS))
	row("window FPS", fmt.Sprintf("%.1f", stats.AverageFPS))
	row("target FPS", fmt.Sprintf("%.1f", stats.TargetFPS))
	row("tile span", fmt.Sprintf("%d  %s", stats.Span, spanGauge(stats)))
	if !m.ctrl.Enabled() {
		b.WriteString(pausedStyle.Render("controller paused"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.editing {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter apply • esc cancel"))
	} else {
		b.WriteString(helpStyle.Render("t target • +/- lights • space pause • r reset • q quit"))
	}
	return b.String()
}

// spanGauge renders the span's position inside its bounds.
func spanGauge(s control.Stats) string {
	width := 24
	pos := 0
	if s.MaxSpan > s.MinSpan {
		pos = (s.Span - s.MinSpan) * (width - 1) / (s.MaxSpan - s.MinSpan)
	}
	if pos < 0 {
		pos = 0
	}
	if pos > width-1 {
		pos = width - 1
	}
	return gaugeStyle.Render("[" + strings.Repeat("=", pos) + "|" + strings.Repeat("-", width-1-pos) + "]")
}

func runInteractive(opts acquire.Options, lights int, target float64) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	p := tea.NewProgram(newBenchModel(opts, lights, target), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
