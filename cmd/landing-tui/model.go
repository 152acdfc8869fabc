package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unklstewy/b200-landing/pkg/landing"
	"github.com/unklstewy/b200-landing/pkg/report"
)

const sliderWidth = 32

// field is one adjustable input.
type field struct {
	label string
	rng   func(landing.Limits) landing.Range
	get   func(landing.Input) float64
	set   func(*landing.Input, float64)
}

var fields = []field{
	{
		label: "Pressure altitude",
		rng:   func(l landing.Limits) landing.Range { return l.PressureAltitude },
		get:   func(in landing.Input) float64 { return in.PressureAltitudeFt },
		set:   func(in *landing.Input, v float64) { in.PressureAltitudeFt = v },
	},
	{
		label: "Outside air temp",
		rng:   func(l landing.Limits) landing.Range { return l.OAT },
		get:   func(in landing.Input) float64 { return in.OATC },
		set:   func(in *landing.Input, v float64) { in.OATC = v },
	},
	{
		label: "Landing weight",
		rng:   func(l landing.Limits) landing.Range { return l.Weight },
		get:   func(in landing.Input) float64 { return in.WeightLb },
		set:   func(in *landing.Input, v float64) { in.WeightLb = v },
	},
	{
		label: "Wind component",
		rng:   func(l landing.Limits) landing.Range { return l.Wind },
		get:   func(in landing.Input) float64 { return in.WindKt },
		set:   func(in *landing.Input, v float64) { in.WindKt = v },
	},
}

type model struct {
	calc     *landing.Calculator
	dataset  string
	notice   string
	defaults landing.Input
	input    landing.Input
	selected int

	trace *landing.Trace
	err   error

	editing     bool
	inputBuffer string
	editErr     error
}

func newModel(calc *landing.Calculator, dataset string, defaults landing.Input) model {
	m := model{
		calc:     calc,
		dataset:  dataset,
		defaults: defaults,
		input:    defaults,
	}
	m.recalculate()
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m *model) recalculate() {
	m.trace, m.err = m.calc.Run(m.input)
}

// nudge moves the selected field by n steps, staying inside its range.
func (m *model) nudge(n int) {
	f := fields[m.selected]
	r := f.rng(m.calc.Limits())
	v := f.get(m.input) + float64(n)*r.Step
	f.set(&m.input, r.Clamp(math.Round(v*1e6)/1e6))
	m.recalculate()
}

func (m *model) setSelected(v float64) {
	f := fields[m.selected]
	f.set(&m.input, f.rng(m.calc.Limits()).Clamp(v))
	m.recalculate()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	// Handle typed value entry
	if m.editing {
		switch key.String() {
		case "enter":
			v, err := strconv.ParseFloat(strings.TrimSpace(m.inputBuffer), 64)
			if err != nil {
				m.editErr = fmt.Errorf("invalid number: %q", m.inputBuffer)
			} else {
				m.setSelected(v)
				m.editErr = nil
			}
			m.editing = false
			m.inputBuffer = ""
		case "esc":
			m.editing = false
			m.inputBuffer = ""
		case "backspace":
			if len(m.inputBuffer) > 0 {
				m.inputBuffer = m.inputBuffer[:len(m.inputBuffer)-1]
			}
		default:
			if s := key.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-") {
				m.inputBuffer += s
			}
		}
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j", "tab":
		if m.selected < len(fields)-1 {
			m.selected++
		}
	case "left", "h":
		m.nudge(-1)
	case "right", "l":
		m.nudge(1)
	case "pgdown":
		m.nudge(-10)
	case "pgup":
		m.nudge(10)
	case "home":
		m.setSelected(fields[m.selected].rng(m.calc.Limits()).Min)
	case "end":
		m.setSelected(fields[m.selected].rng(m.calc.Limits()).Max)
	case "r":
		m.input = m.defaults
		m.editErr = nil
		m.recalculate()
	case "e", "enter":
		m.editing = true
		m.inputBuffer = ""
	}
	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	trackStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	resultStyle   = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("46")).
			Padding(0, 2)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("B200 KING AIR LANDING DISTANCE"))
	s.WriteString(dimStyle.Render("  dataset " + m.dataset))
	s.WriteString("\n")
	if m.notice != "" {
		s.WriteString(errStyle.Render(m.notice))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	s.WriteString(panelStyle.Render(m.renderSliders()))
	s.WriteString("\n")

	if m.editing {
		f := fields[m.selected]
		r := f.rng(m.calc.Limits())
		s.WriteString(headerStyle.Render(fmt.Sprintf("Enter %s (%s to %s %s):", strings.ToLower(f.label),
			report.Number(r.Min), report.Number(r.Max), r.Unit)))
		s.WriteString("\n")
		s.WriteString(selectedStyle.Render("> " + m.inputBuffer + "_"))
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("ENTER: Apply  ESC: Cancel"))
		return s.String()
	}

	if m.editErr != nil {
		s.WriteString(errStyle.Render(m.editErr.Error()))
		s.WriteString("\n")
	}

	s.WriteString(panelStyle.Render(m.renderResult()))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: Select  ←/→: Adjust  PgUp/PgDn: ×10  Home/End: Min/Max  E: Enter value  R: Reset  Q: Quit"))
	s.WriteString("\n")

	return s.String()
}

func (m model) renderSliders() string {
	var s strings.Builder
	limits := m.calc.Limits()

	for i, f := range fields {
		r := f.rng(limits)
		v := f.get(m.input)

		cursor := "  "
		label := fmt.Sprintf("%-18s", f.label)
		if i == m.selected {
			cursor = selectedStyle.Render("▶ ")
			label = selectedStyle.Render(label)
		}

		filled := 0
		if r.Max > r.Min {
			filled = int(math.Round((v - r.Min) / (r.Max - r.Min) * sliderWidth))
		}
		bar := barStyle.Render(strings.Repeat("━", filled)) +
			selectedStyle.Render("●") +
			trackStyle.Render(strings.Repeat("─", sliderWidth-filled))

		s.WriteString(fmt.Sprintf("%s%s %s %8s %s", cursor, label, bar, report.Number(v), r.Unit))
		if i < len(fields)-1 {
			s.WriteString("\n")
		}
	}
	return s.String()
}

func (m model) renderResult() string {
	if m.err != nil {
		var s strings.Builder
		s.WriteString(errStyle.Render("No result: " + m.err.Error()))
		var colErr *landing.UnknownColumnError
		if errors.As(m.err, &colErr) {
			s.WriteString("\n")
			s.WriteString(dimStyle.Render("The chart has no column for this value; adjust it to a charted step."))
		}
		return s.String()
	}

	var s strings.Builder
	for _, step := range report.Steps(m.trace) {
		s.WriteString(headerStyle.Render(step.Title))
		s.WriteString("\n  ")
		s.WriteString(dimStyle.Render(step.Inputs))
		s.WriteString("\n  ")
		s.WriteString(step.Result)
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(resultStyle.Render("LANDING DISTANCE " + report.Feet(m.trace.Result())))
	return s.String()
}
