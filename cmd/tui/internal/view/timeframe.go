package view

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/spendly/internal/insights"
)

// RangeSelectedMsg is emitted once the user has picked a range. Range is the zero value when
// All is true.
type RangeSelectedMsg struct {
	Range insights.Range
	All   bool
}

type rangeOption struct {
	label  string
	preset insights.Preset
	all    bool
	custom bool
}

type pickerState int

const (
	pickerStateSelect pickerState = iota
	pickerStateCustom
)

// RangePicker is a reusable component for selecting a preset or custom date range.
type RangePicker struct {
	state    pickerState
	options  []rangeOption
	selected int
	initial  int

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

// NewRangePicker lists the presets, optionally followed by "All time", and a custom range.
// The cursor starts on initial.
func NewRangePicker(initial insights.Preset, allowAll bool) RangePicker {
	options := make([]rangeOption, 0, len(insights.Presets)+2)
	for _, p := range insights.Presets {
		options = append(options, rangeOption{label: p.String(), preset: p})
	}

	if allowAll {
		options = append(options, rangeOption{label: "All time", all: true})
	}

	options = append(options, rangeOption{label: "Custom range", custom: true})

	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Start Date: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "End Date:   "

	start := max(slices.IndexFunc(options, func(o rangeOption) bool { return o.preset == initial }), 0)

	return RangePicker{
		state:      pickerStateSelect,
		options:    options,
		selected:   start,
		initial:    start,
		startInput: si,
		endInput:   ei,
	}
}

func (m RangePicker) Init() tea.Cmd {
	return nil
}

func (m RangePicker) Update(msg tea.Msg) (RangePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case pickerStateSelect:
			return m.updateSelect(keyMsg)
		case pickerStateCustom:
			if next, cmd, handled := m.updateCustom(keyMsg); handled {
				return next, cmd
			}
		}
	}

	if m.state == pickerStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m RangePicker) updateSelect(msg tea.KeyMsg) (RangePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < len(m.options)-1 {
			m.selected++
		}
	case tea.KeyEnter:
		opt := m.options[m.selected]

		switch {
		case opt.custom:
			m.state = pickerStateCustom
			m.focusIndex = 0
			m.startInput.Focus()
			m.endInput.Blur()

			return m, textinput.Blink
		case opt.all:
			return m, func() tea.Msg { return RangeSelectedMsg{All: true} }
		}

		r := insights.PresetRange(opt.preset)

		return m, func() tea.Msg { return RangeSelectedMsg{Range: r} }
	}

	return m, nil
}

func (m RangePicker) updateCustom(msg tea.KeyMsg) (RangePicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink, true

	case "enter":
		start, err := parseDay(m.startInput.Value())
		if err != nil {
			m.err = fmt.Errorf("start date: %w", err)
			return m, nil, true
		}

		end, err := parseDay(m.endInput.Value())
		if err != nil {
			m.err = fmt.Errorf("end date: %w", err)
			return m, nil, true
		}

		r := insights.CustomRange(start, end)
		if err := r.Validate(); err != nil {
			m.err = err
			return m, nil, true
		}

		m.err = nil

		return m, func() tea.Msg { return RangeSelectedMsg{Range: r} }, true

	case "esc":
		m.state = pickerStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

func (m RangePicker) updateInputs(msg tea.Msg) (RangePicker, tea.Cmd) {
	var cmds []tea.Cmd
	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func (m RangePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == pickerStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	s := "Select Range:\n\n"
	for i, opt := range m.options {
		cursor := " "
		if m.selected == i {
			cursor = ">"
		}
		s += fmt.Sprintf("%s %s\n", cursor, opt.label)
	}
	s += "\n(Enter to select, Esc to back)"

	return s + errStr
}

// IsSelecting returns true if the picker is in the selection state (not custom input).
func (m RangePicker) IsSelecting() bool {
	return m.state == pickerStateSelect
}

// Reset returns the picker to its initial selection state.
func (m *RangePicker) Reset() {
	m.state = pickerStateSelect
	m.selected = m.initial
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
