package dialog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vburojevic/simlaunch/internal/domain"
	"github.com/vburojevic/simlaunch/internal/selector"
)

// deviceItem implements list.Item for the picker
type deviceItem struct {
	index  int
	device domain.Device
}

func (i deviceItem) Title() string {
	if i.device.IsBooted() {
		return i.device.Name + " (booted)"
	}
	return i.device.Name
}
func (i deviceItem) Description() string { return i.device.RuntimeIdentifier + " • " + i.device.UDID }
func (i deviceItem) FilterValue() string { return i.device.Identifier() + " " + i.device.UDID }

// pickModel is the bubbletea model for the picker
type pickModel struct {
	list     list.Model
	selected int
	quitting bool
	canceled bool
}

func newPickModel(title string, devices []domain.Device) pickModel {
	items := make([]list.Item, 0, len(devices))
	for i, d := range devices {
		items = append(items, deviceItem{index: i, device: d})
	}

	// Configure list delegate with styles
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("39")).
		Foreground(lipgloss.Color("39")).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("241"))

	l := list.New(items, delegate, 0, 0)
	l.Title = title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().
		Background(lipgloss.Color("39")).
		Foreground(lipgloss.Color("0")).
		Padding(0, 1)

	return pickModel{list: l, selected: -1}
}

func (m pickModel) Init() tea.Cmd {
	return nil
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// While the filter input is focused keys belong to it.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(deviceItem); ok {
				m.selected = item.index
				m.quitting = true
				return m, tea.Quit
			}
		case "q", "esc", "ctrl+c":
			m.canceled = true
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 2)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// TUI is a terminal Chooser rendered in the alternate screen.
type TUI struct {
	Title  string
	Input  io.Reader
	Output io.Writer
}

var _ selector.Chooser = (*TUI)(nil)

// output defaults to stderr so the picker never mixes with events on stdout.
func (t *TUI) output() io.Writer {
	if t.Output != nil {
		return t.Output
	}
	return os.Stderr
}

// Choose runs the picker until a device is chosen or the user quits.
func (t *TUI) Choose(ctx context.Context, devices []domain.Device) (domain.Device, error) {
	title := t.Title
	if title == "" {
		title = DefaultPrompt
	}

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if t.Input != nil {
		opts = append(opts, tea.WithInput(t.Input))
	}
	opts = append(opts, tea.WithOutput(t.output()))

	p := tea.NewProgram(newPickModel(title, devices), opts...)
	finalModel, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return domain.Device{}, ctx.Err()
		}
		if errors.Is(err, tea.ErrInterrupted) {
			return domain.Device{}, selector.ErrSelectionCanceled
		}
		return domain.Device{}, fmt.Errorf("picker error: %w", err)
	}

	return pickResult(finalModel, devices)
}

func pickResult(finalModel tea.Model, devices []domain.Device) (domain.Device, error) {
	result, ok := finalModel.(pickModel)
	if !ok || result.canceled || result.selected < 0 || result.selected >= len(devices) {
		return domain.Device{}, selector.ErrSelectionCanceled
	}
	return devices[result.selected], nil
}
