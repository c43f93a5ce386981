package profile

import (
	"errors"
	"io"

	"github.com/bnema/teams-cli/internal/application"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	draw   func(styles) string
	styles styles
	output string
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = m.draw(m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

func run(draw func(styles) string) (string, error) {
	p := tea.NewProgram(
		model{draw: draw, styles: newStyles()},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}

func RenderProfile(view application.ProfileView, opts RenderOptions) (string, error) {
	return run(func(s styles) string { return renderProfile(view, opts, s) })
}

func RenderProject(view application.ProjectView) (string, error) {
	return run(func(s styles) string { return renderProject(view, s) })
}

func RenderTeam(view application.TeamView, opts RenderOptions) (string, error) {
	return run(func(s styles) string { return renderTeam(view, opts, s) })
}
