package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Pager shows a scrollable document in the alternate screen. Used by the
// test show command, where registered inputs and outputs easily exceed one
// screen.
type Pager struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
	styles   Styles
}

// NewPager returns a pager over content.
func NewPager(title, content string) *Pager {
	return &Pager{title: title, content: content, styles: DefaultStyles()}
}

// Run displays the pager until the user quits.
func (p *Pager) Run() error {
	prog := tea.NewProgram(p, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := prog.Run()
	return err
}

func (p *Pager) Init() tea.Cmd { return nil }

func (p *Pager) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return p, tea.Quit
		}

	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(p.headerView())
		footerHeight := lipgloss.Height(p.footerView())
		if !p.ready {
			p.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			p.viewport.SetContent(p.content)
			p.ready = true
		} else {
			p.viewport.Width = msg.Width
			p.viewport.Height = msg.Height - headerHeight - footerHeight
		}
	}

	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *Pager) View() string {
	if !p.ready {
		return "loading..."
	}
	return fmt.Sprintf("%s\n%s\n%s", p.headerView(), p.viewport.View(), p.footerView())
}

func (p *Pager) headerView() string {
	return p.styles.Header.Render(p.title)
}

func (p *Pager) footerView() string {
	return p.styles.Muted.Render(fmt.Sprintf("%3.f%%  (q to quit)", p.viewport.ScrollPercent()*100))
}
