// Package ui implements the interactive diagnostic pager SPEC_FULL.md §6's
// D4 names: a bubbletea view over a diag.Bag that steps through one report
// at a time, grounded on the teacher's internal/ui progress model but
// re-purposed here for paging finished diagnostics rather than streaming
// pipeline events.
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"semacore/internal/diag"
	"semacore/internal/diagfmt"
	"semacore/internal/sema"
	"semacore/internal/sir"
	"semacore/internal/source"
)

var (
	pagerTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	pagerDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pagerJumpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
)

// Jumper resolves "go to definition" for the symbol referenced at a
// diagnostic's primary span, the behavior Enter triggers in the pager.
type Jumper interface {
	JumpFrom(span source.Span) (module string, ok bool)
}

// unitJumper adapts a fully analyzed sir.Unit into a Jumper via
// sema.FindSymbolAt, without the pager needing to know about arenas.
type unitJumper struct {
	unit *sir.Unit
}

// NewUnitJumper builds a Jumper backed by u, so Enter on a diagnostic whose
// span falls inside an identifier jumps to that identifier's defining
// module.
func NewUnitJumper(u *sir.Unit) Jumper {
	return unitJumper{unit: u}
}

func (j unitJumper) JumpFrom(span source.Span) (string, bool) {
	mod, _, ok := sema.FindSymbolAt(j.unit, span.File, span.Start)
	if !ok {
		return "", false
	}
	return mod.Path, true
}

type pagerModel struct {
	diags  []diag.Diagnostic
	fs     *source.FileSet
	opts   diagfmt.PrettyOpts
	jumper Jumper

	idx     int
	jumpMsg string
	width   int
	height  int
}

// NewPager returns a bubbletea program stepping through diags one at a
// time, rendered with opts. jumper may be nil, in which case Enter is a
// no-op.
func NewPager(diags []diag.Diagnostic, fs *source.FileSet, opts diagfmt.PrettyOpts, jumper Jumper) *tea.Program {
	m := &pagerModel{diags: diags, fs: fs, opts: opts, jumper: jumper, width: 80, height: 24}
	return tea.NewProgram(m)
}

func (m *pagerModel) Init() tea.Cmd { return nil }

func (m *pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "n", "down", "j", " ":
			m.advance(1)
		case "p", "up", "k":
			m.advance(-1)
		case "enter":
			m.jump()
		}
	}
	return m, nil
}

func (m *pagerModel) advance(delta int) {
	if len(m.diags) == 0 {
		return
	}
	m.idx = (m.idx + delta + len(m.diags)) % len(m.diags)
	m.jumpMsg = ""
}

func (m *pagerModel) jump() {
	if m.jumper == nil || len(m.diags) == 0 {
		return
	}
	d := m.diags[m.idx]
	if mod, ok := m.jumper.JumpFrom(d.Primary); ok {
		m.jumpMsg = fmt.Sprintf("defined in %s", mod)
	} else {
		m.jumpMsg = "no definition found"
	}
}

func (m *pagerModel) View() string {
	if len(m.diags) == 0 {
		return pagerDimStyle.Render("no diagnostics to page through — press q to quit\n")
	}

	var b strings.Builder
	header := fmt.Sprintf("diagnostic %d/%d", m.idx+1, len(m.diags))
	b.WriteString(pagerTitleStyle.Render(header))
	b.WriteString("\n\n")

	single := diag.NewBag(1)
	single.Add(m.diags[m.idx])
	diagfmt.Pretty(&b, single, m.fs, m.opts)

	if m.jumpMsg != "" {
		b.WriteString("\n")
		b.WriteString(pagerJumpStyle.Render(m.jumpMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(pagerDimStyle.Render("n/p or j/k to page, enter to jump to definition, q to quit"))
	return b.String()
}
