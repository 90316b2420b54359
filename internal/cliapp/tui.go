package cliapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	coreapp "semresolve/internal/core/app"
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	methods    list.Model
	lastUpdate time.Time
	runID      string
	files      int
	overridden int
	methodsN   int
	incomplete bool
	err        string
}

type runMsg struct {
	res *coreapp.Result
	err error
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Methods"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	return model{methods: l, lastUpdate: time.Now()}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || (msg.String() == "q" && m.methods.FilterState() != list.Filtering) {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		height := msg.Height - v - 4
		if height < 5 {
			height = 5
		}
		m.methods.SetSize(msg.Width-h, height)
	case runMsg:
		m = m.apply(msg)
	}

	var cmd tea.Cmd
	m.methods, cmd = m.methods.Update(msg)
	return m, cmd
}

func (m model) apply(msg runMsg) model {
	m.lastUpdate = time.Now()
	m.err = ""
	if msg.err != nil {
		m.err = msg.err.Error()
	}
	res := msg.res
	if res == nil {
		return m
	}
	m.runID = res.RunID
	m.files = res.Files
	m.incomplete = res.Incomplete
	if res.Analysis == nil {
		return m
	}
	m.overridden = res.Analysis.Overrides.Overridden
	m.methodsN = res.Analysis.Overrides.Methods

	model := res.Analysis.Model
	refs := model.Methods()
	items := make([]list.Item, 0, len(refs))
	for _, ref := range refs {
		state := "-"
		if v, known := model.Overridden(ref.Decl); known {
			state = yesNo(v)
		}
		items = append(items, item{
			title: ref.Signature,
			desc:  fmt.Sprintf("overrides=%s usages=%d %s", state, len(ref.Decl.Descriptor.Usages()), ref.Path),
		})
	}
	m.methods.SetItems(items)
	return m
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | run %s",
		m.lastUpdate.Format("15:04:05"), m.files, m.runID))

	var summary string
	switch {
	case m.err != "":
		summary = errorStyle.Render(m.err)
	case m.incomplete:
		summary = warnStyle.Render("incomplete")
	default:
		summary = successStyle.Render(fmt.Sprintf("%d of %d methods override", m.overridden, m.methodsN))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Semantic Resolution Monitor"), status, summary)
	help := statusStyle.Render("Keys: / filter | q quit")
	return docStyle.Render(header + "\n" + help + "\n\n" + m.methods.View())
}

func runUI(ctx context.Context, app *coreapp.App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(initialModel(), tea.WithAltScreen(), tea.WithContext(ctx))
	go func() {
		_ = app.Watch(ctx, func(res *coreapp.Result, err error) {
			p.Send(runMsg{res: res, err: err})
		})
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
