package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vectora-ai/vectora/pkg/capability"
	"github.com/vectora-ai/vectora/pkg/screen"
	"github.com/vectora-ai/vectora/pkg/session"
)

// popupMode is the selected pill.
type popupMode int

const (
	modeText popupMode = iota
	modeImage
	modeScreen
)

var popupModes = []popupMode{modeText, modeImage, modeScreen}

func (m popupMode) String() string {
	switch m {
	case modeImage:
		return "Image"
	case modeScreen:
		return "Screen"
	default:
		return "Text"
	}
}

func (m popupMode) action() capability.Action {
	switch m {
	case modeImage:
		return capability.ActionImage
	case modeScreen:
		return capability.ActionScreen
	default:
		return capability.ActionText
	}
}

func (m popupMode) placeholder() string {
	switch m {
	case modeImage:
		return "Paste an image URL..."
	case modeScreen:
		return "Page URL to capture..."
	default:
		return "Paste or type text to analyze..."
	}
}

func (m popupMode) emptyMessage() string {
	switch m {
	case modeImage:
		return "Please enter an image URL"
	case modeScreen:
		return "Please enter a page URL"
	default:
		return "Please enter some text to analyze"
	}
}

func (m popupMode) busyMessage() string {
	switch m {
	case modeImage:
		return "Processing your image..."
	case modeScreen:
		return "Capturing and processing the page..."
	default:
		return "Processing your text..."
	}
}

type statusKind int

const (
	statusNone statusKind = iota
	statusBusy
	statusOK
	statusErr
)

// analysisDoneMsg carries the reply of an analysis started by the popup.
type analysisDoneMsg struct {
	resp session.Response
}

// analyzer is the part of a session the popup drives.
type analyzer interface {
	AnalyzeText(ctx context.Context, text string) session.Response
	AnalyzeImage(ctx context.Context, imageURL string) session.Response
	AnalyzeScreen(ctx context.Context, region screen.Region) session.Response
}

type popupKeyMap struct {
	Submit key.Binding
	Next   key.Binding
	Quit   key.Binding
}

var popupKeys = popupKeyMap{
	Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "analyze")),
	Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch mode")),
	Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}

type popupModel struct {
	ctx      context.Context
	analyzer analyzer

	header string
	model  string
	caps   capability.Set
	known  bool

	mode   popupMode
	input  textarea.Model
	busy   bool
	status string
	kind   statusKind
	width  int
}

func newPopupModel(ctx context.Context, a analyzer, providerTitle, modelID string, caps capability.Set, known bool) popupModel {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(6)
	ta.SetWidth(60)
	ta.Placeholder = modeText.placeholder()
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.Focus()

	return popupModel{
		ctx:      ctx,
		analyzer: a,
		header:   providerTitle,
		model:    modelID,
		caps:     caps,
		known:    known,
		input:    ta,
		width:    64,
	}
}

func (m popupModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m popupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.SetWidth(max(msg.Width-4, 20))
		return m, nil

	case analysisDoneMsg:
		m.busy = false
		if msg.resp.Success {
			m.setStatus(statusOK, fmt.Sprintf("AI Involvement: %d%% - %s", roundPercent(msg.resp.AIPercent), msg.resp.Message))
		} else {
			m.setStatus(statusErr, msg.resp.Message)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, popupKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, popupKeys.Next):
			if m.busy {
				return m, nil
			}
			m.switchMode(popupModes[(int(m.mode)+1)%len(popupModes)])
			return m, nil
		case key.Matches(msg, popupKeys.Submit):
			return m.submit()
		}
	}

	if m.busy {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// switchMode selects a pill and warns when the active model cannot serve it.
// The session checks again on submit.
func (m *popupModel) switchMode(mode popupMode) {
	m.mode = mode
	m.input.Reset()
	m.input.Placeholder = mode.placeholder()

	if err := (capability.Gate{}).Check(m.model, m.caps, m.known, mode.action()); err != nil {
		m.setStatus(statusErr, err.Error())
		return
	}
	m.setStatus(statusNone, "")
}

func (m popupModel) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		m.setStatus(statusErr, m.mode.emptyMessage())
		return m, nil
	}

	m.busy = true
	m.setStatus(statusBusy, m.mode.busyMessage())

	ctx, a, mode := m.ctx, m.analyzer, m.mode
	return m, func() tea.Msg {
		var resp session.Response
		switch mode {
		case modeImage:
			resp = a.AnalyzeImage(ctx, value)
		case modeScreen:
			resp = a.AnalyzeScreen(ctx, screen.Region{URL: value})
		default:
			resp = a.AnalyzeText(ctx, value)
		}
		return analysisDoneMsg{resp: resp}
	}
}

func (m *popupModel) setStatus(kind statusKind, text string) {
	m.kind = kind
	m.status = text
}

func (m popupModel) View() string {
	var b strings.Builder

	b.WriteString(providerStyle.Render(m.header))
	b.WriteString("  ")
	b.WriteString(modelNameStyle.Render(truncateModel(m.model)))
	b.WriteString("\n")

	pills := make([]string, len(popupModes))
	for i, mode := range popupModes {
		style := pillStyle
		switch {
		case mode == m.mode:
			style = pillActiveStyle
		case (capability.Gate{}).Check(m.model, m.caps, m.known, mode.action()) != nil:
			style = pillDisabledStyle
		}
		pills[i] = style.Render(mode.String())
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, pills...))
	b.WriteString("\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.statusStyle().Width(max(m.width-2, 20)).Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("ctrl+s analyze • tab switch mode • esc quit"))

	return b.String()
}

func (m popupModel) statusStyle() lipgloss.Style {
	switch m.kind {
	case statusOK:
		return statusOKStyle
	case statusErr:
		return statusErrStyle
	case statusBusy:
		return statusBusyStyle
	default:
		return lipgloss.NewStyle()
	}
}

func runPopup(ctx context.Context, args []string) error {
	fs, g := newFlagSet("popup", "popup [--headed] [flags]")
	headed := fs.Bool("headed", false, "show the Chrome window used for screen capture")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// The TUI owns the terminal.
	a, err := newApp(g, io.Discard)
	if err != nil {
		return err
	}

	var opts []screen.Option
	if *headed {
		opts = append(opts, screen.WithHeaded())
	}
	browser := screen.New(append(opts, screen.WithLogger(a.logger))...)
	defer browser.Close()

	sess, err := a.openSession(ctx, browser)
	if err != nil {
		return err
	}
	defer sess.Close()

	id, modelID, caps, known := sess.ActiveModel()

	m := newPopupModel(ctx, sess, id.Title(), modelID, caps, known)
	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}
