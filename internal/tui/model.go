package tui

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"offerletter/internal/embedding"
	oerrors "offerletter/internal/errors"
	"offerletter/internal/letter"
	"offerletter/internal/roster"
	"offerletter/internal/service"
)

// OfferPort is the TUI-facing subset of the offer service.
type OfferPort interface {
	Prepare(ctx context.Context, name string) (service.ResolvedOffer, error)
	Employees() []roster.Employee
	Status() service.Status
}

type pane int

const (
	paneLetter pane = iota
	paneContext
)

const sidebarWidth = 30

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service  OfferPort
	sources  []string
	outDir   string
	input    textinput.Model
	viewport viewport.Model
	offer    *service.ResolvedOffer
	letter   string
	pane     pane
	cursor   int
	status   string
	ready    bool
	width    int
}

// New creates a new TUI model. sources are listed on the readiness screen
// when ingestion failed; letters are saved under outDir.
func New(svc OfferPort, sources []string, outDir string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Employee name, then Enter"
	ti.Focus()
	ti.CharLimit = 80
	vp := viewport.New(0, 0)
	m := Model{service: svc, sources: sources, outDir: outDir, input: ti, viewport: vp}
	m.status = "Type a name from the roster and press Enter."
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, status, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-sidebarWidth-4)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderBody())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if !m.service.Status().Ready {
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if name := strings.TrimSpace(m.input.Value()); name != "" {
				m.generate(name)
				return m, nil
			}
		case "ctrl+s":
			m.save()
			return m, nil
		case "tab":
			if m.offer != nil {
				m.pane = 1 - m.pane
				m.cursor = 0
				m.viewport.SetContent(m.renderBody())
				m.viewport.GotoTop()
				return m, nil
			}
		case "down":
			if m.pane == paneContext && m.offer != nil && len(m.offer.Context) > 0 {
				m.cursor = (m.cursor + 1) % len(m.offer.Context)
				m.viewport.SetContent(m.renderBody())
				return m, nil
			}
		case "up":
			if m.pane == paneContext && m.offer != nil && len(m.offer.Context) > 0 {
				m.cursor = (m.cursor - 1 + len(m.offer.Context)) % len(m.offer.Context)
				m.viewport.SetContent(m.renderBody())
				return m, nil
			}
		case "pgdown", "pgup":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) generate(name string) {
	offer, err := m.service.Prepare(context.Background(), name)
	if err != nil {
		m.offer, m.letter = nil, ""
		m.status = errorStatus(err)
		m.viewport.SetContent(m.renderBody())
		return
	}
	m.offer = &offer
	m.letter = service.Render(offer)
	m.pane = paneLetter
	m.cursor = 0
	m.status = fmt.Sprintf("Offer letter for %s. ctrl+s saves, tab shows policy context.", offer.Employee.Name)
	m.viewport.SetContent(m.renderBody())
	m.viewport.GotoTop()
}

func (m *Model) save() {
	if m.offer == nil {
		m.status = "Nothing to save yet."
		return
	}
	path, err := letter.Save(m.outDir, m.offer.Employee.Name, m.letter)
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.status = "Saved " + path
}

func errorStatus(err error) string {
	if oerrors.Is(err, oerrors.ErrEmployeeNotFound) {
		var oErr *oerrors.OfferError
		errors.As(err, &oErr)
		return fmt.Sprintf("No employee matches %q. Pick a name from the list.", oErr.Details["query"])
	}
	return "Error: " + err.Error()
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Offer Letter Generator - " + letter.Company)
	st := m.service.Status()
	if !st.Ready {
		return header + "\n\n" + m.renderNotReady(st)
	}
	sub := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).
		Render(fmt.Sprintf("%d employees, %d policy chunks indexed", st.Employees, st.Chunks))
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(m.renderRoster()),
		resultBoxStyle.Render(m.viewport.View()),
	)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + sub + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) renderNotReady(st service.Status) string {
	var b strings.Builder
	b.WriteString(errorStyle.Render("Documents are not loaded."))
	b.WriteString("\n\n")
	if st.Err != nil {
		b.WriteString(st.Err.Error())
		b.WriteString("\n\n")
	}
	b.WriteString("Expected files:\n")
	for _, s := range m.sources {
		b.WriteString("  - " + s + "\n")
	}
	b.WriteString("\nFix the files and restart, or enable watch mode. Press Esc to quit.")
	return b.String()
}

func (m Model) renderRoster() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Available Employees"))
	b.WriteString("\n")
	for _, e := range m.service.Employees() {
		line := fmt.Sprintf("%s (%s, %s)", e.Name, e.Band, e.Department)
		if m.offer != nil && m.offer.Employee.Name == e.Name {
			line = highlightStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderBody() string {
	if m.offer == nil {
		return "No letter yet."
	}
	if m.pane == paneLetter {
		return m.letter
	}
	if len(m.offer.Context) == 0 {
		return "No policy passages were retrieved for this employee."
	}
	r := m.offer.Context[m.cursor]
	title := fmt.Sprintf("Passage %d/%d  [%s]  score=%.3f", m.cursor+1, len(m.offer.Context), r.Chunk.Source, r.Score)
	q := fmt.Sprintf("band %s department %s leave travel", m.offer.Employee.Band, m.offer.Employee.Department)
	return title + "\n\n" + highlightBestSentence(r.Chunk.Text, q)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sidebarStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(sidebarWidth)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := embedding.TokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx, bestScore := 0, -1
	for i, s := range sentences {
		if score := tokenOverlapScore(qTokens, s); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	for t := range embedding.TokenSet(sentence) {
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
