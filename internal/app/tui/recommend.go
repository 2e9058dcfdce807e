// Package tui is the interactive terminal front-end of the optimizer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/growthlab/internal/app"
	"github.com/emiliopalmerini/growthlab/internal/domain"
	"github.com/emiliopalmerini/growthlab/internal/growth"
	"github.com/emiliopalmerini/growthlab/internal/pkg/tui/components"
	"github.com/emiliopalmerini/growthlab/internal/pkg/tui/theme"
)

// Recommender is the interactive accept/reject/retry loop.
type Recommender struct {
	ctx     context.Context
	svc     *app.Service
	current *domain.Recommendation
	status  string
	failed  bool
	judged  bool
	help    components.HelpBar
	styles  *theme.Styles
}

// NewRecommender creates the model. The first recommendation is generated in Init.
func NewRecommender(ctx context.Context, svc *app.Service) *Recommender {
	return &Recommender{
		ctx:    ctx,
		svc:    svc,
		help:   components.NewHelpBar(judgeBindings...),
		styles: theme.Default(),
	}
}

var (
	judgeBindings = []components.KeyBinding{
		{Key: "a", Desc: "accept"},
		{Key: "r", Desc: "reject"},
		{Key: "n", Desc: "try another"},
		{Key: "q", Desc: "quit"},
	}
	// shown after a judgement
	retryBindings = []components.KeyBinding{
		{Key: "n", Desc: "try another"},
		{Key: "q", Desc: "quit"},
	}
)

type recommendedMsg struct {
	rec *domain.Recommendation
}

type judgedMsg struct {
	message string
	err     error
}

func (m *Recommender) recommend() tea.Msg {
	return recommendedMsg{rec: m.svc.Recommend(m.ctx)}
}

func (m *Recommender) judge(accept bool) tea.Cmd {
	id := m.current.ID
	return func() tea.Msg {
		if accept {
			_, err := m.svc.Accept(m.ctx, id)
			return judgedMsg{message: app.MessageAccepted, err: err}
		}
		_, err := m.svc.Reject(m.ctx, id)
		return judgedMsg{message: app.MessageRejected, err: err}
	}
}

// Init implements tea.Model
func (m *Recommender) Init() tea.Cmd {
	return m.recommend
}

// Update implements tea.Model
func (m *Recommender) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "n", " ":
			m.status = ""
			return m, m.recommend
		case "a":
			if m.current != nil && !m.judged {
				return m, m.judge(true)
			}
		case "r":
			if m.current != nil && !m.judged {
				return m, m.judge(false)
			}
		}

	case recommendedMsg:
		m.current = msg.rec
		m.judged = false
		m.help.SetBindings(judgeBindings...)

	case judgedMsg:
		m.failed = msg.err != nil
		m.judged = true
		m.help.SetBindings(retryBindings...)
		switch {
		case errors.Is(msg.err, app.ErrUnknownRecommendation):
			m.status = "already judged, press n for another"
		case msg.err != nil:
			m.status = msg.err.Error()
		default:
			m.status = msg.message
		}
	}
	return m, nil
}

// View implements tea.Model
func (m *Recommender) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Growth optimizer"))
	b.WriteString("\n")

	if m.current == nil {
		b.WriteString(m.styles.Muted.Render("generating..."))
		return b.String()
	}

	b.WriteString(m.styles.Card.Render(RenderRecommendation(m.current)))
	b.WriteString("\n")

	h := m.svc.History()
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("accepted %d · rejected %d", len(h.Accepted), len(h.Rejected))))
	b.WriteString("\n")

	if m.status != "" {
		style := m.styles.Success
		if m.failed {
			style = m.styles.Warning
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render(m.help.View()))
	return b.String()
}

// RenderRecommendation formats parameters and the predicted curve for the terminal.
func RenderRecommendation(rec *domain.Recommendation) string {
	s := theme.Default()
	p := rec.Params

	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			s.Body.Width(16).Render(label),
			s.Highlighted.Render(value))
	}

	lines := []string{
		s.Subtitle.Render("Recommended parameters") + " " + s.Muted.Render("("+rec.Mode+")"),
		row("Mix cycles", fmt.Sprintf("%d", p.MixCycles)),
		row("Mix height", fmt.Sprintf("%.1f mm", p.MixHeight)),
		row("Mix volume", fmt.Sprintf("%d µL", p.MixVolume)),
		row("Passaging time", fmt.Sprintf("%d h", p.PassagingTime)),
		"",
		row("Predicted OD", components.NewSparkline(rec.Curve.Densities, 0, growth.MaxOD).View()+
			s.Muted.Render(fmt.Sprintf("  max %.3f", rec.Curve.MaxDensity))),
	}
	return strings.Join(lines, "\n")
}
