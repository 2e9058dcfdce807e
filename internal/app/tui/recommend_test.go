package tui

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emiliopalmerini/growthlab/internal/app"
	"github.com/emiliopalmerini/growthlab/internal/domain"
	"github.com/emiliopalmerini/growthlab/internal/growth"
	"github.com/emiliopalmerini/growthlab/internal/logging"
	"github.com/emiliopalmerini/growthlab/internal/random"
	"github.com/emiliopalmerini/growthlab/internal/recommend"
)

type nopRenderer struct{}

func (nopRenderer) RenderTimeline(w io.Writer, tl *domain.AlignedTimeline) error { return nil }

func (nopRenderer) RenderPrediction(w io.Writer, c domain.PredictedCurve) error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordIngest(ctx context.Context, wellID string, points int, err error) {}

func (nopMetrics) RecordRecommendation(ctx context.Context, rec *domain.Recommendation) {}

func (nopMetrics) RecordJudgement(ctx context.Context, verdict string, p domain.ParameterSet) {}

func (nopMetrics) Close(ctx context.Context) error { return nil }

func newModel(t *testing.T) (*Recommender, *app.Service) {
	t.Helper()
	src := random.NewSequence(0.5)
	svc := app.NewService(recommend.New(src), growth.New(src), nopRenderer{}, nopMetrics{}, logging.NewNop())
	return NewRecommender(context.Background(), svc), svc
}

// step feeds msg to the model and runs the returned command once.
func step(m *Recommender, msg tea.Msg) {
	_, cmd := m.Update(msg)
	if cmd != nil {
		m.Update(cmd())
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRecommender_AcceptFlow(t *testing.T) {
	m, svc := newModel(t)

	m.Update(m.Init()())
	if m.current == nil {
		t.Fatal("Init should produce a recommendation")
	}
	if !strings.Contains(m.View(), "Mix cycles") {
		t.Errorf("view missing parameters:\n%s", m.View())
	}

	step(m, key("a"))
	if m.status != app.MessageAccepted || m.failed {
		t.Errorf("status = %q failed=%v", m.status, m.failed)
	}
	if len(svc.History().Accepted) != 1 {
		t.Errorf("history = %+v", svc.History())
	}

	if _, cmd := m.Update(key("r")); cmd != nil {
		t.Error("a judged recommendation should not be judged again")
	}
	if view := m.View(); strings.Contains(view, ":accept") || !strings.Contains(view, ":try another") {
		t.Errorf("help should only offer retry and quit after a judgement:\n%s", view)
	}

	first := m.current.ID
	step(m, key("n"))
	if m.current.ID == first || m.status != "" {
		t.Errorf("retry should replace the recommendation and clear the status")
	}
	if !strings.Contains(m.View(), ":accept") {
		t.Error("a fresh recommendation should offer accept again")
	}

	step(m, key("r"))
	if m.status != app.MessageRejected || len(svc.History().Rejected) != 1 {
		t.Errorf("status = %q history = %+v", m.status, svc.History())
	}
}

func TestRecommender_Quit(t *testing.T) {
	m, _ := newModel(t)

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestRecommender_JudgeBeforeRecommendationIsIgnored(t *testing.T) {
	m, svc := newModel(t)

	_, cmd := m.Update(key("a"))
	if cmd != nil {
		t.Error("accept without a recommendation should do nothing")
	}
	if strings.Contains(m.View(), "Mix cycles") {
		t.Error("view should not show parameters yet")
	}
	if len(svc.History().Accepted) != 0 {
		t.Error("nothing should be accepted")
	}
}

func TestRecommender_StaleJudgement(t *testing.T) {
	m, svc := newModel(t)
	m.Update(m.Init()())

	if _, err := svc.Accept(context.Background(), m.current.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	step(m, key("r"))

	if !m.failed || !strings.Contains(m.status, "already judged") {
		t.Errorf("status = %q failed=%v", m.status, m.failed)
	}
}
