package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veil-social/veil/automod/completion"
	"github.com/veil-social/veil/automod/rules"
)

type fakeClassifier struct {
	flagged bool
	err     error
	calls   int
}

func (f *fakeClassifier) Flagged(ctx context.Context, text, image string) (bool, error) {
	f.calls++
	return f.flagged, f.err
}

type fakeCompleter struct {
	outputs []string
	err     error
	calls   int
}

func (f *fakeCompleter) Complete(ctx context.Context, req completion.Request) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	out := f.outputs[0]
	if len(f.outputs) > 1 {
		f.outputs = f.outputs[1:]
	}
	return out, nil
}

func testSpecs() []ActionSpec {
	return []ActionSpec{{
		Name:        ActionModerationDecision,
		Args:        map[string]string{"status": "string", "reason": "string"},
		Description: "record the moderation outcome",
	}}
}

func TestPlanDisabled(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cls := &fakeClassifier{flagged: true}
	cmp := &fakeCompleter{outputs: []string{"[]"}}

	p := NewPlanner(nil, rules.NewManager(nil, t.TempDir()))
	p.Enabled = false
	p.Classifier = cls
	p.Completer = cmp
	p.RegisterActions(testSpecs())

	plan, err := p.Plan(ctx, "hello", "")
	assert.NoError(err)
	assert.Len(plan, 1)
	assert.Equal(ActionModerationDecision, plan[0].Name)
	assert.Equal("approve", plan[0].Args["status"])
	assert.Equal("disabled", plan[0].Args["reason"])

	// disabled plans never touch a backend
	assert.Equal(0, cls.calls)
	assert.Equal(0, cmp.calls)
}

func TestPlanEmptyRegistry(t *testing.T) {
	assert := assert.New(t)

	p := NewPlanner(nil, rules.NewManager(nil, t.TempDir()))
	_, err := p.Plan(context.Background(), "hello", "")
	assert.ErrorIs(err, ErrNoActions)
}

func TestPlanClassifierFlagged(t *testing.T) {
	assert := assert.New(t)

	cls := &fakeClassifier{flagged: true}
	cmp := &fakeCompleter{outputs: []string{"[]"}}

	p := NewPlanner(nil, rules.NewManager(nil, t.TempDir()))
	p.Classifier = cls
	p.Completer = cmp
	p.RegisterActions(testSpecs())

	plan, err := p.Plan(context.Background(), "bad text", "")
	assert.NoError(err)
	assert.Len(plan, 1)
	assert.Equal("reject", plan[0].Args["status"])
	assert.Equal("auto-moderated", plan[0].Args["reason"])

	// a flagged plan short-circuits the completion backend
	assert.Equal(1, cls.calls)
	assert.Equal(0, cmp.calls)
}

func TestPlanClassifierError(t *testing.T) {
	assert := assert.New(t)

	cls := &fakeClassifier{err: errors.New("classifier offline")}

	p := NewPlanner(nil, rules.NewManager(nil, t.TempDir()))
	p.Classifier = cls
	p.RegisterActions(testSpecs())

	_, err := p.Plan(context.Background(), "hello", "")
	assert.Error(err)
}

func TestPlanCompletion(t *testing.T) {
	assert := assert.New(t)

	cmp := &fakeCompleter{outputs: []string{
		`Sure! Here is the plan: [{"name": "moderation_decision", "args": {"status": "approve", "reason": "fine"}}]`,
	}}

	p := NewPlanner(nil, rules.NewManager(nil, t.TempDir()))
	p.Completer = cmp
	p.RegisterActions(testSpecs())

	plan, err := p.Plan(context.Background(), "hello", "")
	assert.NoError(err)
	assert.Len(plan, 1)
	assert.Equal(ActionModerationDecision, plan[0].Name)
	assert.Equal("approve", plan[0].Args["status"])
	assert.Equal("fine", plan[0].Args["reason"])
}

func TestPlanCompletionParseRetry(t *testing.T) {
	assert := assert.New(t)

	cmp := &fakeCompleter{outputs: []string{
		"not json at all",
		`[{"name": "moderation_decision", "args": {"status": "reject", "reason": "rules"}}]`,
	}}

	p := NewPlanner(nil, rules.NewManager(nil, t.TempDir()))
	p.MaxRetries = 2
	p.Completer = cmp
	p.RegisterActions(testSpecs())

	plan, err := p.Plan(context.Background(), "hello", "")
	assert.NoError(err)
	assert.Equal(2, cmp.calls)
	assert.Equal("reject", plan[0].Args["status"])
}

func TestPlanCompletionParseExhaustion(t *testing.T) {
	assert := assert.New(t)

	cmp := &fakeCompleter{outputs: []string{"still not json"}}

	p := NewPlanner(nil, rules.NewManager(nil, t.TempDir()))
	p.MaxRetries = 2
	p.Completer = cmp
	p.RegisterActions(testSpecs())

	_, err := p.Plan(context.Background(), "hello", "")
	assert.ErrorIs(err, ErrPlanParse)
	assert.Equal(3, cmp.calls)
}

func TestPlanCompletionTransportError(t *testing.T) {
	assert := assert.New(t)

	cmp := &fakeCompleter{err: errors.New("completion offline")}

	p := NewPlanner(nil, rules.NewManager(nil, t.TempDir()))
	p.MaxRetries = 5
	p.Completer = cmp
	p.RegisterActions(testSpecs())

	_, err := p.Plan(context.Background(), "hello", "")
	assert.Error(err)
	assert.NotErrorIs(err, ErrPlanParse)
	assert.Equal(1, cmp.calls)
}

func TestPlanFallbackApprove(t *testing.T) {
	assert := assert.New(t)

	p := NewPlanner(nil, rules.NewManager(nil, t.TempDir()))
	p.RegisterActions(testSpecs())

	plan, err := p.Plan(context.Background(), "hello", "")
	assert.NoError(err)
	assert.Len(plan, 1)
	assert.Equal("approve", plan[0].Args["status"])
	assert.Equal("no backend triggered", plan[0].Args["reason"])
}

func TestParsePlan(t *testing.T) {
	assert := assert.New(t)

	plan, err := parsePlan(`[{"name": "a", "args": {"x": 1}}, {"name": "b", "args": {}}]`)
	assert.NoError(err)
	assert.Len(plan, 2)
	assert.Equal("a", plan[0].Name)
	assert.Equal("b", plan[1].Name)

	_, err = parsePlan("no array here")
	assert.Error(err)

	_, err = parsePlan(`["just", "strings"]`)
	assert.Error(err)

	_, err = parsePlan(`[{"name": broken]`)
	assert.Error(err)

	_, err = parsePlan(`[null]`)
	assert.Error(err)

	_, err = parsePlan(`[{"args": {"status": "approve"}}]`)
	assert.Error(err)
}

func TestBuildSystemPrompt(t *testing.T) {
	assert := assert.New(t)

	prompt := buildSystemPrompt([]ActionSpec{{
		Name:        "moderation_decision",
		Args:        map[string]string{"status": "string", "reason": "string"},
		Description: "record the outcome",
	}})
	assert.Contains(prompt, "JSON array")
	assert.Contains(prompt, "- moderation_decision(reason: string, status: string) - record the outcome")
}
