// Moderation planner: turns raw content into an ordered list of action
// invocations by consulting a safety classifier and/or a function-selecting
// completion model, constrained by the registered action catalogue and the
// rule corpus.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/veil-social/veil/automod/classifier"
	"github.com/veil-social/veil/automod/completion"
	"github.com/veil-social/veil/automod/rules"
)

// ActionModerationDecision is the one action every useful registry carries:
// it terminates a plan with an approve/reject outcome.
const ActionModerationDecision = "moderation_decision"

var (
	// ErrNoActions indicates moderation is enabled but the action registry is empty.
	ErrNoActions = errors.New("moderation planner has no registered actions")
	// ErrPlanParse indicates the completion backend never produced a parsable plan.
	ErrPlanParse = errors.New("failed to parse moderation plan from completion output")
)

// ActionSpec describes one callable moderation action: a symbolic name, an
// explicit argument schema (name to type hint), and a prose description fed
// to the completion model.
type ActionSpec struct {
	Name        string
	Args        map[string]string
	Description string
}

// PlannedAction is one step of a moderation plan, in backend output order.
type PlannedAction struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type Planner struct {
	Logger *slog.Logger
	Rules  *rules.Manager

	// Enabled gates the whole pipeline: when false, every plan approves
	// without external calls.
	Enabled bool
	// MaxRetries bounds re-requests after plan parse failures (attempts are
	// MaxRetries+1 total). Transport failures are never retried here.
	MaxRetries int

	// backends; either may be nil (disabled)
	Classifier classifier.Classifier
	Completer  completion.Completer

	mu    sync.RWMutex
	specs []ActionSpec
}

func NewPlanner(logger *slog.Logger, ruleMgr *rules.Manager) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		Logger:  logger.With("component", "planner"),
		Rules:   ruleMgr,
		Enabled: true,
	}
}

// RegisterActions replaces the action registry wholesale. The swap is atomic
// with respect to concurrent Plan calls. A registry without the
// moderation_decision action is legal but loudly discouraged.
func (p *Planner) RegisterActions(specs []ActionSpec) {
	fresh := make([]ActionSpec, len(specs))
	copy(fresh, specs)

	found := false
	names := make([]string, 0, len(fresh))
	for _, spec := range fresh {
		names = append(names, spec.Name)
		if spec.Name == ActionModerationDecision {
			found = true
		}
	}
	if !found {
		p.Logger.Warn("critical action moderation_decision not registered; running in this mode is not recommended")
	}

	p.mu.Lock()
	p.specs = fresh
	p.mu.Unlock()

	p.Logger.Info("actions registered", "names", names, "total", len(fresh))
}

// ActionSpecs returns a snapshot of the current registry.
func (p *Planner) ActionSpecs() []ActionSpec {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]ActionSpec, len(p.specs))
	copy(out, p.specs)
	return out
}

func decisionPlan(status, reason string) []PlannedAction {
	return []PlannedAction{{
		Name: ActionModerationDecision,
		Args: map[string]any{"status": status, "reason": reason},
	}}
}

// Plan produces the ordered action sequence for a piece of content. The
// returned order is significant and preserved from the backend output.
//
// Failure contract: transport errors from either backend and parse-retry
// exhaustion are fatal to this call; the caller must not fall back to a
// default decision.
func (p *Planner) Plan(ctx context.Context, text, image string) ([]PlannedAction, error) {

	if !p.Enabled {
		return decisionPlan("approve", "disabled"), nil
	}

	specs := p.ActionSpecs()
	if len(specs) == 0 {
		return nil, ErrNoActions
	}

	if p.Classifier != nil && (text != "" || image != "") {
		flagged, err := p.Classifier.Flagged(ctx, text, image)
		if err != nil {
			return nil, fmt.Errorf("safety classification failed: %w", err)
		}
		if flagged {
			return decisionPlan("reject", "auto-moderated"), nil
		}
	}

	if p.Completer != nil && text != "" {
		return p.planWithCompletion(ctx, specs, text)
	}

	return decisionPlan("approve", "no backend triggered"), nil
}

func (p *Planner) planWithCompletion(ctx context.Context, specs []ActionSpec, text string) ([]PlannedAction, error) {

	req := completion.Request{
		System: []string{
			buildSystemPrompt(specs),
			joinRules(p.Rules.GetRules()),
		},
		User: text,
	}

	attempts := p.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := p.Completer.Complete(ctx, req)
		if err != nil {
			// transport-level failure: not retried here
			return nil, fmt.Errorf("completion backend failed: %w", err)
		}

		plan, err := parsePlan(raw)
		if err != nil {
			lastErr = err
			p.Logger.Warn("failed to parse plan from completion output", "attempt", attempt, "maxAttempts", attempts, "err", err)
			continue
		}
		return plan, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrPlanParse, lastErr)
}
