// Moderation executor: drives the planner, executes each planned action
// against a fixed dispatch table, and emits a stream of domain events
// describing progress and the final decision.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/veil-social/veil/automod/countstore"
	"github.com/veil-social/veil/automod/event"
	"github.com/veil-social/veil/automod/planner"
)

// ActionPlanner is the planning collaborator. Satisfied by *planner.Planner.
type ActionPlanner interface {
	RegisterActions(specs []planner.ActionSpec)
	Plan(ctx context.Context, text, image string) ([]planner.PlannedAction, error)
}

// ImageFetcher resolves a transport-level photo ref into a URL (typically a
// base64 data URL) the classification backend can consume.
type ImageFetcher interface {
	FetchImage(ctx context.Context, ref string) (string, error)
}

// ActionFunc executes one planned action. A nil event with nil error is a
// legal no-op result.
type ActionFunc func(ctx context.Context, args map[string]any) (event.Event, error)

// Action binds a symbolic action name (via its spec) to a handler. The
// engine's dispatch table is built from these once, at construction; planner
// output referencing anything else is skipped, never reflected upon.
type Action struct {
	Spec planner.ActionSpec
	Run  ActionFunc
}

// Submission is the raw content handed to Process: the message text (or
// caption) and an optional photo ref.
type Submission struct {
	Text     string
	ImageRef string
}

// EmitFunc receives events in production order. Process never replays: each
// call produces its sequence exactly once, while backends are consulted.
type EmitFunc func(evt event.Event)

type Engine struct {
	Logger  *slog.Logger
	Planner ActionPlanner
	// optional collaborators
	Fetcher  ImageFetcher
	Counters countstore.CountStore

	actions map[string]Action
}

// NewEngine builds the dispatch table from the built-in moderation_decision
// action plus any extras, and registers the combined specs with the planner.
func NewEngine(logger *slog.Logger, pl ActionPlanner, extra ...Action) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	eng := &Engine{
		Logger:  logger.With("component", "engine"),
		Planner: pl,
		actions: make(map[string]Action),
	}

	all := append([]Action{ModerationDecisionAction()}, extra...)
	specs := make([]planner.ActionSpec, 0, len(all))
	for _, act := range all {
		eng.actions[act.Spec.Name] = act
		specs = append(specs, act.Spec)
	}
	eng.Planner.RegisterActions(specs)
	return eng
}

// Process runs one submission through the moderation pipeline. Events are
// emitted lazily and in order: ModerationStarted first, then whatever the
// planned actions produce. Only planning failures are fatal; every per-action
// failure (unknown name, handler error, handler panic) is logged and skipped.
func (eng *Engine) Process(ctx context.Context, sub Submission, emit EmitFunc) error {
	start := time.Now()
	defer func() {
		processDuration.Observe(time.Since(start).Seconds())
	}()
	processCount.Inc()

	emit(event.ModerationStarted{})

	image := ""
	if sub.ImageRef != "" && eng.Fetcher != nil {
		fetched, err := eng.Fetcher.FetchImage(ctx, sub.ImageRef)
		if err != nil {
			eng.Logger.Warn("failed to fetch submission image, planning without it", "ref", sub.ImageRef, "err", err)
		} else {
			image = fetched
		}
	}

	plan, err := eng.Planner.Plan(ctx, sub.Text, image)
	if err != nil {
		processErrorCount.Inc()
		return fmt.Errorf("moderation planning failed: %w", err)
	}

	for _, pa := range plan {
		act, ok := eng.actions[pa.Name]
		if !ok {
			eng.Logger.Warn("planned action not registered, skipping", "action", pa.Name)
			actionSkipCount.WithLabelValues("unknown").Inc()
			continue
		}

		evt, err := eng.runAction(ctx, act, pa.Args)
		if err != nil {
			eng.Logger.Error("action execution failed, skipping", "action", pa.Name, "err", err)
			actionSkipCount.WithLabelValues("error").Inc()
			continue
		}
		if evt == nil {
			continue
		}
		if dec, ok := evt.(event.ModerationDecision); ok {
			eng.recordDecision(ctx, dec)
		}
		emit(evt)
	}
	return nil
}

// runAction executes a single handler, converting panics into errors so one
// misbehaving action never aborts the rest of the plan.
func (eng *Engine) runAction(ctx context.Context, act Action, args map[string]any) (evt event.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			evt = nil
			err = fmt.Errorf("action panicked: %v", r)
		}
	}()
	eng.Logger.Info("executing action", "action", act.Spec.Name)
	return act.Run(ctx, args)
}

func (eng *Engine) recordDecision(ctx context.Context, dec event.ModerationDecision) {
	outcome := "reject"
	if dec.Approved {
		outcome = "approve"
	}
	decisionCount.WithLabelValues(outcome).Inc()
	if eng.Counters != nil {
		if err := eng.Counters.Increment(ctx, "moderation-decision", outcome); err != nil {
			eng.Logger.Warn("failed to increment decision counter", "err", err)
		}
	}
}
