package engine

import (
	"context"
	"strings"

	"github.com/veil-social/veil/automod/event"
	"github.com/veil-social/veil/automod/planner"
)

// ModerationDecisionAction terminates a plan with an approve/reject outcome.
// The status string is matched case-insensitively; anything other than
// "approve" maps to a rejection.
func ModerationDecisionAction() Action {
	return Action{
		Spec: planner.ActionSpec{
			Name: planner.ActionModerationDecision,
			Args: map[string]string{
				"status": "string",
				"reason": "string",
			},
			Description: "Processes a message with a moderation decision by status and explanation. " +
				"This function must be called whenever there is no other available function matching the user's intent. " +
				"Status must be either \"APPROVE\" if the message is allowed, or \"REJECT\" if it should be blocked.",
		},
		Run: func(ctx context.Context, args map[string]any) (event.Event, error) {
			status, _ := args["status"].(string)
			reason, _ := args["reason"].(string)
			approved := strings.EqualFold(status, "approve")
			return event.ModerationDecision{Approved: approved, Reason: reason}, nil
		},
	}
}
