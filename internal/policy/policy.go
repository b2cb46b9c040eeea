// Package policy decides, after each turn, whether a conversation stays
// automated, softens its tone, resolves, or escalates to a human.
package policy

import (
	"fmt"

	"github.com/assist-link/support-agent/internal/intent"
	"github.com/assist-link/support-agent/internal/model"
)

// Decision is the outcome of evaluating a turn.
type Decision int

const (
	// Continue keeps automated handling with no state change.
	Continue Decision = iota
	// Soften keeps automated handling but prepends an empathetic tone.
	Soften
	// Resolve marks the conversation AI-resolved.
	Resolve
	// Escalate hands the conversation off to a human.
	Escalate
)

// String returns the decision name for logs and metrics.
func (d Decision) String() string {
	switch d {
	case Continue:
		return "continue"
	case Soften:
		return "soften"
	case Resolve:
		return "resolve"
	case Escalate:
		return "escalate"
	default:
		return "unknown"
	}
}

// Config holds the tunable escalation thresholds. The defaults are policy
// choices, not hard requirements.
type Config struct {
	// NegativeStreak is the number of consecutive negative or mixed
	// readings that triggers escalation.
	NegativeStreak int
	// MaxTurns is the number of user turns after which an unresolved
	// conversation escalates regardless of sentiment.
	MaxTurns int
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		NegativeStreak: 2,
		MaxTurns:       10,
	}
}

// Input is everything the policy looks at for one turn.
type Input struct {
	// History is the full ordered sentiment history, current reading last.
	History []model.SentimentReading
	// Intent is the classification of the current user message.
	Intent intent.Intent
	// Resolvable reports whether the drafted reply directly answers the query.
	Resolvable bool
	// UserTurns is the number of user messages so far, including this one.
	UserTurns int
	// Resolution is the conversation's resolution status before this turn.
	// The max-turn guard targets conversations going in circles; one that
	// already reached ai_resolved is exempt.
	Resolution model.ResolutionStatus
}

// Result is the policy decision plus a human-readable reason for tickets
// and logs.
type Result struct {
	Decision Decision
	Reason   string
}

// Policy is the deterministic escalation policy: the same sentiment history
// and intent sequence always produce the same decision.
type Policy struct {
	cfg Config
}

// New creates a policy with the given thresholds, falling back to defaults
// for non-positive values.
func New(cfg Config) *Policy {
	def := DefaultConfig()
	if cfg.NegativeStreak <= 0 {
		cfg.NegativeStreak = def.NegativeStreak
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = def.MaxTurns
	}
	return &Policy{cfg: cfg}
}

// Evaluate decides the outcome of the current turn. Escalation takes
// precedence over resolution when both could apply.
func (p *Policy) Evaluate(in Input) Result {
	var current model.SentimentReading
	if len(in.History) > 0 {
		current = in.History[len(in.History)-1]
	} else {
		current = model.SentimentReading{Label: model.SentimentNeutral}
	}

	streak := trailingUpsetStreak(in.History)

	switch {
	case streak >= p.cfg.NegativeStreak:
		return Result{
			Decision: Escalate,
			Reason:   fmt.Sprintf("%d consecutive negative/mixed sentiment readings", streak),
		}
	case in.Intent.Category == intent.CategoryComplaint && current.Label == model.SentimentNegative:
		return Result{
			Decision: Escalate,
			Reason:   fmt.Sprintf("explicit complaint (%s) with negative sentiment", in.Intent.Topic),
		}
	case in.UserTurns >= p.cfg.MaxTurns && in.Resolution != model.ResolutionAIResolved:
		return Result{
			Decision: Escalate,
			Reason:   fmt.Sprintf("conversation exceeded %d turns without resolution", p.cfg.MaxTurns),
		}
	case !current.Label.IsUpset() && in.Resolvable:
		return Result{
			Decision: Resolve,
			Reason:   "query answered directly with calm sentiment",
		}
	case current.Label.IsUpset():
		return Result{
			Decision: Soften,
			Reason:   "frustration detected below escalation threshold",
		}
	default:
		return Result{Decision: Continue, Reason: "no policy trigger"}
	}
}

// trailingUpsetStreak counts consecutive negative/mixed readings at the end
// of the history.
func trailingUpsetStreak(history []model.SentimentReading) int {
	n := 0
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].Label.IsUpset() {
			break
		}
		n++
	}
	return n
}
