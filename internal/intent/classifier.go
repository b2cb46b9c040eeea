// Package intent classifies user text into credit-card query intents using
// an ordered rule table, and drafts the canned reply for each intent.
package intent

import (
	"fmt"
	"strings"
)

// Category is the coarse class of a user query.
type Category string

const (
	CategoryComplaint     Category = "complaint"
	CategoryInformational Category = "informational"
	CategoryFarewell      Category = "farewell"
)

// Topic identifies the specific subject of a query.
type Topic string

const (
	TopicBillGeneration     Topic = "bill_generation"
	TopicPaymentDeduction   Topic = "payment_deduction"
	TopicOutstandingBalance Topic = "outstanding_balance"
	TopicDueDate            Topic = "due_date"
	TopicDoubleDeduction    Topic = "double_deduction"
	TopicIncorrectBilling   Topic = "incorrect_billing"
	TopicUnauthorizedCharge Topic = "unauthorized_charge"
	TopicMissingRefund      Topic = "missing_refund"
	TopicGeneralInquiry     Topic = "general_inquiry"
)

// Intent is the classified meaning of a user utterance.
type Intent struct {
	Category Category `json:"category"`
	Topic    Topic    `json:"topic"`
}

// TopicLabel returns a human-readable label for the topic, e.g.
// "Double Deduction".
func (i Intent) TopicLabel() string {
	parts := strings.Split(string(i.Topic), "_")
	for idx, p := range parts {
		if p != "" {
			parts[idx] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// rule matches an intent when every keyword in required and at least one
// keyword in anyOf appear in the text. An empty required set is vacuously
// satisfied; anyOf must never be empty.
type rule struct {
	intent   Intent
	required []string
	anyOf    []string
}

func (r rule) matches(lower string) bool {
	for _, kw := range r.required {
		if !strings.Contains(lower, kw) {
			return false
		}
	}
	for _, kw := range r.anyOf {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Classifier evaluates an ordered rule table, first match wins. Complaint
// rules precede informational rules: dissatisfied customers often use
// billing vocabulary, and the complaint reading must take priority.
type Classifier struct {
	rules    []rule
	fallback Intent
}

// defaultRules is the rule table in priority order: farewell, then
// complaint topics, then informational topics.
var defaultRules = []rule{
	{
		intent: Intent{Category: CategoryFarewell, Topic: TopicGeneralInquiry},
		anyOf:  []string{"bye", "goodbye", "that's all", "thats all", "nothing else", "no more questions"},
	},
	{
		intent: Intent{Category: CategoryComplaint, Topic: TopicDoubleDeduction},
		anyOf:  []string{"double", "twice", "charged twice"},
	},
	{
		intent: Intent{Category: CategoryComplaint, Topic: TopicIncorrectBilling},
		anyOf:  []string{"incorrect", "wrong", "error", "mistake", "overcharg", "so high", "too high"},
	},
	{
		intent: Intent{Category: CategoryComplaint, Topic: TopicUnauthorizedCharge},
		anyOf:  []string{"unauthorized", "fraud", "didn't make", "did not make"},
	},
	{
		intent: Intent{Category: CategoryComplaint, Topic: TopicMissingRefund},
		anyOf:  []string{"refund", "not received", "missing refund"},
	},
	{
		intent:   Intent{Category: CategoryInformational, Topic: TopicBillGeneration},
		required: []string{"bill"},
		anyOf:    []string{"generat", "when", "date"},
	},
	{
		intent:   Intent{Category: CategoryInformational, Topic: TopicPaymentDeduction},
		required: []string{"payment"},
		anyOf:    []string{"deduct", "when", "reflect"},
	},
	{
		intent: Intent{Category: CategoryInformational, Topic: TopicOutstandingBalance},
		anyOf:  []string{"balance", "outstanding", "owe"},
	},
	{
		intent:   Intent{Category: CategoryInformational, Topic: TopicDueDate},
		required: []string{"due"},
		anyOf:    []string{"date", "when"},
	},
}

// NewClassifier builds the classifier with the default rule table. A
// malformed table is a programming error and fails construction; callers
// treat this as fatal at startup.
func NewClassifier() (*Classifier, error) {
	return newClassifier(defaultRules)
}

func newClassifier(rules []rule) (*Classifier, error) {
	seen := make(map[Intent]bool)
	for i, r := range rules {
		if len(r.anyOf) == 0 {
			return nil, fmt.Errorf("rule %d (%s/%s): empty keyword set", i, r.intent.Category, r.intent.Topic)
		}
		if seen[r.intent] {
			return nil, fmt.Errorf("rule %d (%s/%s): duplicate intent", i, r.intent.Category, r.intent.Topic)
		}
		seen[r.intent] = true
	}
	return &Classifier{
		rules:    rules,
		fallback: Intent{Category: CategoryInformational, Topic: TopicGeneralInquiry},
	}, nil
}

// Classify maps user text to exactly one intent. Matching is
// case-insensitive substring matching in fixed rule order; the same input
// always yields the same intent.
func (c *Classifier) Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		if r.matches(lower) {
			return r.intent
		}
	}
	return c.fallback
}
