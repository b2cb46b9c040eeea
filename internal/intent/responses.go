package intent

// knowledgeBase holds the canned answer for each topic.
var knowledgeBase = map[Topic]string{
	TopicBillGeneration: "Your credit card bill is generated on the 1st of every month. " +
		"The billing cycle runs from the 1st to the last day of each month.",
	TopicPaymentDeduction: "Payment is automatically deducted 15 days after bill generation, " +
		"on the 16th of each month from your registered bank account.",
	TopicOutstandingBalance: "Your current outstanding balance can be checked in your monthly statement. " +
		"For the most accurate balance, please check your latest statement or " +
		"contact your bank directly.",
	TopicDueDate: "Your payment due date is the 16th of every month. " +
		"A grace period of 3 days is available until the 19th without late fees.",
	TopicDoubleDeduction: "We understand your concern about a double deduction. This has been noted " +
		"and will be investigated. A refund will be processed within 5-7 business " +
		"days if confirmed.",
	TopicIncorrectBilling: "We take incorrect billing seriously. Your complaint has been registered " +
		"and our billing team will review your account within 24 hours.",
	TopicUnauthorizedCharge: "An unauthorized charge is a serious matter. We will immediately flag your " +
		"account for review and our fraud team will investigate within 24 hours.",
	TopicMissingRefund: "Refunds typically take 7-10 business days to process. If it has been " +
		"longer, your case will be escalated for immediate review.",
}

const (
	// GreetingResponse opens every new conversation.
	GreetingResponse = "Hello! I'm your Assist Link support agent. " +
		"How can I help you with your credit card today?"

	// FallbackResponse is used when no rule matched the query.
	FallbackResponse = "I'd be happy to help you with that. " +
		"Could you provide more details about your query?"

	// FarewellResponse ends a conversation the customer closed themselves.
	FarewellResponse = "Thank you for contacting Assist Link support. " +
		"Have a great day, and don't hesitate to reach out if anything else comes up!"

	// EscalationResponse is sent when the conversation hands off to a human.
	EscalationResponse = "I understand your frustration, and I sincerely apologize for the inconvenience. " +
		"A customer care executive will connect with you within 30 minutes to resolve " +
		"this personally. Your concern has been escalated to our priority queue."

	// SoftenPrefix is prepended to a reply when frustration is building but
	// has not yet crossed the escalation threshold.
	SoftenPrefix = "I'm sorry for the trouble. "

	followUpSuffix = "\n\nIs there anything else I can help you with?"
)

// Reply is a drafted assistant response together with a resolution hint.
type Reply struct {
	Text string
	// Resolvable reports whether the reply directly answers the query, so
	// the conversation may be marked AI-resolved on calm sentiment.
	Resolvable bool
}

// Respond drafts the canned reply for an intent.
func Respond(in Intent) Reply {
	if in.Category == CategoryFarewell {
		return Reply{Text: FarewellResponse, Resolvable: true}
	}
	answer, ok := knowledgeBase[in.Topic]
	if !ok {
		return Reply{Text: FallbackResponse, Resolvable: false}
	}
	return Reply{Text: answer + followUpSuffix, Resolvable: in.Category == CategoryInformational}
}
