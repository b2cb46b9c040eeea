package model

// Ticket is the record of a hand-off to the human ticketing system.
type Ticket struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Reason         string `json:"reason"`
	Local          bool   `json:"local"`
}
