package service

import (
	"errors"
)

var (
	// ErrConversationClosed is returned when a turn is submitted to a
	// closed conversation. The session has ended; not retryable.
	ErrConversationClosed = errors.New("conversation is closed")

	// ErrConversationEscalated is returned when a turn is submitted to an
	// escalated conversation. A human agent owns it from that point on.
	ErrConversationEscalated = errors.New("conversation is escalated to a human agent")

	// ErrEmptyTranscript is returned when a voice turn could not be
	// transcribed. The conversation is not mutated.
	ErrEmptyTranscript = errors.New("could not transcribe audio")
)
