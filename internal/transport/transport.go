// Package transport is the narrow seam between the conversation engine and
// the chat platform. The engine only ever talks to the Transport interface;
// the Telegram adapter lives in the telegram subpackage.
package transport

import (
	"context"

	"support-bot-backend/internal/action"
	"support-bot-backend/internal/model"
)

// MaxMediaBatch is the transport's album size limit.
const MaxMediaBatch = 10

// Location identifies a rendered message that can be edited in place.
type Location struct {
	ChatID    int64
	MessageID int
}

type Button struct {
	Label  string
	Action action.Action
	URL    string
}

type Keyboard [][]Button

func Row(buttons ...Button) []Button {
	return buttons
}

type Transport interface {
	SendText(ctx context.Context, recipient int64, text string, kb Keyboard) error
	SendMedia(ctx context.Context, recipient int64, media model.MediaRef, caption string, kb Keyboard) error
	// SendMediaBatch delivers up to MaxMediaBatch items as one album.
	SendMediaBatch(ctx context.Context, recipient int64, items []model.MediaRef) error
	// EditView swaps the content of an already rendered message. Adapters
	// fall back to caption edits or delete+resend when the original message
	// type cannot hold the new content.
	EditView(ctx context.Context, loc Location, text string, media *model.MediaRef, kb Keyboard) error
	// Acknowledge closes the spinner of a button press, optionally with a
	// short toast.
	Acknowledge(ctx context.Context, actionID, toast string) error
}

// ActionEvent is a parsed button press.
type ActionEvent struct {
	ActionID string
	From     int64
	Location Location
	Action   action.Action
}

// SubmissionEvent is an inbound message: free text, optional single media
// item, or a slash command.
type SubmissionEvent struct {
	From    int64
	ChatID  int64
	Text    string
	Media   *model.MediaRef
	Command string
	Args    string
}

type Handler interface {
	HandleAction(ctx context.Context, ev ActionEvent)
	HandleSubmission(ctx context.Context, ev SubmissionEvent)
}
