package model

type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusResolved TicketStatus = "resolved"
)

type MediaKind string

const (
	MediaKindPhoto MediaKind = "photo"
	MediaKindVideo MediaKind = "video"
)

// MediaRef points at a media object already stored by the transport.
type MediaRef struct {
	Kind   MediaKind `dynamodbav:"kind" json:"kind"`
	FileID string    `dynamodbav:"fileId" json:"fileId"`
}

type ReplyRole string

const (
	ReplyRoleUser  ReplyRole = "user"
	ReplyRoleAdmin ReplyRole = "admin"
)

// ReplyEntry is one element of a ticket's append-only history. Index is
// 1-based and contiguous; the origin message is the implicit index 0.
type ReplyEntry struct {
	Role  ReplyRole `dynamodbav:"role" json:"role"`
	Index int       `dynamodbav:"index" json:"index"`
	Text  string    `dynamodbav:"text" json:"text"`
	Media *MediaRef `dynamodbav:"media,omitempty" json:"media,omitempty"`
	Time  string    `dynamodbav:"time" json:"time"`
}

type TicketItem struct {
	PK          string       `dynamodbav:"pk"`
	ID          string       `dynamodbav:"id"`
	OwnerID     int64        `dynamodbav:"ownerId"`
	Category    string       `dynamodbav:"category"`
	Priority    int          `dynamodbav:"priority"`
	Status      TicketStatus `dynamodbav:"status"`
	OriginText  string       `dynamodbav:"originText"`
	OriginMedia *MediaRef    `dynamodbav:"originMedia,omitempty"`
	History     []ReplyEntry `dynamodbav:"history"`
	CreatedAt   string       `dynamodbav:"createdAt"`
	ResolvedAt  string       `dynamodbav:"resolvedAt,omitempty"`
	ExpireAt    int64        `dynamodbav:"expireAt,omitempty"`
}

// LastSpeaker reports the role of the most recent history entry, or the
// owner's side when the ticket has no replies yet.
func (t TicketItem) LastSpeaker() ReplyRole {
	if len(t.History) == 0 {
		return ReplyRoleUser
	}
	return t.History[len(t.History)-1].Role
}
