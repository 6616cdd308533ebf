// Package action defines the closed set of button actions the bot
// understands. The string payload carried by inline buttons is encoded and
// parsed here and nowhere else; everything past the transport boundary works
// with the typed Action.
package action

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"support-bot-backend/internal/model"
)

type Kind string

const (
	KindStart          Kind = "start"
	KindSelectCategory Kind = "cat"
	KindCancel         Kind = "cancel"
	KindDashboard      Kind = "dash"
	KindMyTickets      Kind = "mine"
	KindOwners         Kind = "owners"
	KindViewTicket     Kind = "view"
	KindBeginReply     Kind = "reply"
	KindBeginUserReply Kind = "ureply"
	KindResolve        Kind = "resolve"
	KindReopen         Kind = "reopen"
	KindRate           Kind = "rate"
	KindBan            Kind = "ban"
	KindBack           Kind = "back"
	KindMedia          Kind = "media"
	KindMediaAll       Kind = "media_all"
	KindNoop           Kind = "noop"
)

var ErrUnknown = errors.New("action: unknown payload")

type Action struct {
	Kind     Kind
	Category string
	TicketID string
	Page     int
	Status   model.TicketStatus
	Stars    int
	TargetID int64
	Index    int
}

const sep = "|"

// Encode renders the compact payload placed on an inline button. The layout
// per kind is fixed; Parse is the inverse.
func (a Action) Encode() string {
	switch a.Kind {
	case KindSelectCategory:
		return join(string(a.Kind), a.Category)
	case KindDashboard:
		return join(string(a.Kind), itoa(a.Page), string(a.Status))
	case KindMyTickets, KindOwners:
		return join(string(a.Kind), itoa(a.Page))
	case KindViewTicket, KindBeginReply, KindResolve, KindReopen:
		return join(string(a.Kind), a.Category, a.TicketID, itoa(a.Page), string(a.Status))
	case KindBeginUserReply, KindMediaAll:
		return join(string(a.Kind), a.Category, a.TicketID)
	case KindRate:
		return join(string(a.Kind), a.Category, a.TicketID, itoa(a.Stars))
	case KindBan:
		return join(string(a.Kind), strconv.FormatInt(a.TargetID, 10), a.Category, a.TicketID)
	case KindMedia:
		return join(string(a.Kind), a.Category, a.TicketID, itoa(a.Index))
	default:
		return string(a.Kind)
	}
}

func Parse(data string) (Action, error) {
	parts := strings.Split(data, sep)
	if len(parts) == 0 || parts[0] == "" {
		return Action{}, ErrUnknown
	}

	a := Action{Kind: Kind(parts[0])}
	args := parts[1:]

	switch a.Kind {
	case KindStart, KindCancel, KindBack, KindNoop:
		return a, nil
	case KindSelectCategory:
		if len(args) != 1 {
			return Action{}, badArity(a.Kind)
		}
		a.Category = args[0]
	case KindDashboard:
		if len(args) != 2 {
			return Action{}, badArity(a.Kind)
		}
		a.Page = atoi(args[0])
		a.Status = parseStatus(args[1])
	case KindMyTickets, KindOwners:
		if len(args) != 1 {
			return Action{}, badArity(a.Kind)
		}
		a.Page = atoi(args[0])
	case KindViewTicket, KindBeginReply, KindResolve, KindReopen:
		if len(args) != 4 {
			return Action{}, badArity(a.Kind)
		}
		a.Category, a.TicketID = args[0], args[1]
		a.Page = atoi(args[2])
		a.Status = parseStatus(args[3])
	case KindBeginUserReply, KindMediaAll:
		if len(args) != 2 {
			return Action{}, badArity(a.Kind)
		}
		a.Category, a.TicketID = args[0], args[1]
	case KindRate:
		if len(args) != 3 {
			return Action{}, badArity(a.Kind)
		}
		a.Category, a.TicketID = args[0], args[1]
		a.Stars = atoi(args[2])
	case KindBan:
		if len(args) != 3 {
			return Action{}, badArity(a.Kind)
		}
		target, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("action: bad target id: %w", err)
		}
		a.TargetID = target
		a.Category, a.TicketID = args[1], args[2]
	case KindMedia:
		if len(args) != 3 {
			return Action{}, badArity(a.Kind)
		}
		a.Category, a.TicketID = args[0], args[1]
		a.Index = atoi(args[2])
	default:
		return Action{}, ErrUnknown
	}

	return a, nil
}

func parseStatus(s string) model.TicketStatus {
	if s == string(model.TicketStatusResolved) {
		return model.TicketStatusResolved
	}
	return model.TicketStatusOpen
}

func badArity(k Kind) error {
	return fmt.Errorf("action: wrong argument count for %q", k)
}

func join(parts ...string) string {
	return strings.Join(parts, sep)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
