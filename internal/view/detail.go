package view

import (
	"fmt"
	"strconv"

	"support-bot-backend/internal/action"
	"support-bot-backend/internal/model"
	"support-bot-backend/internal/transport"
)

// DetailOptions shape the controls below a ticket transcript.
type DetailOptions struct {
	IsAdmin     bool
	IsOwner     bool
	AllowReopen bool
	// Page and Status locate the listing the viewer came from.
	Page   int
	Status model.TicketStatus
}

// TicketDetail renders the full thread with role- and status-appropriate
// controls. The origin media, when present, is attached to the screen so the
// transport can render it inline.
func TicketDetail(t model.TicketItem, opts DetailOptions) (ID, Screen) {
	id := ID{Kind: KindTicketDetail, Category: t.Category, TicketID: t.ID, Page: opts.Page, Status: opts.Status}

	kb := transport.Keyboard{}
	ticketRef := action.Action{
		Category: t.Category,
		TicketID: t.ID,
		Page:     opts.Page,
		Status:   opts.Status,
	}

	if opts.IsAdmin {
		if t.Status == model.TicketStatusOpen {
			resolve := ticketRef
			resolve.Kind = action.KindResolve
			reply := ticketRef
			reply.Kind = action.KindBeginReply
			kb = append(kb, transport.Row(
				transport.Button{Label: "✅ Resolve", Action: resolve},
				transport.Button{Label: "↩️ Reply", Action: reply},
			))
		} else if opts.AllowReopen {
			reopen := ticketRef
			reopen.Kind = action.KindReopen
			kb = append(kb, transport.Row(transport.Button{Label: "🔓 Re-open", Action: reopen}))
		}
		kb = append(kb, transport.Row(transport.Button{
			Label:  "🚫 Ban",
			Action: action.Action{Kind: action.KindBan, TargetID: t.OwnerID, Category: t.Category, TicketID: t.ID},
		}))
	} else if opts.IsOwner {
		if t.Status == model.TicketStatusOpen {
			if t.LastSpeaker() == model.ReplyRoleAdmin {
				kb = append(kb, transport.Row(transport.Button{
					Label:  "↩️ Reply to Support",
					Action: action.Action{Kind: action.KindBeginUserReply, Category: t.Category, TicketID: t.ID},
				}))
			}
			resolve := ticketRef
			resolve.Kind = action.KindResolve
			kb = append(kb, transport.Row(transport.Button{Label: "✅ Mark Solved", Action: resolve}))
		}
	}

	if row := mediaRow(t); row != nil {
		kb = append(kb, row)
	}

	kb = append(kb, transport.Row(transport.Button{
		Label:  "🔙 Back",
		Action: action.Action{Kind: action.KindBack},
	}))

	return id, Screen{
		Text:     Transcript(t),
		Keyboard: kb,
		Media:    t.OriginMedia,
	}
}

func mediaRow(t model.TicketItem) []transport.Button {
	indexes := MediaIndexes(t)
	if len(indexes) == 0 {
		return nil
	}

	row := []transport.Button{}
	for _, i := range indexes {
		if len(row) == 4 {
			break
		}
		row = append(row, transport.Button{
			Label:  "📎 #" + strconv.Itoa(i),
			Action: action.Action{Kind: action.KindMedia, Category: t.Category, TicketID: t.ID, Index: i},
		})
	}
	if len(indexes) > 1 {
		row = append(row, transport.Button{
			Label:  fmt.Sprintf("📥 All (%d)", len(indexes)),
			Action: action.Action{Kind: action.KindMediaAll, Category: t.Category, TicketID: t.ID},
		})
	}
	return row
}
