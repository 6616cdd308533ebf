package view

import (
	"fmt"

	"support-bot-backend/internal/action"
	"support-bot-backend/internal/model"
	"support-bot-backend/internal/transport"
)

// OwnerSummary is one row of the distinct-owners listing.
type OwnerSummary struct {
	OwnerID      int64
	TicketCount  int
	LastTicketAt string
}

// Dashboard renders the admin triage listing: status filter toggle, one
// button per ticket, navigation row. Tickets must already be triage-sorted.
func Dashboard(tickets []model.TicketItem, page int, status model.TicketStatus) (ID, Screen) {
	p := Paginate(len(tickets), page, PerPageDashboard)
	id := ID{Kind: KindDashboard, Page: p.Number, Status: status}

	kb := transport.Keyboard{filterRow(status)}

	if len(tickets) == 0 {
		kb = append(kb, backRow())
		return id, Screen{
			Text:     fmt.Sprintf("✅ *No %s tickets found.*", status),
			Keyboard: kb,
		}
	}

	for _, t := range tickets[p.Start:p.End] {
		cat, _ := model.CategoryByKey(t.Category)
		kb = append(kb, transport.Row(transport.Button{
			Label: fmt.Sprintf("%s #%s | %s", cat.PriorityTag(), t.ID, cat.Title),
			Action: action.Action{
				Kind:     action.KindViewTicket,
				Category: t.Category,
				TicketID: t.ID,
				Page:     p.Number,
				Status:   status,
			},
		}))
	}

	kb = append(kb, navRow(p, dashboardPageAction(status)))
	if jump := jumpRow(p, dashboardPageAction(status)); jump != nil {
		kb = append(kb, jump)
	}
	kb = append(kb, backRow())

	text := fmt.Sprintf("🛠 *Support Dashboard*\nFilter: `%s` | Count: `%d`", status, len(tickets))
	return id, Screen{Text: text, Keyboard: kb}
}

// MyTickets renders the end-user's own listing, newest first.
func MyTickets(tickets []model.TicketItem, page int) (ID, Screen) {
	p := Paginate(len(tickets), page, PerPagePlain)
	id := ID{Kind: KindMyTickets, Page: p.Number}

	kb := transport.Keyboard{}
	if len(tickets) == 0 {
		kb = append(kb, backRow())
		return id, Screen{Text: "🗂 *You have no tickets yet.*", Keyboard: kb}
	}

	for _, t := range tickets[p.Start:p.End] {
		cat, _ := model.CategoryByKey(t.Category)
		marker := "🟢"
		if t.Status == model.TicketStatusResolved {
			marker = "✅"
		}
		kb = append(kb, transport.Row(transport.Button{
			Label: fmt.Sprintf("%s #%s | %s", marker, t.ID, cat.Title),
			Action: action.Action{
				Kind:     action.KindViewTicket,
				Category: t.Category,
				TicketID: t.ID,
				Page:     p.Number,
				Status:   t.Status,
			},
		}))
	}

	kb = append(kb, navRow(p, myTicketsPageAction()))
	kb = append(kb, backRow())

	return id, Screen{Text: fmt.Sprintf("🗂 *Your Tickets:* `%d`", len(tickets)), Keyboard: kb}
}

// Owners renders the distinct submitting users, most recently active first.
func Owners(owners []OwnerSummary, page int) (ID, Screen) {
	p := Paginate(len(owners), page, PerPagePlain)
	id := ID{Kind: KindOwners, Page: p.Number}

	if len(owners) == 0 {
		return id, Screen{
			Text:     "👥 *No users have opened tickets yet.*",
			Keyboard: transport.Keyboard{backRow()},
		}
	}

	text := fmt.Sprintf("👥 *Users with tickets:* `%d`\n", len(owners))
	for _, o := range owners[p.Start:p.End] {
		text += fmt.Sprintf("\n`%d` — %d ticket(s), last %s", o.OwnerID, o.TicketCount, o.LastTicketAt)
	}

	kb := transport.Keyboard{navRow(p, ownersPageAction())}
	if jump := jumpRow(p, ownersPageAction()); jump != nil {
		kb = append(kb, jump)
	}
	kb = append(kb, backRow())

	return id, Screen{Text: text, Keyboard: kb}
}

func backRow() []transport.Button {
	return transport.Row(transport.Button{
		Label:  "🔙 Back",
		Action: action.Action{Kind: action.KindBack},
	})
}

func filterRow(active model.TicketStatus) []transport.Button {
	open := "Open"
	resolved := "Resolved"
	if active == model.TicketStatusOpen {
		open = "🟢 " + open
	} else {
		resolved = "✅ " + resolved
	}
	return transport.Row(
		transport.Button{
			Label:  open,
			Action: action.Action{Kind: action.KindDashboard, Page: 1, Status: model.TicketStatusOpen},
		},
		transport.Button{
			Label:  resolved,
			Action: action.Action{Kind: action.KindDashboard, Page: 1, Status: model.TicketStatusResolved},
		},
	)
}
