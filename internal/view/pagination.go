package view

import (
	"strconv"

	"support-bot-backend/internal/action"
	"support-bot-backend/internal/model"
	"support-bot-backend/internal/transport"
)

const (
	PerPageDashboard = 8
	PerPagePlain     = 10

	// jumpThreshold is the page count past which first/last shortcuts are
	// added to the navigation row.
	jumpThreshold = 5
)

// Page is a clamped window over a list of count items.
type Page struct {
	Number int
	Total  int
	Start  int
	End    int
}

// Paginate clamps the requested page into [1, total] and computes slice
// bounds. An empty set still yields page 1 of 1 with an empty window.
func Paginate(count, page, perPage int) Page {
	if perPage <= 0 {
		perPage = PerPagePlain
	}

	total := (count + perPage - 1) / perPage
	if total < 1 {
		total = 1
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	start := (page - 1) * perPage
	if start > count {
		start = count
	}
	end := start + perPage
	if end > count {
		end = count
	}

	return Page{Number: page, Total: total, Start: start, End: end}
}

// navRow builds the previous / indicator / next controls. pageAction must
// return the action that re-renders the same list at the given page.
func navRow(p Page, pageAction func(page int) action.Action) []transport.Button {
	row := []transport.Button{}
	if p.Number > 1 {
		row = append(row, transport.Button{Label: "⬅️", Action: pageAction(p.Number - 1)})
	}
	row = append(row, transport.Button{
		Label:  strconv.Itoa(p.Number) + "/" + strconv.Itoa(p.Total),
		Action: action.Action{Kind: action.KindNoop},
	})
	if p.Number < p.Total {
		row = append(row, transport.Button{Label: "➡️", Action: pageAction(p.Number + 1)})
	}
	return row
}

// jumpRow adds first/last page shortcuts for long listings.
func jumpRow(p Page, pageAction func(page int) action.Action) []transport.Button {
	if p.Total <= jumpThreshold {
		return nil
	}
	return []transport.Button{
		{Label: "⏮ 1", Action: pageAction(1)},
		{Label: "⏭ " + strconv.Itoa(p.Total), Action: pageAction(p.Total)},
	}
}

func dashboardPageAction(status model.TicketStatus) func(int) action.Action {
	return func(page int) action.Action {
		return action.Action{Kind: action.KindDashboard, Page: page, Status: status}
	}
}

func myTicketsPageAction() func(int) action.Action {
	return func(page int) action.Action {
		return action.Action{Kind: action.KindMyTickets, Page: page}
	}
}

func ownersPageAction() func(int) action.Action {
	return func(page int) action.Action {
		return action.Action{Kind: action.KindOwners, Page: page}
	}
}
