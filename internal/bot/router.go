// Package bot is the conversation engine: it turns parsed button actions and
// message submissions into state transitions, store calls and rendered
// screens. It never talks to the chat platform directly, only through the
// transport seam.
package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"support-bot-backend/internal/action"
	"support-bot-backend/internal/events"
	"support-bot-backend/internal/model"
	"support-bot-backend/internal/queue"
	"support-bot-backend/internal/service/ticket"
	"support-bot-backend/internal/session"
	"support-bot-backend/internal/transport"
	"support-bot-backend/internal/view"
)

const unavailableNotice = "⚠️ Support is temporarily unavailable, please try again in a moment."

// Config carries the deployment knobs the router needs at decision points.
type Config struct {
	Admins      map[int64]struct{}
	AllowReopen bool
	// WorkStart/WorkEnd bound the staffed hours (local clock). Equal values
	// disable the off-hours banner.
	WorkStart int
	WorkEnd   int
	// OpsSecret and OpsFeedURL back the /dashboard command; empty disables it.
	OpsSecret  string
	OpsFeedURL string
}

func (c Config) IsAdmin(id int64) bool {
	_, ok := c.Admins[id]
	return ok
}

// Router implements transport.Handler.
type Router struct {
	tickets  *ticket.Service
	sessions *session.Registry
	tp       transport.Transport
	recorder events.Recorder
	notify   *queue.Dispatcher
	cfg      Config
	now      func() time.Time
}

func New(tickets *ticket.Service, sessions *session.Registry, tp transport.Transport, recorder events.Recorder, notify *queue.Dispatcher, cfg Config) *Router {
	if recorder == nil {
		recorder = events.Nop{}
	}
	return &Router{
		tickets:  tickets,
		sessions: sessions,
		tp:       tp,
		recorder: recorder,
		notify:   notify,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (r *Router) HandleAction(ctx context.Context, ev transport.ActionEvent) {
	actionsTotal.WithLabelValues(string(ev.Action.Kind)).Inc()

	banned, err := r.tickets.IsBanned(ctx, ev.From)
	if err != nil {
		r.ack(ctx, ev.ActionID, unavailableNotice)
		return
	}
	if banned {
		r.ack(ctx, ev.ActionID, "")
		return
	}

	sess := r.sessions.Get(ev.From)
	isAdmin := r.cfg.IsAdmin(ev.From)
	a := ev.Action

	switch a.Kind {
	case action.KindNoop:
		r.ack(ctx, ev.ActionID, "")

	case action.KindStart, action.KindCancel:
		sess.ClearPending()
		r.showMenu(ctx, ev.Location, sess, isAdmin)
		r.ack(ctx, ev.ActionID, "")

	case action.KindSelectCategory:
		cat, ok := model.CategoryByKey(a.Category)
		if !ok {
			r.showMenu(ctx, ev.Location, sess, isAdmin)
			r.ack(ctx, ev.ActionID, "")
			return
		}
		sess.SetPending(session.Pending{
			State:    session.StateAwaitingTicketDescription,
			Category: cat.Key,
			Origin:   ev.Location,
		})
		r.edit(ctx, ev.Location, view.DescriptionPrompt(cat))
		r.ack(ctx, ev.ActionID, "")

	case action.KindMyTickets:
		r.showView(ctx, ev.From, ev.Location, sess, view.ID{Kind: view.KindMyTickets, Page: a.Page})
		r.ack(ctx, ev.ActionID, "")

	case action.KindDashboard:
		if !isAdmin {
			r.ack(ctx, ev.ActionID, "")
			return
		}
		r.showView(ctx, ev.From, ev.Location, sess, view.ID{Kind: view.KindDashboard, Page: a.Page, Status: a.Status})
		r.ack(ctx, ev.ActionID, "")

	case action.KindOwners:
		if !isAdmin {
			r.ack(ctx, ev.ActionID, "")
			return
		}
		r.showView(ctx, ev.From, ev.Location, sess, view.ID{Kind: view.KindOwners, Page: a.Page})
		r.ack(ctx, ev.ActionID, "")

	case action.KindViewTicket:
		r.showView(ctx, ev.From, ev.Location, sess, view.ID{
			Kind:     view.KindTicketDetail,
			Category: a.Category,
			TicketID: a.TicketID,
			Page:     a.Page,
			Status:   a.Status,
		})
		r.ack(ctx, ev.ActionID, "")

	case action.KindBeginReply:
		r.beginAdminReply(ctx, ev, sess, isAdmin)

	case action.KindBeginUserReply:
		r.beginUserReply(ctx, ev, sess)

	case action.KindResolve:
		r.resolve(ctx, ev, sess, isAdmin)

	case action.KindReopen:
		r.reopen(ctx, ev, sess, isAdmin)

	case action.KindRate:
		r.rate(ctx, ev)

	case action.KindBan:
		if !isAdmin {
			r.ack(ctx, ev.ActionID, "")
			return
		}
		if err := r.tickets.Ban(ctx, a.TargetID, ev.From); err != nil {
			r.ack(ctx, ev.ActionID, unavailableNotice)
			return
		}
		r.record(ctx, events.Event{Type: events.TypeUserBanned, TicketID: a.TicketID, Category: a.Category, Actor: ev.From, Detail: fmt.Sprintf("banned %d", a.TargetID)})
		r.ack(ctx, ev.ActionID, "🚫 User banned.")

	case action.KindBack:
		r.navigateBack(ctx, ev, sess, isAdmin)
		r.ack(ctx, ev.ActionID, "")

	case action.KindMedia:
		r.sendMedia(ctx, ev)

	case action.KindMediaAll:
		r.sendAllMedia(ctx, ev)

	default:
		r.ack(ctx, ev.ActionID, "")
	}
}

func (r *Router) beginAdminReply(ctx context.Context, ev transport.ActionEvent, sess *session.Session, isAdmin bool) {
	if !isAdmin {
		r.ack(ctx, ev.ActionID, "")
		return
	}
	a := ev.Action
	t, err := r.tickets.Get(ctx, a.Category, a.TicketID)
	if err != nil {
		r.ticketGone(ctx, ev, sess, err)
		return
	}
	sess.SetPending(session.Pending{
		State:      session.StateAwaitingAdminReply,
		Category:   t.Category,
		TicketID:   t.ID,
		Recipient:  t.OwnerID,
		Origin:     ev.Location,
		ListPage:   a.Page,
		ListStatus: a.Status,
	})
	cancel := action.Action{Kind: action.KindViewTicket, Category: t.Category, TicketID: t.ID, Page: a.Page, Status: a.Status}
	r.edit(ctx, ev.Location, view.ReplyPrompt(t.ID, cancel))
	r.ack(ctx, ev.ActionID, "")
}

func (r *Router) beginUserReply(ctx context.Context, ev transport.ActionEvent, sess *session.Session) {
	a := ev.Action
	t, err := r.tickets.Get(ctx, a.Category, a.TicketID)
	if err != nil {
		r.ticketGone(ctx, ev, sess, err)
		return
	}
	if t.OwnerID != ev.From {
		r.ack(ctx, ev.ActionID, "")
		return
	}
	sess.SetPending(session.Pending{
		State:    session.StateAwaitingUserReply,
		Category: t.Category,
		TicketID: t.ID,
		Origin:   ev.Location,
	})
	r.edit(ctx, ev.Location, view.ReplyPrompt(t.ID, action.Action{Kind: action.KindCancel}))
	r.ack(ctx, ev.ActionID, "")
}

func (r *Router) resolve(ctx context.Context, ev transport.ActionEvent, sess *session.Session, isAdmin bool) {
	a := ev.Action
	t, err := r.tickets.Get(ctx, a.Category, a.TicketID)
	if err != nil {
		r.ticketGone(ctx, ev, sess, err)
		return
	}
	if !isAdmin && t.OwnerID != ev.From {
		r.ack(ctx, ev.ActionID, "")
		return
	}
	if _, err := r.tickets.Resolve(ctx, a.Category, a.TicketID); err != nil {
		r.ack(ctx, ev.ActionID, unavailableNotice)
		return
	}
	r.record(ctx, events.Event{Type: events.TypeTicketResolved, TicketID: t.ID, Category: t.Category, Actor: ev.From})

	if isAdmin && t.OwnerID != ev.From {
		r.notify.Enqueue(queue.Job{
			Recipient: t.OwnerID,
			Text:      fmt.Sprintf("✅ Your ticket *#%s* was marked as resolved.\n\nHow would you rate our support?", t.ID),
			Keyboard:  ratingKeyboard(t.Category, t.ID),
		})
	}

	r.ack(ctx, ev.ActionID, "✅ Ticket resolved.")
	if isAdmin {
		r.showView(ctx, ev.From, ev.Location, sess, view.ID{Kind: view.KindDashboard, Page: a.Page, Status: a.Status})
	} else {
		r.showView(ctx, ev.From, ev.Location, sess, view.ID{Kind: view.KindMyTickets, Page: a.Page})
	}
}

func (r *Router) reopen(ctx context.Context, ev transport.ActionEvent, sess *session.Session, isAdmin bool) {
	if !isAdmin || !r.cfg.AllowReopen {
		r.ack(ctx, ev.ActionID, "")
		return
	}
	a := ev.Action
	t, err := r.tickets.Reopen(ctx, a.Category, a.TicketID)
	if err != nil {
		r.ticketGone(ctx, ev, sess, err)
		return
	}
	r.record(ctx, events.Event{Type: events.TypeTicketReopened, TicketID: t.ID, Category: t.Category, Actor: ev.From})
	r.ack(ctx, ev.ActionID, "📂 Ticket re-opened.")
	r.showView(ctx, ev.From, ev.Location, sess, view.ID{
		Kind:     view.KindTicketDetail,
		Category: t.Category,
		TicketID: t.ID,
		Page:     a.Page,
		Status:   a.Status,
	})
}

func (r *Router) rate(ctx context.Context, ev transport.ActionEvent) {
	a := ev.Action
	if err := r.tickets.Rate(ctx, a.TicketID, ev.From, a.Stars); err != nil {
		r.ack(ctx, ev.ActionID, unavailableNotice)
		return
	}
	r.record(ctx, events.Event{Type: events.TypeTicketRated, TicketID: a.TicketID, Category: a.Category, Actor: ev.From, Detail: fmt.Sprintf("%d stars", a.Stars)})
	r.edit(ctx, ev.Location, view.Screen{
		Text: fmt.Sprintf("🙏 Thank you! You rated our support %d/5.", a.Stars),
	})
	r.ack(ctx, ev.ActionID, "")
}

func (r *Router) sendMedia(ctx context.Context, ev transport.ActionEvent) {
	a := ev.Action
	t, err := r.tickets.Get(ctx, a.Category, a.TicketID)
	if err != nil {
		r.ack(ctx, ev.ActionID, "❌ Ticket not found.")
		return
	}
	media, ok := view.MediaByIndex(t, a.Index)
	if !ok {
		r.ack(ctx, ev.ActionID, "No attachment at that position.")
		return
	}
	caption := fmt.Sprintf("📎 Attachment #%d of ticket #%s", a.Index, t.ID)
	if err := r.tp.SendMedia(ctx, ev.From, media, caption, nil); err != nil {
		log.Printf("send media for ticket %s: %v", t.ID, err)
	}
	r.ack(ctx, ev.ActionID, "")
}

func (r *Router) sendAllMedia(ctx context.Context, ev transport.ActionEvent) {
	a := ev.Action
	t, err := r.tickets.Get(ctx, a.Category, a.TicketID)
	if err != nil {
		r.ack(ctx, ev.ActionID, "❌ Ticket not found.")
		return
	}
	items := view.AllMedia(t)
	if len(items) == 0 {
		r.ack(ctx, ev.ActionID, "No attachments on this ticket.")
		return
	}
	for _, chunk := range view.ChunkMedia(items) {
		if err := r.tp.SendMediaBatch(ctx, ev.From, chunk); err != nil {
			log.Printf("send media batch for ticket %s: %v", t.ID, err)
			break
		}
	}
	r.ack(ctx, ev.ActionID, "")
}

// navigateBack pops the stack and re-renders the previous screen. An empty
// stack or a screen that no longer resolves falls through to the role menu.
func (r *Router) navigateBack(ctx context.Context, ev transport.ActionEvent, sess *session.Session, isAdmin bool) {
	for {
		prev, ok := sess.PopView()
		if !ok {
			r.showMenu(ctx, ev.Location, sess, isAdmin)
			return
		}
		screen, resolved, err := r.buildScreen(ctx, ev.From, prev)
		if err != nil {
			if ticket.CodeOf(err) == ticket.ErrorCodeNotFound {
				continue
			}
			r.showMenu(ctx, ev.Location, sess, isAdmin)
			return
		}
		r.edit(ctx, ev.Location, screen)
		sess.ReplaceView(resolved)
		return
	}
}

// showView renders a screen in place and records it as the current view.
func (r *Router) showView(ctx context.Context, uid int64, loc transport.Location, sess *session.Session, id view.ID) {
	screen, resolved, err := r.buildScreen(ctx, uid, id)
	if err != nil {
		if ticket.CodeOf(err) == ticket.ErrorCodeNotFound {
			r.showFallbackList(ctx, uid, loc, sess, id)
			return
		}
		r.edit(ctx, loc, view.Screen{Text: unavailableNotice})
		return
	}
	r.edit(ctx, loc, screen)
	sess.SetView(resolved)
}

// showFallbackList lands on the nearest list after a dead ticket reference,
// preserving the page and filter the viewer came from.
func (r *Router) showFallbackList(ctx context.Context, uid int64, loc transport.Location, sess *session.Session, from view.ID) {
	page := from.Page
	if page < 1 {
		page = 1
	}
	var id view.ID
	if r.cfg.IsAdmin(uid) {
		status := from.Status
		if status == "" {
			status = model.TicketStatusOpen
		}
		id = view.ID{Kind: view.KindDashboard, Page: page, Status: status}
	} else {
		id = view.ID{Kind: view.KindMyTickets, Page: page}
	}
	screen, resolved, err := r.buildScreen(ctx, uid, id)
	if err != nil {
		r.edit(ctx, loc, view.Screen{Text: unavailableNotice})
		return
	}
	screen.Text = "❌ *This ticket no longer exists.*\n\n" + screen.Text
	r.edit(ctx, loc, screen)
	sess.SetView(resolved)
}

func (r *Router) showMenu(ctx context.Context, loc transport.Location, sess *session.Session, isAdmin bool) {
	id, screen := view.MenuFor(isAdmin, r.offHours())
	r.edit(ctx, loc, screen)
	sess.SetView(id)
}

// buildScreen resolves a view identity against current store state.
func (r *Router) buildScreen(ctx context.Context, uid int64, id view.ID) (view.Screen, view.ID, error) {
	switch id.Kind {
	case view.KindUserMenu:
		return view.UserMenu(r.offHours()), id, nil

	case view.KindAdminMenu:
		return view.AdminMenu(), id, nil

	case view.KindDashboard:
		status := id.Status
		if status == "" {
			status = model.TicketStatusOpen
		}
		tickets, err := r.tickets.List(ctx, ticket.Filter{Status: status, Triage: true})
		if err != nil {
			return view.Screen{}, view.ID{}, err
		}
		resolved, screen := view.Dashboard(tickets, id.Page, status)
		return screen, resolved, nil

	case view.KindMyTickets:
		tickets, err := r.tickets.List(ctx, ticket.Filter{Owner: uid})
		if err != nil {
			return view.Screen{}, view.ID{}, err
		}
		resolved, screen := view.MyTickets(tickets, id.Page)
		return screen, resolved, nil

	case view.KindOwners:
		owners, err := r.tickets.Owners(ctx, "")
		if err != nil {
			return view.Screen{}, view.ID{}, err
		}
		resolved, screen := view.Owners(owners, id.Page)
		return screen, resolved, nil

	case view.KindTicketDetail:
		t, err := r.tickets.Get(ctx, id.Category, id.TicketID)
		if err != nil {
			return view.Screen{}, view.ID{}, err
		}
		resolved, screen := view.TicketDetail(t, view.DetailOptions{
			IsAdmin:     r.cfg.IsAdmin(uid),
			IsOwner:     t.OwnerID == uid,
			AllowReopen: r.cfg.AllowReopen,
			Page:        id.Page,
			Status:      id.Status,
		})
		return screen, resolved, nil

	default:
		return view.Screen{}, view.ID{}, fmt.Errorf("bot: unknown view kind %q", id.Kind)
	}
}

func (r *Router) offHours() bool {
	if r.cfg.WorkStart == r.cfg.WorkEnd {
		return false
	}
	h := r.now().Hour()
	return h < r.cfg.WorkStart || h >= r.cfg.WorkEnd
}

func (r *Router) ticketGone(ctx context.Context, ev transport.ActionEvent, sess *session.Session, err error) {
	if ticket.CodeOf(err) == ticket.ErrorCodeNotFound {
		r.ack(ctx, ev.ActionID, "❌ Ticket not found.")
		r.showFallbackList(ctx, ev.From, ev.Location, sess, view.ID{Page: ev.Action.Page, Status: ev.Action.Status})
		return
	}
	r.ack(ctx, ev.ActionID, unavailableNotice)
}

func (r *Router) edit(ctx context.Context, loc transport.Location, screen view.Screen) {
	if err := r.tp.EditView(ctx, loc, screen.Text, screen.Media, screen.Keyboard); err != nil {
		log.Printf("edit view at %d/%d: %v", loc.ChatID, loc.MessageID, err)
	}
}

func (r *Router) ack(ctx context.Context, actionID, toast string) {
	if err := r.tp.Acknowledge(ctx, actionID, toast); err != nil {
		log.Printf("acknowledge action %s: %v", actionID, err)
	}
}

func (r *Router) record(ctx context.Context, e events.Event) {
	if err := r.recorder.Record(ctx, e); err != nil {
		log.Printf("record event %s: %v", e.Type, err)
	}
}

func ratingKeyboard(categoryKey, ticketID string) transport.Keyboard {
	row := make([]transport.Button, 0, 5)
	for stars := 1; stars <= 5; stars++ {
		row = append(row, transport.Button{
			Label:  fmt.Sprintf("%d⭐️", stars),
			Action: action.Action{Kind: action.KindRate, Category: categoryKey, TicketID: ticketID, Stars: stars},
		})
	}
	return transport.Keyboard{row}
}
