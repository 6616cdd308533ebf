package ticket

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"support-bot-backend/internal/database"
	"support-bot-backend/internal/model"
	"support-bot-backend/internal/view"

	"github.com/google/uuid"
)

// RetentionPolicy controls when tickets become eligible for deletion.
// FromResolution anchors the window at resolution time; otherwise it is a
// fixed age from creation.
type RetentionPolicy struct {
	Days           int
	FromResolution bool
}

const (
	DefaultRetentionDays = 30

	// appendAttempts bounds the conditional-append retry loop.
	appendAttempts = 3

	// MediaPlaceholder stands in for the text body of a media-only message.
	MediaPlaceholder = "[MEDIA]"
)

type Service struct {
	repo      Repository
	now       func() time.Time
	retention RetentionPolicy
}

func New(db *database.Database, retention RetentionPolicy) *Service {
	return NewWithRepository(NewDynamoRepository(db), time.Now, retention)
}

func NewWithRepository(repo Repository, now func() time.Time, retention RetentionPolicy) *Service {
	if now == nil {
		now = time.Now
	}
	if retention.Days <= 0 {
		retention.Days = DefaultRetentionDays
	}
	return &Service{
		repo:      repo,
		now:       now,
		retention: retention,
	}
}

type CreateTicketParams struct {
	OwnerID  int64
	Category model.Category
	Text     string
	Media    *model.MediaRef
}

func (s *Service) CreateTicket(ctx context.Context, params CreateTicketParams) (model.TicketItem, error) {
	text := strings.TrimSpace(params.Text)
	if text == "" {
		if params.Media == nil {
			return model.TicketItem{}, newError(ErrorCodeValidation, "ticket description is required", nil)
		}
		text = MediaPlaceholder
	}

	banned, err := s.repo.IsBanned(ctx, params.OwnerID)
	if err != nil {
		return model.TicketItem{}, newError(ErrorCodeInternal, "failed to check ban list", err)
	}
	if banned {
		return model.TicketItem{}, newError(ErrorCodeBlocked, "participant is blocked", nil)
	}

	seq, err := s.repo.AllocateSequence(ctx, model.SettingTicketCounter)
	if err != nil {
		return model.TicketItem{}, newError(ErrorCodeUnavailable, "failed to allocate ticket id", err)
	}
	id := "T-" + strconv.FormatInt(seq, 10)

	now := s.now().UTC()
	ticket := model.TicketItem{
		PK:          model.TicketPK(params.Category.Key, id),
		ID:          id,
		OwnerID:     params.OwnerID,
		Category:    params.Category.Key,
		Priority:    params.Category.Priority,
		Status:      model.TicketStatusOpen,
		OriginText:  text,
		OriginMedia: params.Media,
		History:     []model.ReplyEntry{},
		CreatedAt:   now.Format(time.RFC3339),
	}
	if !s.retention.FromResolution {
		ticket.ExpireAt = now.AddDate(0, 0, s.retention.Days).Unix()
	}

	if err := s.repo.CreateTicket(ctx, ticket); err != nil {
		if errors.Is(err, ErrDuplicateID) {
			// The sequence allocator never hands out the same value twice;
			// a collision here means the counter document was tampered with.
			return model.TicketItem{}, newError(ErrorCodeConflict, fmt.Sprintf("ticket id %s already exists", id), err)
		}
		return model.TicketItem{}, newError(ErrorCodeInternal, "failed to persist ticket", err)
	}

	return ticket, nil
}

func (s *Service) Get(ctx context.Context, categoryKey, id string) (model.TicketItem, error) {
	t, err := s.repo.GetTicket(ctx, categoryKey, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.TicketItem{}, newError(ErrorCodeNotFound, "ticket not found", err)
		}
		return model.TicketItem{}, newError(ErrorCodeInternal, "failed to load ticket", err)
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]model.TicketItem, error) {
	tickets, err := s.repo.ListTickets(ctx, f)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list tickets", err)
	}
	return tickets, nil
}

func (s *Service) Owners(ctx context.Context, categoryKey string) ([]view.OwnerSummary, error) {
	owners, err := s.repo.DistinctOwners(ctx, categoryKey)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list owners", err)
	}
	return owners, nil
}

// AppendReply appends a history entry with the next contiguous index. The
// conditional write is retried a few times so two counterparts replying at
// once both land, in order, without ever reusing an index.
func (s *Service) AppendReply(ctx context.Context, categoryKey, id string, role model.ReplyRole, text string, media *model.MediaRef) (model.TicketItem, model.ReplyEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		if media == nil {
			return model.TicketItem{}, model.ReplyEntry{}, newError(ErrorCodeValidation, "reply body is required", nil)
		}
		text = MediaPlaceholder
	}

	var lastErr error
	for attempt := 0; attempt < appendAttempts; attempt++ {
		t, err := s.Get(ctx, categoryKey, id)
		if err != nil {
			return model.TicketItem{}, model.ReplyEntry{}, err
		}

		entry := model.ReplyEntry{
			Role:  role,
			Index: len(t.History) + 1,
			Text:  text,
			Media: media,
			Time:  s.now().UTC().Format(time.RFC3339),
		}

		err = s.repo.AppendReply(ctx, categoryKey, id, entry)
		if err == nil {
			t.History = append(t.History, entry)
			return t, entry, nil
		}
		if !errors.Is(err, ErrConflict) {
			return model.TicketItem{}, model.ReplyEntry{}, newError(ErrorCodeInternal, "failed to append reply", err)
		}
		lastErr = err
	}

	return model.TicketItem{}, model.ReplyEntry{}, newError(ErrorCodeConflict, "reply append kept conflicting", lastErr)
}

func (s *Service) Resolve(ctx context.Context, categoryKey, id string) (model.TicketItem, error) {
	t, err := s.Get(ctx, categoryKey, id)
	if err != nil {
		return model.TicketItem{}, err
	}

	now := s.now().UTC()
	resolvedAt := now.Format(time.RFC3339)
	expireAt := t.ExpireAt
	if s.retention.FromResolution {
		expireAt = now.AddDate(0, 0, s.retention.Days).Unix()
	}

	if err := s.repo.SetStatus(ctx, categoryKey, id, model.TicketStatusResolved, resolvedAt, expireAt); err != nil {
		return model.TicketItem{}, newError(ErrorCodeInternal, "failed to resolve ticket", err)
	}

	t.Status = model.TicketStatusResolved
	t.ResolvedAt = resolvedAt
	t.ExpireAt = expireAt
	return t, nil
}

func (s *Service) Reopen(ctx context.Context, categoryKey, id string) (model.TicketItem, error) {
	t, err := s.Get(ctx, categoryKey, id)
	if err != nil {
		return model.TicketItem{}, err
	}

	expireAt := t.ExpireAt
	if s.retention.FromResolution {
		// A reopened ticket is live again; the resolution-anchored window
		// restarts on the next resolve.
		expireAt = 0
	}

	if err := s.repo.SetStatus(ctx, categoryKey, id, model.TicketStatusOpen, "", expireAt); err != nil {
		return model.TicketItem{}, newError(ErrorCodeInternal, "failed to reopen ticket", err)
	}

	t.Status = model.TicketStatusOpen
	t.ResolvedAt = ""
	t.ExpireAt = expireAt
	return t, nil
}

// Rate records a satisfaction score. Duplicate ratings for the same
// resolution are accepted and recorded as-is.
func (s *Service) Rate(ctx context.Context, ticketID string, userID int64, stars int) error {
	if stars < 1 || stars > 5 {
		return newError(ErrorCodeValidation, "stars must be between 1 and 5", nil)
	}
	rating := model.RatingItem{
		RatingID: uuid.NewString(),
		TicketID: ticketID,
		UserID:   userID,
		Stars:    stars,
		Time:     s.now().UTC().Format(time.RFC3339),
	}
	if err := s.repo.PutRating(ctx, rating); err != nil {
		return newError(ErrorCodeInternal, "failed to store rating", err)
	}
	return nil
}

func (s *Service) Ban(ctx context.Context, target, by int64) error {
	b := model.BannedUserItem{
		UserID:   target,
		BannedAt: s.now().UTC().Format(time.RFC3339),
		BannedBy: by,
	}
	if err := s.repo.BanUser(ctx, b); err != nil {
		return newError(ErrorCodeInternal, "failed to ban user", err)
	}
	return nil
}

func (s *Service) IsBanned(ctx context.Context, userID int64) (bool, error) {
	banned, err := s.repo.IsBanned(ctx, userID)
	if err != nil {
		return false, newError(ErrorCodeInternal, "failed to check ban list", err)
	}
	return banned, nil
}

// DeleteExpired removes tickets whose expiry passed. Best effort; partial
// progress is fine, the next sweep catches the rest.
func (s *Service) DeleteExpired(ctx context.Context) (int, error) {
	deleted, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, newError(ErrorCodeInternal, "expiry sweep failed", err)
	}
	return deleted, nil
}

// LogChannel reads the optional log-channel chat id from settings.
func (s *Service) LogChannel(ctx context.Context) (int64, bool) {
	setting, err := s.repo.GetSetting(ctx, model.SettingLogChannels)
	if err != nil {
		return 0, false
	}
	raw, ok := setting.Data["chat_id"]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
