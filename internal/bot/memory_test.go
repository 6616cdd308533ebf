package bot

import (
	"context"
	"sort"
	"sync"
	"time"

	"support-bot-backend/internal/model"
	"support-bot-backend/internal/service/ticket"
	"support-bot-backend/internal/view"
)

// memoryRepository backs the router tests; its conditional-append and
// counter semantics mirror the production store.
type memoryRepository struct {
	mu       sync.Mutex
	tickets  map[string]model.TicketItem
	counters map[string]int64
	banned   map[int64]model.BannedUserItem
	ratings  []model.RatingItem
	settings map[string]model.SettingsItem
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		tickets:  make(map[string]model.TicketItem),
		counters: make(map[string]int64),
		banned:   make(map[int64]model.BannedUserItem),
		settings: make(map[string]model.SettingsItem),
	}
}

func (m *memoryRepository) CreateTicket(_ context.Context, t model.TicketItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tickets[t.PK]; exists {
		return ticket.ErrDuplicateID
	}
	m.tickets[t.PK] = t
	return nil
}

func (m *memoryRepository) GetTicket(_ context.Context, categoryKey, id string) (model.TicketItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[model.TicketPK(categoryKey, id)]
	if !ok {
		return model.TicketItem{}, ticket.ErrNotFound
	}
	return t, nil
}

func (m *memoryRepository) ListTickets(_ context.Context, f ticket.Filter) ([]model.TicketItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TicketItem
	for _, t := range m.tickets {
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Owner != 0 && t.OwnerID != f.Owner {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.Triage && out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out, nil
}

func (m *memoryRepository) AppendReply(_ context.Context, categoryKey, id string, entry model.ReplyEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := model.TicketPK(categoryKey, id)
	t, ok := m.tickets[pk]
	if !ok {
		return ticket.ErrNotFound
	}
	if len(t.History) != entry.Index-1 {
		return ticket.ErrConflict
	}
	t.History = append(t.History, entry)
	m.tickets[pk] = t
	return nil
}

func (m *memoryRepository) SetStatus(_ context.Context, categoryKey, id string, status model.TicketStatus, resolvedAt string, expireAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := model.TicketPK(categoryKey, id)
	t, ok := m.tickets[pk]
	if !ok {
		return ticket.ErrNotFound
	}
	t.Status = status
	t.ResolvedAt = resolvedAt
	t.ExpireAt = expireAt
	m.tickets[pk] = t
	return nil
}

func (m *memoryRepository) DistinctOwners(_ context.Context, categoryKey string) ([]view.OwnerSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byOwner := map[int64]*view.OwnerSummary{}
	for _, t := range m.tickets {
		if categoryKey != "" && t.Category != categoryKey {
			continue
		}
		summary, ok := byOwner[t.OwnerID]
		if !ok {
			summary = &view.OwnerSummary{OwnerID: t.OwnerID}
			byOwner[t.OwnerID] = summary
		}
		summary.TicketCount++
		if t.CreatedAt > summary.LastTicketAt {
			summary.LastTicketAt = t.CreatedAt
		}
	}
	out := make([]view.OwnerSummary, 0, len(byOwner))
	for _, s := range byOwner {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastTicketAt > out[j].LastTicketAt })
	return out, nil
}

func (m *memoryRepository) AllocateSequence(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
	return m.counters[name], nil
}

func (m *memoryRepository) DeleteExpired(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := 0
	for pk, t := range m.tickets {
		if t.ExpireAt != 0 && t.ExpireAt <= cutoff.Unix() {
			delete(m.tickets, pk)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memoryRepository) BanUser(_ context.Context, b model.BannedUserItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.banned[b.UserID] = b
	return nil
}

func (m *memoryRepository) IsBanned(_ context.Context, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.banned[userID]
	return ok, nil
}

func (m *memoryRepository) PutRating(_ context.Context, r model.RatingItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings = append(m.ratings, r)
	return nil
}

func (m *memoryRepository) GetSetting(_ context.Context, settingID string) (model.SettingsItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[settingID]
	if !ok {
		return model.SettingsItem{}, ticket.ErrNotFound
	}
	return s, nil
}

func (m *memoryRepository) PutSetting(_ context.Context, s model.SettingsItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.SettingID] = s
	return nil
}
