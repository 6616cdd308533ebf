package ticket

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"support-bot-backend/internal/database"
	"support-bot-backend/internal/model"
	"support-bot-backend/internal/view"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	ErrNotFound    = errors.New("ticket repository: not found")
	ErrDuplicateID = errors.New("ticket repository: duplicate id")
	// ErrConflict means a conditional append lost its race; callers re-read
	// and retry.
	ErrConflict = errors.New("ticket repository: write conflict")
)

// Filter narrows and orders a ticket listing. Triage switches to the admin
// sort (priority weight ascending, then newest first); the plain sort is
// newest first.
type Filter struct {
	Category string
	Status   model.TicketStatus
	Owner    int64
	Triage   bool
}

type Repository interface {
	CreateTicket(ctx context.Context, t model.TicketItem) error
	GetTicket(ctx context.Context, categoryKey, id string) (model.TicketItem, error)
	ListTickets(ctx context.Context, f Filter) ([]model.TicketItem, error)
	// AppendReply appends entry only while the history still has exactly
	// entry.Index-1 elements, keeping indices contiguous under concurrent
	// writers.
	AppendReply(ctx context.Context, categoryKey, id string, entry model.ReplyEntry) error
	SetStatus(ctx context.Context, categoryKey, id string, status model.TicketStatus, resolvedAt string, expireAt int64) error
	DistinctOwners(ctx context.Context, categoryKey string) ([]view.OwnerSummary, error)
	AllocateSequence(ctx context.Context, name string) (int64, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
	BanUser(ctx context.Context, b model.BannedUserItem) error
	IsBanned(ctx context.Context, userID int64) (bool, error)
	PutRating(ctx context.Context, r model.RatingItem) error
	GetSetting(ctx context.Context, settingID string) (model.SettingsItem, error)
	PutSetting(ctx context.Context, s model.SettingsItem) error
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func ticketKey(categoryKey, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: model.TicketPK(categoryKey, id)},
	}
}

func (r *DynamoRepository) CreateTicket(ctx context.Context, t model.TicketItem) error {
	err := r.db.Client.PutItemIfAbsent(ctx, model.TicketsTable, t, "pk")
	if errors.Is(err, database.ErrConditionFailed) {
		return ErrDuplicateID
	}
	return err
}

func (r *DynamoRepository) GetTicket(ctx context.Context, categoryKey, id string) (model.TicketItem, error) {
	var t model.TicketItem
	err := r.db.Client.GetItem(ctx, model.TicketsTable, ticketKey(categoryKey, id), &t)
	if err != nil {
		if isNotFound(err) {
			return model.TicketItem{}, ErrNotFound
		}
		return model.TicketItem{}, err
	}
	return t, nil
}

func (r *DynamoRepository) ListTickets(ctx context.Context, f Filter) ([]model.TicketItem, error) {
	items, err := r.rawTickets(ctx, f.Category)
	if err != nil {
		return nil, err
	}

	tickets := make([]model.TicketItem, 0, len(items))
	for _, item := range items {
		var t model.TicketItem
		if err := attributevalue.UnmarshalMap(item, &t); err != nil {
			return nil, err
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Owner != 0 && t.OwnerID != f.Owner {
			continue
		}
		tickets = append(tickets, t)
	}

	sortTickets(tickets, f.Triage)
	return tickets, nil
}

func (r *DynamoRepository) AppendReply(ctx context.Context, categoryKey, id string, entry model.ReplyEntry) error {
	av, err := attributevalue.Marshal(entry)
	if err != nil {
		return err
	}

	expected := entry.Index - 1
	cond := "size(#h) = :n"
	if expected == 0 {
		cond = "(attribute_not_exists(#h) OR size(#h) = :n)"
	}

	err = r.db.Client.UpdateItemConditional(
		ctx,
		model.TicketsTable,
		ticketKey(categoryKey, id),
		"SET #h = list_append(if_not_exists(#h, :empty), :entry)",
		cond,
		map[string]types.AttributeValue{
			":entry": &types.AttributeValueMemberL{Value: []types.AttributeValue{av}},
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":n":     &types.AttributeValueMemberN{Value: strconv.Itoa(expected)},
		},
		map[string]string{
			"#h": "history",
		},
	)
	if errors.Is(err, database.ErrConditionFailed) {
		return ErrConflict
	}
	return err
}

func (r *DynamoRepository) SetStatus(ctx context.Context, categoryKey, id string, status model.TicketStatus, resolvedAt string, expireAt int64) error {
	return r.db.Client.UpdateItem(
		ctx,
		model.TicketsTable,
		ticketKey(categoryKey, id),
		"SET #s = :status, #r = :resolvedAt, #e = :expireAt",
		map[string]types.AttributeValue{
			":status":     &types.AttributeValueMemberS{Value: string(status)},
			":resolvedAt": &types.AttributeValueMemberS{Value: resolvedAt},
			":expireAt":   &types.AttributeValueMemberN{Value: strconv.FormatInt(expireAt, 10)},
		},
		map[string]string{
			"#s": "status",
			"#r": "resolvedAt",
			"#e": "expireAt",
		},
		nil,
	)
}

func (r *DynamoRepository) DistinctOwners(ctx context.Context, categoryKey string) ([]view.OwnerSummary, error) {
	items, err := r.rawTickets(ctx, categoryKey)
	if err != nil {
		return nil, err
	}

	byOwner := map[int64]*view.OwnerSummary{}
	for _, item := range items {
		var t model.TicketItem
		if err := attributevalue.UnmarshalMap(item, &t); err != nil {
			return nil, err
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

	owners := make([]view.OwnerSummary, 0, len(byOwner))
	for _, summary := range byOwner {
		owners = append(owners, *summary)
	}
	sort.Slice(owners, func(i, j int) bool {
		return owners[i].LastTicketAt > owners[j].LastTicketAt
	})
	return owners, nil
}

func (r *DynamoRepository) AllocateSequence(ctx context.Context, name string) (int64, error) {
	return r.db.Client.AddToCounter(
		ctx,
		model.SettingsTable,
		map[string]types.AttributeValue{
			"settingId": &types.AttributeValueMemberS{Value: name},
		},
		"count",
	)
}

func (r *DynamoRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	items, err := r.db.Client.ScanItems(
		ctx,
		model.TicketsTable,
		"attribute_exists(#e) AND #e <> :zero AND #e <= :cutoff",
		map[string]types.AttributeValue{
			":cutoff": &types.AttributeValueMemberN{Value: strconv.FormatInt(cutoff.Unix(), 10)},
			":zero":   &types.AttributeValueMemberN{Value: "0"},
		},
		map[string]string{
			"#e": "expireAt",
		},
	)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, item := range items {
		var t model.TicketItem
		if err := attributevalue.UnmarshalMap(item, &t); err != nil {
			continue
		}
		if err := r.db.Client.DeleteItem(ctx, model.TicketsTable, map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: t.PK},
		}); err != nil {
			continue
		}
		deleted++
	}
	return deleted, nil
}

func (r *DynamoRepository) BanUser(ctx context.Context, b model.BannedUserItem) error {
	return r.db.Client.PutItem(ctx, model.BannedUsersTable, b)
}

func (r *DynamoRepository) IsBanned(ctx context.Context, userID int64) (bool, error) {
	var b model.BannedUserItem
	err := r.db.Client.GetItem(ctx, model.BannedUsersTable, map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberN{Value: strconv.FormatInt(userID, 10)},
	}, &b)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *DynamoRepository) PutRating(ctx context.Context, rating model.RatingItem) error {
	return r.db.Client.PutItem(ctx, model.RatingsTable, rating)
}

func (r *DynamoRepository) GetSetting(ctx context.Context, settingID string) (model.SettingsItem, error) {
	var s model.SettingsItem
	err := r.db.Client.GetItem(ctx, model.SettingsTable, map[string]types.AttributeValue{
		"settingId": &types.AttributeValueMemberS{Value: settingID},
	}, &s)
	if err != nil {
		if isNotFound(err) {
			return model.SettingsItem{}, ErrNotFound
		}
		return model.SettingsItem{}, err
	}
	return s, nil
}

func (r *DynamoRepository) PutSetting(ctx context.Context, s model.SettingsItem) error {
	return r.db.Client.PutItem(ctx, model.SettingsTable, s)
}

// rawTickets queries the byCategory index and falls back to a table scan
// when the index is not provisioned.
func (r *DynamoRepository) rawTickets(ctx context.Context, categoryKey string) ([]map[string]types.AttributeValue, error) {
	if categoryKey == "" {
		return r.db.Client.ScanItems(ctx, model.TicketsTable, "", nil, nil)
	}

	items, err := r.db.Client.QueryItems(
		ctx,
		model.TicketsTable,
		aws.String("byCategory"),
		"category = :category",
		map[string]types.AttributeValue{
			":category": &types.AttributeValueMemberS{Value: categoryKey},
		},
		nil,
		nil,
	)
	if err == nil {
		return items, nil
	}
	if !isIndexNotFound(err) {
		return nil, err
	}

	return r.db.Client.ScanItems(
		ctx,
		model.TicketsTable,
		"category = :category",
		map[string]types.AttributeValue{
			":category": &types.AttributeValueMemberS{Value: categoryKey},
		},
		nil,
	)
}

func sortTickets(tickets []model.TicketItem, triage bool) {
	sort.Slice(tickets, func(i, j int) bool {
		if triage && tickets[i].Priority != tickets[j].Priority {
			return tickets[i].Priority < tickets[j].Priority
		}
		return tickets[i].CreatedAt > tickets[j].CreatedAt
	})
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "item not found")
}

func isIndexNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "index") && strings.Contains(msg, "not") && strings.Contains(msg, "found")
}
