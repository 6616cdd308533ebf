package model

import "fmt"

const (
	TicketsTable     = "Tickets"
	SettingsTable    = "Settings"
	BannedUsersTable = "BannedUsers"
	RatingsTable     = "Ratings"
)

const (
	SettingTicketCounter = "ticket_counter"
	SettingLogChannels   = "logs"
)

// TicketPK scopes a ticket id to its category partition.
func TicketPK(categoryKey, ticketID string) string {
	return fmt.Sprintf("%s#%s", categoryKey, ticketID)
}

type SettingsItem struct {
	SettingID string            `dynamodbav:"settingId"`
	Count     int64             `dynamodbav:"count,omitempty"`
	Data      map[string]string `dynamodbav:"data,omitempty"`
}

type BannedUserItem struct {
	UserID   int64  `dynamodbav:"userId"`
	BannedAt string `dynamodbav:"bannedAt"`
	BannedBy int64  `dynamodbav:"bannedBy"`
}

type RatingItem struct {
	RatingID string `dynamodbav:"ratingId"`
	TicketID string `dynamodbav:"ticketId"`
	UserID   int64  `dynamodbav:"userId"`
	Stars    int    `dynamodbav:"stars"`
	Time     string `dynamodbav:"time"`
}
