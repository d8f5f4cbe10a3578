package models

import "github.com/google/uuid"

// Guest usage counters. Guests are tracked by both a client-minted UUID and
// the request IP so clearing cookies does not reset the allowance.
type GuestChatTracker struct {
	GuestID uuid.UUID `json:"guest_id"`
	Count   int       `json:"count"`
}

type GuestIPTracker struct {
	IPAddress string `json:"ip_address"`
	Count     int    `json:"count"`
}
