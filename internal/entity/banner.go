package entity

import "time"

type EventBanner struct {
	ID        string    `json:"id" db:"id"`
	EventID   string    `json:"eventId" db:"event_id"`
	URL       string    `json:"url" db:"url"`
	Blurhash  *string   `json:"blurhash" db:"blurhash"`
	SortOrder int       `json:"sortOrder" db:"sort_order"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type PresignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	Filename  string `json:"filename"`
}

// OrphanedObject is published when a storage object could not be removed inline.
type OrphanedObject struct {
	Key        string    `json:"key"`
	EventID    string    `json:"eventId"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurredAt"`
}
