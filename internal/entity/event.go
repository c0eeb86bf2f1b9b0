package entity

import (
	"time"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "DRAFT"
	EventStatusPublished EventStatus = "PUBLISHED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

type Event struct {
	ID          string      `json:"id" db:"id"`
	OrganizerID string      `json:"organizerId" db:"organizer_id"`
	Title       string      `json:"title" db:"title"`
	Slug        string      `json:"slug" db:"slug"`
	Description *string     `json:"description" db:"description"`
	Address     *string     `json:"venueAddress" db:"venue_address"`
	StartDate   *time.Time  `json:"startDate" db:"start_date"`
	EndDate     *time.Time  `json:"endDate" db:"end_date"`
	Timezone    *string     `json:"timezone" db:"timezone"`
	Status      EventStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// EventDraft is an event together with the related rows the wizard derives completeness from.
type EventDraft struct {
	Event
	Banners     []*EventBanner `json:"banners"`
	TicketTypes []*TicketType  `json:"ticketTypes"`
}

// EventDetails is the payload of the details step.
type EventDetails struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        *string   `json:"slug,omitempty"`
	Description *string   `json:"description,omitempty"`
	Address     string    `json:"venueAddress"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Timezone    string    `json:"timezone"`
}
