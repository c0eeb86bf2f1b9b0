package entity

import "time"

type TicketType struct {
	ID             string     `json:"id" db:"id"`
	EventID        string     `json:"eventId" db:"event_id"`
	Name           string     `json:"name" db:"name"`
	Description    *string    `json:"description" db:"description"`
	Price          int64      `json:"price" db:"price"` // kobo
	Quantity       int        `json:"quantity" db:"quantity"`
	SoldCount      int        `json:"soldCount" db:"sold_count"`
	SalesStartDate *time.Time `json:"salesStartDate" db:"sales_start_date"`
	SalesEndDate   *time.Time `json:"salesEndDate" db:"sales_end_date"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
}
