package domain

import "time"

const (
	TicketStatusOpen   = "open"
	TicketStatusClosed = "closed"
)

type SupportTicket struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
