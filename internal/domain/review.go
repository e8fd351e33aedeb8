package domain

import "time"

type Review struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"-"`
	UserID    int64     `json:"-"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Reviewer  string    `json:"reviewer"`
	CreatedAt time.Time `json:"created_at"`
}
