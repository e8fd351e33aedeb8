package domain

import "time"

type Favorite struct {
	UserID    int64     `json:"-"`
	ProductID int64     `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
	Product   *Product  `json:"product,omitempty"`
}
