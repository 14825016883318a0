package domain

import "time"

type Wishlist struct {
	UserID     string    `json:"userId"`
	ProductIDs []string  `json:"productIds"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
