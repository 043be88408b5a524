package model

import "time"

// CustomOrder is a request for a made-to-order embroidery design. It is
// flipped to paid when its linked Transaction settles.
type CustomOrder struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Desc      string    `json:"desc"`
	Image     string    `json:"image"`
	Zip       string    `json:"zip"`
	Price     float64   `json:"price"`
	IsPaid    bool      `json:"is_paid"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
}
