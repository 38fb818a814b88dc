package models

// ShopItem is a point-shop product (swag, raffle tickets, snacks).
type ShopItem struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	Cost        int64  `json:"cost" gorm:"not null"`
	Stock       int    `json:"stock" gorm:"default:0"`
	Published   bool   `json:"published" gorm:"default:false"`

	Timestamps
}

// Purchase records a single redemption of a shop item by an attendee.
type Purchase struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ItemID         string `gorm:"index;not null" json:"item_id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`
	Cost           int64  `json:"cost"`

	Timestamps
}
