package model

import (
	"time"

	"gorm.io/datatypes"
)

// Price adjustment kinds. A product carries at most one adjustment,
// active until PriceValidityDate.
const (
	PriceUpdateEscalation = "escalation"
	PriceUpdateReduction  = "reduction"
	PriceUpdateNothing    = "nothing"
)

type Product struct {
	ID                uint                        `gorm:"primaryKey" json:"id"`
	Name              string                      `json:"name"`
	Slug              string                      `gorm:"uniqueIndex" json:"slug"`
	Desc              string                      `json:"desc"`
	Category          string                      `gorm:"index" json:"category"`
	Tags              datatypes.JSONSlice[string] `json:"tags"`
	Price             float64                     `json:"price"`
	OriginalPrice     float64                     `json:"original_price"`
	Image             string                      `json:"image"`
	SubImages         datatypes.JSONSlice[string] `json:"sub_images"`
	Zip               string                      `json:"zip"`
	IsFreebie         bool                        `json:"is_freebie"`
	IsDeleted         bool                        `json:"is_deleted"`
	PriceUpdateType   string                      `json:"price_update_type"`
	PricePercentage   float64                     `json:"price_percentage"`
	PriceValidityDate time.Time                   `json:"price_validity_date"`
	RatingsAverage    float64                     `json:"ratings_average"`
	BuyersCount       int                         `json:"buyers_count"`
	CreatedAt         time.Time                   `json:"created_at"`
}
