package controller

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"embroidery-backend/model"
)

// EffectivePrice applies a product's time-bounded price adjustment. At or
// after the validity cutoff the base price wins regardless of the
// adjustment kind.
func EffectivePrice(price float64, updateType string, pct float64, validUntil time.Time, now time.Time) float64 {
	if !now.Before(validUntil) {
		return price
	}

	switch updateType {
	case model.PriceUpdateEscalation:
		return price + price*pct/100
	case model.PriceUpdateReduction:
		return price - price*pct/100
	default:
		return price
	}
}

// ProductPrice resolves the price a product sells for right now. A freebie
// is zero before any adjustment applies.
func ProductPrice(p *model.Product, now time.Time) float64 {
	if p.IsFreebie {
		return 0
	}
	return EffectivePrice(p.Price, p.PriceUpdateType, p.PricePercentage, p.PriceValidityDate, now)
}

// ResolveLineItems looks up every submitted line item in the products table
// and returns priced snapshots plus their sum. Client-supplied prices are
// never trusted; each entry counts once (quantity is implicitly 1).
func ResolveLineItems(db *gorm.DB, items []model.LineItem, now time.Time) (model.LineItemList, float64, error) {
	resolved := make(model.LineItemList, 0, len(items))
	var total float64

	for _, item := range items {
		var p model.Product
		if err := db.First(&p, item.ProductID).Error; err != nil {
			return nil, 0, fmt.Errorf("product %d: %w", item.ProductID, err)
		}

		price := ProductPrice(&p, now)
		total += price
		resolved = append(resolved, model.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     price,
		})
	}

	return resolved, total, nil
}
