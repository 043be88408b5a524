package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrAmountMismatch = errors.New("amount mismatch")
)

// LineItem is a snapshot of one purchased product: name and price are
// resolved server-side at checkout time and frozen into the transaction,
// so later product edits never change what was sold.
type LineItem struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

// LineItemList stores []LineItem as a JSON column.
type LineItemList []LineItem

func (l LineItemList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *LineItemList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for LineItemList")
	}
}

type Transaction struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	LineItems      LineItemList                `gorm:"type:jsonb" json:"line_items"`
	UserID         uint                        `json:"user_id"`
	Amount         float64                     `json:"amount"`
	GatewayOrderID string                      `gorm:"uniqueIndex" json:"gateway_order_id"`
	CustomOrderID  *uint                       `json:"custom_order_id,omitempty"`
	IsPaid         bool                        `json:"is_paid"`
	Date           string                      `json:"date"`
	CustomerName   string                      `json:"customer_name"`
	CustomerEmail  string                      `json:"customer_email"`
	ZipLinks       datatypes.JSONSlice[string] `json:"zip_links"`
	CreatedAt      time.Time                   `json:"created_at"`
}

// NewGatewayOrderID returns the externally visible id sent to the payment
// provider. The timestamp prefix keeps ids sortable in the gateway dashboard.
func NewGatewayOrderID() string {
	return fmt.Sprintf("order_%d_%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}

type TransactionParams struct {
	LineItems     LineItemList
	UserID        uint
	Amount        float64
	VerifiedTotal float64
	CustomOrderID *uint
	Date          string
	CustomerName  string
	CustomerEmail string
	ZipLinks      []string
}

// NewTransaction builds a pending ledger record. The constructor refuses a
// non-positive amount and any disagreement between the client-submitted
// amount and the server-side recomputed total, so a record with a tampered
// amount can never be persisted.
func NewTransaction(p TransactionParams) (*Transaction, error) {
	if p.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if p.Amount != p.VerifiedTotal {
		return nil, ErrAmountMismatch
	}

	return &Transaction{
		LineItems:      p.LineItems,
		UserID:         p.UserID,
		Amount:         p.Amount,
		GatewayOrderID: NewGatewayOrderID(),
		CustomOrderID:  p.CustomOrderID,
		IsPaid:         false,
		Date:           p.Date,
		CustomerName:   p.CustomerName,
		CustomerEmail:  p.CustomerEmail,
		ZipLinks:       datatypes.NewJSONSlice(p.ZipLinks),
	}, nil
}
