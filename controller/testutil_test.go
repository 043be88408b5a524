package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"embroidery-backend/gateway"
	"embroidery-backend/mailer"
	"embroidery-backend/model"
)

// newTestDB opens a per-test in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.Transaction{},
		&model.CustomOrder{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, p model.Product) *model.Product {
	t.Helper()
	if p.PriceUpdateType == "" {
		p.PriceUpdateType = model.PriceUpdateNothing
	}
	if p.Slug == "" {
		p.Slug = strings.ToLower(strings.ReplaceAll(p.Name, " ", "-"))
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func patchJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("PATCH", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func requireDecode(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dest))
}

// MockGateway implements PaymentGateway for handler tests.
type MockGateway struct {
	Session    map[string]interface{}
	SessionErr error
	Order      *gateway.Order
	OrderErr   error

	SessionRequests []gateway.SessionRequest
	StatusRequests  []string
}

func (m *MockGateway) CreateOrderSession(_ context.Context, sr gateway.SessionRequest) (map[string]interface{}, error) {
	m.SessionRequests = append(m.SessionRequests, sr)
	if m.SessionErr != nil {
		return nil, m.SessionErr
	}
	if m.Session != nil {
		return m.Session, nil
	}
	return map[string]interface{}{
		"order_id":     sr.OrderID,
		"payment_link": "https://gateway.test/pay/" + sr.OrderID,
		"http":         map[string]interface{}{"status": "200"},
	}, nil
}

func (m *MockGateway) OrderStatus(_ context.Context, orderID string) (*gateway.Order, error) {
	m.StatusRequests = append(m.StatusRequests, orderID)
	if m.OrderErr != nil {
		return nil, m.OrderErr
	}
	return m.Order, nil
}

// MockMailer records sent messages.
type MockMailer struct {
	Sent []mailer.Message
	Err  error
}

func (m *MockMailer) Send(msg mailer.Message) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}
