package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"embroidery-backend/gateway"
	"embroidery-backend/model"
)

func newPaymentApp(db *gorm.DB, gw *MockGateway, mm *MockMailer) (*fiber.App, *PaymentController) {
	pc := NewPaymentController(db, gw, mm, nil, PaymentConfig{
		PaymentPageClientID: "rg-embroidery",
		ReturnURL:           "https://app.test/api/payment/callback",
		OrderSuccessURL:     "https://shop.test/order-success",
	})
	pc.Now = func() time.Time { return now }

	app := fiber.New()
	app.Post("/api/payment/session", pc.CreateSession)
	app.Post("/api/payment/callback", pc.HandleCallback)
	app.Get("/api/payment/status/:id", pc.StatusByID)
	return app, pc
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func seedCartProducts(t *testing.T, db *gorm.DB) (p1, p2 *model.Product) {
	p1 = seedProduct(t, db, model.Product{Name: "Rose", Price: 40})
	p2 = seedProduct(t, db, model.Product{Name: "Peacock", Price: 60})
	return p1, p2
}

func sessionBody(p1, p2 *model.Product, total float64) map[string]interface{} {
	return map[string]interface{}{
		"totalAmount": total,
		"products": []map[string]interface{}{
			{"product_id": p1.ID},
			{"product_id": p2.ID},
		},
		"userId":       7,
		"date":         "2026-03-01",
		"customerName": "Asha",
		"email":        "asha@example.com",
		"zipLinks":     []string{"https://cdn.test/rose.zip", "https://cdn.test/peacock.zip"},
	}
}

func TestCreateSession_HappyPath(t *testing.T) {
	db := newTestDB(t)
	gw := &MockGateway{}
	app, _ := newPaymentApp(db, gw, &MockMailer{})
	p1, p2 := seedCartProducts(t, db)

	resp := postJSON(t, app, "/api/payment/session", sessionBody(p1, p2, 100))
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotContains(t, body, "http")
	assert.Contains(t, body, "payment_link")

	var tx model.Transaction
	require.NoError(t, db.First(&tx).Error)
	assert.Equal(t, 100.0, tx.Amount)
	assert.False(t, tx.IsPaid)
	assert.Equal(t, uint(7), tx.UserID)
	assert.Equal(t, "asha@example.com", tx.CustomerEmail)
	require.Len(t, tx.LineItems, 2)
	assert.Equal(t, "Rose", tx.LineItems[0].Name)
	assert.Equal(t, 40.0, tx.LineItems[0].Price)

	require.Len(t, gw.SessionRequests, 1)
	sr := gw.SessionRequests[0]
	assert.Equal(t, tx.GatewayOrderID, sr.OrderID)
	assert.Equal(t, 100.0, sr.Amount)
	assert.Equal(t, "rg-embroidery", sr.PaymentPageClientID)
	assert.Equal(t, "7", sr.CustomerID)
	assert.Equal(t, "paymentPage", sr.Action)
	assert.Equal(t, "USD", sr.Currency)
}

func TestCreateSession_NonPositiveAmountRejectedBeforeLookup(t *testing.T) {
	db := newTestDB(t)
	gw := &MockGateway{}
	app, _ := newPaymentApp(db, gw, &MockMailer{})

	resp := postJSON(t, app, "/api/payment/session", map[string]interface{}{
		"totalAmount": 0,
		"products":    []map[string]interface{}{{"product_id": 9999}},
	})
	assert.Equal(t, 400, resp.StatusCode)

	var count int64
	db.Model(&model.Transaction{}).Count(&count)
	assert.Zero(t, count)
	assert.Empty(t, gw.SessionRequests)
}

func TestCreateSession_TamperedTotalRejected(t *testing.T) {
	db := newTestDB(t)
	gw := &MockGateway{}
	app, _ := newPaymentApp(db, gw, &MockMailer{})
	p1, p2 := seedCartProducts(t, db)

	// recomputed total is 100, client claims 90
	resp := postJSON(t, app, "/api/payment/session", sessionBody(p1, p2, 90))
	assert.Equal(t, 400, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["message"], "tampering")

	var count int64
	db.Model(&model.Transaction{}).Count(&count)
	assert.Zero(t, count)
	assert.Empty(t, gw.SessionRequests)
}

func TestCreateSession_FreebiePricedZero(t *testing.T) {
	db := newTestDB(t)
	gw := &MockGateway{}
	app, _ := newPaymentApp(db, gw, &MockMailer{})

	paid := seedProduct(t, db, model.Product{Name: "Rose", Price: 40})
	free := seedProduct(t, db, model.Product{Name: "Sampler", Price: 25, IsFreebie: true})

	resp := postJSON(t, app, "/api/payment/session", sessionBody(paid, free, 40))
	assert.Equal(t, 200, resp.StatusCode)
}

func TestCreateSession_UnknownProduct(t *testing.T) {
	db := newTestDB(t)
	app, _ := newPaymentApp(db, &MockGateway{}, &MockMailer{})

	resp := postJSON(t, app, "/api/payment/session", map[string]interface{}{
		"totalAmount": 50,
		"products":    []map[string]interface{}{{"product_id": 9999}},
	})
	assert.Equal(t, 404, resp.StatusCode)
}

func TestCreateSession_GatewayAPIErrorPassedThrough(t *testing.T) {
	db := newTestDB(t)
	gw := &MockGateway{SessionErr: &gateway.APIError{Message: "merchant not configured"}}
	app, _ := newPaymentApp(db, gw, &MockMailer{})
	p1, p2 := seedCartProducts(t, db)

	resp := postJSON(t, app, "/api/payment/session", sessionBody(p1, p2, 100))
	assert.Equal(t, 502, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "merchant not configured", body["message"])
}

func TestCreateSession_InlinePaidCustomOrder(t *testing.T) {
	db := newTestDB(t)
	app, _ := newPaymentApp(db, &MockGateway{}, &MockMailer{})

	order := model.CustomOrder{Name: "Asha", Email: "asha@example.com", Price: 40}
	require.NoError(t, db.Create(&order).Error)
	p := seedProduct(t, db, model.Product{Name: "Custom design", Price: 40})

	body := sessionBody(p, p, 80)
	body["customOrder"] = order.ID
	body["isPaid"] = true

	resp := postJSON(t, app, "/api/payment/session", body)
	require.Equal(t, 200, resp.StatusCode)

	require.NoError(t, db.First(&order, order.ID).Error)
	assert.True(t, order.IsPaid)
}

func seedTransaction(t *testing.T, db *gorm.DB, customOrderID *uint) *model.Transaction {
	t.Helper()
	tx, err := model.NewTransaction(model.TransactionParams{
		LineItems:     model.LineItemList{{ProductID: 1, Name: "Rose", Price: 40}, {ProductID: 2, Name: "Peacock", Price: 60}},
		UserID:        7,
		Amount:        100,
		VerifiedTotal: 100,
		CustomOrderID: customOrderID,
		Date:          "2026-03-01",
		CustomerName:  "Asha",
		CustomerEmail: "asha@example.com",
		ZipLinks:      []string{"https://cdn.test/rose.zip"},
	})
	require.NoError(t, err)
	require.NoError(t, db.Create(tx).Error)
	return tx
}

func TestHandleCallback_ChargedSettlesOnce(t *testing.T) {
	db := newTestDB(t)
	order := model.CustomOrder{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, db.Create(&order).Error)

	tx := seedTransaction(t, db, &order.ID)
	gw := &MockGateway{Order: &gateway.Order{OrderID: tx.GatewayOrderID, Status: gateway.StatusCharged, Amount: 100}}
	mm := &MockMailer{}
	app, _ := newPaymentApp(db, gw, mm)

	resp := postJSON(t, app, "/api/payment/callback", map[string]interface{}{"order_id": tx.GatewayOrderID})
	require.Equal(t, 302, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("https://shop.test/order-success/%d", tx.ID), resp.Header.Get("Location"))

	var stored model.Transaction
	require.NoError(t, db.First(&stored, tx.ID).Error)
	assert.True(t, stored.IsPaid)

	require.NoError(t, db.First(&order, order.ID).Error)
	assert.True(t, order.IsPaid)

	require.Len(t, mm.Sent, 1)
	msg := mm.Sent[0]
	assert.Equal(t, "asha@example.com", msg.To)
	assert.Equal(t, "Order Summary", msg.Subject)
	assert.Contains(t, msg.HTML, "Rose")
	assert.Contains(t, msg.HTML, tx.GatewayOrderID)
	assert.NotEmpty(t, msg.Attachment)
	assert.Equal(t, fmt.Sprintf("order_receipt_%s.pdf", tx.GatewayOrderID), msg.AttachmentName)
}

func TestHandleCallback_DuplicateChargedIsNoOp(t *testing.T) {
	db := newTestDB(t)
	tx := seedTransaction(t, db, nil)
	gw := &MockGateway{Order: &gateway.Order{OrderID: tx.GatewayOrderID, Status: gateway.StatusCharged, Amount: 100}}
	mm := &MockMailer{}
	app, _ := newPaymentApp(db, gw, mm)

	for i := 0; i < 2; i++ {
		resp := postJSON(t, app, "/api/payment/callback", map[string]interface{}{"order_id": tx.GatewayOrderID})
		require.Equal(t, 302, resp.StatusCode)
	}

	// the gateway retried, but only one settlement happened
	assert.Len(t, mm.Sent, 1)
}

func TestHandleCallback_AmountMismatchAbortsBeforeMutation(t *testing.T) {
	db := newTestDB(t)
	tx := seedTransaction(t, db, nil)
	gw := &MockGateway{Order: &gateway.Order{OrderID: tx.GatewayOrderID, Status: gateway.StatusCharged, Amount: 55}}
	mm := &MockMailer{}
	app, _ := newPaymentApp(db, gw, mm)

	resp := postJSON(t, app, "/api/payment/callback", map[string]interface{}{"order_id": tx.GatewayOrderID})
	assert.Equal(t, 400, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Amount mismatch detected", body["message"])

	var stored model.Transaction
	require.NoError(t, db.First(&stored, tx.ID).Error)
	assert.False(t, stored.IsPaid)
	assert.Empty(t, mm.Sent)
}

func TestHandleCallback_UnknownOrderID(t *testing.T) {
	db := newTestDB(t)
	app, _ := newPaymentApp(db, &MockGateway{}, &MockMailer{})

	resp := postJSON(t, app, "/api/payment/callback", map[string]interface{}{"order_id": "order_missing"})
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "", resp.Header.Get("Location"))
}

func TestHandleCallback_MissingOrderID(t *testing.T) {
	db := newTestDB(t)
	app, _ := newPaymentApp(db, &MockGateway{}, &MockMailer{})

	resp := postJSON(t, app, "/api/payment/callback", map[string]interface{}{})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleCallback_AcceptsAlternateFieldName(t *testing.T) {
	db := newTestDB(t)
	tx := seedTransaction(t, db, nil)
	gw := &MockGateway{Order: &gateway.Order{OrderID: tx.GatewayOrderID, Status: gateway.StatusPending, Amount: 100}}
	app, _ := newPaymentApp(db, gw, &MockMailer{})

	resp := postJSON(t, app, "/api/payment/callback", map[string]interface{}{"orderId": tx.GatewayOrderID})
	assert.Equal(t, 302, resp.StatusCode)
	require.Len(t, gw.StatusRequests, 1)
	assert.Equal(t, tx.GatewayOrderID, gw.StatusRequests[0])
}

func TestHandleCallback_NonChargedStatusesDoNotMutate(t *testing.T) {
	for _, status := range []gateway.OrderStatus{
		gateway.StatusPending,
		gateway.StatusPendingVBV,
		gateway.StatusAuthorizationFailed,
		gateway.StatusAuthenticationFailed,
		"NEW",
	} {
		t.Run(string(status), func(t *testing.T) {
			db := newTestDB(t)
			tx := seedTransaction(t, db, nil)
			gw := &MockGateway{Order: &gateway.Order{OrderID: tx.GatewayOrderID, Status: status, Amount: 100}}
			mm := &MockMailer{}
			app, _ := newPaymentApp(db, gw, mm)

			resp := postJSON(t, app, "/api/payment/callback", map[string]interface{}{"order_id": tx.GatewayOrderID})
			assert.Equal(t, 302, resp.StatusCode)

			var stored model.Transaction
			require.NoError(t, db.First(&stored, tx.ID).Error)
			assert.False(t, stored.IsPaid)
			assert.Empty(t, mm.Sent)
		})
	}
}

func TestHandleCallback_StatusTimeoutReportsPending(t *testing.T) {
	db := newTestDB(t)
	tx := seedTransaction(t, db, nil)
	gw := &MockGateway{OrderErr: context.DeadlineExceeded}
	app, _ := newPaymentApp(db, gw, &MockMailer{})

	resp := postJSON(t, app, "/api/payment/callback", map[string]interface{}{"order_id": tx.GatewayOrderID})
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "order payment pending", body["message"])
}

func TestStatusByID_ReadOnly(t *testing.T) {
	db := newTestDB(t)
	tx := seedTransaction(t, db, nil)
	gw := &MockGateway{Order: &gateway.Order{OrderID: tx.GatewayOrderID, Status: gateway.StatusCharged, Amount: 100}}
	mm := &MockMailer{}
	app, _ := newPaymentApp(db, gw, mm)

	req := httptest.NewRequest("GET", fmt.Sprintf("/api/payment/status/%d", tx.ID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "CHARGED", body["status"])
	assert.Equal(t, "order payment done successfully", body["message"])
	assert.Contains(t, body, "orderDetails")

	// polling never settles
	var stored model.Transaction
	require.NoError(t, db.First(&stored, tx.ID).Error)
	assert.False(t, stored.IsPaid)
	assert.Empty(t, mm.Sent)
}

func TestStatusByID_UnknownTransaction(t *testing.T) {
	db := newTestDB(t)
	app, _ := newPaymentApp(db, &MockGateway{}, &MockMailer{})

	req := httptest.NewRequest("GET", "/api/payment/status/424242", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}
