package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"embroidery-backend/gateway"
	"embroidery-backend/kafka"
	"embroidery-backend/mailer"
	"embroidery-backend/model"
	"embroidery-backend/receipt"
)

// PaymentGateway is the slice of the gateway client the payment flow needs.
type PaymentGateway interface {
	CreateOrderSession(ctx context.Context, sr gateway.SessionRequest) (map[string]interface{}, error)
	OrderStatus(ctx context.Context, orderID string) (*gateway.Order, error)
}

type PaymentConfig struct {
	PaymentPageClientID string
	ReturnURL           string
	OrderSuccessURL     string
}

type PaymentController struct {
	DB       *gorm.DB
	Gateway  PaymentGateway
	Mailer   mailer.Mailer
	Producer *kafka.Producer
	Config   PaymentConfig

	// Now is swappable so pricing cutoffs are testable.
	Now func() time.Time
}

func NewPaymentController(db *gorm.DB, gw PaymentGateway, m mailer.Mailer, prod *kafka.Producer, cfg PaymentConfig) *PaymentController {
	return &PaymentController{
		DB:       db,
		Gateway:  gw,
		Mailer:   m,
		Producer: prod,
		Config:   cfg,
		Now:      time.Now,
	}
}

const gatewayTimeout = 30 * time.Second

type sessionRequest struct {
	TotalAmount  float64            `json:"totalAmount"`
	Products     model.LineItemList `json:"products"`
	UserID       uint               `json:"userId"`
	CustomOrder  *uint              `json:"customOrder"`
	IsPaid       bool               `json:"isPaid"`
	Date         string             `json:"date"`
	CustomerName string             `json:"customerName"`
	Email        string             `json:"email"`
	ZipLinks     []string           `json:"zipLinks"`
}

// CreateSession verifies the submitted cart against store-of-record pricing,
// persists a pending transaction and opens a hosted payment page session.
func (pc *PaymentController) CreateSession(c *fiber.Ctx) error {
	var body sessionRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}

	if body.TotalAmount <= 0 {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid amount"})
	}

	now := pc.Now()
	lineItems, total, err := ResolveLineItems(pc.DB, body.Products, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"message": "product not found"})
		}
		return c.Status(500).JSON(fiber.Map{"message": "Something went wrong"})
	}

	if total != body.TotalAmount {
		return c.Status(400).JSON(fiber.Map{"message": "Amount mismatch, potential tampering detected."})
	}

	tx, err := model.NewTransaction(model.TransactionParams{
		LineItems:     lineItems,
		UserID:        body.UserID,
		Amount:        body.TotalAmount,
		VerifiedTotal: total,
		CustomOrderID: body.CustomOrder,
		Date:          body.Date,
		CustomerName:  body.CustomerName,
		CustomerEmail: body.Email,
		ZipLinks:      body.ZipLinks,
	})
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Amount tampered"})
	}

	if err := pc.DB.Create(tx).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"message": "Something went wrong"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), gatewayTimeout)
	defer cancel()

	session, err := pc.Gateway.CreateOrderSession(ctx, gateway.SessionRequest{
		OrderID:             tx.GatewayOrderID,
		Amount:              tx.Amount,
		PaymentPageClientID: pc.Config.PaymentPageClientID,
		CustomerID:          strconv.FormatUint(uint64(body.UserID), 10),
		Action:              "paymentPage",
		ReturnURL:           pc.Config.ReturnURL,
		Currency:            "USD",
	})
	if err != nil {
		return pc.gatewayError(c, err)
	}

	// Caller-asserted already-paid path, distinct from the async callback.
	if body.CustomOrder != nil && body.IsPaid {
		if err := pc.DB.Model(&model.CustomOrder{}).
			Where("id = ?", *body.CustomOrder).
			Update("is_paid", true).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"message": "Something went wrong"})
		}
	}

	delete(session, "http")
	return c.JSON(session)
}

type callbackRequest struct {
	OrderID    string `json:"order_id" form:"order_id"`
	OrderIDAlt string `json:"orderId" form:"orderId"`
}

// HandleCallback is the gateway's return/webhook target. It re-queries the
// live order status, reconciles the amount against the ledger and settles
// on CHARGED. Everything that passed the precondition checks redirects to
// the storefront's success page.
func (pc *PaymentController) HandleCallback(c *fiber.Ctx) error {
	var body callbackRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}

	orderID := body.OrderID
	if orderID == "" {
		orderID = body.OrderIDAlt
	}
	if orderID == "" {
		return c.Status(400).JSON(fiber.Map{"message": "order_id not present or cannot be empty"})
	}

	var tx model.Transaction
	if err := pc.DB.Where("gateway_order_id = ?", orderID).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"message": "Transaction not found"})
		}
		return c.Status(500).JSON(fiber.Map{"message": "Something went wrong"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), gatewayTimeout)
	defer cancel()

	order, err := pc.Gateway.OrderStatus(ctx, orderID)
	if err != nil {
		// The gateway retries its notification, so a slow status query is
		// reported as pending instead of failing the callback.
		if errors.Is(err, context.DeadlineExceeded) {
			return c.JSON(fiber.Map{"message": "order payment pending"})
		}
		return pc.gatewayError(c, err)
	}

	if order.Amount != tx.Amount {
		return c.Status(400).JSON(fiber.Map{"message": "Amount mismatch detected"})
	}

	if order.Status == gateway.StatusCharged {
		if err := pc.settle(&tx); err != nil {
			return c.Status(500).JSON(fiber.Map{"message": "Something went wrong"})
		}
	}

	return c.Redirect(fmt.Sprintf("%s/%d", pc.Config.OrderSuccessURL, tx.ID), fiber.StatusFound)
}

// StatusByID is the read-only polling twin of the callback: same status
// mapping, no mutation, no redirect.
func (pc *PaymentController) StatusByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	var tx model.Transaction
	if err := pc.DB.First(&tx, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"message": "Transaction not found"})
		}
		return c.Status(500).JSON(fiber.Map{"message": "Something went wrong"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), gatewayTimeout)
	defer cancel()

	order, err := pc.Gateway.OrderStatus(ctx, tx.GatewayOrderID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return c.JSON(fiber.Map{"message": "order payment pending"})
		}
		return pc.gatewayError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":       order.Status,
		"orderDetails": tx,
		"message":      statusMessage(order.Status),
	})
}

// settle marks the transaction and any linked custom order paid in one
// database transaction, then fires the side effects. The conditional update
// makes a second CHARGED delivery a no-op: no second receipt, no second mail.
func (pc *PaymentController) settle(tx *model.Transaction) error {
	var settled bool
	err := pc.DB.Transaction(func(dbtx *gorm.DB) error {
		res := dbtx.Model(&model.Transaction{}).
			Where("gateway_order_id = ? AND is_paid = ?", tx.GatewayOrderID, false).
			Update("is_paid", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		settled = true

		if tx.CustomOrderID != nil {
			return dbtx.Model(&model.CustomOrder{}).
				Where("id = ?", *tx.CustomOrderID).
				Update("is_paid", true).Error
		}
		return nil
	})
	if err != nil || !settled {
		return err
	}
	tx.IsPaid = true

	pc.Producer.PublishOrderPaid(tx)

	pdfBytes, err := receipt.Generate(receipt.Details{
		OrderID:      tx.GatewayOrderID,
		Amount:       tx.Amount,
		LineItems:    tx.LineItems,
		CustomerName: tx.CustomerName,
		ZipLinks:     tx.ZipLinks,
	})
	if err != nil {
		return err
	}

	html, err := mailer.RenderOrderSummary(mailer.OrderSummary{
		CustomerName: tx.CustomerName,
		Products:     tx.LineItems,
		TotalAmount:  tx.Amount,
		ZipLinks:     tx.ZipLinks,
		Date:         tx.Date,
		OrderID:      tx.GatewayOrderID,
	})
	if err != nil {
		return err
	}

	if pc.Mailer != nil {
		return pc.Mailer.Send(mailer.Message{
			To:             tx.CustomerEmail,
			Subject:        "Order Summary",
			HTML:           html,
			Attachment:     pdfBytes,
			AttachmentName: fmt.Sprintf("order_receipt_%s.pdf", tx.GatewayOrderID),
		})
	}
	return nil
}

func (pc *PaymentController) gatewayError(c *fiber.Ctx, err error) error {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return c.Status(502).JSON(fiber.Map{"message": apiErr.Message})
	}
	log.Printf("gateway call failed: %v", err)
	return c.Status(500).JSON(fiber.Map{"message": "Something went wrong"})
}

func statusMessage(s gateway.OrderStatus) string {
	switch s {
	case gateway.StatusCharged:
		return "order payment done successfully"
	case gateway.StatusPending, gateway.StatusPendingVBV:
		return "order payment pending"
	case gateway.StatusAuthorizationFailed:
		return "order payment authorization failed"
	case gateway.StatusAuthenticationFailed:
		return "order payment authentication failed"
	default:
		return "order status " + string(s)
	}
}
