package controller

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"embroidery-backend/kafka"
	"embroidery-backend/mailer"
	"embroidery-backend/model"
	"embroidery-backend/notify"
)

type CustomOrderController struct {
	DB         *gorm.DB
	Mailer     mailer.Mailer
	WhatsApp   *notify.WhatsApp
	Producer   *kafka.Producer
	AdminEmail string
}

func (cc *CustomOrderController) List(c *fiber.Ctx) error {
	q := cc.DB.Where("is_deleted = ?", false)
	if paid := c.Query("isPaid"); paid != "" {
		q = q.Where("is_paid = ?", paid == "true")
	}

	var orders []model.CustomOrder
	if err := q.Order("id DESC").Find(&orders).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "query failed"})
	}
	return c.JSON(fiber.Map{"customOrders": orders})
}

func (cc *CustomOrderController) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	var order model.CustomOrder
	if err := cc.DB.First(&order, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"message": "CustomOrder not found"})
	}
	return c.JSON(fiber.Map{"customOrder": order})
}

// Create persists the request and notifies the shop admin by mail and
// WhatsApp. Notification failures are logged, never surfaced: the order is
// already accepted.
func (cc *CustomOrderController) Create(c *fiber.Ctx) error {
	var in model.CustomOrder
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}
	in.ID = 0
	in.IsPaid = false
	in.IsDeleted = false
	in.CreatedAt = time.Now()
	if userID, ok := c.Locals("user_id").(uint); ok {
		in.UserID = userID
	}
	if in.Email == "" {
		if email, ok := c.Locals("user_email").(string); ok {
			in.Email = email
		}
	}

	if err := cc.DB.Create(&in).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "create failed"})
	}

	cc.notifyAdmin(&in)
	cc.Producer.PublishCustomOrderCreated(&in)

	return c.Status(201).JSON(fiber.Map{"customOrder": in})
}

func (cc *CustomOrderController) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	var order model.CustomOrder
	if err := cc.DB.First(&order, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"message": "CustomOrder not found"})
	}

	var in map[string]interface{}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}
	delete(in, "id")

	if err := cc.DB.Model(&order).Updates(in).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}
	if err := cc.DB.First(&order, id).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}
	return c.JSON(fiber.Map{"customOrder": order})
}

func (cc *CustomOrderController) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	var order model.CustomOrder
	if err := cc.DB.First(&order, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"message": "CustomOrder not found"})
	}

	if err := cc.DB.Model(&order).Update("is_deleted", true).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "delete failed"})
	}
	return c.SendStatus(204)
}

func (cc *CustomOrderController) notifyAdmin(o *model.CustomOrder) {
	if cc.Mailer != nil && cc.AdminEmail != "" {
		html, err := mailer.RenderAdminCustomOrderNotice(mailer.AdminCustomOrderNotice{
			Name:  o.Name,
			Phone: o.Phone,
			Email: o.Email,
		})
		if err == nil {
			err = cc.Mailer.Send(mailer.Message{
				To:      cc.AdminEmail,
				Subject: "New Custom Order found",
				HTML:    html,
			})
		}
		if err != nil {
			log.Printf("custom order admin mail failed: %v", err)
		}
	}

	if err := cc.WhatsApp.NotifyCustomOrder(o.Name, o.Phone, o.Email); err != nil {
		log.Printf("custom order whatsapp notify failed: %v", err)
	}
}
