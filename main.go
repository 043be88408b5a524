package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"embroidery-backend/cache"
	"embroidery-backend/config"
	"embroidery-backend/controller"
	"embroidery-backend/gateway"
	"embroidery-backend/kafka"
	"embroidery-backend/mailer"
	"embroidery-backend/middleware"
	"embroidery-backend/model"
	"embroidery-backend/notify"
	"embroidery-backend/routes"
	"embroidery-backend/search"
)

func initDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect db:", err)
	}

	if err := db.AutoMigrate(
		&model.Product{},
		&model.Transaction{},
		&model.CustomOrder{},
	); err != nil {
		log.Fatal(err)
	}

	return db
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db := initDB(cfg)
	rdb := cache.Connect(cfg.RedisAddr)
	producer := kafka.NewProducer(cfg.KafkaBroker)
	defer producer.Close()
	esIndex := search.New(cfg.ElasticURL)

	juspay := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayMerchantID, cfg.GatewayAPIKey)

	var smtp mailer.Mailer
	if cfg.SMTPHost != "" {
		smtp = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	}

	whatsapp := notify.NewWhatsApp(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.WhatsAppFrom, cfg.WhatsAppAdminTo)

	productController := &controller.ProductController{
		DB:     db,
		Redis:  rdb,
		Search: esIndex,
	}
	customOrderController := &controller.CustomOrderController{
		DB:         db,
		Mailer:     smtp,
		WhatsApp:   whatsapp,
		Producer:   producer,
		AdminEmail: cfg.AdminEmail,
	}
	paymentController := controller.NewPaymentController(db, juspay, smtp, producer, controller.PaymentConfig{
		PaymentPageClientID: cfg.PaymentPageClientID,
		ReturnURL:           cfg.ReturnURL,
		OrderSuccessURL:     cfg.OrderSuccessURL,
	})

	app := fiber.New()
	app.Use(logger.New())

	auth := middleware.AuthRequired(cfg.JWTSecret)
	routes.RegisterProductRoutes(app, productController, auth)
	routes.RegisterCustomOrderRoutes(app, customOrderController, auth)
	routes.RegisterPaymentRoutes(app, paymentController)

	log.Printf("HTTP server running on port %s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatal("fiber error:", err)
	}
}
