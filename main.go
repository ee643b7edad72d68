package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"optimarket/config"
	"optimarket/consumers"
	"optimarket/controllers"
	"optimarket/database"
	"optimarket/geocoder"
	"optimarket/middlewares"
	"optimarket/notifier"
	"optimarket/rabbitmq"
	"optimarket/utils"
)

func main() {
	if err := database.InitDB(); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer database.CloseDB()

	cfg := config.LoadConfig()

	rmq, err := rabbitmq.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("RabbitMQ initialization failed: %v", err)
	}
	defer rmq.Close()

	if err := rmq.SetupQueues(); err != nil {
		log.Fatalf("Failed to setup RabbitMQ queues: %v", err)
	}

	emailSender := notifier.NewEmailSender(cfg)
	whatsappSender := notifier.NewWhatsAppSender(cfg)
	go consumers.StartNotificationConsumer(rmq.Channel, cfg, emailSender)
	go consumers.StartCampaignConsumer(rmq.Channel, cfg, emailSender, whatsappSender)

	controllers.SetRabbitMQ(rmq)
	controllers.SetGeocoder(geocoder.NewClient(cfg.GeocoderURL))

	r := gin.Default()
	r.Use(cors.Default())
	r.Use(middlewares.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/api/auth/login", controllers.Login)
	r.POST("/api/opticians", controllers.RegisterOptician)
	r.GET("/api/opticians/nearby", controllers.NearbyOpticians)

	authGroup := r.Group("/api")
	authGroup.Use(middlewares.AuthMiddleware())
	{
		authGroup.GET("/products", controllers.ListProducts)
		authGroup.GET("/loyalty-products", controllers.ListLoyaltyProducts)
		authGroup.POST("/redemptions", controllers.CreateRedemption)
		authGroup.GET("/redemptions", controllers.ListMyRedemptions)
		authGroup.POST("/orders", controllers.CreateOrder)
		authGroup.GET("/orders", controllers.ListMyOrders)
		authGroup.GET("/orders/:id", controllers.GetOrderDetails)
	}

	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(utils.RoleAdmin))
	{
		adminGroup.GET("/opticians", controllers.ListOpticians)
		adminGroup.POST("/opticians/:id/approve", controllers.ApproveOptician)
		adminGroup.POST("/opticians/:id/reject", controllers.RejectOptician)

		adminGroup.POST("/products", controllers.CreateProduct)
		adminGroup.PUT("/products/:id/stock", controllers.UpdateStock)
		adminGroup.POST("/loyalty-products", controllers.CreateLoyaltyProduct)
		adminGroup.DELETE("/loyalty-products/:id", controllers.DeactivateLoyaltyProduct)

		adminGroup.GET("/redemptions", controllers.ListRedemptions)
		adminGroup.POST("/redemptions/:id/approve", controllers.ApproveRedemption)
		adminGroup.POST("/redemptions/:id/reject", controllers.RejectRedemption)
		adminGroup.POST("/redemption-items/:id/approve", controllers.ApproveRedemptionItem)

		adminGroup.POST("/orders", controllers.CreateManualOrder)
		adminGroup.POST("/order-items/:id/confirm", controllers.ConfirmOrderItem)
		adminGroup.POST("/order-items/:id/cancel", controllers.CancelOrderItem)

		adminGroup.POST("/campaigns", controllers.CreateCampaign)
	}

	port := ":8080"
	log.Printf("Marketplace service starting on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
