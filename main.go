package main

import (
	"fmt"
	"log"

	"tabletalk-server/config"
	"tabletalk-server/database"
	"tabletalk-server/handlers"
	"tabletalk-server/logger"
	"tabletalk-server/mailer"
	"tabletalk-server/middleware"
	"tabletalk-server/payments"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg := config.Load()

	client, err := database.Connect(cfg.Mongo.URI)
	if err != nil {
		log.Fatal("MongoDB connection failed: ", err)
	}
	cols := database.Collect(client, cfg.Mongo.Database)

	stripe.Key = cfg.Stripe.SecretKey

	mail := newMailer(cfg)
	if err := mail.Verify(); err != nil {
		logger.Warn("mail transport not ready", "provider", cfg.Mail.Provider, "error", err)
	} else {
		logger.Info("mail transport ready", "provider", cfg.Mail.Provider)
	}

	workflow := payments.NewWorkflow(
		payments.NewMongoPaymentStore(cols.Payments),
		payments.NewMongoCartStore(cols.Cart),
		payments.NewMongoReservationStore(cols.Reservations),
		mail,
		logger.Default(),
	)

	userStore := database.NewUserStore(cols.Users)

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.Origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(middleware.RequestID())

	requireAuth := middleware.RequireAuth(cfg.Auth.Secret)
	requireEmail := middleware.RequireVerifiedEmail()
	requireAdmin := middleware.RequireAdmin(userStore)

	router.GET("/", func(c *gin.Context) {
		c.String(200, "server is running!")
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// token
	router.POST("/jwt", handlers.IssueTokenHandler(cfg.Auth, cfg.Server.Env))
	router.GET("/logout", handlers.LogoutHandler(cfg.Server.Env))

	// menu
	router.GET("/all-menu", handlers.GetAllMenuHandler(cols.Menu))
	router.GET("/menu", handlers.GetMenuHandler(cols.Menu))
	router.GET("/menu/:id", handlers.GetMenuItemHandler(cols.Menu))
	router.POST("/menu", requireAuth, requireEmail, requireAdmin, handlers.CreateMenuItemHandler(cols.Menu))
	router.PATCH("/menu/:id", requireAuth, requireEmail, requireAdmin, handlers.UpdateMenuItemHandler(cols.Menu))
	router.DELETE("/menu/:id", requireAuth, requireEmail, requireAdmin, handlers.DeleteMenuItemHandler(cols.Menu))

	// reviews
	router.GET("/reviews", handlers.GetReviewsHandler(cols.Reviews))
	router.POST("/reviews", requireAuth, handlers.CreateReviewHandler(cols.Reviews))

	// cart
	router.GET("/cart", requireAuth, handlers.GetCartHandler(cols.Cart))
	router.POST("/cart", requireAuth, handlers.AddCartItemHandler(cols.Cart))
	router.DELETE("/cart/:id", requireAuth, requireEmail, handlers.DeleteCartItemHandler(cols.Cart))

	// payments
	router.POST("/create-payment-intent", handlers.CreatePaymentIntentHandler())
	router.GET("/payment-history", requireAuth, requireEmail, handlers.PaymentHistoryHandler(cols.Payments))
	router.POST("/payments", requireAuth, requireEmail, handlers.CreatePaymentHandler(workflow))

	// reservations
	router.GET("/dashboard/reservations", handlers.GetAllReservationsHandler(cols.Reservations))
	router.GET("/dashboard/reservation", requireAuth, requireEmail, handlers.GetUserReservationsHandler(cols.Reservations))
	router.POST("/dashboard/reservation", requireAuth, handlers.CreateReservationHandler(cols.Reservations))
	router.PATCH("/admin/reservation/:id", handlers.CompleteReservationHandler(cols.Reservations))
	router.DELETE("/dashboard/reservation/:id", requireAuth, requireEmail, handlers.DeleteReservationHandler(cols.Reservations))

	// users
	router.GET("/admin/users/:email", requireAuth, requireEmail, handlers.CheckAdminHandler(cols.Users))
	router.POST("/users", handlers.CreateUserHandler(cols.Users))
	router.GET("/admin/users", requireAuth, requireEmail, requireAdmin, handlers.GetUsersHandler(cols.Users))
	router.PATCH("/users/:id", requireAuth, requireEmail, requireAdmin, handlers.PromoteUserHandler(cols.Users))
	router.DELETE("/users/:id", requireAuth, requireEmail, requireAdmin, handlers.DeleteUserHandler(cols.Users))
	router.GET("/admin-statistics", requireAuth, requireEmail, requireAdmin, handlers.AdminStatisticsHandler(cols.Users, cols.Cart, cols.Payments))

	fmt.Printf("🚀 Server running in %s mode on http://localhost:%s\n", cfg.Server.Env, cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal(err)
	}
}

func newMailer(cfg *config.Config) mailer.Service {
	switch cfg.Mail.Provider {
	case "mailersend":
		return mailer.NewMailerSendMailer(cfg.Mail.MailerSendKey, cfg.Mail.FromName, cfg.Mail.From)
	case "dev":
		return mailer.NewDevMailer()
	default:
		return mailer.NewSMTPMailer(
			cfg.Mail.SMTPHost,
			cfg.Mail.SMTPPort,
			cfg.Mail.From,
			cfg.Mail.FromName,
			cfg.Mail.SMTPUser,
			cfg.Mail.SMTPPass,
		)
	}
}
