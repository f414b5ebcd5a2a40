package routes

import (
	"time"

	"barangaylink/internal/adapters/http/handlers"
	"barangaylink/internal/adapters/http/middleware"
	"barangaylink/internal/adapters/realtime"
	"barangaylink/internal/config"
	"barangaylink/internal/core/services"
	"barangaylink/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Deps is everything the routes need besides the app itself.
// Hub and Gatherer may be nil, which disables /api/ws and /metrics.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Services *services.Services
	Hub      *realtime.Hub
	Gatherer prometheus.Gatherer
}

// Setup configures all routes for the application
func Setup(app *fiber.App, d Deps) {
	cfg := d.Config
	svc := d.Services

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg, d.DB, svc.AI)
	authHandler := handlers.NewAuthHandler(svc.Auth, cfg)
	userHandler := handlers.NewUserHandler(svc.Users)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	requestHandler := handlers.NewRequestHandler(svc.Requests)
	eventHandler := handlers.NewEventHandler(svc.Events)
	donationHandler := handlers.NewDonationHandler(svc.Donations)
	volunteerHandler := handlers.NewVolunteerHandler(svc.Volunteers)
	announcementHandler := handlers.NewAnnouncementHandler(svc.Announcements)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications, d.Hub)
	emergencyHandler := handlers.NewEmergencyHandler(svc.Emergency)
	aiHandler := handlers.NewAIHandler(svc.AI)

	// ============================================================
	// Root & infrastructure
	// ============================================================
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/swagger/*", swagger.HandlerDefault)
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(d.Gatherer)))
	}
	if cfg.Upload.Dir != "" {
		app.Static("/uploads", cfg.Upload.Dir, fiber.Static{MaxAge: 3600})
	}

	api := app.Group("/api")
	auth := middleware.AuthMiddleware(cfg)
	staff := middleware.StaffOnly()

	// ============================================================
	// Auth
	// ============================================================
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshToken)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Post("/forgot-password", middleware.StrictRateLimiter(), authHandler.ForgotPassword)
	authRoutes.Post("/reset-password", middleware.StrictRateLimiter(), authHandler.ResetPassword)

	authRoutes.Get("/me", auth, middleware.NoStore(), authHandler.Me)
	authRoutes.Put("/profile", auth, authHandler.UpdateProfile)
	authRoutes.Post("/change-password", auth, authHandler.ChangePassword)
	authRoutes.Post("/logout-all", auth, authHandler.LogoutAll)

	// ============================================================
	// Service requests
	// ============================================================
	requests := api.Group("/requests", auth)
	requests.Get("/", staff, requestHandler.List)
	requests.Get("/my", requestHandler.Mine)
	requests.Post("/", requestHandler.Create)
	requests.Get("/:id", requestHandler.Get)
	requests.Put("/:id", requestHandler.Update)
	requests.Delete("/:id", requestHandler.Delete)
	requests.Patch("/:id/status", requestHandler.UpdateStatus) // staff or the assigned volunteer
	requests.Post("/:id/assign", staff, requestHandler.Assign)
	requests.Post("/:id/attachments", requestHandler.Upload)

	// ============================================================
	// Events
	// ============================================================
	events := api.Group("/events", auth)
	events.Get("/", eventHandler.List)
	events.Post("/", staff, eventHandler.Create)
	events.Get("/:id", eventHandler.Get)
	events.Put("/:id", staff, eventHandler.Update)
	events.Delete("/:id", staff, eventHandler.Delete)
	events.Post("/:id/register", eventHandler.Register)
	events.Delete("/:id/register", eventHandler.Unregister)
	events.Get("/:id/participants", eventHandler.Participants)

	// ============================================================
	// Donations
	// ============================================================
	donations := api.Group("/donations", auth)
	donations.Get("/", staff, donationHandler.List)
	donations.Get("/my", donationHandler.Mine)
	donations.Get("/stats", donationHandler.Stats)
	donations.Post("/", donationHandler.Create)
	donations.Get("/:id", donationHandler.Get)

	// ============================================================
	// Volunteers
	// ============================================================
	volunteers := api.Group("/volunteers", auth)
	volunteers.Get("/", staff, volunteerHandler.List)
	volunteers.Post("/apply", volunteerHandler.Apply)
	volunteers.Get("/me", volunteerHandler.Me)
	volunteers.Put("/me", volunteerHandler.UpdateMe)
	volunteers.Get("/me/assignments", volunteerHandler.Assignments)

	// ============================================================
	// Announcements
	// ============================================================
	announcements := api.Group("/announcements", auth)
	announcements.Get("/", announcementHandler.List)
	announcements.Post("/", staff, announcementHandler.Create)
	announcements.Delete("/:id", staff, announcementHandler.Delete)

	// ============================================================
	// Notifications
	// ============================================================
	notifications := api.Group("/notifications", auth, middleware.NoStore())
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Patch("/read-all", notificationHandler.MarkAllRead)
	notifications.Patch("/:id/read", notificationHandler.MarkRead)

	if d.Hub != nil {
		api.Get("/ws", middleware.QueryTokenAuth(cfg), notificationHandler.UpgradeCheck, notificationHandler.Stream())
	}

	// ============================================================
	// Emergency
	// ============================================================
	// hotlines are public; registered ahead of the group so auth never runs for them
	api.Get("/emergency/contacts", middleware.OptionalAuth(cfg), middleware.CacheControl(5*time.Minute), emergencyHandler.Contacts)

	emergency := api.Group("/emergency", auth)
	emergency.Get("/alerts", emergencyHandler.ActiveAlerts)
	emergency.Post("/alerts", emergencyHandler.Raise)
	emergency.Patch("/alerts/:id/resolve", staff, emergencyHandler.Resolve)

	// ============================================================
	// AI assistant
	// ============================================================
	ai := api.Group("/ai", auth)
	ai.Post("/chat", aiHandler.Chat)
	ai.Post("/priority-preview", aiHandler.PriorityPreview)

	// ============================================================
	// Admin
	// ============================================================
	admin := api.Group("/admin", auth, middleware.AdminOnly())
	admin.Get("/stats", dashboardHandler.GetAdminStats)
	admin.Get("/users", userHandler.ListUsers)
	admin.Patch("/users/:id/role", userHandler.SetUserRole)
	admin.Patch("/users/:id/status", userHandler.SetUserStatus)
	admin.Delete("/users/:id", userHandler.DeleteUser)
}
