package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/legalcms/backend/internal/controllers"
	"github.com/legalcms/backend/internal/middleware"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/services"
)

// Dependencies is everything the HTTP layer needs, built once at startup.
type Dependencies struct {
	DB          *gorm.DB
	Services    *services.Services
	CORSOrigin  string
	AuthLimiter *middleware.RateLimiter
	// HealthChecks are reported by /health without affecting its status.
	HealthChecks map[string]controllers.Pinger
}

// NewRouter builds the engine with the shared middleware and every route.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	if deps.CORSOrigin != "" {
		r.Use(middleware.CORS(deps.CORSOrigin))
	}

	SetupRoutes(r, deps)
	return r
}

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	svc := deps.Services

	healthController := controllers.NewHealthController(deps.DB, deps.HealthChecks)
	authController := controllers.NewAuthController(svc.Auth)
	userController := controllers.NewUserController(svc.Users)
	caseController := controllers.NewCaseController(svc.Cases)
	appointmentController := controllers.NewAppointmentController(svc.Appointments)
	documentController := controllers.NewDocumentController(svc.Documents)
	chatController := controllers.NewChatController(svc.Chat)

	r.GET("/health", healthController.Health)

	api := r.Group("/api")
	api.GET("/health", healthController.Health)

	authenticated := middleware.AuthMiddleware(svc.Auth)
	practitioner := middleware.RequirePractitioner()

	// Auth routes
	auth := api.Group("/auth")
	if deps.AuthLimiter != nil {
		auth.Use(middleware.RateLimit(deps.AuthLimiter))
	}
	{
		auth.POST("/login", authController.Login)
		auth.POST("/register", authController.Register)
		auth.POST("/logout", authenticated, authController.Logout)
		auth.POST("/refresh", authenticated, authController.Refresh)
		auth.GET("/me", authenticated, authController.Me)
		auth.PUT("/password", authenticated, authController.ChangePassword)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(authenticated)
	{
		users := protected.Group("/users", practitioner)
		{
			users.GET("", userController.GetUsers)
			users.GET("/:id", userController.GetUser)
			users.POST("", middleware.RequireRoles(models.RoleAdmin), userController.CreateUser)
		}

		cases := protected.Group("/cases")
		{
			cases.GET("", caseController.GetCases)
			cases.GET("/:id", caseController.GetCase)
			cases.POST("", practitioner, caseController.CreateCase)
			cases.PUT("/:id", practitioner, caseController.UpdateCase)
			cases.DELETE("/:id", practitioner, caseController.DeleteCase)
		}

		appointments := protected.Group("/appointments")
		{
			appointments.GET("", appointmentController.GetAppointments)
			appointments.GET("/:id", appointmentController.GetAppointment)
			appointments.POST("", practitioner, appointmentController.CreateAppointment)
			appointments.PUT("/:id", practitioner, appointmentController.UpdateAppointment)
			appointments.DELETE("/:id", practitioner, appointmentController.DeleteAppointment)
		}

		documents := protected.Group("/documents")
		{
			documents.GET("", documentController.GetDocuments)
			documents.POST("", documentController.CreateDocument)
			documents.POST("/upload", documentController.UploadDocument)
			documents.GET("/:id", documentController.GetDocument)
			documents.GET("/:id/download", documentController.DownloadDocument)
			documents.DELETE("/:id", practitioner, documentController.DeleteDocument)
		}

		chat := protected.Group("/chat")
		{
			chat.GET("", chatController.GetMessages)
			chat.POST("", chatController.SendMessage)
			chat.PUT("/read", chatController.MarkRead)
		}
	}
}
