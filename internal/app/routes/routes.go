package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/nsbs/certify/internal/app/controllers"
	"github.com/nsbs/certify/internal/middleware"
)

// Middlewares groups the route-level middleware the router applies
type Middlewares struct {
	Auth        *middleware.AuthMiddleware
	OriginCheck gin.HandlerFunc
	RateLimit   gin.HandlerFunc
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	examController *controllers.ExamController,
	certificateController *controllers.CertificateController,
	healthController *controllers.HealthController,
	mw Middlewares,
) {
	router.GET("/ping", healthController.Ping)

	api := router.Group("/api")
	api.GET("/health", healthController.Health)

	// --- Public verification ---
	verification := api.Group("/verification")
	verification.Use(mw.RateLimit)
	{
		verification.GET("/:certificateId", certificateController.VerifyCertificate)
	}

	// --- Exam routes ---
	exams := api.Group("/exams/:slug")
	{
		reads := exams.Group("")
		reads.Use(mw.Auth.JWTAuth())
		{
			reads.GET("/eligibility", examController.GetEligibility)
			reads.GET("/attempts", examController.ListAttempts)
		}

		// State-changing exam routes only accept requests from the web app's origin.
		// The origin is checked before the session.
		stateChanging := exams.Group("")
		stateChanging.Use(mw.OriginCheck, mw.Auth.JWTAuth(), mw.RateLimit)
		{
			stateChanging.POST("/start", examController.StartExam)
			stateChanging.POST("/submit", examController.SubmitExam)
		}
	}

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(mw.Auth.JWTAuth())
	{
		authenticated.GET("/certificates", certificateController.ListCertificates)
	}

	// --- Admin routes ---
	admin := api.Group("/admin")
	admin.Use(mw.Auth.AdminKey())
	{
		admin.POST("/certificates/:number/revoke", certificateController.RevokeCertificate)
	}
}
