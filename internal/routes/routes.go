package routes

import (
	"errors"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/CoachAcademyBack/internal/config"
	"github.com/saeid-a/CoachAcademyBack/internal/email"
	"github.com/saeid-a/CoachAcademyBack/internal/handlers"
	"github.com/saeid-a/CoachAcademyBack/internal/metrics"
	"github.com/saeid-a/CoachAcademyBack/internal/middleware"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/render"
	"github.com/saeid-a/CoachAcademyBack/internal/repository"
	"github.com/saeid-a/CoachAcademyBack/internal/services"
	schedulews "github.com/saeid-a/CoachAcademyBack/internal/websocket"
	"go.uber.org/zap"
)

// Dependencies are the process-wide collaborators built in main. Converter,
// Storage and Metrics may be nil.
type Dependencies struct {
	Log       *zap.Logger
	Hub       *schedulews.Hub
	Metrics   *metrics.Metrics
	Converter render.PDFConverter
	Storage   services.StorageService
	Mailer    email.Sender
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, deps Dependencies) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if deps.Hub == nil {
		return errors.New("event hub is required")
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	mailer := deps.Mailer
	if mailer == nil {
		mailer = email.NewNoopSender(log)
	}

	userRepo := repository.NewUserRepository(db)
	coachRepo := repository.NewCoachRepository(db)
	programRepo := repository.NewProgramRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	groundRepo := repository.NewGroundRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)

	renderer, err := render.NewCertificateRenderer(deps.Converter)
	if err != nil {
		return err
	}

	var snapClient services.SnapClient
	if cfg.MidtransServerKey != "" {
		snapClient = services.NewSnapClient(cfg.MidtransServerKey, cfg.MidtransProduction)
	}

	sessionService := services.NewSessionService(db, sessionRepo, cfg.Policy, deps.Hub, deps.Metrics, log)
	availabilityService := services.NewAvailabilityService(coachRepo, sessionRepo, cfg.Policy)
	groundService := services.NewGroundService(groundRepo, cfg.Policy)
	coachService := services.NewCoachService(db, coachRepo, userRepo)
	programService := services.NewProgramService(programRepo, userRepo, log)
	enrollmentService := services.NewEnrollmentService(db, enrollmentRepo, programRepo, attendanceRepo, cfg.Policy)
	paymentService := services.NewPaymentService(db, userRepo, snapClient, cfg.MidtransServerKey, log)
	certificateService := services.NewCertificateService(services.CertificateDeps{
		Store:    services.NewCertificateStore(db, certificateRepo, enrollmentRepo, programRepo, attendanceRepo),
		Users:    userRepo,
		Renderer: renderer,
		Storage:  deps.Storage,
		Mailer:   mailer,
		Events:   deps.Hub,
		Metrics:  deps.Metrics,
		Log:      log,
		Policy:   cfg.Policy,
		Secret:   cfg.CertificateSecret,
		BaseURL:  cfg.PublicBaseURL,
	})

	sessionHandler := handlers.NewSessionHandler(sessionService, log)
	coachHandler := handlers.NewCoachHandler(coachService, availabilityService, programService, log)
	groundHandler := handlers.NewGroundHandler(groundService, log)
	programHandler := handlers.NewProgramHandler(programService, log)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService, log)
	paymentHandler := handlers.NewPaymentHandler(paymentService, log)
	certificateHandler := handlers.NewCertificateHandler(certificateService, log)
	eventsHandler := handlers.NewEventsHandler(deps.Hub, cfg.JWTSecret)

	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	public := app.Group("/public", limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
	}))
	public.Get("/certificates/verify/:number", certificateHandler.VerifyByNumber)
	public.Get("/certificates/hash/:hash", certificateHandler.VerifyByHash)

	app.Post("/webhooks/midtrans", paymentHandler.Notification)

	api := app.Group("/api")

	api.Use("/v1/ws", eventsHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(eventsHandler.HandleWebSocket))

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	coaches := authProtected.Group("/coaches")
	coaches.Put("/me/availability", middleware.RolesAllowed(models.RoleCoach), coachHandler.ReplaceAvailability)
	coaches.Get("/:id/availability", coachHandler.GetAvailability)
	coaches.Get("/:id/slots", coachHandler.GetSlots)
	coaches.Get("/:id/programs", coachHandler.ListPrograms)

	grounds := authProtected.Group("/grounds")
	grounds.Post("", middleware.RolesAllowed(models.RoleAdmin), groundHandler.CreateGround)
	grounds.Get("/:id", groundHandler.GetGround)
	grounds.Get("/:id/free-slots", groundHandler.GetFreeSlots)

	programs := authProtected.Group("/programs")
	programs.Post("", middleware.RolesAllowed(models.RoleAdmin, models.RoleCoach), programHandler.CreateProgram)
	programs.Put("/:id", middleware.RolesAllowed(models.RoleAdmin, models.RoleCoach), programHandler.UpdateProgram)
	programs.Get("/:id", programHandler.GetProgram)

	enrollments := authProtected.Group("/enrollments")
	enrollments.Post("", middleware.RolesAllowed(models.RoleLearner), enrollmentHandler.Enroll)
	enrollments.Get("/:id", enrollmentHandler.GetEnrollment)
	enrollments.Get("/:id/progress", enrollmentHandler.GetProgress)
	enrollments.Post("/:id/payment", middleware.RolesAllowed(models.RoleLearner), paymentHandler.CreatePayment)
	enrollments.Get("/:id/certificate/eligibility", certificateHandler.CheckEligibility)
	enrollments.Post("/:id/certificate", certificateHandler.GenerateCertificate)

	sessions := authProtected.Group("/sessions")
	sessions.Post("/book", middleware.RolesAllowed(models.RoleLearner), sessionHandler.BookSession)
	sessions.Get("", sessionHandler.ListSessions)
	sessions.Get("/:id", sessionHandler.GetSession)
	sessions.Post("/:id/cancel", sessionHandler.CancelSession)
	sessions.Post("/:id/reschedule", sessionHandler.RescheduleSession)
	sessions.Post("/:id/attendance", middleware.RolesAllowed(models.RoleCoach, models.RoleAdmin), sessionHandler.MarkAttendance)

	certificates := authProtected.Group("/certificates")
	certificates.Get("/:id", certificateHandler.GetCertificate)
	certificates.Get("/:id/download", certificateHandler.DownloadCertificate)
	certificates.Get("/:id/link", certificateHandler.CertificateLink)

	return nil
}
