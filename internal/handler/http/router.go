package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/storeops/attendance-backend-go/internal/domain/user"
	"github.com/storeops/attendance-backend-go/internal/handler/http/middleware"
	"github.com/storeops/attendance-backend-go/internal/pkg/jwt"
)

func NewRouter(
	JWTService jwt.Service,
	authHandler AuthHandler,
	shiftHandler ShiftHandler,
	scheduleHandler ScheduleHandler,
	attendanceHandler AttendanceHandler,
	requestHandler RequestHandler,
	uploadsPath string,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "storeops-attendance"),
		slog.String("version", "v1.0.0"),
		slog.String("env", "development"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	// Punch selfies stored on local disk.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsPath))))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/attendances", func(r chi.Router) {
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/{id}/check-out", attendanceHandler.CheckOut)
				r.Get("/my", attendanceHandler.ListMy)
				r.Get("/{id}", attendanceHandler.Get)

				// Manager or admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(user.RoleManager, user.RoleAdmin))
					r.Get("/", attendanceHandler.List)
				})

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/autoclose", attendanceHandler.RunAutoclose)
				})
			})

			r.Route("/requests", func(r chi.Router) {
				r.Post("/", requestHandler.Create)
				r.Get("/my", requestHandler.ListMy)
				r.Get("/{id}", requestHandler.Get)

				// Manager or admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(user.RoleManager, user.RoleAdmin))
					r.Get("/", requestHandler.List)
					r.Post("/{id}/approve", requestHandler.Approve)
					r.Post("/{id}/reject", requestHandler.Reject)
				})
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/shifts", func(r chi.Router) {
					r.Get("/", shiftHandler.List)
					r.Post("/", shiftHandler.Create)
					r.Get("/{id}", shiftHandler.Get)
					r.Put("/{id}", shiftHandler.Update)
					r.Delete("/{id}", shiftHandler.Deactivate)
				})

				r.Route("/advisors/{advisorID}", func(r chi.Router) {
					r.Put("/schedule", scheduleHandler.Upsert)
					r.Get("/schedule", scheduleHandler.Get)
					r.Get("/planned-shift", scheduleHandler.GetPlannedShift)

					r.Route("/week-offs", func(r chi.Router) {
						r.Get("/", scheduleHandler.ListWeekOffs)
						r.Post("/", scheduleHandler.CreateWeekOff)
						r.Delete("/{id}", scheduleHandler.DeleteWeekOff)
					})

					r.Route("/exceptions", func(r chi.Router) {
						r.Get("/", scheduleHandler.ListExceptions)
						r.Post("/", scheduleHandler.CreateException)
						r.Delete("/{id}", scheduleHandler.DeleteException)
					})
				})
			})
		})
	})
	return r
}
