package http

import (
	"net/http"
	"strings"

	"clinical-scheduling/internal/delivery/http/handler"
	"clinical-scheduling/internal/delivery/http/middleware"
	"clinical-scheduling/internal/domain/entity"
	"clinical-scheduling/pkg/response"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Professional *handler.ProfessionalHandler
	Appointment  *handler.AppointmentHandler
	AuditLog     *handler.AuditLogHandler
	Health       *handler.HealthHandler
	Metrics      http.Handler
}

// Middlewares are the request pipeline stages. AccessLog, Recovery, Metrics,
// CORS and the security headers wrap every request; Auth and Throttle only
// wrap API routes.
type Middlewares struct {
	AccessLog *middleware.AccessLogMiddleware
	Recovery  *middleware.RecoveryMiddleware
	Metrics   *middleware.MetricsMiddleware
	CORS      *middleware.CORSMiddleware
	Auth      *middleware.AuthMiddleware
	Throttle  *middleware.ThrottleMiddleware
}

type Router struct {
	router      *mux.Router
	handlers    Handlers
	middlewares Middlewares
}

func NewRouter(handlers Handlers, middlewares Middlewares) *Router {
	return &Router{
		router:      mux.NewRouter(),
		handlers:    handlers,
		middlewares: middlewares,
	}
}

func (r *Router) Setup() http.Handler {
	r.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "")
	})
	r.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.MethodNotAllowed(w, req.Method)
	})
	r.router.Use(middleware.CaptureRoute)

	// Health and metrics skip authentication and throttling
	r.router.HandleFunc("/health", r.handlers.Health.Check).Methods(http.MethodGet)
	if r.handlers.Metrics != nil {
		r.router.Handle("/metrics", r.handlers.Metrics).Methods(http.MethodGet)
	}

	api := r.router.PathPrefix("/api").Subrouter()

	// Token routes (public)
	public := api.NewRoute().Subrouter()
	public.Use(r.middlewares.Auth.Identify, r.middlewares.Throttle.Handle)
	handle(public, "/token", r.handlers.Auth.ObtainToken, http.MethodPost)
	handle(public, "/token/refresh", r.handlers.Auth.RefreshToken, http.MethodPost)
	handle(public, "/token/blacklist", r.handlers.Auth.BlacklistToken, http.MethodPost)

	// Everything else requires an access token
	protected := api.NewRoute().Subrouter()
	protected.Use(r.middlewares.Auth.Authenticate, r.middlewares.Throttle.Handle)

	handle(protected, "/professionals", r.handlers.Professional.GetAllProfessionals, http.MethodGet)
	handle(protected, "/professionals", r.handlers.Professional.CreateProfessional, http.MethodPost)
	handle(protected, "/professionals/{id:[0-9]+}", r.handlers.Professional.GetProfessional, http.MethodGet)
	handle(protected, "/professionals/{id:[0-9]+}", r.handlers.Professional.UpdateProfessional, http.MethodPut)
	handle(protected, "/professionals/{id:[0-9]+}", r.handlers.Professional.PatchProfessional, http.MethodPatch)
	handle(protected, "/professionals/{id:[0-9]+}", r.handlers.Professional.DeleteProfessional, http.MethodDelete)
	handle(protected, "/professionals/{id:[0-9]+}/history", r.handlers.AuditLog.History(entity.AuditEntityProfessional), http.MethodGet)

	handle(protected, "/appointments", r.handlers.Appointment.GetAllAppointments, http.MethodGet)
	handle(protected, "/appointments", r.handlers.Appointment.CreateAppointment, http.MethodPost)
	handle(protected, "/appointments/{id:[0-9]+}", r.handlers.Appointment.GetAppointment, http.MethodGet)
	handle(protected, "/appointments/{id:[0-9]+}", r.handlers.Appointment.UpdateAppointment, http.MethodPut)
	handle(protected, "/appointments/{id:[0-9]+}", r.handlers.Appointment.PatchAppointment, http.MethodPatch)
	handle(protected, "/appointments/{id:[0-9]+}", r.handlers.Appointment.DeleteAppointment, http.MethodDelete)
	handle(protected, "/appointments/{id:[0-9]+}/history", r.handlers.AuditLog.History(entity.AuditEntityAppointment), http.MethodGet)

	handle(protected, "/audit-logs", r.handlers.AuditLog.ListAuditTrail, http.MethodGet)
	handle(protected, "/audit-logs/{id:[0-9]+}", r.handlers.AuditLog.GetAuditEntry, http.MethodGet)

	return middleware.NewChain(
		r.middlewares.AccessLog.Handle,
		r.middlewares.Recovery.Handle,
		r.middlewares.Metrics.Handle,
		middleware.SecurityHeaders,
		r.middlewares.CORS.Handle,
	).Then(r.router)
}

// handle registers path both with and without a trailing slash.
func handle(router *mux.Router, path string, h http.HandlerFunc, method string) {
	path = strings.TrimSuffix(path, "/")
	router.HandleFunc(path, h).Methods(method)
	router.HandleFunc(path+"/", h).Methods(method)
}
