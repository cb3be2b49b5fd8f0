// Package httpapi exposes the calendar-connect and reminder operations over
// a gin JSON API. Identity arrives as a bearer JWT issued by the identity
// provider; the OAuth callback instead authenticates through the signed
// state value minted at connect time, because the browser redirect carries
// no Authorization header.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mberzonis/carelink/internal/logging"
	"github.com/mberzonis/carelink/internal/server/models"
	"github.com/mberzonis/carelink/internal/server/services"
)

// CalendarTokens is the slice of CalendarTokenService the API needs.
type CalendarTokens interface {
	BeginAuthorization(ctx context.Context, owner, state string) (*services.AuthorizationRequest, error)
	CompleteAuthorization(ctx context.Context, owner, code string) (*models.TokenRecord, error)
	GetValidAccessToken(ctx context.Context, owner string) (string, error)
	Revoke(ctx context.Context, owner string) error
}

// Reminders is the slice of ReminderService the API needs.
type Reminders interface {
	Create(ctx context.Context, owner, medication, dosage string, dueAt time.Time) (*models.Reminder, error)
	ListForOwner(ctx context.Context, owner string) ([]*models.Reminder, error)
}

// Server is the HTTP front of the calendar-connect service.
type Server struct {
	address       string
	logger        logging.Logger
	calendar      CalendarTokens
	reminders     Reminders
	jwtSecret     []byte
	stateValidity time.Duration
	router        *gin.Engine
}

// NewServer wires the routes and returns a Server ready to Run.
func NewServer(address string, l logging.Logger, cal CalendarTokens, rem Reminders, secretKey string, stateValidity time.Duration) *Server {
	s := &Server{
		address:       address,
		logger:        l.With("module", "http_server"),
		calendar:      cal,
		reminders:     rem,
		jwtSecret:     []byte(secretKey),
		stateValidity: stateValidity,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ping", s.pingHandler)

	api := r.Group("/api")
	api.GET("/calendar/callback", s.callbackHandler)

	authed := api.Group("", s.authRequired())
	authed.GET("/calendar/connect", s.connectHandler)
	authed.GET("/calendar/token", s.tokenHandler)
	authed.DELETE("/calendar/connection", s.disconnectHandler)
	authed.POST("/reminders", s.createReminderHandler)
	authed.GET("/reminders", s.listRemindersHandler)

	s.router = r
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
