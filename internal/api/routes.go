package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wildcloud007/greenguard/domain/repositories"
	"github.com/wildcloud007/greenguard/internal/auth"
	"github.com/wildcloud007/greenguard/internal/monitor"
	"github.com/wildcloud007/greenguard/usecase"
)

// Server wires the HTTP surface over one voice session.
type Server struct {
	session  *usecase.Session
	bookings repositories.BookingLog
	hub      *monitor.Hub
	tokens   *auth.TokenService
	secret   string
	logger   *zap.Logger
}

// NewServer creates the API server. An empty secret disables operator
// authentication, which is the expected mode for local single-user runs.
func NewServer(
	session *usecase.Session,
	bookings repositories.BookingLog,
	hub *monitor.Hub,
	tokens *auth.TokenService,
	secret string,
	logger *zap.Logger,
) *Server {
	return &Server{
		session:  session,
		bookings: bookings,
		hub:      hub,
		tokens:   tokens,
		secret:   secret,
		logger:   logger,
	}
}

// InitRoutes initializes all API routes
func (s *Server) InitRoutes(e *echo.Echo) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "greenguard",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.POST("/auth/token", s.issueToken)

	protected := v1.Group("", s.requireAuth)
	protected.GET("/session", s.getSession)
	protected.POST("/session/connect", s.connectSession)
	protected.POST("/session/disconnect", s.disconnectSession)
	protected.GET("/bookings", s.getBookings)

	// WebSocket feed of session state, speaking and booking events
	e.GET("/ws", s.websocketFeed)
}

// issueToken exchanges the shared operator secret for a bearer token.
func (s *Server) issueToken(c echo.Context) error {
	if s.secret == "" {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "auth_disabled",
			Message: "Operator authentication is not configured",
		})
	}

	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Error("Failed to bind token request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if req.OperatorID == "" || req.Secret == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Operator ID and secret are required",
		})
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.secret)) != 1 {
		s.logger.Warn("Operator authentication failed",
			zap.String("operator_id", req.OperatorID))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Invalid operator credentials",
		})
	}

	token, err := s.tokens.Generate(req.OperatorID)
	if err != nil {
		s.logger.Error("Failed to generate operator token",
			zap.String("operator_id", req.OperatorID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}

	s.logger.Info("Operator authenticated", zap.String("operator_id", req.OperatorID))
	return c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
}

// requireAuth validates the bearer token when authentication is configured.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.secret == "" {
			return next(c)
		}
		token := bearerToken(c)
		if token == "" {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "missing_token",
				Message: "Bearer token is required in Authorization header",
			})
		}
		if _, err := s.tokens.Validate(token); err != nil {
			s.logger.Warn("Request rejected: invalid token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_token",
				Message: "Invalid or expired token",
			})
		}
		return next(c)
	}
}

func (s *Server) getSession(c echo.Context) error {
	return c.JSON(http.StatusOK, SessionResponse{
		SessionID: s.session.ID(),
		State:     s.session.State().String(),
		Status:    s.session.Status(),
	})
}

func (s *Server) connectSession(c echo.Context) error {
	if err := s.session.Connect(c.Request().Context()); err != nil {
		s.logger.Warn("Session connect failed", zap.Error(err))
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "connect_failed",
			Message: err.Error(),
		})
	}
	return s.getSession(c)
}

func (s *Server) disconnectSession(c echo.Context) error {
	s.session.Disconnect()
	return s.getSession(c)
}

func (s *Server) getBookings(c echo.Context) error {
	bookings, err := s.bookings.List(c.Request().Context())
	if err != nil {
		s.logger.Error("Failed to list bookings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list bookings",
		})
	}

	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingResponse{
			ID:            b.ID,
			CustomerName:  b.CustomerName,
			Address:       b.Address,
			PreferredTime: b.PreferredTime,
			CreatedAt:     b.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// websocketFeed attaches the peer to the monitor feed, validating the bearer
// token when authentication is configured.
func (s *Server) websocketFeed(c echo.Context) error {
	if s.secret != "" {
		token := bearerToken(c)
		if token == "" {
			token = c.QueryParam("token")
		}
		if token == "" {
			s.logger.Warn("WebSocket connection rejected: missing token")
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "missing_token",
				Message: "Bearer token is required",
			})
		}
		if _, err := s.tokens.Validate(token); err != nil {
			s.logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_token",
				Message: "Invalid or expired token",
			})
		}
	}
	return monitor.HandleWebSocket(s.hub, c, s.logger)
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
