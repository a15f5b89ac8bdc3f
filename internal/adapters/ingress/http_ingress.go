package ingress

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/mail-ingress/internal/allowlist"
	"github.com/mikey/mail-ingress/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const ingressHTTP = "http"

// DefaultMaxBodyBytes limits the size of an ingestion request
const DefaultMaxBodyBytes = 30 * 1024 * 1024

// MailMetadata is what the sender of an ingestion request knew before parsing
type MailMetadata struct {
	To      string            `json:"to"`
	From    string            `json:"from"`
	Headers map[string]string `json:"headers"`
}

// IngestedMail is one raw message of an ingestion request
type IngestedMail struct {
	Raw      string       `json:"raw"`
	RawSize  int          `json:"raw_size"`
	Metadata MailMetadata `json:"metadata"`
}

// IngestionRequest is the body of POST /api/v1/ingestion
type IngestionRequest struct {
	Mails     []IngestedMail `json:"mails"`
	StartedAt string         `json:"started_at"`
}

// HTTPIngress receives base64-encoded mails over an authenticated JSON API
type HTTPIngress struct {
	handler      MailHandler
	parser       *Parser
	allowlist    *allowlist.Checker
	metrics      *metrics.Metrics
	logger       *zap.Logger
	listenAddr   string
	apiToken     string
	maxBodyBytes int64

	engine *gin.Engine
	server *http.Server
}

// NewHTTPIngress creates a new HTTP ingress
func NewHTTPIngress(
	handler MailHandler,
	parser *Parser,
	checker *allowlist.Checker,
	m *metrics.Metrics,
	logger *zap.Logger,
	listenAddr string,
	apiToken string,
	maxBodyBytes int64,
) *HTTPIngress {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}

	h := &HTTPIngress{
		handler:      handler,
		parser:       parser,
		allowlist:    checker,
		metrics:      m,
		logger:       logger,
		listenAddr:   listenAddr,
		apiToken:     apiToken,
		maxBodyBytes: maxBodyBytes,
	}
	h.engine = h.newEngine()
	return h
}

// Handler returns the HTTP handler serving the API
func (h *HTTPIngress) Handler() http.Handler {
	return h.engine
}

func (h *HTTPIngress) newEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), h.accessLog())

	router.GET("/status", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(
				h.metrics.Registry,
				promhttp.HandlerOpts{
					ErrorHandling: promhttp.HTTPErrorOnError,
				},
			),
		))
	}

	v1 := router.Group("/api/v1")
	v1.POST("/ingestion", h.authenticate(), h.ingest)

	router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "404 page not found")
	})

	return router
}

func (h *HTTPIngress) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("duration", time.Since(start)))
	}
}

// authenticate checks the "Authorization: Token <token>" header
func (h *HTTPIngress) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		value := c.GetHeader("Authorization")
		if value == "" {
			abortText(c, http.StatusBadRequest, "authorization token is missing")
			return
		}

		token, ok := strings.CutPrefix(value, "Token ")
		if !ok {
			abortText(c, http.StatusBadRequest, "invalid authorization scheme")
			return
		}

		if h.apiToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.apiToken)) != 1 {
			h.logger.Warn("Rejected ingestion request with invalid token", zap.String("client_ip", c.ClientIP()))
			abortText(c, http.StatusUnauthorized, "invalid api token")
			return
		}

		c.Next()
	}
}

func (h *HTTPIngress) ingest(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	var req IngestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			abortText(c, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		h.logger.Warn("Invalid ingestion request", zap.Error(err))
		abortText(c, http.StatusBadRequest, "invalid request body")
		return
	}

	h.logger.Debug("Received ingestion request",
		zap.Int("mails", len(req.Mails)),
		zap.String("started_at", req.StartedAt))

	// handling outlives a disconnecting client
	ctx := context.WithoutCancel(c.Request.Context())

	for i, m := range req.Mails {
		logger := h.logger.With(zap.Int("mail", i), zap.String("from", m.Metadata.From))

		raw, err := base64.StdEncoding.DecodeString(m.Raw)
		if err != nil {
			logger.Warn("Skipping mail with invalid base64 content", zap.Error(err))
			h.metrics.IncRejected(ingressHTTP, "invalid_encoding")
			continue
		}
		if m.RawSize > 0 && m.RawSize != len(raw) {
			logger.Debug("Decoded size differs from announced size",
				zap.Int("raw_size", m.RawSize),
				zap.Int("decoded_size", len(raw)))
		}

		parsed, err := h.parser.Parse(raw)
		if err != nil {
			logger.Error("Could not parse email", zap.Error(err))
			h.metrics.IncRejected(ingressHTTP, "parse_error")
			continue
		}

		msg := parsed.Message(m.Metadata.From)
		if !h.allowlist.IsAllowed(msg.Sender) {
			logger.Info("Skipping mail from sender outside the allowlist", zap.String("sender", msg.Sender))
			h.metrics.IncRejected(ingressHTTP, "sender_not_allowed")
			continue
		}

		h.metrics.IncReceived(ingressHTTP)
		h.handler.Handle(ctx, msg)
	}

	c.Status(http.StatusOK)
}

func abortText(c *gin.Context, code int, message string) {
	c.Abort()
	c.String(code, message)
}

// Start starts serving the API in the background
func (h *HTTPIngress) Start() error {
	h.server = &http.Server{
		Addr:              h.listenAddr,
		Handler:           h.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	h.logger.Info("HTTP ingress starting", zap.String("address", h.listenAddr))

	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the server down
func (h *HTTPIngress) Stop() error {
	if h.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return h.server.Shutdown(ctx)
}
