package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medilens/backend/internal/domain"
	"github.com/medilens/backend/internal/usecase"
)

const (
	serviceName    = "medilens-backend"
	serviceVersion = "1.0.0"

	defaultMaxUploadBytes = 10 << 20
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	sessions       *SessionRegistry
	catalog        domain.ProductCatalog
	cartService    *usecase.CartService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	sessions *SessionRegistry,
	catalog domain.ProductCatalog,
	cartService *usecase.CartService,
	maxUploadBytes int64,
	logger *zap.Logger,
) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		sessions:       sessions,
		catalog:        catalog,
		cartService:    cartService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// AnalyzePrescription runs OCR and matching on an uploaded prescription image
func (h *Handler) AnalyzePrescription(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'image' is required"})
		return
	}
	if file.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image is too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image could not be read"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image could not be read"})
		return
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "upload must be an image"})
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	result, err := session.Analysis.Analyze(c.Request.Context(), data)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"view":   usecase.Present(result),
	})
}

// AnalyzeText runs matching on text the client already recognized
func (h *Handler) AnalyzeText(c *gin.Context) {
	var req domain.AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field 'text' is required"})
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	result, err := session.Analysis.AnalyzeText(c.Request.Context(), req.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"view":   usecase.Present(result),
	})
}

// SearchProducts passes a name query through to the product catalog
func (h *Handler) SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	products, err := h.catalog.Search(c.Request.Context(), query)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetCart returns the session cart
func (h *Handler) GetCart(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cartResponse(session))
}

// AddCartItem adds a catalog product to the session cart
func (h *Handler) AddCartItem(c *gin.Context) {
	var req domain.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field 'productId' is required"})
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.cartService.AddToCart(c.Request.Context(), req.ProductID, req.Quantity, session.Cart); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(session))
}

func cartResponse(session *Session) gin.H {
	return gin.H{
		"sessionId": session.ID,
		"lines":     session.Cart.Lines(),
		"badge":     session.Cart.BadgeCount(),
	}
}

// session resolves the caller's session, writing an error response on failure
func (h *Handler) session(c *gin.Context) (*Session, bool) {
	session, err := h.sessions.Get(c.Request.Context(), c.GetString(sessionIDKey))
	if err != nil {
		h.logger.Error("session unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session could not be loaded"})
		return nil, false
	}
	return session, true
}

// writeError maps domain errors to HTTP responses
func (h *Handler) writeError(c *gin.Context, err error) {
	var userErr *domain.UserError

	switch {
	case errors.Is(err, domain.ErrAnalysisInProgress):
		c.JSON(http.StatusConflict, gin.H{"status": "ignored"})
	case errors.As(err, &userErr) && errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": userErr.Message})
	case errors.Is(err, domain.ErrOCREngine):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "We could not read this prescription. Please try again with a clearer photo.",
			"retry": true,
		})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCatalogFailure), errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusBadGateway, gin.H{"error": "product catalog is unavailable"})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
