package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medilens/backend/config"
	"github.com/medilens/backend/internal/domain"
	"github.com/medilens/backend/internal/infrastructure/cart"
	"github.com/medilens/backend/internal/infrastructure/catalog"
	"github.com/medilens/backend/internal/infrastructure/metrics"
	"github.com/medilens/backend/internal/infrastructure/patterns"
	"github.com/medilens/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

// stubExtractor returns canned OCR text
type stubExtractor struct {
	text string
	err  error

	// block, when set, holds recognition until closed
	block   chan struct{}
	entered chan struct{}
}

func (s *stubExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	if s.block != nil {
		s.entered <- struct{}{}
		<-s.block
	}
	return s.text, s.err
}

// failingCatalog fails every lookup
type failingCatalog struct{}

func (failingCatalog) Search(ctx context.Context, query string) ([]domain.Product, error) {
	return nil, domain.ErrCatalogFailure
}

func (failingCatalog) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return nil, domain.ErrCatalogFailure
}

type testServer struct {
	router   *gin.Engine
	sessions *SessionRegistry
	store    *cart.MemoryStore
}

func setupTestServer(extractor domain.TextExtractor, products domain.ProductCatalog) *testServer {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
		RateLimit: config.RateLimitConfig{PerIP: 1000},
	}

	if products == nil {
		products = catalog.NewMemoryCatalog(catalog.DemoProducts())
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)
	patternCatalog := patterns.Default()
	store := cart.NewMemoryStore()

	sessions := NewSessionRegistry(func() *usecase.AnalysisService {
		return usecase.NewAnalysisService(extractor, patternCatalog, products, recorder, nil)
	}, store)
	handler := NewHandler(sessions, products, usecase.NewCartService(products, recorder, nil), 1<<20, nil)

	return &testServer{
		router:   SetupRouter(cfg, handler, nil, registry),
		sessions: sessions,
		store:    store,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func imageUpload(t *testing.T, session string, field string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, "prescription.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/prescriptions/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}
	return req
}

func jsonRequest(method, path, session, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}
	return req
}

type analyzeResponse struct {
	Result domain.AnalysisResult `json:"result"`
	View   usecase.ResultView    `json:"view"`
}

func TestHealthCheckEndpoint(t *testing.T) {
	srv := setupTestServer(&stubExtractor{}, nil)

	w := srv.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "medilens-backend", response["service"])
	assert.NotEmpty(t, response["version"])
}

func TestAnalyzePrescriptionEndpoint(t *testing.T) {
	t.Run("matches medicines in uploaded image", func(t *testing.T) {
		srv := setupTestServer(&stubExtractor{text: "Dolo 650mg Tablet\nTake twice daily"}, nil)

		w := srv.do(imageUpload(t, "s-1", "image", pngBytes(t)))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp analyzeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		require.Len(t, resp.Result.ResolvedMatches, 1)
		assert.Equal(t, "paracetamol", resp.Result.ResolvedMatches[0].Candidate.MatchedName)
		require.NotNil(t, resp.Result.ResolvedMatches[0].BestMatch)
		assert.Equal(t, "p-1001", resp.Result.ResolvedMatches[0].BestMatch.ID)

		assert.False(t, resp.View.NoMatches)
		require.Len(t, resp.View.Matches, 1)
		assert.Equal(t, "Dolo 650mg Tablet 15", resp.View.Matches[0].Best.Name)
		assert.Equal(t, resp.Result.ID, resp.View.AnalysisID)
	})

	t.Run("noise renders no matches view", func(t *testing.T) {
		srv := setupTestServer(&stubExtractor{text: "xyz qqq 123"}, nil)

		w := srv.do(imageUpload(t, "s-1", "image", pngBytes(t)))

		require.Equal(t, http.StatusOK, w.Code)
		var resp analyzeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.View.NoMatches)
		assert.Equal(t, []string{"xyz qqq 123"}, resp.View.DetectedLines)
	})

	t.Run("OCR failure asks the user to retry", func(t *testing.T) {
		srv := setupTestServer(&stubExtractor{err: errors.New("engine crashed")}, nil)

		w := srv.do(imageUpload(t, "s-1", "image", pngBytes(t)))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["retry"])
		assert.NotEmpty(t, resp["error"])
	})

	t.Run("missing image field", func(t *testing.T) {
		srv := setupTestServer(&stubExtractor{}, nil)

		w := srv.do(imageUpload(t, "s-1", "photo", pngBytes(t)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non-image upload", func(t *testing.T) {
		srv := setupTestServer(&stubExtractor{}, nil)

		w := srv.do(imageUpload(t, "s-1", "image", []byte("just some text, not a picture")))

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("oversized upload", func(t *testing.T) {
		srv := setupTestServer(&stubExtractor{}, nil)

		big := append(pngBytes(t), make([]byte, 2<<20)...)
		w := srv.do(imageUpload(t, "s-1", "image", big))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("catalog outage", func(t *testing.T) {
		srv := setupTestServer(&stubExtractor{text: "Dolo 650"}, failingCatalog{})

		w := srv.do(imageUpload(t, "s-1", "image", pngBytes(t)))

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestAnalyzePrescription_IgnoresConcurrentRequest(t *testing.T) {
	extractor := &stubExtractor{
		text:    "Dolo 650",
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	srv := setupTestServer(extractor, nil)

	firstReq := imageUpload(t, "s-1", "image", pngBytes(t))

	var wg sync.WaitGroup
	var first *httptest.ResponseRecorder
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = srv.do(firstReq)
	}()
	<-extractor.entered

	second := srv.do(imageUpload(t, "s-1", "image", pngBytes(t)))
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.JSONEq(t, `{"status":"ignored"}`, second.Body.String())

	// a different session is not blocked by text analysis
	other := srv.do(jsonRequest(http.MethodPost, "/api/v1/prescriptions/analyze-text", "s-2", `{"text":"Omez 20"}`))
	assert.Equal(t, http.StatusOK, other.Code)

	close(extractor.block)
	wg.Wait()
	assert.Equal(t, http.StatusOK, first.Code)
}

func TestAnalyzeTextEndpoint(t *testing.T) {
	srv := setupTestServer(&stubExtractor{}, nil)

	t.Run("unmatched medicine", func(t *testing.T) {
		w := srv.do(jsonRequest(http.MethodPost, "/api/v1/prescriptions/analyze-text", "s-1", `{"text":"Rantac 150 at night"}`))

		require.Equal(t, http.StatusOK, w.Code)
		var resp analyzeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Result.ResolvedMatches)
		require.Len(t, resp.Result.UnmatchedCandidates, 1)
		assert.Equal(t, []string{"ranitidine"}, resp.View.Unmatched)
	})

	t.Run("missing text", func(t *testing.T) {
		w := srv.do(jsonRequest(http.MethodPost, "/api/v1/prescriptions/analyze-text", "s-1", `{}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSearchProductsEndpoint(t *testing.T) {
	srv := setupTestServer(&stubExtractor{}, nil)

	t.Run("returns matching products", func(t *testing.T) {
		w := srv.do(httptest.NewRequest(http.MethodGet, "/api/v1/products/search?q=levocet", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Products []domain.Product `json:"products"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Products, 1)
		assert.Equal(t, "p-1009", resp.Products[0].ID)
	})

	t.Run("requires a query", func(t *testing.T) {
		w := srv.do(httptest.NewRequest(http.MethodGet, "/api/v1/products/search", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

type cartResponseBody struct {
	SessionID string            `json:"sessionId"`
	Lines     []domain.CartLine `json:"lines"`
	Badge     int               `json:"badge"`
}

func TestCartEndpoints(t *testing.T) {
	t.Run("adding the same product twice sums quantities", func(t *testing.T) {
		srv := setupTestServer(&stubExtractor{}, nil)

		for i := 0; i < 2; i++ {
			w := srv.do(jsonRequest(http.MethodPost, "/api/v1/cart/items", "s-1", `{"productId":"p-1009","quantity":1}`))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		}

		w := srv.do(jsonRequest(http.MethodGet, "/api/v1/cart", "s-1", ""))
		require.Equal(t, http.StatusOK, w.Code)

		var resp cartResponseBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "s-1", resp.SessionID)
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, "Levocet 5mg Tablet 10", resp.Lines[0].Name)
		assert.Equal(t, 2, resp.Lines[0].Quantity)
		assert.Equal(t, 2, resp.Badge)

		stored, err := srv.store.Load(context.Background(), "s-1")
		require.NoError(t, err)
		assert.Equal(t, resp.Lines, stored)
	})

	t.Run("quantity is clamped", func(t *testing.T) {
		srv := setupTestServer(&stubExtractor{}, nil)

		w := srv.do(jsonRequest(http.MethodPost, "/api/v1/cart/items", "s-1", `{"productId":"p-1010","quantity":99}`))

		require.Equal(t, http.StatusOK, w.Code)
		var resp cartResponseBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, usecase.MaxCartQuantity, resp.Badge)
	})

	t.Run("vanished product", func(t *testing.T) {
		srv := setupTestServer(&stubExtractor{}, nil)

		w := srv.do(jsonRequest(http.MethodPost, "/api/v1/cart/items", "s-1", `{"productId":"p-9999","quantity":1}`))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"This product is no longer available"}`, w.Body.String())

		cartW := srv.do(jsonRequest(http.MethodGet, "/api/v1/cart", "s-1", ""))
		var resp cartResponseBody
		require.NoError(t, json.Unmarshal(cartW.Body.Bytes(), &resp))
		assert.Empty(t, resp.Lines)
	})

	t.Run("missing product id", func(t *testing.T) {
		srv := setupTestServer(&stubExtractor{}, nil)

		w := srv.do(jsonRequest(http.MethodPost, "/api/v1/cart/items", "s-1", `{"quantity":1}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("sessions have separate carts", func(t *testing.T) {
		srv := setupTestServer(&stubExtractor{}, nil)

		srv.do(jsonRequest(http.MethodPost, "/api/v1/cart/items", "s-1", `{"productId":"p-1001","quantity":1}`))
		w := srv.do(jsonRequest(http.MethodGet, "/api/v1/cart", "s-2", ""))

		var resp cartResponseBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Lines)
		assert.Equal(t, 2, srv.sessions.Len())
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := setupTestServer(&stubExtractor{}, nil)
	srv.do(jsonRequest(http.MethodPost, "/api/v1/prescriptions/analyze-text", "s-1", `{"text":"Dolo 650"}`))

	w := srv.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `medilens_analyses_total{outcome="matched"} 1`)
}

func TestCORSIntegration(t *testing.T) {
	srv := setupTestServer(&stubExtractor{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := srv.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.NotEmpty(t, w.Header().Get(sessionHeader))
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	srv := setupTestServer(&stubExtractor{}, nil)
	srv.router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := srv.do(httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestAPIVersioning tests that API v1 routes are correctly versioned
func TestAPIVersioning(t *testing.T) {
	srv := setupTestServer(&stubExtractor{}, nil)

	w := srv.do(httptest.NewRequest(http.MethodGet, "/api/products/search?q=dolo", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
