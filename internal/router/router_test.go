package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipdesk/internal/config"
	"shipdesk/internal/domain"
	"shipdesk/internal/draft"
	"shipdesk/internal/handler"
	"shipdesk/internal/payload"
	"shipdesk/internal/pricing"
	"shipdesk/internal/repository/memory"
	"shipdesk/internal/router"
	"shipdesk/internal/service"
	"shipdesk/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type app struct {
	engine    *gin.Engine
	extractor *mocks.MockExtractor
}

func newApp(t *testing.T) *app {
	t.Helper()
	store := draft.NewStore(memory.NewDraftRepo(), "test")
	require.NoError(t, store.Load(context.Background()))

	extractor := new(mocks.MockExtractor)
	cfg := &config.ExtractionConfig{MaxFileSizeMB: 5, MaxFiles: 5}
	svc := service.NewDraftService(store, extractor, nil, pricing.NewCalculator(pricing.DefaultRules()), cfg, "test")

	engine := router.Setup(handler.NewDraftHandler(svc), handler.NewHealthHandler(nil), []string{"http://localhost:3000"})
	return &app{engine: engine, extractor: extractor}
}

func (a *app) do(t *testing.T, method, target string, body []byte, contentType string) (int, envelope) {
	t.Helper()
	req, _ := http.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestRouter_Health(t *testing.T) {
	a := newApp(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
		a.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_DraftLifecycle(t *testing.T) {
	a := newApp(t)

	status, env := a.do(t, http.MethodPut, "/api/v1/draft/mode", []byte(`{"mode":"document"}`), "application/json")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	a.extractor.On("Extract", mock.Anything, mock.Anything).Return(payload.Payload{
		"consignee": map[string]any{"company": "Globex", "country": "US"},
		"items":     []any{map[string]any{"description": "Valve", "quantity": "4", "price": "25"}},
	}, nil)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("files", "invoice.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.7\n%test document\n"))
	require.NoError(t, mw.Close())

	status, env = a.do(t, http.MethodPost, "/api/v1/draft/extract", body.Bytes(), mw.FormDataContentType())
	require.Equal(t, http.StatusOK, status, string(env.Data))
	var result struct {
		Outcome     string   `json:"outcome"`
		FilledPaths []string `json:"filledPaths"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "merged", result.Outcome)
	assert.Contains(t, result.FilledPaths, "consignee.company")

	status, env = a.do(t, http.MethodGet, "/api/v1/draft/autofilled?path=consignee.company", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"path":"consignee.company","autoFilled":true}`, string(env.Data))

	status, env = a.do(t, http.MethodPatch, "/api/v1/draft", []byte(`{"consignee":{"company":"Initech","country":"US"}}`), "application/json")
	require.Equal(t, http.StatusOK, status)

	status, env = a.do(t, http.MethodGet, "/api/v1/draft/autofilled?path=consignee.company", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"path":"consignee.company","autoFilled":false}`, string(env.Data))

	status, env = a.do(t, http.MethodGet, "/api/v1/draft/quote", nil, "")
	require.Equal(t, http.StatusOK, status)
	var quote domain.PriceBreakdown
	require.NoError(t, json.Unmarshal(env.Data, &quote))
	assert.Equal(t, 100.0, quote.CustomsValue)
	assert.Equal(t, 1, quote.LineItemCount)

	status, env = a.do(t, http.MethodDelete, "/api/v1/draft", nil, "")
	require.Equal(t, http.StatusOK, status)
	var view struct {
		Mode       string          `json:"mode"`
		Provenance map[string]bool `json:"provenanceMap"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "manual", view.Mode)
	assert.Empty(t, view.Provenance)
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	a := newApp(t)

	status, env := a.do(t, http.MethodPatch, "/api/v1/draft", []byte(`["not","an","object"]`), "application/json")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_PATCH", env.Error.Code)
}
