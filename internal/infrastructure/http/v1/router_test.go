package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linksoc/internal/domain/auth"
	"linksoc/internal/domain/labels"
	"linksoc/internal/domain/reprint"
	"linksoc/internal/domain/rules"
	"linksoc/internal/domain/tasks"
	v1 "linksoc/internal/infrastructure/http/v1"
	"linksoc/internal/infrastructure/metrics"
	"linksoc/internal/infrastructure/storage/memory"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	require.NoError(t, memory.SeedDemo(ctx, store))
	require.NoError(t, store.Tasks().AddTask(ctx,
		tasks.Task{ID: "T1", Status: "Concluída", Responsible: "ana"},
		tasks.Item{ItemID: "I1", TaskID: "T1", LacreID: "GAI-1"},
	))

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	labelService := labels.NewService(store.Labels(), store, store, labels.DefaultServiceConfig())
	ruleService, err := rules.NewService(store.Rules())
	require.NoError(t, err)

	m := metrics.New()
	labelService.WithObserver(m)

	router := v1.NewRouter(v1.RouterConfig{
		Metrics:        m,
		JWTValidator:   jwtService,
		Idempotency:    memory.NewIdempotencyStore(time.Hour),
		AuthService:    auth.NewService(store.Auth(), jwtService),
		LabelService:   labelService,
		ReprintService: reprint.NewService(store.Reprint(), labelService, store, store),
		TaskService:    tasks.NewService(store.Tasks(), labelService),
		RuleService:    ruleService,
	})
	gin.SetMode(gin.TestMode)

	return &apiClient{t: t, router: router}
}

func (a *apiClient) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *apiClient) login() {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"password": memory.DemoPassword})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	decode(a.t, w, &resp)
	require.NotEmpty(a.t, resp.AccessToken)
	a.token = resp.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestRouter_Health(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = api.do(http.MethodGet, "/health/info", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"memory"`)
}

func TestRouter_Auth(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodGet, "/api/v1/fifo/labels", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)

	w = api.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"password": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	api.token = "garbage"
	w = api.do(http.MethodGet, "/api/v1/fifo/labels", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	api.login()
	w = api.do(http.MethodGet, "/api/v1/fifo/labels", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_LabelFlow(t *testing.T) {
	api := newAPI(t)
	api.login()

	w := api.do(http.MethodPost, "/api/v1/fifo/labels/generate", map[string]any{"quantity": 3})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var gen struct {
		Count     int `json:"count"`
		Shortfall int `json:"shortfall"`
		Data      []struct {
			QRCode string `json:"qrcode"`
			Serie  string `json:"serie"`
		} `json:"data"`
	}
	decode(t, w, &gen)
	assert.Equal(t, 3, gen.Count)
	assert.Zero(t, gen.Shortfall)
	require.Len(t, gen.Data, 3)
	assert.Equal(t, "CG1", gen.Data[0].QRCode)
	assert.Equal(t, "0001", gen.Data[0].Serie)

	w = api.do(http.MethodPost, "/api/v1/fifo/labels/generate", map[string]any{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"VALIDATION_ERROR"`)

	w = api.do(http.MethodPost, "/api/v1/fifo/labels/generate", map[string]any{"quantity": 1, "mode": "shuffled"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/v1/fifo/labels/CG9/validate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":false`)
	assert.Contains(t, w.Body.String(), `"reason":"not found"`)

	w = api.do(http.MethodPost, "/api/v1/fifo/labels/link", map[string]any{"qrcode": "CG9", "id_um": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, "/api/v1/fifo/labels/link", map[string]any{"qrcode": "CG1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/v1/fifo/labels/link", map[string]any{"qrcode": "CG1", "id_um": "", "id_dois": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/v1/fifo/labels/link", map[string]any{"qrcode": "CG1", "id_um": "GAI-1", "id_dois": "OLD-2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"id_dois":"OLD-2"`)

	w = api.do(http.MethodPost, "/api/v1/fifo/labels/link", map[string]any{"qrcode": "CG1", "id_um": "GAI-1", "id_dois": ""})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"id_um":"GAI-1"`)
	assert.Contains(t, w.Body.String(), `"id_dois":""`)

	w = api.do(http.MethodGet, "/api/v1/fifo/lookup?id=GAI-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"found":true`)
	assert.Contains(t, w.Body.String(), `"qrcode":"CG1"`)

	w = api.do(http.MethodGet, "/api/v1/fifo/lookup?id=nope", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"found":false`)

	w = api.do(http.MethodGet, "/api/v1/fifo/lookup", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/v1/fifo/lookup?ids=GAI-1,missing%0AGAI-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var many struct {
		Count       int      `json:"count"`
		NotFoundIDs []string `json:"notFoundIds"`
	}
	decode(t, w, &many)
	assert.Equal(t, 1, many.Count)
	assert.Equal(t, []string{"missing"}, many.NotFoundIDs)

	w = api.do(http.MethodPut, "/api/v1/fifo/labels/cg2", map[string]any{"id_um": "A", "id_dois": "B"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"qrcode":"CG2"`)

	w = api.do(http.MethodPost, "/api/v1/fifo/labels/clear", map[string]any{"qrcode": "CG2"})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPost, "/api/v1/fifo/print", map[string]any{"qrcodes": []string{"cg1", "CG404"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"marked":1`)

	w = api.do(http.MethodGet, "/api/v1/fifo/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalItems":1`)

	w = api.do(http.MethodGet, "/api/v1/fifo/labels?page=1&pageSize=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data       []json.RawMessage `json:"data"`
		Pagination struct {
			TotalItems int `json:"totalItems"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
		Stats struct {
			Total    int `json:"total"`
			Unlinked int `json:"unlinked"`
		} `json:"stats"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Data, 2)
	assert.Equal(t, 3, list.Pagination.TotalItems)
	assert.Equal(t, 2, list.Pagination.TotalPages)
	assert.Equal(t, 2, list.Stats.Unlinked)
}

func TestRouter_IdempotentGenerate(t *testing.T) {
	api := newAPI(t)
	api.login()

	body := map[string]any{"quantity": 2}
	first := api.do(http.MethodPost, "/api/v1/fifo/labels/generate", body, "X-Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, first.Code)

	second := api.do(http.MethodPost, "/api/v1/fifo/labels/generate", body, "X-Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotent-Replay"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	w := api.do(http.MethodGet, "/api/v1/fifo/labels", nil)
	assert.Contains(t, w.Body.String(), `"total":2`)

	w = api.do(http.MethodPost, "/api/v1/fifo/labels/generate", map[string]any{"quantity": 5}, "X-Idempotency-Key", "k-1")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_ReprintAndTasks(t *testing.T) {
	api := newAPI(t)
	api.login()

	w := api.do(http.MethodPost, "/api/v1/fifo/labels/generate", map[string]any{"quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	w = api.do(http.MethodPost, "/api/v1/fifo/labels/link", map[string]any{"qrcode": "CG1", "id_um": "GAI-1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPost, "/api/v1/fifo/reprint", map[string]any{"id": "GAI-1"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = api.do(http.MethodPost, "/api/v1/fifo/reprint", map[string]any{"id": "GHOST"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodGet, "/api/v1/fifo/reprint", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store, no-cache, must-revalidate", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Body.String(), `"total":2`)

	w = api.do(http.MethodGet, "/api/v1/fifo/reprint/labels", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resolved struct {
		Found    []json.RawMessage `json:"found"`
		NotFound []string          `json:"notFound"`
		Total    int               `json:"total"`
	}
	decode(t, w, &resolved)
	assert.Len(t, resolved.Found, 1)
	assert.Equal(t, []string{"GHOST"}, resolved.NotFound)
	assert.Equal(t, 2, resolved.Total)

	w = api.do(http.MethodPost, "/api/v1/fifo/reprint/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cleared":2`)

	w = api.do(http.MethodGet, "/api/v1/fifo/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tarefa_id":"T1"`)

	w = api.do(http.MethodGet, "/api/v1/fifo/tasks/T1/labels", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"qrcode":"CG1"`)
}

func TestRouter_RulesAndMetrics(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodGet, "/api/v1/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":4`)
	assert.Contains(t, w.Body.String(), `"Cor":"Cinza"`)

	w = api.do(http.MethodGet, `/api/v1/rules?filter=`+urlEscape(`color == "Verde"`), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = api.do(http.MethodGet, `/api/v1/rules?filter=`+urlEscape(`color +`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `linksoc_http_requests_total{method="GET",route="/api/v1/rules",status="200"} 2`)
	assert.Contains(t, w.Body.String(), `linksoc_http_requests_total{method="GET",route="/api/v1/rules",status="400"} 1`)
}

func TestRouter_PanicRenderedAndCounted(t *testing.T) {
	api := newAPI(t)
	api.router.GET("/boom", func(*gin.Context) { panic("boom") })

	w := api.do(http.MethodGet, "/boom", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INTERNAL_ERROR"`)

	w = api.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `linksoc_http_requests_total{method="GET",route="/boom",status="500"} 1`)
}

func urlEscape(s string) string {
	r := strings.NewReplacer(" ", "%20", `"`, "%22", "=", "%3D", "+", "%2B")
	return r.Replace(s)
}
