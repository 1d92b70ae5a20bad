package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/basketwise/backend/config"
	"github.com/basketwise/backend/internal/domain"
	"github.com/basketwise/backend/internal/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubPlanner records the last request and returns a fixed plan or error.
type stubPlanner struct {
	plan    *domain.Plan
	err     error
	lastReq usecase.OptimizeRequest
	calls   int
}

func (s *stubPlanner) OptimizeBasket(_ context.Context, request usecase.OptimizeRequest) (*domain.Plan, error) {
	s.calls++
	s.lastReq = request
	if s.err != nil {
		return nil, s.err
	}
	return s.plan, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
	}
}

func setupTestRouter(planner BasketPlanner) *gin.Engine {
	handler := NewHandler(planner)
	return SetupRouter(testConfig(), handler)
}

func testPlan() *domain.Plan {
	unitPrice := decimal.RequireFromString("3.60")
	return &domain.Plan{
		Strategy:       domain.StrategyFullSplit,
		TotalOriginal:  decimal.RequireFromString("2.20"),
		TotalOptimized: decimal.RequireFromString("1.80"),
		Savings:        decimal.RequireFromString("0.40"),
		Stores: map[string][]domain.PlanItem{
			"Lidl": {
				{
					Name:      "Milk 3% UHT",
					Price:     decimal.RequireFromString("1.80"),
					Store:     "Lidl",
					UnitPrice: &unitPrice,
					IsBetter:  true,
				},
			},
		},
	}
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(&stubPlanner{plan: testPlan()})

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", body["status"])
	}
	if body["service"] != "basketwise-backend" {
		t.Errorf("service = %q, want basketwise-backend", body["service"])
	}
}

func TestOptimizeBasket_Success(t *testing.T) {
	planner := &stubPlanner{plan: testPlan()}
	router := setupTestRouter(planner)

	payload := `{"items": "milk, bread\neggs", "strategy": "split"}`
	req, _ := http.NewRequest("POST", "/api/v1/basket/optimize", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	if planner.calls != 1 {
		t.Fatalf("planner calls = %d, want 1", planner.calls)
	}
	wantItems := []string{"milk", "bread", "eggs"}
	if len(planner.lastReq.Items) != len(wantItems) {
		t.Fatalf("request items = %v, want %v", planner.lastReq.Items, wantItems)
	}
	for i, item := range wantItems {
		if planner.lastReq.Items[i] != item {
			t.Errorf("request item[%d] = %q, want %q", i, planner.lastReq.Items[i], item)
		}
	}
	if planner.lastReq.Strategy != domain.StrategyFullSplit {
		t.Errorf("request strategy = %q, want %q", planner.lastReq.Strategy, domain.StrategyFullSplit)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["strategy"] != string(domain.StrategyFullSplit) {
		t.Errorf("plan strategy = %v, want %q", body["strategy"], domain.StrategyFullSplit)
	}
	if body["savings"] != "0.4" {
		t.Errorf("plan savings = %v, want 0.4", body["savings"])
	}
}

func TestOptimizeBasket_StrategyAliases(t *testing.T) {
	tests := []struct {
		alias string
		want  domain.PlanStrategy
	}{
		{"", domain.StrategyFullSplit},
		{"split", domain.StrategyFullSplit},
		{"full-split", domain.StrategyFullSplit},
		{"limited", domain.StrategyLimitedStores},
		{"limited-k", domain.StrategyLimitedStores},
		{"single", domain.StrategySingleStore},
		{"single-store", domain.StrategySingleStore},
	}

	for _, tt := range tests {
		t.Run("alias "+tt.alias, func(t *testing.T) {
			planner := &stubPlanner{plan: testPlan()}
			router := setupTestRouter(planner)

			body, _ := json.Marshal(map[string]interface{}{
				"items":    "milk",
				"strategy": tt.alias,
			})
			req, _ := http.NewRequest("POST", "/api/v1/basket/optimize", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if planner.lastReq.Strategy != tt.want {
				t.Errorf("strategy = %q, want %q", planner.lastReq.Strategy, tt.want)
			}
		})
	}
}

func TestOptimizeBasket_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "invalid JSON",
			payload: `{"items": `,
		},
		{
			name:    "missing items",
			payload: `{"strategy": "split"}`,
		},
		{
			name:    "blank items",
			payload: `{"items": " , ,\n "}`,
		},
		{
			name:    "unknown strategy",
			payload: `{"items": "milk", "strategy": "teleport"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planner := &stubPlanner{plan: testPlan()}
			router := setupTestRouter(planner)

			req, _ := http.NewRequest("POST", "/api/v1/basket/optimize", bytes.NewBufferString(tt.payload))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if planner.calls != 0 {
				t.Errorf("planner calls = %d, want 0", planner.calls)
			}
		})
	}
}

func TestOptimizeBasket_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "invalid request",
			err:      domain.ErrInvalidRequest,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "no stores",
			err:      domain.ErrNoStores,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "market failure",
			err:      domain.ErrMarketAPIFailure,
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(&stubPlanner{err: tt.err})

			req, _ := http.NewRequest("POST", "/api/v1/basket/optimize", bytes.NewBufferString(`{"items": "milk"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}

func TestOptimizeBasket_PlannerNotConfigured(t *testing.T) {
	router := setupTestRouter(nil)

	req, _ := http.NewRequest("POST", "/api/v1/basket/optimize", bytes.NewBufferString(`{"items": "milk"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotImplemented)
	}
}
