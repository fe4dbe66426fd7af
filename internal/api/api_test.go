package api

import (
	"ad-mediation/internal/app"
	"ad-mediation/internal/placement"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockMediator реализует app.MediatorInterface для тестов
type MockMediator struct {
	mock.Mock
}

func (m *MockMediator) CreateUnit(ctx context.Context, category placement.Category, key string) (app.UnitStatus, error) {
	args := m.Called(ctx, category, key)
	return args.Get(0).(app.UnitStatus), args.Error(1)
}

func (m *MockMediator) Load(ctx context.Context, id string) (app.UnitStatus, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(app.UnitStatus), args.Error(1)
}

func (m *MockMediator) Show(ctx context.Context, id string) (app.UnitStatus, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(app.UnitStatus), args.Error(1)
}

func (m *MockMediator) Destroy(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMediator) Status(ctx context.Context, id string) (app.UnitStatus, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(app.UnitStatus), args.Error(1)
}

func (m *MockMediator) List(ctx context.Context) []app.UnitStatus {
	args := m.Called(ctx)
	return args.Get(0).([]app.UnitStatus)
}

func (m *MockMediator) SetToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func TestAPIEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockMediator := new(MockMediator)
	server := NewServer(mockMediator, nil)

	t.Run("CreateUnit - success", func(t *testing.T) {
		mockMediator.On("CreateUnit", mock.Anything, placement.CategoryBanner, "home").
			Return(app.UnitStatus{ID: "u1", Category: "banner", PlacementID: "P1", State: "idle"}, nil)

		w := httptest.NewRecorder()
		req := createRequest(t, "POST", "/api/v1/units", CreateUnitRequest{Category: "Banner", Key: "home"})

		server.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)

		var resp app.UnitStatus
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "u1", resp.ID)
		assert.Equal(t, "P1", resp.PlacementID)
		mockMediator.AssertExpectations(t)
	})

	t.Run("CreateUnit - unknown category", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := createRequest(t, "POST", "/api/v1/units", CreateUnitRequest{Category: "popup"})

		server.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("CreateUnit - invalid request", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := createRequest(t, "POST", "/api/v1/units", map[string]interface{}{
			"category": 5, // Неправильный тип
		})

		server.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Load - accepted", func(t *testing.T) {
		mockMediator.On("Load", mock.Anything, "u1").Return(app.UnitStatus{ID: "u1", State: "loading"}, nil)

		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, createRequest(t, "POST", "/api/v1/units/u1/load", nil))

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Contains(t, w.Body.String(), `"state":"loading"`)
		mockMediator.AssertExpectations(t)
	})

	t.Run("Load - unknown unit", func(t *testing.T) {
		mockMediator.On("Load", mock.Anything, "missing").Return(app.UnitStatus{}, app.ErrUnitNotFound)

		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, createRequest(t, "POST", "/api/v1/units/missing/load", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Show - not ready", func(t *testing.T) {
		mockMediator.On("Show", mock.Anything, "u2").Return(app.UnitStatus{ID: "u2", State: "idle"}, app.ErrNotReady)

		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, createRequest(t, "POST", "/api/v1/units/u2/show", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
		mockMediator.AssertExpectations(t)
	})

	t.Run("Show - success", func(t *testing.T) {
		mockMediator.On("Show", mock.Anything, "u1").Return(app.UnitStatus{ID: "u1", State: "showing"}, nil)

		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, createRequest(t, "POST", "/api/v1/units/u1/show", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Status and List", func(t *testing.T) {
		st := app.UnitStatus{ID: "u1", State: "loaded", Ready: true}
		mockMediator.On("Status", mock.Anything, "u1").Return(st, nil)
		mockMediator.On("List", mock.Anything).Return([]app.UnitStatus{st})

		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, createRequest(t, "GET", "/api/v1/units/u1", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"ready":true`)

		w = httptest.NewRecorder()
		server.router.ServeHTTP(w, createRequest(t, "GET", "/api/v1/units", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		var list []app.UnitStatus
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Len(t, list, 1)
	})

	t.Run("Destroy", func(t *testing.T) {
		mockMediator.On("Destroy", mock.Anything, "u1").Return(nil)

		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, createRequest(t, "DELETE", "/api/v1/units/u1", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockMediator.AssertExpectations(t)
	})

	t.Run("SetToken", func(t *testing.T) {
		mockMediator.On("SetToken", mock.Anything, "secret").Return(nil)

		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, createRequest(t, "POST", "/api/v1/token", SetTokenRequest{Token: "secret"}))

		assert.Equal(t, http.StatusOK, w.Code)
		mockMediator.AssertExpectations(t)
	})

	t.Run("SetToken - missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, createRequest(t, "POST", "/api/v1/token", map[string]string{}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, createRequest(t, "GET", "/metrics", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.Contains(w.Body.String(), "ad_api_requests_total"))
	})
}

func createRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		buf.Write(jsonBody)
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Content-Type", "application/json")
	return req
}
