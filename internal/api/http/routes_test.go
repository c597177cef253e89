package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-home/internal/controller"
	"github.com/i474232898/weather-home/internal/weather"
)

type fakeScreen struct {
	mu       sync.Mutex
	view     controller.ViewState
	texts    []string
	selected []weather.Suggestion
	retryErr error
	selErr   error
	refresh  int
}

func (f *fakeScreen) View() controller.ViewState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view
}

func (f *fakeScreen) OnTextChange(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	f.view.Query = text
}

func (f *fakeScreen) OpenSearch() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view.SearchOpen = true
}

func (f *fakeScreen) CloseSearch() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view.SearchOpen = false
	f.view.Query = ""
}

func (f *fakeScreen) ToggleSearch() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view.SearchOpen = !f.view.SearchOpen
	return f.view.SearchOpen
}

func (f *fakeScreen) Select(s weather.Suggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selErr != nil {
		return f.selErr
	}
	f.selected = append(f.selected, s)
	f.view.Mode = controller.ModeLoading
	return nil
}

func (f *fakeScreen) Retry() error {
	return f.retryErr
}

func (f *fakeScreen) Refresh() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh++
	return nil
}

func newTestApp(screen Screen) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterSystemRoutes(app, "weather-home", prometheus.NewRegistry())
	RegisterRoutes(app, screen)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(&fakeScreen{})

	resp, body := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","service":"weather-home"}`, string(body))

	resp, _ = do(t, app, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestView(t *testing.T) {
	screen := &fakeScreen{view: controller.ViewState{
		Mode:    controller.ModeDisplay,
		Image:   "sun",
		Sunrise: "06:30 AM",
	}}
	app := newTestApp(screen)

	resp, body := do(t, app, http.MethodGet, "/api/v1/view", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var v controller.ViewState
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, controller.ModeDisplay, v.Mode)
	assert.Equal(t, "sun", v.Image)
	assert.Equal(t, "06:30 AM", v.Sunrise)
}

func TestSearchOverlay(t *testing.T) {
	screen := &fakeScreen{}
	app := newTestApp(screen)

	_, body := do(t, app, http.MethodPost, "/api/v1/search/open", "")
	assert.Contains(t, string(body), `"searchOpen":true`)

	_, body = do(t, app, http.MethodPost, "/api/v1/search/toggle", "")
	assert.Contains(t, string(body), `"searchOpen":false`)

	do(t, app, http.MethodPost, "/api/v1/search/toggle", "")
	_, body = do(t, app, http.MethodPost, "/api/v1/search/close", "")
	assert.Contains(t, string(body), `"searchOpen":false`)
}

func TestSearchQuery(t *testing.T) {
	screen := &fakeScreen{}
	app := newTestApp(screen)

	resp, _ := do(t, app, http.MethodPut, "/api/v1/search/query", `{"text":"Lo"}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPut, "/api/v1/search/query", `{"text":""}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode, "clearing the field is a valid change")

	resp, _ = do(t, app, http.MethodPut, "/api/v1/search/query", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPut, "/api/v1/search/query", `{"text":"`+strings.Repeat("a", 201)+`"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, []string{"Lo", ""}, screen.texts)
}

func TestSelect(t *testing.T) {
	screen := &fakeScreen{}
	app := newTestApp(screen)

	resp, body := do(t, app, http.MethodPost, "/api/v1/search/select",
		`{"id":2801268,"name":"London","region":"City of London, Greater London","country":"United Kingdom"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Contains(t, string(body), `"mode":"loading"`)

	require.Len(t, screen.selected, 1)
	assert.Equal(t, weather.Suggestion{
		ID:      2801268,
		Name:    "London",
		Region:  "City of London, Greater London",
		Country: "United Kingdom",
	}, screen.selected[0])
}

func TestSelect_Validation(t *testing.T) {
	screen := &fakeScreen{}
	app := newTestApp(screen)

	for _, body := range []string{`{}`, `{"name":"   "}`, `not json`} {
		resp, _ := do(t, app, http.MethodPost, "/api/v1/search/select", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
	assert.Empty(t, screen.selected)
}

func TestSelect_Closed(t *testing.T) {
	app := newTestApp(&fakeScreen{selErr: controller.ErrClosed})

	resp, body := do(t, app, http.MethodPost, "/api/v1/search/select", `{"name":"Paris"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), `"error":true`)
}

func TestRetry(t *testing.T) {
	resp, _ := do(t, newTestApp(&fakeScreen{}), http.MethodPost, "/api/v1/forecast/retry", "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, body := do(t, newTestApp(&fakeScreen{retryErr: controller.ErrNothingToRetry}), http.MethodPost, "/api/v1/forecast/retry", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), controller.ErrNothingToRetry.Error())
}

func TestRefresh(t *testing.T) {
	screen := &fakeScreen{}
	resp, _ := do(t, newTestApp(screen), http.MethodPost, "/api/v1/forecast/refresh", "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, 1, screen.refresh)
}

func TestImages(t *testing.T) {
	app := newTestApp(&fakeScreen{})

	tests := []struct {
		path  string
		image string
	}{
		{"/api/v1/images/Sunny", "sun"},
		{"/api/v1/images/Partly%20cloudy", "partlycloudy"},
		{"/api/v1/images/Blizzard", "moderaterain"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := do(t, app, http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var out map[string]string
			require.NoError(t, json.Unmarshal(body, &out))
			assert.Equal(t, tt.image, out["image"])
		})
	}
}
