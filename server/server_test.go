package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mir4tracker/application"
	"mir4tracker/infrastructure"
	"mir4tracker/models"
	"mir4tracker/repository/memstore"
	"mir4tracker/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticScheduler struct {
	status application.SchedulerStatus
}

func (s staticScheduler) Status() application.SchedulerStatus {
	return s.status
}

// newTestApp wires the API over an in-memory store
func newTestApp(t *testing.T) (*fiber.App, *memstore.Store) {
	t.Helper()

	store := memstore.New()
	publisher := infrastructure.NewNoopEventPublisher()
	prices := service.NewPriceService(store.Prices(), publisher)
	sweeps := service.NewSweepService(store.Accounts(), publisher)
	accounts := service.NewAccountService(store.Accounts(), prices, sweeps, publisher, 0)
	stats := service.NewStatsService(accounts)

	scheduler := staticScheduler{status: application.SchedulerStatus{
		SchedulerRunning: true,
		Jobs:             []application.JobStatus{{ID: application.ExpirySweepJobID}},
	}}

	return New(accounts, prices, stats, scheduler).App(Options{CORSOrigins: "*"}), store
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

func TestServer_Root(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doRequest(t, app, http.MethodGet, "/api/", "")

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"MIR4 Account Manager API"}`, string(body))
}

func TestServer_SchedulerStatus(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doRequest(t, app, http.MethodGet, "/api/scheduler-status", "")

	require.Equal(t, http.StatusOK, status)
	got := decode[map[string]any](t, body)
	assert.Equal(t, true, got["scheduler_running"])
	assert.Contains(t, got, "jobs")
}

func TestServer_AccountLifecycle(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doRequest(t, app, http.MethodPost, "/api/accounts",
		`{"name":"Guerreiro","bosses":{"medio2":10,"grande2":5},"sala_pico":"Sala 3"}`)
	require.Equal(t, http.StatusOK, status, string(body))
	created := decode[models.ValuedAccount](t, body)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 0.90, created.TotalUSD)
	assert.False(t, created.Confirmed)

	t.Run("get", func(t *testing.T) {
		status, body := doRequest(t, app, http.MethodGet, "/api/accounts/"+created.ID, "")
		require.Equal(t, http.StatusOK, status)
		got := decode[models.ValuedAccount](t, body)
		assert.Equal(t, "Guerreiro", got.Name)
		assert.Equal(t, 10, got.Bosses.Medio2)
	})

	t.Run("partial update keeps other counters", func(t *testing.T) {
		status, body := doRequest(t, app, http.MethodPut, "/api/accounts/"+created.ID,
			`{"bosses":{"medio4":2}}`)
		require.Equal(t, http.StatusOK, status, string(body))
		got := decode[models.ValuedAccount](t, body)
		assert.Equal(t, 10, got.Bosses.Medio2)
		assert.Equal(t, 5, got.Bosses.Grande2)
		assert.Equal(t, 2, got.Bosses.Medio4)
		assert.Equal(t, "Sala 3", got.SalaPico)
		assert.Equal(t, 1.18, got.TotalUSD)
	})

	t.Run("confirm", func(t *testing.T) {
		status, body := doRequest(t, app, http.MethodPost, "/api/accounts/"+created.ID+"/confirm", "")
		require.Equal(t, http.StatusOK, status)
		got := decode[models.ValuedAccount](t, body)
		assert.True(t, got.Confirmed)
		require.NotNil(t, got.ConfirmedAt)
	})

	t.Run("objectives", func(t *testing.T) {
		status, body := doRequest(t, app, http.MethodGet, "/api/accounts/"+created.ID+"/objectives", "")
		require.Equal(t, http.StatusOK, status)
		report := decode[service.ObjectivesReport](t, body)
		assert.Equal(t, created.ID, report.AccountID)
		assert.Len(t, report.Objectives, 3)
	})

	t.Run("delete", func(t *testing.T) {
		status, body := doRequest(t, app, http.MethodDelete, "/api/accounts/"+created.ID, "")
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"message":"Account deleted successfully"}`, string(body))

		status, body = doRequest(t, app, http.MethodGet, "/api/accounts/"+created.ID, "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.JSONEq(t, `{"detail":"Account not found"}`, string(body))
	})
}

func TestServer_UpdateKeepsAccountIDAcrossRequests(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doRequest(t, app, http.MethodPost, "/api/accounts", `{"name":"Guerreiro"}`)
	require.Equal(t, http.StatusOK, status, string(body))
	created := decode[models.ValuedAccount](t, body)

	for _, path := range []string{"/api/accounts/" + created.ID, "/api/accounts/" + created.ID + "/confirm"} {
		method := http.MethodPut
		payload := `{"gold":1}`
		if strings.HasSuffix(path, "/confirm") {
			method, payload = http.MethodPost, ""
		}
		status, body = doRequest(t, app, method, path, payload)
		require.Equal(t, http.StatusOK, status, string(body))
	}

	// requests with an id of the same length reuse the same request buffers
	other := "/api/accounts/" + strings.Repeat("z", len(created.ID))
	for i := 0; i < 50; i++ {
		status, _ = doRequest(t, app, http.MethodGet, other, "")
		require.Equal(t, http.StatusNotFound, status)
	}

	status, body = doRequest(t, app, http.MethodGet, "/api/accounts", "")
	require.Equal(t, http.StatusOK, status)
	listed := decode[[]models.ValuedAccount](t, body)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, 1.0, listed[0].Gold)
	assert.True(t, listed[0].Confirmed)

	status, _ = doRequest(t, app, http.MethodGet, "/api/accounts/"+created.ID, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestServer_NotFound(t *testing.T) {
	app, _ := newTestApp(t)

	requests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/accounts/missing", ""},
		{http.MethodPut, "/api/accounts/missing", `{"name":"x"}`},
		{http.MethodDelete, "/api/accounts/missing", ""},
		{http.MethodPost, "/api/accounts/missing/confirm", ""},
		{http.MethodGet, "/api/accounts/missing/objectives", ""},
	}

	for _, r := range requests {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			status, body := doRequest(t, app, r.method, r.path, r.body)
			assert.Equal(t, http.StatusNotFound, status)
			assert.JSONEq(t, `{"detail":"Account not found"}`, string(body))
		})
	}
}

func TestServer_RejectsInvalidPayloads(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"negative counter", http.MethodPost, "/api/accounts", `{"name":"a","bosses":{"medio2":-1}}`, http.StatusUnprocessableEntity},
		{"missing name", http.MethodPost, "/api/accounts", `{"bosses":{"medio2":1}}`, http.StatusUnprocessableEntity},
		{"wrong type", http.MethodPost, "/api/accounts", `{"name":"a","gold":"lots"}`, http.StatusUnprocessableEntity},
		{"malformed json", http.MethodPost, "/api/accounts", `{"name":`, http.StatusBadRequest},
		{"negative price", http.MethodPut, "/api/boss-prices", `{"medio2_price":-0.5}`, http.StatusUnprocessableEntity},
		{"unknown price", http.MethodPut, "/api/boss-prices", `{"dragao_price":1}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, status, string(body))
			assert.Contains(t, decode[map[string]any](t, body), "detail")
		})
	}
}

func TestServer_BossPrices(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doRequest(t, app, http.MethodGet, "/api/boss-prices", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, *models.DefaultBossPrices(), decode[models.BossPrices](t, body))

	status, body = doRequest(t, app, http.MethodPut, "/api/boss-prices", `{"xama_price":1.5}`)
	require.Equal(t, http.StatusOK, status, string(body))
	updated := decode[models.BossPrices](t, body)
	assert.Equal(t, 1.5, updated.XamaPrice)
	assert.Equal(t, 0.045, updated.Medio2Price)

	status, body = doRequest(t, app, http.MethodGet, "/api/boss-prices", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.5, decode[models.BossPrices](t, body).XamaPrice)
}

func TestServer_ListSweepsExpiredConfirmations(t *testing.T) {
	app, store := newTestApp(t)
	ctx := context.Background()

	expired := models.FormatTimestamp(time.Now().Add(-31 * 24 * time.Hour))
	recent := models.FormatTimestamp(time.Now().Add(-24 * time.Hour))
	require.NoError(t, store.Accounts().Create(ctx, &models.Account{
		ID: "old", Name: "Antiga", Bosses: models.BossQuantities{Medio2: 40}, Gold: 500,
		Confirmed: true, ConfirmedAt: &expired, CreatedAt: expired,
	}))
	require.NoError(t, store.Accounts().Create(ctx, &models.Account{
		ID: "new", Name: "Nova", Bosses: models.BossQuantities{Medio2: 40},
		Confirmed: true, ConfirmedAt: &recent, CreatedAt: recent,
	}))

	status, body := doRequest(t, app, http.MethodGet, "/api/accounts", "")
	require.Equal(t, http.StatusOK, status)
	accounts := decode[[]models.ValuedAccount](t, body)
	require.Len(t, accounts, 2)

	byID := map[string]models.ValuedAccount{}
	for _, a := range accounts {
		byID[a.ID] = a
	}
	assert.False(t, byID["old"].Confirmed)
	assert.Nil(t, byID["old"].ConfirmedAt)
	assert.Zero(t, byID["old"].Bosses.Medio2)
	assert.Zero(t, byID["old"].Gold)
	assert.Zero(t, byID["old"].TotalUSD)

	assert.True(t, byID["new"].Confirmed)
	assert.Equal(t, 40, byID["new"].Bosses.Medio2)
	assert.Equal(t, 1.8, byID["new"].TotalUSD)
}

func TestServer_SearchAndStatistics(t *testing.T) {
	app, _ := newTestApp(t)

	for _, payload := range []string{
		`{"name":"Guerreiro","bosses":{"medio2":10},"gold":100.1}`,
		`{"name":"Maga","bosses":{"grande2":5},"gold":0.2}`,
	} {
		status, body := doRequest(t, app, http.MethodPost, "/api/accounts", payload)
		require.Equal(t, http.StatusOK, status, string(body))
	}

	status, body := doRequest(t, app, http.MethodGet, "/api/accounts?search=guer", "")
	require.Equal(t, http.StatusOK, status)
	found := decode[[]models.ValuedAccount](t, body)
	require.Len(t, found, 1)
	assert.Equal(t, "Guerreiro", found[0].Name)

	status, body = doRequest(t, app, http.MethodGet, "/api/statistics", "")
	require.Equal(t, http.StatusOK, status)
	stats := decode[models.Statistics](t, body)
	assert.Equal(t, 2, stats.TotalAccounts)
	assert.Equal(t, 0, stats.ConfirmedAccounts)
	assert.Equal(t, 10, stats.TotalBosses["medio2"])
	assert.Equal(t, 5, stats.TotalBosses["grande2"])
	assert.Equal(t, 100.3, stats.TotalGold)
	assert.Equal(t, 0.9, stats.TotalUSD)
}

func TestServer_CORS(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORSConfig(t *testing.T) {
	wildcard := corsConfig("*")
	assert.Equal(t, "*", wildcard.AllowOrigins)
	assert.False(t, wildcard.AllowCredentials)

	explicit := corsConfig(" http://a.example , http://b.example,")
	assert.Equal(t, "http://a.example,http://b.example", explicit.AllowOrigins)
	assert.True(t, explicit.AllowCredentials)

	assert.Equal(t, "*", corsConfig("").AllowOrigins)
}
