package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/auth"
	"github.com/kanbanforge/kanband/internal/config"
	"github.com/kanbanforge/kanband/internal/engine"
	"github.com/kanbanforge/kanband/internal/eventbus"
	"github.com/kanbanforge/kanband/internal/httpapi"
	"github.com/kanbanforge/kanband/internal/service"
	"github.com/kanbanforge/kanband/internal/storage/sqlite"
	"github.com/kanbanforge/kanband/internal/types"
)

type noopBackupEngine struct{}

func (noopBackupEngine) Snapshot(ctx context.Context, backupType types.BackupType, retentionDays int, parentBackupID string) (*types.Backup, error) {
	return &types.Backup{Name: "test", Type: backupType, Status: types.BackupVerified}, nil
}
func (noopBackupEngine) Verify(b *types.Backup) error { return nil }

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	store, err := sqlite.Open(context.Background(), sqlite.Options{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	hub := eventbus.New(zerolog.Nop())
	hasher := auth.NewHasher("test-secret")
	svc := service.New(store, hub, zerolog.Nop(), engine.DefaultConfig(), hasher)

	rawKey, _, err := svc.CreateAPIKey(context.Background(), "test-key", nil)
	require.NoError(t, err)

	cfg := config.Defaults()
	cfg.APIKeySecret = "test-secret"
	cfg.RateLimitMax = 1000

	router := httpapi.NewRouter(svc, noopBackupEngine{}, nil, cfg, zerolog.Nop())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, rawKey
}

func doJSON(t *testing.T, srv *httptest.Server, key, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthEndpoint_IsUnauthenticated(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, srv, "", "GET", "/api/database/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIRoutes_RejectMissingKey(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, srv, "", "GET", "/api/boards", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateAndListBoard_RoundTrips(t *testing.T) {
	srv, key := newTestServer(t)

	resp := doJSON(t, srv, key, "POST", "/api/boards", map[string]string{"name": "Engineering"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data types.Board `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.Data.ID)

	resp = doJSON(t, srv, key, "GET", "/api/boards", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed struct {
		Data []types.Board `json:"data"`
		Meta struct {
			Pagination httpapi.Pagination `json:"pagination"`
		} `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed.Data, 2)
	require.Equal(t, 2, listed.Meta.Pagination.Total)
}

func TestCreateTask_ValidationErrorHasFieldDetails(t *testing.T) {
	srv, key := newTestServer(t)
	resp := doJSON(t, srv, key, "POST", "/api/tasks", map[string]string{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "VALIDATION", body.Error.Code)
	require.NotEmpty(t, body.Error.Details)
}

func TestCreateBackup_PersistsAndLists(t *testing.T) {
	srv, key := newTestServer(t)

	resp := doJSON(t, srv, key, "POST", "/api/backup", map[string]string{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, srv, key, "GET", "/api/backup", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed struct {
		Data []types.Backup `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed.Data, 1)
}
