package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/USA-RedDragon/ota-server/internal/channels"
	"github.com/USA-RedDragon/ota-server/internal/config"
	"github.com/USA-RedDragon/ota-server/internal/db"
	"github.com/USA-RedDragon/ota-server/internal/db/models"
	"github.com/USA-RedDragon/ota-server/internal/server"
	"github.com/USA-RedDragon/ota-server/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "changeme"

type testServer struct {
	t      *testing.T
	router *gin.Engine
	apiKey string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		Persistence: config.Persistence{
			Database: config.Database{
				Driver:   config.DatabaseDriverSQLite,
				Database: filepath.Join(t.TempDir(), "ota.db"),
			},
		},
		JWT: config.JWT{Secret: secret},
	}
	database, err := db.MakeDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	user, err := models.FindOrCreateUser(database, "owner")
	require.NoError(t, err)
	apiKey, err := utils.GenerateJWT(secret, user.ID)
	require.NoError(t, err)

	engine := channels.NewEngine(db.NewStore(database))
	return &testServer{t: t, router: server.NewRouter(cfg, database, engine), apiKey: apiKey}
}

func (s *testServer) do(method, path, apiKey string, body any) (int, map[string]any) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func (s *testServer) admin(method, path string, body any) (int, map[string]any) {
	s.t.Helper()
	return s.do(method, path, s.apiKey, body)
}

func device(deviceID, channel string) map[string]any {
	return map[string]any{
		"app_id":        "com.example.app",
		"device_id":     deviceID,
		"version_name":  "builtin",
		"version_build": "2.3",
		"platform":      "android",
		"channel":       channel,
	}
}

// seed creates an app with a public prod channel serving 2.4.0 and a
// self-settable beta channel.
func (s *testServer) seed() {
	s.t.Helper()
	code, _ := s.admin(http.MethodPost, "/app", map[string]any{"app_id": "com.example.app", "name": "Example"})
	require.Equal(s.t, http.StatusCreated, code)
	code, _ = s.admin(http.MethodPost, "/bundle", map[string]any{"app_id": "com.example.app", "version": "2.4.0"})
	require.Equal(s.t, http.StatusOK, code)
	code, _ = s.admin(http.MethodPost, "/channel", map[string]any{
		"app_id":  "com.example.app",
		"channel": "prod",
		"version": "2.4.0",
		"public":  true,
	})
	require.Equal(s.t, http.StatusOK, code)
	code, _ = s.admin(http.MethodPost, "/channel", map[string]any{
		"app_id":                "com.example.app",
		"channel":               "beta",
		"allow_device_self_set": true,
	})
	require.Equal(s.t, http.StatusOK, code)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	code, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, body := s.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Not Found", body["error"])
}

func TestChannelSelfFlow(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.seed()

	code, body := s.do(http.MethodPost, "/updates", "", device("d1", ""))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "prod", body["channel"])
	assert.Equal(t, "default", body["status"])
	assert.Equal(t, "2.4.0", body["version"])

	code, body = s.do(http.MethodPut, "/channel_self", "", device("d1", ""))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "prod", body["channel"])
	assert.Equal(t, false, body["allowSet"])

	code, body = s.do(http.MethodPost, "/channel_self", "", device("d1", "beta"))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "beta", body["channel"])

	code, body = s.do(http.MethodPut, "/channel_self", "", device("d1", ""))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "beta", body["channel"])
	assert.Equal(t, "override", body["status"])
	assert.Equal(t, true, body["allowSet"])

	code, body = s.do(http.MethodPost, "/updates", "", device("d1", ""))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "beta", body["channel"])
	assert.Equal(t, "No bundle assigned to channel", body["message"])

	code, body = s.do(http.MethodPost, "/channel_self", "", device("d1", "prod"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "channel_not_found", body["status"])

	code, _ = s.do(http.MethodDelete, "/channel_self", "", device("d1", ""))
	require.Equal(t, http.StatusOK, code)
	code, body = s.do(http.MethodPut, "/channel_self", "", device("d1", ""))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "prod", body["channel"])
}

func TestPinnedDevice(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.seed()

	code, _ := s.admin(http.MethodPost, "/device", map[string]any{
		"app_id":    "com.example.app",
		"device_id": "d1",
		"channel":   "prod",
	})
	require.Equal(t, http.StatusOK, code)

	code, body := s.do(http.MethodPost, "/channel_self", "", device("d1", "beta"))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "override_not_permitted", body["status"])

	code, body = s.do(http.MethodDelete, "/channel_self", "", device("d1", ""))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "override_not_permitted", body["status"])

	code, body = s.do(http.MethodPut, "/channel_self", "", device("d1", ""))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "prod", body["channel"])
	assert.Equal(t, "override", body["status"])

	code, _ = s.admin(http.MethodDelete, "/device?app_id=com.example.app&device_id=d1", nil)
	require.Equal(t, http.StatusOK, code)
	code, body = s.do(http.MethodPost, "/channel_self", "", device("d1", "beta"))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "beta", body["channel"])
}

func TestDeviceErrors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.seed()

	bad := device("d1", "")
	bad["version_build"] = "not-a-version"
	code, body := s.do(http.MethodPost, "/updates", "", bad)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_version_format", body["status"])

	missing := device("d1", "")
	delete(missing, "device_id")
	code, body = s.do(http.MethodPost, "/updates", "", missing)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body", body["error"])

	explicit := device("d1", "beta")
	explicit["version_name"] = "9.9.9"
	code, body = s.do(http.MethodPost, "/channel_self", "", explicit)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "bundle_not_found", body["status"])

	code, body = s.do(http.MethodPost, "/updates", "", map[string]any{
		"app_id":        "com.unknown",
		"device_id":     "d1",
		"version_build": "1.0",
		"platform":      "ios",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "channel_not_found", body["status"])
}

func TestUpdatesCarriesBundle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.seed()

	code, body := s.do(http.MethodPost, "/updates", "", device("d1", ""))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2.4.0", body["version"])
	bundle, ok := body["bundle"].(map[string]any)
	require.True(t, ok, "bundle missing from %v", body)
	assert.Equal(t, "2.4.0", bundle["name"])
	id, ok := bundle["id"].(float64)
	require.True(t, ok)
	assert.Positive(t, id)

	current := device("d2", "")
	current["version_name"] = "2.4.0"
	code, body = s.do(http.MethodPost, "/updates", "", current)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "No new version available", body["message"])
	assert.NotContains(t, body, "version")
	bundle, ok = body["bundle"].(map[string]any)
	require.True(t, ok, "bundle missing from %v", body)
	assert.Equal(t, "2.4.0", bundle["name"])
	assert.InDelta(t, id, bundle["id"], 0)

	code, body = s.do(http.MethodPost, "/updates", "", device("d3", "beta"))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "No bundle assigned to channel", body["message"])
	assert.NotContains(t, body, "bundle")
}

func TestTrailingSlash(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	router := &server.Router{Engine: s.router}

	for _, path := range []string{"/health", "/health/"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestServerStartStop(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		HTTP: config.HTTP{
			HTTPListener: config.HTTPListener{IPV4Host: "127.0.0.1", IPV6Host: "::1"},
			Metrics: config.Metrics{
				HTTPListener: config.HTTPListener{IPV4Host: "127.0.0.1", IPV6Host: "::1"},
				Enabled:      true,
			},
		},
		Persistence: config.Persistence{
			Database: config.Database{
				Driver:   config.DatabaseDriverSQLite,
				Database: filepath.Join(t.TempDir(), "ota.db"),
			},
		},
		JWT: config.JWT{Secret: secret},
	}
	database, err := db.MakeDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	srv := server.NewServer(cfg, database, channels.NewEngine(db.NewStore(database)))
	require.NoError(t, srv.Start())
	require.NoError(t, srv.Stop())
}

func TestAdminAuth(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.seed()

	code, _ := s.do(http.MethodGet, "/channel?app_id=com.example.app", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodGet, "/channel?app_id=com.example.app", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	// A key for a user that does not exist.
	ghost, err := utils.GenerateJWT(secret, 999)
	require.NoError(t, err)
	code, _ = s.do(http.MethodGet, "/channel?app_id=com.example.app", ghost, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.admin(http.MethodGet, "/channel?app_id=com.other.app", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAdminChannels(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.seed()

	code, body := s.admin(http.MethodGet, "/channel?app_id=com.example.app", nil)
	require.Equal(t, http.StatusOK, code)
	list, ok := body["channels"].([]any)
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.Equal(t, "prod", list[0].(map[string]any)["name"])

	code, body = s.admin(http.MethodGet, "/channel?app_id=com.example.app&channel=prod", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["public"])
	assert.Equal(t, true, body["ios"])
	assert.Equal(t, false, body["allow_device_self_set"])
	version, ok := body["version"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2.4.0", version["name"])

	// Partial update keeps the other flags and drops the bundle.
	code, body = s.admin(http.MethodPost, "/channel", map[string]any{
		"app_id":  "com.example.app",
		"channel": "prod",
		"ios":     false,
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["public"])
	assert.Equal(t, false, body["ios"])
	assert.Nil(t, body["version"])

	code, body = s.admin(http.MethodPost, "/channel", map[string]any{
		"app_id":  "com.example.app",
		"channel": "prod",
		"version": "0.0.1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "bundle_not_found", body["status"])

	code, _ = s.admin(http.MethodDelete, "/channel?app_id=com.example.app&channel=beta", nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.admin(http.MethodDelete, "/channel?app_id=com.example.app&channel=beta", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.admin(http.MethodGet, "/channel?app_id=com.example.app&channel=beta", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdminBundles(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.seed()

	code, _ := s.admin(http.MethodPost, "/bundle", map[string]any{"app_id": "com.example.app", "version": "2.5.0"})
	require.Equal(t, http.StatusOK, code)
	code, _ = s.admin(http.MethodPost, "/bundle", map[string]any{"app_id": "com.example.app", "version": "builtin"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := s.admin(http.MethodGet, "/bundle?app_id=com.example.app", nil)
	require.Equal(t, http.StatusOK, code)
	bundles, ok := body["bundles"].([]any)
	require.True(t, ok)
	require.Len(t, bundles, 2)
	assert.Equal(t, "2.5.0", bundles[0].(map[string]any)["name"])

	code, _ = s.admin(http.MethodDelete, "/bundle?app_id=com.example.app&version=2.4.0", nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.admin(http.MethodDelete, "/bundle?app_id=com.example.app&version=0.0.0", nil)
	assert.Equal(t, http.StatusNotFound, code)

	// The prod channel still points at the deleted bundle, which is no longer served.
	code, body = s.do(http.MethodPost, "/updates", "", device("d1", ""))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "prod", body["channel"])
	assert.Equal(t, "No bundle assigned to channel", body["message"])

	code, body = s.admin(http.MethodDelete, "/bundle?app_id=com.example.app", nil)
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 1, body["deleted"], 0)

	code, body = s.admin(http.MethodGet, "/bundle?app_id=com.example.app", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["bundles"])
}
