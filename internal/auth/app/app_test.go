package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/tokengate/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestNewWiresSqliteApplication(t *testing.T) {
	pepper := usePepper(t)
	dir := t.TempDir()

	hash, err := cryptox.HashPassword("s3cret")
	require.NoError(t, err)
	users := writeFile(t, dir, "users.yml", `
users:
  - username: alice
    password_hash: "`+hash+`"
    auth_id: alice-id
    tenant_uuid: tenant-a
`)
	backends := writeFile(t, dir, "backends.yml", `
backends:
  stock:
    enabled: true
    users_file: `+users+`
`)
	tenants := writeFile(t, dir, "tenants.yml", `
tenants:
  - uuid: tenant-a
    name: A
`)

	cfg := LoadConfig()
	cfg.StoreDriver = "sqlite"
	cfg.DatabaseFile = filepath.Join(dir, "auth.db")
	cfg.BackendsFile = backends
	cfg.TenantsFile = tenants
	cfg.PepperFile = pepper
	cfg.InstanceUUID = ""
	cfg.TokenCache = true

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	require.NotEmpty(t, app.cfg.InstanceUUID)
	require.Equal(t, 1, app.tenants.Len())
	require.True(t, app.refresher.Healthy())

	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(`{"expiration": 60}`))
	req.SetBasicAuth("alice", "s3cret")
	rec = httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), app.cfg.InstanceUUID)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	cfg := LoadConfig()
	cfg.StoreDriver = "mysql"

	_, err := New(cfg)
	require.ErrorContains(t, err, "unknown store driver")
}

func TestNewRequiresDatabaseURLForPostgres(t *testing.T) {
	cfg := LoadConfig()
	cfg.StoreDriver = "postgres"
	cfg.DatabaseURL = ""

	_, err := New(cfg)
	require.ErrorContains(t, err, "AUTH_DATABASE_URL")
}
