package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLivezEndpoint verifies the liveness check endpoint works.
func TestLivezEndpoint(t *testing.T) {
	client := setupAuthContainer(t)

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)

	t.Logf("Livez endpoint is healthy")
}

// TestReadyzEndpoint verifies readiness once the database and tenant index are up.
func TestReadyzEndpoint(t *testing.T) {
	client := setupAuthContainer(t)

	health, err := client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Tenants)

	t.Logf("Readyz endpoint is healthy")
}

// TestBackendsEndpoint verifies the enabled backends are listed.
func TestBackendsEndpoint(t *testing.T) {
	client := setupAuthContainer(t)

	names, err := client.ListBackends(t.Context())
	require.NoError(t, err)
	require.Equal(t, []string{"stock"}, names)
}
