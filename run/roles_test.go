package run

import (
	"errors"
	"testing"

	"github.com/iosweep/iosweep/model"
	"github.com/stretchr/testify/require"
)

func TestResolveRoles(t *testing.T) {
	machines := []model.Machine{
		{Name: "perf-Client-01", PublicAddress: "10.0.0.4"},
		{Name: "perf-SERVER-01", PublicAddress: "10.0.0.5"},
	}

	client, server, err := ResolveRoles(machines)
	require.NoError(t, err)
	require.Equal(t, "perf-Client-01", client.Name)
	require.Equal(t, "perf-SERVER-01", server.Name)
}

func TestResolveRolesMissingRole(t *testing.T) {
	machines := []model.Machine{
		{Name: "perf-client-01"},
		{Name: "perf-worker-01"},
	}

	_, _, err := ResolveRoles(machines)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	require.Contains(t, cfgErr.Reason, "server")
}

func TestResolveRolesRejectsNameMatchingBothRoles(t *testing.T) {
	machines := []model.Machine{
		{Name: "client-server-proxy"},
		{Name: "perf-server-01"},
	}

	_, _, err := ResolveRoles(machines)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	require.Contains(t, cfgErr.Reason, "both")
	require.Contains(t, cfgErr.Reason, "client-server-proxy")
}

func TestResolveRolesDuplicateRole(t *testing.T) {
	machines := []model.Machine{
		{Name: "client-a"},
		{Name: "client-b"},
		{Name: "server-a"},
	}

	_, _, err := ResolveRoles(machines)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	require.Contains(t, cfgErr.Reason, "client")
}
