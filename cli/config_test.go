package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const runFileFixture = `machines:
  - name: perf-client-0
    public_address: 10.0.0.4
    user: azureuser
  - name: perf-server-0
    public_address: 10.0.0.5
    user: azureuser
params:
  - startThread=1
  - maxThread=1024
  - fileSize=4g
store:
  endpoint: db.example.com:3306
  user: perf
  password: secret
  database: results
  table: fio_sweep
  test_case_tag: perf_fio_4k
host_type: HyperV
guest_size: Standard_D64s_v3
poll_interval: 20s
timeout: 2h
`

func TestLoadRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(runFileFixture), 0o644))

	cfg, err := loadRunFile(path)
	require.NoError(t, err)

	require.Len(t, cfg.Machines, 2)
	require.Equal(t, "perf-client-0", cfg.Machines[0].Name)
	require.Equal(t, "azureuser@10.0.0.4", cfg.Machines[0].Host())
	require.Equal(t, []string{"startThread=1", "maxThread=1024", "fileSize=4g"}, cfg.Params)
	require.True(t, cfg.Store.Complete())
	require.Equal(t, "fio_sweep", cfg.Store.Table)
	require.Equal(t, 20*time.Second, cfg.PollInterval)
	require.Equal(t, 2*time.Hour, cfg.Timeout)
}

func TestLoadRunFileBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("poll_interval: soon\n"), 0o644))

	_, err := loadRunFile(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "poll_interval")
}
