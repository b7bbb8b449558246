package docker_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/pseudomuto/steward/pkg/consts"
	"github.com/pseudomuto/steward/pkg/docker"
	"github.com/stretchr/testify/require"
)

const testConfig = `<?xml version="1.0"?>
<clickhouse>
    <logger>
        <level>warning</level>
        <console>true</console>
    </logger>
</clickhouse>`

func skipIfNoDocker(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping Docker tests in short mode")
	}

	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("Docker not available")
	}

	if err := exec.Command("docker", "ps").Run(); err != nil {
		t.Skip("Docker daemon not running")
	}
}

func TestNewServer(t *testing.T) {
	require.Equal(t, "clickhouse/clickhouse-server:25.7-alpine", docker.NewServer(docker.Options{}).Image())
	require.Equal(t, "clickhouse/clickhouse-server:24.3-alpine", docker.NewServer(docker.Options{Version: "24.3"}).Image())
}

func TestServerNotRunning(t *testing.T) {
	ctx := context.Background()
	srv := docker.NewServer(docker.Options{})

	require.False(t, srv.IsRunning())
	require.NoError(t, srv.Stop(ctx))

	_, err := srv.DSN(ctx)
	require.ErrorIs(t, err, docker.ErrNotRunning)

	_, err = srv.HTTPAddress(ctx)
	require.ErrorIs(t, err, docker.ErrNotRunning)
}

func TestServerStartStop(t *testing.T) {
	skipIfNoDocker(t)

	configDir := filepath.Join(t.TempDir(), "config.d")
	require.NoError(t, os.MkdirAll(configDir, consts.ModeDir))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "logger.xml"), []byte(testConfig), consts.ModeFile))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	srv := docker.NewServer(docker.Options{ConfigDir: configDir})
	require.NoError(t, srv.Start(ctx))
	defer func() { _ = srv.Stop(ctx) }()

	require.True(t, srv.IsRunning())
	require.Error(t, srv.Start(ctx))

	dsn, err := srv.DSN(ctx)
	require.NoError(t, err)
	require.Contains(t, dsn, "clickhouse://")

	addr, err := srv.HTTPAddress(ctx)
	require.NoError(t, err)
	require.Contains(t, addr, "http://")

	require.NoError(t, srv.Stop(ctx))
	require.False(t, srv.IsRunning())
}
