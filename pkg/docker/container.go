package docker

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/go-connections/nat"
	"github.com/pkg/errors"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultVersion is the ClickHouse image tag used when none is given.
	DefaultVersion = "25.7"

	httpPort = nat.Port("8123/tcp")
)

var ErrNotRunning = errors.New("server is not running")

type (
	// Options controls the ClickHouse server container.
	Options struct {
		// Version is the clickhouse-server image tag (alpine variant).
		Version string

		// ConfigDir is mounted at /etc/clickhouse-server/config.d when set.
		// Relative paths are resolved against the working directory.
		ConfigDir string
	}

	// Server is a disposable ClickHouse server used to exercise the
	// ClickHouse ledger and backend against a real database.
	Server struct {
		opts      Options
		container *clickhouse.ClickHouseContainer
	}
)

// NewServer creates a stopped server.
//
//	srv := docker.NewServer(docker.Options{})
//	if err := srv.Start(ctx); err != nil {
//		return err
//	}
//	defer func() { _ = srv.Stop(ctx) }()
//
//	dsn, _ := srv.DSN(ctx)
func NewServer(opts Options) *Server {
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}

	return &Server{opts: opts}
}

// Start runs the container and waits for the HTTP interface to answer.
func (s *Server) Start(ctx context.Context) error {
	if s.container != nil {
		return errors.New("server is already running")
	}

	customizers := []testcontainers.ContainerCustomizer{
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword(""),
		testcontainers.WithEnv(map[string]string{"CLICKHOUSE_DEFAULT_ACCESS_MANAGEMENT": "1"}),
		testcontainers.WithWaitStrategyAndDeadline(
			5*time.Minute,
			wait.NewHTTPStrategy("/").
				WithPort(httpPort).
				WithStatusCodeMatcher(func(status int) bool { return status == 200 }),
		),
	}

	if s.opts.ConfigDir != "" {
		dir, err := filepath.Abs(s.opts.ConfigDir)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve config dir: %s", s.opts.ConfigDir)
		}

		customizers = append(customizers, testcontainers.WithHostConfigModifier(func(hc *container.HostConfig) {
			hc.Mounts = []mount.Mount{{
				Type:     mount.TypeBind,
				Source:   dir,
				Target:   "/etc/clickhouse-server/config.d",
				ReadOnly: true,
			}}
		}))
	}

	c, err := clickhouse.Run(ctx, s.Image(), customizers...)
	if err != nil {
		return errors.Wrap(err, "failed to start ClickHouse container")
	}

	s.container = c
	return nil
}

// Stop terminates the container. Stopping a stopped server is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	if s.container == nil {
		return nil
	}

	err := s.container.Terminate(ctx)
	s.container = nil

	return errors.Wrap(err, "failed to stop ClickHouse container")
}

// Image returns the image reference the server runs.
func (s *Server) Image() string {
	return fmt.Sprintf("clickhouse/clickhouse-server:%s-alpine", s.opts.Version)
}

// DSN returns a clickhouse:// connection string for the native protocol.
func (s *Server) DSN(ctx context.Context) (string, error) {
	if s.container == nil {
		return "", ErrNotRunning
	}

	dsn, err := s.container.ConnectionString(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to get connection string")
	}

	return dsn, nil
}

// HTTPAddress returns the http:// address of the server's HTTP interface.
func (s *Server) HTTPAddress(ctx context.Context) (string, error) {
	if s.container == nil {
		return "", ErrNotRunning
	}

	host, err := s.container.Host(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to get container host")
	}

	port, err := s.container.MappedPort(ctx, httpPort)
	if err != nil {
		return "", errors.Wrap(err, "failed to get container port")
	}

	return fmt.Sprintf("http://%s:%s", host, port.Port()), nil
}

func (s *Server) IsRunning() bool {
	return s.container != nil
}
