package clickhouse

import (
	"context"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/pkg/errors"
)

type (
	// TLSSettings points at the PEM files used for mTLS connections.
	TLSSettings struct {
		CAFile             string
		CertFile           string
		KeyFile            string
		InsecureSkipVerify bool
	}

	// ClientOptions configures a Client.
	ClientOptions struct {
		// DSN is either host:port or a clickhouse:// URL.
		DSN string

		// Cluster is appended as ON CLUSTER to the ledger's DDL.
		Cluster string

		TLSSettings
	}

	// Conn is the subset of driver.Conn used by the ledger and backend.
	Conn interface {
		Exec(ctx context.Context, query string, args ...any) error
		Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
	}

	// Client represents a ClickHouse database connection.
	Client struct {
		conn    driver.Conn
		cluster string
	}
)

// NewClient opens and pings a ClickHouse connection.
//
// Example:
//
//	client, err := clickhouse.NewClient(ctx, clickhouse.ClientOptions{
//		DSN:     "clickhouse://default:@localhost:9000/default",
//		Cluster: "production",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	chOpts, err := parseDSN(opts.DSN)
	if err != nil {
		return nil, err
	}

	if opts.CertFile != "" || opts.CAFile != "" {
		tlsCfg, err := GetTLSConfig(opts)
		if err != nil {
			return nil, err
		}
		chOpts.TLS = tlsCfg
	}

	conn, err := clickhouse.Open(chOpts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to ClickHouse")
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "failed to connect to ClickHouse")
	}

	return &Client{conn: conn, cluster: opts.Cluster}, nil
}

func parseDSN(dsn string) (*clickhouse.Options, error) {
	if dsn == "" {
		return nil, errors.New("ClickHouse DSN is required")
	}

	if !strings.Contains(dsn, "://") {
		return &clickhouse.Options{Addr: []string{dsn}}, nil
	}

	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid ClickHouse DSN: %s", dsn)
	}

	return opts, nil
}

func (c *Client) Exec(ctx context.Context, query string, args ...any) error {
	return c.conn.Exec(ctx, query, args...)
}

func (c *Client) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	return c.conn.Query(ctx, query, args...)
}

// Cluster returns the configured cluster name, if any.
func (c *Client) Cluster() string {
	return c.cluster
}

// Close closes the ClickHouse connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
