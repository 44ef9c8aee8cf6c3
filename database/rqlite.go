package database

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dnldd/screener/pipeline"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

// RqliteConfig is the configuration for the rqlite store.
type RqliteConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// RqliteStore represents an rqlite backed store of pipeline rows.
type RqliteStore struct {
	cfg    *RqliteConfig
	client *rqlitehttp.Client
}

// Ensure the rqlite store implements the IndicatorStorer interface.
var _ IndicatorStorer = (*RqliteStore)(nil)

// NewRqliteStore initializes a new rqlite store connection.
func NewRqliteStore(ctx context.Context, cfg *RqliteConfig) (*RqliteStore, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	if cfg.User != "" {
		client.SetBasicAuth(cfg.User, cfg.Pass)
	}

	store := &RqliteStore{
		cfg:    cfg,
		client: client,
	}

	err = store.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return store, nil
}

// execute runs the provided statements in a transaction.
func (s *RqliteStore) execute(ctx context.Context, stmts rqlitehttp.SQLStatements) error {
	resp, err := s.client.Execute(ctx, stmts, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("statement %d: %s", idx, errStr)
	}

	return nil
}

// bootstrap initializes the database.
func (s *RqliteStore) bootstrap(ctx context.Context) error {
	return s.execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createIndicatorRowsSQL},
		{SQL: createIndicatorRowsIndexSQL},
	})
}

// Persist stores the rows of a symbol in a single transaction.
func (s *RqliteStore) Persist(ctx context.Context, runID string, symbol string, rows []pipeline.Row) error {
	if len(rows) == 0 {
		return nil
	}

	now := time.Now().Unix()
	stmts := make(rqlitehttp.SQLStatements, 0, len(rows))
	for idx := range rows {
		stmts = append(stmts, rqlitehttp.SQLStatements{{
			SQL:              persistIndicatorRowSQL,
			PositionalParams: rowParams(runID, symbol, idx, &rows[idx], now),
		}}...)
	}

	err := s.execute(ctx, stmts)
	if err != nil {
		return fmt.Errorf("persisting %s rows: %w", symbol, err)
	}

	s.cfg.Logger.Debug().Msgf("persisted %d %s rows for run %s", len(rows), symbol, runID)

	return nil
}
