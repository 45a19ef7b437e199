package kuzu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kuzudb/go-kuzu"

	"github.com/genai-fundamentals/graphrag/graphs"
)

var (
	ErrDangerousRequestsDisabled = errors.New("dangerous requests are disabled - enable with WithAllowDangerousRequests(true)")
	ErrDatabaseCreationFailed    = errors.New("failed to create kuzu database")
	ErrConnectionCreationFailed  = errors.New("failed to create kuzu connection")
)

// Kuzu implements the graphs.GraphStore interface for KuzuDB.
type Kuzu struct {
	database   *kuzu.Database
	connection *kuzu.Connection
	options    *options

	// queryMux serializes statements on the single connection.
	queryMux sync.Mutex
	// connMux guards the connection pointer for Interrupt.
	connMux sync.RWMutex

	schemaMux sync.RWMutex
	schema    *graphs.Schema
}

var _ graphs.GraphStore = (*Kuzu)(nil)

// NewKuzu opens an embedded KuzuDB database and a connection to it.
func NewKuzu(opts ...Option) (*Kuzu, error) {
	options := &options{excludeEmbeddings: true}
	for _, opt := range opts {
		opt(options)
	}
	applyDefaults(options)

	if !options.allowDangerousRequests {
		return nil, ErrDangerousRequestsDisabled
	}

	k := &Kuzu{
		options: options,
		schema:  graphs.NewSchema(),
	}
	if err := k.connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to kuzu: %w", err)
	}
	return k, nil
}

func (k *Kuzu) connect() error {
	var err error

	systemConfig := kuzu.DefaultSystemConfig()
	systemConfig.BufferPoolSize = k.options.bufferPoolSize
	systemConfig.MaxNumThreads = k.options.maxNumThreads

	if k.options.inMemory {
		k.database, err = kuzu.OpenInMemoryDatabase(systemConfig)
	} else {
		k.database, err = kuzu.OpenDatabase(k.options.databasePath, systemConfig)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseCreationFailed, err)
	}

	k.connection, err = kuzu.OpenConnection(k.database)
	if err != nil {
		k.database.Close()
		k.database = nil
		return fmt.Errorf("%w: %v", ErrConnectionCreationFailed, err)
	}

	k.connection.SetMaxNumThreads(k.options.maxNumThreads)
	if k.options.timeout > 0 {
		k.connection.SetTimeout(uint64(k.options.timeout.Milliseconds()))
	}
	return nil
}

// Close closes the connection and the database. Closing twice is a no-op.
func (k *Kuzu) Close() error {
	k.queryMux.Lock()
	defer k.queryMux.Unlock()
	k.connMux.Lock()
	defer k.connMux.Unlock()

	if k.connection != nil {
		k.connection.Close()
		k.connection = nil
	}
	if k.database != nil {
		k.database.Close()
		k.database = nil
	}
	return nil
}

// VerifyConnectivity runs a trivial query against the database.
func (k *Kuzu) VerifyConnectivity(ctx context.Context) error {
	if _, err := k.Query(ctx, "RETURN 1 AS health_check", nil); err != nil {
		if errors.Is(err, graphs.ErrStoreClosed) {
			return err
		}
		return fmt.Errorf("%w: %w", graphs.ErrConnectivity, err)
	}
	return nil
}

type outcome struct {
	result *graphs.Result
	err    error
}

// Query executes a Cypher statement. Parameters go through a prepared
// statement. Cancelling ctx interrupts the running statement.
func (k *Kuzu) Query(ctx context.Context, query string, params map[string]any, options ...graphs.Option) (*graphs.Result, error) {
	opts := graphs.NewOptions()
	for _, opt := range options {
		opt(opts)
	}
	if !opts.Write && graphs.IsWriteQuery(query) {
		return nil, graphs.ErrWriteNotAllowed
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	done := make(chan outcome, 1)
	go func() {
		k.queryMux.Lock()
		defer k.queryMux.Unlock()
		res, err := k.run(query, params, opts.MaxRows)
		done <- outcome{result: res, err: err}
	}()

	select {
	case <-ctx.Done():
		k.interrupt()
		return nil, ctx.Err()
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		out.result.Summary.Query = query
		out.result.Summary.Parameters = params
		return out.result, nil
	}
}

func (k *Kuzu) interrupt() {
	k.connMux.RLock()
	defer k.connMux.RUnlock()
	if k.connection != nil {
		k.connection.Interrupt()
	}
}

// run executes a statement on the connection. Callers hold queryMux.
func (k *Kuzu) run(query string, params map[string]any, maxRows int) (*graphs.Result, error) {
	if k.connection == nil {
		return nil, graphs.ErrStoreClosed
	}

	start := time.Now()
	var result *kuzu.QueryResult
	var err error
	if len(params) > 0 {
		result, err = k.executeWithParameters(query, params)
	} else {
		result, err = k.connection.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", graphs.ErrInvalidQuery, err)
	}
	defer result.Close()

	out, err := k.convertQueryResult(result, maxRows)
	if err != nil {
		return nil, err
	}
	out.Summary.ExecutionTime = time.Since(start)
	return out, nil
}

func (k *Kuzu) executeWithParameters(query string, params map[string]any) (*kuzu.QueryResult, error) {
	stmt, err := k.connection.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	kuzuParams := make(map[string]any, len(params))
	for key, value := range params {
		kuzuParams[key] = convertParam(value)
	}

	result, err := k.connection.Execute(stmt, kuzuParams)
	if err != nil {
		return nil, fmt.Errorf("failed to execute prepared statement: %w", err)
	}
	return result, nil
}

func (k *Kuzu) convertQueryResult(result *kuzu.QueryResult, maxRows int) (*graphs.Result, error) {
	columns := result.GetColumnNames()
	out := &graphs.Result{}

	for result.HasNext() {
		if maxRows > 0 && len(out.Records) >= maxRows {
			out.Summary.Truncated = true
			break
		}

		tuple, err := result.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to get next tuple: %w", err)
		}
		row, err := tuple.GetAsMap()
		tuple.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to convert tuple to map: %w", err)
		}

		values := make([]any, len(columns))
		for i, col := range columns {
			values[i] = convertValue(row[col])
		}
		out.Records = append(out.Records, graphs.NewRecord(columns, values))
	}

	return out, nil
}

// Exec runs statements one after another with write access, typically DDL
// and seed data. It stops at the first failure.
func (k *Kuzu) Exec(ctx context.Context, statements ...string) error {
	for i, stmt := range statements {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := k.Query(ctx, stmt, nil, graphs.WithWrite(true), graphs.WithMaxRows(0)); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}
