package neo4j

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/genai-fundamentals/graphrag/graphs"
)

// Neo4j is a graphs.GraphStore backed by a Neo4j server.
type Neo4j struct {
	driver neo4j.DriverWithContext
	opts   *options

	mu     sync.RWMutex
	schema *graphs.Schema
	closed bool
}

var _ graphs.GraphStore = (*Neo4j)(nil)

// NewNeo4j creates a driver for the configured server. The connection is
// established lazily; call VerifyConnectivity to check it.
func NewNeo4j(ctx context.Context, opts ...Option) (*Neo4j, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if err := validateOptions(options); err != nil {
		return nil, err
	}

	driver, err := neo4j.NewDriverWithContext(
		options.uri,
		neo4j.BasicAuth(options.username, options.password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	store := &Neo4j{
		driver: driver,
		opts:   options,
		schema: graphs.NewSchema(),
	}

	if options.refreshSchema {
		if err := store.RefreshSchema(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	return store, nil
}

// VerifyConnectivity checks that the server is reachable and accepts the credentials.
func (n *Neo4j) VerifyConnectivity(ctx context.Context) error {
	if err := n.checkOpen(); err != nil {
		return err
	}
	if err := n.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%w: %w", graphs.ErrConnectivity, err)
	}
	return nil
}

// Query runs a Cypher statement in a managed transaction. Read access is used
// unless graphs.WithWrite(true) is given.
func (n *Neo4j) Query(ctx context.Context, query string, params map[string]any, options ...graphs.Option) (*graphs.Result, error) {
	if err := n.checkOpen(); err != nil {
		return nil, err
	}

	opts := graphs.NewOptions()
	for _, opt := range options {
		opt(opts)
	}
	if !opts.Write && graphs.IsWriteQuery(query) {
		return nil, graphs.ErrWriteNotAllowed
	}

	timeout := n.opts.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	var txConfig []func(*neo4j.TransactionConfig)
	if timeout > 0 {
		txConfig = append(txConfig, neo4j.WithTxTimeout(timeout))
	}

	accessMode := neo4j.AccessModeRead
	if opts.Write {
		accessMode = neo4j.AccessModeWrite
	}
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: n.opts.database,
		AccessMode:   accessMode,
	})
	defer session.Close(ctx)

	start := time.Now()
	work := func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}

		out := &graphs.Result{}
		for res.Next(ctx) {
			if opts.MaxRows > 0 && len(out.Records) >= opts.MaxRows {
				out.Summary.Truncated = true
				break
			}
			rec := res.Record()
			out.Records = append(out.Records, n.convertRecord(rec.Keys, rec.Values))
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		for _, nt := range summary.Notifications() {
			out.Summary.Notifications = append(out.Summary.Notifications, graphs.Notification{
				Code:        nt.Code(),
				Title:       nt.Title(),
				Description: nt.Description(),
			})
		}
		return out, nil
	}

	var raw any
	var err error
	if opts.Write {
		raw, err = session.ExecuteWrite(ctx, work, txConfig...)
	} else {
		raw, err = session.ExecuteRead(ctx, work, txConfig...)
	}
	if err != nil {
		return nil, wrapError(err)
	}

	result := raw.(*graphs.Result)
	result.Summary.Query = query
	result.Summary.Parameters = params
	result.Summary.ExecutionTime = time.Since(start)

	if opts.StrictSchema {
		if err := unknownReference(result.Summary.Notifications); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// GetSchema returns the schema text produced by the last RefreshSchema.
func (n *Neo4j) GetSchema() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.schema.String()
}

// GetStructuredSchema returns the structured schema produced by the last RefreshSchema.
func (n *Neo4j) GetStructuredSchema() map[string]any {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.schema.Structured()
}

// Close closes the driver. Closing twice is a no-op.
func (n *Neo4j) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	return n.driver.Close(context.Background())
}

func (n *Neo4j) checkOpen() error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return graphs.ErrStoreClosed
	}
	return nil
}

var unknownSchemaCodes = map[string]bool{
	"Neo.ClientNotification.Statement.UnknownLabelWarning":            true,
	"Neo.ClientNotification.Statement.UnknownRelationshipTypeWarning": true,
	"Neo.ClientNotification.Statement.UnknownPropertyKeyWarning":      true,
}

func unknownReference(notifications []graphs.Notification) error {
	var msgs []string
	for _, nt := range notifications {
		if unknownSchemaCodes[nt.Code] {
			msgs = append(msgs, nt.Description)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", graphs.ErrUnknownSchemaReference, strings.Join(msgs, "; "))
}

func wrapError(err error) error {
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		switch {
		case strings.HasPrefix(neoErr.Code, "Neo.ClientError.Statement."),
			strings.HasPrefix(neoErr.Code, "Neo.ClientError.Procedure."),
			strings.HasPrefix(neoErr.Code, "Neo.ClientError.Schema."):
			return fmt.Errorf("%w: %w", graphs.ErrInvalidQuery, err)
		case strings.HasPrefix(neoErr.Code, "Neo.ClientError.Security."):
			return fmt.Errorf("%w: %w", graphs.ErrConnectivity, err)
		}
	}
	if neo4j.IsConnectivityError(err) {
		return fmt.Errorf("%w: %w", graphs.ErrConnectivity, err)
	}
	return fmt.Errorf("failed to execute query: %w", err)
}
