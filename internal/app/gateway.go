package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/bft-labs/inspectgw/internal/domain"
	"github.com/bft-labs/inspectgw/internal/ports"
	"github.com/bft-labs/inspectgw/pkg/log"
)

// GatewayConfig holds the tunables of the query gateway.
type GatewayConfig struct {
	// Query is the dialect-specific range join (see sqlstore.RangeQuery).
	// It must bind :start_date and :end_date.
	Query string

	// LogRows logs bound parameters and fetched rows at debug level.
	LogRows bool
}

// Gateway runs the inspection search: validate, open a session, execute,
// shape the rows and release the session.
type Gateway struct {
	cfg      GatewayConfig
	opener   ports.SessionOpener
	observer ports.SearchObserver
	logger   log.Logger
}

// NewGateway creates a Gateway. A nil observer or logger is replaced by a no-op.
func NewGateway(cfg GatewayConfig, opener ports.SessionOpener, observer ports.SearchObserver, logger log.Logger) *Gateway {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Gateway{
		cfg:      cfg,
		opener:   opener,
		observer: observer,
		logger:   logger,
	}
}

// Search returns the records whose inspection started within [req.Start, req.End].
//
// The error is either *domain.ValidationError (no session was opened) or
// *domain.StorageError. An empty range yields an empty, non-nil slice.
func (g *Gateway) Search(ctx context.Context, req domain.SearchRequest) (records []domain.Record, err error) {
	began := time.Now()
	defer func() {
		g.observer.ObserveSearch(outcome(err), time.Since(began))
	}()

	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	session, err := g.opener.Open(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: domain.OpConnect, Err: err}
	}
	g.observer.SessionOpened()
	defer func() {
		if cerr := session.Close(); cerr != nil {
			g.logger.Warn("close session", log.Err(cerr))
		}
		g.observer.SessionClosed()
	}()

	if g.cfg.LogRows {
		g.logger.Debug("search parameters",
			log.String("start", req.Start),
			log.String("end", req.End))
	}

	rows, err := session.Query(ctx, g.cfg.Query,
		sql.Named("start_date", req.Start),
		sql.Named("end_date", req.End))
	if err != nil {
		return nil, &domain.StorageError{Op: domain.OpExecute, Err: err}
	}
	defer rows.Close()

	records, err = scanRecords(rows)
	if err != nil {
		return nil, &domain.StorageError{Op: domain.OpFetch, Err: err}
	}

	if g.cfg.LogRows {
		g.logger.Debug("rows fetched",
			log.Int("count", len(records)),
			log.Any("rows", records))
	}
	return records, nil
}

// scanRecords drains rows into records keyed by lower-cased column name.
func scanRecords(rows ports.Rows) ([]domain.Record, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := []domain.Record{}
	for rows.Next() {
		values := make([]interface{}, len(names))
		dest := make([]interface{}, len(names))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = normalize(v)
		}
		records = append(records, domain.NewRecord(names, values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// normalize turns driver byte slices into strings so they encode as JSON
// text rather than base64.
func normalize(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func outcome(err error) string {
	switch err.(type) {
	case nil:
		return ports.OutcomeOK
	case *domain.ValidationError:
		return ports.OutcomeInvalid
	default:
		return ports.OutcomeStorageError
	}
}

type noopObserver struct{}

func (noopObserver) SessionOpened()                      {}
func (noopObserver) SessionClosed()                      {}
func (noopObserver) ObserveSearch(string, time.Duration) {}
