package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	logAdapter "github.com/bft-labs/inspectgw/internal/adapters/log"
	"github.com/bft-labs/inspectgw/internal/adapters/sqlstore"
	"github.com/bft-labs/inspectgw/internal/adapters/sqlstore/sqlstoretest"
	"github.com/bft-labs/inspectgw/internal/domain"
	"github.com/bft-labs/inspectgw/internal/ports"
)

type (
	// countingOpener wraps an opener and counts sessions still open.
	countingOpener struct {
		next ports.SessionOpener

		mu     sync.Mutex
		opened int
		closed int
	}

	countingSession struct {
		ports.Session
		owner *countingOpener
	}

	// fakeOpener returns canned sessions or errors.
	fakeOpener struct {
		err     error
		session *fakeSession
		calls   int
	}

	fakeSession struct {
		rows     *fakeRows
		queryErr error
		closed   bool
	}

	fakeRows struct {
		columns []string
		data    [][]interface{}
		scanErr error
		iterErr error
		pos     int
		closed  bool
	}

	outcomeRecorder struct {
		mu       sync.Mutex
		opened   int
		closed   int
		outcomes []string
	}
)

func (c *countingOpener) Open(ctx context.Context) (ports.Session, error) {
	s, err := c.next.Open(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.opened++
	c.mu.Unlock()
	return &countingSession{Session: s, owner: c}, nil
}

func (c *countingOpener) open() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened - c.closed
}

func (s *countingSession) Close() error {
	s.owner.mu.Lock()
	s.owner.closed++
	s.owner.mu.Unlock()
	return s.Session.Close()
}

func (f *fakeOpener) Open(context.Context) (ports.Session, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (s *fakeSession) Query(context.Context, string, ...interface{}) (ports.Rows, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.rows, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func (r *fakeRows) Columns() ([]string, error) { return r.columns, nil }

func (r *fakeRows) Next() bool {
	if r.scanErr == nil && r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	for i, v := range r.data[r.pos-1] {
		*(dest[i].(*interface{})) = v
	}
	return nil
}

func (r *fakeRows) Err() error { return r.iterErr }

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

func (o *outcomeRecorder) SessionOpened() {
	o.mu.Lock()
	o.opened++
	o.mu.Unlock()
}

func (o *outcomeRecorder) SessionClosed() {
	o.mu.Lock()
	o.closed++
	o.mu.Unlock()
}

func (o *outcomeRecorder) ObserveSearch(outcome string, _ time.Duration) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, outcome)
	o.mu.Unlock()
}

func newFixtureGateway(t *testing.T, db *sqlstoretest.DB) (*Gateway, *countingOpener) {
	t.Helper()
	opener, err := sqlstore.NewOpener(sqlstore.DialectSQLite, db.Holder())
	require.NoError(t, err)
	query, err := sqlstore.RangeQuery(sqlstore.DialectSQLite)
	require.NoError(t, err)
	counting := &countingOpener{next: opener}
	return NewGateway(GatewayConfig{Query: query}, counting, nil, nil), counting
}

func seed(db *sqlstoretest.DB) {
	db.AddProduct(
		sqlstoretest.Product{ID: "P-001", Start: "2024-01-15 00:00:00", Complete: "2024-01-15 00:03:10", IsDefect: 1},
		sqlstoretest.Inspection{ErrorType: "SCRATCH", Width: 12.5, Height: 3.25},
	)
	db.AddProduct(
		sqlstoretest.Product{ID: "P-002", Start: "2024-02-03 09:30:00", Complete: "2024-02-03 09:31:00", IsDefect: 0},
		sqlstoretest.Inspection{ErrorType: "NONE", Width: 0, Height: 0},
	)
}

func TestGateway_Search_FixtureRoundTrip(t *testing.T) {
	db := sqlstoretest.New(t)
	seed(db)
	g, counting := newFixtureGateway(t, db)

	records, err := g.Search(context.Background(), domain.SearchRequest{Start: "2024-01-01", End: "2024-01-31"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, domain.Columns, records[0].Names())

	id, ok := records[0].Get("product_id")
	require.True(t, ok)
	require.Equal(t, "P-001", id)
	errType, _ := records[0].Get("error_type")
	require.Equal(t, "SCRATCH", errType)
	width, _ := records[0].Get("width")
	require.Equal(t, 12.5, width)

	require.Zero(t, counting.open())
}

func TestGateway_Search_InclusiveDayBoundary(t *testing.T) {
	db := sqlstoretest.New(t)
	seed(db)
	g, _ := newFixtureGateway(t, db)

	records, err := g.Search(context.Background(), domain.SearchRequest{Start: "2024-01-15", End: "2024-01-15"})
	require.NoError(t, err)
	require.Len(t, records, 1)

	// Both bounds are midnight: a later time on the end day is excluded.
	records, err = g.Search(context.Background(), domain.SearchRequest{Start: "2024-02-01", End: "2024-02-03"})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestGateway_Search_EmptyRangeIsEmptyArray(t *testing.T) {
	db := sqlstoretest.New(t)
	seed(db)
	g, _ := newFixtureGateway(t, db)

	records, err := g.Search(context.Background(), domain.SearchRequest{Start: "2030-01-01", End: "2030-12-31"})
	require.NoError(t, err)
	require.NotNil(t, records)

	b, err := json.Marshal(records)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(b))
}

func TestGateway_Search_ProductWithoutInspectionIsSkipped(t *testing.T) {
	db := sqlstoretest.New(t)
	db.Exec(`INSERT INTO PRODUCT_STATE VALUES ('P-900', '2024-01-10 08:00:00', NULL, 0)`)
	g, _ := newFixtureGateway(t, db)

	records, err := g.Search(context.Background(), domain.SearchRequest{Start: "2024-01-01", End: "2024-01-31"})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestGateway_Search_MalformedDatesAreStorageErrors(t *testing.T) {
	db := sqlstoretest.New(t)
	seed(db)

	tests := []struct {
		name string
		req  domain.SearchRequest
	}{
		{name: "words", req: domain.SearchRequest{Start: "not-a-date", End: "2024-01-31"}},
		{name: "impossible month", req: domain.SearchRequest{Start: "2024-01-01", End: "2024-13-45"}},
		{name: "both", req: domain.SearchRequest{Start: "not-a-date", End: "2024-13-45"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, counting := newFixtureGateway(t, db)

			records, err := g.Search(context.Background(), tt.req)
			require.Nil(t, records)

			var serr *domain.StorageError
			require.ErrorAs(t, err, &serr)
			// sqlite reports function errors on the first step, Oracle on execute.
			require.Contains(t, []domain.StorageOp{domain.OpExecute, domain.OpFetch}, serr.Op)
			require.Contains(t, serr.Error(), "to_date: invalid date")
			require.Zero(t, counting.open())
		})
	}
}

func TestGateway_Search_StorageFailures(t *testing.T) {
	driverErr := errors.New("ORA-00942: table or view does not exist")

	tests := []struct {
		name   string
		opener *fakeOpener
		op     domain.StorageOp
	}{
		{
			name:   "connect",
			opener: &fakeOpener{err: errors.New("ORA-12541: TNS:no listener")},
			op:     domain.OpConnect,
		},
		{
			name:   "execute",
			opener: &fakeOpener{session: &fakeSession{queryErr: driverErr}},
			op:     domain.OpExecute,
		},
		{
			name: "fetch scan",
			opener: &fakeOpener{session: &fakeSession{rows: &fakeRows{
				columns: []string{"PRODUCT_ID"},
				scanErr: errors.New("ORA-01722: invalid number"),
			}}},
			op: domain.OpFetch,
		},
		{
			name: "fetch iteration",
			opener: &fakeOpener{session: &fakeSession{rows: &fakeRows{
				columns: []string{"PRODUCT_ID"},
				iterErr: errors.New("ORA-03113: end-of-file on communication channel"),
			}}},
			op: domain.OpFetch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &outcomeRecorder{}
			g := NewGateway(GatewayConfig{Query: "select"}, tt.opener, obs, nil)

			records, err := g.Search(context.Background(), domain.SearchRequest{Start: "2024-01-01", End: "2024-01-31"})
			require.Nil(t, records)

			var serr *domain.StorageError
			require.ErrorAs(t, err, &serr)
			require.Equal(t, tt.op, serr.Op)
			require.Equal(t, serr.Err.Error(), err.Error())

			if s := tt.opener.session; s != nil {
				require.True(t, s.closed, "session not released")
				if s.rows != nil {
					require.True(t, s.rows.closed, "rows not released")
				}
			}
			require.Equal(t, obs.opened, obs.closed)
			require.Equal(t, []string{ports.OutcomeStorageError}, obs.outcomes)
		})
	}
}

func TestGateway_Search_MissingTablesIsStorageError(t *testing.T) {
	db := sqlstoretest.Empty(t)
	g, counting := newFixtureGateway(t, db)

	_, err := g.Search(context.Background(), domain.SearchRequest{Start: "2024-01-01", End: "2024-01-31"})
	var serr *domain.StorageError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, domain.OpExecute, serr.Op)
	require.Contains(t, err.Error(), "no such table")
	require.Zero(t, counting.open())
}

func TestGateway_Search_NormalizesBytes(t *testing.T) {
	rows := &fakeRows{
		columns: []string{"PRODUCT_ID", "IS_DEFECT"},
		data:    [][]interface{}{{[]byte("P-7"), int64(1)}},
	}
	g := NewGateway(GatewayConfig{}, &fakeOpener{session: &fakeSession{rows: rows}}, nil, nil)

	records, err := g.Search(context.Background(), domain.SearchRequest{Start: "a", End: "b"})
	require.NoError(t, err)

	b, err := json.Marshal(records)
	require.NoError(t, err)
	require.Equal(t, `[{"product_id":"P-7","is_defect":1}]`, string(b))
}

func TestGateway_Search_NoLeakedSessions(t *testing.T) {
	db := sqlstoretest.New(t)
	seed(db)
	g, counting := newFixtureGateway(t, db)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := domain.SearchRequest{Start: "2024-01-01", End: "2024-12-31"}
			if i%2 == 1 {
				req.End = ""
			}
			_, _ = g.Search(context.Background(), req)
		}(i)
	}
	wg.Wait()

	require.Zero(t, counting.open())
	require.Equal(t, 4, counting.opened)
}

func TestGateway_Search_LogRowsGate(t *testing.T) {
	db := sqlstoretest.New(t)
	seed(db)
	opener, err := sqlstore.NewOpener(sqlstore.DialectSQLite, db.Holder())
	require.NoError(t, err)
	query, err := sqlstore.RangeQuery(sqlstore.DialectSQLite)
	require.NoError(t, err)
	req := domain.SearchRequest{Start: "2024-01-01", End: "2024-01-31"}

	quiet := logAdapter.NewRecorder()
	_, err = NewGateway(GatewayConfig{Query: query}, opener, nil, quiet).Search(context.Background(), req)
	require.NoError(t, err)
	require.Empty(t, quiet.Messages("debug"))

	verbose := logAdapter.NewRecorder()
	_, err = NewGateway(GatewayConfig{Query: query, LogRows: true}, opener, nil, verbose).Search(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, []string{"search parameters", "rows fetched"}, verbose.Messages("debug"))
}

// TestGateway_Search_MissingBoundProperty checks that for any request with
// an empty start or end, Search fails validation without opening a session.
func TestGateway_Search_MissingBoundProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("empty bound never opens a session", prop.ForAll(
		func(date string, blankStart bool) bool {
			req := domain.SearchRequest{Start: date, End: ""}
			if blankStart {
				req = domain.SearchRequest{Start: "", End: date}
			}
			opener := &fakeOpener{session: &fakeSession{rows: &fakeRows{}}}
			obs := &outcomeRecorder{}
			g := NewGateway(GatewayConfig{}, opener, obs, nil)

			records, err := g.Search(context.Background(), req)
			var verr *domain.ValidationError
			return records == nil &&
				errors.As(err, &verr) &&
				err.Error() == domain.MsgDatesRequired &&
				opener.calls == 0 &&
				len(obs.outcomes) == 1 && obs.outcomes[0] == ports.OutcomeInvalid
		},
		gen.AlphaString(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestGateway_Search_ShapeProperty checks that every record carries the
// projected columns lower-cased and in order, whatever the driver case.
func TestGateway_Search_ShapeProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	upper := make([]string, len(domain.Columns))
	for i, c := range domain.Columns {
		upper[i] = strings.ToUpper(c)
	}

	properties.Property("records keep projection order", prop.ForAll(
		func(n int) bool {
			data := make([][]interface{}, n)
			for i := range data {
				data[i] = []interface{}{"P", "2024-01-15", nil, int64(0), "NONE", 1.5, 2.5}
			}
			rows := &fakeRows{columns: upper, data: data}
			g := NewGateway(GatewayConfig{}, &fakeOpener{session: &fakeSession{rows: rows}}, nil, nil)

			records, err := g.Search(context.Background(), domain.SearchRequest{Start: "x", End: "y"})
			if err != nil || len(records) != n {
				return false
			}
			for _, r := range records {
				names := r.Names()
				if len(names) != len(domain.Columns) {
					return false
				}
				for i := range names {
					if names[i] != domain.Columns[i] {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
