package observability

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgClasses names the SQLSTATE codes worth their own label. Others are reported as
// pg_<code>.
var pgClasses = map[string]string{
	"23505": "unique_violation",
	"23502": "not_null_violation",
	"40001": "serialization_failure",
	"40P01": "deadlock",
	"53300": "too_many_connections",
	"57014": "query_canceled",
}

// ObserveDB times fn under op. pgx.ErrNoRows is a lookup miss: it gets status
// "no_rows" and is not counted as a failure.
func (p *Prom) ObserveDB(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, pgx.ErrNoRows):
		status = "no_rows"
	default:
		status = "error"
		p.dbErrors.WithLabelValues(op, classifyDBErr(err)).Inc()
	}

	p.dbLatency.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

func classifyDBErr(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if class, ok := pgClasses[pgErr.Code]; ok {
			return class
		}
		return "pg_" + pgErr.Code
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case pgconn.Timeout(err):
		return "timeout"
	}

	var netErr net.Error
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.As(err, &netErr) {
		return "connection"
	}
	return "unknown"
}
