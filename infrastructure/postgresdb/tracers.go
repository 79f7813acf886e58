package postgresdb

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/artplanner/sdk/logger"
)

// LoggingQueryTracer logs every query at debug and anything slower than the
// threshold at warn.
// https://github.com/jackc/pgx/issues/1061#issuecomment-1186250809
type LoggingQueryTracer struct {
	log  *logger.Logger
	slow time.Duration
}

func NewLoggingQueryTracer(log *logger.Logger, slow time.Duration) *LoggingQueryTracer {
	return &LoggingQueryTracer{log: log, slow: slow}
}

var (
	collapseSpace = regexp.MustCompile(`\s+`)
	openParen     = regexp.MustCompile(`\s*\(\s*`)
	closeParen    = regexp.MustCompile(`\s*\)\s*`)
)

// compactSQL folds a multi-line query onto one line for logging.
func compactSQL(sql string) string {
	s := collapseSpace.ReplaceAllString(sql, " ")
	s = openParen.ReplaceAllString(s, "(")
	s = closeParen.ReplaceAllString(s, ")")
	return strings.TrimSpace(s)
}

type queryKey struct{}

type queryStart struct {
	sql string
	at  time.Time
}

func (l *LoggingQueryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	sql := compactSQL(data.SQL)
	l.log.DebugContext(ctx, "query start", slog.String("sql", sql))
	return context.WithValue(ctx, queryKey{}, queryStart{sql: sql, at: time.Now()})
}

func (l *LoggingQueryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	start, _ := ctx.Value(queryKey{}).(queryStart)
	var took time.Duration
	if !start.at.IsZero() {
		took = time.Since(start.at)
	}

	switch {
	case data.Err != nil:
		l.log.ErrorContext(ctx, "query failed",
			slog.String("sql", start.sql),
			slog.String("error", data.Err.Error()),
			slog.Duration("took", took),
		)
	case l.slow > 0 && took > l.slow:
		l.log.WarnContext(ctx, "slow query",
			slog.String("sql", start.sql),
			slog.String("command_tag", data.CommandTag.String()),
			slog.Duration("took", took),
		)
	default:
		l.log.DebugContext(ctx, "query end",
			slog.String("command_tag", data.CommandTag.String()),
			slog.Duration("took", took),
		)
	}
}
