package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"github.com/ventdepot/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls otelgorm instrumentation of the GORM handle.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include bound variables in db.statement
	SlowQueryThresh time.Duration // queries slower than this get a slow_query event
	DBName          string
	TracerProvider  trace.TracerProvider // nil uses the global provider
}

// DBTracingConfigFrom builds the tracing settings from the application config
func DBTracingConfigFrom(tel config.TelemetryConfig, db config.DatabaseConfig) DBTracingConfig {
	thresh := tel.DBSlowQueryThresh
	if thresh <= 0 {
		thresh = 200 * time.Millisecond
	}
	return DBTracingConfig{
		Enabled:         tel.Enabled && tel.DBTraceEnabled,
		LogFullSQL:      tel.DBLogFullSQL,
		SlowQueryThresh: thresh,
		DBName:          db.DBName,
	}
}

// RegisterDBTracing installs otelgorm and the span annotation callbacks on db
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := registerSpanAnnotations(db, cfg.SlowQueryThresh); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

type queryStartKey struct{}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

// registerSpanAnnotations times every statement and annotates the active span
func registerSpanAnnotations(db *gorm.DB, slowThresh time.Duration) error {
	after := annotateSpan(slowThresh)
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("ventdepot:timing_create", markQueryStart),
		cb.Query().Before("gorm:query").Register("ventdepot:timing_query", markQueryStart),
		cb.Update().Before("gorm:update").Register("ventdepot:timing_update", markQueryStart),
		cb.Delete().Before("gorm:delete").Register("ventdepot:timing_delete", markQueryStart),
		cb.Row().Before("gorm:row").Register("ventdepot:timing_row", markQueryStart),
		cb.Raw().Before("gorm:raw").Register("ventdepot:timing_raw", markQueryStart),
		cb.Create().After("gorm:create").Register("ventdepot:annotate_create", after),
		cb.Query().After("gorm:query").Register("ventdepot:annotate_query", after),
		cb.Update().After("gorm:update").Register("ventdepot:annotate_update", after),
		cb.Delete().After("gorm:delete").Register("ventdepot:annotate_delete", after),
		cb.Row().After("gorm:row").Register("ventdepot:annotate_row", after),
		cb.Raw().After("gorm:raw").Register("ventdepot:annotate_raw", after),
	)
}

// annotateSpan records rows, table, errors and slowness on the span in the statement context.
// A missing row is not an error for the span.
func annotateSpan(slowThresh time.Duration) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.RecordError(db.Error)
			span.SetStatus(codes.Error, db.Error.Error())
		}

		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed > slowThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query", trace.WithAttributes(
				attribute.Int64("threshold_ms", slowThresh.Milliseconds()),
			))
		}
	}
}
