package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ventdepot/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedBin struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"size:50"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedBin{}))
	return db
}

func setupSpanRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, recorder
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[string]any {
	out := map[string]any{}
	for _, kv := range s.Attributes() {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func TestDBTracingConfigFrom(t *testing.T) {
	tel := config.TelemetryConfig{Enabled: true, DBTraceEnabled: true, DBLogFullSQL: true}
	cfg := DBTracingConfigFrom(tel, config.DatabaseConfig{DBName: "ventdepot"})

	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "ventdepot", cfg.DBName)

	tel.Enabled = false
	tel.DBSlowQueryThresh = time.Second
	cfg = DBTracingConfigFrom(tel, config.DatabaseConfig{})
	assert.False(t, cfg.Enabled, "db tracing requires telemetry")
	assert.Equal(t, time.Second, cfg.SlowQueryThresh)
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{Enabled: false}, zap.NewNop()))
	assert.Nil(t, db.Callback().Query().Get("ventdepot:annotate_query"))
}

func TestRegisterDBTracing_CreatesQuerySpans(t *testing.T) {
	db := setupTestDB(t)
	tp, recorder := setupSpanRecorder(t)

	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Hour,
		DBName:          "ventdepot",
		TracerProvider:  tp,
	}, zap.NewNop()))

	ctx, parent := tp.Tracer("test").Start(context.Background(), "request")
	require.NoError(t, db.WithContext(ctx).Create(&tracedBin{Code: "A-1-1"}).Error)
	parent.End()

	spans := recorder.Ended()
	assert.Greater(t, len(spans), 1, "otelgorm should add a span below the request span")
}

func TestRegisterDBTracing_DoubleRegistration(t *testing.T) {
	db := setupTestDB(t)
	tp, _ := setupSpanRecorder(t)
	cfg := DBTracingConfig{Enabled: true, SlowQueryThresh: time.Second, TracerProvider: tp}

	require.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))
	assert.Error(t, RegisterDBTracing(db, cfg, zap.NewNop()))
}

func TestSpanAnnotations(t *testing.T) {
	t.Run("rows and table", func(t *testing.T) {
		db := setupTestDB(t)
		tp, recorder := setupSpanRecorder(t)
		require.NoError(t, registerSpanAnnotations(db, time.Hour))

		ctx, span := tp.Tracer("test").Start(context.Background(), "insert")
		bins := []tracedBin{{Code: "A-1-1"}, {Code: "A-1-2"}, {Code: "A-1-3"}}
		require.NoError(t, db.WithContext(ctx).Create(&bins).Error)
		span.End()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		attrs := spanAttrs(spans[0])
		assert.Equal(t, int64(3), attrs["db.rows_affected"])
		assert.Equal(t, "traced_bins", attrs["db.sql.table"])
		assert.NotContains(t, attrs, "db.slow_query")
	})

	t.Run("slow query", func(t *testing.T) {
		db := setupTestDB(t)
		tp, recorder := setupSpanRecorder(t)
		require.NoError(t, registerSpanAnnotations(db, -time.Nanosecond))

		ctx, span := tp.Tracer("test").Start(context.Background(), "select")
		var out []tracedBin
		require.NoError(t, db.WithContext(ctx).Find(&out).Error)
		span.End()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, true, spanAttrs(spans[0])["db.slow_query"])
		require.NotEmpty(t, spans[0].Events())
		assert.Equal(t, "slow_query", spans[0].Events()[0].Name)
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		db := setupTestDB(t)
		tp, recorder := setupSpanRecorder(t)
		require.NoError(t, registerSpanAnnotations(db, time.Hour))

		ctx, span := tp.Tracer("test").Start(context.Background(), "first")
		var bin tracedBin
		err := db.WithContext(ctx).First(&bin, 999).Error
		require.ErrorIs(t, err, gorm.ErrRecordNotFound)
		span.End()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Unset, spans[0].Status().Code)
	})

	t.Run("sql error marks span", func(t *testing.T) {
		db := setupTestDB(t)
		tp, recorder := setupSpanRecorder(t)
		require.NoError(t, registerSpanAnnotations(db, time.Hour))

		ctx, span := tp.Tracer("test").Start(context.Background(), "broken")
		err := db.WithContext(ctx).Exec("SELECT * FROM missing_table").Error
		require.Error(t, err)
		span.End()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("no span in context", func(t *testing.T) {
		db := setupTestDB(t)
		require.NoError(t, registerSpanAnnotations(db, time.Hour))
		assert.NoError(t, db.Create(&tracedBin{Code: "B-0-1"}).Error)
	})
}
