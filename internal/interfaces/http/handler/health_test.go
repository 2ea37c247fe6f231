package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	router := gin.New()
	router.GET("/health", NewHealthHandler(db).Health)

	t.Run("database reachable", func(t *testing.T) {
		mock.ExpectPing()

		w, body := serve(router, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("database unreachable", func(t *testing.T) {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		w, body := serve(router, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "unreachable", body["database"])
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
