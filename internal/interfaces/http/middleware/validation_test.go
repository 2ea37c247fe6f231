package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ventdepot/backend/internal/interfaces/http/dto"
)

func TestHandleValidationError(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.POST("/allocate", func(c *gin.Context) {
		var req dto.AllocateItemsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	details := func(t *testing.T, body string) (int, map[string]any) {
		t.Helper()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/allocate", strings.NewReader(body)))
		return w.Code, decodeError(t, w)
	}

	t.Run("valid request", func(t *testing.T) {
		code, _ := details(t, `{"po_id":1,"allocations":[{"item_id":2,"bin_id":3,"quantity":4}]}`)
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("malformed json", func(t *testing.T) {
		code, body := details(t, `{"po_id":`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
		assert.Equal(t, "Malformed request", body["message"])
		assert.NotContains(t, body, "details")
	})

	t.Run("empty allocations", func(t *testing.T) {
		code, body := details(t, `{"po_id":1,"allocations":[]}`)
		assert.Equal(t, http.StatusBadRequest, code)
		fields := body["details"].([]any)
		require.Len(t, fields, 1)
		assert.Equal(t, "allocations", fields[0].(map[string]any)["field"])
		assert.Equal(t, "Must contain at least 1 entries", fields[0].(map[string]any)["message"])
	})

	t.Run("nested line errors use json paths", func(t *testing.T) {
		code, body := details(t, `{"po_id":1,"allocations":[{"item_id":2,"bin_id":3,"quantity":0}]}`)
		assert.Equal(t, http.StatusBadRequest, code)
		fields := body["details"].([]any)
		require.Len(t, fields, 1)
		assert.Equal(t, "allocations[0].quantity", fields[0].(map[string]any)["field"])
	})

	t.Run("negative id", func(t *testing.T) {
		code, body := details(t, `{"po_id":-1,"allocations":[{"item_id":2,"bin_id":3,"quantity":1}]}`)
		assert.Equal(t, http.StatusBadRequest, code)
		field := body["details"].([]any)[0].(map[string]any)
		assert.Equal(t, "po_id", field["field"])
		assert.Equal(t, "Must be greater than 0", field["message"])
	})
}

func TestStatusValidation(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.POST("/status", func(c *gin.Context) {
		var req dto.UpdatePOStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/status", strings.NewReader(`{"po_id":1,"status":"shipped"}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	field := decodeError(t, w)["details"].([]any)[0].(map[string]any)
	assert.Equal(t, "status", field["field"])
	assert.Equal(t, "Must be one of: pending received cancelled", field["message"])
}
