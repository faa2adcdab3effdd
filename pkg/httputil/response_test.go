package httputil

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/care-portal/pkg/errors"
)

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"conflict", errors.Conflict("slot is no longer available", nil), http.StatusConflict, "slot is no longer available"},
		{"unauthenticated", errors.Unauthenticated(nil), http.StatusUnauthorized, "unauthenticated"},
		{"forbidden", errors.Forbidden("insufficient role"), http.StatusForbidden, "insufficient role"},
		{"unavailable", errors.Unavailable(stderrors.New("conn reset")), http.StatusServiceUnavailable, "service temporarily unavailable"},
		{"plain error hides cause", stderrors.New("pq: password authentication failed"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondWithError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tt.message, body.Message)
			assert.True(t, c.IsAborted())
		})
	}
}
