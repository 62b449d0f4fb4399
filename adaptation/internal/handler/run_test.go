package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestListCorruptions(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	h := &Handler{}
	h.ListCorruptions(ctx)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "gaussian_noise")
	require.Contains(t, w.Body.String(), "snow")
	require.Contains(t, w.Body.String(), "jpeg_compression")
}
