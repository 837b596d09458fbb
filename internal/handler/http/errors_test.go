package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	httpHandler "conduit-backend/internal/handler/http"
	"conduit-backend/internal/service"
)

// 业务层错误到 HTTP 状态码的映射表
func TestHandleServiceError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"user not found", service.ErrUserNotFound, http.StatusNotFound},
		{"article not found", service.ErrArticleNotFound, http.StatusNotFound},
		{"comment not found", service.ErrCommentNotFound, http.StatusNotFound},
		{"not favorited", service.ErrNotFavorited, http.StatusNotFound},
		{"not following", service.ErrNotFollowing, http.StatusNotFound},
		{"registration conflict", service.ErrRegistrationFailed, http.StatusConflict},
		{"duplicate slug", service.ErrDuplicateSlug, http.StatusConflict},
		{"already favorited", service.ErrAlreadyFavorited, http.StatusConflict},
		{"already following", service.ErrAlreadyFollowing, http.StatusConflict},
		{"self follow", service.ErrSelfFollow, http.StatusConflict},
		{"authentication failed", service.ErrAuthenticationFailed, http.StatusUnauthorized},
		{"not authorized", service.ErrNotAuthorized, http.StatusUnauthorized},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"store unavailable", service.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"unknown error", errors.New("something odd"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)

			httpHandler.HandleServiceError(c, tc.err)

			assert.Equal(t, tc.want, recorder.Code)
			assert.Contains(t, recorder.Body.String(), "error")
		})
	}
}
