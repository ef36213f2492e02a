package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// drives the handler directly; these cases fail the field checks and
// therefore never reach the stores
func performLogin(body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/login", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	Login(c)
	return w
}

func TestLoginRequiresCredentials(t *testing.T) {

	// neither user name nor email address given
	w := performLogin(`{"password":"secret"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// email address alone is a valid identifier, but the password is missing
	w = performLogin(`{"eMail":"roger@example.com"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// user name alone, password missing
	w = performLogin(`{"userName":"roger"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// broken payload
	w = performLogin(`{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
