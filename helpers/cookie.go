package helpers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/chmike/securecookie"
	"github.com/gin-gonic/gin"
)

// https://github.com/chmike/securecookie

var cookieParams = securecookie.Params{
	Path:     "/",
	Domain:   "",
	MaxAge:   3600 * 24 * 7, // matches the refresh token's life time
	HTTPOnly: true,          // disallow access by remote javascript code
	Secure:   false,         // ToDo: switch on for PRD (TLS only)
	SameSite: securecookie.Lax,
}

// SetCookie sends a value to the client as a signed cookie
func SetCookie(c *gin.Context, name string, value interface{}) error {

	sck, err := securecookie.New(name, []byte(os.Getenv("JWTCK_HASHKEY")), cookieParams)
	if err != nil {
		return err
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return sck.SetValue(c.Writer, b)
}

// GetCookie reads a signed cookie from a request
func GetCookie(r *http.Request, name string) ([]byte, error) {

	sck, err := securecookie.New(name, []byte(os.Getenv("JWTCK_HASHKEY")), cookieParams)
	if err != nil {
		return nil, err
	}

	val, err := sck.GetValue(nil, r)
	if err != nil {
		return nil, err
	}

	return val, nil
}

// DelCookie removes a cookie from the client
func DelCookie(c *gin.Context, name string) error {

	sck, err := securecookie.New(name, []byte(os.Getenv("JWTCK_HASHKEY")), cookieParams)
	if err != nil {
		return err
	}

	return sck.Delete(c.Writer)
}
