package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Browser identity. The client cookie lives for years and stands in for the
// browser's local storage; the session cookie has no expiry and ends with the
// browser session.
const (
	ClientCookie  = "naqd_client"
	SessionCookie = "naqd_session"
	ClientHeader  = "X-Naqd-Client"

	clientCookieMaxAge = 10 * 365 * 24 * 60 * 60
	maxIdentityLength  = 128

	clientIDKey  = "naqd.client_id"
	sessionIDKey = "naqd.session_id"
)

// Identity assigns client and session ids to every request, issuing cookies
// for whichever is missing. A client id in the header wins over the cookie.
func Identity(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := usable(c.GetHeader(ClientHeader))
		if clientID == "" {
			clientID = cookie(c, ClientCookie)
		}
		if clientID == "" {
			clientID = uuid.NewString()
			setCookie(c, ClientCookie, clientID, clientCookieMaxAge, secure)
		}

		sessionID := cookie(c, SessionCookie)
		if sessionID == "" {
			sessionID = uuid.NewString()
			setCookie(c, SessionCookie, sessionID, 0, secure)
		}

		c.Set(clientIDKey, clientID)
		c.Set(sessionIDKey, sessionID)
		c.Next()
	}
}

// ClientID returns the browser id assigned by Identity
func ClientID(c *gin.Context) string {
	return c.GetString(clientIDKey)
}

// SessionID returns the session id assigned by Identity
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

func cookie(c *gin.Context, name string) string {
	v, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return usable(v)
}

func usable(v string) string {
	if v == "" || len(v) > maxIdentityLength {
		return ""
	}
	return v
}

func setCookie(c *gin.Context, name, value string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", secure, true)
}
