package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Spades/internal/middleware"
)

var testSecret = []byte("test-secret")

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(testSecret, nil)
	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.GET("/auth/guest", h.Guest)

	authed := r.Group("/", middleware.JwtAuthMiddleware(testSecret))
	authed.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"identity": c.GetString("identity")})
	})
	return r
}

func do(r *gin.Engine, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestLoginIssuesUsableToken(t *testing.T) {
	r := testRouter()

	w := do(r, http.MethodPost, "/auth/login", `{"identity":"alice","displayName":"Alice"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "alice", body["identity"])
	require.NotEmpty(t, body["jwt"])

	w = do(r, http.MethodGet, "/whoami", "", map[string]string{
		"Authorization": "Bearer " + body["jwt"],
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode(t, w)["identity"])
}

func TestLoginGeneratesIdentityWhenOmitted(t *testing.T) {
	r := testRouter()
	w := do(r, http.MethodPost, "/auth/login", `{"displayName":"Drifter"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["identity"])
}

func TestLoginRequiresDisplayName(t *testing.T) {
	r := testRouter()
	w := do(r, http.MethodPost, "/auth/login", `{"identity":"alice"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGuestTokenWorksAndIsDistinct(t *testing.T) {
	r := testRouter()

	first := decode(t, do(r, http.MethodGet, "/auth/guest", "", nil))
	second := decode(t, do(r, http.MethodGet, "/auth/guest", "", nil))
	assert.True(t, strings.HasPrefix(first["identity"], "guest-"))
	assert.NotEqual(t, first["identity"], second["identity"])

	w := do(r, http.MethodGet, "/whoami", "", map[string]string{
		"Authorization": "Bearer " + first["jwt"],
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first["identity"], decode(t, w)["identity"])
}

func TestTokenAcceptedViaQueryParam(t *testing.T) {
	r := testRouter()
	body := decode(t, do(r, http.MethodGet, "/auth/guest", "", nil))

	w := do(r, http.MethodGet, "/whoami?token="+body["jwt"], "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body["identity"], decode(t, w)["identity"])
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	r := testRouter()

	w := do(r, http.MethodGet, "/whoami", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/whoami", "", map[string]string{
		"Authorization": "Bearer not.a.token",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid shape, wrong key.
	other := NewHandler([]byte("other-secret"), nil)
	token, err := other.sign("mallory")
	require.NoError(t, err)
	w = do(r, http.MethodGet, "/whoami", "", map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
