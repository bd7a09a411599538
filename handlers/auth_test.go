package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aircnc/aircnc-server/internal/database"
	"github.com/aircnc/aircnc-server/internal/models"
	"github.com/aircnc/aircnc-server/internal/tokens"
	"github.com/aircnc/aircnc-server/internal/users"
	"github.com/aircnc/aircnc-server/internal/validation"
	"github.com/aircnc/aircnc-server/pkg/middleware"
	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeUsers keeps users in memory; passwords are stored in clear.
type fakeUsers struct {
	byID map[string]models.User
}

func (f *fakeUsers) Create(ctx context.Context, req users.CreateUserRequest) (models.User, error) {
	for _, u := range f.byID {
		if u.Email == req.Email {
			return models.User{}, users.ErrEmailTaken
		}
	}
	u := models.User{Email: req.Email, Password: req.Password}
	u.ID = primitive.NewObjectID()
	f.byID[u.ID.Hex()] = u
	return u, nil
}

func (f *fakeUsers) Verify(ctx context.Context, email, password string) (models.User, error) {
	for _, u := range f.byID {
		if u.Email == email && u.Password == password {
			return u, nil
		}
	}
	return models.User{}, users.ErrInvalidCredentials
}

func (f *fakeUsers) Get(ctx context.Context, id string) (models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return models.User{}, database.ErrNotFound
	}
	return u, nil
}

type authFixture struct {
	router *gin.Engine
	users  *fakeUsers
	redis  *mr.Miniredis
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	require.NoError(t, validation.RegisterWithGin())
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)

	fu := &fakeUsers{byID: map[string]models.User{}}
	issuer := tokens.NewIssuer("test-secret-32-bytes-should-be-long-enough", time.Hour,
		tokens.NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr()})))

	g := gin.New()
	NewAuthHandler(fu, issuer, false).Register(g)
	return &authFixture{router: g, users: fu, redis: m}
}

func (f *authFixture) do(method, path, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mutate {
		m(req)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func bearer(tok string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

const credentials = `{"email":"alice@example.com","password":"S3cure!pass"}`

func (f *authFixture) login(t *testing.T) (string, *http.Cookie) {
	t.Helper()
	w := f.do(http.MethodPost, "/auth/login", credentials)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.AuthCookie {
			return body.Token, c
		}
	}
	t.Fatal("login did not set the Authentication cookie")
	return "", nil
}

func TestCreateUser(t *testing.T) {
	f := newAuthFixture(t)

	w := f.do(http.MethodPost, "/users", credentials)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"alice@example.com"`)
	assert.NotContains(t, w.Body.String(), "password")

	w = f.do(http.MethodPost, "/users", credentials)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateUser_Validation(t *testing.T) {
	f := newAuthFixture(t)

	w := f.do(http.MethodPost, "/users", `{"email":"not-an-email","password":"weak"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email : must be an email")
	assert.Contains(t, w.Body.String(), "password : is not strong enough")

	w = f.do(http.MethodPost, "/users", `{`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/users", credentials).Code)

	token, cookie := f.login(t)
	require.NotEmpty(t, token)
	assert.Equal(t, token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Greater(t, cookie.MaxAge, 3500)

	w := f.do(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"Wrong!pass1"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/auth/login", `{"email":"alice@example.com"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthenticate_BearerAndCookie(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/users", credentials).Code)
	token, cookie := f.login(t)

	w := f.do(http.MethodGet, "/auth/authenticate", "", bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"alice@example.com"`)

	w = f.do(http.MethodGet, "/auth/authenticate", "", func(r *http.Request) { r.AddCookie(cookie) })
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/auth/authenticate", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodGet, "/auth/authenticate", "", bearer("garbage"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/users", credentials).Code)
	token, _ := f.login(t)
	f.users.byID = map[string]models.User{}

	w := f.do(http.MethodGet, "/auth/authenticate", "", bearer(token))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCurrentUser(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/users", credentials).Code)
	token, _ := f.login(t)

	w := f.do(http.MethodGet, "/users", "", bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	var u models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Empty(t, u.Password)

	require.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/users", "").Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/users", credentials).Code)
	token, _ := f.login(t)

	w := f.do(http.MethodPost, "/auth/logout", "", bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.AuthCookie {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)

	w = f.do(http.MethodGet, "/auth/authenticate", "", bearer(token))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")

	// a fresh login still works
	fresh, _ := f.login(t)
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/auth/authenticate", "", bearer(fresh)).Code)
}
