package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aircnc/aircnc-server/internal/reservation"
	"github.com/aircnc/aircnc-server/internal/reservation/repository"
	"github.com/aircnc/aircnc-server/internal/reservation/service"
	"github.com/aircnc/aircnc-server/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	require.NoError(t, validation.RegisterWithGin())
	g := gin.New()
	g.Use(func(c *gin.Context) {
		c.Set("claims", map[string]interface{}{"sub": "user-1"})
		c.Next()
	})
	RegisterReservationRoutes(g, service.New(repository.NewMemoryRepo()))
	return g
}

func do(g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

const createBody = `{"startDate":"2024-07-01T14:00:00Z","endDate":"2024-07-05T10:00:00Z","placeId":"place-1","invoiceId":"inv-1"}`

func TestReservationHandler_CRUD(t *testing.T) {
	g := newRouter(t)

	// create
	w := do(g, http.MethodPost, "/reservations", createBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var created reservation.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.False(t, created.ID.IsZero())
	require.Equal(t, "user-1", created.UserID)
	require.False(t, created.Timestamp.IsZero())
	id := created.ID.Hex()
	require.Contains(t, w.Body.String(), `"_id":"`+id+`"`)

	// get
	w = do(g, http.MethodGet, "/reservations/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	// list
	w = do(g, http.MethodGet, "/reservations", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []reservation.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	// update
	w = do(g, http.MethodPatch, "/reservations/"+id, `{"invoiceId":"inv-2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated reservation.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, "inv-2", updated.InvoiceID)
	require.Equal(t, "place-1", updated.PlaceID)

	// delete returns the removed document
	w = do(g, http.MethodDelete, "/reservations/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"invoiceId":"inv-2"`)

	w = do(g, http.MethodGet, "/reservations/"+id, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestReservationHandler_EmptyListIsArray(t *testing.T) {
	w := do(newRouter(t), http.MethodGet, "/reservations", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())
}

func TestReservationHandler_Validation(t *testing.T) {
	g := newRouter(t)

	w := do(g, http.MethodPost, "/reservations", `{"startDate":"2024-07-01T14:00:00Z"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "placeId : is required")

	w = do(g, http.MethodPost, "/reservations", `{"startDate":"2024-07-05T14:00:00Z","endDate":"2024-07-01T10:00:00Z","placeId":"p","invoiceId":"i"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "endDate : must be after startDate")

	w = do(g, http.MethodPost, "/reservations", `{"startDate":"tomorrow"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(g, http.MethodPatch, "/reservations/"+primitive.NewObjectID().Hex(), `{"placeId":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReservationHandler_Errors(t *testing.T) {
	g := newRouter(t)

	w := do(g, http.MethodGet, "/reservations/not-an-id", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	missing := primitive.NewObjectID().Hex()
	require.Equal(t, http.StatusNotFound, do(g, http.MethodGet, "/reservations/"+missing, "").Code)
	require.Equal(t, http.StatusNotFound, do(g, http.MethodPatch, "/reservations/"+missing, `{"placeId":"p"}`).Code)
	require.Equal(t, http.StatusNotFound, do(g, http.MethodDelete, "/reservations/"+missing, "").Code)
}

func TestReservationHandler_PatchKeepsDateOrder(t *testing.T) {
	g := newRouter(t)
	w := do(g, http.MethodPost, "/reservations", createBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var created reservation.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.ID.Hex()

	w = do(g, http.MethodPatch, "/reservations/"+id, `{"endDate":"2024-06-30T10:00:00Z"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "endDate must be after startDate")

	w = do(g, http.MethodPatch, "/reservations/"+id, `{"startDate":"2024-07-06T10:00:00Z"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(g, http.MethodGet, "/reservations/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got reservation.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, created, got)

	w = do(g, http.MethodPatch, "/reservations/"+id, `{"endDate":"2024-07-08T10:00:00Z"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"endDate":"2024-07-08T10:00:00Z"`)
}
