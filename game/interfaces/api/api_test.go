package api

import (
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ubiproject-star/okey/common/http"
	"github.com/ubiproject-star/okey/common/jwts"
	"github.com/ubiproject-star/okey/core/domain/entity"
	"github.com/ubiproject-star/okey/core/domain/repository"
	"github.com/ubiproject-star/okey/runtime/game"
)

const testSecret = "secret"

type fakeRooms struct {
	summary *game.RoomSummary
	err     error
}

func (f *fakeRooms) RoomSummary(_ context.Context, roomID string) (*game.RoomSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := *f.summary
	s.RoomID = roomID
	return &s, nil
}

func newTestServer(rooms RoomReader) nethttp.Handler {
	server := http.NewHttpServer(http.WithMode("test"))
	ws := nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.WriteHeader(nethttp.StatusTeapot)
	})
	RegisterRoutes(server, &Handlers{Rooms: rooms, Secret: testSecret, TokenTTL: time.Hour}, ws)
	return server.Handler()
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, h nethttp.Handler, method, path, body, bearer string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	if rec.Code != nethttp.StatusTeapot {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestSessionIssuesNewIdentity(t *testing.T) {
	h := newTestServer(&fakeRooms{})

	rec, env := do(t, h, nethttp.MethodPost, "/api/v1/session", `{"name":"  Ayşe "}`, "")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	var resp sessionResp
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "Ayşe", resp.Name)
	_, err := uuid.Parse(resp.PlayerID)
	assert.NoError(t, err)

	claims, err := jwts.ParseToken(resp.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, resp.PlayerID, claims.PlayerID)
	assert.Equal(t, "Ayşe", claims.Name)
}

func TestSessionKeepsPlayerIDWithExistingToken(t *testing.T) {
	h := newTestServer(&fakeRooms{})
	old, err := jwts.GetToken(jwts.NewClaims("p-42", "old", time.Hour), testSecret)
	require.NoError(t, err)

	rec, env := do(t, h, nethttp.MethodPost, "/api/v1/session", `{"name":"renamed"}`, old)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var resp sessionResp
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "p-42", resp.PlayerID)
	assert.Equal(t, "renamed", resp.Name)
}

func TestSessionRejectsBadInput(t *testing.T) {
	h := newTestServer(&fakeRooms{})

	rec, _ := do(t, h, nethttp.MethodPost, "/api/v1/session", `{"name":""}`, "")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, nethttp.MethodPost, "/api/v1/session", `{"name":"`+strings.Repeat("x", 25)+`"}`, "")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, nethttp.MethodPost, "/api/v1/session", `not json`, "")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, nethttp.MethodPost, "/api/v1/session", `{"name":"a"}`, "forged")
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
}

func TestRoomSummaryHidesHands(t *testing.T) {
	h := newTestServer(&fakeRooms{summary: &game.RoomSummary{
		State:     entity.RoomPlaying,
		HandSizes: []int{15, 14, 14, 14},
	}})

	rec, env := do(t, h, nethttp.MethodGet, "/api/v1/rooms/r-1/summary", "", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "r-1", data["roomId"])
	assert.NotContains(t, data, "hands")
	assert.Len(t, data["handSizes"], 4)
}

func TestRoomSummaryErrors(t *testing.T) {
	rec, _ := do(t, newTestServer(&fakeRooms{err: repository.ErrRoomNotFound}), nethttp.MethodGet, "/api/v1/rooms/gone/summary", "", "")
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)

	rec, _ = do(t, newTestServer(&fakeRooms{err: errors.New("redis down")}), nethttp.MethodGet, "/api/v1/rooms/r-1/summary", "", "")
	assert.Equal(t, nethttp.StatusInternalServerError, rec.Code)
}

func TestWebsocketRouteIsMounted(t *testing.T) {
	rec, _ := do(t, newTestServer(&fakeRooms{}), nethttp.MethodGet, "/ws", "", "")
	assert.Equal(t, nethttp.StatusTeapot, rec.Code)
}
