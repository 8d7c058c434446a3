package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondJSON_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondJSON(rec, http.StatusCreated, map[string]int{"count": 2})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]interface{}{"count": float64(2)}, body["data"])
}

func TestRespondError_HasNoData(t *testing.T) {
	tests := []struct {
		name   string
		call   func(w http.ResponseWriter)
		status int
	}{
		{name: "bad request", call: func(w http.ResponseWriter) { RespondBadRequest(w, "x") }, status: http.StatusBadRequest},
		{name: "unauthorized", call: func(w http.ResponseWriter) { RespondUnauthorized(w, "x") }, status: http.StatusUnauthorized},
		{name: "forbidden", call: func(w http.ResponseWriter) { RespondForbidden(w, "x") }, status: http.StatusForbidden},
		{name: "not found", call: func(w http.ResponseWriter) { RespondNotFound(w, "x") }, status: http.StatusNotFound},
		{name: "conflict", call: func(w http.ResponseWriter) { RespondConflict(w, "x") }, status: http.StatusConflict},
		{name: "bad gateway", call: func(w http.ResponseWriter) { RespondBadGateway(w, "x") }, status: http.StatusBadGateway},
		{name: "internal", call: RespondInternalError, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			tt.call(rec)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
			_, hasData := body["data"]
			assert.False(t, hasData)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Text string `json:"text"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "hi", v.Text)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.ErrorIs(t, DecodeJSON(r, &v), ErrEmptyBody)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	assert.Error(t, DecodeJSON(r, &v))
}

func TestPathUUID(t *testing.T) {
	id := uuid.New()

	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"bookingId": id.String()})
	got, err := PathUUID(r, "bookingId")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	r = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"bookingId": "42"})
	_, err = PathUUID(r, "bookingId")
	assert.Error(t, err)

	_, err = PathUUID(httptest.NewRequest(http.MethodGet, "/", nil), "bookingId")
	assert.Error(t, err)
}
