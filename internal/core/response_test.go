package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]string{"hello": "world"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	env := decodeEnvelope(t, rec)
	require.Equal(t, "success", env.Status)
	require.Nil(t, env.Length)
	require.NotNil(t, env.Data)
}

func TestOKList_IncludesLength(t *testing.T) {
	rec := httptest.NewRecorder()
	OKList(rec, []string{"a", "b", "c"}, 3)

	env := decodeEnvelope(t, rec)
	require.Equal(t, "success", env.Status)
	require.NotNil(t, env.Length)
	require.Equal(t, 3, *env.Length)
}

func TestOKList_ZeroLength(t *testing.T) {
	rec := httptest.NewRecorder()
	OKList(rec, []string{}, 0)

	require.Equal(t, http.StatusOK, rec.Code)

	// length: 0 must survive serialization rather than being omitted.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Contains(t, raw, "length")
	require.JSONEq(t, "0", string(raw["length"]))
}

func TestCreatedWithToken(t *testing.T) {
	rec := httptest.NewRecorder()
	CreatedWithToken(rec, "jwt-token", map[string]string{"id": "1"})

	require.Equal(t, http.StatusCreated, rec.Code)

	env := decodeEnvelope(t, rec)
	require.Equal(t, "success", env.Status)
	require.Equal(t, "jwt-token", env.Token)
}

func TestJSONError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, NotFoundError("note"))

	require.Equal(t, http.StatusNotFound, rec.Code)

	env := decodeEnvelope(t, rec)
	require.Equal(t, KindNotFound, env.Status)
	require.Equal(t, "note not found", env.Message)
}

func TestJSONError_PlainError(t *testing.T) {
	SetDebugErrors(false)

	rec := httptest.NewRecorder()
	JSONError(rec, errors.New("connection refused to db-internal:5432"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	env := decodeEnvelope(t, rec)
	require.Equal(t, KindInternal, env.Status)
	require.NotContains(t, env.Message, "db-internal")
}

func TestInternalServerError_DebugEchoesDetail(t *testing.T) {
	SetDebugErrors(true)
	t.Cleanup(func() { SetDebugErrors(false) })

	rec := httptest.NewRecorder()
	InternalServerError(rec, errors.New("boom"))

	env := decodeEnvelope(t, rec)
	require.Equal(t, "boom", env.Message)
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	NoContent(rec)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.Bytes())
}
