package note

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/mominaamjad/pixel-notes/internal/core"
	"github.com/mominaamjad/pixel-notes/internal/export"
	"github.com/mominaamjad/pixel-notes/internal/middleware"
)

// asUser injects an authenticated identity the way the real
// authenticator does.
func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTestRouter(userID string) (*chi.Mux, *Service) {
	svc := NewService(newFakeRepository())
	handler := NewHandler(svc, export.NewFormatter(), validator.New())

	r := chi.NewRouter()
	r.Route("/api/notes", func(r chi.Router) {
		r.Use(asUser(userID))
		handler.RegisterRoutes(r)
	})
	return r, svc
}

func doJSON(
	t *testing.T,
	router http.Handler,
	method, path, body string,
) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) core.Envelope {
	t.Helper()
	var env core.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func createViaAPI(t *testing.T, router http.Handler, body string) NoteResponse {
	t.Helper()
	rec := doJSON(t, router, "POST", "/api/notes/", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var payload struct {
		Data NoteEnvelope `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Data.Note
}

func TestHandler_Create(t *testing.T) {
	router, _ := newTestRouter("u1")

	created := createViaAPI(t, router,
		`{"title":"Hello","content":"world","tags":["greeting"]}`)

	require.NotEmpty(t, created.ID)
	require.Equal(t, "Hello", created.Title)
	require.Equal(t, DefaultColor, created.Color)
}

func TestHandler_Create_MissingContent(t *testing.T) {
	router, _ := newTestRouter("u1")

	rec := doJSON(t, router, "POST", "/api/notes/", `{"title":"no body"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeBody(t, rec)
	require.Equal(t, core.KindValidation, env.Status)
	require.Contains(t, env.Message, "Content")
}

func TestHandler_Create_BadColor(t *testing.T) {
	router, _ := newTestRouter("u1")

	rec := doJSON(t, router, "POST", "/api/notes/",
		`{"content":"x","color":"purple"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_List_EmptyIs200(t *testing.T) {
	router, _ := newTestRouter("u1")

	rec := doJSON(t, router, "GET", "/api/notes/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeBody(t, rec)
	require.Equal(t, "success", env.Status)
	require.NotNil(t, env.Length)
	require.Equal(t, 0, *env.Length)
}

func TestHandler_List_FilterParsing(t *testing.T) {
	router, _ := newTestRouter("u1")

	createViaAPI(t, router, `{"content":"a","tags":["work"]}`)
	createViaAPI(t, router, `{"content":"b","tags":["home"]}`)

	rec := doJSON(t, router, "GET", "/api/notes/?tags=work", "")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeBody(t, rec)
	require.Equal(t, 1, *env.Length)
}

func TestHandler_List_TagParam(t *testing.T) {
	router, _ := newTestRouter("u1")

	tagged := createViaAPI(t, router, `{"content":"report","tags":["work"]}`)
	createViaAPI(t, router, `{"content":"scribble"}`)

	rec := doJSON(t, router, "GET", "/api/notes/?tag=work", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Length int           `json:"length"`
		Data   NotesEnvelope `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, 1, payload.Length)
	require.Equal(t, tagged.ID, payload.Data.Notes[0].ID)
}

func TestHandler_List_BadBoolParam(t *testing.T) {
	router, _ := newTestRouter("u1")

	rec := doJSON(t, router, "GET", "/api/notes/?favorite=maybe", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Get_NotFound(t *testing.T) {
	router, _ := newTestRouter("u1")

	rec := doJSON(t, router, "GET", "/api/notes/missing-id", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	env := decodeBody(t, rec)
	require.Equal(t, core.KindNotFound, env.Status)
}

func TestHandler_Update_EmptyPatchRejected(t *testing.T) {
	router, _ := newTestRouter("u1")
	created := createViaAPI(t, router, `{"content":"x"}`)

	rec := doJSON(t, router, "PATCH", "/api/notes/"+created.ID, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Update(t *testing.T) {
	router, _ := newTestRouter("u1")
	created := createViaAPI(t, router, `{"content":"x","title":"old"}`)

	rec := doJSON(t, router, "PATCH", "/api/notes/"+created.ID,
		`{"title":"new"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data NoteEnvelope `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "new", payload.Data.Note.Title)
	require.Equal(t, "x", payload.Data.Note.Content)
}

func TestHandler_Delete(t *testing.T) {
	router, _ := newTestRouter("u1")
	created := createViaAPI(t, router, `{"content":"bye"}`)

	rec := doJSON(t, router, "DELETE", "/api/notes/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, "GET", "/api/notes/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ToggleFavorite(t *testing.T) {
	router, _ := newTestRouter("u1")
	created := createViaAPI(t, router, `{"content":"n"}`)

	rec := doJSON(t, router, "PATCH", "/api/notes/"+created.ID+"/favorite", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data NoteEnvelope `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.True(t, payload.Data.Note.IsFavorite)
}

func TestHandler_Tags(t *testing.T) {
	router, _ := newTestRouter("u1")
	createViaAPI(t, router, `{"content":"a","tags":["beta","alpha"]}`)

	rec := doJSON(t, router, "GET", "/api/notes/tags", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Length int          `json:"length"`
		Data   TagsEnvelope `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, 2, payload.Length)
	require.Equal(t, []string{"alpha", "beta"}, payload.Data.Tags)
}

func TestHandler_Export(t *testing.T) {
	router, _ := newTestRouter("u1")
	createViaAPI(t, router, `{"content":"stuff","title":"Exported"}`)

	rec := doJSON(t, router, "GET", "/api/notes/export?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	require.Contains(t, rec.Body.String(), "Exported")
}

func TestHandler_Export_JSONEnvelope(t *testing.T) {
	router, _ := newTestRouter("u1")
	createViaAPI(t, router, `{"content":"stuff","title":"Exported"}`)

	rec := doJSON(t, router, "GET", "/api/notes/export?format=json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	require.Empty(t, rec.Header().Get("Content-Disposition"))

	env := decodeBody(t, rec)
	require.Equal(t, "success", env.Status)
	require.NotNil(t, env.Length)
	require.Equal(t, 1, *env.Length)
	require.Contains(t, rec.Body.String(), "Exported")
}

func TestHandler_Export_UnsupportedFormat(t *testing.T) {
	router, _ := newTestRouter("u1")

	rec := doJSON(t, router, "GET", "/api/notes/export?format=pdf", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeBody(t, rec)
	require.Equal(t, core.KindUnsupportedFormat, env.Status)
}

func TestHandler_Download(t *testing.T) {
	router, _ := newTestRouter("u1")
	created := createViaAPI(t, router, `{"content":"the text","title":"My Note"}`)

	rec := doJSON(t, router, "GET", "/api/notes/download/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "my-note.txt")
	require.Contains(t, rec.Body.String(), "the text")
}

func TestHandler_Download_JSONEnvelope(t *testing.T) {
	router, _ := newTestRouter("u1")
	created := createViaAPI(t, router, `{"content":"body","title":"Mine"}`)

	rec := doJSON(t, router, "GET",
		"/api/notes/download/"+created.ID+"?format=json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Content-Disposition"))

	env := decodeBody(t, rec)
	require.Equal(t, "success", env.Status)
	require.Contains(t, rec.Body.String(), "Mine")
}

func TestHandler_Download_ForeignNote(t *testing.T) {
	svc := NewService(newFakeRepository())
	created, err := svc.Create(context.Background(), "owner",
		CreateNoteRequest{Content: "secret"})
	require.NoError(t, err)

	intruderRouter := chi.NewRouter()
	intruderRouter.Route("/api/notes", func(r chi.Router) {
		r.Use(asUser("intruder"))
		NewHandler(svc, export.NewFormatter(), validator.New()).RegisterRoutes(r)
	})

	rec := doJSON(t, intruderRouter, "GET",
		"/api/notes/download/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Unauthenticated(t *testing.T) {
	svc := NewService(newFakeRepository())
	handler := NewHandler(svc, export.NewFormatter(), validator.New())

	r := chi.NewRouter()
	r.Route("/api/notes", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})

	rec := doJSON(t, r, "GET", "/api/notes/", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
