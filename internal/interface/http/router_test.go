package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-kb/internal/domain/faq"
	"github.com/yanqian/faq-kb/internal/domain/media"
	"github.com/yanqian/faq-kb/internal/infra/config"
	"github.com/yanqian/faq-kb/internal/infra/faqcache"
	"github.com/yanqian/faq-kb/internal/infra/faqrepo"
	"github.com/yanqian/faq-kb/internal/infra/mediastore"
)

const createBody = `{
	"questionVariations": ["How do I reset my password?", "Forgot password", "Password reset steps"],
	"answers": [{"text": "Use the self-service portal."}, {"text": "Call the help desk."}],
	"department": "Human Resources",
	"intent": "reset_password",
	"entities": ["Password", "Account"],
	"context": "Account Help"
}`

func TestRouter_CreateThenListByDepartment(t *testing.T) {
	server := newRouterUnderTest(t)

	recorder := performRequest(server, http.MethodPost, "/api/queries", createBody)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created struct {
		Message  string     `json:"message"`
		Question faq.Record `json:"question"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	require.Equal(t, "Question added successfully!", created.Message)
	require.NotEmpty(t, created.Question.ID)
	require.Equal(t, "humanresources", created.Question.Department)
	require.Equal(t, []string{"password", "account"}, created.Question.Entities)

	recorder = performRequest(server, http.MethodGet, "/api/queries/department/HUMAN%20resources", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	questions := decodeQuestions(t, recorder.Body.Bytes())
	require.Len(t, questions, 1)
	require.Equal(t, created.Question.ID, questions[0].ID)

	recorder = performRequest(server, http.MethodGet, "/api/queries", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, decodeQuestions(t, recorder.Body.Bytes()), 1)
}

func TestRouter_EmptyListingsReturnNoResults(t *testing.T) {
	server := newRouterUnderTest(t)

	for _, path := range []string{"/api/queries", "/api/queries/department/finance", "/api/queries/search?query=payroll"} {
		recorder := performRequest(server, http.MethodGet, path, "")
		require.Equal(t, http.StatusNotFound, recorder.Code, path)
		errBody := decodeErrorBody(t, recorder.Body.Bytes())
		require.Equal(t, "no_results", errBody["error"]["code"], path)
	}
}

func TestRouter_CreateValidation(t *testing.T) {
	server := newRouterUnderTest(t)

	cases := map[string]string{
		"malformed json":     `{"questionVariations": "nope"`,
		"too few variations": `{"questionVariations":["a","b"],"answers":[{"text":"x"},{"text":"y"}],"department":"hr","intent":"a_b","entities":["e"],"context":"c"}`,
		"bad intent":         strings.Replace(createBody, "reset_password", "resetpassword", 1),
	}
	for name, body := range cases {
		recorder := performRequest(server, http.MethodPost, "/api/queries", body)
		require.Equal(t, http.StatusBadRequest, recorder.Code, name)
		errBody := decodeErrorBody(t, recorder.Body.Bytes())
		require.Equal(t, "invalid_request", errBody["error"]["code"], name)
		require.NotEmpty(t, errBody["error"]["message"], name)
	}
}

func TestRouter_UpdateFlow(t *testing.T) {
	server := newRouterUnderTest(t)
	id := createQuestion(t, server)

	recorder := performRequest(server, http.MethodPut, "/api/queries/"+id, `{}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, "no_fields", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])

	recorder = performRequest(server, http.MethodPut, "/api/queries/"+id, `{"entities":[]}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])

	recorder = performRequest(server, http.MethodPut, "/api/queries/missing-id", `{"context":"x"}`)
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Equal(t, "not_found", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])

	recorder = performRequest(server, http.MethodPut, "/api/queries/"+id, `{"department":"Customer Care","context":""}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	var updated struct {
		Message         string     `json:"message"`
		UpdatedQuestion faq.Record `json:"updatedQuestion"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &updated))
	require.Equal(t, "Question updated successfully.", updated.Message)
	require.Equal(t, "customercare", updated.UpdatedQuestion.Department)
	require.Equal(t, "", updated.UpdatedQuestion.Context)
	require.Equal(t, "reset_password", updated.UpdatedQuestion.Intent)

	recorder = performRequest(server, http.MethodGet, "/api/queries/department/humanresources", "")
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRouter_UpdateWithoutBodyHasNoFields(t *testing.T) {
	server := newRouterUnderTest(t)
	id := createQuestion(t, server)

	recorder := performRequest(server, http.MethodPut, "/api/queries/"+id, "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "no_fields", errBody["error"]["code"])
	require.Equal(t, "no fields to update", errBody["error"]["message"])
}

func TestRouter_SearchAndDelete(t *testing.T) {
	server := newRouterUnderTest(t)
	id := createQuestion(t, server)

	recorder := performRequest(server, http.MethodGet, "/api/queries/search", "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])

	recorder = performRequest(server, http.MethodGet, "/api/queries/search?query=RESET+password", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, decodeQuestions(t, recorder.Body.Bytes()), 1)

	recorder = performRequest(server, http.MethodDelete, "/api/queries/"+id, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "Question deleted successfully.")

	recorder = performRequest(server, http.MethodDelete, "/api/queries/"+id, "")
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Equal(t, "not_found", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/queries/abc", nil)
	req.Header.Set("Origin", "https://kb.example.com")
	recorder := httptest.NewRecorder()
	server.Handler.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.Equal(t, "https://kb.example.com", recorder.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, recorder.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestRouter_ImageUploadAndServe(t *testing.T) {
	server := newRouterUnderTest(t)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "reset.png")
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/queries/images", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	recorder := httptest.NewRecorder()
	server.Handler.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var uploaded media.UploadResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &uploaded))
	require.Equal(t, "image/png", uploaded.MimeType)
	require.Equal(t, "/api/queries/images/"+uploaded.Key, uploaded.ImageURL)

	recorder = performRequest(server, http.MethodGet, uploaded.ImageURL, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "image/png", recorder.Header().Get("Content-Type"))
	require.Equal(t, png, recorder.Body.Bytes())

	recorder = performRequest(server, http.MethodGet, "/api/queries/images/unknown.png", "")
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRouter_ImageUploadRejectsOversizedFile(t *testing.T) {
	server := newRouterWithImageLimit(t, 8)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "large.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/queries/images", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	recorder := httptest.NewRecorder()
	server.Handler.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.Equal(t, "image exceeds 8 bytes", errBody["error"]["message"])
}

func TestRouter_ImageUploadRequiresFile(t *testing.T) {
	server := newRouterUnderTest(t)

	recorder := performRequest(server, http.MethodPost, "/api/queries/images", "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestToHTTPError(t *testing.T) {
	require.Equal(t, http.StatusInternalServerError, toHTTPError(io.ErrUnexpectedEOF).Status)
	require.Equal(t, "internal_error", toHTTPError(io.ErrUnexpectedEOF).Code)
	require.Equal(t, fallbackErrorMessage, toHTTPError(io.ErrUnexpectedEOF).Message)
}

func createQuestion(t *testing.T, server *http.Server) string {
	t.Helper()
	recorder := performRequest(server, http.MethodPost, "/api/queries", createBody)
	require.Equal(t, http.StatusCreated, recorder.Code)
	var created struct {
		Question faq.Record `json:"question"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	return created.Question.ID
}

func performRequest(server *http.Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	server.Handler.ServeHTTP(recorder, req)
	return recorder
}

func newRouterUnderTest(t *testing.T) *http.Server {
	t.Helper()
	return newRouterWithImageLimit(t, 1<<20)
}

func newRouterWithImageLimit(t *testing.T, maxBytes int64) *http.Server {
	t.Helper()
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			AllowedOrigins: []string{"https://kb.example.com"},
		},
		Media: config.MediaConfig{MaxBytes: maxBytes},
	}
	logger := newTestLogger()
	faqSvc := faq.NewService(faq.Config{CacheTTL: time.Minute}, faqrepo.NewMemoryRepository(), faqcache.NewMemoryCache(), logger)
	mediaSvc := media.NewService(media.Config{MaxBytes: cfg.Media.MaxBytes, PublicBaseURL: "/api/queries/images/"}, mediastore.NewMemoryStorage(), logger)
	return NewRouter(cfg, NewHandler(faqSvc, mediaSvc, logger))
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func decodeQuestions(t *testing.T, raw []byte) []faq.Record {
	t.Helper()
	var body struct {
		Questions []faq.Record `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.Questions
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
