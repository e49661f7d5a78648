package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/aselo_helpline/backend/internal/ai"
	"github.com/aselo_helpline/backend/internal/db"
	"github.com/aselo_helpline/backend/internal/extract"
	"github.com/aselo_helpline/backend/internal/service"
)

type errorBody struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func newTestRouter(t *testing.T, model *ai.MockModel) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := db.OpenJSON(filepath.Join(t.TempDir(), "local_db.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	v := service.NewValidator()
	h := &Handler{
		Store: store,
		Chat: &service.ChatService{
			Store: store,
			Assistant: extract.NewAssistant(model,
				ai.Options{Temperature: extract.DefaultChatTemperature},
				ai.Options{Temperature: extract.DefaultSummaryTemperature},
				zerolog.Nop(), nil),
			Extractor: extract.NewExtractor(model, extract.DefaultExtractionTemperature, 0, zerolog.Nop(), nil),
			Logger:    zerolog.Nop(),
		},
		Forms:          &service.FormService{Store: store, Validator: v, Logger: zerolog.Nop()},
		Validator:      v,
		Logger:         zerolog.Nop(),
		RequestTimeout: 5 * time.Second,
	}

	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.POST("/api/chat", h.SendMessage)
	r.POST("/api/autofill", h.Autofill)
	r.POST("/api/summarize", h.Summarize)
	r.POST("/api/metadata", h.Metadata)
	r.GET("/api/conversation/:session_id", h.Conversation)
	r.DELETE("/api/conversation/:session_id", h.DeleteConversation)
	r.GET("/api/conversations", h.Conversations)
	r.POST("/api/submitForm", h.SubmitForm)
	r.GET("/api/submission/:session_id", h.Submission)
	r.PUT("/api/submission/:session_id/status", h.UpdateSubmissionStatus)
	r.GET("/api/submissions", h.Submissions)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t, &ai.MockModel{})
	w := do(t, r, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestChatThenHistory(t *testing.T) {
	r := newTestRouter(t, &ai.MockModel{Replies: map[string]string{ai.TaskChat: "You are safe to talk here."}})

	w := do(t, r, http.MethodPost, "/api/chat", map[string]string{"sessionId": "s1", "message": "hello"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Response string `json:"response"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Response != "You are safe to talk here." {
		t.Fatalf("unexpected response %q", resp.Response)
	}

	w = do(t, r, http.MethodGet, "/api/conversation/s1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var conv struct {
		SessionID string `json:"sessionId"`
		Messages  []struct {
			Sender string `json:"sender"`
		} `json:"messages"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &conv)
	if conv.SessionID != "s1" || len(conv.Messages) != 2 || conv.Messages[1].Sender != "bot" {
		t.Fatalf("unexpected conversation %+v", conv)
	}

	w = do(t, r, http.MethodGet, "/api/conversations", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestChatValidation(t *testing.T) {
	r := newTestRouter(t, &ai.MockModel{})

	w := do(t, r, http.MethodPost, "/api/chat", map[string]string{"sessionId": "s1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", body.Error.Code)
	}

	w = do(t, r, http.MethodPost, "/api/chat", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Error.Code != "INVALID_REQUEST" {
		t.Fatalf("expected INVALID_REQUEST, got %s", body.Error.Code)
	}
}

func TestChatModelErrorsMapToGatewayStatuses(t *testing.T) {
	cases := []struct {
		err    *ai.Error
		status int
	}{
		{&ai.Error{Code: ai.CodeTimeout}, http.StatusGatewayTimeout},
		{&ai.Error{Code: ai.CodeConfig}, http.StatusServiceUnavailable},
		{&ai.Error{Code: ai.CodeRateLimited, RetryAfter: 3 * time.Second}, http.StatusTooManyRequests},
		{&ai.Error{Code: ai.CodeHTTP, Status: 500}, http.StatusBadGateway},
		{&ai.Error{Code: ai.CodeNoResponse}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		r := newTestRouter(t, &ai.MockModel{Err: tc.err})
		w := do(t, r, http.MethodPost, "/api/chat", map[string]string{"sessionId": "s1", "message": "hi"})
		if w.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.err.Code, tc.status, w.Code)
		}
		if body := decodeError(t, w); body.Error.Code != tc.err.Code {
			t.Fatalf("expected code %s, got %s", tc.err.Code, body.Error.Code)
		}
		if tc.err.RetryAfter > 0 && w.Header().Get("Retry-After") != "3" {
			t.Fatalf("expected Retry-After 3, got %q", w.Header().Get("Retry-After"))
		}
	}
}

func TestAutofill(t *testing.T) {
	model := &ai.MockModel{Replies: map[string]string{
		ai.TaskChat:    "ok",
		ai.TaskExtract: "I don't know",
	}}
	r := newTestRouter(t, model)

	w := do(t, r, http.MethodPost, "/api/autofill", map[string]string{"sessionId": "missing"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Error.Code != "SESSION_NOT_FOUND" {
		t.Fatalf("expected SESSION_NOT_FOUND, got %s", body.Error.Code)
	}

	do(t, r, http.MethodPost, "/api/chat", map[string]string{"sessionId": "s1", "message": "I am 12 and live in Kingston"})
	w = do(t, r, http.MethodPost, "/api/autofill", map[string]string{"sessionId": "s1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("X-Extraction-Outcome"); got != "fallback" {
		t.Fatalf("expected fallback outcome, got %q", got)
	}

	var record map[string]map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"child", "category", "summary"} {
		if _, ok := record[key]; !ok {
			t.Fatalf("missing %q in %s", key, w.Body.String())
		}
	}
	if record["summary"]["callSummary"] != extract.FallbackCallSummary {
		t.Fatalf("unexpected callSummary %v", record["summary"]["callSummary"])
	}
	if traf, ok := record["category"]["trafficking"].([]any); !ok || len(traf) != 0 {
		t.Fatalf("expected trafficking: [], got %v", record["category"]["trafficking"])
	}
	for _, reserved := range []string{"summaryAccuracy", "summaryFeedback", "otherLocation"} {
		if v, ok := record["summary"][reserved]; !ok || v != nil {
			t.Fatalf("expected %s to be null, got %v", reserved, v)
		}
	}
}

func TestSummarizeAndMetadata(t *testing.T) {
	r := newTestRouter(t, &ai.MockModel{Replies: map[string]string{
		ai.TaskSummary:  "A short summary.",
		ai.TaskMetadata: `{"okForCaseWorkerToCall": "No"}`,
	}})
	do(t, r, http.MethodPost, "/api/chat", map[string]string{"sessionId": "s1", "message": "hi"})

	w := do(t, r, http.MethodPost, "/api/summarize", map[string]string{"sessionId": "s1"})
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("A short summary.")) {
		t.Fatalf("unexpected summarize response %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/api/metadata", map[string]string{"sessionId": "s1"})
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"okForCaseWorkerToCall":"No"`)) {
		t.Fatalf("unexpected metadata response %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/api/summarize", map[string]string{"sessionId": "nope"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDeleteConversation(t *testing.T) {
	r := newTestRouter(t, &ai.MockModel{})
	do(t, r, http.MethodPost, "/api/chat", map[string]string{"sessionId": "s1", "message": "hi"})

	if w := do(t, r, http.MethodDelete, "/api/conversation/s1", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w := do(t, r, http.MethodGet, "/api/conversation/s1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for a deleted session, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"messages":[]`)) {
		t.Fatalf("expected empty history, got %s", w.Body.String())
	}
	if w := do(t, r, http.MethodDelete, "/api/conversation/s1", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting twice, got %d", w.Code)
	}
}

func TestRetryAfterRoundsUp(t *testing.T) {
	cases := map[time.Duration]string{
		500 * time.Millisecond:  "1",
		time.Second:             "1",
		1500 * time.Millisecond: "2",
		7 * time.Second:         "7",
	}
	for in, want := range cases {
		if got := retryAfterSeconds(in); got != want {
			t.Fatalf("retryAfterSeconds(%s) = %q; want %q", in, got, want)
		}
	}

	r := newTestRouter(t, &ai.MockModel{Err: &ai.Error{Code: ai.CodeRateLimited, RetryAfter: 300 * time.Millisecond}})
	w := do(t, r, http.MethodPost, "/api/chat", map[string]string{"sessionId": "s1", "message": "hi"})
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected 429 with Retry-After 1, got %d %q", w.Code, w.Header().Get("Retry-After"))
	}
}

func TestFormLifecycle(t *testing.T) {
	r := newTestRouter(t, &ai.MockModel{})

	form := map[string]any{
		"sessionId": "s1",
		"formData": map[string]any{
			"child":    map[string]any{"firstName": "Ann", "age": "09", "phone1": "876-555-0123"},
			"category": map[string]any{"violence": []string{"Neglect"}},
			"summary":  map[string]any{"callSummary": "Neglect reported.", "keepConfidential": true},
		},
		"contactEmail": "worker@example.org",
	}
	w := do(t, r, http.MethodPost, "/api/submitForm", form)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/submission/s1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = do(t, r, http.MethodPut, "/api/submission/s1/status?status=closed", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"status":"closed"`)) {
		t.Fatalf("unexpected status update %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPut, "/api/submission/s1/status?status=lost", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/submission/none", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", body.Error.Code)
	}

	w = do(t, r, http.MethodGet, "/api/submissions", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"count":1`)) {
		t.Fatalf("unexpected list %d %s", w.Code, w.Body.String())
	}
}

func TestSubmitFormValidation(t *testing.T) {
	r := newTestRouter(t, &ai.MockModel{})
	form := map[string]any{
		"sessionId": "s1",
		"formData": map[string]any{
			"child":   map[string]any{"phone1": "123", "gender": "Dragon"},
			"summary": map[string]any{"callSummary": ""},
		},
	}
	w := do(t, r, http.MethodPost, "/api/submitForm", form)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decodeError(t, w)
	if body.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", body.Error.Code)
	}
	var fields []service.FieldError
	if err := json.Unmarshal(body.Error.Details, &fields); err != nil || len(fields) != 3 {
		t.Fatalf("expected 3 field errors, got %s", body.Error.Details)
	}
}
