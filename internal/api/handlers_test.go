/*
Copyright (c) 2025 Lingo Labs

Licensed under the AGPLv3 License.
This file is part of the lingo-hub.
*/

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lingolabs/lingo-hub/internal/audio"
	"github.com/lingolabs/lingo-hub/internal/config"
	"github.com/lingolabs/lingo-hub/internal/dialogue"
	"github.com/lingolabs/lingo-hub/internal/events"
	"github.com/lingolabs/lingo-hub/internal/language"
	"github.com/lingolabs/lingo-hub/internal/session"
	"github.com/lingolabs/lingo-hub/internal/storage"
	"github.com/lingolabs/lingo-hub/internal/stt"
	"github.com/lingolabs/lingo-hub/internal/translate"
	"github.com/lingolabs/lingo-hub/internal/tts"
)

func testConfig() config.SessionConfig {
	return config.SessionConfig{
		DefaultTargetLanguage: "en",
		MaxUtterance:          50 * time.Millisecond,
		PauseTick:             5 * time.Millisecond,
		FailureThreshold:      3,
		ContextSize:           3,
		TurnLogLimit:          10,
	}
}

func newTestSessionHandler(t *testing.T) *SessionHandler {
	t.Helper()

	s := session.NewTranslationSession(
		testConfig(),
		language.DefaultCatalog(),
		audio.NewScriptedSource(),
		stt.NewStubTranscriber(stt.Script{}),
		translate.NewStubTranslator(nil),
	)
	t.Cleanup(func() { _ = s.Stop() })
	return NewSessionHandler(s)
}

func newTestChatHandler(t *testing.T) *ChatHandler {
	t.Helper()

	s := session.NewChatSession(
		testConfig(),
		"",
		language.DefaultCatalog(),
		audio.NewScriptedSource(),
		stt.NewStubTranscriber(stt.Script{}),
		translate.NewStubTranslator(nil),
		dialogue.NewStubEngine(nil),
		tts.NewStubSpeaker(),
	)
	t.Cleanup(func() { _ = s.Stop() })
	return NewChatHandler(s)
}

func decodeControl(t *testing.T, rec *httptest.ResponseRecorder) ControlResponse {
	t.Helper()
	var resp ControlResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func postJSON(handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	handler(rec, req)
	return rec
}

func TestSessionHandler_ControlFlow(t *testing.T) {
	h := newTestSessionHandler(t)

	// Control operations before start.
	if got := decodeControl(t, postJSON(h.HandlePause, "/pause", "")); got.Status != StatusNotRunning {
		t.Errorf("pause before start = %q, want %q", got.Status, StatusNotRunning)
	}
	if got := decodeControl(t, postJSON(h.HandleResume, "/resume", "")); got.Status != StatusNotPaused {
		t.Errorf("resume before start = %q, want %q", got.Status, StatusNotPaused)
	}
	if got := decodeControl(t, postJSON(h.HandleStop, "/stop", "")); got.Status != StatusStopped {
		t.Errorf("stop before start = %q, want %q", got.Status, StatusStopped)
	}

	if got := decodeControl(t, postJSON(h.HandleStart, "/start", "")); got.Status != StatusStarted {
		t.Errorf("start = %q, want %q", got.Status, StatusStarted)
	}
	if got := decodeControl(t, postJSON(h.HandleStart, "/start", "")); got.Status != StatusAlreadyRunning {
		t.Errorf("second start = %q, want %q", got.Status, StatusAlreadyRunning)
	}

	if got := decodeControl(t, postJSON(h.HandlePause, "/pause", "")); got.Status != StatusPaused {
		t.Errorf("pause = %q, want %q", got.Status, StatusPaused)
	}
	if got := decodeControl(t, postJSON(h.HandleResume, "/resume", "")); got.Status != StatusResumed {
		t.Errorf("resume = %q, want %q", got.Status, StatusResumed)
	}

	if got := decodeControl(t, postJSON(h.HandleStop, "/stop", "")); got.Status != StatusStopped {
		t.Errorf("stop = %q, want %q", got.Status, StatusStopped)
	}
	// Stop is idempotent.
	if got := decodeControl(t, postJSON(h.HandleStop, "/stop", "")); got.Status != StatusStopped {
		t.Errorf("repeated stop = %q, want %q", got.Status, StatusStopped)
	}
}

func TestSessionHandler_ChangeLanguage(t *testing.T) {
	h := newTestSessionHandler(t)

	got := decodeControl(t, postJSON(h.HandleChangeLanguage, "/change_language", `{"language":"fr"}`))
	if got.Status != StatusLanguageChanged || got.LanguageName != "French" {
		t.Errorf("change to fr = %+v, want language_changed/French", got)
	}

	// Same language again.
	got = decodeControl(t, postJSON(h.HandleChangeLanguage, "/change_language", `{"language":"fr"}`))
	if got.Status != StatusLanguageNotChanged {
		t.Errorf("change to same = %q, want %q", got.Status, StatusLanguageNotChanged)
	}

	// Unknown language.
	got = decodeControl(t, postJSON(h.HandleChangeLanguage, "/change_language", `{"language":"tlh"}`))
	if got.Status != StatusLanguageNotChanged {
		t.Errorf("change to unknown = %q, want %q", got.Status, StatusLanguageNotChanged)
	}

	rec := postJSON(h.HandleChangeLanguage, "/change_language", "not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec.Code)
	}
}

func TestSessionHandler_Status(t *testing.T) {
	h := newTestSessionHandler(t)

	rec := httptest.NewRecorder()
	h.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	body := rec.Body.String()
	var status session.Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if status.Running {
		t.Error("idle session reports running")
	}
	if status.TargetLang != "en" {
		t.Errorf("target_lang = %q, want en", status.TargetLang)
	}

	for _, field := range []string{"source_lang", "target_lang", "transcription", "translation", "running"} {
		if !strings.Contains(body, field) {
			t.Errorf("status body %q missing field %q", body, field)
		}
	}

	rec = httptest.NewRecorder()
	h.HandleStatus(rec, httptest.NewRequest(http.MethodPost, "/status", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /status = %d, want 405", rec.Code)
	}
}

func TestSessionHandler_RejectsWrongMethod(t *testing.T) {
	h := newTestSessionHandler(t)

	rec := httptest.NewRecorder()
	h.HandleStart(rec, httptest.NewRequest(http.MethodGet, "/start", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /start = %d, want 405", rec.Code)
	}
}

func TestChatHandler_ControlFlow(t *testing.T) {
	h := newTestChatHandler(t)

	if got := decodeControl(t, postJSON(h.HandleStart, "/start_chatbot", `{"language":"tlh"}`)); got.Status != StatusLanguageNotChanged {
		t.Errorf("start with unknown language = %q, want %q", got.Status, StatusLanguageNotChanged)
	}

	if got := decodeControl(t, postJSON(h.HandleStart, "/start_chatbot", `{"language":"es"}`)); got.Status != StatusStarted {
		t.Errorf("start = %q, want %q", got.Status, StatusStarted)
	}
	// An empty body is allowed.
	if got := decodeControl(t, postJSON(h.HandleStart, "/start_chatbot", "")); got.Status != StatusAlreadyRunning {
		t.Errorf("second start = %q, want %q", got.Status, StatusAlreadyRunning)
	}

	got := decodeControl(t, postJSON(h.HandleChangeLanguage, "/change_chatbot_language", `{"language":"fr"}`))
	if got.Status != StatusLanguageChanged || got.LanguageName != "French" {
		t.Errorf("change language = %+v, want language_changed/French", got)
	}

	rec := httptest.NewRecorder()
	h.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/get_chatbot_status", nil))
	chatBody := rec.Body.String()
	var status session.ChatStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode chat status: %v", err)
	}
	if !status.Running || status.Language != "fr" {
		t.Errorf("chat status = %+v, want running in fr", status)
	}
	for _, field := range []string{"user_message", "bot_response", "running"} {
		if !strings.Contains(chatBody, field) {
			t.Errorf("chat status body missing field %q", field)
		}
	}

	if got := decodeControl(t, postJSON(h.HandleStop, "/stop_chatbot", "")); got.Status != StatusStopped {
		t.Errorf("stop = %q, want %q", got.Status, StatusStopped)
	}
}

func TestChatHandler_History(t *testing.T) {
	h := newTestChatHandler(t)

	rec := httptest.NewRecorder()
	h.HandleHistory(rec, httptest.NewRequest(http.MethodGet, "/chat_history", nil))

	historyBody := rec.Body.String()
	var resp ChatHistoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if resp.History == nil || len(resp.History) != 0 {
		t.Errorf("empty history = %+v, want []", resp.History)
	}
	if !strings.Contains(historyBody, `"history":[]`) {
		t.Errorf("history body = %q, want empty array not null", historyBody)
	}
}

func TestLanguagesHandler(t *testing.T) {
	h := NewLanguagesHandler(language.DefaultCatalog())

	rec := httptest.NewRecorder()
	h.HandleLanguages(rec, httptest.NewRequest(http.MethodGet, "/api/languages", nil))

	var resp LanguagesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode languages: %v", err)
	}
	if len(resp.Languages) != 3 {
		t.Fatalf("languages = %d entries, want 3", len(resp.Languages))
	}
	if resp.Languages[0].Code != "en" {
		t.Errorf("first language = %q, want en (sorted)", resp.Languages[0].Code)
	}
}

func newTestEventsHandler(t *testing.T) (*UtteranceEventsHandler, *storage.UtteranceEventsStore) {
	t.Helper()

	db, err := storage.NewDatabase(storage.DatabaseConfig{Path: filepath.Join(t.TempDir(), "api-test.db")})
	if err != nil {
		t.Fatalf("NewDatabase() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := storage.NewUtteranceEventsStore(db)
	return NewUtteranceEventsHandler(store), store
}

func TestUtteranceEventsHandler(t *testing.T) {
	h, store := newTestEventsHandler(t)

	stored := events.NewUtteranceEvent(events.KindTranslation)
	stored.SetLanguages("es", "en")
	stored.SetOutput("hola", "hello")
	if err := store.Insert(stored); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	rec := httptest.NewRecorder()
	h.HandleEvents(rec, httptest.NewRequest(http.MethodGet, "/api/events?kind=translation", nil))

	var resp ListUtteranceEventsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if resp.Total != 1 || len(resp.Events) != 1 {
		t.Fatalf("list = %+v, want one event", resp)
	}
	if resp.Events[0].SourceText != "hola" {
		t.Errorf("event source text = %q, want hola", resp.Events[0].SourceText)
	}

	rec = httptest.NewRecorder()
	h.HandleEventByID(rec, httptest.NewRequest(http.MethodGet, "/api/events/"+stored.UUID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get by id status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleEventByID(rec, httptest.NewRequest(http.MethodGet, "/api/events/missing-uuid", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing event status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleEvents(rec, httptest.NewRequest(http.MethodGet, "/api/events?kind=chat", nil))
	var empty ListUtteranceEventsResponse
	if err := json.NewDecoder(rec.Body).Decode(&empty); err != nil {
		t.Fatalf("failed to decode empty list: %v", err)
	}
	if empty.Total != 0 || len(empty.Events) != 0 {
		t.Errorf("chat list = %+v, want empty", empty)
	}
}
