package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusNoContent).
		TriggerActivityRecorded("2025-01-15").
		TriggerSuccessNotification("Activity recorded").
		Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusNoContent)
	}
	trigger := w.Header().Get("HX-Trigger")
	for _, part := range []string{`"activity:recorded"`, `"day":"2025-01-15"`, `"show-notification"`, `"type":"success"`} {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
}

func TestHTMXResponseBuilder_NoTriggerHeaderWhenEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().BodyHTML("<p>ok</p>").Write(w)

	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger should not be set")
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *HTMXResponseBuilder
		code    int
	}{
		{"bad request", BadRequestError("bad <day>"), http.StatusBadRequest},
		{"not found", NotFoundError("missing"), http.StatusNotFound},
		{"internal", InternalServerError("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.code {
				t.Errorf("code = %d, want %d", w.Code, tt.code)
			}
			if strings.Contains(w.Body.String(), "<day>") {
				t.Errorf("message not escaped: %s", w.Body.String())
			}
		})
	}

	w := httptest.NewRecorder()
	UnauthorizedError().Write(w)
	if w.Code != http.StatusUnauthorized || w.Header().Get("HX-Redirect") != LoginPath {
		t.Errorf("unauthorized: code %d, HX-Redirect %q", w.Code, w.Header().Get("HX-Redirect"))
	}
	if w.Body.Len() != 0 {
		t.Errorf("unauthorized body should be empty, got %q", w.Body.String())
	}
}
