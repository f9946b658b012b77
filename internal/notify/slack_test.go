package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewSlack_EmptyWebhookDisabled(t *testing.T) {
	s := NewSlack("")
	if s != nil {
		t.Fatalf("want nil client for empty webhook, got %+v", s)
	}
	err := s.Send(context.Background(), "Title", "text")
	if err == nil || !strings.Contains(err.Error(), "webhook disabled") {
		t.Fatalf("want disabled error, got %v", err)
	}
}

func TestSlack_SendsTitleAndText(t *testing.T) {
	var gotText, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		gotText = payload["text"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSlack(srv.URL)
	if s == nil {
		t.Fatalf("want client for non-empty webhook")
	}
	if err := s.Send(context.Background(), "Probe finished: https://example.com", "attempts=3"); err != nil {
		t.Fatalf("send: %v", err)
	}
	want := "*Probe finished: https://example.com*\nattempts=3"
	if gotText != want {
		t.Fatalf("want payload text %q, got %q", want, gotText)
	}
	if gotType != "application/json" {
		t.Fatalf("want json content type, got %q", gotType)
	}
}

func TestSlack_Non2xxCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewSlack(srv.URL).Send(context.Background(), "X", "Y")
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("want status in error, got %v", err)
	}
}
