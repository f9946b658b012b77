package httpapi

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseInstruction_PlainURL(t *testing.T) {
	inst, err := ParseInstruction(json.RawMessage(`"https://example.com"`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if inst.URL != "https://example.com" {
		t.Fatalf("url wrong: %q", inst.URL)
	}
	if inst.Action != ActionPing {
		t.Fatalf("want default action ping, got %q", inst.Action)
	}
	if inst.ID == "" {
		t.Fatalf("want generated id")
	}
}

func TestParseInstruction_Object(t *testing.T) {
	inst, err := ParseInstruction(json.RawMessage(`{"id":"job-7","url":"http://example.com/x","action":"ping"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if inst.ID != "job-7" || inst.URL != "http://example.com/x" || inst.Action != ActionPing {
		t.Fatalf("parsed wrong: %+v", inst)
	}
}

func TestParseInstruction_ObjectDefaultsAction(t *testing.T) {
	inst, err := ParseInstruction(json.RawMessage(`{"url":"https://example.com"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if inst.Action != ActionPing {
		t.Fatalf("want ping default, got %q", inst.Action)
	}
}

func TestParseInstruction_ActionCaseAndSpacing(t *testing.T) {
	cases := []struct {
		raw  string
		want Action
	}{
		{`{"url":"https://example.com","action":"PING"}`, ActionPing},
		{`{"url":"https://example.com","action":" ping "}`, ActionPing},
		{`{"url":"https://example.com","action":"Mirror"}`, ActionMirror},
	}
	for _, tc := range cases {
		inst, err := ParseInstruction(json.RawMessage(tc.raw))
		if err != nil {
			t.Fatalf("%s should parse: %v", tc.raw, err)
		}
		if inst.Action != tc.want {
			t.Fatalf("want action %q, got %+v", tc.want, inst)
		}
	}
}

func TestParseInstruction_KnownHeavyActions(t *testing.T) {
	for _, action := range []string{"hammer", "mirror"} {
		inst, err := ParseInstruction(json.RawMessage(`{"url":"https://example.com","action":"` + action + `"}`))
		if err != nil {
			t.Fatalf("%s should parse: %v", action, err)
		}
		if string(inst.Action) != action {
			t.Fatalf("action wrong: %+v", inst)
		}
	}
}

func TestParseInstruction_Rejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"empty item", `""`, "missing url"},
		{"whitespace only", `"   "`, "missing url"},
		{"no scheme", `"example.com"`, "scheme"},
		{"ftp scheme", `"ftp://example.com"`, "scheme"},
		{"host without dot", `"http://localhost:8080"`, "dot"},
		{"object without url", `{"action":"ping"}`, "missing url"},
		{"unknown action", `{"url":"https://example.com","action":"destroy"}`, "unknown action"},
		{"not json at all", `{broken`, "malformed"},
		{"number item", `42`, "malformed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseInstruction(json.RawMessage(tc.raw))
			if err == nil {
				t.Fatalf("want error, got none")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("want error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestParseInstruction_UnknownActionKeepsIdentity(t *testing.T) {
	inst, err := ParseInstruction(json.RawMessage(`{"id":"job-9","url":"https://example.com","action":"destroy"}`))
	if err == nil {
		t.Fatalf("want error")
	}
	if inst.ID != "job-9" || inst.URL != "https://example.com" {
		t.Fatalf("rejected instruction should keep its identity: %+v", inst)
	}
}

func TestParseInstruction_DottedIPAllowed(t *testing.T) {
	inst, err := ParseInstruction(json.RawMessage(`"http://127.0.0.1:8080/healthz"`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if inst.URL != "http://127.0.0.1:8080/healthz" {
		t.Fatalf("url wrong: %q", inst.URL)
	}
}
