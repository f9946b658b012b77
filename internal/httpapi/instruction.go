package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Action names what to do with a submitted URL. Only ping runs
// synchronously through the API; the heavier actions exist in the
// vocabulary so clients get a precise rejection instead of a parse
// error.
type Action string

const (
	ActionPing   Action = "ping"
	ActionHammer Action = "hammer"
	ActionMirror Action = "mirror"
)

var validActions = map[Action]struct{}{
	ActionPing:   {},
	ActionHammer: {},
	ActionMirror: {},
}

// Instruction is one parsed batch item.
type Instruction struct {
	ID     string
	URL    string
	Action Action
}

// ParseInstruction accepts either a bare URL string or an object with
// url and optional id/action fields. Items without an id are assigned
// one. The instruction is returned as far as it was understood, so
// failures can still name the offending item.
func ParseInstruction(raw json.RawMessage) (Instruction, error) {
	trimmed := bytes.TrimSpace(raw)
	inst := Instruction{Action: ActionPing}
	if len(trimmed) == 0 {
		return inst, errors.New("empty instruction")
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return inst, fmt.Errorf("malformed instruction: %w", err)
		}
		inst.URL = strings.TrimSpace(s)
	} else {
		var obj struct {
			ID     string `json:"id"`
			URL    string `json:"url"`
			Action string `json:"action"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return inst, fmt.Errorf("malformed instruction: %w", err)
		}
		inst.ID = obj.ID
		inst.URL = strings.TrimSpace(obj.URL)
		if a := strings.ToLower(strings.TrimSpace(obj.Action)); a != "" {
			inst.Action = Action(a)
		}
	}
	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}

	if err := validateCheckURL(inst.URL); err != nil {
		return inst, err
	}
	if _, ok := validActions[inst.Action]; !ok {
		return inst, fmt.Errorf("unknown action %q", inst.Action)
	}
	return inst, nil
}

// validateCheckURL is stricter than the prober's own target rule: batch
// items must carry a dotted hostname, so bare machine names never reach
// the checker.
func validateCheckURL(raw string) error {
	if raw == "" {
		return errors.New("missing url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url: scheme %q (want http or https)", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("invalid url: missing host")
	}
	if !strings.Contains(u.Hostname(), ".") {
		return errors.New("invalid url: host must contain a dot")
	}
	return nil
}
