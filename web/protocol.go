package web

import (
	"encoding/json"
	"errors"
	"fmt"

	"gridsnake/game"
	"gridsnake/game/types"
	"gridsnake/stats"
	"gridsnake/ui/input"
)

const (
	TypeInput    = "input"
	TypeWelcome  = "welcome"
	TypeSnapshot = "snapshot"
	TypeError    = "error"
)

// Error codes sent to clients.
const (
	CodeBadRequest    = "E_BAD_REQUEST"
	CodeUnknownAction = "E_UNKNOWN_ACTION"
)

// InputMsg is the only message a client sends.
type InputMsg struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Speed  string `json:"speed,omitempty"`
}

type WelcomeMsg struct {
	Type      string        `json:"type"`
	SessionID string        `json:"session_id"`
	GridSize  int           `json:"grid_size"`
	Speed     types.Speed   `json:"speed"`
	Speeds    []types.Speed `json:"speeds"`
}

// SnapshotMsg is sent after every state change.
type SnapshotMsg struct {
	Type  string        `json:"type"`
	Speed types.Speed   `json:"speed"`
	Stats stats.Summary `json:"stats"`
	game.Snapshot
}

type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newError(code, format string, args ...any) ErrorMsg {
	return ErrorMsg{Type: TypeError, Code: code, Message: fmt.Sprintf(format, args...)}
}

// decodeInput parses a client frame into an action. On failure it returns
// the error message to send back.
func decodeInput(b []byte) (input.Action, *ErrorMsg) {
	var msg InputMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		e := newError(CodeBadRequest, "malformed message: %v", err)
		return input.Action{}, &e
	}
	if msg.Type != TypeInput {
		e := newError(CodeBadRequest, "unexpected message type %q", msg.Type)
		return input.Action{}, &e
	}
	act, err := input.Parse(msg.Action, msg.Speed)
	if err != nil {
		code := CodeBadRequest
		if errors.Is(err, input.ErrUnknownAction) {
			code = CodeUnknownAction
		}
		e := newError(code, "%v", err)
		return input.Action{}, &e
	}
	// Sound lives in the page; the server has nothing to mute.
	if act.Kind == input.KindMute {
		e := newError(CodeUnknownAction, "mute is handled by the client")
		return input.Action{}, &e
	}
	return act, nil
}
