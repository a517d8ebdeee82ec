package source

import (
	"bytes"

	"github.com/tidwall/gjson"
)

// Outcome classifies a normalized response body.
type Outcome int

const (
	Ok Outcome = iota
	Empty
	Malformed
)

func (o Outcome) String() string {
	switch o {
	case Ok:
		return "ok"
	case Empty:
		return "empty"
	default:
		return "malformed"
	}
}

// Envelope is a response body reduced to one of three outcomes. Payload is
// set only for Ok; Reason only for Malformed.
type Envelope struct {
	Outcome Outcome
	Payload []byte
	Reason  string
}

// Normalize unwraps a JSON body once at the fetch boundary. Bodies wrapped
// as {"success": bool, "data": ...} are unwrapped to data; an unsuccessful
// wrapper is Malformed with the error or message text as the reason.
// Blank bodies, null, [] and {} are Empty.
func Normalize(body []byte) Envelope {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return Envelope{Outcome: Empty}
	}
	if !gjson.ValidBytes(trimmed) {
		return Envelope{Outcome: Malformed, Reason: "invalid JSON"}
	}

	root := gjson.ParseBytes(trimmed)
	if root.IsObject() {
		if success := root.Get("success"); success.Exists() {
			if !success.Bool() {
				return Envelope{Outcome: Malformed, Reason: failureReason(root)}
			}
			data := root.Get("data")
			if !data.Exists() || data.Type == gjson.Null {
				return Envelope{Outcome: Empty}
			}
			return classify(data)
		}
	}
	return classify(root)
}

func classify(r gjson.Result) Envelope {
	switch {
	case r.IsArray() && r.Get("#").Int() == 0:
		return Envelope{Outcome: Empty}
	case r.IsObject() && len(r.Map()) == 0:
		return Envelope{Outcome: Empty}
	}
	return Envelope{Outcome: Ok, Payload: []byte(r.Raw)}
}

func failureReason(root gjson.Result) string {
	for _, path := range []string{"error", "message", "detail"} {
		if v := root.Get(path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return "request unsuccessful"
}
