package exotel

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// Payload is the opaque key/value set Exotel sends to a passthru webhook.
// Exotel issues GET requests with a query string by default; POST form and JSON bodies are
// accepted as well. Values from the body win over the query string.
type Payload map[string]string

// Fields consumed by the reconciler.
const (
	FieldCallSid          = "CallSid"
	FieldStatus           = "Status"
	FieldDialWhomNumber   = "DialWhomNumber"
	FieldTo               = "To"
	FieldCallFrom         = "CallFrom"
	FieldDialCallDuration = "DialCallDuration"
	FieldRecordingURL     = "RecordingUrl"
	FieldCallType         = "CallType"
	FieldDialCallStatus   = "DialCallStatus"
)

// Get returns the trimmed value for key, or "" when absent.
func (p Payload) Get(key string) string {
	return strings.TrimSpace(p[key])
}

func (p Payload) CallSid() string { return p.Get(FieldCallSid) }

// Duration parses DialCallDuration in seconds. Absent or non-numeric values read as 0.
func (p Payload) Duration() int {
	v := p.Get(FieldDialCallDuration)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// RecordingURL returns nil when the provider sent no recording.
func (p Payload) RecordingURL() *string {
	v := p.Get(FieldRecordingURL)
	if v == "" {
		return nil
	}
	return &v
}

// JSON renders the payload for error logs.
func (p Payload) JSON() string {
	b, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ParsePayload collects query, form and JSON body values from an inbound webhook request.
func ParsePayload(r *http.Request) (Payload, error) {
	out := Payload{}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		for k, vs := range r.URL.Query() {
			if len(vs) > 0 {
				out[k] = vs[0]
			}
		}
		if r.Body == nil || r.Body == http.NoBody {
			return out, nil
		}
		var body map[string]any
		err := json.NewDecoder(r.Body).Decode(&body)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, errors.New("exotel: invalid json payload")
		}
		for k, v := range body {
			out[k] = stringify(v)
		}
		return out, nil
	}

	// ParseForm merges the query string with url-encoded bodies, body first.
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	for k, vs := range r.Form {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
