package exotel

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"exotel-connector/internal/calllog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload_QueryString(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/webhooks/exotel/incoming-call?CallSid=CA1&CallFrom=0912&To=0803&Status=busy", nil)

	p, err := ParsePayload(r)
	require.NoError(t, err)
	assert.Equal(t, "CA1", p.CallSid())
	assert.Equal(t, "0912", p.Get(FieldCallFrom))
	assert.Equal(t, "0803", p.Get(FieldTo))
}

func TestParsePayload_FormBodyWinsOverQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/x?CallSid=fromquery", strings.NewReader("CallSid=frombody&DialCallDuration=15"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p, err := ParsePayload(r)
	require.NoError(t, err)
	assert.Equal(t, "frombody", p.CallSid())
	assert.Equal(t, 15, p.Duration())
}

func TestParsePayload_JSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"CallSid":"CA1","DialCallDuration":42,"RecordingUrl":null}`))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")

	p, err := ParsePayload(r)
	require.NoError(t, err)
	assert.Equal(t, "CA1", p.CallSid())
	assert.Equal(t, 42, p.Duration())
	assert.Nil(t, p.RecordingURL())
}

func TestParsePayload_BadJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{`))
	r.Header.Set("Content-Type", "application/json")

	_, err := ParsePayload(r)
	assert.Error(t, err)
}

func TestPayload_Defaults(t *testing.T) {
	p := Payload{}
	assert.Equal(t, 0, p.Duration())
	assert.Nil(t, p.RecordingURL())

	p = Payload{FieldDialCallDuration: "-3", FieldRecordingURL: " https://r/1.mp3 "}
	assert.Equal(t, 0, p.Duration())
	require.NotNil(t, p.RecordingURL())
	assert.Equal(t, "https://r/1.mp3", *p.RecordingURL())
}

func TestMissedCallStatus(t *testing.T) {
	assert.Equal(t, calllog.StatusNoAnswer, MissedCallStatus("incomplete", "no-answer"))
	assert.Equal(t, calllog.StatusCanceled, MissedCallStatus("client-hangup", "canceled"))
	assert.Equal(t, calllog.StatusFailed, MissedCallStatus("incomplete", "failed"))
	assert.Equal(t, calllog.StatusNone, MissedCallStatus("incomplete", "canceled"))
	assert.Equal(t, calllog.StatusNone, MissedCallStatus("", ""))
	assert.Equal(t, calllog.StatusNone, MissedCallStatus("incomplete ", "no-answer"))
}

func TestParsePayload_EmptyJSONBodyKeepsQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/x?CallSid=CA1", strings.NewReader(""))
	r.Header.Set("Content-Type", "application/json")

	p, err := ParsePayload(r)
	require.NoError(t, err)
	assert.Equal(t, "CA1", p.CallSid())
}
