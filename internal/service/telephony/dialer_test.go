package telephony

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/plivo/plivo-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCalls struct {
	params plivo.CallCreateParams
	resp   *plivo.CallCreateResponse
	err    error
}

func (f *fakeCalls) Create(params plivo.CallCreateParams) (*plivo.CallCreateResponse, error) {
	f.params = params
	return f.resp, f.err
}

func TestSimulatedDialer(t *testing.T) {
	d := NewSimulatedDialer()
	d.now = func() time.Time { return time.Unix(1700000000, 0) }

	id, err := d.Dial(context.Background(), "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "demo_call_1700000000", id)

	_, err = d.Dial(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrPhoneNumberRequired)
}

func TestAnswerXMLContainsStream(t *testing.T) {
	xml := AnswerXML("wss://voice.example.com/ws/call")

	assert.Contains(t, xml, `bidirectional="true"`)
	assert.Contains(t, xml, `streamTimeout="86400"`)
	assert.Contains(t, xml, `contentType="audio/x-l16"`)
	assert.Contains(t, xml, `sampleRate="8000"`)
	assert.Contains(t, xml, ">wss://voice.example.com/ws/call</Stream>")

	assert.True(t, strings.HasPrefix(AnswerURL("ws://x/ws/call"), "data:application/xml;charset=utf-8,<?xml"))
}

func TestPlivoDialerCreatesCall(t *testing.T) {
	calls := &fakeCalls{resp: &plivo.CallCreateResponse{RequestUUID: "abc-123"}}
	d := &PlivoDialer{calls: calls, from: "+15550000000", streamURL: "wss://voice.example.com/ws/call"}

	id, err := d.Dial(context.Background(), "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)

	assert.Equal(t, "+15550000000", calls.params.From)
	assert.Equal(t, "+15551234567", calls.params.To)
	assert.Equal(t, "GET", calls.params.AnswerMethod)
	assert.Contains(t, calls.params.AnswerURL, "wss://voice.example.com/ws/call")
}

func TestPlivoDialerRequestUUIDShapes(t *testing.T) {
	tests := []struct {
		name    string
		uuid    interface{}
		want    string
		wantErr bool
	}{
		{name: "string", uuid: "abc-123", want: "abc-123"},
		{name: "list", uuid: []interface{}{"first", "second"}, want: "first"},
		{name: "string list", uuid: []string{"only"}, want: "only"},
		{name: "empty list", uuid: []interface{}{}, wantErr: true},
		{name: "missing", uuid: nil, wantErr: true},
		{name: "number", uuid: 42.0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := &fakeCalls{resp: &plivo.CallCreateResponse{RequestUUID: tt.uuid}}
			d := &PlivoDialer{calls: calls, from: "+1", streamURL: "ws://x/ws/call"}

			id, err := d.Dial(context.Background(), "+15551234567")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestPlivoDialerErrors(t *testing.T) {
	calls := &fakeCalls{err: errors.New("boom")}
	d := &PlivoDialer{calls: calls}

	_, err := d.Dial(context.Background(), "")
	assert.ErrorIs(t, err, ErrPhoneNumberRequired)

	_, err = d.Dial(context.Background(), "+1555")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Dial(ctx, "+1555")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPlivoDialerRequiresCredentials(t *testing.T) {
	_, err := NewPlivoDialer("", "token", "+1", "ws://x")
	assert.ErrorIs(t, err, ErrTelephonyDisabled)
}
