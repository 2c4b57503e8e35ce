package telephony

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/plivo/plivo-go/v7"
)

var (
	ErrPhoneNumberRequired = errors.New("phone number is required")
	ErrTelephonyDisabled   = errors.New("telephony credentials are not configured")
)

// Dialer places an outbound call and returns the provider's call id.
type Dialer interface {
	Dial(ctx context.Context, phoneNumber string) (string, error)
	Backend() string
}

// SimulatedDialer pretends to place calls.
type SimulatedDialer struct {
	now func() time.Time
}

func NewSimulatedDialer() *SimulatedDialer {
	return &SimulatedDialer{now: time.Now}
}

func (d *SimulatedDialer) Dial(_ context.Context, phoneNumber string) (string, error) {
	if strings.TrimSpace(phoneNumber) == "" {
		return "", ErrPhoneNumberRequired
	}
	return fmt.Sprintf("demo_call_%d", d.now().Unix()), nil
}

func (d *SimulatedDialer) Backend() string {
	return "simulated"
}

// callCreator is the slice of the Plivo client used here.
type callCreator interface {
	Create(params plivo.CallCreateParams) (*plivo.CallCreateResponse, error)
}

// PlivoDialer places real calls whose audio is streamed back to /ws/call.
type PlivoDialer struct {
	calls     callCreator
	from      string
	streamURL string
}

func NewPlivoDialer(authID, authToken, from, streamURL string) (*PlivoDialer, error) {
	if authID == "" || authToken == "" {
		return nil, ErrTelephonyDisabled
	}
	client, err := plivo.NewClient(authID, authToken, &plivo.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create plivo client: %w", err)
	}
	return &PlivoDialer{calls: client.Calls, from: from, streamURL: streamURL}, nil
}

func (d *PlivoDialer) Dial(ctx context.Context, phoneNumber string) (string, error) {
	if strings.TrimSpace(phoneNumber) == "" {
		return "", ErrPhoneNumberRequired
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resp, err := d.calls.Create(plivo.CallCreateParams{
		From:         d.from,
		To:           phoneNumber,
		AnswerURL:    AnswerURL(d.streamURL),
		AnswerMethod: "GET",
	})
	if err != nil {
		return "", fmt.Errorf("plivo create call: %w", err)
	}
	return requestUUID(resp)
}

// requestUUID extracts the call id; multi-destination calls report a list.
func requestUUID(resp *plivo.CallCreateResponse) (string, error) {
	if resp == nil {
		return "", errors.New("plivo create call: empty response")
	}
	switch v := resp.RequestUUID.(type) {
	case string:
		if v != "" {
			return v, nil
		}
	case []interface{}:
		if len(v) > 0 {
			if id, ok := v[0].(string); ok && id != "" {
				return id, nil
			}
		}
	case []string:
		if len(v) > 0 && v[0] != "" {
			return v[0], nil
		}
	}
	return "", fmt.Errorf("plivo create call: unexpected request_uuid %v", resp.RequestUUID)
}

func (d *PlivoDialer) Backend() string {
	return "plivo"
}

// AnswerXML renders the answer document that connects a call to the audio stream.
func AnswerXML(streamURL string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString("\n<Response>\n")
	b.WriteString(`    <Stream bidirectional="true" keepCallAlive="true" streamTimeout="86400" contentType="audio/x-l16" sampleRate="8000">`)
	b.WriteString(streamURL)
	b.WriteString("</Stream>\n</Response>")
	return b.String()
}

// AnswerURL inlines AnswerXML as a data URL so no answer endpoint needs hosting.
func AnswerURL(streamURL string) string {
	return "data:application/xml;charset=utf-8," + AnswerXML(streamURL)
}
