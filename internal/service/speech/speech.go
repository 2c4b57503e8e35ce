package speech

import (
	"context"
	"sync"
)

// Recognizer converts caller audio into text.
type Recognizer interface {
	Transcribe(ctx context.Context, audio []byte, format, language string) (string, error)
	Backend() string
}

// Synthesizer converts reply text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Backend() string
}

// MockAudio is what MockSynthesizer returns for every utterance.
var MockAudio = []byte("mock_audio_data")

// MockUtterances are the canned transcriptions returned by MockRecognizer.
var MockUtterances = []string{
	"Hello, I need help with my account",
	"Can you help me with billing questions?",
	"I want to know about your services",
	"How do I cancel my subscription?",
	"What are your business hours?",
	"Can I speak to a manager?",
	"Thank you for your help",
}

// MockRecognizer ignores the audio and cycles through MockUtterances.
type MockRecognizer struct {
	mu   sync.Mutex
	next int
}

func NewMockRecognizer() *MockRecognizer {
	return &MockRecognizer{}
}

func (m *MockRecognizer) Transcribe(_ context.Context, _ []byte, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	text := MockUtterances[m.next%len(MockUtterances)]
	m.next++
	return text, nil
}

func (m *MockRecognizer) Backend() string {
	return "mock"
}

// MockSynthesizer returns MockAudio for any text.
type MockSynthesizer struct{}

func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{}
}

func (MockSynthesizer) Synthesize(_ context.Context, _ string) ([]byte, error) {
	return append([]byte(nil), MockAudio...), nil
}

func (MockSynthesizer) Backend() string {
	return "mock"
}
