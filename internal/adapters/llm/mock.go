package llm

import (
	"context"
	"fmt"
)

// MockText is a canned text backend for local development and tests.
// Reply, when set, overrides the default echo response; Err forces a
// failure.
type MockText struct {
	Reply string
	Err   error
}

func NewMockText() *MockText {
	return &MockText{}
}

func (m *MockText) GenerateText(_ context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply != "" {
		return m.Reply, nil
	}
	return fmt.Sprintf("Entiendo. Me preguntaste sobre %d caracteres de texto. Puedo ayudarte con eso.", len(prompt)), nil
}

// MockImage is a canned image backend. Data defaults to a tiny
// placeholder payload.
type MockImage struct {
	Data []byte
	Err  error
}

func NewMockImage() *MockImage {
	return &MockImage{Data: []byte("mock-image-bytes")}
}

func (m *MockImage) GenerateImage(_ context.Context, _ string) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Data, nil
}
