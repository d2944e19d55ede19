// Package client defines the vision model backends the passport pipeline can
// ask to locate the subject of a photo.
package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/menta2k/passport-photo/pkg/llamacpp"
	"github.com/menta2k/passport-photo/pkg/ollama"
	"github.com/menta2k/passport-photo/pkg/types"
)

// VisionClient talks to a multimodal model. Images are base64 encoded.
type VisionClient interface {
	Query(ctx context.Context, model, prompt, imgB64 string) (string, error)
	Analyze(ctx context.Context, model, prompt, imgB64 string) (*types.AnalysisResult, error)
}

// Backend names
const (
	BackendOllama   = "ollama"
	BackendLlamaCpp = "llamacpp"
)

// New returns the client for backend pointed at serverURL
func New(backend, serverURL string) (VisionClient, error) {
	switch strings.ToLower(backend) {
	case BackendOllama, "":
		c, err := ollama.NewClient(serverURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendLlamaCpp, "llama.cpp":
		c, err := llamacpp.NewClient(serverURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown vision backend %q (want %s or %s)", backend, BackendOllama, BackendLlamaCpp)
}
