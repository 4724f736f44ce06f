//go:build llama

package engine

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaEngine owns one loaded model for the process lifetime.
type llamaEngine struct {
	model   *llama.LLama
	threads int
}

// OpenLlama loads the model file at path into an in-process llama.cpp context.
func OpenLlama(path string, cfg Config) (Engine, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("model path is empty")
	}
	mo := []llama.ModelOption{}
	if cfg.CtxSize > 0 {
		mo = append(mo, llama.SetContext(cfg.CtxSize))
	}
	m, err := llama.New(path, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaEngine{model: m, threads: cfg.Threads}, nil
}

func (e *llamaEngine) Generate(ctx context.Context, prompt string, params Params, onToken func(string) error) (Result, error) {
	if e.model == nil {
		return Result{}, errors.New("llama model not initialized")
	}

	tokens := 0
	// Bridge token streaming to onToken and respect cancellation.
	e.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		tokens++
		if onToken != nil {
			if err := onToken(tok); err != nil {
				return false
			}
		}
		return true
	})

	text, err := e.model.Predict(prompt, e.predictOptions(params)...)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, err
	}
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	return Result{Text: text, FinishReason: "stop", Tokens: tokens}, nil
}

func (e *llamaEngine) Close() error {
	if e.model != nil {
		e.model.Free()
		e.model = nil
	}
	return nil
}

// predictOptions converts session parameters into go-llama.cpp options,
// honoring the per-field include switches. Beam search and early stopping
// have no llama.cpp equivalent and are accepted but ignored here; prompt
// truncation is llama.cpp's own context handling.
func (e *llamaEngine) predictOptions(params Params) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetThreads(maxInt(1, e.threads)),
	}
	if params.Included("max_new_tokens") {
		po = append(po, llama.SetTokens(maxInt(1, params.MaxNewTokens)))
	}
	if params.Included("top_p") {
		po = append(po, llama.SetTopP(float32(params.TopP)))
	}
	temp := float32(params.Temperature)
	if !params.Included("temperature") {
		temp = llama.DefaultOptions.Temperature
	}
	if params.Included("do_sample") && !params.DoSample {
		// Greedy decoding: zero temperature.
		temp = 0
	}
	po = append(po, llama.SetTemperature(temp))
	return po
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
