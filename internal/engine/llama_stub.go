//go:build !llama

package engine

// This file provides a no-CGO stub that is compiled when the 'llama' build tag
// is NOT set, keeping default builds and CI CGO-free. The real backend lives
// in llama.go (tagged 'llama').

// OpenLlama refuses to open a model without the 'llama' build tag. The loader
// maps this to an incompatible-device failure rather than faking output.
func OpenLlama(path string, cfg Config) (Engine, error) {
	return nil, ErrNotBuilt("llama support not built (missing 'llama' build tag)")
}
