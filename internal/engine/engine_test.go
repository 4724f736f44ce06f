//go:build !llama

package engine

import "testing"

func TestOpenLlamaStubFailsFast(t *testing.T) {
	eng, err := OpenLlama("/tmp/model.gguf", Config{})
	if eng != nil {
		t.Fatalf("expected nil engine from stub")
	}
	if !IsNotBuilt(err) {
		t.Fatalf("expected not-built error, got %v", err)
	}
}

func TestParamsIncluded(t *testing.T) {
	p := Params{}
	if !p.Included("temperature") {
		t.Fatalf("nil include map must mean included")
	}
	p.Include = map[string]bool{"num_beams": false}
	if p.Included("num_beams") {
		t.Fatalf("excluded field reported as included")
	}
	if !p.Included("top_p") {
		t.Fatalf("missing key must mean included")
	}
}
