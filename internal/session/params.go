package session

import (
	"math"
	"strings"

	"wawachat/pkg/types"
)

// Params is the active generation parameter set. All mutation goes through
// Update, which validates atomically and keeps the prior set on rejection.
// Generation consumes immutable snapshots, never the live set.
type Params struct {
	maxNewTokens  int
	temperature   float64
	topP          float64
	numBeams      int
	doSample      bool
	truncation    bool
	earlyStopping bool
	include       map[string]bool
}

// DefaultParams returns the stock parameter set.
func DefaultParams() Params {
	return Params{
		maxNewTokens:  50,
		temperature:   0.5,
		topP:          0.9,
		numBeams:      2,
		doSample:      true,
		truncation:    true,
		earlyStopping: true,
	}
}

// Update applies one validated edit. Values arrive as decoded JSON, so
// numbers are float64; integral fields reject fractional values as a type
// mismatch. Field names prefixed with "include." toggle whether the named
// parameter is forwarded to the engine.
func (p *Params) Update(field string, value any) error {
	if name, ok := strings.CutPrefix(field, "include."); ok {
		return p.updateInclude(name, value)
	}
	switch field {
	case "max_new_tokens":
		n, ok := asInt(value)
		if !ok {
			return ErrValidation(field, ReasonWrongType)
		}
		if n <= 0 {
			return ErrValidation(field, ReasonOutOfRange)
		}
		p.maxNewTokens = n
	case "temperature":
		f, ok := asFloat(value)
		if !ok {
			return ErrValidation(field, ReasonWrongType)
		}
		if f <= 0 {
			return ErrValidation(field, ReasonOutOfRange)
		}
		p.temperature = f
	case "top_p":
		f, ok := asFloat(value)
		if !ok {
			return ErrValidation(field, ReasonWrongType)
		}
		if f <= 0 || f > 1 {
			return ErrValidation(field, ReasonOutOfRange)
		}
		p.topP = f
	case "num_beams":
		n, ok := asInt(value)
		if !ok {
			return ErrValidation(field, ReasonWrongType)
		}
		if n < 1 {
			return ErrValidation(field, ReasonOutOfRange)
		}
		p.numBeams = n
	case "do_sample":
		b, ok := value.(bool)
		if !ok {
			return ErrValidation(field, ReasonWrongType)
		}
		p.doSample = b
	case "truncation":
		b, ok := value.(bool)
		if !ok {
			return ErrValidation(field, ReasonWrongType)
		}
		p.truncation = b
	case "early_stopping":
		b, ok := value.(bool)
		if !ok {
			return ErrValidation(field, ReasonWrongType)
		}
		p.earlyStopping = b
	default:
		return ErrValidation(field, ReasonUnknownField)
	}
	return nil
}

func (p *Params) updateInclude(name string, value any) error {
	switch name {
	case "max_new_tokens", "temperature", "top_p", "num_beams",
		"do_sample", "truncation", "early_stopping":
	default:
		return ErrValidation("include."+name, ReasonUnknownField)
	}
	b, ok := value.(bool)
	if !ok {
		return ErrValidation("include."+name, ReasonWrongType)
	}
	if p.include == nil {
		p.include = make(map[string]bool)
	}
	p.include[name] = b
	return nil
}

// Snapshot returns an immutable copy consumed by a generation call, isolating
// it from concurrent edits.
func (p *Params) Snapshot() types.ParameterSet {
	snap := types.ParameterSet{
		MaxNewTokens:  p.maxNewTokens,
		Temperature:   p.temperature,
		TopP:          p.topP,
		NumBeams:      p.numBeams,
		DoSample:      p.doSample,
		Truncation:    p.truncation,
		EarlyStopping: p.earlyStopping,
	}
	if len(p.include) > 0 {
		snap.Include = make(map[string]bool, len(p.include))
		for k, v := range p.include {
			snap.Include[k] = v
		}
	}
	return snap
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
