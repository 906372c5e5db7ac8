package verifier

import (
	"encoding/json"
	"fmt"
)

// PredicateOver18 is the only predicate the proof-of-concept proof system
// supports.
const PredicateOver18 = "over_18"

// PublicSignals carries the proof's public inputs. The fixed vocabulary
// (challenge, predicate, result) is typed; anything else lands in Extra so
// future proof systems can attach their own signals.
type PublicSignals struct {
	Challenge string
	Predicate string
	// Result is nil when absent or not boolean-typed.
	Result *bool
	Extra  map[string]any
}

// ResultTrue reports whether the predicate outcome is present and true.
func (p PublicSignals) ResultTrue() bool {
	return p.Result != nil && *p.Result
}

// UnmarshalJSON decodes the signal map, lifting the known keys into typed
// fields. A non-string challenge or predicate is a decode error; a
// non-boolean result is tolerated and left nil so the predicate gate can
// reject it with its own error kind.
func (p *PublicSignals) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["challenge"]; ok {
		if err := json.Unmarshal(v, &p.Challenge); err != nil {
			return fmt.Errorf("publicSignals.challenge must be a string: %w", err)
		}
		delete(raw, "challenge")
	}
	if v, ok := raw["predicate"]; ok {
		if err := json.Unmarshal(v, &p.Predicate); err != nil {
			return fmt.Errorf("publicSignals.predicate must be a string: %w", err)
		}
		delete(raw, "predicate")
	}
	if v, ok := raw["result"]; ok {
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			p.Result = &b
		}
		delete(raw, "result")
	}

	if len(raw) > 0 {
		p.Extra = make(map[string]any, len(raw))
		for k, v := range raw {
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return err
			}
			p.Extra[k] = val
		}
	}
	return nil
}

// MarshalJSON re-flattens the signals into a single JSON object.
func (p PublicSignals) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+3)
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.Challenge != "" {
		out["challenge"] = p.Challenge
	}
	if p.Predicate != "" {
		out["predicate"] = p.Predicate
	}
	if p.Result != nil {
		out["result"] = *p.Result
	}
	return json.Marshal(out)
}
