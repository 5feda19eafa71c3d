package engine

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

// ErrMalformedModelOutput matches every *MalformedModelOutputError.
var ErrMalformedModelOutput = errors.New("malformed model output")

// MalformedModelOutputError describes a completion that does not satisfy the tip contract.
type MalformedModelOutputError struct {
	// Missing lists the contract fields that are absent or empty.
	Missing []string
	// Reason is set when the output is not a JSON object at all.
	Reason string
	// Raw is the output as received from the model.
	Raw string
}

func (e *MalformedModelOutputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("malformed model output: %s", e.Reason)
	}
	return fmt.Sprintf("malformed model output: missing fields %s", strings.Join(e.Missing, ", "))
}

func (e *MalformedModelOutputError) Is(target error) bool {
	return target == ErrMalformedModelOutput
}

// TipOutput is the validated answer of the tip completion.
type TipOutput struct {
	League        string
	Match         string
	Prediction    string
	Odds          string
	Reasoning     string
	MemberMessage string
	MatchTime     string
}

// tipOutputFields is the output contract, in prompt order.
var tipOutputFields = []string{"league", "match", "prediction", "odds", "reasoning", "memberMessage", "matchTime"}

// ParseTipOutput validates raw model output against the tip contract.
func ParseTipOutput(raw string) (*TipOutput, error) {
	body := stripCodeFence(raw)
	if !gjson.Valid(body) {
		return nil, &MalformedModelOutputError{Reason: "not valid JSON", Raw: raw}
	}
	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return nil, &MalformedModelOutputError{Reason: "not a JSON object", Raw: raw}
	}

	values := make(map[string]string, len(tipOutputFields))
	var missing []string
	for _, field := range tipOutputFields {
		v := doc.Get(field)
		var s string
		switch v.Type {
		case gjson.String:
			s = strings.TrimSpace(v.String())
		case gjson.Number:
			// odds often come back as a bare number
			s = v.Raw
		}
		if s == "" {
			missing = append(missing, field)
			continue
		}
		values[field] = s
	}
	if len(missing) > 0 {
		return nil, &MalformedModelOutputError{Missing: missing, Raw: raw}
	}

	return &TipOutput{
		League:        values["league"],
		Match:         values["match"],
		Prediction:    values["prediction"],
		Odds:          values["odds"],
		Reasoning:     values["reasoning"],
		MemberMessage: values["memberMessage"],
		MatchTime:     values["matchTime"],
	}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the language tag, with or without a newline after it
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
