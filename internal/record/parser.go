package record

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	VoltagePrefix = "V0="
	FieldsPrefix  = "AC=["
)

// Keys carried by an auxiliary record.
const (
	KeyHeartRate   = "HR"
	KeySpO2        = "SpO2"
	KeyMicro       = "Micro"
	KeySystolicBP  = "SysBP"
	KeyDiastolicBP = "DiaBP"
	KeyFatigue     = "Fatigue"
)

// Kind classifies a record.
type Kind int

const (
	KindLog Kind = iota
	KindVoltage
	KindFields
)

func (k Kind) String() string {
	switch k {
	case KindVoltage:
		return "voltage"
	case KindFields:
		return "fields"
	default:
		return "log"
	}
}

// Fields maps a physiological field name to its raw value. Keys missing
// from a record are absent.
type Fields map[string]string

// Record is a classified, parsed record.
type Record struct {
	Kind    Kind
	Text    string
	Voltage float64
	Fields  Fields
}

var (
	errEmptyVoltage  = errors.New("empty value")
	errNonFiniteVolt = errors.New("value is not finite")
)

// Classify returns the kind of text by prefix.
func Classify(text string) Kind {
	switch {
	case strings.HasPrefix(text, VoltagePrefix):
		return KindVoltage
	case strings.HasPrefix(text, FieldsPrefix):
		return KindFields
	default:
		return KindLog
	}
}

// Parse classifies text and parses its payload. Unknown prefixes come back
// as KindLog with no error. A malformed voltage payload returns a
// *ParseError alongside the classified record.
func Parse(text string) (Record, error) {
	rec := Record{Kind: Classify(text), Text: text}

	switch rec.Kind {
	case KindVoltage:
		v, err := parseVoltage(text[len(VoltagePrefix):])
		if err != nil {
			return rec, &ParseError{Kind: rec.Kind, Text: text, Err: err}
		}
		rec.Voltage = v
	case KindFields:
		rec.Fields = parseFields(text)
	}
	return rec, nil
}

// parseVoltage reads the first whitespace-delimited token.
func parseVoltage(payload string) (float64, error) {
	tokens := strings.Fields(payload)
	if len(tokens) == 0 {
		return 0, errEmptyVoltage
	}
	v, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNonFiniteVolt
	}
	return v, nil
}

// parseFields collects KEY=VALUE tokens from a comma-separated record.
// Tokens without exactly one '=' or with an empty key or value are skipped,
// which drops the pieces of the leading AC=[...] array.
func parseFields(text string) Fields {
	fields := make(Fields)
	for _, tok := range strings.Split(text, ",") {
		if strings.Count(tok, "=") != 1 {
			continue
		}
		k, v, _ := strings.Cut(tok, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" || k == "AC" {
			continue
		}
		fields[k] = v
	}
	return fields
}
