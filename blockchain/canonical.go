package blockchain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// canonicalJSON renders fields as a JSON object with keys sorted ascending
// and Python's json.dumps default separators (", " between items, ": "
// between key and value), so the SHA-256 input matches the reference
// implementation's json.dumps(obj, sort_keys=True) byte layout for the same
// field values. encoding/json's compact Marshal sorts map[string]any keys
// ascending too, but omits these spaces — that alone diverges from the
// reference's hash input. String values are escaped by encoding/json, which
// writes non-ASCII characters as raw UTF-8 and escapes <, > and & as
// \u-sequences, where json.dumps's defaults do the reverse, so
// strings containing such characters do not produce the reference's bytes.
func canonicalJSON(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = mustJSON(k) + ": " + canonicalValue(fields[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func canonicalValue(v interface{}) string {
	switch val := v.(type) {
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	default:
		return mustJSON(val)
	}
}

func mustJSON(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// pythonFloatString renders f the way Python's str(float) would, which is
// what the reference concatenates into a transaction id. Go's strconv
// shortest round-trip digits agree with CPython's repr algorithm, but the
// surrounding format differs: Python uses exponent notation only for
// decimal exponents below -4 or at 16 and above, always keeps a decimal
// point on non-exponent output, and pads the exponent to at least two digits.
func pythonFloatString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	if exp, _ := strconv.Atoi(s[strings.IndexByte(s, 'e')+1:]); exp >= -4 && exp < 16 {
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}
	idx := strings.IndexAny(s, "eE")
	if idx < 0 {
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	mantissa, exp := s[:idx], s[idx+1:]
	sign := "+"
	if len(exp) > 0 && (exp[0] == '+' || exp[0] == '-') {
		if exp[0] == '-' {
			sign = "-"
		}
		exp = exp[1:]
	}
	for len(exp) < 2 {
		exp = "0" + exp
	}
	return fmt.Sprintf("%se%s%s", mantissa, sign, exp)
}
