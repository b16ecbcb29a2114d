package tabula

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

func parseBool(text string) (bool, bool) {
	switch text {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// InferScalar guesses the type of raw text in fixed priority order: bool,
// signed integer, unsigned integer, float, and string as the fallback.
// Integers are int64 unless they only fit in uint64; floats are float64.
func InferScalar(text string) any {
	if b, ok := parseBool(text); ok {
		return b
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n
	}
	if n, err := strconv.ParseUint(text, 10, 64); err == nil {
		return n
	}
	if f, err := parseFloat(text, 64); err == nil {
		return f
	}
	return text
}

// InferValue is InferScalar for tree values. Empty text is null, and text
// naming a non-finite float stays a string.
func InferValue(text string) Value {
	if text == "" {
		return Null()
	}
	switch x := InferScalar(text).(type) {
	case bool:
		return Bool(x)
	case int64:
		return Int(x)
	case uint64:
		return Uint(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return String(text)
		}
		return Float(x)
	default:
		return String(text)
	}
}

// setScalar parses text into a bool, integer, float or string value.
func setScalar(rv reflect.Value, key, text string) error {
	switch rv.Kind() {
	case reflect.Bool:
		b, ok := parseBool(text)
		if !ok {
			return &ParseError{Path: key, Kind: "bool", Text: text}
		}
		rv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(text, 10, rv.Type().Bits())
		if err != nil {
			return &ParseError{Path: key, Kind: rv.Kind().String(), Text: text, Cause: numError(err)}
		}
		rv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(text, 10, rv.Type().Bits())
		if err != nil {
			return &ParseError{Path: key, Kind: rv.Kind().String(), Text: text, Cause: numError(err)}
		}
		rv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := parseFloat(text, rv.Type().Bits())
		if err != nil {
			return &ParseError{Path: key, Kind: rv.Kind().String(), Text: text, Cause: numError(err)}
		}
		rv.SetFloat(f)
	case reflect.String:
		rv.SetString(text)
	default:
		return newPathError(ErrUnsupportedType, key, rv.Type().String())
	}
	return nil
}

// parseFloat is strconv.ParseFloat restricted to plain decimal text.
// Go literal forms, underscores and hexadecimal mantissas, are rejected.
func parseFloat(text string, bitSize int) (float64, error) {
	digits := strings.TrimLeft(text, "+-")
	if strings.Contains(text, "_") || strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: text, Err: strconv.ErrSyntax}
	}
	return strconv.ParseFloat(text, bitSize)
}

// numError strips the repeated input from strconv errors.
func numError(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}
