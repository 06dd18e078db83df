// Package command parses xAPI command strings as given on the command line,
//
//	SystemUnit.Boot
//	Audio.Volume.Set {"Level": 50}
//	Audio.Volume.Set Level:50
package command

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/metal-toolbox/xapictl/internal/model"
	"github.com/pkg/errors"
)

var (
	ErrEmptyCommand = errors.New("empty command string")
	ErrArguments    = errors.New("invalid command arguments")
)

// ArgumentsError is returned when the arguments following the command name
// are neither a JSON object nor key:value pairs.
type ArgumentsError struct {
	// Raw is the argument string as given.
	Raw string
	// Reason describes what did not parse.
	Reason string
}

func (e *ArgumentsError) Error() string {
	return fmt.Sprintf("%s: %s: %q", ErrArguments.Error(), e.Reason, e.Raw)
}

func (e *ArgumentsError) Unwrap() error {
	return ErrArguments
}

// Parse splits the command string on the first whitespace run into the command name
// and its arguments.
//
// The arguments are either a JSON object or whitespace separated key:value pairs,
// in the latter case values are read as an integer, a float or a boolean when they parse as one,
// and are otherwise kept as strings.
func Parse(s string) (model.Command, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Command{}, ErrEmptyCommand
	}

	name, rest := s, ""
	if idx := strings.IndexFunc(s, unicode.IsSpace); idx > 0 {
		name, rest = s[:idx], strings.TrimSpace(s[idx:])
	}

	cmd := model.Command{Name: name}
	if rest == "" {
		return cmd, nil
	}

	args, err := parseArguments(rest)
	if err != nil {
		return model.Command{}, err
	}

	if len(args) > 0 {
		cmd.Arguments = args
	}

	return cmd, nil
}

func parseArguments(s string) (model.Arguments, error) {
	if strings.HasPrefix(s, "{") {
		return parseJSONObject(s)
	}

	return parseKeyValues(s)
}

func parseJSONObject(s string) (model.Arguments, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &ArgumentsError{Raw: s, Reason: "JSON object: " + err.Error()}
	}

	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return nil, &ArgumentsError{Raw: s, Reason: "unexpected data after JSON object"}
	}

	v, err := model.FromInterface(raw)
	if err != nil {
		return nil, &ArgumentsError{Raw: s, Reason: err.Error()}
	}

	args, _ := v.AsObject()

	return args, nil
}

func parseKeyValues(s string) (model.Arguments, error) {
	args := model.Arguments{}

	for _, token := range strings.Fields(s) {
		key, value, found := strings.Cut(token, ":")
		if !found || key == "" || value == "" {
			return nil, &ArgumentsError{Raw: s, Reason: "expected key:value, got " + strconv.Quote(token)}
		}

		args[key] = coerce(value)
	}

	return args, nil
}

// coerce returns the value as an integer, float or boolean when it parses as one,
// or as a string.
//
// Numbers are decimal, underscores are accepted only between two digits
// and hexadecimal notation stays a string.
func coerce(s string) model.Value {
	num, ok := stripDigitSeparators(s)
	if ok && !strings.ContainsAny(num, "xX") {
		if i, err := strconv.ParseInt(num, 10, 64); err == nil {
			return model.Int(i)
		}

		if f, err := strconv.ParseFloat(num, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return model.Float(f)
		}
	}

	switch strings.ToLower(s) {
	case "true":
		return model.Bool(true)
	case "false":
		return model.Bool(false)
	}

	return model.String(s)
}

// stripDigitSeparators removes the underscores of s, ok is false when one does not sit between two digits.
func stripDigitSeparators(s string) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}

	isDigit := func(i int) bool { return i >= 0 && i < len(s) && s[i] >= '0' && s[i] <= '9' }

	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			b.WriteByte(s[i])
			continue
		}

		if !isDigit(i-1) || !isDigit(i+1) {
			return "", false
		}
	}

	return b.String(), true
}
