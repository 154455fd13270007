package ast

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Method is a builtin method callable on a bound variable.
type Method func(receiver string, args []Value) (Value, error)

var methods = map[string]Method{
	"length": func(r string, _ []Value) (Value, error) {
		return IntValue(utf8.RuneCountInString(r)), nil
	},
	"trim": func(r string, _ []Value) (Value, error) {
		return StringValue(strings.TrimSpace(r)), nil
	},
	"lowercase": func(r string, _ []Value) (Value, error) {
		return StringValue(strings.ToLower(r)), nil
	},
	"uppercase": func(r string, _ []Value) (Value, error) {
		return StringValue(strings.ToUpper(r)), nil
	},
	"isEmpty": func(r string, _ []Value) (Value, error) {
		return BoolValue(r == ""), nil
	},
	"isNotEmpty": func(r string, _ []Value) (Value, error) {
		return BoolValue(r != ""), nil
	},
	"first": func(r string, _ []Value) (Value, error) {
		c, size := utf8.DecodeRuneInString(r)
		if size == 0 {
			return nil, evalErrorf(ErrIndexOutOfRange, "first() called on an empty string")
		}
		return StringValue(string(c)), nil
	},
	"last": func(r string, _ []Value) (Value, error) {
		c, size := utf8.DecodeLastRuneInString(r)
		if size == 0 {
			return nil, evalErrorf(ErrIndexOutOfRange, "last() called on an empty string")
		}
		return StringValue(string(c)), nil
	},
	"contains":   stringPredicate("contains", strings.Contains),
	"startsWith": stringPredicate("startsWith", strings.HasPrefix),
	"endsWith":   stringPredicate("endsWith", strings.HasSuffix),
	"matches": func(r string, args []Value) (Value, error) {
		pattern, err := singleArg("matches", args)
		if err != nil {
			return nil, err
		}
		ok, err := fullMatch(pattern, r)
		if err != nil {
			return nil, err
		}
		return BoolValue(ok), nil
	},
}

func stringPredicate(name string, fn func(s, arg string) bool) Method {
	return func(r string, args []Value) (Value, error) {
		arg, err := singleArg(name, args)
		if err != nil {
			return nil, err
		}
		return BoolValue(fn(r, arg)), nil
	}
}

func singleArg(name string, args []Value) (string, error) {
	if len(args) != 1 {
		return "", evalErrorf(ErrTypeMismatch, "%s() expects 1 argument, got %d", name, len(args))
	}
	return args[0].String(), nil
}

// IsMethod reports whether name is a builtin method.
func IsMethod(name string) bool {
	_, ok := methods[name]
	return ok
}

// CallMethod invokes the builtin method name on receiver.
func CallMethod(name, receiver string, args []Value) (Value, error) {
	m, ok := methods[name]
	if !ok {
		return nil, evalErrorf(ErrUnsupportedMethod, "Unsupported method: %s", name)
	}
	return m(receiver, args)
}

// fullMatch reports whether the whole of s matches pattern. Surrounding
// slashes on the pattern are stripped.
func fullMatch(pattern, s string) (bool, error) {
	if len(pattern) >= 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		pattern = pattern[1 : len(pattern)-1]
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return false, evalErrorf(ErrTypeMismatch, "Invalid regex %q: %v", pattern, err)
	}
	return re.MatchString(s), nil
}
