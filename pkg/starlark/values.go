package starlark

import (
	"github.com/shirelang/shire/pkg/ast"
	"go.starlark.net/starlark"
)

// ConvertToStarlark converts a frontmatter value to a Starlark value.
func ConvertToStarlark(val ast.Value) starlark.Value {
	if val == nil {
		return starlark.None
	}

	switch v := val.(type) {
	case ast.StringValue:
		return starlark.String(string(v))
	case ast.IntValue:
		return starlark.MakeInt64(int64(v))
	case ast.FloatValue:
		return starlark.Float(float64(v))
	case ast.BoolValue:
		return starlark.Bool(bool(v))
	case ast.ArrayValue:
		items := make([]starlark.Value, len(v))
		for i, item := range v {
			items[i] = ConvertToStarlark(item)
		}
		return starlark.NewList(items)
	case *ast.ObjectValue:
		dict := starlark.NewDict(len(v.Keys))
		for _, key := range v.Keys {
			// SetKey only fails for unhashable keys or frozen dicts.
			_ = dict.SetKey(starlark.String(key), ConvertToStarlark(v.Values[key]))
		}
		return dict
	default:
		// Dates, patterns and identifiers travel as their text.
		return starlark.String(val.String())
	}
}

// ConvertFromStarlark converts a Starlark value back to a frontmatter value.
// None becomes an empty string.
func ConvertFromStarlark(val starlark.Value) ast.Value {
	if val == nil || val == starlark.None {
		return ast.StringValue("")
	}

	switch v := val.(type) {
	case starlark.String:
		return ast.StringValue(string(v))
	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return ast.IntValue(i)
		}
		return ast.StringValue(v.String())
	case starlark.Float:
		return ast.FloatValue(float64(v))
	case starlark.Bool:
		return ast.BoolValue(bool(v))
	case *starlark.List:
		items := make(ast.ArrayValue, v.Len())
		for i := 0; i < v.Len(); i++ {
			items[i] = ConvertFromStarlark(v.Index(i))
		}
		return items
	case starlark.Tuple:
		items := make(ast.ArrayValue, len(v))
		for i, item := range v {
			items[i] = ConvertFromStarlark(item)
		}
		return items
	case *starlark.Dict:
		obj := ast.NewObjectValue()
		for _, item := range v.Items() {
			key := item[0].String()
			if s, ok := item[0].(starlark.String); ok {
				key = string(s)
			}
			obj.Set(key, ConvertFromStarlark(item[1]))
		}
		return obj
	default:
		return ast.StringValue(val.String())
	}
}

// streamText is the text a stage function result contributes to the stream.
// Lists are joined one item per line.
func streamText(val starlark.Value) string {
	switch v := ConvertFromStarlark(val).(type) {
	case ast.ArrayValue:
		lines := make([]string, len(v))
		for i, item := range v {
			lines[i] = ast.Text(item)
		}
		return joinLines(lines)
	default:
		return ast.Text(v)
	}
}
