package budget

// Value is a template argument value.
// It is one of Scalar, Array, or Other.
type Value interface {
	isValue()
}

// Scalar is a string argument. Only scalars lose tokens when trimmed.
type Scalar string

// Array is an ordered list of argument values.
type Array []Value

// Other holds a value the trimmer never touches: numbers, booleans, nil.
type Other struct {
	V any
}

func (Scalar) isValue() {}
func (Array) isValue()  {}
func (Other) isValue()  {}

// FromAny converts a renderer value into a Value.
func FromAny(v any) Value {
	switch v := v.(type) {
	case Value:
		return v
	case string:
		return Scalar(v)
	case []string:
		arr := make(Array, len(v))
		for i, s := range v {
			arr[i] = Scalar(s)
		}
		return arr
	case []any:
		arr := make(Array, len(v))
		for i, e := range v {
			arr[i] = FromAny(e)
		}
		return arr
	default:
		return Other{V: v}
	}
}

// ToAny converts a Value back into a plain value for the renderer.
func ToAny(v Value) any {
	switch v := v.(type) {
	case Scalar:
		return string(v)
	case Array:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = ToAny(e)
		}
		return out
	case Other:
		return v.V
	default:
		return nil
	}
}

// Args is a set of named template arguments.
type Args map[string]Value

// ArgsFromMap converts renderer arguments into Args.
func ArgsFromMap(m map[string]any) Args {
	args := make(Args, len(m))
	for k, v := range m {
		args[k] = FromAny(v)
	}
	return args
}

// Map converts Args back into renderer arguments.
func (a Args) Map() map[string]any {
	m := make(map[string]any, len(a))
	for k, v := range a {
		m[k] = ToAny(v)
	}
	return m
}

// Clone returns a shallow copy. Values are never mutated in place, so
// sharing them between copies is safe.
func (a Args) Clone() Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
