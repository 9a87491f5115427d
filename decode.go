package formser

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// InvalidBindError describes an invalid argument passed to [Node.Bind].
// (The argument to [Node.Bind] must be a non-nil pointer.)
type InvalidBindError struct {
	Type reflect.Type
}

func (e *InvalidBindError) Error() string {
	if e.Type == nil {
		return "form: Bind(nil)"
	}

	if e.Type.Kind() != reflect.Pointer {
		return "form: Bind(non-pointer " + e.Type.String() + ")"
	}
	return "form: Bind(nil " + e.Type.String() + ")"
}

// DecodeString is a convenience function that parses the form data in the
// string and returns the model built by factory.
func DecodeString(data string, factory ParsableFactory, opts ...NodeOption) (Parsable, error) {
	return Unmarshal([]byte(data), factory, opts...)
}

// Unmarshal parses the form data and returns the model built by factory, its
// fields assigned from the top level keys of data.
func Unmarshal(data []byte, factory ParsableFactory, opts ...NodeOption) (Parsable, error) {
	if len(data) == 0 {
		return nil, errors.New("form: empty input")
	}
	n, err := Parse(data, opts...)
	if err != nil {
		return nil, err
	}
	return n.GetObjectValue(factory)
}

// Types read through the value codec rather than by reflect kind.
var codecKinds = map[reflect.Type]Kind{
	reflect.TypeOf(uuid.UUID{}):      KindUUID,
	reflect.TypeOf(time.Time{}):      KindTime,
	reflect.TypeOf(DateOnly{}):       KindDateOnly,
	reflect.TypeOf(TimeOnly{}):       KindTimeOnly,
	reflect.TypeOf(time.Duration(0)): KindDuration,
	reflect.TypeOf([]byte(nil)):      KindBytes,
}

// Bind fills the plain struct or string keyed map pointed to by v from the
// node's fields. It is the read side of the attribute bags accepted by
// [Writer.WriteAnyValue]: struct fields are matched by their "form" tag, slice
// fields collect every value of a repeated key and nested structs and maps are
// bound from the nested value. Keys with no matching field are ignored. Fields
// implementing [Unmarshaler] are handed the raw text.
func (n *Node) Bind(v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &InvalidBindError{reflect.TypeOf(v)}
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Map {
		return errors.New("form: bind target must be struct or map")
	}

	// Ensure map keys are strings.
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() != reflect.String {
		return errors.New("form: map keys must be strings")
	}

	if n.IsNull() {
		return nil
	}
	fields, err := n.fieldMap()
	if err != nil {
		return err
	}
	for _, key := range fields.keys {
		if err := n.bindKey(rv, key, fields.values[key]); err != nil {
			return errors.Wrapf(err, "form: field %q", key)
		}
	}
	return nil
}

func (n *Node) bindKey(v reflect.Value, key string, values []string) error {
	if v.Kind() == reflect.Map {
		if v.IsNil() {
			v.Set(reflect.MakeMap(v.Type()))
		}
		elem := reflect.New(v.Type().Elem()).Elem()
		if err := n.assign(elem, values); err != nil {
			return err
		}
		v.SetMapIndex(reflect.ValueOf(key).Convert(v.Type().Key()), elem)
		return nil
	}

	field := fieldByTag(v, key)
	if !field.IsValid() || !field.CanSet() {
		return nil
	}
	return n.assign(field, values)
}

// assign sets v from the values of one key.
func (n *Node) assign(v reflect.Value, values []string) error {
	joined := strings.Join(values, ",")
	if joined == nullValue {
		return nil
	}
	v = deref(v)

	if u, ok := asUnmarshaler(v); ok {
		return u.UnmarshalForm(joined)
	}
	if kind, ok := codecKinds[v.Type()]; ok {
		return setCodecValue(v, kind, joined)
	}

	switch v.Kind() {
	case reflect.Interface:
		// With no type information keep the text, as additional data does.
		v.Set(reflect.ValueOf(joined))
		return nil
	case reflect.Slice:
		elemType := v.Type().Elem()
		for _, s := range values {
			elem := reflect.New(elemType).Elem()
			if err := n.assign(elem, []string{s}); err != nil {
				return err
			}
			v.Set(reflect.Append(v, elem))
		}
		return nil
	case reflect.Struct, reflect.Map:
		return n.child(values).Bind(v.Addr().Interface())
	default:
		return setScalar(v, joined)
	}
}

// dereference a pointer value, allocating a new value if needed.
func deref(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return v.Elem()
	}
	return v
}

func asUnmarshaler(v reflect.Value) (Unmarshaler, bool) {
	if v.CanAddr() {
		if u, ok := v.Addr().Interface().(Unmarshaler); ok {
			return u, true
		}
	}
	if u, ok := v.Interface().(Unmarshaler); ok {
		return u, true
	}
	return nil, false
}

func setCodecValue(v reflect.Value, kind Kind, s string) error {
	if s == "" && kind != KindBytes {
		return nil
	}
	val, err := parseScalar(kind, s)
	if err != nil {
		return err
	}
	v.Set(reflect.ValueOf(val))
	return nil
}

func setScalar(v reflect.Value, val string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(val)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setInt(v, val)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return setUint(v, val)
	case reflect.Float32, reflect.Float64:
		return setFloat(v, val)
	case reflect.Bool:
		return setBool(v, val)
	default:
		return errors.Errorf("unsupported type: %v", v.Type())
	}
	return nil
}

func setInt(v reflect.Value, s string) error {
	if s == "" {
		v.SetInt(0)
		return nil
	}
	i, err := strconv.ParseInt(s, 10, v.Type().Bits())
	if err != nil {
		return errors.Wrap(err, "setInt")
	}
	v.SetInt(i)
	return nil
}

func setUint(v reflect.Value, s string) error {
	if s == "" {
		v.SetUint(0)
		return nil
	}
	i, err := strconv.ParseUint(s, 10, v.Type().Bits())
	if err != nil {
		return errors.Wrap(err, "setUint")
	}
	v.SetUint(i)
	return nil
}

func setFloat(v reflect.Value, s string) error {
	if s == "" {
		v.SetFloat(0)
		return nil
	}
	f, err := strconv.ParseFloat(s, v.Type().Bits())
	if err != nil {
		return errors.Wrap(err, "setFloat")
	}
	v.SetFloat(f)
	return nil
}

func setBool(v reflect.Value, s string) error {
	if s == "" {
		v.SetBool(false)
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return errors.Wrap(err, "setBool")
	}
	v.SetBool(b)
	return nil
}
