package formser

import (
	"reflect"
	"sort"
)

// EncodeToString is a convenience function that returns the form encoding of v
// as a string.
func EncodeToString(v Parsable, opts ...WriterOption) (string, error) {
	b, err := Marshal(v, opts...)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Marshal returns the form encoding of the model v. The fields of v are
// written at the top level of the output.
func Marshal(v Parsable, opts ...WriterOption) ([]byte, error) {
	w := NewWriter(opts...)
	if err := w.WriteObjectValue("", v); err != nil {
		return nil, err
	}
	return w.GetSerializedContent(), nil
}

// WriteAnyValue writes value under key, choosing the operation by the runtime
// type of value:
//
//   - nil and nil pointers are skipped
//   - [Parsable] models are written with [Writer.WriteObjectValue]
//   - [Marshaler] enums and the scalar kinds are written as single pairs
//   - pointers are followed
//   - slices and arrays are written with [Writer.WriteCollectionOfPrimitiveValues]
//   - [*AdditionalData], maps with string keys and plain structs are written as
//     a nested value, plain structs honouring "form" field tags
//
// Any other type fails with an [UnknownTypeError].
func (w *Writer) WriteAnyValue(key string, value interface{}) error {
	if isNilValue(value) {
		return nil
	}

	switch v := value.(type) {
	case Parsable:
		return w.WriteObjectValue(key, v)
	case *AdditionalData:
		return w.writeBag(key, func(c *Writer) error {
			return c.WriteAdditionalData(v)
		})
	}

	s, ok, err := formatScalar(value)
	if err != nil {
		return err
	}
	if ok {
		if !skipKey(key) {
			w.writePair(key, s)
		}
		return nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return w.WriteAnyValue(key, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		return w.WriteCollectionOfPrimitiveValues(key, value)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return &UnknownTypeError{Key: key, Type: rv.Type()}
		}
		return w.writeBag(key, func(c *Writer) error {
			return c.writeMap(rv)
		})
	case reflect.Struct:
		return w.writeBag(key, func(c *Writer) error {
			return c.writeStruct(rv)
		})
	}
	return &UnknownTypeError{Key: key, Type: rv.Type()}
}

// writeBag writes the content produced by fill into a child writer as a nested
// value, the same way an object is written.
func (w *Writer) writeBag(key string, fill func(*Writer) error) error {
	child := w.newChild()
	if err := fill(child); err != nil {
		return err
	}
	w.merge(key, child)
	return nil
}

func (w *Writer) writeStruct(v reflect.Value) error {
	tags := tags(v)
	for i := 0; i < v.NumField(); i++ {
		tag := tags[i]
		if tag.Ignore || tag.Name == "" {
			continue
		}
		fv := v.Field(i)
		if tag.Omit && isEmptyValue(fv) {
			continue
		}
		if err := w.WriteAnyValue(tag.Name, fv.Interface()); err != nil {
			return err
		}
	}
	return nil
}

// writeMap writes map entries sorted by key so the output is deterministic.
func (w *Writer) writeMap(v reflect.Value) error {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	for _, k := range keys {
		if err := w.WriteAnyValue(k.String(), v.MapIndex(k).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// scalarText returns the text of a collection element, following pointers. The
// boolean is false for nil elements, which are skipped.
func scalarText(key string, v interface{}) (string, bool, error) {
	for {
		if isNilValue(v) {
			return "", false, nil
		}
		s, ok, err := formatScalar(v)
		if err != nil || ok {
			return s, ok, err
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer && rv.Kind() != reflect.Interface {
			return "", false, &UnknownTypeError{Key: key, Type: rv.Type()}
		}
		v = rv.Elem().Interface()
	}
}

// isNilValue reports whether v is nil or a nil pointer, map, slice or
// interface held in an interface.
func isNilValue(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}
