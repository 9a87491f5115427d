package formser

import (
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Writer accumulates form encoded key/value pairs into a single ordered
// buffer. A Writer is created per serialization and must not be reused or
// shared. After a write fails the buffer may be malformed and the whole Writer
// should be discarded.
type Writer struct {
	buf strings.Builder

	onBefore func(Parsable) error
	onAfter  func(Parsable) error
	onStart  func(Parsable, *Writer) error
}

// WriterOption configures a [Writer].
type WriterOption func(*Writer)

// WithOnBefore sets a hook called before each object is serialized.
func WithOnBefore(fn func(Parsable) error) WriterOption {
	return func(w *Writer) { w.onBefore = fn }
}

// WithOnAfter sets a hook called after each object is serialized.
func WithOnAfter(fn func(Parsable) error) WriterOption {
	return func(w *Writer) { w.onAfter = fn }
}

// WithOnStart sets a hook called right before an object's Serialize method,
// with the writer the object is about to be written into.
func WithOnStart(fn func(Parsable, *Writer) error) WriterOption {
	return func(w *Writer) { w.onStart = fn }
}

// NewWriter returns an empty Writer.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// newChild returns an empty Writer sharing the hooks of w.
func (w *Writer) newChild() *Writer {
	return &Writer{
		onBefore: w.onBefore,
		onAfter:  w.onAfter,
		onStart:  w.onStart,
	}
}

func skipKey(key string) bool {
	return strings.TrimSpace(key) == ""
}

func (w *Writer) writePair(key, value string) {
	if w.buf.Len() > 0 {
		w.buf.WriteByte('&')
	}
	w.buf.WriteString(url.QueryEscape(strings.TrimSpace(key)))
	w.buf.WriteByte('=')
	w.buf.WriteString(url.QueryEscape(value))
}

// writeRaw appends already encoded content.
func (w *Writer) writeRaw(s string) {
	if s == "" {
		return
	}
	if w.buf.Len() > 0 {
		w.buf.WriteByte('&')
	}
	w.buf.WriteString(s)
}

// WriteStringValue writes value under key. An empty string is written.
func (w *Writer) WriteStringValue(key string, value *string) error {
	if skipKey(key) || value == nil {
		return nil
	}
	w.writePair(key, *value)
	return nil
}

// WriteBoolValue writes value under key as true or false.
func (w *Writer) WriteBoolValue(key string, value *bool) error {
	if skipKey(key) || value == nil {
		return nil
	}
	return w.writeScalar(key, *value)
}

// WriteInt8Value writes value under key in decimal.
func (w *Writer) WriteInt8Value(key string, value *int8) error {
	if skipKey(key) || value == nil {
		return nil
	}
	return w.writeScalar(key, *value)
}

// WriteByteValue writes value under key as an unsigned decimal.
func (w *Writer) WriteByteValue(key string, value *byte) error {
	if skipKey(key) || value == nil {
		return nil
	}
	return w.writeScalar(key, *value)
}

// WriteInt32Value writes value under key in decimal.
func (w *Writer) WriteInt32Value(key string, value *int32) error {
	if skipKey(key) || value == nil {
		return nil
	}
	return w.writeScalar(key, *value)
}

// WriteInt64Value writes value under key in decimal.
func (w *Writer) WriteInt64Value(key string, value *int64) error {
	if skipKey(key) || value == nil {
		return nil
	}
	return w.writeScalar(key, *value)
}

// WriteFloat32Value writes value under key, keeping a fractional component
// like [Writer.WriteFloat64Value].
func (w *Writer) WriteFloat32Value(key string, value *float32) error {
	if skipKey(key) || value == nil {
		return nil
	}
	return w.writeScalar(key, *value)
}

// WriteFloat64Value writes value under key. Integral values keep a fractional
// component, so 2 is written as 2.0.
func (w *Writer) WriteFloat64Value(key string, value *float64) error {
	if skipKey(key) || value == nil {
		return nil
	}
	return w.writeScalar(key, *value)
}

// WriteUUIDValue writes value in its lowercase hyphenated form.
func (w *Writer) WriteUUIDValue(key string, value *uuid.UUID) error {
	if skipKey(key) || value == nil {
		return nil
	}
	return w.writeScalar(key, *value)
}

// WriteTimeValue writes value as an ISO-8601 date-time with a numeric offset.
func (w *Writer) WriteTimeValue(key string, value *time.Time) error {
	if skipKey(key) || value == nil {
		return nil
	}
	return w.writeScalar(key, *value)
}

// WriteDateOnlyValue writes value as YYYY-MM-DD.
func (w *Writer) WriteDateOnlyValue(key string, value *DateOnly) error {
	if skipKey(key) || value == nil {
		return nil
	}
	return w.writeScalar(key, *value)
}

// WriteTimeOnlyValue writes value as HH:MM:SS with an optional microsecond
// fraction.
func (w *Writer) WriteTimeOnlyValue(key string, value *TimeOnly) error {
	if skipKey(key) || value == nil {
		return nil
	}
	return w.writeScalar(key, *value)
}

// WriteDurationValue writes value as an ISO-8601 duration such as PT1H.
func (w *Writer) WriteDurationValue(key string, value *time.Duration) error {
	if skipKey(key) || value == nil {
		return nil
	}
	return w.writeScalar(key, *value)
}

// WriteByteArrayValue writes value as standard base64. A nil slice is absent;
// an empty slice is written as an empty value.
func (w *Writer) WriteByteArrayValue(key string, value []byte) error {
	if skipKey(key) || value == nil {
		return nil
	}
	w.writePair(key, formatBytes(value))
	return nil
}

func (w *Writer) writeScalar(key string, v interface{}) error {
	s, _, err := formatScalar(v)
	if err != nil {
		return err
	}
	w.writePair(key, s)
	return nil
}

// WriteEnumValue writes the wire value of a single enum member. When several
// members are given they are joined with commas under the one key, unlike
// [Writer.WriteCollectionOfEnumValues] which writes a pair per member.
func (w *Writer) WriteEnumValue(key string, values ...Marshaler) error {
	if skipKey(key) {
		return nil
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if isNilValue(v) {
			continue
		}
		s, err := v.MarshalForm()
		if err != nil {
			return err
		}
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return nil
	}
	w.writePair(key, strings.Join(parts, ","))
	return nil
}

// WriteCollectionOfPrimitiveValues writes every element of the slice values as
// a separate pair under key, each encoded with the rule of its own kind. Nil
// elements are skipped.
func (w *Writer) WriteCollectionOfPrimitiveValues(key string, values interface{}) error {
	rv, ok, err := collection(key, values)
	if err != nil || !ok {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if _, isObject := elem.(Parsable); isObject && !isNilValue(elem) {
			return &UnsupportedOperationError{Op: "collections of objects"}
		}
		s, ok, err := scalarText(key, elem)
		if err != nil {
			return err
		}
		if ok {
			w.writePair(key, s)
		}
	}
	return nil
}

// WriteCollectionOfEnumValues writes every member in the slice values as a
// separate pair under key.
func (w *Writer) WriteCollectionOfEnumValues(key string, values interface{}) error {
	rv, ok, err := collection(key, values)
	if err != nil || !ok {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if isNilValue(elem) {
			continue
		}
		m, isEnum := elem.(Marshaler)
		if !isEnum {
			return &UnknownTypeError{Key: key, Type: reflect.TypeOf(elem)}
		}
		s, err := m.MarshalForm()
		if err != nil {
			return err
		}
		w.writePair(key, s)
	}
	return nil
}

// WriteCollectionOfObjectValues always fails: the flat key space cannot tell
// the fields of one object apart from another's.
func (w *Writer) WriteCollectionOfObjectValues(key string, values interface{}) error {
	return &UnsupportedOperationError{Op: "collections of objects"}
}

// collection reports whether values is a non-empty slice or array worth
// writing under key.
func collection(key string, values interface{}) (reflect.Value, bool, error) {
	if skipKey(key) || isNilValue(values) {
		return reflect.Value{}, false, nil
	}
	rv := reflect.ValueOf(values)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return reflect.Value{}, false, &UnknownTypeError{Key: key, Type: rv.Type()}
	}
	return rv, rv.Len() > 0, nil
}

// WriteObjectValue serializes value, followed by any additional values to
// merge into it, into a child writer. With a key, the child's content is
// written as one escaped value under key. Without a key it is appended to the
// buffer as is, which is how a root object is written.
func (w *Writer) WriteObjectValue(key string, value Parsable, additional ...Parsable) error {
	hasValue := !isNilValue(value)
	merge := make([]Parsable, 0, len(additional))
	for _, a := range additional {
		if !isNilValue(a) {
			merge = append(merge, a)
		}
	}
	if !hasValue && len(merge) == 0 {
		return nil
	}

	child := w.newChild()
	if hasValue {
		if err := w.serialize(child, value); err != nil {
			return err
		}
	}
	for _, a := range merge {
		if err := w.serialize(child, a); err != nil {
			return err
		}
	}

	w.merge(key, child)
	return nil
}

func (w *Writer) serialize(child *Writer, v Parsable) error {
	if w.onBefore != nil {
		if err := w.onBefore(v); err != nil {
			return err
		}
	}
	if w.onStart != nil {
		if err := w.onStart(v, child); err != nil {
			return err
		}
	}
	if err := v.Serialize(child); err != nil {
		return err
	}
	if w.onAfter != nil {
		return w.onAfter(v)
	}
	return nil
}

func (w *Writer) merge(key string, child *Writer) {
	if skipKey(key) {
		w.writeRaw(child.buf.String())
		return
	}
	w.writePair(key, child.buf.String())
}

// WriteNullValue writes the null marker under key, or the literal null when
// key is empty.
func (w *Writer) WriteNullValue(key string) error {
	if skipKey(key) {
		w.writeRaw("null")
		return nil
	}
	w.writePair(key, "null")
	return nil
}

// WriteAdditionalData writes every entry of bag, in order, as if through
// [Writer.WriteAnyValue].
func (w *Writer) WriteAdditionalData(bag *AdditionalData) error {
	var err error
	bag.Range(func(key string, v interface{}) bool {
		err = w.WriteAnyValue(key, v)
		return err == nil
	})
	return err
}

// GetSerializedContent returns a copy of the encoded buffer.
func (w *Writer) GetSerializedContent() []byte {
	return []byte(w.buf.String())
}

// String returns the encoded buffer.
func (w *Writer) String() string {
	return w.buf.String()
}
