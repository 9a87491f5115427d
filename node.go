package formser

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// nullValue is the wire marker of an explicit null.
const nullValue = "null"

// Node is a read view over parsed form content. The root node covers the whole
// input; a child node covers the values of one key and, when those values hold
// a nested object, the fields encoded inside the first of them.
type Node struct {
	raw    string    // form text the fields are parsed from
	values []string  // decoded values of the node's key
	fields *fieldMap // parsed from raw on first use

	onBefore func(Parsable) error
	onAfter  func(Parsable) error
}

// fieldMap maps decoded keys to their decoded values in order of first
// appearance. Repeated keys keep every value in arrival order.
type fieldMap struct {
	keys   []string
	values map[string][]string
}

func (f *fieldMap) add(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = append(f.values[key], value)
}

// NodeOption configures a [Node].
type NodeOption func(*Node)

// WithOnBeforeAssign sets a hook called before the fields of each model are
// assigned by [Node.GetObjectValue].
func WithOnBeforeAssign(fn func(Parsable) error) NodeOption {
	return func(n *Node) { n.onBefore = fn }
}

// WithOnAfterAssign sets a hook called after the fields of each model are
// assigned by [Node.GetObjectValue].
func WithOnAfterAssign(fn func(Parsable) error) NodeOption {
	return func(n *Node) { n.onAfter = fn }
}

// Parse parses form encoded data into a root node.
func Parse(data []byte, opts ...NodeOption) (*Node, error) {
	return NewNode(string(data), opts...)
}

// NewNode parses form encoded content into a root node. Surrounding whitespace
// is trimmed. Malformed percent escapes are an error.
func NewNode(content string, opts ...NodeOption) (*Node, error) {
	content = strings.TrimSpace(content)
	fields, err := parseFields(content)
	if err != nil {
		return nil, err
	}
	value, err := url.QueryUnescape(content)
	if err != nil {
		return nil, errors.Wrap(err, "form: invalid form data")
	}

	n := &Node{raw: content, values: []string{value}, fields: fields}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// parseFields splits s on '&' and each piece on its first '='. Empty pieces,
// such as the one after a trailing '&', are ignored.
func parseFields(s string) (*fieldMap, error) {
	f := &fieldMap{values: make(map[string][]string)}
	for s != "" {
		var pair string
		pair, s, _ = strings.Cut(s, "&")
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, errors.Wrapf(err, "form: invalid key %q", rawKey)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, errors.Wrapf(err, "form: invalid value for key %q", key)
		}
		f.add(strings.TrimSpace(key), value)
	}
	return f, nil
}

func (n *Node) fieldMap() (*fieldMap, error) {
	if n.fields == nil {
		fields, err := parseFields(n.raw)
		if err != nil {
			return nil, err
		}
		n.fields = fields
	}
	return n.fields, nil
}

func (n *Node) child(values []string) *Node {
	return &Node{
		raw:      values[0],
		values:   values,
		onBefore: n.onBefore,
		onAfter:  n.onAfter,
	}
}

// GetChildNode returns the node for key. It returns nil and no error when key
// is absent, which callers must not confuse with a present null value.
func (n *Node) GetChildNode(key string) (*Node, error) {
	if skipKey(key) {
		return nil, errors.New("form: key cannot be empty")
	}
	fields, err := n.fieldMap()
	if err != nil {
		return nil, err
	}
	values, ok := fields.values[key]
	if !ok {
		return nil, nil
	}
	return n.child(values), nil
}

// GetRawValue returns the decoded text of the node. The values of a repeated
// key are joined with commas.
func (n *Node) GetRawValue() string {
	return strings.Join(n.values, ",")
}

// IsNull reports whether the node holds the null marker.
func (n *Node) IsNull() bool {
	return n.GetRawValue() == nullValue
}

// text returns the raw value and false when it is null.
func (n *Node) text() (string, bool) {
	s := n.GetRawValue()
	return s, s != nullValue
}

// getScalar parses the node as kind. Null and empty text yield nil.
func getScalar[T any](n *Node, kind Kind) (*T, error) {
	s, ok := n.text()
	if !ok || s == "" {
		return nil, nil
	}
	v, err := parseScalar(kind, s)
	if err != nil {
		return nil, err
	}
	t := v.(T)
	return &t, nil
}

// GetStringValue returns the node's text. Numeric and boolean looking text is
// returned as is; only the null marker yields nil.
func (n *Node) GetStringValue() (*string, error) {
	s, ok := n.text()
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// GetBoolValue parses true or false.
func (n *Node) GetBoolValue() (*bool, error) {
	return getScalar[bool](n, KindBool)
}

// GetInt8Value parses a decimal that fits in 8 bits.
func (n *Node) GetInt8Value() (*int8, error) {
	return getScalar[int8](n, KindInt8)
}

// GetByteValue parses an unsigned decimal that fits in 8 bits.
func (n *Node) GetByteValue() (*byte, error) {
	return getScalar[byte](n, KindByte)
}

// GetInt32Value parses a decimal that fits in 32 bits.
func (n *Node) GetInt32Value() (*int32, error) {
	return getScalar[int32](n, KindInt32)
}

// GetInt64Value parses a decimal that fits in 64 bits.
func (n *Node) GetInt64Value() (*int64, error) {
	return getScalar[int64](n, KindInt64)
}

// GetFloat32Value parses a single precision float.
func (n *Node) GetFloat32Value() (*float32, error) {
	return getScalar[float32](n, KindFloat32)
}

// GetFloat64Value parses a double precision float.
func (n *Node) GetFloat64Value() (*float64, error) {
	return getScalar[float64](n, KindFloat64)
}

// GetUUIDValue parses a hyphenated UUID.
func (n *Node) GetUUIDValue() (*uuid.UUID, error) {
	return getScalar[uuid.UUID](n, KindUUID)
}

// GetTimeValue parses an ISO-8601 date-time. Text without an offset is read as
// UTC.
func (n *Node) GetTimeValue() (*time.Time, error) {
	return getScalar[time.Time](n, KindTime)
}

// GetDateOnlyValue parses a YYYY-MM-DD date.
func (n *Node) GetDateOnlyValue() (*DateOnly, error) {
	return getScalar[DateOnly](n, KindDateOnly)
}

// GetTimeOnlyValue parses an HH:MM:SS time with an optional fraction.
func (n *Node) GetTimeOnlyValue() (*TimeOnly, error) {
	return getScalar[TimeOnly](n, KindTimeOnly)
}

// GetDurationValue accepts both ISO-8601 durations (PT30S) and clock durations
// (0:00:30).
func (n *Node) GetDurationValue() (*time.Duration, error) {
	return getScalar[time.Duration](n, KindDuration)
}

// GetByteArrayValue decodes standard base64 text. An empty value yields an
// empty, non-nil slice.
func (n *Node) GetByteArrayValue() ([]byte, error) {
	s, ok := n.text()
	if !ok {
		return nil, nil
	}
	return parseBytes(s)
}

// GetEnumValue converts the node's text with parser.
func (n *Node) GetEnumValue(parser EnumParser) (interface{}, error) {
	if parser == nil {
		return nil, errors.New("form: enum parser cannot be nil")
	}
	s, ok := n.text()
	if !ok || s == "" {
		return nil, nil
	}
	return parser(s)
}

// GetCollectionOfPrimitiveValues returns one element per value of the node's
// key, in arrival order and including duplicates, each parsed as kind. Null
// values, and empty values of kinds other than string and bytes, become nil
// elements.
func (n *Node) GetCollectionOfPrimitiveValues(kind Kind) ([]interface{}, error) {
	out := make([]interface{}, 0, len(n.values))
	for _, raw := range n.values {
		if raw == nullValue || (raw == "" && kind != KindString && kind != KindBytes) {
			out = append(out, nil)
			continue
		}
		v, err := parseScalar(kind, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// GetCollectionOfEnumValues returns the members named by the node's values.
// Each value may itself hold several comma separated members, as written by
// [Writer.WriteEnumValue]. Names the parser does not recognise are dropped.
func (n *Node) GetCollectionOfEnumValues(parser EnumParser) ([]interface{}, error) {
	if parser == nil {
		return nil, errors.New("form: enum parser cannot be nil")
	}
	var out []interface{}
	for _, raw := range n.values {
		if raw == nullValue {
			continue
		}
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			v, err := parser(name)
			if err != nil {
				return nil, err
			}
			if v != nil {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

// GetObjectValue creates a model with factory and assigns its fields. Each key
// with a declared deserializer is handed its child node, in wire order. Other
// keys are stored in the model's additional data, when it has any, as their
// values joined with commas.
func (n *Node) GetObjectValue(factory ParsableFactory) (Parsable, error) {
	if factory == nil {
		return nil, errors.New("form: factory cannot be nil")
	}
	if n.IsNull() {
		return nil, nil
	}
	model, err := factory(n)
	if err != nil {
		return nil, err
	}
	if isNilValue(model) {
		return nil, errors.New("form: factory returned a nil model")
	}
	fields, err := n.fieldMap()
	if err != nil {
		return nil, err
	}

	if n.onBefore != nil {
		if err := n.onBefore(model); err != nil {
			return nil, err
		}
	}

	deserializers := model.FieldDeserializers()
	holder, hasBag := model.(AdditionalDataHolder)
	for _, key := range fields.keys {
		values := fields.values[key]
		if fn, ok := deserializers[key]; ok && fn != nil {
			if err := fn(n.child(values)); err != nil {
				return nil, errors.Wrapf(err, "form: field %q", key)
			}
			continue
		}
		if !hasBag {
			continue
		}
		bag := holder.GetAdditionalData()
		if bag == nil {
			bag = NewAdditionalData()
			holder.SetAdditionalData(bag)
		}
		bag.Set(key, strings.Join(values, ","))
	}

	if n.onAfter != nil {
		if err := n.onAfter(model); err != nil {
			return nil, err
		}
	}
	return model, nil
}

// GetCollectionOfObjectValues always fails: the flat format cannot delimit one
// object's fields from another's.
func (n *Node) GetCollectionOfObjectValues(factory ParsableFactory) ([]Parsable, error) {
	return nil, &UnsupportedOperationError{Op: "collections of objects"}
}
