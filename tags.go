package formser

import (
	"reflect"
	"strings"
	"sync"
)

// structTagCache holds the parsed "form" tags of each plain struct type written
// by [Writer.WriteAnyValue] or filled by [Node.Bind], keyed by [reflect.Type].
// Writers and nodes are per call; this cache is the only state they share and
// it is safe for concurrent use.
var structTagCache sync.Map

type fieldTag struct {
	Name   string
	Omit   bool
	Ignore bool
}

// tags returns one fieldTag per field of the struct held in v.
func tags(v reflect.Value) []*fieldTag {
	st := reflect.Indirect(v).Type()
	if st.Kind() != reflect.Struct {
		return []*fieldTag{}
	}
	if cached, ok := structTagCache.Load(st); ok {
		return cached.([]*fieldTag)
	}

	out := make([]*fieldTag, st.NumField())
	for i := range out {
		f := st.Field(i)

		// Unexported fields can be neither read nor set through reflection.
		if !f.IsExported() {
			out[i] = &fieldTag{Ignore: true}
			continue
		}

		t := parseFieldTag(f.Tag.Get("form"))
		if !t.Ignore && t.Name == "" {
			t.Name = f.Name
		}
		out[i] = t
	}

	structTagCache.Store(st, out)
	return out
}

// parseFieldTag parses `form:"name,omitempty"`. A tag of "-" or carrying the
// ignore flag excludes the field.
func parseFieldTag(s string) *fieldTag {
	s = strings.TrimSpace(s)
	if s == "-" {
		return &fieldTag{Ignore: true}
	}

	name, flags, _ := strings.Cut(s, ",")
	t := &fieldTag{Name: strings.TrimSpace(name)}
	for flags != "" {
		var flag string
		flag, flags, _ = strings.Cut(flags, ",")
		switch strings.TrimSpace(flag) {
		case "omitempty":
			t.Omit = true
		case "ignore":
			t.Ignore = true
		}
	}
	return t
}

// fieldByTag returns the field of struct v whose tag name is key.
func fieldByTag(v reflect.Value, key string) reflect.Value {
	for i, t := range tags(v) {
		if !t.Ignore && t.Name == key {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}
