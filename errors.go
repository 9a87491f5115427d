package formser

import (
	"reflect"
)

// UnsupportedOperationError is returned for operations the form format cannot
// express, such as writing or reading a collection of objects.
type UnsupportedOperationError struct {
	Op string
}

func (e *UnsupportedOperationError) Error() string {
	return "form: serialization does not support " + e.Op
}

// UnknownTypeError describes a value passed to [Writer.WriteAnyValue] whose type
// has no scalar, model or attribute bag handling.
type UnknownTypeError struct {
	Key  string
	Type reflect.Type
}

func (e *UnknownTypeError) Error() string {
	typ := "nil"
	if e.Type != nil {
		typ = e.Type.String()
	}
	if e.Key == "" {
		return "form: encountered an unknown type during serialization " + typ
	}
	return "form: encountered an unknown type during serialization " + typ + " with key " + e.Key
}

// ConfigurationError is returned by the factories when asked for a content type
// other than [ContentType].
type ConfigurationError struct {
	ContentType string
	Reason      string
}

func (e *ConfigurationError) Error() string {
	if e.ContentType == "" {
		return "form: " + e.Reason
	}
	return "form: " + e.Reason + " (got " + e.ContentType + ")"
}
