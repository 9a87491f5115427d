// Package formser provides a form serialization backend for generated API
// clients.
//
// This package handles application/x-www-form-urlencoded content. A [Writer]
// accumulates typed key/value pairs into one flat, ordered buffer and a [Node]
// exposes parsed form content to field-by-field model deserializers. The format
// has no nesting syntax: collections are written as repeated keys and a nested
// object is written as a single escaped value holding its own encoded fields.
// Collections of objects cannot be represented and are rejected in both
// directions.
package formser
