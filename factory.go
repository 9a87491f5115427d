package formser

import (
	"strings"
)

// ContentType is the only content type served by this package.
const ContentType = "application/x-www-form-urlencoded"

func checkContentType(contentType string) error {
	if contentType == "" {
		return &ConfigurationError{Reason: "content type cannot be empty"}
	}
	if !strings.EqualFold(contentType, ContentType) {
		return &ConfigurationError{
			ContentType: contentType,
			Reason:      "expected " + ContentType + " as content type",
		}
	}
	return nil
}

// WriterFactory creates writers for [ContentType]. Options are applied to
// every writer it creates.
type WriterFactory struct {
	Options []WriterOption
}

// ValidContentType returns the content type this factory creates writers for.
func (f *WriterFactory) ValidContentType() string {
	return ContentType
}

// NewWriter returns a fresh [Writer]. The content type is compared without
// regard to case; anything else fails with a [ConfigurationError].
func (f *WriterFactory) NewWriter(contentType string) (*Writer, error) {
	if err := checkContentType(contentType); err != nil {
		return nil, err
	}
	return NewWriter(f.Options...), nil
}

// NodeFactory creates root nodes for [ContentType] content.
type NodeFactory struct {
	Options []NodeOption
}

// ValidContentType returns the content type this factory parses.
func (f *NodeFactory) ValidContentType() string {
	return ContentType
}

// NewNode parses content into a root [Node] after checking contentType the
// same way as [WriterFactory.NewWriter].
func (f *NodeFactory) NewNode(contentType string, content []byte) (*Node, error) {
	if err := checkContentType(contentType); err != nil {
		return nil, err
	}
	return Parse(content, f.Options...)
}
