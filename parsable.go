package formser

// Marshaler is the interface implemented by types that can marshal themselves
// into a single form value. Enumerations implement it to return the declared
// wire value of a member.
type Marshaler interface {
	MarshalForm() (string, error)
}

// Unmarshaler is the interface implemented by types that can unmarshal a single
// form value of themselves. It is honoured by [Node.Bind].
type Unmarshaler interface {
	UnmarshalForm(string) error
}

// Parsable is implemented by model types. Serialize must call the typed write
// operations of w for each field in a fixed declared order. FieldDeserializers
// maps wire keys to callbacks that pull the field value from the given node.
type Parsable interface {
	Serialize(w *Writer) error
	FieldDeserializers() map[string]func(*Node) error
}

// AdditionalDataHolder is implemented by models that keep the fields which are
// not declared on the model type.
type AdditionalDataHolder interface {
	GetAdditionalData() *AdditionalData
	SetAdditionalData(*AdditionalData)
}

// ParsableFactory creates an empty model for the given node. The node may be
// inspected to select a concrete type.
type ParsableFactory func(n *Node) (Parsable, error)

// EnumParser converts a wire value into an enumeration member. It returns nil
// for values that are not members.
type EnumParser func(string) (interface{}, error)
