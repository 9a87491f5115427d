package formser

import (
	"io"

	"github.com/pkg/errors"
)

// Decoder reads form-urlencoded data from an [io.Reader] and decodes it into a
// model.
type Decoder struct {
	r    io.Reader
	opts []NodeOption
}

// NewDecoder creates a new [Decoder] that reads from r.
func NewDecoder(r io.Reader, opts ...NodeOption) *Decoder {
	return &Decoder{r: r, opts: opts}
}

// Decode reads all form-urlencoded data from the underlying [io.Reader] and
// returns the model built by factory.
func (d *Decoder) Decode(factory ParsableFactory) (Parsable, error) {
	body, err := io.ReadAll(d.r)
	if err != nil {
		return nil, errors.Wrap(err, "form: failed to read body")
	}

	return Unmarshal(body, factory, d.opts...)
}

// Encoder writes form-urlencoded data to an [io.Writer].
type Encoder struct {
	w    io.Writer
	opts []WriterOption
}

// NewEncoder creates a new [Encoder] that writes to w.
func NewEncoder(w io.Writer, opts ...WriterOption) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode encodes v as form-urlencoded data and writes it to the underlying
// [io.Writer].
func (e *Encoder) Encode(v Parsable) error {
	data, err := Marshal(v, e.opts...)
	if err != nil {
		return err
	}

	_, err = e.w.Write(data)
	return err
}
