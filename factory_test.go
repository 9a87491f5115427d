package formser_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomasbasham/formser"
)

func TestWriterFactory(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		contentType string
		wantErr     bool
	}{
		"exact": {
			contentType: "application/x-www-form-urlencoded",
		},
		"different case": {
			contentType: "Application/X-WWW-Form-UrlEncoded",
		},
		"empty": {
			contentType: "",
			wantErr:     true,
		},
		"json": {
			contentType: "application/json",
			wantErr:     true,
		},
		"with parameters": {
			contentType: "application/x-www-form-urlencoded; charset=utf-8",
			wantErr:     true,
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := &formser.WriterFactory{}
			w, err := f.NewWriter(tt.contentType)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error: %v, got: %v", tt.wantErr, err)
			}
			if tt.wantErr {
				var cfg *formser.ConfigurationError
				if !errors.As(err, &cfg) {
					t.Errorf("expected ConfigurationError, got %T", err)
				}
				return
			}
			if w == nil {
				t.Fatal("expected writer")
			}
		})
	}
}

func TestWriterFactory_FreshWriters(t *testing.T) {
	t.Parallel()

	var started int
	f := &formser.WriterFactory{Options: []formser.WriterOption{
		formser.WithOnStart(func(formser.Parsable, *formser.Writer) error {
			started++
			return nil
		}),
	}}
	if diff := cmp.Diff(f.ValidContentType(), formser.ContentType); diff != "" {
		t.Errorf("mismatch (-got +want):\n%s", diff)
	}

	first, _ := f.NewWriter(formser.ContentType)
	second, _ := f.NewWriter(formser.ContentType)
	if first == second {
		t.Fatal("expected distinct writers")
	}
	if err := first.WriteObjectValue("", &Manager{Name: ptr("Ada")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.String() != "" {
		t.Errorf("expected second writer to be empty, got %q", second.String())
	}
	if started != 1 {
		t.Errorf("expected start hook once, got %d", started)
	}
}

func TestNodeFactory(t *testing.T) {
	t.Parallel()

	f := &formser.NodeFactory{}
	if _, err := f.NewNode("text/plain", []byte("a=1")); err == nil {
		t.Fatal("expected error")
	}

	n, err := f.NewNode("APPLICATION/X-WWW-FORM-URLENCODED", []byte("a=1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	child, err := n.GetChildNode("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := child.GetInt64Value(); v == nil || *v != 1 {
		t.Errorf("expected 1, got %v", v)
	}
}
