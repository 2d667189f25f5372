package catalog

import (
	"cmp"
	"strings"
)

// Key is the composite identity of a catalog object. Specific is only set
// for routines, where overloads share a simple name, and for interned data
// types, where it holds the vendor type code.
type Key struct {
	Catalog  string
	Schema   string
	Name     string
	Specific string
}

// SchemaKey returns the key of the schema that owns k.
func (k Key) SchemaKey() Key {
	return Key{Catalog: k.Catalog, Schema: k.Schema}
}

// Child returns a key for an object named name inside k.
func (k Key) Child(name string) Key {
	return Key{Catalog: k.Catalog, Schema: k.Schema, Name: name}
}

// FullName joins the non-empty catalog, schema and name parts with a dot.
func (k Key) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{k.Catalog, k.Schema, k.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// IsZero reports whether no part of the key is set.
func (k Key) IsZero() bool {
	return k == Key{}
}

func (k Key) String() string {
	if k.Specific != "" && k.Specific != k.Name {
		return k.FullName() + "/" + k.Specific
	}
	return k.FullName()
}

// Compare orders keys by schema, then name, then specific name.
func (k Key) Compare(o Key) int {
	return cmp.Or(
		cmp.Compare(k.SchemaKey().FullName(), o.SchemaKey().FullName()),
		cmp.Compare(k.Name, o.Name),
		cmp.Compare(k.Specific, o.Specific),
	)
}

// Named is implemented by every object held in a NamedList.
type Named interface {
	Key() Key
	FullName() string
}
