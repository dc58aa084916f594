package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Kind selects a handler which converts a node to a property value.
type Kind int

const (
	Ignore Kind = iota
	Text
	HTML
	Lang
	URL
	Date
	ID
	Author
	Entry
	Feed
	AtomLinkAlternate

	kindCount
)

var kindNames = [kindCount]string{
	Ignore:            "ignore",
	Text:              "text",
	HTML:              "html",
	Lang:              "lang",
	URL:               "url",
	Date:              "date",
	ID:                "id",
	Author:            "author",
	Entry:             "entry",
	Feed:              "feed",
	AtomLinkAlternate: "atomLinkAlternate",
}

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) valid() bool {
	return k >= 0 && k < kindCount
}

func (k Kind) nested() bool {
	return k == Author || k == Entry || k == Feed
}

// Merge is a property name which merges a nested bag into the parent one instead of storing it under a key.
const Merge = "{merge}"

type Property struct {
	Name  string
	Kind  Kind
	Array bool
	Keys  []string
}

func Scalar(name string, kind Kind, keys ...string) Property {
	return Property{Name: name, Kind: kind, Keys: keys}
}

func List(name string, kind Kind, keys ...string) Property {
	return Property{Name: name, Kind: kind, Array: true, Keys: keys}
}

func MergeInto(kind Kind, keys ...string) Property {
	return Property{Name: Merge, Kind: kind, Keys: keys}
}

func Ignored(keys ...string) Property {
	return Property{Kind: Ignore, Keys: keys}
}

type destination struct {
	name  string
	kind  Kind
	array bool
}

// Schema is a declarative mapping of qualified element and attribute names ("prefix:local") to canonical properties.
// The same key may feed several properties.
type Schema struct {
	name         string
	destinations map[string][]destination
}

func NewSchema(name string, properties ...Property) (*Schema, error) {
	schema := &Schema{
		name:         name,
		destinations: make(map[string][]destination),
	}

	for _, property := range properties {
		if err := validateProperty(property); err != nil {
			return nil, fmt.Errorf("invalid %s schema: %w", name, err)
		}

		for _, key := range property.Keys {
			schema.destinations[key] = append(schema.destinations[key], destination{
				name:  property.Name,
				kind:  property.Kind,
				array: property.Array,
			})
		}
	}

	return schema, nil
}

func MustSchema(name string, properties ...Property) *Schema {
	schema, err := NewSchema(name, properties...)
	if err != nil {
		panic(err)
	}
	return schema
}

func validateProperty(property Property) error {
	switch {
	case !property.Kind.valid():
		return fmt.Errorf("%q property has an invalid kind: %s", property.Name, property.Kind)
	case len(property.Keys) == 0:
		return fmt.Errorf("%q property has no keys", property.Name)
	case property.Kind == Ignore:
		if property.Name != "" || property.Array {
			return errors.New("ignored keys can't have a destination")
		}
	case property.Name == "":
		return fmt.Errorf("%s property has no name", property.Kind)
	case property.Name == Merge:
		if !property.Kind.nested() || property.Array {
			return fmt.Errorf("%s property can't be merged", property.Kind)
		}
	case strings.HasSuffix(property.Name, "[]"):
		return fmt.Errorf("%q: arrays must be declared with List()", property.Name)
	}

	for _, key := range property.Keys {
		if key == "" {
			return fmt.Errorf("%q property has an empty key", property.Name)
		}
	}

	return nil
}
