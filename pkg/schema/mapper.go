package schema

import (
	"context"

	logging "github.com/KonishchevDmitry/go-easy-logging"

	"github.com/KonishchevDmitry/feedsync/pkg/xmltree"
)

// Bag holds canonical property values of a mapped node. Array properties are stored as []any, nested nodes as Bag.
type Bag map[string]any

type mapper struct {
	ctx context.Context
}

// Map converts child elements and attributes of the node to canonical properties according to the schema. Scalar
// properties are last-writer-wins in document order, array properties accumulate every value.
func Map(ctx context.Context, node *xmltree.Node, schema *Schema) Bag {
	m := mapper{ctx: ctx}
	return m.mapNode(node, schema)
}

func (m *mapper) mapNode(node *xmltree.Node, schema *Schema) Bag {
	bag := make(Bag)

	for _, child := range node.Elements() {
		m.mapChild(bag, node, child, schema)
	}
	for _, attr := range node.Attrs {
		m.mapChild(bag, node, attr, schema)
	}

	return bag
}

func (m *mapper) mapChild(bag Bag, parent *xmltree.Node, child *xmltree.Node, schema *Schema) {
	prefix := ResolveNamespace(child.Name.Space)
	if prefix.Ignored {
		return
	} else if prefix.Unknown {
		logging.L(m.ctx).Debugf("Unknown namespace of %s in %s %s.", child, schema.name, parent)
		return
	}

	key := prefix.Key(child.Name.Local)

	destinations, ok := schema.destinations[key]
	if !ok {
		logging.L(m.ctx).Debugf("Unknown %s key in %s %s.", key, schema.name, parent)
		return
	}

	for _, destination := range destinations {
		if destination.kind == Ignore {
			continue
		}

		value, ok := handlers[destination.kind](m, child)
		if !ok {
			continue
		}

		switch {
		case destination.name == Merge:
			if nested, ok := value.(Bag); ok {
				merge(bag, nested)
			}
		case destination.array:
			values, _ := bag[destination.name].([]any)
			bag[destination.name] = append(values, value)
		default:
			bag[destination.name] = value
		}
	}
}

// Merges the nested bag into the parent without dropping keys set on the parent: scalars are overwritten, arrays are
// concatenated.
func merge(bag Bag, nested Bag) {
	for key, value := range nested {
		if values, ok := value.([]any); ok {
			if existing, ok := bag[key].([]any); ok {
				bag[key] = append(existing, values...)
				continue
			}
		}
		bag[key] = value
	}
}
