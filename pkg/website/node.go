package website

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
)

// Kind identifies which variant a Node holds.
type Kind int

// Node kinds.
const (
	KindOther Kind = iota // numbers, booleans, null
	KindString
	KindMapping
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "other"
	}
}

// Field is one entry of a mapping node.
type Field struct {
	Key   string
	Value Node
}

// Node is a scraped record of unknown shape: a mapping, a sequence, a string
// leaf, or some other scalar leaf. Mapping entries keep the order they were
// built in; that order is the traversal order used by the extractor.
//
// The zero Node is an Other leaf.
type Node struct {
	str    string
	fields []Field
	items  []Node
	kind   Kind
}

// String returns a string leaf.
func String(s string) Node { return Node{kind: KindString, str: s} }

// Scalar returns a leaf that carries no text (number, boolean or null).
func Scalar() Node { return Node{kind: KindOther} }

// Mapping returns a mapping node with entries in the given order.
func Mapping(fields ...Field) Node { return Node{kind: KindMapping, fields: fields} }

// Sequence returns a sequence node.
func Sequence(items ...Node) Node { return Node{kind: KindSequence, items: items} }

// F is shorthand for building a mapping entry.
func F(key string, value Node) Field { return Field{Key: key, Value: value} }

// Kind reports the variant held by n.
func (n Node) Kind() Kind { return n.kind }

// Text returns the string value of a string leaf, or "" for any other kind.
func (n Node) Text() string { return n.str }

// Fields returns the entries of a mapping node in order.
func (n Node) Fields() []Field { return n.fields }

// Items returns the elements of a sequence node.
func (n Node) Items() []Node { return n.items }

// ErrInvalidJSON is returned by FromJSON for input that is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// FromJSON decodes a JSON document into a Node. Object keys keep the order in
// which they appear in the document.
func FromJSON(data []byte) (Node, error) {
	if !gjson.ValidBytes(data) {
		return Node{}, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

func fromResult(r gjson.Result) Node {
	switch {
	case r.IsObject():
		var fields []Field
		r.ForEach(func(key, value gjson.Result) bool {
			fields = append(fields, Field{Key: key.String(), Value: fromResult(value)})
			return true
		})
		return Node{kind: KindMapping, fields: fields}
	case r.IsArray():
		var items []Node
		r.ForEach(func(_, value gjson.Result) bool {
			items = append(items, fromResult(value))
			return true
		})
		return Node{kind: KindSequence, items: items}
	case r.Type == gjson.String:
		return String(r.Str)
	default:
		return Scalar()
	}
}

// FromValue converts decoded Go values into a Node. Maps are enumerated in
// ascending key order because Go maps carry no order of their own.
func FromValue(v any) Node {
	switch t := v.(type) {
	case Node:
		return t
	case string:
		return String(t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, Field{Key: k, Value: FromValue(t[k])})
		}
		return Node{kind: KindMapping, fields: fields}
	case map[string]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, Field{Key: k, Value: String(t[k])})
		}
		return Node{kind: KindMapping, fields: fields}
	case []any:
		items := make([]Node, 0, len(t))
		for _, e := range t {
			items = append(items, FromValue(e))
		}
		return Node{kind: KindSequence, items: items}
	case []map[string]any:
		items := make([]Node, 0, len(t))
		for _, e := range t {
			items = append(items, FromValue(e))
		}
		return Node{kind: KindSequence, items: items}
	case []string:
		items := make([]Node, 0, len(t))
		for _, e := range t {
			items = append(items, String(e))
		}
		return Node{kind: KindSequence, items: items}
	default:
		return Scalar()
	}
}

// GoString renders a compact debug form, used in test failure output.
func (n Node) GoString() string {
	switch n.kind {
	case KindString:
		return strconv.Quote(n.str)
	case KindMapping:
		s := "{"
		for i, f := range n.fields {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("%s: %#v", f.Key, f.Value)
		}
		return s + "}"
	case KindSequence:
		s := "["
		for i, e := range n.items {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("%#v", e)
		}
		return s + "]"
	default:
		return "_"
	}
}
