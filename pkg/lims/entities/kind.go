package entities

import (
	"sort"
	"strings"
)

// Kind describes one type of LIMS entity: where its resources live, how its
// documents are rooted and which attributes can be read from them.
type Kind struct {
	Name     string
	Resource string
	Prefix   string
	Tag      string
	Extends  string

	bindings map[string]Binding
	order    []string
}

type KindDecoratorFunc func(*Kind)

// NewKind creates a kind. The member tag defaults to the lower cased name.
func NewKind(name string, decorators ...KindDecoratorFunc) *Kind {
	k := &Kind{
		Name:     name,
		Tag:      strings.ToLower(name),
		bindings: map[string]Binding{},
	}

	for _, decorate := range decorators {
		decorate(k)
	}

	return k
}

// Resource is the collection path of the kind relative to the api root,
// e.g. "samples" or "configuration/workflows".
func Resource(path string) KindDecoratorFunc {
	return func(k *Kind) {
		k.Resource = path
	}
}

// Prefix is the namespace prefix of the root element of documents of the kind.
func Prefix(prefix string) KindDecoratorFunc {
	return func(k *Kind) {
		k.Prefix = prefix
	}
}

// Tag overrides the element name used for the kind.
func Tag(tag string) KindDecoratorFunc {
	return func(k *Kind) {
		k.Tag = tag
	}
}

// Extends makes the kind inherit every attribute of another kind that it
// does not declare itself.
func Extends(kind string) KindDecoratorFunc {
	return func(k *Kind) {
		k.Extends = kind
	}
}

// Attribute binds a named attribute of the kind.
func Attribute(name string, b Binding) KindDecoratorFunc {
	return func(k *Kind) {
		k.bind(name, b)
	}
}

func (k *Kind) bind(name string, b Binding) {
	if _, exists := k.bindings[name]; !exists {
		k.order = append(k.order, name)
	}
	k.bindings[name] = b
}

// Binding returns the binding of a named attribute.
func (k *Kind) Binding(name string) (Binding, bool) {
	b, ok := k.bindings[name]
	return b, ok
}

// Attributes returns the attribute names in declaration order.
func (k *Kind) Attributes() []string {
	return append([]string{}, k.order...)
}

// RootTag is the qualified tag of the root element of a new document.
func (k *Kind) RootTag() string {
	if k.Prefix == "" {
		return k.Tag
	}
	return k.Prefix + ":" + k.Tag
}

func (k *Kind) String() string {
	return k.Name
}

// references lists the kind names that the attributes of k point to.
func (k *Kind) references() []string {
	seen := map[string]bool{}
	for _, b := range k.bindings {
		if r, ok := b.(referrer); ok {
			for _, name := range r.References() {
				seen[name] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}
