package entities

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/withrocks/genologics/pkg/lims/errors"
	"github.com/withrocks/genologics/pkg/lims/types"
	"github.com/withrocks/genologics/pkg/lims/udf"
	"github.com/withrocks/genologics/pkg/lims/xmlns"
)

// Binding maps one attribute of a kind onto its documents. The entity makes
// sure the required state is held before Read or Write is called.
type Binding interface {
	Required() types.FetchState
	Read(ctx context.Context, e *Entity, name string) (any, error)
	Write(ctx context.Context, e *Entity, name string, value any) error
}

type referrer interface {
	References() []string
}

type base struct {
	required types.FetchState
}

func (b base) Required() types.FetchState {
	return b.required
}

type readOnly struct{}

func (readOnly) Write(ctx context.Context, e *Entity, name string, value any) error {
	return errors.NewPreconditionError(fmt.Sprintf("%s is read only", name))
}

type refersTo struct {
	kind string
}

func (r refersTo) References() []string {
	return []string{r.kind}
}

func (r refersTo) resolve(e *Entity) (*Kind, error) {
	return e.session.catalog.Kind(r.kind)
}

// ExternalID identifies the entity in another system.
type ExternalID struct {
	ID  string
	URI string
}

// Dimension is one axis of a container type.
type Dimension struct {
	IsAlpha bool
	Offset  int
	Size    int
}

// Location is a well in a container.
type Location struct {
	Container *Entity
	Well      string
}

// IOEnd is one side of an input output map of a process.
type IOEnd struct {
	LimsID               string
	OutputType           string
	OutputGenerationType string
	Artifact             *Entity
	PostProcess          *Entity
	ParentProcess        *Entity
}

// IOMap pairs a process input with one of its outputs. Output is nil for
// inputs that produced nothing.
type IOMap struct {
	Input  *IOEnd
	Output *IOEnd
}

func (e *Entity) ref() string {
	if e.uri != "" {
		return e.uri
	}
	return e.String()
}

// ensurePath returns the element at path below root, creating missing elements.
func ensurePath(root *etree.Element, path string) *etree.Element {
	cur := root
	if path == "" {
		return cur
	}

	for _, tag := range strings.Split(path, "/") {
		next := xmlns.Child(cur, tag)
		if next == nil {
			next = xmlns.Create(cur, tag)
		}
		cur = next
	}

	return cur
}

func stringOf(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

type textBinding struct {
	base
	path string
}

// Text binds the text of the element at path. An empty path is the root.
func Text(path string, required types.FetchState) Binding {
	return &textBinding{base: base{required}, path: path}
}

func (b *textBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	el := xmlns.Find(e.Root(), b.path)
	if el == nil {
		return nil, nil
	}
	return el.Text(), nil
}

func (b *textBinding) Write(ctx context.Context, e *Entity, name string, value any) error {
	s, ok := stringOf(value)
	if !ok {
		return errors.NewTypeMismatchError(e.ref(), name, "text", "string", value)
	}
	ensurePath(e.Root(), b.path).SetText(s)
	return nil
}

type intBinding struct {
	base
	path string
}

// Int binds the text of the element at path as an integer.
func Int(path string, required types.FetchState) Binding {
	return &intBinding{base: base{required}, path: path}
}

func (b *intBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	el := xmlns.Find(e.Root(), b.path)
	if el == nil || strings.TrimSpace(el.Text()) == "" {
		return nil, nil
	}

	i, err := strconv.Atoi(strings.TrimSpace(el.Text()))
	if err != nil {
		return nil, errors.NewMalformedValueError(e.ref(), name, el.Text(), err)
	}

	return i, nil
}

func (b *intBinding) Write(ctx context.Context, e *Entity, name string, value any) error {
	i, ok := value.(int)
	if !ok {
		return errors.NewTypeMismatchError(e.ref(), name, "integer", "int", value)
	}
	ensurePath(e.Root(), b.path).SetText(strconv.Itoa(i))
	return nil
}

type boolBinding struct {
	base
	path string
}

// Bool binds the text of the element at path as a boolean.
func Bool(path string, required types.FetchState) Binding {
	return &boolBinding{base: base{required}, path: path}
}

func (b *boolBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	el := xmlns.Find(e.Root(), b.path)
	if el == nil {
		return nil, nil
	}
	return strings.EqualFold(strings.TrimSpace(el.Text()), "true"), nil
}

func (b *boolBinding) Write(ctx context.Context, e *Entity, name string, value any) error {
	v, ok := value.(bool)
	if !ok {
		return errors.NewTypeMismatchError(e.ref(), name, "boolean", "bool", value)
	}
	ensurePath(e.Root(), b.path).SetText(strconv.FormatBool(v))
	return nil
}

type dateBinding struct {
	base
	path string
}

// DateText binds the text of the element at path as a calendar date.
func DateText(path string, required types.FetchState) Binding {
	return &dateBinding{base: base{required}, path: path}
}

func (b *dateBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	el := xmlns.Find(e.Root(), b.path)
	if el == nil || strings.TrimSpace(el.Text()) == "" {
		return nil, nil
	}

	d, err := types.ParseDate(el.Text())
	if err != nil {
		return nil, errors.NewMalformedValueError(e.ref(), name, el.Text(), err)
	}

	return d, nil
}

func (b *dateBinding) Write(ctx context.Context, e *Entity, name string, value any) error {
	var d types.Date

	switch v := value.(type) {
	case types.Date:
		d = v
	case time.Time:
		d = types.DateOf(v)
	default:
		return errors.NewTypeMismatchError(e.ref(), name, "date", "types.Date", value)
	}

	ensurePath(e.Root(), b.path).SetText(d.String())
	return nil
}

type attrBinding struct {
	base
	attr string
}

// Attr binds a required attribute of the root element.
func Attr(attr string, required types.FetchState) Binding {
	return &attrBinding{base: base{required}, attr: attr}
}

func (b *attrBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	a := e.Root().SelectAttr(b.attr)
	if a == nil {
		return nil, errors.NewMissingFieldError(e.ref(), b.attr)
	}
	return a.Value, nil
}

func (b *attrBinding) Write(ctx context.Context, e *Entity, name string, value any) error {
	s, ok := stringOf(value)
	if !ok {
		return errors.NewTypeMismatchError(e.ref(), name, "attribute", "string", value)
	}
	e.Root().CreateAttr(b.attr, s)
	return nil
}

type intAttrBinding struct {
	base
	attr string
}

// IntAttr binds a required integer attribute of the root element.
func IntAttr(attr string, required types.FetchState) Binding {
	return &intAttrBinding{base: base{required}, attr: attr}
}

func (b *intAttrBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	a := e.Root().SelectAttr(b.attr)
	if a == nil {
		return nil, errors.NewMissingFieldError(e.ref(), b.attr)
	}

	i, err := strconv.Atoi(strings.TrimSpace(a.Value))
	if err != nil {
		return nil, errors.NewMalformedValueError(e.ref(), name, a.Value, err)
	}

	return i, nil
}

func (b *intAttrBinding) Write(ctx context.Context, e *Entity, name string, value any) error {
	i, ok := value.(int)
	if !ok {
		return errors.NewTypeMismatchError(e.ref(), name, "attribute", "int", value)
	}
	e.Root().CreateAttr(b.attr, strconv.Itoa(i))
	return nil
}

type stringListBinding struct {
	base
	readOnly
	tag  string
	path string
}

// StringList binds the texts of every element with tag below path.
func StringList(tag, path string, required types.FetchState) Binding {
	return &stringListBinding{base: base{required}, tag: tag, path: path}
}

func (b *stringListBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	result := []string{}
	for _, el := range xmlns.Children(xmlns.Find(e.Root(), b.path), b.tag) {
		result = append(result, el.Text())
	}
	return result, nil
}

type stringDictBinding struct {
	base
	readOnly
	path string
}

// StringDict binds the children of the element at path as tag to text pairs.
func StringDict(path string, required types.FetchState) Binding {
	return &stringDictBinding{base: base{required}, path: path}
}

func (b *stringDictBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	result := map[string]string{}

	el := xmlns.Find(e.Root(), b.path)
	if el == nil {
		return result, nil
	}

	for _, c := range el.ChildElements() {
		result[c.Tag] = c.Text()
	}

	return result, nil
}

type attrListBinding struct {
	base
	readOnly
	tag  string
	path string
}

// AttrList binds the attributes of every element with tag below path.
func AttrList(tag, path string, required types.FetchState) Binding {
	return &attrListBinding{base: base{required}, tag: tag, path: path}
}

func (b *attrListBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	result := []map[string]string{}
	for _, el := range xmlns.Children(xmlns.Find(e.Root(), b.path), b.tag) {
		attrs := map[string]string{}
		for _, a := range el.Attr {
			attrs[a.FullKey()] = a.Value
		}
		result = append(result, attrs)
	}
	return result, nil
}

type refBinding struct {
	base
	refersTo
	path string
}

// Ref binds the uri attribute of the element at path to the entity it names.
func Ref(path, kind string, required types.FetchState) Binding {
	return &refBinding{base: base{required}, refersTo: refersTo{kind}, path: path}
}

func (b *refBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	el := xmlns.Find(e.Root(), b.path)
	if el == nil {
		return nil, nil
	}

	uri := el.SelectAttrValue("uri", "")
	if uri == "" {
		return nil, errors.NewMissingFieldError(e.ref(), b.path+"@uri")
	}

	k, err := b.resolve(e)
	if err != nil {
		return nil, err
	}

	return e.session.lookup(k, uri, nil)
}

func (b *refBinding) Write(ctx context.Context, e *Entity, name string, value any) error {
	if value == nil {
		if el := xmlns.Find(e.Root(), b.path); el != nil {
			el.Parent().RemoveChild(el)
		}
		return nil
	}

	target, ok := value.(*Entity)
	if !ok {
		return errors.NewTypeMismatchError(e.ref(), name, "reference", "*entities.Entity", value)
	}

	if target.uri == "" {
		return errors.NewDetachedError("reference", target.kind.Name)
	}

	ensurePath(e.Root(), b.path).CreateAttr("uri", target.uri)
	return nil
}

type refListBinding struct {
	base
	readOnly
	refersTo
	tag  string
	path string
}

// RefList binds every element with tag below path to the entity its uri names.
func RefList(tag, kind, path string, required types.FetchState) Binding {
	return &refListBinding{base: base{required}, refersTo: refersTo{kind}, tag: tag, path: path}
}

func (b *refListBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	k, err := b.resolve(e)
	if err != nil {
		return nil, err
	}

	result := []*Entity{}
	for _, el := range xmlns.Children(xmlns.Find(e.Root(), b.path), b.tag) {
		uri := el.SelectAttrValue("uri", "")
		if uri == "" {
			return nil, errors.NewMissingFieldError(e.ref(), b.tag+"@uri")
		}

		child, err := e.session.lookup(k, uri, nil)
		if err != nil {
			return nil, err
		}
		result = append(result, child)
	}

	return result, nil
}

type nestedRefListBinding struct {
	base
	readOnly
	refersTo
	tag      string
	path     string
	bagKeys  []string
	expanded bool
}

type NestedOption func(*nestedRefListBinding)

// WithBag seeds each listed entity with a bag of the named attributes of
// its listing element instead of handing it the element as its document.
func WithBag(keys ...string) NestedOption {
	return func(b *nestedRefListBinding) {
		b.bagKeys = keys
	}
}

// Expanded marks the listing elements as complete documents of their entities.
func Expanded() NestedOption {
	return func(b *nestedRefListBinding) {
		b.expanded = true
	}
}

// NestedRefList binds the elements with tag below path to entities. By
// default each element becomes the overview document of its entity.
func NestedRefList(tag, kind, path string, required types.FetchState, options ...NestedOption) Binding {
	b := &nestedRefListBinding{base: base{required}, refersTo: refersTo{kind}, tag: tag, path: path}
	for _, option := range options {
		option(b)
	}
	return b
}

func (b *nestedRefListBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	k, err := b.resolve(e)
	if err != nil {
		return nil, err
	}

	result := []*Entity{}

	for _, el := range xmlns.Children(xmlns.Find(e.Root(), b.path), b.tag) {
		var child *Entity

		switch {
		case len(b.bagKeys) > 0:
			uri := el.SelectAttrValue("uri", "")
			if uri == "" {
				return nil, errors.NewMissingFieldError(e.ref(), b.tag+"@uri")
			}
			child, err = e.session.lookup(k, uri, harvest(el, b.bagKeys))
		case b.expanded:
			child, err = e.session.hydrate(k, el, types.Details, nil)
		default:
			child, err = e.session.hydrate(k, el, types.Overview, nil)
		}

		if err != nil {
			return nil, err
		}

		result = append(result, child)
	}

	return result, nil
}

// harvest picks the named attributes, or child element texts, of a listing element.
func harvest(el *etree.Element, keys []string) *types.Bag {
	values := map[string]any{}

	for _, key := range keys {
		if a := el.SelectAttr(key); a != nil {
			values[key] = a.Value
		} else if c := xmlns.Child(el, key); c != nil {
			values[key] = c.Text()
		}
	}

	return types.NewBag(values)
}

type udfBinding struct {
	base
	path string
	udt  bool
}

// UDF binds the user defined fields found directly below path.
func UDF(path string, required types.FetchState) Binding {
	return &udfBinding{base: base{required}, path: path}
}

// UDT binds the fields of the user defined type found below path.
func UDT(path string, required types.FetchState) Binding {
	return &udfBinding{base: base{required}, path: path, udt: true}
}

func (b *udfBinding) options(e *Entity) []udf.Option {
	options := []udf.Option{udf.Owner(e.ref())}
	if b.udt {
		options = append(options, udf.WithinType())
	}
	return options
}

func (b *udfBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	return udf.New(xmlns.Find(e.Root(), b.path), b.options(e)...)
}

func (b *udfBinding) Write(ctx context.Context, e *Entity, name string, value any) error {
	values, ok := value.(map[string]any)
	if !ok {
		return errors.NewTypeMismatchError(e.ref(), name, "user fields", "map[string]any", value)
	}

	d, err := udf.New(ensurePath(e.Root(), b.path), b.options(e)...)
	if err != nil {
		return err
	}

	return d.Assign(values)
}

type externalIDsBinding struct {
	base
	readOnly
}

// ExternalIDs binds the external identifiers of an entity.
func ExternalIDs(required types.FetchState) Binding {
	return &externalIDsBinding{base: base{required}}
}

func (b *externalIDsBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	result := []ExternalID{}
	for _, el := range xmlns.Children(e.Root(), "ri:externalid") {
		result = append(result, ExternalID{
			ID:  el.SelectAttrValue("id", ""),
			URI: el.SelectAttrValue("uri", ""),
		})
	}
	return result, nil
}

type placementsBinding struct {
	base
	readOnly
	refersTo
	tag string
}

// Placements binds the elements with tag to a map from well to the entity placed there.
func Placements(tag, kind string, required types.FetchState) Binding {
	return &placementsBinding{base: base{required}, refersTo: refersTo{kind}, tag: tag}
}

func (b *placementsBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	k, err := b.resolve(e)
	if err != nil {
		return nil, err
	}

	result := map[string]*Entity{}
	for _, el := range xmlns.Children(e.Root(), b.tag) {
		well := xmlns.Child(el, "value")
		if well == nil {
			return nil, errors.NewMissingFieldError(e.ref(), b.tag+"/value")
		}

		placed, err := e.session.lookup(k, el.SelectAttrValue("uri", ""), nil)
		if err != nil {
			return nil, err
		}

		result[well.Text()] = placed
	}

	return result, nil
}

type dimensionBinding struct {
	base
	readOnly
	path string
}

// DimensionOf binds an axis description of a container type.
func DimensionOf(path string, required types.FetchState) Binding {
	return &dimensionBinding{base: base{required}, path: path}
}

func (b *dimensionBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	el := xmlns.Find(e.Root(), b.path)
	if el == nil {
		return nil, nil
	}

	d := Dimension{}

	alpha := xmlns.Child(el, "is-alpha")
	if alpha == nil {
		return nil, errors.NewMissingFieldError(e.ref(), b.path+"/is-alpha")
	}
	d.IsAlpha = strings.EqualFold(strings.TrimSpace(alpha.Text()), "true")

	for field, target := range map[string]*int{"offset": &d.Offset, "size": &d.Size} {
		c := xmlns.Child(el, field)
		if c == nil {
			return nil, errors.NewMissingFieldError(e.ref(), b.path+"/"+field)
		}

		i, err := strconv.Atoi(strings.TrimSpace(c.Text()))
		if err != nil {
			return nil, errors.NewMalformedValueError(e.ref(), name, c.Text(), err)
		}
		*target = i
	}

	return d, nil
}

type locationBinding struct {
	base
	refersTo
	path string
}

// LocationOf binds a container and well pair, such as the location of an artifact.
func LocationOf(path, containerKind string, required types.FetchState) Binding {
	return &locationBinding{base: base{required}, refersTo: refersTo{containerKind}, path: path}
}

func (b *locationBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	return readLocation(e, xmlns.Find(e.Root(), b.path), b.kind)
}

func readLocation(e *Entity, el *etree.Element, containerKind string) (any, error) {
	if el == nil {
		return nil, nil
	}

	container := xmlns.Child(el, "container")
	if container == nil {
		return nil, nil
	}

	k, err := e.session.catalog.Kind(containerKind)
	if err != nil {
		return nil, err
	}

	c, err := e.session.lookup(k, container.SelectAttrValue("uri", ""), nil)
	if err != nil {
		return nil, err
	}

	loc := Location{Container: c}
	if well := xmlns.Child(el, "value"); well != nil {
		loc.Well = well.Text()
	}

	return loc, nil
}

func (b *locationBinding) Write(ctx context.Context, e *Entity, name string, value any) error {
	loc, ok := value.(Location)
	if !ok {
		return errors.NewTypeMismatchError(e.ref(), name, "location", "entities.Location", value)
	}

	return writeLocation(ensurePath(e.Root(), b.path), loc)
}

func writeLocation(el *etree.Element, loc Location) error {
	if loc.Container == nil {
		return errors.NewPreconditionError("a location needs a container")
	}

	if loc.Container.uri == "" {
		return errors.NewDetachedError("place in container", loc.Container.kind.Name)
	}

	container := ensurePath(el, "container")
	container.CreateAttr("uri", loc.Container.uri)
	container.CreateAttr("limsid", loc.Container.ID())
	ensurePath(el, "value").SetText(loc.Well)

	return nil
}

type reagentLabelsBinding struct {
	base
}

// ReagentLabels binds the names of the reagent labels of an artifact.
func ReagentLabels(required types.FetchState) Binding {
	return &reagentLabelsBinding{base: base{required}}
}

func (b *reagentLabelsBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	result := []string{}
	for _, el := range xmlns.Children(e.Root(), "reagent-label") {
		if a := el.SelectAttr("name"); a != nil {
			result = append(result, a.Value)
		}
	}
	return result, nil
}

func (b *reagentLabelsBinding) Write(ctx context.Context, e *Entity, name string, value any) error {
	labels, ok := value.([]string)
	if !ok {
		return errors.NewTypeMismatchError(e.ref(), name, "reagent labels", "[]string", value)
	}

	root := e.Root()
	for _, el := range xmlns.Children(root, "reagent-label") {
		root.RemoveChild(el)
	}

	for _, label := range labels {
		root.CreateElement("reagent-label").CreateAttr("name", label)
	}

	return nil
}

type ioMapsBinding struct {
	base
	readOnly
	path string
}

// InputOutputMaps binds the input output maps of a process or step.
func InputOutputMaps(path string, required types.FetchState) Binding {
	return &ioMapsBinding{base: base{required}, path: path}
}

func (b *ioMapsBinding) References() []string {
	return []string{"Artifact", "Process"}
}

func (b *ioMapsBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	result := []IOMap{}

	for _, el := range xmlns.Children(xmlns.Find(e.Root(), b.path), "input-output-map") {
		input, err := ioEnd(e, xmlns.Child(el, "input"))
		if err != nil {
			return nil, err
		}

		output, err := ioEnd(e, xmlns.Child(el, "output"))
		if err != nil {
			return nil, err
		}

		result = append(result, IOMap{Input: input, Output: output})
	}

	return result, nil
}

func ioEnd(e *Entity, el *etree.Element) (*IOEnd, error) {
	if el == nil {
		return nil, nil
	}

	end := &IOEnd{
		LimsID:               el.SelectAttrValue("limsid", ""),
		OutputType:           el.SelectAttrValue("output-type", ""),
		OutputGenerationType: el.SelectAttrValue("output-generation-type", ""),
	}

	artifact, err := e.session.catalog.Kind("Artifact")
	if err != nil {
		return nil, err
	}

	if uri := el.SelectAttrValue("uri", ""); uri != "" {
		if end.Artifact, err = e.session.lookup(artifact, uri, nil); err != nil {
			return nil, err
		}
	}

	if uri := el.SelectAttrValue("post-process-uri", ""); uri != "" {
		if end.PostProcess, err = e.session.lookup(artifact, uri, nil); err != nil {
			return nil, err
		}
	}

	if pp := xmlns.Child(el, "parent-process"); pp != nil {
		process, err := e.session.catalog.Kind("Process")
		if err != nil {
			return nil, err
		}
		if end.ParentProcess, err = e.session.lookup(process, pp.SelectAttrValue("uri", ""), nil); err != nil {
			return nil, err
		}
	}

	return end, nil
}

type bagBinding struct {
	base
	readOnly
}

// FromBag binds a value that only listings of other entities carry, such
// as the status of a workflow stage. It never causes a fetch.
func FromBag() Binding {
	return &bagBinding{base: base{types.None}}
}

func (b *bagBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	v, _ := e.bag.Get(name)
	return v, nil
}

type computedBinding struct {
	base
	readOnly
	read func(ctx context.Context, e *Entity) (any, error)
}

// Computed binds a value derived from the document by a function.
func Computed(required types.FetchState, read func(ctx context.Context, e *Entity) (any, error)) Binding {
	return &computedBinding{base: base{required}, read: read}
}

func (b *computedBinding) Read(ctx context.Context, e *Entity, name string) (any, error) {
	return b.read(ctx, e)
}
