package udf

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/withrocks/genologics/pkg/lims/errors"
	"github.com/withrocks/genologics/pkg/lims/types"
	"github.com/withrocks/genologics/pkg/lims/xmlns"
)

const (
	FieldTag string = "udf:field"
	TypeTag  string = "udf:type"
)

// Declared type tags, as the LIMS writes them in the type attribute.
const (
	String  string = "String"
	Str     string = "Str"
	Text    string = "Text"
	Numeric string = "Numeric"
	Boolean string = "Boolean"
	Date    string = "Date"
	URI     string = "URI"
)

// Dictionary is an ordered, typed view over the user defined fields found
// below one element of an entity document. Values are string, int, float64,
// bool or types.Date. Writes go straight to the document.
type Dictionary struct {
	region *etree.Element
	owner  string

	udtMode bool
	udtName string

	elems  []*etree.Element
	names  []string
	lookup map[string]any
}

type Option func(*Dictionary)

// WithinType confines the dictionary to the fields grouped under the
// user defined type element of the region.
func WithinType() Option {
	return func(d *Dictionary) {
		d.udtMode = true
	}
}

// Owner names the entity the fields belong to, for error messages.
func Owner(uri string) Option {
	return func(d *Dictionary) {
		d.owner = uri
	}
}

// New scans region for user defined fields. A nil region gives an empty
// dictionary that rejects writes.
func New(region *etree.Element, options ...Option) (*Dictionary, error) {
	d := &Dictionary{region: region}

	for _, option := range options {
		option(d)
	}

	if err := d.rescan(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Dictionary) typeElement() *etree.Element {
	return xmlns.Child(d.region, TypeTag)
}

// container is the element new fields are appended to.
func (d *Dictionary) container() *etree.Element {
	if d.udtMode {
		return d.typeElement()
	}
	return d.region
}

func (d *Dictionary) rescan() error {
	d.elems = nil
	d.names = nil
	d.lookup = map[string]any{}

	if d.udtMode {
		t := d.typeElement()
		if t != nil {
			d.udtName = t.SelectAttrValue("name", "")
		}
	}

	for _, el := range xmlns.Children(d.container(), FieldTag) {
		name := el.SelectAttrValue("name", "")
		value, err := decode(el.SelectAttrValue("type", ""), el.Text())
		if err != nil {
			return errors.NewMalformedValueError(d.owner, name, el.Text(), err)
		}

		if _, seen := d.lookup[name]; !seen {
			d.names = append(d.names, name)
		}

		d.elems = append(d.elems, el)
		d.lookup[name] = value
	}

	return nil
}

// Get returns the decoded value of a field. A field with empty text is
// present with a nil value.
func (d *Dictionary) Get(name string) (any, bool) {
	v, ok := d.lookup[name]
	return v, ok
}

// GetOr returns the value of a field, or def if there is no such field.
func (d *Dictionary) GetOr(name string, def any) any {
	if v, ok := d.lookup[name]; ok {
		return v
	}
	return def
}

func (d *Dictionary) Contains(name string) bool {
	_, ok := d.lookup[name]
	return ok
}

// Names returns the field names in document order.
func (d *Dictionary) Names() []string {
	return append([]string{}, d.names...)
}

func (d *Dictionary) Len() int {
	return len(d.names)
}

// Type returns the declared type tag of a field.
func (d *Dictionary) Type(name string) (string, bool) {
	if el := d.element(name); el != nil {
		return el.SelectAttrValue("type", ""), true
	}
	return "", false
}

type Item struct {
	Name  string
	Value any
}

// Items returns name and value pairs in document order.
func (d *Dictionary) Items() []Item {
	items := make([]Item, 0, len(d.names))
	for _, n := range d.names {
		items = append(items, Item{Name: n, Value: d.lookup[n]})
	}
	return items
}

// Map returns a copy of the fields as a plain map.
func (d *Dictionary) Map() map[string]any {
	m := make(map[string]any, len(d.lookup))
	for k, v := range d.lookup {
		m[k] = v
	}
	return m
}

func (d *Dictionary) element(name string) *etree.Element {
	for _, el := range d.elems {
		if el.SelectAttrValue("name", "") == name {
			return el
		}
	}
	return nil
}

// Set writes a value to a field. Existing fields only accept values that
// agree with their declared type. New fields get a type inferred from the
// value. A nil value clears the text of an existing field.
func (d *Dictionary) Set(name string, value any) error {
	if el := d.element(name); el != nil {
		tag := el.SelectAttrValue("type", "")

		text := ""
		if value != nil {
			var err error
			text, err = d.encodeAs(name, tag, value)
			if err != nil {
				return err
			}
		}

		el.SetText(text)

		v, err := decode(tag, text)
		if err != nil {
			return errors.NewMalformedValueError(d.owner, name, text, err)
		}
		d.lookup[name] = v

		return nil
	}

	parent := d.container()
	if parent == nil {
		if d.udtMode {
			return errors.NewPreconditionError(fmt.Sprintf("%s: cannot add %q, no user defined type present", d.owner, name))
		}
		return errors.NewPreconditionError(fmt.Sprintf("%s: cannot add %q, no user field region present", d.owner, name))
	}

	tag, text, err := infer(name, value)
	if err != nil {
		return err
	}

	el := xmlns.Create(parent, FieldTag)
	el.CreateAttr("type", tag)
	el.CreateAttr("name", name)
	el.SetText(text)

	return d.rescan()
}

// Assign replaces every field with the given values, added in name order.
func (d *Dictionary) Assign(values map[string]any) error {
	d.Clear()

	names := make([]string, 0, len(values))
	for n := range values {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		if err := d.Set(n, values[n]); err != nil {
			return err
		}
	}

	return nil
}

func (d *Dictionary) Delete(name string) error {
	el := d.element(name)
	if el == nil {
		return errors.NewUnknownFieldError(d.owner, name)
	}

	el.Parent().RemoveChild(el)

	return d.rescan()
}

// Clear removes every field element of the dictionary.
func (d *Dictionary) Clear() {
	for _, el := range d.elems {
		if p := el.Parent(); p != nil {
			p.RemoveChild(el)
		}
	}

	d.elems = nil
	d.names = nil
	d.lookup = map[string]any{}
}

// UDT returns the name of the user defined type, or an empty string.
func (d *Dictionary) UDT() string {
	return d.udtName
}

// SetUDT renames the user defined type, creating its element if needed.
func (d *Dictionary) SetUDT(name string) error {
	if !d.udtMode {
		return errors.NewPreconditionError("cannot set name for a UDF dictionary")
	}

	if d.region == nil {
		return errors.NewPreconditionError(fmt.Sprintf("%s: no user field region present", d.owner))
	}

	t := d.typeElement()
	if t == nil {
		t = xmlns.Create(d.region, TypeTag)
	}

	t.CreateAttr("name", name)
	d.udtName = name

	return nil
}

func decode(tag, text string) (any, error) {
	if text == "" {
		return nil, nil
	}

	switch strings.ToLower(tag) {
	case "numeric":
		s := strings.TrimSpace(text)
		if i, err := strconv.Atoi(s); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	case "boolean":
		return strings.EqualFold(strings.TrimSpace(text), "true"), nil
	case "date":
		dt, err := types.ParseDate(text)
		if err != nil {
			return nil, err
		}
		return dt, nil
	}

	return text, nil
}

func (d *Dictionary) encodeAs(name, tag string, value any) (string, error) {
	switch strings.ToLower(tag) {
	case "string", "str", "text", "uri":
		s, ok := value.(string)
		if !ok {
			return "", errors.NewTypeMismatchError(d.owner, name, tag, "string", value)
		}
		return s, nil
	case "numeric":
		s, ok := encodeNumber(value)
		if !ok {
			return "", errors.NewTypeMismatchError(d.owner, name, tag, "int or float64", value)
		}
		return s, nil
	case "boolean":
		b, ok := value.(bool)
		if !ok {
			return "", errors.NewTypeMismatchError(d.owner, name, tag, "bool", value)
		}
		return strconv.FormatBool(b), nil
	case "date":
		s, ok := encodeDate(value)
		if !ok {
			return "", errors.NewTypeMismatchError(d.owner, name, tag, "types.Date", value)
		}
		return s, nil
	}

	return "", errors.NewPreconditionError(fmt.Sprintf("%s: user field %q has unhandled type %q", d.owner, name, tag))
}

func infer(name string, value any) (tag, text string, err error) {
	switch v := value.(type) {
	case string:
		if strings.Contains(v, "\n") {
			return Text, v, nil
		}
		return String, v, nil
	case bool:
		return Boolean, strconv.FormatBool(v), nil
	}

	if s, ok := encodeNumber(value); ok {
		return Numeric, s, nil
	}

	if s, ok := encodeDate(value); ok {
		return Date, s, nil
	}

	return "", "", errors.NewUnsupportedTypeError(name, value)
}

func encodeNumber(value any) (string, bool) {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v), true
	case int8:
		return strconv.FormatInt(int64(v), 10), true
	case int16:
		return strconv.FormatInt(int64(v), 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint8:
		return strconv.FormatUint(uint64(v), 10), true
	case uint16:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float32:
		return formatFloat(float64(v), 32), true
	case float64:
		return formatFloat(v, 64), true
	}
	return "", false
}

// formatFloat keeps a decimal point on whole numbers so they decode as floats again.
func formatFloat(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'f', -1, bits)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func encodeDate(value any) (string, bool) {
	switch v := value.(type) {
	case types.Date:
		return v.String(), true
	case time.Time:
		return types.DateOf(v).String(), true
	}
	return "", false
}
