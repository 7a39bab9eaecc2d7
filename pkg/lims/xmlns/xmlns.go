package xmlns

import (
	"strings"

	"github.com/beevik/etree"
)

var namespaces = map[string]string{
	"art":         "http://genologics.com/ri/artifact",
	"artgr":       "http://genologics.com/ri/artifactgroup",
	"cnf":         "http://genologics.com/ri/configuration",
	"con":         "http://genologics.com/ri/container",
	"ctp":         "http://genologics.com/ri/containertype",
	"exc":         "http://genologics.com/ri/exception",
	"file":        "http://genologics.com/ri/file",
	"inst":        "http://genologics.com/ri/instrument",
	"kit":         "http://genologics.com/ri/reagentkit",
	"lab":         "http://genologics.com/ri/lab",
	"lot":         "http://genologics.com/ri/reagentlot",
	"prc":         "http://genologics.com/ri/process",
	"prj":         "http://genologics.com/ri/project",
	"prop":        "http://genologics.com/ri/property",
	"protcnf":     "http://genologics.com/ri/protocolconfiguration",
	"protstepcnf": "http://genologics.com/ri/stepconfiguration",
	"prx":         "http://genologics.com/ri/processexecution",
	"ptm":         "http://genologics.com/ri/processtemplate",
	"ptp":         "http://genologics.com/ri/processtype",
	"que":         "http://genologics.com/ri/queue",
	"res":         "http://genologics.com/ri/researcher",
	"ri":          "http://genologics.com/ri",
	"rt":          "http://genologics.com/ri/routing",
	"rtp":         "http://genologics.com/ri/reagenttype",
	"smp":         "http://genologics.com/ri/sample",
	"stg":         "http://genologics.com/ri/stage",
	"stp":         "http://genologics.com/ri/step",
	"udf":         "http://genologics.com/ri/userdefined",
	"ver":         "http://genologics.com/ri/version",
	"wkfcnf":      "http://genologics.com/ri/workflowconfiguration",
}

// URI returns the namespace bound to a well known LIMS prefix.
func URI(prefix string) string {
	return namespaces[prefix]
}

func split(qualified string) (prefix, local string) {
	if i := strings.IndexByte(qualified, ':'); i >= 0 {
		return qualified[:i], qualified[i+1:]
	}
	return "", qualified
}

// Match reports whether el has the given tag. A prefixed tag matches on the
// namespace it denotes, whatever prefix the document used for it. An
// unprefixed tag only matches unprefixed elements.
func Match(el *etree.Element, qualified string) bool {
	prefix, local := split(qualified)
	if el.Tag != local {
		return false
	}

	if prefix == "" {
		return el.Space == ""
	}

	if el.Space == prefix {
		return true
	}

	ns := URI(prefix)
	return ns != "" && el.NamespaceURI() == ns
}

// Children returns the child elements of el matching tag, in document order.
func Children(el *etree.Element, tag string) []*etree.Element {
	if el == nil {
		return nil
	}

	result := []*etree.Element{}
	for _, c := range el.ChildElements() {
		if Match(c, tag) {
			result = append(result, c)
		}
	}
	return result
}

// Child returns the first child element of el matching tag, or nil.
func Child(el *etree.Element, tag string) *etree.Element {
	if el == nil {
		return nil
	}

	for _, c := range el.ChildElements() {
		if Match(c, tag) {
			return c
		}
	}
	return nil
}

// Find follows a slash separated path of tags below el. An empty path is el itself.
func Find(el *etree.Element, path string) *etree.Element {
	if path == "" {
		return el
	}
	return FindPath(el, strings.Split(path, "/")...)
}

// FindPath follows each tag in turn and returns nil as soon as one is missing.
func FindPath(el *etree.Element, tags ...string) *etree.Element {
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		el = Child(el, tag)
		if el == nil {
			return nil
		}
	}
	return el
}

// FindAll returns all elements matching the last segment of path below the
// element located by the preceding segments.
func FindAll(el *etree.Element, path string) []*etree.Element {
	segments := strings.Split(path, "/")
	parent := FindPath(el, segments[:len(segments)-1]...)
	return Children(parent, segments[len(segments)-1])
}

// Create appends a new element with the qualified tag to parent and makes
// sure its namespace prefix is declared.
func Create(parent *etree.Element, qualified string) *etree.Element {
	el := parent.CreateElement(qualified)
	if prefix, _ := split(qualified); prefix != "" {
		Declare(el, prefix)
	}
	return el
}

// Declare adds an xmlns declaration for prefix to the outermost ancestor of
// el unless one is already in scope.
func Declare(el *etree.Element, prefix string) {
	ns := URI(prefix)
	if ns == "" {
		return
	}

	top := el
	// the document node itself has an empty tag and is never serialised
	for cur := el; cur != nil && cur.Tag != ""; cur = cur.Parent() {
		if cur.SelectAttr("xmlns:"+prefix) != nil {
			return
		}
		top = cur
	}

	top.CreateAttr("xmlns:"+prefix, ns)
}

// NewRoot creates a document whose root is the qualified tag.
func NewRoot(qualified string) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	root := doc.CreateElement(qualified)
	if prefix, _ := split(qualified); prefix != "" {
		Declare(root, prefix)
	}

	return doc
}

// Adopt returns a detached copy of el that carries every namespace
// declaration in scope at el, so the copy resolves prefixes on its own.
func Adopt(el *etree.Element) *etree.Element {
	cp := el.Copy()

	for cur := el.Parent(); cur != nil; cur = cur.Parent() {
		for _, a := range cur.Attr {
			if a.Space != "xmlns" && !(a.Space == "" && a.Key == "xmlns") {
				continue
			}
			if cp.SelectAttr(a.FullKey()) == nil {
				cp.CreateAttr(a.FullKey(), a.Value)
			}
		}
	}

	return cp
}

// Document makes el the root of a new document. el is detached from any
// parent it had.
func Document(el *etree.Element) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	doc.SetRoot(el)
	return doc
}
