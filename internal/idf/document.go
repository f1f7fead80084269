// Package idf builds InGrid Detail Format documents: an idf:html envelope
// whose body carries ISO 19139 metadata.
//
// Elements are created strictly top-down and append-only. Paths passed to
// AddElement are '/'-separated qualified names, each segment creating a new
// child of the previous one.
package idf

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// Namespace URIs used in IDF and ISO 19139 documents.
const (
	NamespaceIDF   = "http://www.portalu.de/IDF/1.0"
	NamespaceGMD   = "http://www.isotc211.org/2005/gmd"
	NamespaceGCO   = "http://www.isotc211.org/2005/gco"
	NamespaceSRV   = "http://www.isotc211.org/2005/srv"
	NamespaceGML   = "http://www.opengis.net/gml"
	NamespaceGTS   = "http://www.isotc211.org/2005/gts"
	NamespaceXLink = "http://www.w3.org/1999/xlink"
	NamespaceXSI   = "http://www.w3.org/2001/XMLSchema-instance"
)

// Document is an IDF document.
type Document struct {
	doc  *etree.Document
	head *Element
	body *Element
}

// NewDocument returns an empty IDF envelope with head and body.
func NewDocument() *Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	html := doc.CreateElement("idf:html")
	html.CreateAttr("xmlns:idf", NamespaceIDF)
	html.CreateAttr("idf-version", "3.0.0")

	return &Document{
		doc:  doc,
		head: &Element{el: html.CreateElement("idf:head")},
		body: &Element{el: html.CreateElement("idf:body")},
	}
}

// ParseDocument reads a serialized IDF document.
func ParseDocument(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse idf document: %w", err)
	}
	root := doc.Root()
	if root == nil || root.FullTag() != "idf:html" {
		return nil, fmt.Errorf("parse idf document: root element is not idf:html")
	}
	head := root.SelectElement("idf:head")
	body := root.SelectElement("idf:body")
	if head == nil || body == nil {
		return nil, fmt.Errorf("parse idf document: missing idf:head or idf:body")
	}
	return &Document{doc: doc, head: &Element{el: head}, body: &Element{el: body}}, nil
}

// Root returns the idf:html element.
func (d *Document) Root() *Element { return &Element{el: d.doc.Root()} }

// Head returns the idf:head element.
func (d *Document) Head() *Element { return d.head }

// Body returns the idf:body element.
func (d *Document) Body() *Element { return d.body }

// FindElement returns the first element matching an etree path relative to
// the document, or nil.
func (d *Document) FindElement(path string) *Element {
	return wrap(d.doc.FindElement(path))
}

// FindElements returns all elements matching an etree path.
func (d *Document) FindElements(path string) []*Element {
	return wrapAll(d.doc.FindElements(path))
}

// WriteTo writes the indented document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	out := d.doc.Copy()
	out.Indent(2)
	return out.WriteTo(w)
}

// Bytes returns the indented document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize idf document: %w", err)
	}
	return buf.Bytes(), nil
}

// String returns the indented document, or "" if it cannot be serialized.
func (d *Document) String() string {
	b, err := d.Bytes()
	if err != nil {
		return ""
	}
	return string(b)
}

// Element is a node of an IDF document.
type Element struct {
	el *etree.Element
}

// NewElement creates a detached element, to be attached with AppendChild.
// The path form of AddElement is accepted here too; the outermost element
// is returned.
func NewElement(path string) *Element {
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil
	}
	root := etree.NewElement(segments[0])
	cur := root
	for _, seg := range segments[1:] {
		cur = cur.CreateElement(seg)
	}
	return &Element{el: root}
}

func splitPath(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func wrap(el *etree.Element) *Element {
	if el == nil {
		return nil
	}
	return &Element{el: el}
}

func wrapAll(els []*etree.Element) []*Element {
	out := make([]*Element, 0, len(els))
	for _, el := range els {
		out = append(out, &Element{el: el})
	}
	return out
}

// AddElement creates the elements named by path below e and returns the
// innermost one.
func (e *Element) AddElement(path string) *Element {
	cur := e.el
	for _, seg := range splitPath(path) {
		cur = cur.CreateElement(seg)
	}
	return &Element{el: cur}
}

// AddAttribute sets an attribute and returns e.
func (e *Element) AddAttribute(name, value string) *Element {
	e.el.CreateAttr(name, value)
	return e
}

// AddNS declares a namespace prefix on e.
func (e *Element) AddNS(prefix, uri string) *Element {
	return e.AddAttribute("xmlns:"+prefix, uri)
}

// AddText appends character data and returns e.
func (e *Element) AddText(text string) *Element {
	e.el.CreateText(text)
	return e
}

// AppendChild attaches a detached element as the last child of e and
// returns the child.
func (e *Element) AppendChild(child *Element) *Element {
	e.el.AddChild(child.el)
	return child
}

// Name returns the qualified element name.
func (e *Element) Name() string { return e.el.FullTag() }

// Text returns the character data directly inside e.
func (e *Element) Text() string { return e.el.Text() }

// Attr returns the value of an attribute, "" if it is not set.
func (e *Element) Attr(name string) string { return e.el.SelectAttrValue(name, "") }

// HasAttr reports whether the attribute is set.
func (e *Element) HasAttr(name string) bool { return e.el.SelectAttr(name) != nil }

// Children returns the child elements in document order.
func (e *Element) Children() []*Element { return wrapAll(e.el.ChildElements()) }

// FindElement returns the first descendant matching an etree path, or nil.
func (e *Element) FindElement(path string) *Element { return wrap(e.el.FindElement(path)) }

// FindElements returns all descendants matching an etree path.
func (e *Element) FindElements(path string) []*Element { return wrapAll(e.el.FindElements(path)) }
