// Package svgdom is a minimal, mutable XML element tree: encoding/xml's
// streaming tokenizer wrapped with just enough structure to parse a
// template, resize a few attributes in place, and re-serialize canonically
// with attribute order preserved.
package svgdom

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Attr is one XML attribute, keeping its namespace prefix and local name
// distinct the way xml.Name does, so re-serialization can round-trip
// vendor-namespaced attributes and elements.
type Attr struct {
	Name  xml.Name
	Value string
}

// Node is one XML element. CharData holds text content for leaf elements
// (e.g. a <style> body); Children holds nested elements. A document's root
// is a single Node.
type Node struct {
	Name     xml.Name
	Attr     []Attr
	Children []*Node
	CharData string

	parent *Node
}

// Parse reads one XML document into a Node tree, preserving attribute order
// exactly as encountered.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	var root, cur *Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name, parent: cur}
			for _, a := range t.Attr {
				n.Attr = append(n.Attr, Attr{Name: a.Name, Value: a.Value})
			}
			if cur != nil {
				cur.Children = append(cur.Children, n)
			}
			if root == nil {
				root = n
			}
			cur = n
		case xml.EndElement:
			if cur != nil {
				cur = cur.parent
			}
		case xml.CharData:
			if cur != nil {
				cur.CharData += string(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("svgdom: empty document")
	}
	return root, nil
}

// Get returns the value of the named attribute (local name only; namespace
// ignored) and whether it was present.
func (n *Node) Get(local string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing attribute (local name match) or
// appends a new one with no namespace if absent.
func (n *Node) Set(local, value string) {
	for i, a := range n.Attr {
		if a.Name.Local == local {
			n.Attr[i].Value = value
			return
		}
	}
	n.Attr = append(n.Attr, Attr{Name: xml.Name{Local: local}, Value: value})
}

// SetID sets the id attribute to the given value.
func (n *Node) SetID(id string) { n.Set("id", id) }

// ID returns the id attribute, or "" if absent.
func (n *Node) ID() string {
	v, _ := n.Get("id")
	return v
}

// AppendChild appends a child node, taking ownership of its parent pointer.
func (n *Node) AppendChild(child *Node) {
	child.parent = n
	n.Children = append(n.Children, child)
}

// ClearChildren removes all children (and any text) of n.
func (n *Node) ClearChildren() {
	n.Children = nil
	n.CharData = ""
}

// Find performs a depth-first search for the first descendant (including n
// itself) whose local name matches, optionally additionally filtered by an
// attribute value (attrLocal/attrValue; pass "" for attrLocal to skip the
// filter).
func Find(n *Node, local, attrLocal, attrValue string) *Node {
	if n.Name.Local == local {
		if attrLocal == "" {
			return n
		}
		if v, ok := n.Get(attrLocal); ok && v == attrValue {
			return n
		}
	}
	for _, c := range n.Children {
		if found := Find(c, local, attrLocal, attrValue); found != nil {
			return found
		}
	}
	return nil
}

// FindAll performs a depth-first collection of every descendant (including n
// itself) whose local name matches.
func FindAll(n *Node, local string) []*Node {
	var out []*Node
	if n.Name.Local == local {
		out = append(out, n)
	}
	for _, c := range n.Children {
		out = append(out, FindAll(c, local)...)
	}
	return out
}

// NewElement constructs a bare Node with the given local name and
// attributes, applied in map-key-sorted order for determinism. Callers
// needing a specific attribute order should append to Attr directly instead.
func NewElement(local string, attrs map[string]string) *Node {
	n := &Node{Name: xml.Name{Local: local}}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Attr = append(n.Attr, Attr{Name: xml.Name{Local: k}, Value: attrs[k]})
	}
	return n
}

// Render writes the canonical serialization of n (and its subtree) to w:
// attributes in their stored order, no extraneous whitespace between tags,
// self-closed when empty. This is used both for final output and, on a
// detached <g> subtree, as the key for definition-reuse comparisons (two
// structurally identical groups serialize identically).
func Render(w io.Writer, n *Node) error {
	bw, ok := w.(interface {
		io.Writer
		WriteString(string) (int, error)
	})
	if !ok {
		bw = &stringWriter{w}
	}
	return render(bw, n)
}

type stringWriter struct{ io.Writer }

func (s *stringWriter) WriteString(str string) (int, error) {
	return s.Writer.Write([]byte(str))
}

func render(w interface {
	io.Writer
	WriteString(string) (int, error)
}, n *Node) error {
	name := qualifiedName(n.Name)
	if _, err := w.WriteString("<" + name); err != nil {
		return err
	}
	for _, a := range n.Attr {
		if _, err := fmt.Fprintf(w, ` %s="%s"`, qualifiedName(a.Name), escapeText(a.Value)); err != nil {
			return err
		}
	}
	if len(n.Children) == 0 && n.CharData == "" {
		_, err := w.WriteString("/>")
		return err
	}
	if _, err := w.WriteString(">"); err != nil {
		return err
	}
	if n.CharData != "" {
		if _, err := w.WriteString(escapeText(n.CharData)); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := render(w, c); err != nil {
			return err
		}
	}
	_, err := w.WriteString("</" + name + ">")
	return err
}

// Known vendor namespaces. encoding/xml resolves a prefixed name's Space to
// the declared URI (not the prefix itself), so re-serialization maps back
// from URI to a conventional prefix via namespacePrefixes.
const (
	SVGNamespace     = "http://www.w3.org/2000/svg"
	TermcapNamespace = "https://github.com/rexwzh/termcap"
	XlinkNamespace   = "http://www.w3.org/1999/xlink"
)

var namespacePrefixes = map[string]string{
	SVGNamespace:     "",
	TermcapNamespace: "tc",
	XlinkNamespace:   "xlink",
}

func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	if prefix, ok := namespacePrefixes[name.Space]; ok {
		if prefix == "" {
			return name.Local
		}
		return prefix + ":" + name.Local
	}
	return name.Space + ":" + name.Local
}

// escapeText escapes a string for use as either an attribute value or
// element text content. Whitespace is left alone so multi-line text (a
// generated <style> body, say) serializes as written.
var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// Canonical returns the canonical serialization of n as a string, used as
// the dedup key for reused <g> definitions.
func Canonical(n *Node) string {
	var buf bytes.Buffer
	_ = Render(&buf, n)
	return buf.String()
}
