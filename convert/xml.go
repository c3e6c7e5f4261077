package convert

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// XMLToObject converts a complete response body. Bodies that are not XML
// (e.g. the plain changeset id returned by /changeset/create) are returned
// as an Object with only text content.
func XMLToObject(data []byte) (Object, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Object{}, nil
	}
	if data[0] != '<' {
		return Object{textKey: string(data)}, nil
	}
	obj, err := decode(xml.NewDecoder(bytes.NewReader(data)))
	if err != nil {
		return nil, errors.Wrap(err, "decoding XML response")
	}
	return obj, nil
}

// DOMToObject converts a raw HTTP response as returned by an OAuth handle.
// The body is read in a streaming fashion and closed.
func DOMToObject(resp *http.Response) (Object, error) {
	if resp == nil || resp.Body == nil {
		return Object{}, nil
	}
	defer resp.Body.Close()

	r := bufio.NewReader(resp.Body)
	for {
		b, err := r.Peek(1)
		if err == io.EOF {
			return Object{}, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading response")
		}
		if b[0] == ' ' || b[0] == '\t' || b[0] == '\r' || b[0] == '\n' {
			r.ReadByte()
			continue
		}
		if b[0] != '<' {
			text, err := ioutil.ReadAll(r)
			if err != nil {
				return nil, errors.Wrap(err, "reading response")
			}
			return Object{textKey: strings.TrimSpace(string(text))}, nil
		}
		break
	}
	obj, err := decode(xml.NewDecoder(r))
	if err != nil {
		return nil, errors.Wrap(err, "decoding XML response")
	}
	return obj, nil
}

func decode(decoder *xml.Decoder) (Object, error) {
	root := Object{}
	stack := []Object{root}
	texts := []*strings.Builder{{}}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch tok := token.(type) {
		case xml.StartElement:
			elem := Object{}
			for _, attr := range tok.Attr {
				elem[attrPrefix+attr.Name.Local] = attr.Value
			}
			parent := stack[len(stack)-1]
			parent[tok.Name.Local] = append(parent.Children(tok.Name.Local), elem)
			stack = append(stack, elem)
			texts = append(texts, &strings.Builder{})
		case xml.CharData:
			texts[len(texts)-1].Write(tok)
		case xml.EndElement:
			if len(stack) == 1 {
				return nil, fmt.Errorf("unexpected end element </%s>", tok.Name.Local)
			}
			if text := strings.TrimSpace(texts[len(texts)-1].String()); text != "" {
				stack[len(stack)-1][textKey] = text
			}
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]
		default:
			// comments, directives and processing instructions
		}
	}
	if len(stack) != 1 {
		return nil, io.ErrUnexpectedEOF
	}
	return root, nil
}

// elementOrder is the order of elements in OSM API documents. Elements
// with other names follow in lexical order.
var elementOrder = map[string]int{
	"bounds":      1,
	"node":        2,
	"way":         3,
	"relation":    4,
	"changeset":   5,
	"note":        6,
	"user":        7,
	"preferences": 8,
	"nd":          9,
	"member":      10,
	"tag":         11,
}

// ObjectToXML encodes an Object as XML document. Sibling elements with
// different names are written in elementOrder, elements with the same
// name keep their order.
func ObjectToXML(obj Object) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(buf)
	if err := encodeChildren(enc, obj); err != nil {
		return nil, errors.Wrap(err, "encoding XML")
	}
	if err := enc.Flush(); err != nil {
		return nil, errors.Wrap(err, "encoding XML")
	}
	return buf.Bytes(), nil
}

func encodeChildren(enc *xml.Encoder, obj Object) error {
	names := make([]string, 0, len(obj))
	for k := range obj {
		if k == textKey || isAttr(k) {
			continue
		}
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, oj := elementOrder[names[i]], elementOrder[names[j]]
		switch {
		case oi != 0 && oj != 0:
			return oi < oj
		case oi != 0 || oj != 0:
			return oi != 0
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		switch v := obj[name].(type) {
		case nil:
		case string:
			if err := encodeElement(enc, name, Object{textKey: v}); err != nil {
				return err
			}
		case Object, []Object, map[string]interface{}, []map[string]interface{}, []interface{}:
			for _, c := range asObjects(v) {
				if err := encodeElement(enc, name, c); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("unsupported value for <%s>: %T", name, v)
		}
	}
	return nil
}

func encodeElement(enc *xml.Encoder, name string, obj Object) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	attrs := make([]string, 0, len(obj))
	for k := range obj {
		if isAttr(k) {
			attrs = append(attrs, k)
		}
	}
	sort.Strings(attrs)
	for _, k := range attrs {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: strings.TrimPrefix(k, attrPrefix)},
			Value: fmt.Sprint(obj[k]),
		})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if text, ok := obj[textKey]; ok {
		if err := enc.EncodeToken(xml.CharData(fmt.Sprint(text))); err != nil {
			return err
		}
	}
	if err := encodeChildren(enc, obj); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}
