// Package convert translates between OSM API documents and the nested
// Object representation used by the api package.
//
// An Object mirrors the XML structure of an OSM document. Attributes are
// stored with a leading underscore (_id, _lat, _changeset), the character
// data of an element is stored as __text and child elements are stored as
// ordered []Object sequences under their element name:
//
//	<osm><node id="1" lat="52.1" lon="8.2"><tag k="name" v="x"/></node></osm>
//
// becomes
//
//	Object{"osm": []Object{{"node": []Object{{
//		"_id": "1", "_lat": "52.1", "_lon": "8.2",
//		"tag": []Object{{"_k": "name", "_v": "x"}},
//	}}}}}
//
// When building documents, a single child may also be given as Object
// instead of []Object.
package convert

import "strings"

type Object map[string]interface{}

const (
	attrPrefix = "_"
	textKey    = "__text"
)

// Attr returns the value of the attribute name (without prefix).
func (o Object) Attr(name string) string {
	if o == nil {
		return ""
	}
	v, _ := o[attrPrefix+name].(string)
	return v
}

// Text returns the character data of the element.
func (o Object) Text() string {
	if o == nil {
		return ""
	}
	v, _ := o[textKey].(string)
	return v
}

// Children returns all child elements with the given name.
func (o Object) Children(name string) []Object {
	if o == nil {
		return nil
	}
	return asObjects(o[name])
}

// Child returns the first child element with the given name, or nil.
func (o Object) Child(name string) Object {
	c := o.Children(name)
	if len(c) == 0 {
		return nil
	}
	return c[0]
}

// Path follows the first child for each name, e.g. Path("osm", "user").
func (o Object) Path(names ...string) Object {
	cur := o
	for _, n := range names {
		cur = cur.Child(n)
		if cur == nil {
			return nil
		}
	}
	return cur
}

func isAttr(key string) bool {
	return key != textKey && strings.HasPrefix(key, attrPrefix)
}

func asObjects(v interface{}) []Object {
	switch v := v.(type) {
	case []Object:
		return v
	case Object:
		return []Object{v}
	case map[string]interface{}:
		return []Object{Object(v)}
	case []map[string]interface{}:
		objs := make([]Object, len(v))
		for i := range v {
			objs[i] = Object(v[i])
		}
		return objs
	case []interface{}:
		objs := make([]Object, 0, len(v))
		for _, e := range v {
			objs = append(objs, asObjects(e)...)
		}
		return objs
	}
	return nil
}
