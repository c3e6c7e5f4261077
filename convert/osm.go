package convert

import (
	"errors"
	"sort"
	"strconv"
	"time"

	osm "github.com/omniscale/go-osm"
	pkgerrors "github.com/pkg/errors"
)

var ErrNoOSMDocument = errors.New("no <osm> root element")

// Data contains the typed elements of an OSM document.
type Data struct {
	Nodes      []osm.Node
	Ways       []osm.Way
	Relations  []osm.Relation
	Changesets []osm.Changeset
}

var memberTypeValues = map[string]osm.MemberType{
	"node":     osm.NodeMember,
	"way":      osm.WayMember,
	"relation": osm.RelationMember,
}

var memberTypeNames = map[osm.MemberType]string{
	osm.NodeMember:     "node",
	osm.WayMember:      "way",
	osm.RelationMember: "relation",
}

// Decode converts an {osm: ...} Object into go-osm elements.
func Decode(obj Object) (*Data, error) {
	root := obj.Child("osm")
	if root == nil {
		return nil, ErrNoOSMDocument
	}
	data := &Data{}

	for _, n := range root.Children("node") {
		node := osm.Node{}
		if err := decodeElement(n, &node.Element); err != nil {
			return nil, pkgerrors.Wrap(err, "decoding node")
		}
		var err error
		if node.Lat, err = parseFloat(n.Attr("lat")); err != nil {
			return nil, pkgerrors.Wrapf(err, "decoding lat of node %d", node.ID)
		}
		if node.Long, err = parseFloat(n.Attr("lon")); err != nil {
			return nil, pkgerrors.Wrapf(err, "decoding lon of node %d", node.ID)
		}
		data.Nodes = append(data.Nodes, node)
	}

	for _, w := range root.Children("way") {
		way := osm.Way{}
		if err := decodeElement(w, &way.Element); err != nil {
			return nil, pkgerrors.Wrap(err, "decoding way")
		}
		for _, nd := range w.Children("nd") {
			ref, err := strconv.ParseInt(nd.Attr("ref"), 10, 64)
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "decoding nd of way %d", way.ID)
			}
			way.Refs = append(way.Refs, ref)
		}
		data.Ways = append(data.Ways, way)
	}

	for _, r := range root.Children("relation") {
		rel := osm.Relation{}
		if err := decodeElement(r, &rel.Element); err != nil {
			return nil, pkgerrors.Wrap(err, "decoding relation")
		}
		for _, m := range r.Children("member") {
			typ, ok := memberTypeValues[m.Attr("type")]
			if !ok {
				// ignore unknown member types
				continue
			}
			ref, err := strconv.ParseInt(m.Attr("ref"), 10, 64)
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "decoding member of relation %d", rel.ID)
			}
			rel.Members = append(rel.Members, osm.Member{ID: ref, Type: typ, Role: m.Attr("role")})
		}
		data.Relations = append(data.Relations, rel)
	}

	for _, c := range root.Children("changeset") {
		cs, err := decodeChangeset(c)
		if err != nil {
			return nil, err
		}
		data.Changesets = append(data.Changesets, cs)
	}
	return data, nil
}

func decodeElement(obj Object, elem *osm.Element) error {
	var err error
	if id := obj.Attr("id"); id != "" {
		if elem.ID, err = strconv.ParseInt(id, 10, 64); err != nil {
			return err
		}
	}
	elem.Tags = decodeTags(obj)

	if obj.Attr("version") == "" && obj.Attr("changeset") == "" && obj.Attr("uid") == "" {
		return nil
	}
	md := &osm.Metadata{UserName: obj.Attr("user")}
	if v := obj.Attr("version"); v != "" {
		version, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return err
		}
		md.Version = int32(version)
	}
	if v := obj.Attr("changeset"); v != "" {
		if md.Changeset, err = strconv.ParseInt(v, 10, 64); err != nil {
			return err
		}
	}
	if v := obj.Attr("uid"); v != "" {
		uid, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return err
		}
		md.UserID = int32(uid)
	}
	if v := obj.Attr("timestamp"); v != "" {
		if md.Timestamp, err = time.Parse(time.RFC3339, v); err != nil {
			return err
		}
	}
	elem.Metadata = md
	return nil
}

func decodeTags(obj Object) osm.Tags {
	tags := obj.Children("tag")
	if len(tags) == 0 {
		return nil
	}
	t := make(osm.Tags, len(tags))
	for _, tag := range tags {
		t[tag.Attr("k")] = tag.Attr("v")
	}
	return t
}

func decodeChangeset(obj Object) (osm.Changeset, error) {
	cs := osm.Changeset{
		UserName: obj.Attr("user"),
		Open:     obj.Attr("open") == "true",
		Tags:     decodeTags(obj),
	}
	var err error
	if cs.ID, err = strconv.ParseInt(obj.Attr("id"), 10, 64); err != nil {
		return cs, pkgerrors.Wrap(err, "decoding changeset id")
	}
	if v := obj.Attr("uid"); v != "" {
		uid, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return cs, pkgerrors.Wrapf(err, "decoding uid of changeset %d", cs.ID)
		}
		cs.UserID = int32(uid)
	}
	if v := obj.Attr("changes_count"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return cs, pkgerrors.Wrapf(err, "decoding changes_count of changeset %d", cs.ID)
		}
		cs.NumChanges = int32(n)
	}
	if cs.CreatedAt, err = parseTime(obj.Attr("created_at")); err != nil {
		return cs, pkgerrors.Wrapf(err, "decoding created_at of changeset %d", cs.ID)
	}
	if cs.ClosedAt, err = parseTime(obj.Attr("closed_at")); err != nil {
		return cs, pkgerrors.Wrapf(err, "decoding closed_at of changeset %d", cs.ID)
	}
	for i, name := range []string{"min_lon", "min_lat", "max_lon", "max_lat"} {
		if cs.MaxExtent[i], err = parseFloat(obj.Attr(name)); err != nil {
			return cs, pkgerrors.Wrapf(err, "decoding %s of changeset %d", name, cs.ID)
		}
	}
	for _, c := range obj.Path("discussion").Children("comment") {
		comment := osm.Comment{UserName: c.Attr("user"), Text: c.Child("text").Text()}
		if v := c.Attr("uid"); v != "" {
			uid, err := strconv.ParseInt(v, 10, 32)
			if err != nil {
				return cs, pkgerrors.Wrapf(err, "decoding comment of changeset %d", cs.ID)
			}
			comment.UserID = int32(uid)
		}
		if comment.CreatedAt, err = parseTime(c.Attr("date")); err != nil {
			return cs, pkgerrors.Wrapf(err, "decoding comment of changeset %d", cs.ID)
		}
		cs.Comments = append(cs.Comments, comment)
	}
	return cs, nil
}

func parseFloat(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, v)
}

// NodeObject builds the payload for /node/create.
func NodeObject(node *osm.Node, changeset string) Object {
	n := elementObject(&node.Element, changeset)
	n["_lat"] = strconv.FormatFloat(node.Lat, 'f', -1, 64)
	n["_lon"] = strconv.FormatFloat(node.Long, 'f', -1, 64)
	return Object{"osm": Object{"node": n}}
}

// WayObject builds the payload for /way/create.
func WayObject(way *osm.Way, changeset string) Object {
	w := elementObject(&way.Element, changeset)
	nds := make([]Object, 0, len(way.Refs))
	for _, ref := range way.Refs {
		nds = append(nds, Object{"_ref": strconv.FormatInt(ref, 10)})
	}
	w["nd"] = nds
	return Object{"osm": Object{"way": w}}
}

// RelationObject builds the payload for /relation/create.
func RelationObject(rel *osm.Relation, changeset string) Object {
	r := elementObject(&rel.Element, changeset)
	members := make([]Object, 0, len(rel.Members))
	for _, m := range rel.Members {
		member := Object{
			"_type": memberTypeNames[m.Type],
			"_ref":  strconv.FormatInt(m.ID, 10),
		}
		if m.Role != "" {
			member["_role"] = m.Role
		}
		members = append(members, member)
	}
	r["member"] = members
	return Object{"osm": Object{"relation": r}}
}

func elementObject(elem *osm.Element, changeset string) Object {
	obj := Object{"_changeset": changeset}
	if elem.ID != 0 {
		obj["_id"] = strconv.FormatInt(elem.ID, 10)
	}
	if elem.Metadata != nil && elem.Metadata.Version != 0 {
		obj["_version"] = strconv.FormatInt(int64(elem.Metadata.Version), 10)
	}
	if len(elem.Tags) > 0 {
		obj["tag"] = TagObjects(elem.Tags)
	}
	return obj
}

// TagObjects returns the tags as <tag k="" v=""/> children, sorted by key.
func TagObjects(tags osm.Tags) []Object {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	objs := make([]Object, 0, len(keys))
	for _, k := range keys {
		objs = append(objs, Object{"_k": k, "_v": tags[k]})
	}
	return objs
}
