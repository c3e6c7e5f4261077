package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/omniscale/osmapi"
	"github.com/omniscale/osmapi/api"
	"github.com/omniscale/osmapi/config"
	"github.com/omniscale/osmapi/convert"
	"github.com/omniscale/osmapi/geojson"
	"github.com/omniscale/osmapi/logging"
	"github.com/omniscale/osmapi/oauth"
	"github.com/omniscale/osmapi/session"
	"github.com/omniscale/osmapi/stats"
)

// command holds the client for a single command run.
type command struct {
	opts   *config.Options
	client *api.Client
	store  session.ClosableStore
	ctx    context.Context
}

func parse(flags *flag.FlagSet, opts *config.Options, args []string) {
	if err := opts.Parse(flags, args); err != nil {
		log.Fatal(err)
	}
	lvl, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	logging.SetLevel(lvl)
	if opts.Httpprofile != "" {
		stats.StartHTTPPProf(opts.Httpprofile)
	}
}

func newCommand(opts *config.Options) *command {
	store, err := session.Open(opts.SessionStore, opts.SessionDir)
	if err != nil {
		log.Fatal(err)
	}
	apiOpts := []api.Option{
		api.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
		api.WithUserAgent("osmapi/" + osmapi.Version),
		api.WithRequestObserver(stats.NewRequestMetrics(prometheus.DefaultRegisterer)),
	}
	if opts.RateLimit > 0 {
		apiOpts = append(apiOpts, api.WithRateLimit(rate.NewLimiter(rate.Limit(opts.RateLimit), 1)))
	}
	client := api.New(opts.URL, store, apiOpts...)
	ctx := context.Background()
	if opts.OAuthToken != "" {
		root := strings.TrimSuffix(strings.TrimRight(opts.URL, "/"), "/api")
		client.SetOauth(oauth.StaticClient(ctx, root, opts.OAuthToken))
	}
	return &command{opts: opts, client: client, store: store, ctx: ctx}
}

func (c *command) close() {
	if err := c.store.Close(); err != nil {
		log.Warn(err)
	}
}

func (c *command) fatal(err error) {
	c.close()
	log.Fatal(err)
}

func (c *command) print(obj convert.Object, err error) {
	if err != nil {
		c.fatal(err)
	}
	if err := writeObject(os.Stdout, obj); err != nil {
		c.fatal(err)
	}
}

// writeObject writes XML documents as XML and plain text responses as is.
func writeObject(w io.Writer, obj convert.Object) error {
	if text := obj.Text(); text != "" && len(obj) == 1 {
		_, err := fmt.Fprintln(w, text)
		return err
	}
	if len(obj) == 0 {
		return nil
	}
	data, err := convert.ObjectToXML(obj)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func login(args []string) {
	flags, opts := config.NewFlagSet("login")
	username := flags.String("user", "", "OSM username")
	password := flags.String("password", os.Getenv("OSMAPI_PASSWORD"), "OSM password (or $OSMAPI_PASSWORD)")
	parse(flags, opts, args)
	if *username == "" {
		log.Fatal("missing -user")
	}

	c := newCommand(opts)
	defer c.close()
	if _, err := c.client.SetCredentials(*username, *password); err != nil {
		c.fatal(err)
	}
	if err := validateLogin(c.ctx, c.client); err != nil {
		c.fatal(err)
	}
	log.Printf("logged in as %s (%s)", *username, c.store.UserID())
}

// validateLogin checks the stored credentials and clears them if the
// server rejects them.
func validateLogin(ctx context.Context, client *api.Client) error {
	ok, err := client.ValidateCredentials(ctx)
	if err == nil && !ok {
		err = errors.New("no user details returned")
	}
	if err != nil {
		if cerr := client.ClearCredentials(); cerr != nil {
			log.Warnf("rejected credentials are still stored: %s", cerr)
		}
		return err
	}
	return nil
}

func logout(args []string) {
	flags, opts := config.NewFlagSet("logout")
	parse(flags, opts, args)
	c := newCommand(opts)
	defer c.close()
	if err := c.client.ClearCredentials(); err != nil {
		c.fatal(err)
	}
}

func whoami(args []string) {
	flags, opts := config.NewFlagSet("whoami")
	parse(flags, opts, args)
	c := newCommand(opts)
	defer c.close()
	c.print(c.client.GetUserDetails(c.ctx))
}

func user(args []string) {
	flags, opts := config.NewFlagSet("user")
	parse(flags, opts, args)
	if flags.NArg() != 1 {
		log.Fatal("usage: user [options] ID")
	}
	c := newCommand(opts)
	defer c.close()
	c.print(c.client.GetUserByID(c.ctx, flags.Arg(0)))
}

func prefs(args []string) {
	flags, opts := config.NewFlagSet("prefs")
	parse(flags, opts, args)
	c := newCommand(opts)
	defer c.close()
	c.print(c.client.GetUserPreferences(c.ctx))
}

func setPref(args []string) {
	flags, opts := config.NewFlagSet("set-pref")
	parse(flags, opts, args)
	if flags.NArg() != 2 {
		log.Fatal("usage: set-pref [options] KEY VALUE")
	}
	c := newCommand(opts)
	defer c.close()
	c.print(c.client.PutUserPreferences(c.ctx, flags.Arg(0), flags.Arg(1)))
}

func changesetCreate(args []string) {
	flags, opts := config.NewFlagSet("changeset-create")
	comment := flags.String("comment", "", "changeset comment")
	parse(flags, opts, args)
	c := newCommand(opts)
	defer c.close()
	c.print(c.client.CreateChangeset(c.ctx, *comment))
}

func changesetLast(args []string) {
	flags, opts := config.NewFlagSet("changeset-last")
	parse(flags, opts, args)
	c := newCommand(opts)
	defer c.close()
	if c.store.UserID() == "" {
		c.fatal(errors.New("unknown user id, login first"))
	}
	id, err := c.client.GetLastOpenedChangesetID(c.ctx)
	if err != nil {
		c.fatal(err)
	}
	if id == "" {
		log.Printf("no open changeset")
		return
	}
	fmt.Println(id)
}

func changesetClose(args []string) {
	flags, opts := config.NewFlagSet("changeset-close")
	parse(flags, opts, args)
	c := newCommand(opts)
	defer c.close()
	if c.client.ActiveChangeset() == "" {
		c.fatal(errors.New("no active changeset"))
	}
	c.print(c.client.CloseChangeset(c.ctx))
}

func changeset(args []string) {
	flags, opts := config.NewFlagSet("changeset")
	parse(flags, opts, args)
	c := newCommand(opts)
	defer c.close()
	id := flags.Arg(0)
	if id == "" {
		id = c.client.ActiveChangeset()
	}
	if id == "" {
		c.fatal(errors.New("no changeset id and no active changeset"))
	}
	c.print(c.client.GetChangeset(c.ctx, id))
}

// bboxFlags registers -bbox and -limitto and returns a function that
// resolves the bbox after parsing.
func bboxFlags(flags *flag.FlagSet) func() string {
	bbox := flags.String("bbox", "", "left,bottom,right,top")
	limitTo := flags.String("limitto", "", "use the bounds of the polygons in this GeoJSON file as bbox")
	return func() string {
		if *limitTo == "" {
			if *bbox == "" {
				log.Fatal("missing -bbox or -limitto")
			}
			return *bbox
		}
		b, err := limitToBBox(*limitTo)
		if err != nil {
			log.Fatal(err)
		}
		return b
	}
}

func limitToBBox(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()
	polygons, err := geojson.ParseGeoJsonReader(f)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", filename)
	}
	bounds, err := geojson.Bounds(polygons)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", filename)
	}
	return geojson.BBox(bounds), nil
}

func mapXML(args []string) {
	flags, opts := config.NewFlagSet("map")
	bbox := bboxFlags(flags)
	parse(flags, opts, args)
	b := bbox()
	c := newCommand(opts)
	defer c.close()
	c.print(c.client.GetMap(c.ctx, b))
}

func mapGeoJSON(args []string) {
	flags, opts := config.NewFlagSet("map-geojson")
	bbox := bboxFlags(flags)
	parse(flags, opts, args)
	b := bbox()
	c := newCommand(opts)
	defer c.close()
	fc, err := c.client.GetMapGeoJSON(c.ctx, b)
	if err != nil {
		c.fatal(err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		c.fatal(err)
	}
}

func notes(args []string) {
	flags, opts := config.NewFlagSet("notes")
	bbox := bboxFlags(flags)
	parse(flags, opts, args)
	b := bbox()
	c := newCommand(opts)
	defer c.close()
	c.print(c.client.GetNotes(c.ctx, b))
}

func capabilities(args []string) {
	flags, opts := config.NewFlagSet("capabilities")
	parse(flags, opts, args)
	c := newCommand(opts)
	defer c.close()
	c.print(c.client.GetCapabilities(c.ctx))
}

func element(kind, action string, args []string) {
	flags, opts := config.NewFlagSet(kind + " " + action)
	var tags, refs, members *string
	var lat, lon *float64
	if action == "create" {
		tags = flags.String("tags", "", "tags as key=value,key=value")
		switch kind {
		case "node":
			lat = flags.Float64("lat", 0, "latitude")
			lon = flags.Float64("lon", 0, "longitude")
		case "way":
			refs = flags.String("refs", "", "node ids, e.g. 1,2,3")
		case "relation":
			members = flags.String("members", "", "members as type/id:role, e.g. way/5:outer,node/1:")
		}
	}
	parse(flags, opts, args)

	c := newCommand(opts)
	defer c.close()

	switch action {
	case "get", "delete":
		if flags.NArg() != 1 {
			c.fatal(errors.Errorf("usage: %s %s [options] ID", kind, action))
		}
		id := flags.Arg(0)
		var get, del func(context.Context, string) (convert.Object, error)
		switch kind {
		case "node":
			get, del = c.client.GetNode, c.client.DeleteNode
		case "way":
			get, del = c.client.GetWay, c.client.DeleteWay
		case "relation":
			get, del = c.client.GetRelation, c.client.DeleteRelation
		}
		if action == "get" {
			c.print(get(c.ctx, id))
		} else {
			c.print(del(c.ctx, id))
		}
	case "create":
		changeset := c.client.ActiveChangeset()
		if changeset == "" {
			c.fatal(errors.New("no active changeset, run changeset-create first"))
		}
		t, err := parseTags(*tags)
		if err != nil {
			c.fatal(err)
		}
		switch kind {
		case "node":
			node := &osm.Node{Lat: *lat, Long: *lon}
			node.Tags = t
			c.print(c.client.CreateNode(c.ctx, convert.NodeObject(node, changeset)))
		case "way":
			way := &osm.Way{}
			way.Tags = t
			if way.Refs, err = parseRefs(*refs); err != nil {
				c.fatal(err)
			}
			c.print(c.client.CreateWay(c.ctx, convert.WayObject(way, changeset)))
		case "relation":
			rel := &osm.Relation{}
			rel.Tags = t
			if rel.Members, err = parseMembers(*members); err != nil {
				c.fatal(err)
			}
			c.print(c.client.CreateRelation(c.ctx, convert.RelationObject(rel, changeset)))
		}
	default:
		c.fatal(errors.Errorf("invalid action '%s' for %s", action, kind))
	}
}

func parseTags(s string) (osm.Tags, error) {
	tags := osm.Tags{}
	if s == "" {
		return tags, nil
	}
	for _, kv := range strings.Split(s, ",") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, errors.Errorf("invalid tag '%s'", kv)
		}
		tags[parts[0]] = parts[1]
	}
	return tags, nil
}

func parseRefs(s string) ([]int64, error) {
	if s == "" {
		return nil, errors.New("missing -refs")
	}
	var refs []int64
	for _, r := range strings.Split(s, ",") {
		ref, err := strconv.ParseInt(strings.TrimSpace(r), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid ref '%s'", r)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

var memberTypes = map[string]osm.MemberType{
	"node":     osm.NodeMember,
	"way":      osm.WayMember,
	"relation": osm.RelationMember,
}

func parseMembers(s string) ([]osm.Member, error) {
	if s == "" {
		return nil, errors.New("missing -members")
	}
	var members []osm.Member
	for _, m := range strings.Split(s, ",") {
		role := ""
		if i := strings.Index(m, ":"); i >= 0 {
			m, role = m[:i], m[i+1:]
		}
		parts := strings.SplitN(m, "/", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("invalid member '%s'", m)
		}
		typ, ok := memberTypes[parts[0]]
		if !ok {
			return nil, errors.Errorf("invalid member type '%s'", parts[0])
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid member '%s'", m)
		}
		members = append(members, osm.Member{ID: id, Type: typ, Role: role})
	}
	return members, nil
}

func oauthURL(args []string) {
	flags, opts := config.NewFlagSet("oauth-url")
	state := flags.String("state", "osmapi", "state parameter")
	parse(flags, opts, args)
	if opts.OAuthClientID == "" {
		log.Fatal("missing -oauth-client-id")
	}
	conf := oauth.NewConfig(opts.OAuthURL, opts.OAuthClientID, opts.OAuthClientSecret, opts.OAuthRedirectURL)
	verifier := oauth.GenerateVerifier()
	fmt.Println("verifier:", verifier)
	fmt.Println(conf.AuthCodeURL(*state, verifier))
}

func oauthToken(args []string) {
	flags, opts := config.NewFlagSet("oauth-token")
	code := flags.String("code", "", "authorization code")
	verifier := flags.String("verifier", "", "verifier printed by oauth-url")
	parse(flags, opts, args)
	if opts.OAuthClientID == "" || *code == "" || *verifier == "" {
		log.Fatal("-oauth-client-id, -code and -verifier are required")
	}
	conf := oauth.NewConfig(opts.OAuthURL, opts.OAuthClientID, opts.OAuthClientSecret, opts.OAuthRedirectURL)
	tok, err := conf.Exchange(context.Background(), *code, *verifier)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tok.AccessToken)
}
