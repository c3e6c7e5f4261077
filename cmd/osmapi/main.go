package main

import (
	"fmt"
	golog "log"
	"os"
	"runtime"

	"github.com/omniscale/osmapi"
	"github.com/omniscale/osmapi/logging"
)

var log = logging.NewLogger("")

func PrintCmds() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [args]\n\n", os.Args[0])
	fmt.Println("Available commands:")
	fmt.Println("\tlogin")
	fmt.Println("\tlogout")
	fmt.Println("\twhoami")
	fmt.Println("\tuser")
	fmt.Println("\tprefs")
	fmt.Println("\tset-pref")
	fmt.Println("\tchangeset-create")
	fmt.Println("\tchangeset-last")
	fmt.Println("\tchangeset-close")
	fmt.Println("\tchangeset")
	fmt.Println("\tmap")
	fmt.Println("\tmap-geojson")
	fmt.Println("\tnotes")
	fmt.Println("\tcapabilities")
	fmt.Println("\tnode|way|relation get|create|delete")
	fmt.Println("\toauth-url")
	fmt.Println("\toauth-token")
	fmt.Println("\tversion")
}

func Main(usage func()) {
	golog.SetFlags(golog.LstdFlags | golog.Lshortfile)

	if len(os.Args) <= 1 {
		usage()
		logging.Shutdown()
		os.Exit(1)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "login":
		login(args)
	case "logout":
		logout(args)
	case "whoami":
		whoami(args)
	case "user":
		user(args)
	case "prefs":
		prefs(args)
	case "set-pref":
		setPref(args)
	case "changeset-create":
		changesetCreate(args)
	case "changeset-last":
		changesetLast(args)
	case "changeset-close":
		changesetClose(args)
	case "changeset":
		changeset(args)
	case "map":
		mapXML(args)
	case "map-geojson":
		mapGeoJSON(args)
	case "notes":
		notes(args)
	case "capabilities":
		capabilities(args)
	case "node", "way", "relation":
		if len(args) == 0 {
			usage()
			log.Fatalf("missing action for %s", os.Args[1])
		}
		element(os.Args[1], args[0], args[1:])
	case "oauth-url":
		oauthURL(args)
	case "oauth-token":
		oauthToken(args)
	case "version":
		fmt.Printf("%s %s(%s-%s)\n", osmapi.Version, runtime.Version(), runtime.GOARCH, runtime.GOOS)
		os.Exit(0)
	default:
		usage()
		log.Fatalf("invalid command: '%s'", os.Args[1])
	}
	logging.Shutdown()
	os.Exit(0)
}

func main() {
	Main(PrintCmds)
}
