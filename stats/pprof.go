// Package stats exposes runtime profiles and request metrics of long
// running commands.
package stats

import (
	"net/http"
	_ "net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omniscale/osmapi/logging"
)

var log = logging.NewLogger("stats")

// StartHTTPPProf serves /debug/pprof and /metrics (from the default
// prometheus registry) on bind in the background.
func StartHTTPPProf(bind string) {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("serving pprof and metrics on http://%s/", bind)
		if err := http.ListenAndServe(bind, nil); err != nil {
			log.Errorf("profile server: %s", err)
		}
	}()
}
