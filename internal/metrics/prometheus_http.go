package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPHandler serves reg, or the default gatherer when reg is nil. Gathering
// errors are reported in the response instead of failing the scrape.
func HTTPHandler(reg *prom.Registry) http.Handler {
	var g prom.Gatherer = prom.DefaultGatherer
	if reg != nil {
		g = reg
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
