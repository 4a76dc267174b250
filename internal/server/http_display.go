package server

import (
	"fmt"
	"io"
	"text/tabwriter"

	"resumeats/internal/observability"
)

// displayServerInfo writes the startup banner describing routes and limits
func (s *Server) displayServerInfo(w io.Writer, om *observability.ObservabilityManager) {
	s.displayEndpoints(w, om)
	s.displayAuthInfo(w)
	s.displayLimits(w)
	s.displayWorkerInfo(w)
}

func (s *Server) displayEndpoints(w io.Writer, om *observability.ObservabilityManager) {
	fmt.Fprintln(w, "Available endpoints:")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	authNote := ""
	if s.APIKeys.Len() > 0 {
		authNote = "(requires API key)"
	}
	for _, rt := range s.routes(om) {
		note := ""
		if rt.protected {
			note = authNote
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", rt.method, rt.path, rt.summary, note)
	}
	if om.MetricsHandler() != nil {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t\n", "GET", om.MetricsEndpoint(), "Prometheus metrics")
	}
	_ = tw.Flush()
}

func (s *Server) displayAuthInfo(w io.Writer) {
	if n := s.APIKeys.Len(); n > 0 {
		fmt.Fprintf(w, "API authentication: ENABLED (%d keys configured)\n", n)
		fmt.Fprintln(w, "Send 'X-API-Key: <key>' or 'Authorization: Bearer <key>' to protected endpoints")
		return
	}
	fmt.Fprintln(w, "API authentication: DISABLED (no API keys configured)")
	fmt.Fprintln(w, "WARNING: API endpoints are publicly accessible!")
}

func (s *Server) displayLimits(w io.Writer) {
	if s.MaxRequestSize > 0 {
		fmt.Fprintf(w, "Request size limit: %.1f MB\n", float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Fprintln(w, "WARNING: Request size limit disabled")
	}

	if s.RateLimit == nil || !s.RateLimit.Enabled {
		fmt.Fprintln(w, "WARNING: Rate limiting disabled")
		return
	}

	var scope []string
	if s.RateLimit.ByAPIKey {
		scope = append(scope, "api key")
	}
	if s.RateLimit.ByIP {
		scope = append(scope, "ip")
	}
	fmt.Fprintf(w, "Rate limiting: %d requests/min, burst %d, keyed by %v\n",
		s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity, scope)
}

func (s *Server) displayWorkerInfo(w io.Writer) {
	if s.deps.Worker != nil {
		fmt.Fprintln(w, "Render worker: IN-PROCESS")
		return
	}
	fmt.Fprintln(w, "Render worker: EXTERNAL (run 'resumeats worker')")
}
