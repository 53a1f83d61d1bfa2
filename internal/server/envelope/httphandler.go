package envelope

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hivellm/synap/internal/telemetry/metric"
)

// HTTPHandler adapts a Dispatcher to net/http: POST /v1/command carries an
// Envelope as its JSON body and receives a Response back. This is the one
// concrete transport Synap ships; the protocol itself has no fixed carrier.
// metrics is optional; a nil registry disables command instrumentation.
func HTTPHandler(d *Dispatcher, log *slog.Logger, metrics *metric.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/command", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var env Envelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			writeJSON(w, http.StatusBadRequest, fail("", "SYN-SYS-4000", "invalid request body", err.Error()))
			return
		}

		start := time.Now()
		resp := d.Dispatch(env)
		elapsed := time.Since(start)

		if metrics != nil {
			outcome := "ok"
			if !resp.Success {
				outcome = "error"
			}
			metrics.CommandsTotal.WithLabelValues(env.Command, outcome).Inc()
			metrics.CommandDuration.WithLabelValues(env.Command).Observe(elapsed.Seconds())
		}

		if !resp.Success && log != nil {
			log.Warn("command failed", "command", env.Command, "request_id", env.RequestID, "error_code", resp.Error.Code)
		}
		writeJSON(w, http.StatusOK, resp)
	})

	mux.HandleFunc("/v1/tools", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"tools": Tools()})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
