package relay

import (
	"errors"
	"io"
	"net/http"
)

// maxBodyBytes bounds inbound event bodies. Slack events are a few KB.
const maxBodyBytes = 1 << 20

// ServeHTTP implements http.Handler for the Slack events endpoint.
func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	resp, err := r.Handle(req.Context(), req.Header, body)
	switch {
	case errors.Is(err, ErrInvalidSignature):
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	case errors.Is(err, ErrMalformedEvent):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, "failed to handle event", http.StatusInternalServerError)
		return
	}

	if len(resp.Body) > 0 {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}
