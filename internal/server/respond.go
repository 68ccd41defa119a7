package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

const maxBodyBytes = 1 << 16

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

var sanitizer = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "", "%", "", ";", "", "(", "", ")", "", "&", "", "+", "")

// sanitize trims input, strips markup and injection characters and collapses
// whitespace runs.
func sanitize(s string) string {
	return strings.Join(strings.Fields(sanitizer.Replace(s)), " ")
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}
