package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/agrisiti/agrikit/internal/domain/cue"
)

// LearnerHeader identifies the learner on every request.
const LearnerHeader = "X-Learner-ID"

const (
	anonymousLearner = "anonymous"
	maxLearnerIDLen  = 128
	maxBodyBytes     = 1 << 20
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// sessionResponse is the envelope every activity endpoint returns.
type sessionResponse struct {
	SessionID string     `json:"session_id"`
	View      any        `json:"view"`
	Tones     []cue.Tone `json:"tones,omitempty"`
	Accepted  *bool      `json:"accepted,omitempty"`
	Result    string     `json:"result,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decode reads an optional JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// learnerID returns the caller's learner id, defaulting to anonymous.
func learnerID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(LearnerHeader))
	if id == "" {
		return anonymousLearner, nil
	}
	if len(id) > maxLearnerIDLen {
		return "", errors.New("learner id too long")
	}
	return id, nil
}

func accepted(ok bool) *bool { return &ok }

type soundRequest struct {
	Sound *bool `json:"sound"`
}
