package common

import "encoding/json"

// Envelope is the body shape of every backend response.
type Envelope[T any] struct {
	Success    *bool  `json:"success,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message,omitempty"`
	Data       T      `json:"data"`
}

// Failed reports an explicit success=false, which the backend also sends
// with a 2xx status for rejected punches.
func (e Envelope[T]) Failed() bool {
	return e.Success != nil && !*e.Success
}

// ErrorBody covers both error shapes the backend produces: a bare envelope
// and a framework error whose detail is either a string or an envelope.
type ErrorBody struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

// Text extracts the human readable message, or "" when there is none.
func (b ErrorBody) Text() string {
	if b.Message != "" {
		return b.Message
	}
	if len(b.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(b.Detail, &s); err == nil {
		return s
	}
	var nested ErrorBody
	if err := json.Unmarshal(b.Detail, &nested); err == nil {
		return nested.Text()
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(b.Detail, &list); err == nil && len(list) > 0 {
		return list[0].Msg
	}
	return ""
}
