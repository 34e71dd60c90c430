// Package analysis defines the /analyze wire contract and the HTTP client that calls it.
package analysis

import "github.com/rbright/courtside/internal/form"

// Path is the analysis endpoint relative to the service base URL.
const Path = "/analyze"

// Request is the immutable snapshot sent to the analysis service.
type Request struct {
	CourtB64   string `json:"court_b64"`
	VideoB64   string `json:"video_b64"`
	Transcript string `json:"transcript"`
	Quarter    string `json:"quarter"`
	Category   string `json:"category"`
}

// NewRequest snapshots s into wire form. Absent media become empty strings and the
// transcript is sent untrimmed.
func NewRequest(s form.State) Request {
	return Request{
		CourtB64:   s.Image(),
		VideoB64:   s.Video(),
		Transcript: s.Transcript,
		Quarter:    s.Quarter.String(),
		Category:   s.Category.String(),
	}
}

// Response is the success body.
type Response struct {
	Result string `json:"result"`
}

// ErrorResponse is the failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// responseEnvelope decodes either body shape; pointers distinguish absent from empty.
type responseEnvelope struct {
	Result *string `json:"result"`
	Error  *string `json:"error"`
}
