package subsonic

import "fmt"

// APIError is an error reported inside the subsonic-response envelope.
// Common codes: 40 (wrong username or password), 41 (token authentication
// not supported), 70 (requested data not found).
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("subsonic: error code %d: %s", e.Code, e.Message)
}

// responseEnvelope is the root object of every JSON API response.
type responseEnvelope struct {
	Response apiResponse `json:"subsonic-response"`
}

// apiResponse is the body of the subsonic-response envelope.
type apiResponse struct {
	Status  string    `json:"status"` // "ok" or "failed"
	Version string    `json:"version"`
	Error   *APIError `json:"error,omitempty"`
	Starred starred   `json:"starred"`
}

// err maps a failed response to its APIError.
func (r *apiResponse) err() error {
	if r.Error != nil {
		return r.Error
	}
	if r.Status != "" && r.Status != "ok" {
		return fmt.Errorf("subsonic: response status %q", r.Status)
	}
	return nil
}

// starred holds the starred media lists. Albums and artists are present in
// the wire format but unused here.
type starred struct {
	Song []song `json:"song"`
}

// song is a starred song record as returned by getStarred.view.
type song struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Suffix      string `json:"suffix"`
	Starred     string `json:"starred"`
}
