package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"host-metrics/internal/domain"
)

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode int    `json:"error_code"`
	Resource  string `json:"resource,omitempty"`
	Cause     string `json:"cause,omitempty"`
}

// APIResponse writes JSON bodies. Verbose adds the failing resource and
// its underlying cause to error bodies.
type APIResponse struct {
	Verbose bool
}

func (res APIResponse) NewErrorResponse(err error) ErrorResponse {
	body := ErrorResponse{
		Error:     err.Error(),
		ErrorCode: GetErrorCode(err),
	}
	if res.Verbose {
		var rqe *domain.ResourceQueryError
		if errors.As(err, &rqe) {
			body.Resource = string(rqe.Resource)
			if rqe.Err != nil {
				body.Cause = rqe.Err.Error()
			}
		}
	}
	return body
}

func (res APIResponse) WriteErrorResponse(w http.ResponseWriter, err error) {
	res.WriteErrorResponseWithStatusCode(w, err, GetStatusCode(err))
}

func (res APIResponse) WriteErrorResponseWithStatusCode(w http.ResponseWriter, err error, statusCode int) {
	res.writeJSON(w, statusCode, res.NewErrorResponse(err))
}

func (res APIResponse) WriteResultResponse(w http.ResponseWriter, result interface{}) {
	res.writeJSON(w, http.StatusOK, result)
}

func (res APIResponse) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		statusCode = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Error: err.Error(), ErrorCode: API_FAILURE})
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(statusCode)
	w.Write(body)
}
