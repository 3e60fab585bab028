package endpoints

import (
	"context"
	"errors"
	"net/http"

	"host-metrics/internal/domain"
)

const (
	API_SUCCESS      = iota + 303000 // 303000
	API_FAILURE                      // 303001 - Generic API failure
	API_UNAUTHORIZED                 // 303002 - Reserved, no route requires authentication
)

const (
	CPU_QUERY_FAILED    = iota + 101 // 101 - CPU utilization could not be read
	MEMORY_QUERY_FAILED              // 102 - Memory utilization could not be read
	DISK_QUERY_FAILED                // 103 - Root filesystem utilization could not be read
	REQUEST_CANCELLED                // 104 - Client went away while sampling
	PAGE_RENDER_FAILED               // 105 - HTML template execution failed
)

var (
	ErrMethodNotAllowed = errors.New("method Not Allowed. Only GET requests are supported")
	ErrRequestCancelled = errors.New("request cancelled by client or server timeout")
	ErrPageRender       = errors.New("unable to render page")
)

func GetErrorCode(err error) int {
	if err == nil {
		return API_SUCCESS
	}

	var rqe *domain.ResourceQueryError
	switch {
	case errors.Is(err, ErrRequestCancelled), errors.Is(err, context.Canceled):
		return REQUEST_CANCELLED
	case errors.As(err, &rqe):
		switch rqe.Resource {
		case domain.ResourceCPU:
			return CPU_QUERY_FAILED
		case domain.ResourceMemory:
			return MEMORY_QUERY_FAILED
		case domain.ResourceDisk:
			return DISK_QUERY_FAILED
		}
		return API_FAILURE
	case errors.Is(err, ErrPageRender):
		return PAGE_RENDER_FAILED
	default:
		return API_FAILURE
	}
}

// GetStatusCode is the HTTP status that accompanies err.
func GetStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, ErrRequestCancelled), errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
