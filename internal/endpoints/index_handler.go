package endpoints

import (
	"errors"
	"net/http"

	"host-metrics/internal/domain"
	"host-metrics/internal/util"
)

// ErrorPage is the data behind error.html.
type ErrorPage struct {
	Message   string
	ErrorCode int
	Resource  string
	Cause     string
	Verbose   bool
}

// Dashboard serves the HTML view.
type Dashboard struct {
	snapshotSource
	pages    *Pages
	Response APIResponse
}

// Init uses the embedded templates when pages is nil.
func (d *Dashboard) Init(collector domain.Collector, logger *util.ServiceLogger, pages *Pages, opts ...Option) {
	d.init(collector, logger, opts)
	if pages == nil {
		pages = MustDefaultPages()
	}
	d.pages = pages
	d.Response = APIResponse{Verbose: d.verbose}
}

func (d *Dashboard) GetIndexHandler(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodGet {
		d.logger.LogEvent(util.LOG_LEVEL_ERROR, "Method Not Allowed. Only GET requests are supported", http.StatusMethodNotAllowed)
		d.Response.WriteErrorResponse(w, ErrMethodNotAllowed)
		return
	}

	snapshot, err := d.collect(r)
	if err != nil {
		d.writeErrorPage(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := d.pages.Render(w, indexPage, snapshot); err != nil {
		d.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while rendering index page. Err -", err)
		if errors.Is(err, ErrPageRender) {
			d.writeErrorPage(w, err)
		}
	}
}

func (d *Dashboard) writeErrorPage(w http.ResponseWriter, err error) {
	body := d.Response.NewErrorResponse(err)
	page := ErrorPage{
		Message:   body.Error,
		ErrorCode: body.ErrorCode,
		Resource:  body.Resource,
		Cause:     body.Cause,
		Verbose:   d.verbose,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(GetStatusCode(err))
	if renderErr := d.pages.Render(w, errorPage, page); renderErr != nil {
		d.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while rendering error page. Err -", renderErr)
		w.Write([]byte(body.Error))
	}
}
