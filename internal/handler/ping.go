package handler

import (
	"context"
	"errors"
	"html"
	"net/http"
	"time"

	"code.cloudfoundry.org/lager/v3"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/secure-ping/internal/probe"
	"github.com/iliyamo/secure-ping/internal/service"
)

// InvalidHostMessage is the body of every 400 response.
const InvalidHostMessage = "Invalid hostname"

// recordTimeout bounds how long the sinks may take after a probe.
const recordTimeout = 2 * time.Second

// PingHandler bundles dependencies for the probe endpoint.
type PingHandler struct {
	Prober   *probe.Prober
	Recorder service.Recorder
	Logger   lager.Logger
}

func NewPingHandler(p *probe.Prober, r service.Recorder, logger lager.Logger) *PingHandler {
	if p == nil || logger == nil {
		panic("nil dependency passed to NewPingHandler")
	}
	if r == nil {
		r = service.MultiRecorder{}
	}
	return &PingHandler{Prober: p, Recorder: r, Logger: logger.Session("ping-handler")}
}

// ----- DTOs -----

type pingReq struct {
	Host string `form:"host"`
}

// Response is what HandlePing decided to send back.
type Response struct {
	Status int
	Body   string
}

// Ping binds the form and writes the outcome of HandlePing as HTML.
func (h *PingHandler) Ping(c echo.Context) error {
	var req pingReq
	if err := c.Bind(&req); err != nil {
		// an unreadable body cannot carry a valid host
		req.Host = ""
	}
	resp := h.HandlePing(c.Request().Context(), req.Host)
	return c.HTML(resp.Status, resp.Body)
}

// HandlePing validates host, runs one probe and maps the outcome to a
// response: 400 for a rejected host, otherwise 200 with either the probe's
// stdout in <pre> or its stderr after "Error: ".  Output is HTML-escaped.
// Cancelling ctx does not stop a probe that has started; it runs until its
// packet count is sent.
func (h *PingHandler) HandlePing(ctx context.Context, host string) Response {
	res, err := h.Prober.Probe(context.WithoutCancel(ctx), host)
	if errors.Is(err, probe.ErrInvalidHost) {
		return Response{Status: http.StatusBadRequest, Body: InvalidHostMessage}
	}

	h.record(res)

	if !res.Succeeded() {
		return Response{Status: http.StatusOK, Body: "Error: " + html.EscapeString(res.Stderr)}
	}
	return Response{Status: http.StatusOK, Body: "<pre>" + html.EscapeString(res.Stdout) + "</pre>"}
}

// record hands the probe to the sinks.  It is detached from the request
// context so a client hanging up does not drop the record.
func (h *PingHandler) record(res probe.Result) {
	rec := service.NewProbeRecord(res)
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := h.Recorder.Record(ctx, rec); err != nil {
		h.Logger.Error("failed-to-record-probe", err, lager.Data{"probe-id": rec.ID, "host": rec.Host})
	}
}
