package node

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/xornet-io/vault/cmn/nlog"
)

// AdminServer is the small operator-facing HTTP surface this core
// exposes alongside the data-plane transport: health and Prometheus
// scrape endpoints. It is deliberately minimal - everything
// client-facing lives on the transport collaborator, not here
// (spec.md §1).
type AdminServer struct {
	srv      *fasthttp.Server
	listen   string
	instance string
}

// NewAdminServer wires /healthz and /metrics behind fasthttp, the
// HTTP server the teacher's own dependency stack carries.
func NewAdminServer(listen, instance string) *AdminServer {
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())

	a := &AdminServer{listen: listen, instance: instance}
	a.srv = &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			switch string(ctx.Path()) {
			case "/healthz":
				ctx.SetStatusCode(fasthttp.StatusOK)
				ctx.SetBodyString("ok " + instance)
			case "/metrics":
				metricsHandler(ctx)
			default:
				ctx.SetStatusCode(fasthttp.StatusNotFound)
			}
		},
		Name: "vault-admin",
	}
	return a
}

// ListenAndServe blocks until the server stops or fails.
func (a *AdminServer) ListenAndServe() error {
	nlog.Infoln("node: admin surface listening on", a.listen, "instance", a.instance)
	return a.srv.ListenAndServe(a.listen)
}

func (a *AdminServer) Shutdown() error {
	return a.srv.Shutdown()
}
