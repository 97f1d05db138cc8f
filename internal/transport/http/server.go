package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"hostset/internal/metrics"
	"hostset/internal/output"
	"hostset/internal/registry"
	grpcTransport "hostset/internal/transport/grpc"
)

var (
	log  = logrus.WithField("component", "http")
	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

// Options tunes the HTTP handler.
type Options struct {
	// MaxAge marks the service unready once the registry is older. Zero
	// disables the check.
	MaxAge time.Duration
	// Title is written into the banner of exported lists.
	Title string
	// Clock measures registry age. It must be the clock the updater stamps
	// UpdatedAt with; defaults to the wall clock.
	Clock clock.Clock
}

type handler struct {
	holder *registry.Holder
	rpc    *grpcTransport.Server
	gw     *runtime.ServeMux
	opts   Options
}

// NewHandler serves the DomainSet API over REST next to the health and
// metrics endpoints. API calls go to the gRPC service implementation
// in-process.
func NewHandler(holder *registry.Holder, opts Options) (http.Handler, error) {
	h := &handler{
		holder: holder,
		rpc:    grpcTransport.NewServer(holder),
		gw:     runtime.NewServeMux(),
		opts:   opts,
	}
	if h.opts.Title == "" {
		h.opts.Title = "hostset"
	}
	if h.opts.Clock == nil {
		h.opts.Clock = clock.New()
	}

	for path, fn := range map[string]runtime.HandlerFunc{
		"/api/v1/check":  h.check,
		"/api/v1/find":   h.find,
		"/api/v1/export": h.export,
	} {
		if err := h.gw.HandlePath(http.MethodGet, path, fn); err != nil {
			return nil, err
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/", h.gw)
	mux.Handle("/metrics", metrics.Handler())

	// /healthz: liveness only
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", h.readyz)

	return mux, nil
}

type checkResponse struct {
	Blocked bool `json:"blocked"`
}

type listResponse struct {
	Suffix  string   `json:"suffix,omitempty"`
	Domains []string `json:"domains"`
}

func (h *handler) check(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	resp, err := h.rpc.Check(r.Context(), wrapperspb.String(r.URL.Query().Get("url")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, checkResponse{Blocked: resp.GetValue()})
}

func (h *handler) find(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	suffix := r.URL.Query().Get("suffix")
	resp, err := h.rpc.Find(r.Context(), wrapperspb.String(suffix))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	domains := make([]string, 0, len(resp.GetValues()))
	for _, v := range resp.GetValues() {
		domains = append(domains, v.GetStringValue())
	}
	writeJSON(w, listResponse{Suffix: suffix, Domains: domains})
}

// export streams the whole list. Without a format query the list is
// returned as JSON; with one it is rendered as a list file.
func (h *handler) export(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		resp, err := h.rpc.Export(r.Context(), &emptypb.Empty{})
		if err != nil {
			h.fail(w, r, err)
			return
		}
		domains := make([]string, 0, len(resp.GetValues()))
		for _, v := range resp.GetValues() {
			domains = append(domains, v.GetStringValue())
		}
		writeJSON(w, listResponse{Domains: domains})
		return
	}

	f, err := output.ParseFormat(raw)
	if err != nil {
		h.fail(w, r, status.Error(codes.InvalidArgument, err.Error()))
		return
	}
	if !h.holder.Ready() {
		h.fail(w, r, status.Error(codes.Unavailable, "registry not loaded yet"))
		return
	}

	reg := h.holder.Get()
	b := output.Banner{Title: h.opts.Title, Date: reg.UpdatedAt}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := output.Write(w, b, output.Render(reg.Domains, f)); err != nil {
		log.WithError(err).Warn("export write failed")
	}
}

func (h *handler) readyz(w http.ResponseWriter, r *http.Request) {
	reg := h.holder.Get()
	if !h.holder.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not loaded"))
		return
	}
	if h.opts.MaxAge > 0 {
		age := h.opts.Clock.Since(reg.UpdatedAt)
		if age < 0 || age > h.opts.MaxAge {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("stale"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	_, outbound := runtime.MarshalerForRequest(h.gw, r)
	runtime.HTTPError(r.Context(), h.gw, outbound, w, r, err)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("encode response")
	}
}

// RunHTTPServer serves handler on addr and shuts down gracefully when the
// context is canceled.
func RunHTTPServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown of the HTTP server when the parent context is canceled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("graceful shutdown error")
		}
	}()

	log.WithField("addr", addr).Info("HTTP server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
