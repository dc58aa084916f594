package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/ggicci/httpin"
	"github.com/ggicci/httpin/integration"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KonishchevDmitry/feedsync/internal/updater"
)

const shutdownTimeout = 10 * time.Second

func init() {
	integration.UseGorillaMux("path", mux.Vars)
}

// Scheduler is the set of update commands available over HTTP.
type Scheduler interface {
	Update(ctx context.Context, ids []string, options updater.UpdateOptions)
	UpdateAll(ctx context.Context, options updater.UpdateOptions) error
	Stop(ctx context.Context)
	QueryStatus() updater.Status
}

type updateParams struct {
	Background bool `in:"query=background"`
}

type updateFeedsParams struct {
	Feeds      []string `in:"query=feed;required"`
	Background bool     `in:"query=background"`
}

type updateFeedParams struct {
	Feed       string `in:"path=feed"`
	Background bool   `in:"query=background"`
}

type Server struct {
	router    *mux.Router
	hub       *Hub
	scheduler Scheduler
}

func New(hub *Hub, scheduler Scheduler) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		hub:       hub,
		scheduler: scheduler,
	}

	s.register("/update", http.MethodPost, s.updateAll)
	s.register("/update/feeds", http.MethodPost, s.updateFeeds)
	s.register("/feeds/{feed}/update", http.MethodPost, s.updateFeed)
	s.register("/stop", http.MethodPost, s.stop)
	s.register("/status", http.MethodGet, s.status)
	s.register("/events", http.MethodGet, s.events)

	s.router.NotFoundHandler = http.HandlerFunc(http.NotFound)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Serve(ctx context.Context, addr string, metricsAddr string, collectors ...prometheus.Collector) error {
	var waitGroup sync.WaitGroup
	defer waitGroup.Wait()

	for _, collector := range collectors {
		if err := prometheus.DefaultRegisterer.Register(collector); err != nil {
			return err
		}
	}

	shutdownCtx := context.WithoutCancel(ctx)

	//nolint:gosec
	apiServer := http.Server{
		Addr:     addr,
		Handler:  s.router,
		ErrorLog: log.New(newHTTPLogger(logging.L(ctx)), "API HTTP server: ", 0),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	defer func() {
		ctx, cancel := context.WithTimeout(shutdownCtx, shutdownTimeout)
		defer cancel()

		s.hub.Close()
		if err := apiServer.Shutdown(ctx); err != nil {
			logging.L(ctx).Errorf("Failed to shutdown API HTTP server: %s.", err)
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: newPrometheusLogger(logging.L(ctx)),
	}))

	//nolint:gosec
	metricsServer := http.Server{
		Addr:     metricsAddr,
		Handler:  metricsMux,
		ErrorLog: log.New(newHTTPLogger(logging.L(ctx)), "Metrics HTTP server: ", 0),
	}
	defer func() {
		ctx, cancel := context.WithTimeout(shutdownCtx, shutdownTimeout)
		defer cancel()

		if err := metricsServer.Shutdown(ctx); err != nil {
			logging.L(ctx).Errorf("Failed to shutdown metrics HTTP server: %s.", err)
		}
	}()

	logging.L(ctx).Infof("Listening on %s (API) and %s (metrics)...", addr, metricsAddr)

	apiSocket, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	closeAPISocket := true
	defer func() {
		if closeAPISocket {
			if err := apiSocket.Close(); err != nil {
				logging.L(ctx).Errorf("Failed to close a socket: %s.", err)
			}
		}
	}()

	metricsSocket, err := net.Listen("tcp", metricsAddr)
	if err != nil {
		return err
	}
	closeMetricsSocket := true
	defer func() {
		if closeMetricsSocket {
			if err := metricsSocket.Close(); err != nil {
				logging.L(ctx).Errorf("Failed to close a socket: %s.", err)
			}
		}
	}()

	serverCrashed := make(chan error, 2)

	closeAPISocket = false
	waitGroup.Go(func() {
		if err := apiServer.Serve(apiSocket); !errors.Is(err, http.ErrServerClosed) {
			serverCrashed <- fmt.Errorf("API HTTP server has crashed: %w", err)
		}
	})

	closeMetricsSocket = false
	waitGroup.Go(func() {
		if err := metricsServer.Serve(metricsSocket); !errors.Is(err, http.ErrServerClosed) {
			serverCrashed <- fmt.Errorf("metrics HTTP server has crashed: %w", err)
		}
	})

	select {
	case err := <-serverCrashed:
		return err
	case <-ctx.Done():
		logging.L(ctx).Infof("Shutting down the server...")
		return nil
	}
}

func (s *Server) updateAll(ctx context.Context, writer http.ResponseWriter, request *http.Request) {
	params, ok := decode[updateParams](ctx, writer, request)
	if !ok {
		return
	}

	if err := s.scheduler.UpdateAll(ctx, updater.UpdateOptions{Background: params.Background}); err != nil {
		logging.L(ctx).Errorf("Failed to schedule update of all feeds: %s.", err)
		http.Error(writer, "Failed to schedule the update", http.StatusInternalServerError)
		return
	}

	s.writeStatus(ctx, writer, http.StatusAccepted)
}

func (s *Server) updateFeeds(ctx context.Context, writer http.ResponseWriter, request *http.Request) {
	params, ok := decode[updateFeedsParams](ctx, writer, request)
	if !ok {
		return
	}

	s.scheduler.Update(ctx, params.Feeds, updater.UpdateOptions{Background: params.Background})
	s.writeStatus(ctx, writer, http.StatusAccepted)
}

func (s *Server) updateFeed(ctx context.Context, writer http.ResponseWriter, request *http.Request) {
	params, ok := decode[updateFeedParams](ctx, writer, request)
	if !ok {
		return
	}

	s.scheduler.Update(ctx, []string{params.Feed}, updater.UpdateOptions{Background: params.Background})
	s.writeStatus(ctx, writer, http.StatusAccepted)
}

func (s *Server) stop(ctx context.Context, writer http.ResponseWriter, _ *http.Request) {
	s.scheduler.Stop(ctx)
	s.writeStatus(ctx, writer, http.StatusOK)
}

func (s *Server) status(ctx context.Context, writer http.ResponseWriter, _ *http.Request) {
	s.writeStatus(ctx, writer, http.StatusOK)
}

func (s *Server) events(ctx context.Context, writer http.ResponseWriter, request *http.Request) {
	s.hub.serve(ctx, writer, request, func() {
		s.scheduler.QueryStatus()
	})
}

func (s *Server) writeStatus(ctx context.Context, writer http.ResponseWriter, code int) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(code)
	if err := json.NewEncoder(writer).Encode(s.scheduler.QueryStatus()); err != nil {
		logging.L(ctx).Logf(logLevel(err), "Failed to send the response: %s.", err)
	}
}

func decode[P any](ctx context.Context, writer http.ResponseWriter, request *http.Request) (*P, bool) {
	params, err := httpin.Decode[P](request)
	if err != nil {
		logging.L(ctx).Warnf("Invalid request parameters: %s.", err)
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return params, true
}

func (s *Server) register(
	path string, method string, handler func(ctx context.Context, writer http.ResponseWriter, request *http.Request),
) {
	s.router.HandleFunc(path, func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		logging.L(ctx).Debugf("%s %s...", request.Method, request.RequestURI)
		handler(ctx, writer, request)
		logging.L(ctx).Debugf("%s %s finished.", request.Method, request.RequestURI)
	}).Methods(method)
}
