package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/diagplot/pkg/errors"
	"github.com/YuminosukeSato/diagplot/pkg/log"
	"github.com/YuminosukeSato/diagplot/plot"
)

func newServeCmd(o *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Fit a model and serve its interactive charts over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := o.newLogger(cmd.ErrOrStderr())
			fm, err := o.fit(logger)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, addr, newRouter(o, fm, logger), logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", envOr(envAddr, ":8080"), "listen address")
	return cmd
}

func serve(ctx context.Context, addr string, h http.Handler, logger log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// newRouter serves the charts of one fitted model:
//
//	GET /healthz
//	GET /charts               kinds supported by the model family
//	GET /charts/{kind}        interactive HTML; query: size, color, title, feature, grid_resolution, contour
func newRouter(o *options, fm *fitted, logger log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/charts", func(w http.ResponseWriter, r *http.Request) {
		var kinds []string
		for _, k := range plot.Kinds() {
			if k.Supports(fm.family) {
				kinds = append(kinds, string(k))
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"family": fm.family.String(),
			"kinds":  kinds,
		})
	})
	r.Get("/charts/{kind}", func(w http.ResponseWriter, r *http.Request) {
		req := *o
		req.kind = chi.URLParam(r, "kind")
		q := r.URL.Query()
		if v := q.Get("size"); v != "" {
			req.size = v
		}
		if v := q.Get("color"); v != "" {
			req.color = v
		}
		if v := q.Get("title"); v != "" {
			req.title = v
		}
		if v := q.Get("contour"); v != "" {
			req.contour, _ = strconv.ParseBool(v)
		}
		for name, dst := range map[string]*int{"feature": &req.feature, "grid_resolution": &req.gridResolution} {
			if v := q.Get(name); v != "" {
				n, err := strconv.Atoi(v)
				if err != nil {
					http.Error(w, name+" must be an integer", http.StatusBadRequest)
					return
				}
				*dst = n
			}
		}

		l := logger.With("http.request_id", middleware.GetReqID(r.Context()))
		opts, err := req.plotOptions(fm, l)
		if err != nil {
			http.Error(w, err.Error(), statusOf(err))
			return
		}
		res, err := plot.RenderContext(r.Context(), fm.est, append(opts, plot.WithInteractive(true))...)
		if err != nil {
			http.Error(w, err.Error(), statusOf(err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := res.(*plot.Interactive).Render(w); err != nil {
			l.Error("writing chart", "error", err)
		}
	})
	return r
}

// statusOf maps dispatcher errors to HTTP statuses.
func statusOf(err error) int {
	var (
		pt *errors.UnsupportedPlotTypeError
		uc *errors.UnsupportedCombinationError
		ia *errors.InvalidArgumentError
	)
	switch {
	case errors.As(err, &pt):
		return http.StatusNotFound
	case errors.As(err, &uc), errors.As(err, &ia):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
