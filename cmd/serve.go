package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/capture-cli/internal/export"
	"github.com/sells-group/capture-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the record store read-only over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedMethods: []string{http.MethodGet},
			AllowedOrigins: []string{"*"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, map[string]string{"status": "ok"})
		})

		r.Get("/records", func(w http.ResponseWriter, req *http.Request) {
			snap, err := st.Load(req.Context())
			if err != nil {
				httpError(w, err)
				return
			}
			writeJSON(w, snap)
		})

		r.Get("/records/{partition}", func(w http.ResponseWriter, req *http.Request) {
			part := chi.URLParam(req, "partition")
			if _, ok := model.PartitionObject(part); !ok {
				http.Error(w, `{"error":"unknown partition"}`, http.StatusNotFound)
				return
			}
			snap, err := st.Load(req.Context())
			if err != nil {
				httpError(w, err)
				return
			}
			recs := snap.Partitions[part]
			if recs == nil {
				recs = []model.Record{}
			}
			writeJSON(w, recs)
		})

		r.Get("/export/json", func(w http.ResponseWriter, req *http.Request) {
			snap, err := st.Load(req.Context())
			if err != nil {
				httpError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := export.JSON(w, snap, time.Now()); err != nil {
				zap.L().Error("json export failed", zap.Error(err))
			}
		})

		r.Get("/export/csv", func(w http.ResponseWriter, req *http.Request) {
			snap, err := st.Load(req.Context())
			if err != nil {
				httpError(w, err)
				return
			}
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="records.csv"`)
			if err := export.CSV(w, snap); err != nil {
				zap.L().Error("csv export failed", zap.Error(err))
			}
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response failed", zap.Error(err))
	}
}

func httpError(w http.ResponseWriter, err error) {
	zap.L().Error("request failed", zap.Error(err))
	http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
