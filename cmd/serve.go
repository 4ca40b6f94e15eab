package cmd

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/username/flatorders/src/config"
	"github.com/username/flatorders/src/handlers"
	"github.com/username/flatorders/src/logger"
	"github.com/username/flatorders/src/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP conversion API",
	Long: `Serve exposes the converter over HTTP. POST /api/convert accepts a
multipart statement upload and responds with the flattened records;
GET /api/results/{id} replays a recent result while it is still cached.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		convertService := services.NewConvertService(config.Cfg.ResultCacheTTL)
		convertHandler := handlers.NewConvertHandler(convertService)

		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/convert", convertHandler.HandleConvert)
		mux.HandleFunc("GET /api/results/{id}", convertHandler.HandleGetResult)
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" || r.Method != http.MethodGet {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "flatorders API is running"})
		})

		logger.L.Info("Applying global middleware...")
		finalHandler := handlers.EnableCORS(handlers.RateLimitMiddleware(mux))

		serverAddr := ":" + config.Cfg.Port
		server := &http.Server{
			Addr:         serverAddr,
			Handler:      finalHandler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		logger.L.Info("Server starting", "address", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L.Error("Failed to start server", "error", err)
			stdlog.Fatalf("Failed to start server: %v", err)
		}
		logger.L.Info("Server stopped gracefully.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
