package http

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/casa-acolhe/records-service/internal/client"
	"github.com/casa-acolhe/records-service/internal/config"
	"github.com/casa-acolhe/records-service/internal/document"
	"github.com/casa-acolhe/records-service/internal/episode"
	"github.com/casa-acolhe/records-service/internal/export"
	"github.com/casa-acolhe/records-service/internal/messaging"
	"github.com/casa-acolhe/records-service/internal/telemetry"
)

// SetupRouter wires the repositories, services and handlers and
// registers all routes. Every dependency is injected here once at
// startup; there are no package-level singletons.
func SetupRouter(db *sql.DB, store *document.Store, publisher messaging.EventPublisher, metrics *telemetry.Metrics, cfg config.Config) *mux.Router {
	// Document components
	documentRepo := document.NewRepository(db)
	documentService := document.NewService(documentRepo, store, publisher,
		cfg.Uploads.MaxSizeBytes, cfg.Uploads.AllowedExts)
	documentHandler := document.NewHandler(documentService, cfg.Uploads.MaxSizeBytes)

	// Client components
	clientRepo := client.NewRepository(db)
	clientService := client.NewService(clientRepo, store, publisher)
	clientHandler := client.NewHandler(clientService)

	// Episode components
	episodeRepo := episode.NewRepository(db)
	episodeService := episode.NewService(episodeRepo, publisher)
	episodeHandler := episode.NewHandler(episodeService)

	// Export components
	exportRepo := export.NewRepository(db)
	exportService := export.NewService(exportRepo)
	exportHandler := export.NewHandler(exportService)

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("records-service"))
	r.Use(MetricsMiddleware(metrics))
	r.Use(CORSMiddleware)

	// Public health endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"records-service"}`))
	}).Methods("GET")

	// Listing and registration
	r.HandleFunc("/", clientHandler.List).Methods("GET")
	r.HandleFunc("/cadastrar", clientHandler.NewForm).Methods("GET")
	r.HandleFunc("/cadastrar", clientHandler.Create).Methods("POST")

	// Client detail and edit
	r.HandleFunc("/cliente/{clientId}", clientHandler.Detail).Methods("GET")
	r.HandleFunc("/editar/{clientId}", clientHandler.EditForm).Methods("GET")
	r.HandleFunc("/editar/{clientId}", clientHandler.Update).Methods("POST")
	r.HandleFunc("/deletar/{clientId}", clientHandler.Delete).Methods("GET")

	// Episodes
	r.HandleFunc("/nova-ficha/{clientId}", episodeHandler.NewForm).Methods("GET")
	r.HandleFunc("/nova-ficha/{clientId}", episodeHandler.Create).Methods("POST")
	r.HandleFunc("/editar-ficha/{episodeId}", episodeHandler.EditForm).Methods("GET")
	r.HandleFunc("/editar-ficha/{episodeId}", episodeHandler.Update).Methods("POST")
	r.HandleFunc("/saida-ficha/{episodeId}", episodeHandler.Finalize).Methods("GET")
	r.HandleFunc("/deletar-ficha/{episodeId}", episodeHandler.Delete).Methods("GET")

	// Documents
	r.HandleFunc("/upload-documento/{clientId}", documentHandler.Upload).Methods("POST")
	r.HandleFunc("/download-documento/{docId}", documentHandler.Download).Methods("GET")
	r.HandleFunc("/deletar-documento/{docId}", documentHandler.Delete).Methods("GET")

	// Export
	r.HandleFunc("/exportar-csv", exportHandler.Download).Methods("GET")

	return r
}
