package export

import (
	"encoding/json"
	"log"
	"net/http"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Download serves GET /exportar-csv, streaming the flattened table as a
// CSV attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="clientes.csv"`)

	if err := h.service.WriteCSV(r.Context(), w); err != nil {
		// Headers may already be sent; log and report what we can.
		log.Printf("CSV export failed: %v", err)
		respondError(w, http.StatusInternalServerError, "export_failed", "Failed to export records")
	}
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
}
