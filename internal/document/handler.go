package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
)

// Extra slack over the configured file ceiling for the multipart
// envelope and the other form fields.
const multipartOverhead = 1 << 20

type Handler struct {
	service ServiceInterface
	maxSize int64
}

func NewHandler(service ServiceInterface, maxSize int64) *Handler {
	return &Handler{service: service, maxSize: maxSize}
}

// Upload serves POST /upload-documento/{clientId}. The request body is
// size-capped before any storage interaction.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientId")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxSize + multipartOverhead); err != nil {
		redirectWithError(w, r, fmt.Sprintf("/cliente/%d", clientID), "Arquivo excede o tamanho máximo permitido")
		return
	}

	file, header, err := r.FormFile("arquivo")
	if err != nil {
		redirectWithError(w, r, fmt.Sprintf("/cliente/%d", clientID), "Nenhum arquivo enviado")
		return
	}
	defer file.Close()

	in := UploadInput{
		ClientID:     clientID,
		OriginalName: header.Filename,
		DocType:      r.FormValue("tipo"),
		Notes:        r.FormValue("observacoes"),
		SizeBytes:    header.Size,
	}

	if _, err := h.service.Attach(r.Context(), in, file); err != nil {
		switch {
		case errors.Is(err, ErrClientNotFound):
			redirectWithError(w, r, "/", "Cliente não encontrado")
		case errors.Is(err, ErrUnsupportedFileType):
			redirectWithError(w, r, fmt.Sprintf("/cliente/%d", clientID), "Tipo de arquivo não permitido")
		case errors.Is(err, ErrFileTooLarge):
			redirectWithError(w, r, fmt.Sprintf("/cliente/%d", clientID), "Arquivo excede o tamanho máximo permitido")
		default:
			redirectWithError(w, r, fmt.Sprintf("/cliente/%d", clientID), "Erro ao enviar documento")
		}
		return
	}

	redirectWithMessage(w, r, fmt.Sprintf("/cliente/%d", clientID), "Documento enviado com sucesso")
}

// Download serves GET /download-documento/{docId}, streaming the stored
// file back under its original filename.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "docId")
	if !ok {
		return
	}

	doc, f, err := h.service.Open(r.Context(), docID)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			redirectWithError(w, r, "/", "Documento não encontrado")
			return
		}
		respondError(w, http.StatusInternalServerError, "fetch_failed", "Failed to open document")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", doc.OriginalName))
	w.Header().Set("Content-Length", strconv.FormatInt(doc.SizeBytes, 10))

	io.Copy(w, f)
}

// Delete serves GET /deletar-documento/{docId}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	docID, ok := pathID(w, r, "docId")
	if !ok {
		return
	}

	clientID, err := h.service.Delete(r.Context(), docID)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			redirectWithError(w, r, "/", "Documento não encontrado")
			return
		}
		redirectWithError(w, r, "/", "Erro ao excluir documento")
		return
	}

	redirectWithMessage(w, r, fmt.Sprintf("/cliente/%d", clientID), "Documento excluído com sucesso")
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		redirectWithError(w, r, "/", "Identificador inválido")
		return 0, false
	}
	return id, true
}

func redirectWithMessage(w http.ResponseWriter, r *http.Request, target, msg string) {
	http.Redirect(w, r, target+"?msg="+url.QueryEscape(msg), http.StatusSeeOther)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, target, msg string) {
	http.Redirect(w, r, target+"?erro="+url.QueryEscape(msg), http.StatusSeeOther)
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
}
