package episode

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// EpisodeResponse is the payload backing the episode edit form.
type EpisodeResponse struct {
	Success bool     `json:"success"`
	Episode *Episode `json:"episode"`
}

// NewForm serves GET /nova-ficha/{clientId}.
func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientId")
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"client_id": clientID,
		"today":     time.Now().Format("2006-01-02"),
	})
}

// Create serves POST /nova-ficha/{clientId}: a new episode plus its
// medications for an existing client.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientId")
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, fmt.Sprintf("/nova-ficha/%d", clientID), "Dados do formulário inválidos")
		return
	}

	ep := EpisodeInput{
		EntryDate: r.FormValue("data_entrada"),
		ExitDate:  r.FormValue("data_saida"),
		Notes:     r.FormValue("observacoes"),
	}

	var meds []MedicationInput
	if raw := r.FormValue("medicamentos"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meds); err != nil {
			redirectWithError(w, r, fmt.Sprintf("/nova-ficha/%d", clientID), "Lista de medicamentos inválida")
			return
		}
	}

	if _, err := h.service.CreateEpisode(r.Context(), clientID, ep, meds); err != nil {
		switch {
		case errors.Is(err, ErrClientNotFound):
			redirectWithError(w, r, "/", "Cliente não encontrado")
		case errors.Is(err, ErrMissingEntryDate):
			redirectWithError(w, r, fmt.Sprintf("/nova-ficha/%d", clientID), "Data de entrada é obrigatória")
		default:
			redirectWithError(w, r, "/", "Erro ao criar ficha")
		}
		return
	}

	redirectWithMessage(w, r, fmt.Sprintf("/cliente/%d", clientID), "Ficha criada com sucesso")
}

// EditForm serves GET /editar-ficha/{episodeId}.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	episodeID, ok := pathID(w, r, "episodeId")
	if !ok {
		return
	}

	ep, err := h.service.GetEpisode(r.Context(), episodeID)
	if err != nil {
		if errors.Is(err, ErrEpisodeNotFound) {
			redirectWithError(w, r, "/", "Ficha não encontrada")
			return
		}
		respondError(w, http.StatusInternalServerError, "fetch_failed", "Failed to load episode")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(EpisodeResponse{Success: true, Episode: ep})
}

// Update serves POST /editar-ficha/{episodeId}: episode fields plus the
// full-replace medication list.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	episodeID, ok := pathID(w, r, "episodeId")
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, fmt.Sprintf("/editar-ficha/%d", episodeID), "Dados do formulário inválidos")
		return
	}

	ep := EpisodeInput{
		EntryDate: r.FormValue("data_entrada"),
		ExitDate:  r.FormValue("data_saida"),
		Notes:     r.FormValue("observacoes"),
	}

	var meds []MedicationInput
	if raw := r.FormValue("medicamentos"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meds); err != nil {
			redirectWithError(w, r, fmt.Sprintf("/editar-ficha/%d", episodeID), "Lista de medicamentos inválida")
			return
		}
	}

	if err := h.service.UpdateEpisodeAndMedications(r.Context(), episodeID, ep, meds); err != nil {
		switch {
		case errors.Is(err, ErrEpisodeNotFound):
			redirectWithError(w, r, "/", "Ficha não encontrada")
		case errors.Is(err, ErrMissingEntryDate):
			redirectWithError(w, r, fmt.Sprintf("/editar-ficha/%d", episodeID), "Data de entrada é obrigatória")
		default:
			redirectWithError(w, r, "/", "Erro ao atualizar ficha")
		}
		return
	}

	redirectWithMessage(w, r, "/", "Ficha atualizada com sucesso")
}

// Finalize serves GET /saida-ficha/{episodeId}: stamps today's date as
// the exit date.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	episodeID, ok := pathID(w, r, "episodeId")
	if !ok {
		return
	}

	ep, err := h.service.FinalizeEpisode(r.Context(), episodeID)
	if err != nil {
		if errors.Is(err, ErrEpisodeNotFound) {
			redirectWithError(w, r, "/", "Ficha não encontrada")
			return
		}
		redirectWithError(w, r, "/", "Erro ao registrar saída")
		return
	}

	redirectWithMessage(w, r, fmt.Sprintf("/cliente/%d", ep.ClientID), "Saída registrada com sucesso")
}

// Delete serves GET /deletar-ficha/{episodeId}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	episodeID, ok := pathID(w, r, "episodeId")
	if !ok {
		return
	}

	if err := h.service.DeleteEpisode(r.Context(), episodeID); err != nil {
		if errors.Is(err, ErrEpisodeNotFound) {
			redirectWithError(w, r, "/", "Ficha não encontrada")
			return
		}
		redirectWithError(w, r, "/", "Erro ao excluir ficha")
		return
	}

	redirectWithMessage(w, r, "/", "Ficha excluída com sucesso")
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
