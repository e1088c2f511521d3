package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/casa-acolhe/records-service/internal/episode"
	"github.com/casa-acolhe/records-service/internal/pagination"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ListResponse is the payload backing the listing view.
type ListResponse struct {
	Success bool                 `json:"success"`
	Clients []ClientWithEpisodes `json:"clients"`
	Counts  Counts               `json:"counts"`
	Meta    pagination.Meta      `json:"meta"`
}

// DetailResponse is the payload backing the client detail view.
type DetailResponse struct {
	Success bool          `json:"success"`
	Client  *ClientDetail `json:"client"`
}

// List serves GET / with the optional busca/status/data_inicio/data_fim
// filters and page/limit pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Search:    q.Get("busca"),
		Status:    q.Get("status"),
		EntryFrom: q.Get("data_inicio"),
		EntryTo:   q.Get("data_fim"),
	}

	clients, counts, err := h.service.ListClients(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "fetch_failed", "Failed to load client listing")
		return
	}

	params := pagination.ParseParams(r)
	start, end := params.Bounds(len(clients))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{
		Success: true,
		Clients: clients[start:end],
		Counts:  counts,
		Meta:    pagination.BuildMeta(params, len(clients)),
	})
}

// NewForm serves GET /cadastrar. Rendering is external; the handler only
// supplies the form bootstrap data.
func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"today":   time.Now().Format("2006-01-02"),
	})
}

// Create serves POST /cadastrar: client + first episode + medications +
// family contacts in one atomic write.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/cadastrar", "Dados do formulário inválidos")
		return
	}

	c := ClientInput{
		Name:       r.FormValue("nome"),
		NationalID: r.FormValue("cpf"),
		Email:      r.FormValue("email"),
		Phone:      r.FormValue("telefone"),
	}
	ep := episode.EpisodeInput{
		EntryDate: r.FormValue("data_entrada"),
		ExitDate:  r.FormValue("data_saida"),
		Notes:     r.FormValue("observacoes"),
	}

	var meds []episode.MedicationInput
	if err := decodeJSONField(r.FormValue("medicamentos"), &meds); err != nil {
		redirectWithError(w, r, "/cadastrar", "Lista de medicamentos inválida")
		return
	}
	var family []FamilyMemberInput
	if err := decodeJSONField(r.FormValue("familiares"), &family); err != nil {
		redirectWithError(w, r, "/cadastrar", "Lista de familiares inválida")
		return
	}

	clientID, err := h.service.CreateClientWithEpisode(r.Context(), c, ep, meds, family)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			redirectWithError(w, r, "/cadastrar", msg)
			return
		}
		redirectWithError(w, r, "/", "Erro ao cadastrar cliente")
		return
	}

	redirectWithMessage(w, r, fmt.Sprintf("/cliente/%d", clientID), "Cliente cadastrado com sucesso")
}

// Detail serves GET /cliente/{clientId}.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientId")
	if !ok {
		return
	}

	detail, err := h.service.GetClientDetail(r.Context(), clientID)
	if err != nil {
		if errors.Is(err, ErrClientNotFound) {
			redirectWithError(w, r, "/", "Cliente não encontrado")
			return
		}
		respondError(w, http.StatusInternalServerError, "fetch_failed", "Failed to load client")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DetailResponse{Success: true, Client: detail})
}

// EditForm serves GET /editar/{clientId}: the current record for the
// externally rendered edit form.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	h.Detail(w, r)
}

// Update serves POST /editar/{clientId}: mutable client fields plus the
// full-replace family list.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientId")
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, fmt.Sprintf("/editar/%d", clientID), "Dados do formulário inválidos")
		return
	}

	c := ClientInput{
		Name:  r.FormValue("nome"),
		Email: r.FormValue("email"),
		Phone: r.FormValue("telefone"),
	}

	var family []FamilyMemberInput
	if err := decodeJSONField(r.FormValue("familiares"), &family); err != nil {
		redirectWithError(w, r, fmt.Sprintf("/editar/%d", clientID), "Lista de familiares inválida")
		return
	}

	if err := h.service.UpdateClientAndFamily(r.Context(), clientID, c, family); err != nil {
		if errors.Is(err, ErrClientNotFound) {
			redirectWithError(w, r, "/", "Cliente não encontrado")
			return
		}
		if msg, ok := validationMessage(err); ok {
			redirectWithError(w, r, fmt.Sprintf("/editar/%d", clientID), msg)
			return
		}
		redirectWithError(w, r, "/", "Erro ao atualizar cliente")
		return
	}

	redirectWithMessage(w, r, fmt.Sprintf("/cliente/%d", clientID), "Cliente atualizado com sucesso")
}

// Delete serves GET /deletar/{clientId}. Kept on a safe method for
// compatibility with the existing front end.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientId")
	if !ok {
		return
	}

	if err := h.service.DeleteClient(r.Context(), clientID); err != nil {
		if errors.Is(err, ErrClientNotFound) {
			redirectWithError(w, r, "/", "Cliente não encontrado")
			return
		}
		redirectWithError(w, r, "/", "Erro ao excluir cliente")
		return
	}

	redirectWithMessage(w, r, "/", "Cliente excluído com sucesso")
}

// validationMessage maps validation and duplicate errors to the flash
// message shown to the user; other errors report generically.
func validationMessage(err error) (string, bool) {
	var dup *DuplicateIdentifierError
	if errors.As(err, &dup) {
		if dup.ExistingName != "" {
			return "CPF já cadastrado para o cliente " + dup.ExistingName, true
		}
		return "CPF já cadastrado", true
	}

	switch {
	case errors.Is(err, ErrMissingName):
		return "Nome é obrigatório", true
	case errors.Is(err, ErrInvalidNationalID):
		return "CPF inválido: informe 11 dígitos", true
	case errors.Is(err, ErrMissingEmail):
		return "Email é obrigatório", true
	case errors.Is(err, ErrInvalidEmail):
		return "Email inválido", true
	case errors.Is(err, ErrMissingPhone):
		return "Telefone é obrigatório", true
	case errors.Is(err, episode.ErrMissingEntryDate):
		return "Data de entrada é obrigatória", true
	}
	return "", false
}

func decodeJSONField(raw string, v interface{}) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), v)
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
