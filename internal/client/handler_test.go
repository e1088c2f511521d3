package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/casa-acolhe/records-service/internal/episode"
)

// TestHandlerList_Success tests the listing payload
func TestHandlerList_Success(t *testing.T) {
	mockSvc := &mockService{
		listFunc: func(ctx context.Context, f ListFilter) ([]ClientWithEpisodes, Counts, error) {
			return []ClientWithEpisodes{
				{Client: Client{ID: 1, Name: "Maria Souza"}},
				{Client: Client{ID: 2, Name: "Ana Lima"}},
			}, Counts{TotalClients: 2, ActiveEpisodes: 1}, nil
		},
	}
	handler := NewHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response ListResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if !response.Success {
		t.Error("Expected success to be true")
	}
	if len(response.Clients) != 2 {
		t.Errorf("Expected 2 clients, got %d", len(response.Clients))
	}
	if response.Counts.TotalClients != 2 {
		t.Errorf("Expected total 2, got %d", response.Counts.TotalClients)
	}
	if response.Meta.TotalRecords != 2 {
		t.Errorf("Expected 2 total records in meta, got %d", response.Meta.TotalRecords)
	}
}

// TestHandlerList_FiltersPassedThrough tests query params reaching the service
func TestHandlerList_FiltersPassedThrough(t *testing.T) {
	var gotFilter ListFilter
	mockSvc := &mockService{
		listFunc: func(ctx context.Context, f ListFilter) ([]ClientWithEpisodes, Counts, error) {
			gotFilter = f
			return nil, Counts{}, nil
		},
	}
	handler := NewHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/?busca=maria&status=ativo&data_inicio=2026-01-01&data_fim=2026-02-01", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if gotFilter.Search != "maria" {
		t.Errorf("Expected search 'maria', got '%s'", gotFilter.Search)
	}
	if gotFilter.Status != "ativo" {
		t.Errorf("Expected status 'ativo', got '%s'", gotFilter.Status)
	}
	if gotFilter.EntryFrom != "2026-01-01" || gotFilter.EntryTo != "2026-02-01" {
		t.Errorf("Expected date range passed through, got %s..%s", gotFilter.EntryFrom, gotFilter.EntryTo)
	}
}

// TestHandlerList_Pagination tests page slicing of the listing
func TestHandlerList_Pagination(t *testing.T) {
	mockSvc := &mockService{
		listFunc: func(ctx context.Context, f ListFilter) ([]ClientWithEpisodes, Counts, error) {
			clients := make([]ClientWithEpisodes, 5)
			for i := range clients {
				clients[i] = ClientWithEpisodes{Client: Client{ID: int64(i + 1)}}
			}
			return clients, Counts{TotalClients: 5}, nil
		},
	}
	handler := NewHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/?page=2&limit=2", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	var response ListResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if len(response.Clients) != 2 {
		t.Fatalf("Expected 2 clients on page 2, got %d", len(response.Clients))
	}
	if response.Clients[0].ID != 3 {
		t.Errorf("Expected first client on page 2 to be id 3, got %d", response.Clients[0].ID)
	}
	if response.Meta.TotalPages != 3 {
		t.Errorf("Expected 3 total pages, got %d", response.Meta.TotalPages)
	}
}

// TestHandlerCreate_Success tests the redirect after a successful registration
func TestHandlerCreate_Success(t *testing.T) {
	mockSvc := &mockService{
		createFunc: func(ctx context.Context, c ClientInput, ep episode.EpisodeInput, meds []episode.MedicationInput, family []FamilyMemberInput) (int64, error) {
			if c.Name != "Maria Souza" {
				t.Errorf("Expected name 'Maria Souza', got '%s'", c.Name)
			}
			if len(meds) != 1 || meds[0].Name != "Dipirona" {
				t.Errorf("Expected medication list decoded from form, got %+v", meds)
			}
			return 42, nil
		},
	}
	handler := NewHandler(mockSvc)

	form := url.Values{}
	form.Set("nome", "Maria Souza")
	form.Set("cpf", "123.456.789-01")
	form.Set("email", "maria@example.com")
	form.Set("telefone", "11999990000")
	form.Set("data_entrada", "2026-01-10")
	form.Set("medicamentos", `[{"nome":"Dipirona","dosagem":"500mg","frequencia":"8h"}]`)

	req := httptest.NewRequest(http.MethodPost, "/cadastrar", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected status 303, got %d", rec.Code)
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/cliente/42?msg=") {
		t.Errorf("Expected redirect to /cliente/42 with message, got '%s'", location)
	}
}

// TestHandlerCreate_Duplicate tests the flash message naming the existing client
func TestHandlerCreate_Duplicate(t *testing.T) {
	mockSvc := &mockService{
		createFunc: func(ctx context.Context, c ClientInput, ep episode.EpisodeInput, meds []episode.MedicationInput, family []FamilyMemberInput) (int64, error) {
			return 0, &DuplicateIdentifierError{NationalID: "12345678901", ExistingID: 7, ExistingName: "Ana Lima"}
		},
	}
	handler := NewHandler(mockSvc)

	form := url.Values{}
	form.Set("nome", "Maria Souza")
	form.Set("cpf", "12345678901")
	form.Set("email", "maria@example.com")
	form.Set("telefone", "1")
	form.Set("data_entrada", "2026-01-10")

	req := httptest.NewRequest(http.MethodPost, "/cadastrar", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected status 303, got %d", rec.Code)
	}
	location, _ := url.QueryUnescape(rec.Header().Get("Location"))
	if !strings.Contains(location, "Ana Lima") {
		t.Errorf("Expected flash message naming the existing client, got '%s'", location)
	}
	if !strings.HasPrefix(location, "/cadastrar?erro=") {
		t.Errorf("Expected redirect back to the form, got '%s'", location)
	}
}

// TestHandlerCreate_InvalidMedicationJSON tests malformed embedded JSON
func TestHandlerCreate_InvalidMedicationJSON(t *testing.T) {
	handler := NewHandler(&mockService{})

	form := url.Values{}
	form.Set("nome", "Maria")
	form.Set("medicamentos", "{not json")

	req := httptest.NewRequest(http.MethodPost, "/cadastrar", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected status 303, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Location"), "/cadastrar?erro=") {
		t.Errorf("Expected redirect back with error, got '%s'", rec.Header().Get("Location"))
	}
}

// TestHandlerDetail_Success tests the nested detail payload
func TestHandlerDetail_Success(t *testing.T) {
	mockSvc := &mockService{
		detailFunc: func(ctx context.Context, clientID int64) (*ClientDetail, error) {
			return &ClientDetail{
				Client: Client{ID: clientID, Name: "Maria Souza"},
			}, nil
		},
	}
	handler := NewHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/cliente/7", nil)
	req = mux.SetURLVars(req, map[string]string{"clientId": "7"})
	rec := httptest.NewRecorder()

	handler.Detail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response DetailResponse
	json.NewDecoder(rec.Body).Decode(&response)

	if response.Client == nil || response.Client.ID != 7 {
		t.Errorf("Expected client 7 in response, got %+v", response.Client)
	}
}

// TestHandlerDetail_NotFound tests the redirect for an unknown client
func TestHandlerDetail_NotFound(t *testing.T) {
	mockSvc := &mockService{
		detailFunc: func(ctx context.Context, clientID int64) (*ClientDetail, error) {
			return nil, ErrClientNotFound
		},
	}
	handler := NewHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/cliente/999", nil)
	req = mux.SetURLVars(req, map[string]string{"clientId": "999"})
	rec := httptest.NewRecorder()

	handler.Detail(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected status 303, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Location"), "/?erro=") {
		t.Errorf("Expected redirect to listing with error, got '%s'", rec.Header().Get("Location"))
	}
}

// TestHandlerDetail_InvalidID tests a non-numeric path id
func TestHandlerDetail_InvalidID(t *testing.T) {
	handler := NewHandler(&mockService{})

	req := httptest.NewRequest(http.MethodGet, "/cliente/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"clientId": "abc"})
	rec := httptest.NewRecorder()

	handler.Detail(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("Expected status 303, got %d", rec.Code)
	}
}

// TestHandlerUpdate_Success tests the redirect after a successful edit
func TestHandlerUpdate_Success(t *testing.T) {
	mockSvc := &mockService{
		updateFunc: func(ctx context.Context, clientID int64, c ClientInput, family []FamilyMemberInput) error {
			if clientID != 7 {
				t.Errorf("Expected client id 7, got %d", clientID)
			}
			return nil
		},
	}
	handler := NewHandler(mockSvc)

	form := url.Values{}
	form.Set("nome", "Maria Souza")
	form.Set("email", "maria@example.com")
	form.Set("telefone", "11999990000")

	req := httptest.NewRequest(http.MethodPost, "/editar/7", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = mux.SetURLVars(req, map[string]string{"clientId": "7"})
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected status 303, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Location"), "/cliente/7?msg=") {
		t.Errorf("Expected redirect to /cliente/7, got '%s'", rec.Header().Get("Location"))
	}
}

// TestHandlerDelete_Success tests the redirect after deletion
func TestHandlerDelete_Success(t *testing.T) {
	mockSvc := &mockService{
		deleteFunc: func(ctx context.Context, clientID int64) error {
			return nil
		},
	}
	handler := NewHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/deletar/7", nil)
	req = mux.SetURLVars(req, map[string]string{"clientId": "7"})
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected status 303, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Location"), "/?msg=") {
		t.Errorf("Expected redirect to listing with message, got '%s'", rec.Header().Get("Location"))
	}
}

// mockService is a function-field mock of ServiceInterface
type mockService struct {
	createFunc func(ctx context.Context, c ClientInput, ep episode.EpisodeInput, meds []episode.MedicationInput, family []FamilyMemberInput) (int64, error)
	updateFunc func(ctx context.Context, clientID int64, c ClientInput, family []FamilyMemberInput) error
	deleteFunc func(ctx context.Context, clientID int64) error
	detailFunc func(ctx context.Context, clientID int64) (*ClientDetail, error)
	listFunc   func(ctx context.Context, f ListFilter) ([]ClientWithEpisodes, Counts, error)
}

func (m *mockService) CreateClientWithEpisode(ctx context.Context, c ClientInput, ep episode.EpisodeInput, meds []episode.MedicationInput, family []FamilyMemberInput) (int64, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, c, ep, meds, family)
	}
	return 0, errors.New("not implemented")
}

func (m *mockService) UpdateClientAndFamily(ctx context.Context, clientID int64, c ClientInput, family []FamilyMemberInput) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, clientID, c, family)
	}
	return errors.New("not implemented")
}

func (m *mockService) DeleteClient(ctx context.Context, clientID int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, clientID)
	}
	return errors.New("not implemented")
}

func (m *mockService) GetClientDetail(ctx context.Context, clientID int64) (*ClientDetail, error) {
	if m.detailFunc != nil {
		return m.detailFunc(ctx, clientID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) ListClients(ctx context.Context, f ListFilter) ([]ClientWithEpisodes, Counts, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, f)
	}
	return nil, Counts{}, errors.New("not implemented")
}
