package handlers

import (
	"net/http"

	"github.com/sportlink/sportlink-backend/middleware"
	"github.com/sportlink/sportlink-backend/models"
	"github.com/sportlink/sportlink-backend/repositories"
	"github.com/sportlink/sportlink-backend/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(tournamentService services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, role, err := actorFromContext(r)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	var input services.TournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), actorID, role, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListTournamentsFilter{
		Limit:  queryInt(r, "limit", 20),
		Offset: queryInt(r, "offset", 0),
	}
	if sport := r.URL.Query().Get("sport"); sport != "" {
		filter.Sport = &sport
	}
	if organizerID := queryInt(r, "organizer_id", 0); organizerID > 0 {
		filter.OrganizerID = &organizerID
	}
	if rawStatus := r.URL.Query().Get("status"); rawStatus != "" {
		status := models.TournamentStatus(rawStatus)
		filter.Status = &status
	}

	tournaments, err := h.tournamentService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actorID, role, err := actorFromContext(r)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	var input services.TournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Update(r.Context(), actorID, role, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actorID, role, err := actorFromContext(r)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Delete(r.Context(), actorID, role, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type applyInput struct {
	Mode   string `json:"mode"`
	TeamID *int   `json:"team_id"`
}

// Apply godoc
// @Summary Заявка на участие в турнире
// @Description Команду заявляет капитан, игрок заявляется сам. При заполнении
// @Description вместимости автоматически генерируется квалификация.
// @Tags tournaments
// @Accept json
// @Produce json
// @Param id path int true "ID турнира"
// @Param input body applyInput true "Режим участия"
// @Success 201 {object} map[string]interface{}
// @Router /tournaments/{id}/apply [post]
func (h *TournamentHandler) Apply(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	var input applyInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, generated, err := h.tournamentService.Register(
		r.Context(), tournamentID, actorID, models.ParticipantMode(input.Mode), input.TeamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"participant":       participant,
		"matches_generated": generated,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Withdraw снимает заявку; запись удаляется безвозвратно.
func (h *TournamentHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	var input applyInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Withdraw(
		r.Context(), tournamentID, actorID, models.ParticipantMode(input.Mode), input.TeamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TournamentHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participants, err := h.tournamentService.ListParticipants(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type generateMatchesInput struct {
	Phase string `json:"phase"`
}

// GenerateMatches godoc
// @Summary Генерация кругового турнира квалификации
// @Tags tournaments
// @Accept json
// @Produce json
// @Param id path int true "ID турнира"
// @Param input body generateMatchesInput true "Фаза"
// @Success 201 {object} map[string]interface{}
// @Router /tournaments/{id}/generate-matches [post]
func (h *TournamentHandler) GenerateMatches(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	var input generateMatchesInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.tournamentService.GenerateMatches(
		r.Context(), tournamentID, actorID, models.MatchPhase(input.Phase))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"count":   result.Count,
		"matches": result.Matches,
		"phase":   result.Phase,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// QualifierStandings godoc
// @Summary Текущая таблица квалификации
// @Tags tournaments
// @Produce json
// @Param id path int true "ID турнира"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/qualifier-standings [get]
func (h *TournamentHandler) QualifierStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.tournamentService.QualifierStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateBracket godoc
// @Summary Генерация сетки на вылет по итогам квалификации
// @Tags tournaments
// @Accept json
// @Produce json
// @Param id path int true "ID турнира"
// @Param input body services.BracketInput true "Число проходящих и опциональный посев"
// @Success 201 {object} map[string]interface{}
// @Router /tournaments/{id}/generate-bracket [post]
func (h *TournamentHandler) GenerateBracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	var input services.BracketInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.tournamentService.GenerateBracket(r.Context(), tournamentID, actorID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"rounds":        result.Rounds,
		"total_matches": result.TotalMatches,
		"matches":       result.Matches,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var filter repositories.ListMatchesFilter
	if rawPhase := r.URL.Query().Get("phase"); rawPhase != "" {
		phase := models.MatchPhase(rawPhase)
		filter.Phase = &phase
	}
	if round := queryInt(r, "round", 0); round > 0 {
		filter.Round = &round
	}
	if rawStatus := r.URL.Query().Get("status"); rawStatus != "" {
		status := models.MatchStatus(rawStatus)
		filter.Status = &status
	}

	matches, err := h.tournamentService.ListMatches(r.Context(), tournamentID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateMatch godoc
// @Summary Запись результата матча или заполнение заготовки сетки
// @Tags tournaments
// @Accept json
// @Produce json
// @Param id path int true "ID турнира"
// @Param matchID path int true "ID матча"
// @Param input body services.MatchUpdateInput true "Результат и/или стороны"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/matches/{matchID} [put]
func (h *TournamentHandler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	var input services.MatchUpdateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.tournamentService.UpdateMatch(r.Context(), actorID, tournamentID, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// actorFromContext достаёт идентификатор и роль из JWT claims запроса.
func actorFromContext(r *http.Request) (int, models.UserRole, error) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return 0, "", err
	}
	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		return 0, "", err
	}
	return actorID, models.UserRole(role), nil
}
