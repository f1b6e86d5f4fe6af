package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-rounds/services"
)

type TournamentHandler struct {
	coordinator services.RoundCoordinator
}

func NewTournamentHandler(coordinator services.RoundCoordinator) *TournamentHandler {
	return &TournamentHandler{coordinator: coordinator}
}

type startRoundRequest struct {
	RoundNumber *int `json:"round_number"`
}

// StartRound godoc
// @Summary Начать раунд
// @Tags tournaments
// @Description Только организатор. Создает сессию раунда или возвращает уже существующую.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body startRoundRequest false "Номер раунда (по умолчанию 1)"
// @Success 201 {object} services.StartRoundResult "Раунд создан"
// @Success 200 {object} services.StartRoundResult "Раунд уже существовал"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Не организатор"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 409 {object} map[string]string "Турнир не в статусе IN_PROGRESS или без участников"
// @Failure 422 {object} map[string]string "Некорректный номер раунда"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/rounds [post]
func (h *TournamentHandler) StartRound(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to start a round")
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input startRoundRequest
	if err := readOptionalJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roundNumber := 1
	if input.RoundNumber != nil {
		roundNumber = *input.RoundNumber
	}

	result, err := h.coordinator.StartRound(r.Context(), caller, tournamentID, roundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	if err := writeJSON(w, status, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Finalize godoc
// @Summary Подвести итоги турнира
// @Tags tournaments
// @Description Только организатор, турнир должен быть COMPLETED. Таблица пересчитывается полностью.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]int "standings_written"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Не организатор"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 409 {object} map[string]string "Турнир не завершен"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/finalize [post]
func (h *TournamentHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to finalize a tournament")
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	written, err := h.coordinator.FinalizeTournament(r.Context(), caller, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings_written": written}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListStandings godoc
// @Summary Итоговая таблица турнира
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{} "standings"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID}/standings [get]
func (h *TournamentHandler) ListStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.coordinator.ListStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
