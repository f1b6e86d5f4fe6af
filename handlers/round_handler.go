package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-rounds/services"
)

type RoundHandler struct {
	coordinator services.RoundCoordinator
}

func NewRoundHandler(coordinator services.RoundCoordinator) *RoundHandler {
	return &RoundHandler{coordinator: coordinator}
}

type submitScoresRequest struct {
	Entries []services.ScoreEntryInput `json:"entries"`
}

// GetState godoc
// @Summary Состояние раунда
// @Tags rounds
// @Description Снимок для опроса клиентами: статус, готовность участников, рекомендуемый интервал опроса.
// @Produce json
// @Param roundID path int true "Round Session ID"
// @Success 200 {object} models.RoundState
// @Failure 400 {object} map[string]string "Некорректный ID"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 404 {object} map[string]string "Раунд не найден"
// @Security BearerAuth
// @Router /rounds/{roundID} [get]
func (h *RoundHandler) GetState(w http.ResponseWriter, r *http.Request) {
	roundID, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.coordinator.GetRoundState(r.Context(), roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, state, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MarkReady godoc
// @Summary Отметить готовность
// @Tags rounds
// @Description Текущий пользователь отмечает готовность. Повторный вызов ничего не меняет.
// @Produce json
// @Param roundID path int true "Round Session ID"
// @Success 200 {object} models.ReadyResult
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 404 {object} map[string]string "Игрок не участвует в раунде"
// @Security BearerAuth
// @Router /rounds/{roundID}/ready [post]
func (h *RoundHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	roundID, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.coordinator.MarkReady(r.Context(), caller, roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitScores godoc
// @Summary Записать результаты по лунке
// @Tags rounds
// @Description Записи для игроков вне раунда и с невалидными значениями отбрасываются.
// @Accept json
// @Produce json
// @Param roundID path int true "Round Session ID"
// @Param hole path int true "Hole number"
// @Param body body submitScoresRequest true "Результаты"
// @Success 200 {object} map[string]int "saved_count"
// @Failure 400 {object} map[string]string "Лунка вне диапазона / некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Пользователь не участвует в раунде"
// @Failure 404 {object} map[string]string "Раунд не найден"
// @Failure 409 {object} map[string]string "Раунд не в статусе inProgress"
// @Failure 422 {object} map[string]string "Все записи отклонены"
// @Security BearerAuth
// @Router /rounds/{roundID}/holes/{hole}/scores [post]
func (h *RoundHandler) SubmitScores(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	roundID, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	hole, err := getIDFromURL(r, "hole")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input submitScoresRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	saved, err := h.coordinator.SubmitHoleScores(r.Context(), caller, roundID, hole, input.Entries)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"saved_count": saved}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListScores godoc
// @Summary Результаты раунда
// @Tags rounds
// @Produce json
// @Param roundID path int true "Round Session ID"
// @Success 200 {object} map[string]interface{} "scores"
// @Failure 404 {object} map[string]string "Раунд не найден"
// @Security BearerAuth
// @Router /rounds/{roundID}/scores [get]
func (h *RoundHandler) ListScores(w http.ResponseWriter, r *http.Request) {
	roundID, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	scores, err := h.coordinator.ListRoundScores(r.Context(), roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"scores": scores}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Complete godoc
// @Summary Завершить раунд
// @Tags rounds
// @Description Только организатор. Повторный вызов возвращает уже завершенный раунд.
// @Produce json
// @Param roundID path int true "Round Session ID"
// @Success 200 {object} map[string]interface{} "round_session"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Не организатор"
// @Failure 404 {object} map[string]string "Раунд не найден"
// @Security BearerAuth
// @Router /rounds/{roundID}/complete [post]
func (h *RoundHandler) Complete(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	roundID, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.coordinator.CompleteRound(r.Context(), caller, roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round_session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
