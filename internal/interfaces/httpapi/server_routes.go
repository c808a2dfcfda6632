package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerScheduleRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/seasons/{season}/games", handler.ListSeasonGames)
	mux.HandleFunc("GET /v1/seasons/{season}/weeks/{week}/games", handler.ListWeekGames)
	mux.HandleFunc("GET /v1/seasons/{season}/weeks/{week}/lock", handler.GetWeekLockState)
	mux.HandleFunc("GET /v1/games/completed", handler.ListCompletedGames)
}

func registerScoringRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/games/{gameID}/points", handler.ListGamePoints)
}

func registerDraftRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/drafts/{draftID}/order", handler.GetDraftOrder)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	guard := func(h http.HandlerFunc) http.Handler {
		return RequireInternalJobToken(internalJobToken, h)
	}

	mux.Handle("PUT /v1/seasons/{season}/weeks/{week}/override", guard(handler.SetWeekOverride))
	mux.Handle("POST /v1/games/{gameID}/score", guard(handler.ScoreGame))
	mux.Handle("PUT /v1/drafts/{draftID}/order", guard(handler.ReorderDraft))
	mux.Handle("POST /v1/drafts/{draftID}/finalize", guard(handler.FinalizeDraft))
	mux.Handle("POST /v1/internal/sync/schedule", guard(handler.RunScheduleSync))
	mux.Handle("DELETE /v1/admin/schedule-cache", guard(handler.ClearScheduleCache))
}
