package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

type healthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

func (app *App) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", app.healthHandler).Methods(http.MethodGet)
	return r
}

func (app *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Backend: "memory"}
	code := http.StatusOK

	if app.db != nil {
		resp.Backend = "postgres"
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := app.db.PingContext(ctx); err != nil {
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
