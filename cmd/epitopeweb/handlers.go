package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

func (h *handler) Index(w http.ResponseWriter, r *http.Request) {
	predictors, err := h.db.Predictors()
	if err != nil {
		JSONError(h, w, r, err)
		return
	}

	JSON(h, w, r, struct {
		Site       string
		Predictors []string
	}{h.Global.Site, predictors})
}

func (h *handler) Proteins(w http.ResponseWriter, r *http.Request) {
	predictor := mux.Vars(r)["predictor"]

	proteins, err := h.db.Proteins(predictor)
	if err != nil {
		JSONError(h, w, r, err)
		return
	}
	if len(proteins) == 0 {
		JSONError(h, w, r, fmt.Errorf("No results for predictor %s", predictor), http.StatusNotFound)
		return
	}

	JSON(h, w, r, proteins)
}

func (h *handler) Binders(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	calls, err := h.db.Calls(vars["predictor"], vars["protein"])
	if err != nil {
		JSONError(h, w, r, err)
		return
	}

	JSON(h, w, r, calls)
}

func (h *handler) Regions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	regions, err := h.db.Regions(vars["predictor"], vars["protein"])
	if err != nil {
		JSONError(h, w, r, err)
		return
	}

	JSON(h, w, r, regions)
}
