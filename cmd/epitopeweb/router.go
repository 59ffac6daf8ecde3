package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/interpose/middleware"
	"github.com/justinas/alice"
)

type handler struct {
	*Global

	router *mux.Router
}

func router(config *Global) http.Handler {
	router := mux.NewRouter()
	GET := router.Methods("GET", "HEAD").Subrouter()

	h := handler{Global: config, router: router}

	GET.HandleFunc("/", h.Index).Name("index")
	GET.HandleFunc("/{predictor}/proteins", h.Proteins).Name("proteins")
	GET.HandleFunc("/{predictor}/binders", h.Binders).Name("binders")
	GET.HandleFunc("/{predictor}/binders/{protein}", h.Binders).Name("protein-binders")
	GET.HandleFunc("/{predictor}/regions", h.Regions).Name("regions")
	GET.HandleFunc("/{predictor}/regions/{protein}", h.Regions).Name("protein-regions")

	standard := alice.New(
		// Log all requests to STDOUT
		middleware.GorillaLog(),
	)

	return standard.Then(router)
}
