package pricing

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"ratequote-backend/internal/components/telemetry"
	"ratequote-backend/internal/response"
	"ratequote-backend/internal/scenario"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	report_handler_panic  = "handler.panic"
	report_handler_encode = "handler.encode"
)

const maxBodyBytes = 1 << 20

// legacyRoutes are the per-portal endpoints older callers use.
var legacyRoutes = map[string]string{
	"/api/get-ln-pricing": "loannex",
	"/api/get-lp-pricing": "lenderprice",
}

type Handler struct {
	service *Service
	tel     telemetry.API
}

func NewHandler(service *Service, tel telemetry.API) Handler {
	return Handler{service: service, tel: telemetry.NewScopedAPI("pricing", tel)}
}

// Register mounts the pricing endpoints on mux.
func (h Handler) Register(mux *http.ServeMux) {
	mux.Handle("/api/pricing/{portal}", h.wrap("pricing", func(r *http.Request) string {
		return r.PathValue("portal")
	}))
	for route, portal := range legacyRoutes {
		mux.Handle(route, h.wrap(route, func(*http.Request) string { return portal }))
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		h.write(w, http.StatusOK, map[string]any{"ok": true, "portals": h.service.Portals()})
	})
}

func (h Handler) wrap(operation string, portal func(*http.Request) string) http.Handler {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.tel.ReportBroken(report_handler_panic, fmt.Errorf("%v", rec), slog.String("path", r.URL.Path))
				h.write(w, http.StatusInternalServerError, response.Response{
					Error:   response.ClassExtraction,
					Message: "internal error",
				})
			}
		}()

		header := w.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type")
		header.Set("Cache-Control", "no-store")

		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
			return
		case http.MethodPost:
		default:
			h.write(w, http.StatusMethodNotAllowed, response.Response{
				Error:   response.ClassConfiguration,
				Message: "method not allowed",
			})
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			h.write(w, http.StatusBadRequest, response.Response{
				Error:   response.ClassParsing,
				Message: "could not read request body",
			})
			return
		}
		payload, err := scenario.DecodePayload(body)
		if err != nil {
			h.write(w, http.StatusBadRequest, response.Response{
				Error:   response.ClassParsing,
				Message: err.Error(),
			})
			return
		}

		resp := h.service.Quote(r.Context(), portal(r), payload)
		h.write(w, http.StatusOK, resp)
	})
	return otelhttp.NewHandler(handler, operation)
}

func (h Handler) write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		h.tel.ReportWarning(report_handler_encode, err)
	}
}
