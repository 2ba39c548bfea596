package submission

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pharmalink/pharmalink/internal/platform/httpx"
	"github.com/pharmalink/pharmalink/internal/reporting"
	"github.com/pharmalink/pharmalink/internal/shared"
)

// Handler exposes the submission intake endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a submission Handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes mounts the submission endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/submissions/{pharmacy}", h.prefill)
	r.Post("/submissions", h.submit)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request", "malformed JSON body")
		return
	}

	sub, err := h.service.Submit(r.Context(), in)
	if err != nil {
		var verr validator.ValidationErrors
		switch {
		case errors.As(err, &verr):
			httpx.Problem(w, http.StatusBadRequest, "Invalid request", verr.Error())
		case errors.Is(err, shared.ErrUnknownPharmacy):
			httpx.Problem(w, http.StatusBadRequest, "Invalid request", shared.UserSafeMessage(err))
		case errors.Is(err, reporting.ErrBadWeek):
			httpx.Problem(w, http.StatusBadRequest, "Invalid request", "week must be an ISO date (YYYY-MM-DD)")
		default:
			h.logger.Error("submit failed", slog.String("pharmacy", in.Pharmacy), slog.Any("error", err))
			// A failed write blocks the submission; the site needs the real
			// reason to decide whether to retry or escalate.
			httpx.Problem(w, http.StatusInternalServerError, "Internal error", fmt.Sprintf("could not store submission: %v", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}

func (h *Handler) prefill(w http.ResponseWriter, r *http.Request) {
	pharmacy := chi.URLParam(r, "pharmacy")
	if pharmacy == "" {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request", "pharmacy is required")
		return
	}
	week, err := reporting.ParseWeek(r.URL.Query().Get("week"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request", "week must be an ISO date (YYYY-MM-DD)")
		return
	}

	sub, err := h.service.Prefill(r.Context(), pharmacy, week)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrUnknownPharmacy):
			httpx.Problem(w, http.StatusBadRequest, "Invalid request", shared.UserSafeMessage(err))
		case errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not found", "no submission stored for that pharmacy and week")
		default:
			h.logger.Error("prefill failed", slog.String("pharmacy", pharmacy), slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal error", "could not load submission")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}
