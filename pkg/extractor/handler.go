package extractor

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wisbric/vigil/internal/auth"
	"github.com/wisbric/vigil/internal/httpserver"
	"github.com/wisbric/vigil/internal/telemetry"
)

// Handler exposes content scanning.
type Handler struct {
	scanner *Scanner
	public  bool
}

func NewHandler(scanner *Scanner, public bool) *Handler {
	return &Handler{scanner: scanner, public: public}
}

// Routes returns the sub-router mounted at "/scan".
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.handleScan)
	return r
}

type scanRequest struct {
	Text          string `json:"text" validate:"required"`
	Limit         int    `json:"limit,omitempty"`
	IncludeLifted bool   `json:"include_lifted,omitempty"`
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())
	if !h.public {
		if identity == nil {
			httpserver.RespondError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		if !identity.HasCapability(auth.CapabilityManageBlacklist) && !identity.HasCapability(auth.CapabilityIsClient) {
			httpserver.RespondError(w, http.StatusForbidden, "insufficient capability")
			return
		}
	}

	var req scanRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	telemetry.ScansTotal.Inc()
	canViewConfidential := identity.HasCapability(auth.CapabilityManageBlacklist)

	results, err := h.scanner.ScanContent(r.Context(), req.Text, req.Limit, canViewConfidential, req.IncludeLifted)
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, results)
}
