package query

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wisbric/vigil/internal/auth"
	"github.com/wisbric/vigil/internal/httpserver"
)

// Handler exposes the entity-query endpoint. It registers onto the same
// router as the entity handler, under the "/entities" prefix.
type Handler struct {
	composer *Composer
	public   bool
}

func NewHandler(composer *Composer, public bool) *Handler {
	return &Handler{composer: composer, public: public}
}

// Register mounts this handler's route onto r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/{uuid}/query", h.handleQuery)
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())
	if !h.public && identity == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	includeLifted := r.URL.Query().Get("include_lifted") == "true"
	canViewConfidential := identity.HasCapability(auth.CapabilityManageBlacklist)

	result, err := h.composer.QueryByUUID(r.Context(), chi.URLParam(r, "uuid"), canViewConfidential, includeLifted)
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, result)
}
