package evidence

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wisbric/vigil/internal/auth"
	"github.com/wisbric/vigil/internal/httpserver"
)

// Handler exposes evidence submission, lookup, and deletion.
type Handler struct {
	manager *Manager
	public  bool
}

func NewHandler(manager *Manager, public bool) *Handler {
	return &Handler{manager: manager, public: public}
}

// Routes returns the sub-router mounted at "/evidence".
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(auth.RequireCapability(auth.CapabilityManageBlacklist)).
		Post("/submit", h.handleSubmit)
	r.Get("/{uuid}", h.handleGet)
	r.With(auth.RequireCapability(auth.CapabilityManageBlacklist)).
		Delete("/{uuid}/delete", h.handleDelete)
	r.With(auth.RequireCapability(auth.CapabilityManageBlacklist)).
		Post("/{uuid}/confidential", h.handleSetConfidential)
	return r
}

type submitRequest struct {
	Entity       string  `json:"entity" validate:"required,uuid"`
	TextContent  *string `json:"text_content,omitempty"`
	Note         *string `json:"note,omitempty"`
	Tag          *string `json:"tag,omitempty"`
	Confidential bool    `json:"confidential"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	identity := auth.FromContext(r.Context())
	rec, err := h.manager.Add(r.Context(), req.Entity, identity.UUID, req.TextContent, req.Note, req.Tag, req.Confidential)
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, h.toWire(r, rec))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	if !h.public && auth.FromContext(r.Context()) == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	rec, err := h.manager.Get(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, h.toWire(r, rec))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())
	if err := h.manager.Delete(r.Context(), chi.URLParam(r, "uuid"), identity.UUID); err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.RespondOK(w)
}

type confidentialRequest struct {
	Confidential bool `json:"confidential"`
}

func (h *Handler) handleSetConfidential(w http.ResponseWriter, r *http.Request) {
	var req confidentialRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}
	rec, err := h.manager.SetConfidential(r.Context(), chi.URLParam(r, "uuid"), req.Confidential)
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, h.toWire(r, rec))
}

// Wire is the JSON representation of an evidence row. Confidential contents
// are nulled out for callers without manage_blacklist; the confidential
// flag and count remain visible regardless.
type Wire struct {
	UUID         string  `json:"uuid"`
	Entity       string  `json:"entity"`
	Operator     string  `json:"operator"`
	Confidential bool    `json:"confidential"`
	TextContent  *string `json:"text_content"`
	Note         *string `json:"note"`
	Tag          *string `json:"tag"`
	Created      int64   `json:"created"`
}

func (h *Handler) toWire(r *http.Request, rec *Record) Wire {
	return ToWire(rec, canViewConfidential(r))
}

func canViewConfidential(r *http.Request) bool {
	id := auth.FromContext(r.Context())
	return id.HasCapability(auth.CapabilityManageBlacklist)
}

// ToWire renders rec for a caller whose confidential-viewing right is
// canViewConfidential. Non-confidential content is always included.
func ToWire(rec *Record, canViewConfidential bool) Wire {
	w := Wire{
		UUID:         rec.UUID,
		Entity:       rec.Entity,
		Operator:     rec.Operator,
		Confidential: rec.Confidential,
		Tag:          rec.Tag,
		Created:      rec.Created.Unix(),
	}
	if !rec.Confidential || canViewConfidential {
		w.TextContent = rec.TextContent
		w.Note = rec.Note
	}
	return w
}

// ToWireList renders a list of records, applying the same confidentiality
// rule to every element.
func ToWireList(recs []*Record, canViewConfidential bool) []Wire {
	out := make([]Wire, 0, len(recs))
	for _, rec := range recs {
		out = append(out, ToWire(rec, canViewConfidential))
	}
	return out
}
