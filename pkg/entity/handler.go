package entity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wisbric/vigil/internal/auth"
	"github.com/wisbric/vigil/internal/httpserver"
)

// Handler exposes entity registration, lookup, and deletion. It registers
// onto a router shared with the query composer under the "/entities" prefix.
type Handler struct {
	manager *Manager
	public  bool
}

func NewHandler(manager *Manager, public bool) *Handler {
	return &Handler{manager: manager, public: public}
}

// operatorUUID extracts the caller's uuid for audit attribution, or nil for
// an unauthenticated (public) request.
func operatorUUID(r *http.Request) *string {
	identity := auth.FromContext(r.Context())
	if identity == nil {
		return nil
	}
	return &identity.UUID
}

// Register mounts this handler's routes onto r.
func (h *Handler) Register(r chi.Router) {
	r.With(auth.RequireAnyCapability(auth.CapabilityManageBlacklist, auth.CapabilityIsClient)).
		Post("/push", h.handlePush)
	r.Get("/{uuid}", h.handleGet)
	r.Get("/", h.handleList)
	r.With(auth.RequireCapability(auth.CapabilityManageBlacklist)).
		Delete("/{uuid}/delete", h.handleDelete)
}

type pushRequest struct {
	Host string  `json:"host" validate:"required,max=255"`
	ID   *string `json:"id,omitempty" validate:"omitempty,max=255"`
}

func (h *Handler) handlePush(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	rec, err := h.manager.Register(r.Context(), req.Host, req.ID, operatorUUID(r))
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}

	httpserver.Respond(w, http.StatusOK, ToWire(rec))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	if !h.public && auth.FromContext(r.Context()) == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	rec, err := h.manager.GetByUUID(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, ToWire(rec))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if !h.public && auth.FromContext(r.Context()) == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	params, err := httpserver.ParseOffsetParams(r)
	if err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs, err := h.manager.List(r.Context(), params.Limit, params.Offset)
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	total, err := h.manager.Count(r.Context())
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, httpserver.NewOffsetPage(toWireList(recs), params, total))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	if err := h.manager.DeleteByUUID(r.Context(), id, operatorUUID(r)); err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.RespondOK(w)
}

// Wire is the JSON representation of an entity.
type Wire struct {
	UUID    string  `json:"uuid"`
	Hash    string  `json:"hash"`
	Host    string  `json:"host"`
	ID      *string `json:"id"`
	Created int64   `json:"created"`
}

func ToWire(rec *Record) Wire {
	return Wire{
		UUID:    rec.UUID,
		Hash:    rec.Hash,
		Host:    rec.Host,
		ID:      rec.ID,
		Created: rec.Created.Unix(),
	}
}

func toWireList(recs []*Record) []Wire {
	out := make([]Wire, 0, len(recs))
	for _, r := range recs {
		out = append(out, ToWire(r))
	}
	return out
}
