package operator

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wisbric/vigil/internal/auth"
	"github.com/wisbric/vigil/internal/httpserver"
)

// Handler exposes operator CRUD, capability flags, and API-key rotation.
// Every route requires manage_operators (or the master bypass).
type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Routes returns the sub-router mounted at "/operators".
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireCapability(auth.CapabilityManageOperators))
	r.Post("/create", h.handleCreate)
	r.Get("/", h.handleList)
	r.Post("/{uuid}", h.handleGet)
	r.Delete("/{uuid}/delete", h.handleDelete)
	r.Post("/{uuid}/enable", h.handleEnable)
	r.Post("/{uuid}/disable", h.handleDisable)
	r.Post("/{uuid}/refresh", h.handleRefresh)
	r.Post("/{uuid}/manage_operators", h.handleSetManageOperators)
	r.Post("/{uuid}/manage_blacklist", h.handleSetManageBlacklist)
	r.Post("/{uuid}/manage_client", h.handleSetClient)
	return r
}

type createRequest struct {
	Name string `json:"name" validate:"required,max=32"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	rec, err := h.manager.Create(r.Context(), req.Name)
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, ToWire(rec))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.manager.GetByUUID(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, ToWire(rec))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
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
	if err := h.manager.Delete(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.RespondOK(w)
}

func (h *Handler) handleEnable(w http.ResponseWriter, r *http.Request) {
	rec, err := h.manager.Enable(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, ToWire(rec))
}

func (h *Handler) handleDisable(w http.ResponseWriter, r *http.Request) {
	rec, err := h.manager.Disable(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, ToWire(rec))
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	newKey, err := h.manager.RefreshApiKey(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, map[string]string{"api_key": newKey})
}

type capabilityRequest struct {
	Value bool `json:"value"`
}

// requireGranterHolds enforces the no-self-escalation rule: an operator
// managing another operator's capabilities may not grant a capability it
// does not itself hold. The master operator is exempt.
func requireGranterHolds(r *http.Request, capability string, value bool) bool {
	if !value {
		return true
	}
	id := auth.FromContext(r.Context())
	return id.HasCapability(capability)
}

func (h *Handler) handleSetManageOperators(w http.ResponseWriter, r *http.Request) {
	var req capabilityRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}
	if !requireGranterHolds(r, auth.CapabilityManageOperators, req.Value) {
		httpserver.RespondError(w, http.StatusForbidden, "cannot grant a capability you do not hold")
		return
	}
	rec, err := h.manager.SetManageOperators(r.Context(), chi.URLParam(r, "uuid"), req.Value)
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, ToWire(rec))
}

func (h *Handler) handleSetManageBlacklist(w http.ResponseWriter, r *http.Request) {
	var req capabilityRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}
	if !requireGranterHolds(r, auth.CapabilityManageBlacklist, req.Value) {
		httpserver.RespondError(w, http.StatusForbidden, "cannot grant a capability you do not hold")
		return
	}
	rec, err := h.manager.SetManageBlacklist(r.Context(), chi.URLParam(r, "uuid"), req.Value)
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, ToWire(rec))
}

func (h *Handler) handleSetClient(w http.ResponseWriter, r *http.Request) {
	var req capabilityRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}
	if !requireGranterHolds(r, auth.CapabilityIsClient, req.Value) {
		httpserver.RespondError(w, http.StatusForbidden, "cannot grant a capability you do not hold")
		return
	}
	rec, err := h.manager.SetClient(r.Context(), chi.URLParam(r, "uuid"), req.Value)
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, ToWire(rec))
}

// Wire is the JSON representation of an operator. api_key is included only
// because operators legitimately need to read back their own key; handlers
// never expose another operator's plaintext key beyond what the row holds.
type Wire struct {
	UUID            string `json:"uuid"`
	APIKey          string `json:"api_key"`
	Name            string `json:"name"`
	Disabled        bool   `json:"disabled"`
	ManageOperators bool   `json:"manage_operators"`
	ManageBlacklist bool   `json:"manage_blacklist"`
	IsClient        bool   `json:"is_client"`
	Created         int64  `json:"created"`
	Updated         int64  `json:"updated"`
}

func ToWire(rec *Record) Wire {
	return Wire{
		UUID:            rec.UUID,
		APIKey:          rec.APIKey,
		Name:            rec.Name,
		Disabled:        rec.Disabled,
		ManageOperators: rec.ManageOperators,
		ManageBlacklist: rec.ManageBlacklist,
		IsClient:        rec.IsClient,
		Created:         rec.Created.Unix(),
		Updated:         rec.Updated.Unix(),
	}
}

func toWireList(recs []*Record) []Wire {
	out := make([]Wire, 0, len(recs))
	for _, r := range recs {
		out = append(out, ToWire(r))
	}
	return out
}
