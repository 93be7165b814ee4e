package blacklist

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wisbric/vigil/internal/auth"
	"github.com/wisbric/vigil/internal/httpserver"
)

// Handler exposes blacklist creation and lift.
type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Routes returns the sub-router mounted at "/blacklist".
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireCapability(auth.CapabilityManageBlacklist))
	r.Post("/create", h.handleCreate)
	r.Get("/{uuid}", h.handleGet)
	r.Post("/{uuid}/lift", h.handleLift)
	return r
}

type createRequest struct {
	Entity   string  `json:"entity" validate:"required,uuid"`
	Type     string  `json:"type" validate:"required"`
	Expires  *int64  `json:"expires,omitempty"`
	Evidence *string `json:"evidence,omitempty" validate:"omitempty,uuid"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	var expires *time.Time
	if req.Expires != nil {
		t := time.Unix(*req.Expires, 0).UTC()
		expires = &t
	}

	identity := auth.FromContext(r.Context())
	rec, err := h.manager.Blacklist(r.Context(), req.Entity, identity.UUID, Type(req.Type), expires, req.Evidence)
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

func (h *Handler) handleLift(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())
	rec, err := h.manager.Lift(r.Context(), chi.URLParam(r, "uuid"), &identity.UUID)
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, ToWire(rec))
}

// Wire is the JSON representation of a blacklist verdict.
type Wire struct {
	UUID     string  `json:"uuid"`
	Entity   string  `json:"entity"`
	Operator string  `json:"operator"`
	Type     string  `json:"type"`
	Expires  *int64  `json:"expires"`
	Lifted   bool    `json:"lifted"`
	LiftedBy *string `json:"lifted_by"`
	Evidence *string `json:"evidence"`
	Created  int64   `json:"created"`
	Active   bool    `json:"active"`
}

func ToWire(rec *Record) Wire {
	w := Wire{
		UUID:     rec.UUID,
		Entity:   rec.Entity,
		Operator: rec.Operator,
		Type:     string(rec.Type),
		Lifted:   rec.Lifted,
		LiftedBy: rec.LiftedBy,
		Evidence: rec.Evidence,
		Created:  rec.Created.Unix(),
		Active:   IsActive(rec.Lifted, rec.Expires, time.Now().UTC()),
	}
	if rec.Expires != nil {
		secs := rec.Expires.Unix()
		w.Expires = &secs
	}
	return w
}
