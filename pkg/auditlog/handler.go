package auditlog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wisbric/vigil/internal/auth"
	"github.com/wisbric/vigil/internal/httpserver"
)

// Handler exposes the audit log's one public operation: a paginated list.
type Handler struct {
	manager *Manager
	public  bool
}

func NewHandler(manager *Manager, public bool) *Handler {
	return &Handler{manager: manager, public: public}
}

// Routes returns the sub-router mounted at "/audit".
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleList)
	return r
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

	var typeFilter *Type
	if v := r.URL.Query().Get("type"); v != "" {
		t := Type(v)
		typeFilter = &t
	}

	recs, err := h.manager.List(r.Context(), params.Limit, params.Offset, typeFilter)
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}

	total, err := h.manager.Count(r.Context(), typeFilter)
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}

	httpserver.Respond(w, http.StatusOK, httpserver.NewOffsetPage(toWireList(recs), params, total))
}

// Wire is the JSON representation of an audit log record.
type Wire struct {
	UUID      string  `json:"uuid"`
	Type      string  `json:"type"`
	Message   string  `json:"message"`
	Operator  *string `json:"operator"`
	Entity    *string `json:"entity"`
	Timestamp int64   `json:"timestamp"`
}

func ToWire(rec *Record) Wire {
	return Wire{
		UUID:      rec.UUID,
		Type:      string(rec.Type),
		Message:   rec.Message,
		Operator:  rec.Operator,
		Entity:    rec.Entity,
		Timestamp: rec.Timestamp.Unix(),
	}
}

func toWireList(recs []*Record) []Wire {
	out := make([]Wire, 0, len(recs))
	for _, r := range recs {
		out = append(out, ToWire(r))
	}
	return out
}
