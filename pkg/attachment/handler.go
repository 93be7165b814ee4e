package attachment

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wisbric/vigil/internal/auth"
	"github.com/wisbric/vigil/internal/httpserver"
)

const maxUploadMemory = 32 << 20 // 32 MiB held in memory before spilling to temp files

// Handler exposes attachment upload and download.
type Handler struct {
	manager       *Manager
	maxUploadSize int64
	public        bool
}

func NewHandler(manager *Manager, maxUploadSize int64, public bool) *Handler {
	return &Handler{manager: manager, maxUploadSize: maxUploadSize, public: public}
}

// Routes returns the sub-router mounted at "/attachment".
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{uuid}", h.handleDownload)
	r.With(auth.RequireCapability(auth.CapabilityManageBlacklist)).
		Post("/upload", h.handleUpload)
	return r
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	if !h.public && auth.FromContext(r.Context()) == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	id := chi.URLParam(r, "uuid")
	rec, err := h.manager.Get(r.Context(), id)
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	data, err := h.manager.ReadFile(id)
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}

	w.Header().Set("Content-Type", rec.FileMime)
	w.Header().Set("Content-Length", strconv.FormatInt(rec.FileSize, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	evidence := r.FormValue("evidence")
	if evidence == "" {
		httpserver.RespondError(w, http.StatusBadRequest, "evidence is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		httpserver.RespondError(w, http.StatusRequestEntityTooLarge, "attachment exceeds the configured upload size limit")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if h.maxUploadSize > 0 && int64(len(data)) > h.maxUploadSize {
		httpserver.RespondError(w, http.StatusRequestEntityTooLarge, "attachment exceeds the configured upload size limit")
		return
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" {
		mime = "application/octet-stream"
	}

	identity := auth.FromContext(r.Context())
	rec, err := h.manager.Create(r.Context(), evidence, mime, header.Filename, data, identity.UUID)
	if err != nil {
		httpserver.RespondErr(w, err)
		return
	}
	httpserver.Respond(w, http.StatusOK, ToWire(rec))
}

// Wire is the JSON representation of an attachment's metadata.
type Wire struct {
	UUID     string `json:"uuid"`
	Evidence string `json:"evidence"`
	FileMime string `json:"file_mime"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	Created  int64  `json:"created"`
}

func ToWire(rec *Record) Wire {
	return Wire{
		UUID:     rec.UUID,
		Evidence: rec.Evidence,
		FileMime: rec.FileMime,
		FileName: rec.FileName,
		FileSize: rec.FileSize,
		Created:  rec.Created.Unix(),
	}
}

// ToWireList renders a list of attachment records.
func ToWireList(recs []*Record) []Wire {
	out := make([]Wire, 0, len(recs))
	for _, rec := range recs {
		out = append(out, ToWire(rec))
	}
	return out
}
