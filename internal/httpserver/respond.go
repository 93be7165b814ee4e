package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/wisbric/vigil/internal/vigilerr"
)

// envelope is the wire-protocol success shape: {"success":true,"result":...}
// or {"success":true} for void operations.
type envelope struct {
	Success bool `json:"success"`
	Result  any  `json:"result,omitempty"`
}

// errEnvelope is the wire-protocol error shape, with HTTP status == Code.
type errEnvelope struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Respond writes a success envelope carrying result.
func Respond(w http.ResponseWriter, status int, result any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Result: result})
}

// RespondOK writes a bodyless success envelope for void operations.
func RespondOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(envelope{Success: true})
}

// RespondError writes the error envelope for status/message. Use RespondErr
// when the failure is a *vigilerr.Error so the kind-to-status mapping and
// message-sanitization rules are applied automatically.
func RespondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errEnvelope{Success: false, Code: status, Message: message})
}

// RespondErr translates err into the wire error envelope using the taxonomy
// in vigilerr: the HTTP status always equals the numeric code in the body,
// and store/cache causes are never leaked — only the kind's safe message is.
func RespondErr(w http.ResponseWriter, err error) {
	kind := vigilerr.KindOf(err)
	RespondError(w, kind.Status(), vigilerr.MessageOf(err))
}
