package httpx

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/castworks/designdesk/log"
)

// Will log an error, and send a 500 envelope with a generic message
func LogInternalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.Errorf("%s: %s", code, err)
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, Envelope{Success: false, Message: "Internal server error"})
}

// Will log a debug message, and send a 404 envelope
func LogNotFound(w http.ResponseWriter, r *http.Request, code string, id any, message string) {
	log.Debugf("%s: not found (%v)", code, id)
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, Envelope{Success: false, Message: message})
}

// Will log a debug message, and send a 401 envelope
func LogUnauthorized(w http.ResponseWriter, r *http.Request, code string) {
	log.Debug(code)
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, Envelope{Success: false, Message: "Unauthorized"})
}

// Will log an error code at the given level, and send
// an envelope with the given status and default text
func LogStatus(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string) {
	log.Log(level, code)
	render.Status(r, status)
	render.JSON(w, r, Envelope{Success: false, Message: http.StatusText(status)})
}

// Will log an error code and message at the given level,
// and send an envelope with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	render.Status(r, status)
	render.JSON(w, r, Envelope{Success: false, Message: errMsg})
}
