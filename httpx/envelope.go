package httpx

import (
	"net/http"

	"github.com/go-chi/render"
)

// Envelope is the response shape shared by every API route:
// { success, data?, message?, unreadCount?, count? }
type Envelope struct {
	Success     bool   `json:"success"`
	Data        any    `json:"data,omitempty"`
	Message     string `json:"message,omitempty"`
	UnreadCount *int   `json:"unreadCount,omitempty"`
	Count       *int   `json:"count,omitempty"`
}

func OK(w http.ResponseWriter, r *http.Request, data any) {
	render.JSON(w, r, Envelope{Success: true, Data: data})
}

func OKMessage(w http.ResponseWriter, r *http.Request, message string, data any) {
	render.JSON(w, r, Envelope{Success: true, Message: message, Data: data})
}

func Created(w http.ResponseWriter, r *http.Request, message string, data any) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Envelope{Success: true, Message: message, Data: data})
}

func CreatedCount(w http.ResponseWriter, r *http.Request, message string, count int) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Envelope{Success: true, Message: message, Count: &count})
}
