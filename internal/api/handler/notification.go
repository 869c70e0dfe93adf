package handler

import (
	"net/http"

	"github.com/Rrens/smart-assistant/internal/api/response"
	"github.com/Rrens/smart-assistant/internal/notify"
)

// Notifications returns and clears pending notifications
func Notifications(buffer *notify.Buffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, buffer.Drain())
	}
}
