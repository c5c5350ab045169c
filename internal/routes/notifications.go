package routes

import (
	"fmt"
	"net/http"

	"github.com/debemdeboas/editorial/internal/config"
	"github.com/debemdeboas/editorial/internal/notify"
)

// notifications streams the notifications addressed to the user as
// server-sent events until the client goes away.
func (a *API) notifications(w http.ResponseWriter, r *http.Request) {
	user, ok := a.user(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeEventStream)
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Del("X-Content-Type-Options")

	fmt.Fprintf(w, "event: connected\ndata: %s\n\n", user)
	flusher.Flush()

	client := &notify.Client{
		Msg:    make(chan string, 16),
		UserID: user,
	}
	a.events.Add(client)

	routesLogger.Debug().Str("user_id", string(user)).Int("clients", a.events.Len()).Msg("Notification client connected")

	defer func() {
		a.events.Delete(client)
		routesLogger.Debug().Str("user_id", string(user)).Msg("Notification client disconnected")
	}()

	done := r.Context().Done()
	for {
		select {
		case msg := <-client.Msg:
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", msg)
			flusher.Flush()
		case <-done:
			return
		}
	}
}
