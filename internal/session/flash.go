package session

import (
	"log"
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "blogly_session"

// NewCookieStore returns the cookie store flashes live in.
func NewCookieStore(key string, secure bool) *sessions.CookieStore {
	maxAge := 86400 * 30
	store := sessions.NewCookieStore([]byte(key))
	store.MaxAge(maxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

// Flash carries one-shot notices from a POST handler to the page shown after
// the redirect.
type Flash struct {
	store sessions.Store
}

func NewFlash(store sessions.Store) *Flash {
	return &Flash{store: store}
}

// Add queues msg. Must be called before anything is written to w.
func (f *Flash) Add(w http.ResponseWriter, r *http.Request, msg string) {
	session, err := f.store.Get(r, sessionName)
	if err != nil {
		// A stale or tampered cookie still yields a fresh session
		log.Println("Failed to decode session:", err)
	}
	if session == nil {
		return
	}

	session.AddFlash(msg)
	if err := session.Save(r, w); err != nil {
		log.Println("Failed to save session:", err)
	}
}

// Pop returns and clears the queued notices.
func (f *Flash) Pop(w http.ResponseWriter, r *http.Request) []string {
	session, err := f.store.Get(r, sessionName)
	if err != nil {
		log.Println("Failed to decode session:", err)
	}
	if session == nil {
		return nil
	}

	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		log.Println("Failed to save session:", err)
	}

	msgs := make([]string, 0, len(raw))
	for _, v := range raw {
		if msg, ok := v.(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
