package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"osrs-flipper/internal/chart"
)

const (
	sessionCookieName = "flipper_session"
	sessionIdleTTL    = 30 * time.Minute
)

// viewerSession is one browser's chart state.
type viewerSession struct {
	selector *chart.Selector
	lastSeen time.Time
}

// sessionStore maps session cookies to viewer state so that one viewer's
// selections never supersede another's.
type sessionStore struct {
	mu          sync.Mutex
	sessions    map[string]*viewerSession
	newSelector func() *chart.Selector
	lastPrune   time.Time
}

func newSessionStore(newSelector func() *chart.Selector) *sessionStore {
	return &sessionStore{
		sessions:    make(map[string]*viewerSession),
		newSelector: newSelector,
		lastPrune:   time.Now(),
	}
}

// get returns the request's session, creating it (and setting the cookie)
// when the cookie is missing, malformed or expired.
func (st *sessionStore) get(w http.ResponseWriter, r *http.Request) *viewerSession {
	now := time.Now()

	st.mu.Lock()
	defer st.mu.Unlock()
	st.pruneLocked(now)

	if c, err := r.Cookie(sessionCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			if sess, ok := st.sessions[c.Value]; ok {
				sess.lastSeen = now
				return sess
			}
		}
	}

	id := uuid.NewString()
	sess := &viewerSession{selector: st.newSelector(), lastSeen: now}
	st.sessions[id] = sess
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (st *sessionStore) pruneLocked(now time.Time) {
	if now.Sub(st.lastPrune) < time.Minute {
		return
	}
	st.lastPrune = now
	for id, sess := range st.sessions {
		if now.Sub(sess.lastSeen) > sessionIdleTTL {
			delete(st.sessions, id)
		}
	}
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
