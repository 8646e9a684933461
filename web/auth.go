package web

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const editCookie = "pagekit_edit"

// editLock gates mutating routes behind a shared password. Tokens are held
// in memory; restarting the server relocks all sessions.
type editLock struct {
	hash string

	mu     sync.Mutex
	tokens map[string]time.Time
	ttl    time.Duration
}

func newEditLock(hash string) *editLock {
	return &editLock{
		hash:   hash,
		tokens: make(map[string]time.Time),
		ttl:    24 * time.Hour,
	}
}

// Unlock verifies the password and mints a session token.
func (l *editLock) Unlock(password string) (string, bool) {
	if bcrypt.CompareHashAndPassword([]byte(l.hash), []byte(password)) != nil {
		return "", false
	}

	buf := make([]byte, 32)
	rand.Read(buf)
	token := hex.EncodeToString(buf)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens[token] = time.Now().Add(l.ttl)
	return token, true
}

// Unlocked reports whether the request carries a valid edit token.
func (l *editLock) Unlocked(r *http.Request) bool {
	cookie, err := r.Cookie(editCookie)
	if err != nil {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	expiry, ok := l.tokens[cookie.Value]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(l.tokens, cookie.Value)
		return false
	}
	return true
}

// Require rejects mutating requests without a valid edit token.
func (l *editLock) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Unlocked(r) {
			http.Redirect(w, r, "/unlock", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UnlockPage renders the unlock form.
func (h *Handler) UnlockPage(w http.ResponseWriter, r *http.Request) {
	data := struct {
		PageData
		Error string
	}{
		PageData: h.newPageData(r, "Unlock editing"),
	}
	h.render(w, http.StatusOK, "unlock", data)
}

// UnlockSubmit verifies the password and sets the edit cookie.
func (h *Handler) UnlockSubmit(w http.ResponseWriter, r *http.Request) {
	token, ok := h.editLock.Unlock(r.FormValue("password"))
	if !ok {
		h.logger.Warn().Msg("failed unlock attempt")
		data := struct {
			PageData
			Error string
		}{
			PageData: h.newPageData(r, "Unlock editing"),
			Error:    "Wrong password.",
		}
		h.render(w, http.StatusUnauthorized, "unlock", data)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     editCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
