package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"codenest/internal/logging"
)

// The jar itself is in-memory, so the session cookie the backend sets on
// login would normally die with the process. The helpers here round-trip the
// jar's cookies for the API host through a small JSON file: loaded into the
// jar on client construction, written back whenever a response rewrites
// cookies. Revocation works the same way; a logout response that expires the
// cookie leaves the file without it.

// storedCookie is the on-disk shape of one persisted cookie. Only name and
// value survive the round trip; the jar re-scopes them to the API host on
// load.
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// loadCookies seeds the jar from the cookie file, if one exists. A missing
// or unreadable file just means no saved session.
func (c *Client) loadCookies() {
	data, err := os.ReadFile(c.cookiePath)
	if err != nil {
		return
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		logging.SessionDebug("ignoring corrupt cookie file %s: %v", c.cookiePath, err)
		return
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
	}
	c.httpClient.Jar.SetCookies(c.base, cookies)
	logging.SessionDebug("loaded %d saved cookie(s)", len(cookies))
}

// saveCookies mirrors the jar's cookies for the API host back to disk.
func (c *Client) saveCookies() {
	cookies := c.httpClient.Jar.Cookies(c.base)
	stored := make([]storedCookie, 0, len(cookies))
	for _, ck := range cookies {
		stored = append(stored, storedCookie{Name: ck.Name, Value: ck.Value})
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.cookiePath), 0o700); err != nil {
		logging.SessionDebug("could not create cookie dir: %v", err)
		return
	}
	// The session cookie is a credential; keep the file owner-only.
	if err := os.WriteFile(c.cookiePath, data, 0o600); err != nil {
		logging.SessionDebug("could not persist session cookie: %v", err)
	}
}
