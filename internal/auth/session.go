package auth

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/gob"
	"net/http"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"freightportal/internal/crypto"
)

const (
	keyID        = "id"
	keySigned    = "signed"
	keyReset     = "need_password_reset"
	keyTaxID     = "tax_id"
	keyCSRF      = "csrf"
	keyDraft     = "draft"
	csrfTokenLen = 32

	// The encoded cookie must stay under the 4096 bytes securecookie
	// accepts; drafts and flash texts are cut to these sizes.
	maxDraftBytes = 1000
	maxFlashBytes = 300
)

// Session is the per-browser authentication state.
type Session struct {
	ID                string
	Signed            bool
	NeedPasswordReset bool
	TaxID             string
	CSRFToken         string
	// Draft is the freight message typed but not sent yet.
	Draft string

	raw *sessions.Session
}

// MarkSignedIn records a completed sign-in.
func (s *Session) MarkSignedIn(taxID string) {
	s.Signed = true
	s.NeedPasswordReset = false
	s.TaxID = taxID
}

// RequirePasswordReset records a first access: the customer is known but
// must choose a password before reaching any protected view.
func (s *Session) RequirePasswordReset(taxID string) {
	s.Signed = false
	s.NeedPasswordReset = true
	s.TaxID = taxID
}

// SignOut clears everything but the browser session identity.
func (s *Session) SignOut() {
	s.Signed = false
	s.NeedPasswordReset = false
	s.TaxID = ""
	s.Draft = ""
}

// KeepDraft stores message as the draft, cut to maxDraftBytes.
func (s *Session) KeepDraft(message string) {
	s.Draft = truncate(message, maxDraftBytes)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ValidCSRF compares token with the session token in constant time.
func (s *Session) ValidCSRF(token string) bool {
	return s.CSRFToken != "" && hmac.Equal([]byte(token), []byte(s.CSRFToken))
}

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
)

func init() {
	gob.Register(Flash{})
}

// StoreOptions configures the session cookie.
type StoreOptions struct {
	CookieName string
	Secure     bool
}

// Store keeps sessions in a signed and encrypted cookie. The cookie has no
// Max-Age, so it ends with the browser session.
type Store struct {
	cookies *sessions.CookieStore
	name    string
	logger  *zap.Logger
}

func NewStore(keys crypto.CookieKeys, opts StoreOptions, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	cs := sessions.NewCookieStore(keys.Hash, keys.Block)
	cs.MaxAge(0)
	cs.Options.Path = "/"
	cs.Options.HttpOnly = true
	cs.Options.Secure = opts.Secure
	cs.Options.SameSite = http.SameSiteLaxMode
	name := opts.CookieName
	if name == "" {
		name = "portal_session"
	}
	return &Store{cookies: cs, name: name, logger: logger}
}

// Load returns the request's session, or a fresh one when the request
// carries no cookie or a cookie that does not verify.
func (st *Store) Load(r *http.Request) *Session {
	raw, err := st.cookies.Get(r, st.name)
	if err != nil {
		st.logger.Debug("discarding session cookie", zap.Error(err))
	}
	if raw == nil {
		raw = sessions.NewSession(st.cookies, st.name)
		opts := *st.cookies.Options
		raw.Options = &opts
		raw.IsNew = true
	}
	s := &Session{raw: raw}
	s.ID, _ = raw.Values[keyID].(string)
	s.Signed, _ = raw.Values[keySigned].(bool)
	s.NeedPasswordReset, _ = raw.Values[keyReset].(bool)
	s.TaxID, _ = raw.Values[keyTaxID].(string)
	s.CSRFToken, _ = raw.Values[keyCSRF].(string)
	s.Draft, _ = raw.Values[keyDraft].(string)
	if s.ID == "" {
		s.ID = uuid.NewString()
		s.Signed, s.NeedPasswordReset, s.TaxID, s.Draft = false, false, "", ""
	}
	if s.CSRFToken == "" {
		s.CSRFToken = base64.RawURLEncoding.EncodeToString(crypto.MustRandom(csrfTokenLen))
	}
	return s
}

// Save writes s back to the cookie. It must run before the response body.
func (st *Store) Save(w http.ResponseWriter, r *http.Request, s *Session) error {
	raw := s.raw
	if raw == nil {
		raw = st.Load(r).raw
		s.raw = raw
	}
	raw.Values[keyID] = s.ID
	raw.Values[keySigned] = s.Signed
	raw.Values[keyReset] = s.NeedPasswordReset
	raw.Values[keyTaxID] = s.TaxID
	raw.Values[keyCSRF] = s.CSRFToken
	raw.Values[keyDraft] = s.Draft
	return raw.Save(r, w)
}

// AddFlash queues a notification; it is persisted by the next Save.
func (s *Session) AddFlash(kind, message string) {
	if s.raw == nil {
		return
	}
	s.raw.AddFlash(Flash{Kind: kind, Message: truncate(message, maxFlashBytes)})
}

// Flashes pops the queued notifications; persist the removal with Save.
func (s *Session) Flashes() []Flash {
	if s.raw == nil {
		return nil
	}
	var out []Flash
	for _, v := range s.raw.Flashes() {
		if f, ok := v.(Flash); ok {
			out = append(out, f)
		}
	}
	return out
}
