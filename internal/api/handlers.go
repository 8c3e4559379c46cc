package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"freightportal/internal/auth"
	"freightportal/internal/carrier"
	"freightportal/internal/inflight"
	"freightportal/internal/utils"
)

const (
	msgApproved      = "Transportadora aprovada com sucesso!"
	msgMessageSent   = "Mensagem enviada com sucesso!"
	msgRequoted      = "Pedido reenviado para cotação."
	msgNothingToDo   = "Você não possui nenhum pedido pendente de aprovação."
	msgInProgress    = "Operação em andamento, aguarde."
	msgGenericFailed = "Sistema encontra-se fora do ar temporariamente. ERR_43"

	detailPath = "/DetalheCliente"
)

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *auth.Session)

func (s *server) log(r *http.Request) *zap.Logger {
	return s.logger.With(zap.String("request_id", RequestID(r.Context())))
}

// session loads the request's session for h.
func (s *server) session(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(w, r, s.store.Load(r))
	}
}

// form rejects posts that do not carry the session's form token.
func (s *server) form(h sessionHandler) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		if !sess.ValidCSRF(r.PostFormValue("csrf")) {
			s.log(r).Warn("form token mismatch", zap.String("path", r.URL.Path))
			http.Error(w, "invalid form token", http.StatusForbidden)
			return
		}
		h(w, r, sess)
	}
}

// protected applies the route guard before h.
func (s *server) protected(h sessionHandler) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
		switch auth.Guard(sess.GuardState(s.auth.Busy(sess.ID))) {
		case auth.OutcomeLoading:
			// no Save here: the running sign-in owns the cookie
			s.render(w, r, http.StatusOK, pageLoading, page{Refresh: 1, CSRF: sess.CSRFToken})
		case auth.OutcomeShowReset:
			s.reset(w, r, sess)
		case auth.OutcomeRedirectLogin:
			http.Redirect(w, r, "/", http.StatusFound)
		default:
			h(w, r, sess)
		}
	}
}

func (s *server) render(w http.ResponseWriter, r *http.Request, status int, name string, data page) {
	if err := s.views.render(w, status, name, data); err != nil {
		s.log(r).Error("render failed", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *server) save(w http.ResponseWriter, r *http.Request, sess *auth.Session) bool {
	if err := s.store.Save(w, r, sess); err != nil {
		s.log(r).Error("save session failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func userMessage(err error) string {
	if errors.Is(err, inflight.ErrInProgress) {
		return msgInProgress
	}
	if utils.KindOf(err) == utils.KindUnknown {
		return msgGenericFailed
	}
	return err.Error()
}

// loginForm signs out whatever session the browser had.
func (s *server) loginForm(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	sess.SignOut()
	pg := newPage(sess)
	if !s.save(w, r, sess) {
		return
	}
	s.render(w, r, http.StatusOK, pageLogin, pg)
}

func (s *server) signIn(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	st, err := s.auth.SignIn(r.Context(), sess, r.PostFormValue("cpfCnpj"), r.PostFormValue("senha"))
	if errors.Is(err, inflight.ErrInProgress) {
		http.Redirect(w, r, detailPath, http.StatusSeeOther)
		return
	}
	if err != nil {
		sess.AddFlash(auth.FlashDanger, userMessage(err))
		if s.save(w, r, sess) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
		}
		return
	}
	s.log(r).Info("signed in", zap.String("session", sess.ID), zap.Stringer("state", st))
	if s.save(w, r, sess) {
		http.Redirect(w, r, detailPath, http.StatusSeeOther)
	}
}

func (s *server) signOut(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	sess.SignOut()
	if s.save(w, r, sess) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *server) forgotPassword(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	s.render(w, r, http.StatusOK, pageForgot, page{CSRF: sess.CSRFToken})
}

func (s *server) reset(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	pg := newPage(sess)
	if !s.save(w, r, sess) {
		return
	}
	s.render(w, r, http.StatusOK, pageReset, pg)
}

func (s *server) detail(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	d, err := s.flow.Load(r.Context(), sess.TaxID)
	if err != nil {
		s.log(r).Error("load detail failed", zap.Error(err))
		sess.AddFlash(auth.FlashDanger, userMessage(err))
	}
	pg := newPage(sess)
	pg.Detail = d
	if !s.save(w, r, sess) {
		return
	}
	s.render(w, r, http.StatusOK, pageDetail, pg)
}

// pending reloads the detail so mutations act on the current order and mode,
// never on values posted by the browser.
func (s *server) pending(r *http.Request, sess *auth.Session) (*carrier.Detail, error) {
	d, err := s.flow.Load(r.Context(), sess.TaxID)
	if err != nil {
		return nil, err
	}
	if d.Order == nil {
		return nil, utils.New(utils.KindValidation, msgNothingToDo)
	}
	return d, nil
}

// finish reports a mutation outcome and goes back to the detail page.
// draft is what the session keeps on failure.
func (s *server) finish(w http.ResponseWriter, r *http.Request, sess *auth.Session, err error, success, draft string) {
	if err != nil {
		s.log(r).Warn("action failed", zap.String("path", r.URL.Path), zap.Error(err))
		sess.AddFlash(auth.FlashDanger, userMessage(err))
		sess.KeepDraft(draft)
	} else {
		sess.AddFlash(auth.FlashSuccess, success)
		sess.Draft = ""
	}
	if s.save(w, r, sess) {
		http.Redirect(w, r, detailPath, http.StatusSeeOther)
	}
}

func (s *server) approve(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	message := r.PostFormValue("mensagem")
	draft := message
	if draft == "" {
		draft = sess.Draft
	}
	d, err := s.pending(r, sess)
	if err != nil {
		s.finish(w, r, sess, err, "", draft)
		return
	}
	sel := d.Selection
	if raw := strings.TrimSpace(r.PostFormValue("transportadora")); raw != "" {
		code, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			s.finish(w, r, sess, carrier.ErrUnknownCarrier, "", draft)
			return
		}
		if err := sel.SelectFrom(d.Candidates, code); err != nil {
			s.finish(w, r, sess, err, "", draft)
			return
		}
	}
	sel.Message = message
	err = s.flow.ConfirmApproval(r.Context(), d.Mode, d.OrderNumber(), sel)
	s.finish(w, r, sess, err, msgApproved, draft)
}

// quotation is pending narrowed to orders answering a quotation round.
func (s *server) quotation(r *http.Request, sess *auth.Session) (*carrier.Detail, error) {
	d, err := s.pending(r, sess)
	if err == nil && !d.Quotation() {
		return nil, carrier.ErrNotQuotation
	}
	return d, err
}

func (s *server) sendMessage(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	d, err := s.quotation(r, sess)
	if err == nil {
		err = s.flow.SendFreightMessage(r.Context(), d.OrderNumber(), r.PostFormValue("mensagem"))
	}
	// the draft is dropped whatever the outcome
	s.finish(w, r, sess, err, msgMessageSent, "")
}

func (s *server) requestQuotation(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	d, err := s.quotation(r, sess)
	if err == nil {
		err = s.flow.RequestNewQuotation(r.Context(), d.OrderNumber())
	}
	s.finish(w, r, sess, err, msgRequoted, sess.Draft)
}
