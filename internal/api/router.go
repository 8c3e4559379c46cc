// Package api serves the portal pages.
package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"freightportal/internal/auth"
	"freightportal/internal/carrier"
)

// Deps are the components the handlers run on.
type Deps struct {
	Store         *auth.Store
	Authenticator *auth.Authenticator
	Flow          *carrier.Flow
	Logger        *zap.Logger
}

type server struct {
	store  *auth.Store
	auth   *auth.Authenticator
	flow   *carrier.Flow
	views  *views
	logger *zap.Logger
}

func NewRouter(d Deps) (*mux.Router, error) {
	v, err := loadViews()
	if err != nil {
		return nil, err
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &server{store: d.Store, auth: d.Authenticator, flow: d.Flow, views: v, logger: logger}

	r := mux.NewRouter()
	r.Use(requestID, accessLog(logger))
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if _, err := fmt.Fprintln(w, "OK"); err != nil {
			logger.Debug("health write failed", zap.Error(err))
		}
	}).Methods(http.MethodGet)

	r.HandleFunc("/", s.session(s.loginForm)).Methods(http.MethodGet)
	r.HandleFunc("/", s.session(s.form(s.signIn))).Methods(http.MethodPost)
	r.HandleFunc("/EsqueciMinhaSenha", s.session(s.forgotPassword)).Methods(http.MethodGet)
	r.HandleFunc("/sair", s.session(s.form(s.signOut))).Methods(http.MethodPost)

	r.HandleFunc("/DetalheCliente", s.session(s.protected(s.detail))).Methods(http.MethodGet)
	r.HandleFunc("/Redefinir", s.session(s.protected(s.reset))).Methods(http.MethodGet)
	r.HandleFunc("/DetalheCliente/aprovar", s.session(s.form(s.protected(s.approve)))).Methods(http.MethodPost)
	r.HandleFunc("/DetalheCliente/mensagem", s.session(s.form(s.protected(s.sendMessage)))).Methods(http.MethodPost)
	r.HandleFunc("/DetalheCliente/cotacao", s.session(s.form(s.protected(s.requestQuotation)))).Methods(http.MethodPost)

	// mux skips middleware for these, so they are wrapped here
	home := requestID(accessLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})))
	r.NotFoundHandler = home
	r.MethodNotAllowedHandler = home
	return r, nil
}
