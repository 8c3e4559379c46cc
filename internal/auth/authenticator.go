// Package auth signs customers in and decides which view a session may see.
package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"freightportal/internal/backend"
	"freightportal/internal/inflight"
	"freightportal/internal/models"
	"freightportal/internal/taxid"
	"freightportal/internal/utils"
)

const (
	msgUnavailable   = "Sistema encontra-se fora do ar temporariamente."
	msgNotRegistered = "CPF/CNPJ não possui cadastro, fale com seu consultor!"
	msgBadPassword   = "Senha inválida"
	msgFallback      = "Sistema encontra-se fora do ar temporariamente. ERR_43"
)

// State is a step of the sign-in sequence.
type State int

const (
	StateIdle State = iota
	StateCheckingAvailability
	StateCheckingCustomerRecord
	StateCheckingLocalAccount
	StateLoggingIn
	StateRequiringReset
	StateSigned
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCheckingAvailability:
		return "checking_availability"
	case StateCheckingCustomerRecord:
		return "checking_customer_record"
	case StateCheckingLocalAccount:
		return "checking_local_account"
	case StateLoggingIn:
		return "logging_in"
	case StateRequiringReset:
		return "requiring_reset"
	case StateSigned:
		return "signed"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Backend is the part of the remote API sign-in needs.
type Backend interface {
	SendData(ctx context.Context) (*models.SendDataResponse, error)
	ProductsByClient(ctx context.Context, cookie, taxID string) ([]json.RawMessage, error)
	FindUser(ctx context.Context, taxID string) error
	Login(ctx context.Context, taxID, password string) error
}

type Authenticator struct {
	backend      Backend
	guard        *inflight.Guard
	logger       *zap.Logger
	onTransition func(sessionID string, s State)
}

type Option func(*Authenticator)

// WithTransitionHook observes every state the sign-in passes through.
func WithTransitionHook(fn func(sessionID string, s State)) Option {
	return func(a *Authenticator) { a.onTransition = fn }
}

func NewAuthenticator(b Backend, guard *inflight.Guard, logger *zap.Logger, opts ...Option) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = inflight.New()
	}
	a := &Authenticator{backend: b, guard: guard, logger: logger}
	for _, o := range opts {
		o(a)
	}
	return a
}

func signInKey(sessionID string) string { return "signin:" + sessionID }

// Busy reports whether a sign-in is running for the session.
func (a *Authenticator) Busy(sessionID string) bool {
	return a.guard.Busy(signInKey(sessionID))
}

func (a *Authenticator) enter(s *Session, st State) {
	a.logger.Debug("sign-in state", zap.String("session", s.ID), zap.Stringer("state", st))
	if a.onTransition != nil {
		a.onTransition(s.ID, st)
	}
}

// SignIn runs the sign-in sequence and records the outcome on s. It returns
// StateSigned or StateRequiringReset on success. The caller persists s.
func (a *Authenticator) SignIn(ctx context.Context, s *Session, rawTaxID, password string) (State, error) {
	if err := taxid.Validate(rawTaxID); err != nil {
		return StateIdle, err
	}
	if err := taxid.ValidatePassword(password); err != nil {
		return StateIdle, err
	}
	release, ok := a.guard.TryAcquire(signInKey(s.ID))
	if !ok {
		return StateIdle, inflight.ErrInProgress
	}
	defer release()

	st, err := a.signIn(ctx, s, taxid.Normalize(rawTaxID), password)
	if err != nil {
		a.enter(s, StateFailed)
		a.logger.Info("sign-in failed", zap.String("session", s.ID), zap.Stringer("kind", utils.KindOf(err)), zap.Error(err))
		return StateFailed, err
	}
	a.enter(s, st)
	return st, nil
}

func (a *Authenticator) signIn(ctx context.Context, s *Session, digits, password string) (State, error) {
	a.enter(s, StateCheckingAvailability)
	probe, err := a.backend.SendData(ctx)
	if err != nil {
		return StateFailed, remoteError(fmt.Errorf("availability probe: %w", err))
	}
	if probe == nil {
		return StateFailed, utils.New(utils.KindServiceUnavailable, msgUnavailable)
	}

	a.enter(s, StateCheckingCustomerRecord)
	products, err := a.backend.ProductsByClient(ctx, probe.Cookie, digits)
	if err != nil {
		return StateFailed, remoteError(fmt.Errorf("customer record: %w", err))
	}
	if len(products) == 0 {
		return StateFailed, utils.New(utils.KindNotRegistered, msgNotRegistered)
	}

	a.enter(s, StateCheckingLocalAccount)
	if err := a.backend.FindUser(ctx, digits); err != nil {
		// No local account yet: only the default password is accepted and
		// the customer must pick a new one.
		if password != taxid.DefaultPassword(digits) {
			return StateFailed, utils.New(utils.KindInvalidPassword, msgBadPassword)
		}
		s.RequirePasswordReset(digits)
		return StateRequiringReset, nil
	}

	a.enter(s, StateLoggingIn)
	if err := a.backend.Login(ctx, digits, password); err != nil {
		return StateFailed, remoteError(fmt.Errorf("login: %w", err))
	}
	s.MarkSignedIn(digits)
	return StateSigned, nil
}

// remoteError picks the message shown for a failed remote call: the body's
// "message", then "Response", then msgFallback. The wrapped error keeps the
// transport detail for the log only.
func remoteError(err error) error {
	msg := backend.ErrorMessage(err)
	if msg == "" {
		msg = msgFallback
	}
	return utils.Wrap(utils.KindTransport, msg, err)
}
