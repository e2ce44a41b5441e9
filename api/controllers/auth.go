package controllers

import (
	"net/http"

	"github.com/selormtech/storefront-backend/api/responses"
	"github.com/selormtech/storefront-backend/api/validators"
	authsvc "github.com/selormtech/storefront-backend/internal/auth"
	pkgauth "github.com/selormtech/storefront-backend/pkg/auth"
	"github.com/selormtech/storefront-backend/pkg/config"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Name      string `json:"name" validate:"required"`
	StoreName string `json:"store_name" validate:"required"`
	StoreSlug string `json:"store_slug" validate:"required"`
}

type sessionResponse struct {
	User       any    `json:"user"`
	RedirectTo string `json:"redirect_to"`
}

// Login authenticates a user and sets both session cookies.
func Login(svc authsvc.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookies(w, cfg, session)
		responses.WriteSuccess(w, sessionResponse{User: session.User, RedirectTo: session.RedirectTo})
	}
}

// Signup registers a store with its owner account and signs them in.
func Signup(svc authsvc.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload signupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Signup(r.Context(), authsvc.SignupInput{
			Email:     payload.Email,
			Password:  payload.Password,
			Name:      payload.Name,
			StoreName: payload.StoreName,
			StoreSlug: payload.StoreSlug,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookies(w, cfg, session)
		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponse{User: session.User, RedirectTo: session.RedirectTo})
	}
}

// Logout revokes the identity session and clears both cookies. Logout is
// idempotent; a missing cookie is not an error.
func Logout(svc authsvc.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		token := ""
		if cookie, err := r.Cookie(pkgauth.IdentityCookieName); err == nil {
			token = cookie.Value
		}
		if err := svc.Logout(r.Context(), token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pkgauth.ClearSessionCookies(w, cfg.Cookie)
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// MagicLogin exchanges the platform-admin magic-link secret for a session
// and redirects to the platform-admin root.
func MagicLogin(svc authsvc.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		session, err := svc.MagicLogin(r.Context(), r.URL.Query().Get("token"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookies(w, cfg, session)
		http.Redirect(w, r, session.RedirectTo, http.StatusSeeOther)
	}
}

func setSessionCookies(w http.ResponseWriter, cfg *config.Config, session *authsvc.Session) {
	pkgauth.SetSessionCookie(w, cfg.Cookie, session.SessionToken, session.SessionTTL)
	pkgauth.SetIdentityCookie(w, cfg.Cookie, session.IdentityToken, cfg.Identity.SessionTTL)
}
