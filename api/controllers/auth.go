package controllers

import (
	"net/http"

	"github.com/irmandades/ghala-backend/api/responses"
	"github.com/irmandades/ghala-backend/api/validators"
	"github.com/irmandades/ghala-backend/internal/auth"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"github.com/irmandades/ghala-backend/pkg/logger"
)

// AuthLogin wires the PIN login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.Member != nil {
			// the login response never echoes the credential back
			member := *result.Member
			member.PIN = ""
			result.Member = &member
		}
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the caller's live session.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		memberID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Logout(r.Context(), memberID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
