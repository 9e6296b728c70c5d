package controllers

import (
	"net/http"

	"github.com/irmandades/ghala-backend/api/middleware"
	"github.com/irmandades/ghala-backend/api/responses"
	"github.com/irmandades/ghala-backend/api/validators"
	"github.com/irmandades/ghala-backend/internal/members"
	"github.com/irmandades/ghala-backend/internal/permissions"
	"github.com/irmandades/ghala-backend/internal/realtime"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	"github.com/irmandades/ghala-backend/pkg/logger"
)

// canViewSensitive answers whether the caller may see IBAN and PIN fields.
func canViewSensitive(r *http.Request, gate permissions.Gate) (bool, error) {
	role, err := enums.ParseMemberRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return false, nil
	}
	return gate.Can(r.Context(), role, enums.CapabilityViewSensitiveData)
}

func redactMember(member models.Member) models.Member {
	member.PIN = ""
	member.IBAN = ""
	return member
}

func writeMember(w http.ResponseWriter, r *http.Request, gate permissions.Gate, logg *logger.Logger, member *models.Member, status int) {
	allowed, err := canViewSensitive(r, gate)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	view := *member
	if !allowed {
		view = redactMember(view)
	}
	responses.WriteSuccessStatus(w, status, view)
}

func MemberList(svc members.Service, gate permissions.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roster, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		allowed, err := canViewSensitive(r, gate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !allowed {
			for i := range roster {
				roster[i] = redactMember(roster[i])
			}
		}
		responses.WriteSuccess(w, roster)
	}
}

func MemberDetail(svc members.Service, gate permissions.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeMember(w, r, gate, logg, member, http.StatusOK)
	}
}

func MemberCreate(svc members.Service, gate permissions.Gate, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body members.MemberInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "members", member.ID.String(), realtime.ActionCreated)
		writeMember(w, r, gate, logg, member, http.StatusCreated)
	}
}

func MemberUpdate(svc members.Service, gate permissions.Gate, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body members.MemberInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "members", member.ID.String(), realtime.ActionUpdated)
		writeMember(w, r, gate, logg, member, http.StatusOK)
	}
}

func MemberDelete(svc members.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "members", id.String(), realtime.ActionDeleted)
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// MemberChargeFees books the monthly membership fee for every active member.
func MemberChargeFees(svc members.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, err := validators.ParseQueryMonth(r, "period")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ChargeMonthlyFees(r.Context(), period)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.Charged > 0 {
			notifier.Notify(r.Context(), "transactions", "", realtime.ActionCreated)
		}
		responses.WriteSuccess(w, result)
	}
}
