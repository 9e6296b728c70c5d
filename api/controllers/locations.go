package controllers

import (
	"net/http"

	"github.com/irmandades/ghala-backend/api/responses"
	"github.com/irmandades/ghala-backend/api/validators"
	"github.com/irmandades/ghala-backend/internal/locations"
	"github.com/irmandades/ghala-backend/internal/realtime"
	"github.com/irmandades/ghala-backend/pkg/logger"
)

func LocationList(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func LocationCreate(svc locations.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body locations.LocationInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		location, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "locations", location.ID.String(), realtime.ActionCreated)
		responses.WriteSuccessStatus(w, http.StatusCreated, location)
	}
}

func LocationUpdate(svc locations.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "locationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body locations.LocationInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		location, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "locations", location.ID.String(), realtime.ActionUpdated)
		responses.WriteSuccess(w, location)
	}
}

func LocationDelete(svc locations.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "locationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "locations", id.String(), realtime.ActionDeleted)
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
