package controllers

import (
	"net/http"

	"github.com/irmandades/ghala-backend/api/responses"
	"github.com/irmandades/ghala-backend/api/validators"
	"github.com/irmandades/ghala-backend/internal/messages"
	"github.com/irmandades/ghala-backend/internal/realtime"
	"github.com/irmandades/ghala-backend/pkg/logger"
)

// MessageList returns broadcasts plus the caller's direct messages.
func MessageList(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForMember(r.Context(), memberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func MessageSend(svc messages.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body messages.SendMessageInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.SenderID = senderID

		message, err := svc.Send(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "userMessages", message.ID.String(), realtime.ActionCreated)
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

func MessageMarkRead(svc messages.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		readerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "messageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.MarkRead(r.Context(), id, readerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "userMessages", message.ID.String(), realtime.ActionUpdated)
		responses.WriteSuccess(w, message)
	}
}

func MessageDelete(svc messages.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "messageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "userMessages", id.String(), realtime.ActionDeleted)
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
