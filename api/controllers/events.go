package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/api/responses"
	"github.com/irmandades/ghala-backend/api/validators"
	"github.com/irmandades/ghala-backend/internal/events"
	"github.com/irmandades/ghala-backend/internal/realtime"
	"github.com/irmandades/ghala-backend/internal/treasury"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	"github.com/irmandades/ghala-backend/pkg/enums"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"github.com/irmandades/ghala-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

func EventList(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func EventDetail(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, event)
	}
}

// EventTransactions lists the ledger entries linked to one event, such as its
// settlement entry.
func EventTransactions(svc treasury.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByEvent(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func EventCreate(svc events.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body events.CreateEventInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if body.OrganizerID == uuid.Nil {
			if organizer, err := actorID(r); err == nil {
				body.OrganizerID = organizer
			}
		}

		event, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "events", event.ID.String(), realtime.ActionCreated)
		responses.WriteSuccessStatus(w, http.StatusCreated, event)
	}
}

func EventUpdate(svc events.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body events.UpdateEventInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.UpdateDetails(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "events", event.ID.String(), realtime.ActionUpdated)
		responses.WriteSuccess(w, event)
	}
}

func EventDelete(svc events.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "events", id.String(), realtime.ActionDeleted)
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type addConsumptionRequest struct {
	Type      string          `json:"type" validate:"required"`
	ProductID string          `json:"product_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Qty       int             `json:"qty,omitempty"`
	UnitCost  decimal.Decimal `json:"unit_cost,omitempty"`
}

// EventAddConsumption appends one consumption line. The body type selects
// between product, custom and service lines.
func EventAddConsumption(svc events.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := pathUUID(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addConsumptionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineType, err := enums.ParseConsumptionType(strings.TrimSpace(body.Type))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid consumption type"))
			return
		}

		var event *models.Event
		switch lineType {
		case enums.ConsumptionTypeProduct:
			productID, parseErr := parseBodyUUID(body.ProductID, "product_id")
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			event, err = svc.AddProductConsumption(r.Context(), eventID, productID, body.Qty)
		case enums.ConsumptionTypeCustom:
			event, err = svc.AddCustomConsumption(r.Context(), eventID, body.Name, body.Qty, body.UnitCost)
		case enums.ConsumptionTypeService:
			event, err = svc.AddServiceConsumption(r.Context(), eventID, body.Name, body.UnitCost)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "events", eventID.String(), realtime.ActionUpdated)
		if lineType == enums.ConsumptionTypeProduct {
			notifier.Notify(r.Context(), "inventory", body.ProductID, realtime.ActionUpdated)
		}
		responses.WriteSuccess(w, event)
	}
}

func EventRemoveConsumption(svc events.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := pathUUID(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		consumptionID, err := pathUUID(r, "consumptionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.RemoveConsumption(r.Context(), eventID, consumptionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "events", eventID.String(), realtime.ActionUpdated)
		notifier.Notify(r.Context(), "inventory", "", realtime.ActionUpdated)
		responses.WriteSuccess(w, event)
	}
}

func EventFinalize(svc events.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.Finalize(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "events", event.ID.String(), realtime.ActionUpdated)
		responses.WriteSuccess(w, event)
	}
}

func EventCancel(svc events.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.Cancel(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "events", event.ID.String(), realtime.ActionUpdated)
		responses.WriteSuccess(w, event)
	}
}

type settleEventRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// EventSettle freezes the event total and books the income. The caller is
// recorded as the settling member.
func EventSettle(svc events.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settledBy, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body settleEventRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.TrimSpace(body.PaymentMethod))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		event, err := svc.Settle(r.Context(), id, method, settledBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "events", event.ID.String(), realtime.ActionUpdated)
		notifier.Notify(r.Context(), "transactions", "", realtime.ActionCreated)
		responses.WriteSuccess(w, event)
	}
}
