package controllers

import (
	"net/http"

	"github.com/irmandades/ghala-backend/api/responses"
	"github.com/irmandades/ghala-backend/api/validators"
	"github.com/irmandades/ghala-backend/internal/inventory"
	"github.com/irmandades/ghala-backend/internal/realtime"
	"github.com/irmandades/ghala-backend/pkg/logger"
)

func ProductList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeInactive, err := validators.ParseQueryBool(r, "include_inactive", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.List(r.Context(), includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// ProductLowStock reports products at or below their minimum level.
func ProductLowStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.LowStockReport(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func ProductDetail(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductCreate(svc inventory.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body inventory.ProductInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "inventory", product.ID.String(), realtime.ActionCreated)
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func ProductUpdate(svc inventory.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body inventory.ProductInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "inventory", product.ID.String(), realtime.ActionUpdated)
		responses.WriteSuccess(w, product)
	}
}

// ProductDeactivate soft-deletes a product so past consumptions keep their
// reference.
func ProductDeactivate(svc inventory.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.DeactivateProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "inventory", product.ID.String(), realtime.ActionUpdated)
		responses.WriteSuccess(w, product)
	}
}

func ProductPurchase(svc inventory.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body inventory.PurchaseInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.ProductID = id

		product, err := svc.RecordPurchase(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "inventory", product.ID.String(), realtime.ActionUpdated)
		notifier.Notify(r.Context(), "transactions", "", realtime.ActionCreated)
		responses.WriteSuccess(w, product)
	}
}

func ProductShrinkage(svc inventory.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body inventory.ShrinkageInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.ProductID = id

		product, err := svc.ApplyShrinkage(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "inventory", product.ID.String(), realtime.ActionUpdated)
		notifier.Notify(r.Context(), "transactions", "", realtime.ActionCreated)
		responses.WriteSuccess(w, product)
	}
}

func ProductAudit(svc inventory.Service, notifier realtime.Notifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body inventory.AuditInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.ProductID = id

		result, err := svc.ApplyAudit(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifier.Notify(r.Context(), "inventory", id.String(), realtime.ActionUpdated)
		if result.Variance != 0 {
			notifier.Notify(r.Context(), "transactions", "", realtime.ActionCreated)
		}
		responses.WriteSuccess(w, result)
	}
}
