package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/selormtech/storefront-backend/api/responses"
	"github.com/selormtech/storefront-backend/api/validators"
	ordersvc "github.com/selormtech/storefront-backend/internal/orders"
	storesvc "github.com/selormtech/storefront-backend/internal/stores"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/logger"
)

type orderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	CustomerName   string             `json:"customer_name"`
	CustomerPhone  string             `json:"customer_phone" validate:"required"`
	Items          []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryZoneID *string            `json:"delivery_zone_id,omitempty" validate:"omitempty,uuid"`
	CouponCode     *string            `json:"coupon_code,omitempty"`
}

// StorefrontCreateOrder takes a public checkout against the store named in
// the route slug. No session is required; storefront checkouts are open.
func StorefrontCreateOrder(svc ordersvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeSvc.GetBySlug(r.Context(), chi.URLParam(r, "storeSlug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if store.Status == enums.StoreStatusSuspended {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeForbidden, "store is not accepting orders"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ordersvc.CreateOrderInput{
			CustomerName:  payload.CustomerName,
			CustomerPhone: payload.CustomerPhone,
			CouponCode:    payload.CouponCode,
		}
		for _, item := range payload.Items {
			productID, err := uuid.Parse(item.ProductID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "product_id must be a valid UUID"))
				return
			}
			input.Items = append(input.Items, ordersvc.ItemInput{ProductID: productID, Quantity: item.Quantity})
		}
		if payload.DeliveryZoneID != nil {
			zoneID, err := uuid.Parse(*payload.DeliveryZoneID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "delivery_zone_id must be a valid UUID"))
				return
			}
			input.DeliveryZoneID = &zoneID
		}

		order, err := svc.Create(r.Context(), store.ID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders returns the store's orders, optionally filtered by ?status=.
func ListOrders(svc ordersvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.OrderStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			status = &parsed
		}

		orders, err := svc.List(r.Context(), storeID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// GetOrder returns one order with its item snapshots.
func GetOrder(svc ordersvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), id, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// CompleteOrder marks a pending order completed and credits the sale to the
// store wallet.
func CompleteOrder(svc ordersvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return orderTransition(svc, storeSvc, logg, func(r *http.Request, id, storeID uuid.UUID) (any, error) {
		return svc.Complete(r.Context(), id, storeID)
	})
}

// CancelOrder marks a pending order cancelled and restocks its items.
func CancelOrder(svc ordersvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return orderTransition(svc, storeSvc, logg, func(r *http.Request, id, storeID uuid.UUID) (any, error) {
		return svc.Cancel(r.Context(), id, storeID)
	})
}

func orderTransition(
	svc ordersvc.Service,
	storeSvc storesvc.Service,
	logg *logger.Logger,
	apply func(r *http.Request, id, storeID uuid.UUID) (any, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := apply(r, id, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
