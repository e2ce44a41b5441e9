package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/selormtech/storefront-backend/internal/audit"
	"github.com/selormtech/storefront-backend/internal/coupons"
	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
)

// ItemInput is one line of a storefront checkout.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput is a storefront checkout request.
type CreateOrderInput struct {
	CustomerName   string
	CustomerPhone  string
	Items          []ItemInput
	DeliveryZoneID *uuid.UUID
	CouponCode     *string
}

// Service runs the order lifecycle: storefront creation with stock
// reservation and price snapshots, then a single transition to completed
// (credits the wallet) or cancelled (restocks).
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateOrderInput) (*models.Order, error)
	Complete(ctx context.Context, id, storeID uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, id, storeID uuid.UUID) (*models.Order, error)
	Get(ctx context.Context, id, storeID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, storeID uuid.UUID, status *enums.OrderStatus) ([]models.Order, error)
}

type service struct {
	db       *gorm.DB
	recorder audit.Recorder
}

// NewService wires an order service. The recorder may be nil in tests.
func NewService(db *gorm.DB, recorder audit.Recorder) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection required")
	}
	return &service{db: db, recorder: recorder}, nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if strings.TrimSpace(input.CustomerPhone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer phone required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))

		for _, line := range input.Items {
			product, err := s.reserveStock(tx, line, storeID)
			if err != nil {
				return err
			}
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.PriceRetail,
				Quantity:  line.Quantity,
			})
			subtotal = subtotal.Add(product.PriceRetail.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		deliveryFee := decimal.Zero
		if input.DeliveryZoneID != nil {
			var zone models.DeliveryZone
			if err := tx.First(&zone, "id = ? AND store_id = ?", *input.DeliveryZoneID, storeID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "delivery zone not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery zone")
			}
			deliveryFee = zone.Fee
		}

		discount := decimal.Zero
		var couponCode *string
		if input.CouponCode != nil && strings.TrimSpace(*input.CouponCode) != "" {
			coupon, err := redeemCoupon(tx, storeID, *input.CouponCode)
			if err != nil {
				return err
			}
			discount = coupons.Discount(coupon, subtotal)
			couponCode = &coupon.Code
		}

		order = &models.Order{
			StoreID:       storeID,
			Status:        enums.OrderStatusPending,
			Total:         subtotal.Sub(discount).Add(deliveryFee),
			DeliveryFee:   deliveryFee,
			Discount:      discount,
			CustomerName:  strings.TrimSpace(input.CustomerName),
			CustomerPhone: strings.TrimSpace(input.CustomerPhone),
			CouponCode:    couponCode,
			Items:         items,
		}
		if err := tx.Create(order).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, enums.ActionOrderCreated, order.ID,
		fmt.Sprintf("order of %s placed by %s", order.Total.StringFixed(2), order.CustomerPhone))
	return order, nil
}

// reserveStock snapshots the product and decrements its stock in one guarded
// update, so two concurrent checkouts cannot both take the last unit.
func (s *service) reserveStock(tx *gorm.DB, line ItemInput, storeID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := tx.First(&product, "id = ? AND store_id = ? AND is_archived = ?", line.ProductID, storeID, false).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	result := tx.Model(&models.Product{}).
		Where("id = ? AND store_id = ? AND stock_qty >= ?", line.ProductID, storeID, line.Quantity).
		Update("stock_qty", gorm.Expr("stock_qty - ?", line.Quantity))
	if result.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "reserve stock")
	}
	if result.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %q", product.Name)).
			WithDetails(map[string]any{"product_id": product.ID.String(), "available": product.StockQty})
	}
	return &product, nil
}

// redeemCoupon increments uses inside the checkout transaction; the guard
// mirrors internal/coupons so a capped code cannot be overdrawn.
func redeemCoupon(tx *gorm.DB, storeID uuid.UUID, code string) (*models.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var coupon models.Coupon
	if err := tx.First(&coupon, "store_id = ? AND code = ?", storeID, code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(tx.NowFunc()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon expired")
	}

	query := tx.Model(&models.Coupon{}).Where("id = ?", coupon.ID)
	if coupon.MaxUses != nil {
		query = query.Where("uses < ?", *coupon.MaxUses)
	}
	result := query.Update("uses", gorm.Expr("uses + 1"))
	if result.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "redeem coupon")
	}
	if result.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon fully redeemed")
	}
	return &coupon, nil
}

func (s *service) Complete(ctx context.Context, id, storeID uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.transition(tx, id, storeID, enums.OrderStatusCompleted)
		if err != nil {
			return err
		}
		if rows == 0 {
			return s.classifyMissedTransition(tx, id, storeID)
		}

		order = &models.Order{}
		if err := tx.Preload("Items").First(order, "id = ?", id).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}

		// The sale lands in the wallet when the order completes.
		txn := &models.WalletTransaction{
			StoreID:     storeID,
			Amount:      order.Total,
			Type:        enums.WalletTransactionSale,
			Description: fmt.Sprintf("sale for order %s", order.ID),
			ReferenceID: &order.ID,
		}
		if err := tx.Create(txn).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sale")
		}
		credited := tx.Model(&models.Store{}).
			Where("id = ?", storeID).
			Update("wallet_balance", gorm.Expr("wallet_balance + ?", order.Total))
		if credited.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, credited.Error, "credit wallet")
		}
		if credited.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeDependency, "store row missing during sale credit")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, enums.ActionOrderCompleted, id, fmt.Sprintf("completed order, %s credited", order.Total.StringFixed(2)))
	return order, nil
}

func (s *service) Cancel(ctx context.Context, id, storeID uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.transition(tx, id, storeID, enums.OrderStatusCancelled)
		if err != nil {
			return err
		}
		if rows == 0 {
			return s.classifyMissedTransition(tx, id, storeID)
		}

		order = &models.Order{}
		if err := tx.Preload("Items").First(order, "id = ?", id).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}

		// Return every reserved unit. Deleted products are skipped; there
		// is nothing left to restock.
		for _, item := range order.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock_qty", gorm.Expr("stock_qty + ?", item.Quantity)).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock item")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, enums.ActionOrderCancelled, id, "cancelled order and restocked items")
	return order, nil
}

func (s *service) transition(tx *gorm.DB, id, storeID uuid.UUID, to enums.OrderStatus) (int64, error) {
	result := tx.Model(&models.Order{}).
		Where("id = ? AND store_id = ? AND status = ?", id, storeID, enums.OrderStatusPending).
		Update("status", to)
	return result.RowsAffected, result.Error
}

func (s *service) classifyMissedTransition(tx *gorm.DB, id, storeID uuid.UUID) error {
	var current models.Order
	if err := tx.First(&current, "id = ? AND store_id = ?", id, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is already %s", current.Status)).
		WithDetails(map[string]any{"status": current.Status.String()})
}

func (s *service) Get(ctx context.Context, id, storeID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ? AND store_id = ?", id, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return &order, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, status *enums.OrderStatus) ([]models.Order, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	query := s.db.WithContext(ctx).Where("store_id = ?", storeID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var items []models.Order
	if err := query.Preload("Items").Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return items, nil
}

func (s *service) audit(ctx context.Context, action enums.AuditAction, orderID uuid.UUID, description string) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.Record(ctx, audit.Entry{
		Action:      action,
		Description: description,
		EntityType:  "order",
		EntityID:    orderID.String(),
	})
}
