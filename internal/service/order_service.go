package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront-orders/internal/broker"
	"storefront-orders/internal/models"
	"storefront-orders/internal/redisclient"
	"storefront-orders/internal/store"
	"storefront-orders/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService turns capture submissions into exactly one durable order
// each, and gates status changes through the state machine. The Redis
// client and the event publisher are optional collaborators; with nil
// the service skips caching and event publishing.
type OrderService struct {
	store          store.OrderStore
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
	lockTTL        time.Duration
}

// NewOrderService creates a new order service
func NewOrderService(
	st store.OrderStore,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	lockTTL time.Duration,
) *OrderService {
	return &OrderService{
		store:          st,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		lockTTL:        lockTTL,
	}
}

// CaptureSubmission is the payload the storefront posts after the
// payment provider reports a capture. Amount is a pointer so a missing
// field is distinguishable from zero.
type CaptureSubmission struct {
	PaymentRef    string           `json:"payment_ref"`
	ProductName   string           `json:"product_name"`
	Amount        *decimal.Decimal `json:"amount"`
	Currency      string           `json:"currency"`
	CaptureStatus string           `json:"capture_status"`
	BuyerName     string           `json:"buyer_name"`
	BuyerEmail    string           `json:"buyer_email"`
	Shipping      *AddressInput    `json:"shipping_address,omitempty"`
}

// AddressInput is the optional shipping address on a submission
type AddressInput struct {
	Line1       string `json:"line1"`
	Line2       string `json:"line2"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
}

// RecordCapture validates and persists a capture submission exactly
// once. A resubmission with an already-recorded payment ref is a
// success: the existing order is returned with replayed=true and no
// second record is created. A non-COMPLETED provider outcome is still
// persisted, as PENDING, so every money movement leaves a record.
func (s *OrderService) RecordCapture(ctx context.Context, sub *CaptureSubmission) (*models.Order, bool, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.RecordCapture")
	defer span.End()

	start := time.Now()
	defer func() {
		util.RecordCaptureLatency.Observe(time.Since(start).Seconds())
	}()

	if err := validateSubmission(sub); err != nil {
		util.OrdersRejectedTotal.WithLabelValues("validation").Inc()
		return nil, false, err
	}

	// The normalized ref is what gets stored; every later lookup for
	// this submission must use it, never the raw input.
	order := submissionToOrder(sub)

	// The unique index is the correctness guarantee; the lock only
	// sheds redundant insert attempts from rapid client retries.
	if s.redis != nil {
		if acquired, err := s.redis.AcquireCaptureLock(ctx, order.PaymentRef, s.lockTTL); err == nil && acquired {
			defer func() {
				_ = s.redis.ReleaseCaptureLock(context.Background(), order.PaymentRef)
			}()
		}
	}

	err := s.store.InsertOrder(ctx, order)
	if errors.Is(err, models.ErrDuplicatePaymentRef) {
		return s.resolveReplay(ctx, order.PaymentRef)
	}
	if err != nil {
		util.OrdersRejectedTotal.WithLabelValues("store_error").Inc()
		s.logger.Error("Capture recorded by provider but not persisted",
			zap.String("payment_ref", order.PaymentRef),
			zap.Error(err))
		return nil, false, err
	}

	util.OrdersRecordedTotal.Inc()
	s.logger.Info("Order recorded",
		zap.Int64("order_id", order.ID),
		zap.String("payment_ref", order.PaymentRef),
		zap.String("status", order.PaymentStatus))

	s.invalidateStatsCache(ctx)
	s.publishOrderRecorded(ctx, order)

	return order, false, nil
}

// resolveReplay returns the order already recorded for ref
func (s *OrderService) resolveReplay(ctx context.Context, ref string) (*models.Order, bool, error) {
	existing, err := s.store.GetOrderByPaymentRef(ctx, ref)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		// Insert reported a duplicate but the row is gone; only
		// possible if the ledger is flapping mid-request.
		return nil, false, &models.StoreUnavailableError{Err: models.ErrDuplicatePaymentRef}
	}

	util.CaptureReplaysTotal.Inc()
	s.logger.Info("Duplicate capture submission replayed",
		zap.String("payment_ref", ref),
		zap.Int64("order_id", existing.ID))

	if s.eventPublisher != nil {
		event := &models.CaptureReplayedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeCaptureReplayed,
				Timestamp: time.Now(),
			},
			OrderID:    existing.ID,
			PaymentRef: ref,
		}
		if err := s.eventPublisher.PublishCaptureReplayed(ctx, event); err != nil {
			s.logger.Error("Failed to publish CaptureReplayed event", zap.Error(err))
		}
	}

	return existing, true, nil
}

// UpdateStatus applies a payment status transition. It is the only
// mutator of recorded orders; the store re-validates the transition
// against the current state under a row lock.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, newStatus string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	newStatus = strings.ToUpper(strings.TrimSpace(newStatus))
	if !models.ValidStatus(newStatus) {
		return nil, &models.ValidationError{Field: "status", Reason: "is not a known payment status"}
	}

	order, prevStatus, err := s.store.UpdateOrderStatus(ctx, orderID, newStatus)
	if err != nil {
		var transitionErr *models.InvalidTransitionError
		if errors.As(err, &transitionErr) {
			util.InvalidTransitionsTotal.Inc()
		}
		return nil, err
	}

	util.StatusTransitionsTotal.WithLabelValues(newStatus).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", order.ID),
		zap.String("from", prevStatus),
		zap.String("status", newStatus))

	s.invalidateStatsCache(ctx)

	if s.eventPublisher != nil {
		event := &models.StatusChangedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeStatusChanged,
				Timestamp: time.Now(),
			},
			OrderID:    order.ID,
			FromStatus: prevStatus,
			ToStatus:   newStatus,
		}
		if err := s.eventPublisher.PublishStatusChanged(ctx, event); err != nil {
			s.logger.Error("Failed to publish StatusChanged event", zap.Error(err))
		}
	}

	return order, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.store.GetOrderByID(ctx, orderID)
}

// GetOrderByPaymentRef retrieves the order recorded for an external
// payment ref, or a NotFoundError when none exists.
func (s *OrderService) GetOrderByPaymentRef(ctx context.Context, ref string) (*models.Order, error) {
	order, err := s.store.GetOrderByPaymentRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &models.NotFoundError{PaymentRef: ref}
	}
	return order, nil
}

// ListOrders returns all orders in creation order
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.ListOrders(ctx)
}

func (s *OrderService) invalidateStatsCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.InvalidateStats(ctx); err != nil {
		s.logger.Warn("Failed to invalidate stats cache", zap.Error(err))
	}
}

func (s *OrderService) publishOrderRecorded(ctx context.Context, order *models.Order) {
	if s.eventPublisher == nil {
		return
	}
	event := &models.OrderRecordedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderRecorded,
			Timestamp: time.Now(),
		},
		OrderID:    order.ID,
		PaymentRef: order.PaymentRef,
		Amount:     order.Amount,
		Currency:   order.Currency,
		Status:     order.PaymentStatus,
	}
	if err := s.eventPublisher.PublishOrderRecorded(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderRecorded event", zap.Error(err))
	}
}

// submissionToOrder maps a validated submission onto the initial order
// record. Only a COMPLETED provider outcome starts COMPLETED; any other
// outcome starts PENDING.
func submissionToOrder(sub *CaptureSubmission) *models.Order {
	order := &models.Order{
		PaymentRef:    strings.TrimSpace(sub.PaymentRef),
		ProductName:   sub.ProductName,
		Amount:        *sub.Amount,
		Currency:      normalizeCurrency(sub.Currency),
		BuyerName:     sub.BuyerName,
		BuyerEmail:    sub.BuyerEmail,
		PaymentStatus: models.PaymentStatusPending,
	}
	if order.ProductName == "" {
		order.ProductName = "Unknown Product"
	}
	if strings.EqualFold(sub.CaptureStatus, models.PaymentStatusCompleted) {
		order.PaymentStatus = models.PaymentStatusCompleted
	}
	if sub.Shipping != nil {
		order.AddressLine1 = sub.Shipping.Line1
		order.AddressLine2 = sub.Shipping.Line2
		order.City = sub.Shipping.City
		order.State = sub.Shipping.State
		order.PostalCode = sub.Shipping.PostalCode
		order.CountryCode = sub.Shipping.CountryCode
	}
	return order
}
