package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	cartstore "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/cart/store"
	catalogdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/catalog/domain"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/clock"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/events"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/observability/logger"
	orderdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/order/domain"
	subscriptiondomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	GenID         *snowflake.Node
	Carts         *cartstore.Store
	Catalog       catalogdomain.Service
	Orders        orderdomain.Repository
	Subscriptions subscriptiondomain.Repository
	Outbox        *events.Outbox
	Gateway       PaymentGateway
}

// Coordinator is the only writer of orders and subscriptions. Every operation
// runs inside one transaction together with its outbox event, so observers
// never see a state change without its event or the other way around.
type Coordinator struct {
	db      *gorm.DB
	log     *zap.Logger
	clk     clock.Clock
	genID   *snowflake.Node
	carts   *cartstore.Store
	catalog catalogdomain.Service
	orders  orderdomain.Repository
	subs    subscriptiondomain.Repository
	outbox  *events.Outbox
	gateway PaymentGateway
	locks   *keyedLocks
}

func NewCoordinator(p Params) *Coordinator {
	return &Coordinator{
		db:      p.DB,
		log:     p.Log.Named("lifecycle.coordinator"),
		clk:     p.Clock,
		genID:   p.GenID,
		carts:   p.Carts,
		catalog: p.Catalog,
		orders:  p.Orders,
		subs:    p.Subscriptions,
		outbox:  p.Outbox,
		gateway: p.Gateway,
		locks:   newKeyedLocks(),
	}
}

type CheckoutRequest struct {
	SessionID string
	Billing   orderdomain.BillingSnapshot
	Discount  int64
	Tax       int64
}

// Checkout turns the session's cart into a pending order. The cart is cleared
// only after the order row and its created milestone are durably committed; a
// failed persist leaves the cart intact.
func (c *Coordinator) Checkout(ctx context.Context, req CheckoutRequest) (*orderdomain.Order, error) {
	snapshot := c.carts.Snapshot(req.SessionID)
	if snapshot.Empty() {
		return nil, orderdomain.ErrEmptyCart
	}

	order, err := orderdomain.NewOrder(c.genID, c.clk.Now(), snapshot.Lines, req.Billing, req.Discount, req.Tax)
	if err != nil {
		return nil, err
	}

	err = c.db.Transaction(func(tx *gorm.DB) error {
		if err := c.orders.Insert(ctx, tx, order); err != nil {
			return err
		}
		return c.outbox.PublishTx(ctx, tx, events.Event{
			Type:      events.EventOrderCreated,
			Payload:   events.OrderPayload{OrderID: order.ID.String(), Status: string(order.Status), Total: order.Total}.ToMap(),
			DedupeKey: fmt.Sprintf("%s:%d", events.EventOrderCreated, order.ID),
		})
	})
	if err != nil {
		return nil, err
	}

	c.carts.Clear(req.SessionID)
	c.log.Info("order created",
		zap.Int64("order_id", int64(order.ID)),
		zap.String("currency", order.Currency),
		zap.Int64("total", order.Total),
	)
	return order, nil
}

// ConfirmPayment charges the order and moves it from pending into
// provisioning, recording the paid milestone and provisioning the linked
// subscription when a line bills on a cycle. Confirming an order already past
// pending replays the current state without duplicating anything. A declined
// charge lands the order on payment_failed and is not an error; a charge cut
// short by the context deadline leaves the order untouched.
func (c *Coordinator) ConfirmPayment(ctx context.Context, orderID snowflake.ID) (*orderdomain.Order, error) {
	unlock := c.locks.lock(orderKey(orderID))
	defer unlock()

	order, err := c.orders.FindByID(ctx, c.db, orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case orderdomain.StatusProvisioning, orderdomain.StatusActive, orderdomain.StatusPaid, orderdomain.StatusCompleted:
		return order, nil
	case orderdomain.StatusPending:
	default:
		return nil, orderdomain.ErrIllegalTransition
	}

	if err := c.gateway.Charge(ctx, ChargeRequest{
		Reference: fmt.Sprintf("order:%d", order.ID),
		Amount:    order.Total,
		Currency:  order.Currency,
	}); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return c.recordPaymentFailure(ctx, order, err)
	}

	now := c.clk.Now()
	err = c.db.Transaction(func(tx *gorm.DB) error {
		entry, err := order.Transition(orderdomain.StatusProvisioning, c.genID, now)
		if err != nil {
			return err
		}
		if entry != nil {
			if err := c.orders.AppendTimeline(ctx, tx, entry); err != nil {
				return err
			}
		}

		if line, ok := order.RecurringLine(); ok && order.LinkedSubscriptionID == nil {
			sub, err := c.provisionSubscription(ctx, tx, order, line, now)
			if err != nil {
				return err
			}
			order.LinkedSubscriptionID = &sub.ID
		}

		if err := c.orders.Update(ctx, tx, order); err != nil {
			return err
		}
		return c.outbox.PublishTx(ctx, tx, events.Event{
			Type:      events.EventOrderPaymentConfirmed,
			Payload:   events.OrderPayload{OrderID: order.ID.String(), Status: string(order.Status), Total: order.Total}.ToMap(),
			DedupeKey: fmt.Sprintf("%s:%d", events.EventOrderPaymentConfirmed, order.ID),
		})
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("payment confirmed", zap.Int64("order_id", int64(order.ID)))
	return order, nil
}

func (c *Coordinator) recordPaymentFailure(ctx context.Context, order *orderdomain.Order, cause error) (*orderdomain.Order, error) {
	now := c.clk.Now()
	err := c.db.Transaction(func(tx *gorm.DB) error {
		if _, err := order.Transition(orderdomain.StatusPaymentFailed, c.genID, now); err != nil {
			return err
		}
		if err := c.orders.Update(ctx, tx, order); err != nil {
			return err
		}
		return c.outbox.PublishTx(ctx, tx, events.Event{
			Type:      events.EventOrderPaymentFailed,
			Payload:   events.OrderPayload{OrderID: order.ID.String(), Status: string(order.Status)}.ToMap(),
			DedupeKey: fmt.Sprintf("%s:%d:%d", events.EventOrderPaymentFailed, order.ID, order.Version),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Warn("payment declined",
		zap.Int64("order_id", int64(order.ID)),
		zap.Error(cause),
	)
	return order, nil
}

// provisionSubscription creates the recurring entity for the order's plan
// line, pulling seat and storage allowances from the catalog.
func (c *Coordinator) provisionSubscription(ctx context.Context, tx *gorm.DB, order *orderdomain.Order, line orderdomain.Line, now time.Time) (*subscriptiondomain.Subscription, error) {
	period, ok := subscriptiondomain.ParseBillingPeriod(line.BillingPeriod)
	if !ok {
		return nil, subscriptiondomain.ErrInvalidBillingPeriod
	}

	params := subscriptiondomain.NewSubscriptionParams{
		OrderID:       order.ID,
		PlanID:        line.ItemID,
		PlanName:      line.Title,
		BillingPeriod: period,
		Amount:        line.UnitPrice * line.Quantity,
		Currency:      order.Currency,
		Trial:         line.Trial,
	}
	if item, err := c.catalog.GetByCode(ctx, line.ItemID); err == nil {
		params.SeatsTotal = item.SeatsIncluded
		params.StorageTotal = item.StorageIncluded
		params.StorageUnit = item.StorageUnit
	} else if !errors.Is(err, catalogdomain.ErrNotFound) {
		return nil, err
	}

	sub, err := subscriptiondomain.NewSubscription(c.genID, now, params)
	if err != nil {
		return nil, err
	}
	if err := c.subs.Insert(ctx, tx, sub); err != nil {
		return nil, err
	}

	return sub, c.outbox.PublishTx(ctx, tx, events.Event{
		Type: events.EventSubscriptionActivated,
		Payload: events.SubscriptionPayload{
			SubscriptionID:  sub.ID.String(),
			OrderID:         order.ID.String(),
			Status:          string(sub.Status),
			NextBillingDate: sub.NextBillingDate.Format(time.RFC3339),
		}.ToMap(),
		DedupeKey: fmt.Sprintf("%s:%d", events.EventSubscriptionActivated, sub.ID),
	})
}

// FinishProvisioning settles a provisioned order: recurring orders land on
// active, one-off orders on paid, both recording the provisioning milestone.
func (c *Coordinator) FinishProvisioning(ctx context.Context, orderID snowflake.ID) (*orderdomain.Order, error) {
	unlock := c.locks.lock(orderKey(orderID))
	defer unlock()

	order, err := c.orders.FindByID(ctx, c.db, orderID)
	if err != nil {
		return nil, err
	}

	target := orderdomain.StatusPaid
	if _, ok := order.RecurringLine(); ok {
		target = orderdomain.StatusActive
	}
	if order.Status == target {
		return order, nil
	}

	if err := c.applyTransition(ctx, order, target, events.EventOrderActivated); err != nil {
		return nil, err
	}
	return order, nil
}

// MarkPaymentFailed records an out-of-band payment failure on a pending order.
func (c *Coordinator) MarkPaymentFailed(ctx context.Context, orderID snowflake.ID) (*orderdomain.Order, error) {
	unlock := c.locks.lock(orderKey(orderID))
	defer unlock()

	order, err := c.orders.FindByID(ctx, c.db, orderID)
	if err != nil {
		return nil, err
	}
	if err := c.applyTransition(ctx, order, orderdomain.StatusPaymentFailed, events.EventOrderPaymentFailed); err != nil {
		return nil, err
	}
	return order, nil
}

// RetryPayment returns a failed order to pending so payment can be attempted
// again.
func (c *Coordinator) RetryPayment(ctx context.Context, orderID snowflake.ID) (*orderdomain.Order, error) {
	unlock := c.locks.lock(orderKey(orderID))
	defer unlock()

	order, err := c.orders.FindByID(ctx, c.db, orderID)
	if err != nil {
		return nil, err
	}
	if err := c.applyTransition(ctx, order, orderdomain.StatusPending, ""); err != nil {
		return nil, err
	}
	return order, nil
}

// Complete closes out a delivered order, recording the delivery milestone.
func (c *Coordinator) Complete(ctx context.Context, orderID snowflake.ID) (*orderdomain.Order, error) {
	unlock := c.locks.lock(orderKey(orderID))
	defer unlock()

	order, err := c.orders.FindByID(ctx, c.db, orderID)
	if err != nil {
		return nil, err
	}
	if err := c.applyTransition(ctx, order, orderdomain.StatusCompleted, events.EventOrderCompleted); err != nil {
		return nil, err
	}
	return order, nil
}

// applyTransition runs one state-machine edge with its timeline entry and
// outbox event in a single transaction. An empty event type publishes nothing.
func (c *Coordinator) applyTransition(ctx context.Context, order *orderdomain.Order, target orderdomain.Status, eventType string) error {
	now := c.clk.Now()
	return c.db.Transaction(func(tx *gorm.DB) error {
		entry, err := order.Transition(target, c.genID, now)
		if err != nil {
			return err
		}
		if entry != nil {
			if err := c.orders.AppendTimeline(ctx, tx, entry); err != nil {
				return err
			}
		}
		if err := c.orders.Update(ctx, tx, order); err != nil {
			return err
		}
		if eventType == "" {
			return nil
		}
		return c.outbox.PublishTx(ctx, tx, events.Event{
			Type:      eventType,
			Payload:   events.OrderPayload{OrderID: order.ID.String(), Status: string(order.Status)}.ToMap(),
			DedupeKey: fmt.Sprintf("%s:%d:%d", eventType, order.ID, order.Version),
		})
	})
}

// UpdateStatus routes a requested target status onto the matching lifecycle
// operation. Cancellation is excluded here because it requires a reason.
func (c *Coordinator) UpdateStatus(ctx context.Context, orderID snowflake.ID, target orderdomain.Status) (*orderdomain.Order, error) {
	switch target {
	case orderdomain.StatusProvisioning:
		return c.ConfirmPayment(ctx, orderID)
	case orderdomain.StatusActive, orderdomain.StatusPaid:
		return c.FinishProvisioning(ctx, orderID)
	case orderdomain.StatusPaymentFailed:
		return c.MarkPaymentFailed(ctx, orderID)
	case orderdomain.StatusPending:
		return c.RetryPayment(ctx, orderID)
	case orderdomain.StatusCompleted:
		return c.Complete(ctx, orderID)
	default:
		return nil, orderdomain.ErrInvalidStatus
	}
}

// MarkKickoff records the project kickoff milestone without changing status.
func (c *Coordinator) MarkKickoff(ctx context.Context, orderID snowflake.ID, description string) (*orderdomain.Order, error) {
	unlock := c.locks.lock(orderKey(orderID))
	defer unlock()

	order, err := c.orders.FindByID(ctx, c.db, orderID)
	if err != nil {
		return nil, err
	}

	now := c.clk.Now()
	err = c.db.Transaction(func(tx *gorm.DB) error {
		entry, err := order.RecordMilestone(orderdomain.StageKickoff, description, c.genID, now)
		if err != nil {
			return err
		}
		if err := c.orders.AppendTimeline(ctx, tx, entry); err != nil {
			return err
		}
		return c.orders.Update(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel terminates an order from any non-terminal state and cascades to the
// linked subscription. Cancelling an already-cancelled order replays the
// current state.
func (c *Coordinator) Cancel(ctx context.Context, orderID snowflake.ID, reason string) (*orderdomain.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, subscriptiondomain.ErrMissingReason
	}

	unlock := c.locks.lock(orderKey(orderID))
	defer unlock()

	order, err := c.orders.FindByID(ctx, c.db, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == orderdomain.StatusCancelled {
		return order, nil
	}

	now := c.clk.Now()
	err = c.db.Transaction(func(tx *gorm.DB) error {
		if _, err := order.Transition(orderdomain.StatusCancelled, c.genID, now); err != nil {
			return err
		}
		order.CancelReason = &reason
		if err := c.orders.Update(ctx, tx, order); err != nil {
			return err
		}

		if order.LinkedSubscriptionID != nil {
			sub, err := c.subs.FindByID(ctx, tx, *order.LinkedSubscriptionID)
			if err != nil {
				return err
			}
			changed, err := sub.Cancel(reason, now)
			if err != nil {
				return err
			}
			if changed {
				if err := c.subs.Update(ctx, tx, sub); err != nil {
					return err
				}
				if err := c.publishSubscriptionEvent(ctx, tx, events.EventSubscriptionCancelled, sub); err != nil {
					return err
				}
			}
		}

		return c.outbox.PublishTx(ctx, tx, events.Event{
			Type:      events.EventOrderCancelled,
			Payload:   events.OrderPayload{OrderID: order.ID.String(), Status: string(order.Status)}.ToMap(),
			DedupeKey: fmt.Sprintf("%s:%d", events.EventOrderCancelled, order.ID),
		})
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("order cancelled",
		zap.Int64("order_id", int64(order.ID)),
		zap.String("reason", reason),
	)
	return order, nil
}

// CancelSubscription terminates a subscription and cascades the cancellation
// to the owning order when the subscription's plan is the order's only
// component. A second cancel is a no-op success.
func (c *Coordinator) CancelSubscription(ctx context.Context, subID snowflake.ID, reason string) (*subscriptiondomain.Subscription, error) {
	unlock := c.locks.lock(subscriptionKey(subID))
	defer unlock()

	sub, err := c.subs.FindByID(ctx, c.db, subID)
	if err != nil {
		return nil, err
	}

	now := c.clk.Now()
	changed, err := sub.Cancel(reason, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		return sub, nil
	}

	err = c.db.Transaction(func(tx *gorm.DB) error {
		if err := c.subs.Update(ctx, tx, sub); err != nil {
			return err
		}
		if err := c.publishSubscriptionEvent(ctx, tx, events.EventSubscriptionCancelled, sub); err != nil {
			return err
		}

		order, err := c.orders.FindByID(ctx, tx, sub.OrderID)
		if err != nil {
			if errors.Is(err, orderdomain.ErrOrderNotFound) {
				return nil
			}
			return err
		}
		if order.Status.Terminal() || !order.SoleComponent(sub.PlanID) {
			return nil
		}

		if _, err := order.Transition(orderdomain.StatusCancelled, c.genID, now); err != nil {
			return err
		}
		order.CancelReason = &reason
		if err := c.orders.Update(ctx, tx, order); err != nil {
			return err
		}
		return c.outbox.PublishTx(ctx, tx, events.Event{
			Type:      events.EventOrderCancelled,
			Payload:   events.OrderPayload{OrderID: order.ID.String(), Status: string(order.Status)}.ToMap(),
			DedupeKey: fmt.Sprintf("%s:%d", events.EventOrderCancelled, order.ID),
		})
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("subscription cancelled",
		zap.Int64("subscription_id", int64(sub.ID)),
		zap.String("reason", reason),
	)
	return sub, nil
}

// Renew charges the subscription for the next period. Success advances the
// billing date by exactly one period; a declined or unavailable gateway marks
// the subscription renewal_failed with the date untouched and surfaces
// ErrRenewalFailed. A context deadline leaves state untouched.
func (c *Coordinator) Renew(ctx context.Context, subID snowflake.ID) (*subscriptiondomain.Subscription, error) {
	unlock := c.locks.lock(subscriptionKey(subID))
	defer unlock()

	sub, err := c.subs.FindByID(ctx, c.db, subID)
	if err != nil {
		return nil, err
	}
	if !sub.CanRenew() {
		return nil, subscriptiondomain.ErrSubscriptionCancelled
	}

	now := c.clk.Now()
	chargeErr := c.gateway.Charge(ctx, ChargeRequest{
		Reference: fmt.Sprintf("renewal:%d:%d", sub.ID, sub.NextBillingDate.Unix()),
		Amount:    sub.Amount,
		Currency:  sub.Currency,
	})
	if chargeErr != nil {
		if errors.Is(chargeErr, context.DeadlineExceeded) || errors.Is(chargeErr, context.Canceled) {
			return nil, chargeErr
		}

		sub.MarkRenewalFailed(now)
		err = c.db.Transaction(func(tx *gorm.DB) error {
			if err := c.subs.Update(ctx, tx, sub); err != nil {
				return err
			}
			return c.publishSubscriptionEvent(ctx, tx, events.EventSubscriptionRenewalFailed, sub)
		})
		if err != nil {
			return nil, err
		}

		logger.FromContext(ctx).Warn("renewal failed",
			zap.Int64("subscription_id", int64(sub.ID)),
			zap.Error(chargeErr),
		)
		return sub, subscriptiondomain.ErrRenewalFailed
	}

	if err := sub.AdvancePeriod(now); err != nil {
		return nil, err
	}
	err = c.db.Transaction(func(tx *gorm.DB) error {
		if err := c.subs.Update(ctx, tx, sub); err != nil {
			return err
		}
		return c.publishSubscriptionEvent(ctx, tx, events.EventSubscriptionRenewed, sub)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("subscription renewed",
		zap.Int64("subscription_id", int64(sub.ID)),
		zap.Time("next_billing_date", sub.NextBillingDate),
	)
	return sub, nil
}

// RecordUsage overwrites the subscription's usage counters. Overage is
// accepted and reported through the returned view, never rejected.
func (c *Coordinator) RecordUsage(ctx context.Context, subID snowflake.ID, seats, storage *int64) (*subscriptiondomain.Subscription, error) {
	unlock := c.locks.lock(subscriptionKey(subID))
	defer unlock()

	sub, err := c.subs.FindByID(ctx, c.db, subID)
	if err != nil {
		return nil, err
	}

	sub.RecordUsage(seats, storage, c.clk.Now())
	if err := c.subs.Update(ctx, c.db, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (c *Coordinator) publishSubscriptionEvent(ctx context.Context, tx *gorm.DB, eventType string, sub *subscriptiondomain.Subscription) error {
	return c.outbox.PublishTx(ctx, tx, events.Event{
		Type: eventType,
		Payload: events.SubscriptionPayload{
			SubscriptionID:  sub.ID.String(),
			OrderID:         sub.OrderID.String(),
			Status:          string(sub.Status),
			NextBillingDate: sub.NextBillingDate.Format(time.RFC3339),
		}.ToMap(),
		DedupeKey: fmt.Sprintf("%s:%d:%d", eventType, sub.ID, sub.Version),
	})
}
