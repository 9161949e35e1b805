package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	cartdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/cart/domain"
	cartstore "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/cart/store"
	catalogdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/catalog/domain"
	catalogservice "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/catalog/service"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/clock"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/events"
	orderdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/order/domain"
	orderrepository "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/order/repository"
	subscriptiondomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/subscription/domain"
	subscriptionrepository "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/subscription/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

type fakeGateway struct {
	err   error
	calls int
}

func (g *fakeGateway) Charge(ctx context.Context, req ChargeRequest) error {
	g.calls++
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return g.err
}

type fixture struct {
	db      *gorm.DB
	clk     *clock.Manual
	node    *snowflake.Node
	carts   *cartstore.Store
	orders  orderdomain.Repository
	subs    subscriptiondomain.Repository
	gateway *fakeGateway
	coord   *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:lifecycle_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&catalogdomain.Item{},
		&orderdomain.Order{},
		&orderdomain.Line{},
		&orderdomain.TimelineEntry{},
		&subscriptiondomain.Subscription{},
		&events.LifecycleEvent{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	clk := &clock.Manual{Current: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	carts := cartstore.New(clk, time.Hour)
	gateway := &fakeGateway{}
	orders := orderrepository.Provide()
	subs := subscriptionrepository.Provide()

	seedItems := []catalogdomain.Item{
		{
			ID:        node.Generate(),
			Code:      "brand-identity",
			Title:     "Brand Identity Package",
			UnitPrice: 50000,
			Currency:  "INR",
		},
		{
			ID:              node.Generate(),
			Code:            "seo-retainer",
			Title:           "SEO Retainer",
			UnitPrice:       4500000,
			Currency:        "INR",
			BillingPeriod:   "monthly",
			Trial:           true,
			SeatsIncluded:   3,
			StorageIncluded: 50,
			StorageUnit:     "GB",
		},
	}
	if err := db.Create(&seedItems).Error; err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	coord := NewCoordinator(Params{
		DB:            db,
		Log:           zap.NewNop(),
		Clock:         clk,
		GenID:         node,
		Carts:         carts,
		Catalog:       catalogservice.NewService(catalogservice.Params{DB: db, Log: zap.NewNop()}),
		Orders:        orders,
		Subscriptions: subs,
		Outbox:        events.NewOutbox(db, node),
		Gateway:       gateway,
	})

	return &fixture{
		db:      db,
		clk:     clk,
		node:    node,
		carts:   carts,
		orders:  orders,
		subs:    subs,
		gateway: gateway,
		coord:   coord,
	}
}

func (f *fixture) addToCart(t *testing.T, session, code string, qty int64) {
	t.Helper()
	item, err := f.coord.catalog.GetByCode(context.Background(), code)
	if err != nil {
		t.Fatalf("catalog item %s: %v", code, err)
	}
	_, err = f.carts.Add(session, cartdomain.Line{
		ItemID:        item.Code,
		Title:         item.Title,
		UnitPrice:     item.UnitPrice,
		Currency:      item.Currency,
		Quantity:      qty,
		BillingPeriod: item.BillingPeriod,
		Trial:         item.Trial,
	})
	if err != nil {
		t.Fatalf("add to cart: %v", err)
	}
}

func (f *fixture) checkout(t *testing.T, session string) *orderdomain.Order {
	t.Helper()
	order, err := f.coord.Checkout(context.Background(), CheckoutRequest{
		SessionID: session,
		Billing:   orderdomain.BillingSnapshot{Name: "Asha Rao", Email: "asha@example.in"},
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	return order
}

func (f *fixture) eventCount(t *testing.T, eventType string) int64 {
	t.Helper()
	var n int64
	err := f.db.Model(&events.LifecycleEvent{}).
		Where("event_type = ?", eventType).
		Count(&n).Error
	if err != nil {
		t.Fatalf("count events: %v", err)
	}
	return n
}

func TestCheckoutCreatesPendingOrder(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "brand-identity", 2)

	order := f.checkout(t, "sess-1")

	if order.Status != orderdomain.StatusPending {
		t.Fatalf("status: got %s", order.Status)
	}
	if order.Subtotal != 100000 || order.Total != 100000 {
		t.Fatalf("totals: subtotal=%d total=%d", order.Subtotal, order.Total)
	}
	if !f.carts.Snapshot("sess-1").Empty() {
		t.Fatal("cart must be cleared after a committed checkout")
	}

	stored, err := f.orders.FindByID(context.Background(), f.db, order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(stored.Timeline) != 1 || stored.Timeline[0].Stage != orderdomain.StageCreated {
		t.Fatalf("timeline: %+v", stored.Timeline)
	}
	if got := f.eventCount(t, events.EventOrderCreated); got != 1 {
		t.Fatalf("order.created events: got %d", got)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.coord.Checkout(context.Background(), CheckoutRequest{SessionID: "sess-1"})
	if !errors.Is(err, orderdomain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutValidationLeavesCartIntact(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "brand-identity", 1)

	_, err := f.coord.Checkout(context.Background(), CheckoutRequest{
		SessionID: "sess-1",
		Discount:  999999999,
	})
	if !errors.Is(err, orderdomain.ErrInvalidTotal) {
		t.Fatalf("expected ErrInvalidTotal, got %v", err)
	}
	if f.carts.Snapshot("sess-1").Empty() {
		t.Fatal("failed checkout must not clear the cart")
	}
}

func TestCheckoutPersistFailureLeavesCartIntact(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "brand-identity", 1)

	if err := f.db.Migrator().DropTable(&orderdomain.Order{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	if _, err := f.coord.Checkout(context.Background(), CheckoutRequest{SessionID: "sess-1"}); err == nil {
		t.Fatal("expected persist failure")
	}
	if f.carts.Snapshot("sess-1").Empty() {
		t.Fatal("failed persist must not clear the cart")
	}
}

func TestConfirmPaymentProvisionsSubscription(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "seo-retainer", 1)
	order := f.checkout(t, "sess-1")

	confirmed, err := f.coord.ConfirmPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != orderdomain.StatusProvisioning {
		t.Fatalf("status: got %s", confirmed.Status)
	}
	if confirmed.LinkedSubscriptionID == nil {
		t.Fatal("recurring order must link a subscription")
	}

	sub, err := f.subs.FindByID(context.Background(), f.db, *confirmed.LinkedSubscriptionID)
	if err != nil {
		t.Fatalf("load subscription: %v", err)
	}
	if sub.Status != subscriptiondomain.StatusTrial {
		t.Fatalf("trial plan must start in trial, got %s", sub.Status)
	}
	if sub.SeatsTotal != 3 || sub.StorageTotal != 50 {
		t.Fatalf("allowances from catalog: seats=%d storage=%d", sub.SeatsTotal, sub.StorageTotal)
	}
	if sub.Amount != 4500000 || sub.Currency != "INR" {
		t.Fatalf("charge snapshot: amount=%d currency=%s", sub.Amount, sub.Currency)
	}

	stored, err := f.orders.FindByID(context.Background(), f.db, order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(stored.Timeline) != 2 || stored.Timeline[1].Stage != orderdomain.StagePaid {
		t.Fatalf("timeline after confirm: %+v", stored.Timeline)
	}
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "seo-retainer", 1)
	order := f.checkout(t, "sess-1")

	first, err := f.coord.ConfirmPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	replay, err := f.coord.ConfirmPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay.Status != first.Status {
		t.Fatalf("replay changed status: %s vs %s", replay.Status, first.Status)
	}

	var subCount int64
	if err := f.db.Model(&subscriptiondomain.Subscription{}).Count(&subCount).Error; err != nil {
		t.Fatalf("count subscriptions: %v", err)
	}
	if subCount != 1 {
		t.Fatalf("replay must not duplicate subscriptions, got %d", subCount)
	}

	var entryCount int64
	if err := f.db.Model(&orderdomain.TimelineEntry{}).Where("order_id = ?", order.ID).Count(&entryCount).Error; err != nil {
		t.Fatalf("count timeline: %v", err)
	}
	if entryCount != 2 {
		t.Fatalf("replay must not duplicate timeline entries, got %d", entryCount)
	}
	if got := f.eventCount(t, events.EventOrderPaymentConfirmed); got != 1 {
		t.Fatalf("payment_confirmed events: got %d", got)
	}
	if f.gateway.calls != 1 {
		t.Fatalf("replay must not re-charge, calls=%d", f.gateway.calls)
	}
}

func TestConfirmPaymentDeclined(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "brand-identity", 1)
	order := f.checkout(t, "sess-1")

	f.gateway.err = errors.New("card_declined")
	failed, err := f.coord.ConfirmPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("declined confirm must not error: %v", err)
	}
	if failed.Status != orderdomain.StatusPaymentFailed {
		t.Fatalf("status: got %s", failed.Status)
	}
	if got := f.eventCount(t, events.EventOrderPaymentFailed); got != 1 {
		t.Fatalf("payment_failed events: got %d", got)
	}

	// confirming from payment_failed is an illegal edge
	f.gateway.err = nil
	if _, err := f.coord.ConfirmPayment(context.Background(), order.ID); !errors.Is(err, orderdomain.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}

	// the retry path goes back through pending
	if _, err := f.coord.RetryPayment(context.Background(), order.ID); err != nil {
		t.Fatalf("retry: %v", err)
	}
	retried, err := f.coord.ConfirmPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("confirm after retry: %v", err)
	}
	if retried.Status != orderdomain.StatusProvisioning {
		t.Fatalf("status after retry: got %s", retried.Status)
	}
}

func TestConfirmPaymentHonorsContextDeadline(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "brand-identity", 1)
	order := f.checkout(t, "sess-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.coord.ConfirmPayment(ctx, order.ID); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	stored, err := f.orders.FindByID(context.Background(), f.db, order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != orderdomain.StatusPending {
		t.Fatalf("timed-out charge must leave the order untouched, got %s", stored.Status)
	}
}

func TestFinishProvisioning(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "seo-retainer", 1)
	order := f.checkout(t, "sess-1")
	if _, err := f.coord.ConfirmPayment(context.Background(), order.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	settled, err := f.coord.FinishProvisioning(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("finish provisioning: %v", err)
	}
	if settled.Status != orderdomain.StatusActive {
		t.Fatalf("recurring order must settle on active, got %s", settled.Status)
	}

	replay, err := f.coord.FinishProvisioning(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay.Status != orderdomain.StatusActive {
		t.Fatalf("replay status: %s", replay.Status)
	}

	var entryCount int64
	if err := f.db.Model(&orderdomain.TimelineEntry{}).Where("order_id = ?", order.ID).Count(&entryCount).Error; err != nil {
		t.Fatalf("count timeline: %v", err)
	}
	if entryCount != 3 {
		t.Fatalf("timeline entries: got %d, want 3", entryCount)
	}
}

func TestOneOffOrderSettlesOnPaid(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "brand-identity", 1)
	order := f.checkout(t, "sess-1")
	confirmed, err := f.coord.ConfirmPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.LinkedSubscriptionID != nil {
		t.Fatal("one-off order must not provision a subscription")
	}

	settled, err := f.coord.FinishProvisioning(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("finish provisioning: %v", err)
	}
	if settled.Status != orderdomain.StatusPaid {
		t.Fatalf("one-off order must settle on paid, got %s", settled.Status)
	}
}

func TestKickoffAndComplete(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "seo-retainer", 1)
	order := f.checkout(t, "sess-1")
	if _, err := f.coord.ConfirmPayment(context.Background(), order.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := f.coord.FinishProvisioning(context.Background(), order.ID); err != nil {
		t.Fatalf("finish provisioning: %v", err)
	}

	if _, err := f.coord.MarkKickoff(context.Background(), order.ID, "kickoff call held"); err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	done, err := f.coord.Complete(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != orderdomain.StatusCompleted {
		t.Fatalf("status: got %s", done.Status)
	}

	stored, err := f.orders.FindByID(context.Background(), f.db, order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	stages := make([]orderdomain.Stage, 0, len(stored.Timeline))
	for _, entry := range stored.Timeline {
		stages = append(stages, entry.Stage)
	}
	want := []orderdomain.Stage{
		orderdomain.StageCreated,
		orderdomain.StagePaid,
		orderdomain.StageProvisioning,
		orderdomain.StageKickoff,
		orderdomain.StageDelivery,
	}
	if len(stages) != len(want) {
		t.Fatalf("stages: %v", stages)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Fatalf("stages: got %v, want %v", stages, want)
		}
	}
	if !orderdomain.DonePrefix(stored.Timeline) {
		t.Fatal("done flags must form a canonical prefix")
	}

	if _, err := f.coord.Complete(context.Background(), order.ID); !errors.Is(err, orderdomain.ErrIllegalTransition) {
		t.Fatalf("completing twice: expected ErrIllegalTransition, got %v", err)
	}
}

func TestCancelCascadesToSubscription(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "seo-retainer", 1)
	order := f.checkout(t, "sess-1")
	confirmed, err := f.coord.ConfirmPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	cancelled, err := f.coord.Cancel(context.Background(), order.ID, "project on hold")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != orderdomain.StatusCancelled {
		t.Fatalf("status: got %s", cancelled.Status)
	}

	sub, err := f.subs.FindByID(context.Background(), f.db, *confirmed.LinkedSubscriptionID)
	if err != nil {
		t.Fatalf("load subscription: %v", err)
	}
	if sub.Status != subscriptiondomain.StatusCancelled {
		t.Fatalf("cascade: subscription status %s", sub.Status)
	}

	// idempotent replay
	again, err := f.coord.Cancel(context.Background(), order.ID, "project on hold")
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if again.Status != orderdomain.StatusCancelled {
		t.Fatalf("replay status: %s", again.Status)
	}
	if got := f.eventCount(t, events.EventOrderCancelled); got != 1 {
		t.Fatalf("order.cancelled events: got %d", got)
	}
}

func TestCancelRequiresReason(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "brand-identity", 1)
	order := f.checkout(t, "sess-1")

	if _, err := f.coord.Cancel(context.Background(), order.ID, "  "); !errors.Is(err, subscriptiondomain.ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}
}

func TestCancelSubscriptionCascadesToSoleComponentOrder(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "seo-retainer", 1)
	order := f.checkout(t, "sess-1")
	confirmed, err := f.coord.ConfirmPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	sub, err := f.coord.CancelSubscription(context.Background(), *confirmed.LinkedSubscriptionID, "too expensive")
	if err != nil {
		t.Fatalf("cancel subscription: %v", err)
	}
	if sub.Status != subscriptiondomain.StatusCancelled {
		t.Fatalf("subscription status: %s", sub.Status)
	}

	stored, err := f.orders.FindByID(context.Background(), f.db, order.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if stored.Status != orderdomain.StatusCancelled {
		t.Fatalf("sole-component order must cascade to cancelled, got %s", stored.Status)
	}

	// second cancel is a no-op success
	if _, err := f.coord.CancelSubscription(context.Background(), sub.ID, "again"); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
}

func TestCancelSubscriptionKeepsMixedOrder(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "seo-retainer", 1)
	f.addToCart(t, "sess-1", "brand-identity", 1)
	order := f.checkout(t, "sess-1")
	confirmed, err := f.coord.ConfirmPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := f.coord.CancelSubscription(context.Background(), *confirmed.LinkedSubscriptionID, "plan only"); err != nil {
		t.Fatalf("cancel subscription: %v", err)
	}

	stored, err := f.orders.FindByID(context.Background(), f.db, order.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if stored.Status == orderdomain.StatusCancelled {
		t.Fatal("order with other components must survive a subscription cancel")
	}
}

func TestRenewAdvancesOnePeriod(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "seo-retainer", 1)
	order := f.checkout(t, "sess-1")
	confirmed, err := f.coord.ConfirmPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	subID := *confirmed.LinkedSubscriptionID

	before, err := f.subs.FindByID(context.Background(), f.db, subID)
	if err != nil {
		t.Fatalf("load subscription: %v", err)
	}

	renewed, err := f.coord.Renew(context.Background(), subID)
	if err != nil {
		t.Fatalf("renew: %v", err)
	}
	if want := before.NextBillingDate.AddDate(0, 1, 0); !renewed.NextBillingDate.Equal(want) {
		t.Fatalf("billing date: got %s, want %s", renewed.NextBillingDate, want)
	}
	if renewed.Status != subscriptiondomain.StatusActive {
		t.Fatalf("status: got %s", renewed.Status)
	}
	if got := f.eventCount(t, events.EventSubscriptionRenewed); got != 1 {
		t.Fatalf("renewed events: got %d", got)
	}
}

func TestRenewFailureKeepsDateAndRetries(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "seo-retainer", 1)
	order := f.checkout(t, "sess-1")
	confirmed, err := f.coord.ConfirmPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	subID := *confirmed.LinkedSubscriptionID

	before, err := f.subs.FindByID(context.Background(), f.db, subID)
	if err != nil {
		t.Fatalf("load subscription: %v", err)
	}

	f.gateway.err = ErrGatewayUnavailable
	failed, err := f.coord.Renew(context.Background(), subID)
	if !errors.Is(err, subscriptiondomain.ErrRenewalFailed) {
		t.Fatalf("expected ErrRenewalFailed, got %v", err)
	}
	if failed.Status != subscriptiondomain.StatusRenewalFailed {
		t.Fatalf("status: got %s", failed.Status)
	}
	if !failed.NextBillingDate.Equal(before.NextBillingDate) {
		t.Fatal("failed renewal must not move the billing date")
	}

	// retry succeeds once the gateway recovers
	f.gateway.err = nil
	retried, err := f.coord.Renew(context.Background(), subID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if want := before.NextBillingDate.AddDate(0, 1, 0); !retried.NextBillingDate.Equal(want) {
		t.Fatalf("billing date after retry: got %s, want %s", retried.NextBillingDate, want)
	}
}

func TestRenewCancelledSubscription(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "seo-retainer", 1)
	order := f.checkout(t, "sess-1")
	confirmed, err := f.coord.ConfirmPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	subID := *confirmed.LinkedSubscriptionID
	if _, err := f.coord.CancelSubscription(context.Background(), subID, "done"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := f.coord.Renew(context.Background(), subID); !errors.Is(err, subscriptiondomain.ErrSubscriptionCancelled) {
		t.Fatalf("expected ErrSubscriptionCancelled, got %v", err)
	}
}

func TestRecordUsagePersistsOverage(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "seo-retainer", 1)
	order := f.checkout(t, "sess-1")
	confirmed, err := f.coord.ConfirmPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	subID := *confirmed.LinkedSubscriptionID

	seats := int64(7)
	sub, err := f.coord.RecordUsage(context.Background(), subID, &seats, nil)
	if err != nil {
		t.Fatalf("record usage: %v", err)
	}
	if usage := sub.Usage(); usage.Seats.Used != 7 || !usage.Seats.OverLimit {
		t.Fatalf("usage: %+v", usage)
	}

	stored, err := f.subs.FindByID(context.Background(), f.db, subID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.SeatsUsed != 7 {
		t.Fatalf("persisted seats: %d", stored.SeatsUsed)
	}
}

func TestStaleVersionIsRejected(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, "sess-1", "brand-identity", 1)
	order := f.checkout(t, "sess-1")

	fresh, err := f.orders.FindByID(context.Background(), f.db, order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	stale, err := f.orders.FindByID(context.Background(), f.db, order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	fresh.Status = orderdomain.StatusPaymentFailed
	if err := f.orders.Update(context.Background(), f.db, fresh); err != nil {
		t.Fatalf("first update: %v", err)
	}

	stale.Status = orderdomain.StatusCancelled
	if err := f.orders.Update(context.Background(), f.db, stale); !errors.Is(err, orderdomain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}
