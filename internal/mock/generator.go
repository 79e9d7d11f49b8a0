// Package mock publishes synthetic order and promotion events so the admin
// console can be exercised without the storefront backend.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/pcparts/notify-relay/internal/ingest"
	"github.com/pcparts/notify-relay/internal/notify"
	"go.uber.org/zap"
)

type mockCustomer struct {
	name  string
	email string
	phone string
}

type mockPromotion struct {
	name     string
	code     string
	discount float64
}

var customers = []mockCustomer{
	{"Nguyen Van A", "vana@example.vn", "0901234567"},
	{"Tran Thi B", "thib@example.vn", "0912345678"},
	{"Le Hoang C", "", "0987654321"},
	{"", "", "0933334444"}, // walk-in, no name
	{"Pham Minh D", "minhd@example.vn", "0977001122"},
}

var promotions = []mockPromotion{
	{"Tet Sale", "TET24", 50000},
	{"GPU Week", "GPU10", 200000},
	{"Back to School", "BTS", 100000},
	{"SSD Flash Deal", "SSD15", 150000},
}

var statuses = []string{"pending", "pending", "confirmed", "paid"}

// promotionEvery is how many order ticks pass between promotion sweeps.
const promotionEvery = 4

type Generator struct {
	svc      ingest.Submitter
	interval time.Duration
	rng      *rand.Rand
	log      *zap.Logger

	nextOrder int
	tick      int
}

func NewGenerator(svc ingest.Submitter, interval time.Duration, seed int64, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		svc:       svc,
		interval:  interval,
		rng:       rand.New(rand.NewSource(seed)),
		log:       log,
		nextOrder: 1000,
	}
}

// Start publishes events every interval until ctx is cancelled.
func (g *Generator) Start(ctx context.Context) {
	go g.run(ctx)
}

func (g *Generator) run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Step(ctx)
		}
	}
}

// Step publishes one order, plus a promotion sweep every few ticks.
func (g *Generator) Step(ctx context.Context) {
	g.tick++
	if body, err := g.orderBody(); err != nil {
		g.log.Error("encoding mock order", zap.Error(err))
	} else if _, err := g.svc.SubmitOrder(ctx, body); err != nil {
		g.log.Warn("mock order rejected", zap.Error(err))
	}
	if g.tick%promotionEvery != 0 {
		return
	}

	body, err := g.promotionBody()
	if err != nil {
		g.log.Error("encoding mock promotions", zap.Error(err))
		return
	}
	res, err := g.svc.SubmitPromotions(ctx, body)
	if err != nil {
		g.log.Warn("mock promotions rejected", zap.Error(err))
		return
	}
	g.log.Debug("mock promotions sent", zap.Int("admins", res.AdminCount))
}

// orderBody alternates numeric and decimal-string totals, as the storefront
// backends do.
func (g *Generator) orderBody() ([]byte, error) {
	g.nextOrder++
	c := customers[g.rng.Intn(len(customers))]

	total := float64(g.rng.Intn(400)+10) * 50000
	req := notify.OrderRequest{
		OrderID:      json.RawMessage(strconv.Itoa(g.nextOrder)),
		ContactPhone: notify.Text(c.phone),
		OrderTotal:   notify.Number(total),
		Items:        json.RawMessage(strconv.Itoa(g.rng.Intn(5) + 1)),
		Status:       notify.Text(statuses[g.rng.Intn(len(statuses))]),
	}
	if g.nextOrder%2 == 0 {
		req.OrderTotal = notify.Text(strconv.FormatFloat(total, 'f', 2, 64))
	}
	if c.name != "" {
		req.CustomerName = notify.Text(c.name)
	}
	if c.email != "" {
		req.CustomerEmail = notify.Text(c.email)
	}
	return json.Marshal(req)
}

func (g *Generator) promotionBody() ([]byte, error) {
	n := g.rng.Intn(len(promotions)) + 1
	now := time.Now()

	req := notify.PromotionRequest{Promotions: make([]notify.PromotionSummary, 0, n)}
	for i, idx := range g.rng.Perm(len(promotions))[:n] {
		p := promotions[idx]
		days := g.rng.Intn(3) + 1
		req.Promotions = append(req.Promotions, notify.PromotionSummary{
			ID:            json.RawMessage(strconv.Itoa(idx + 1)),
			Name:          notify.Text(p.name),
			Code:          notify.Text(fmt.Sprintf("%s-%d", p.code, i)),
			ExpiryDate:    notify.Text(now.AddDate(0, 0, days).Format("2006-01-02")),
			DaysRemaining: notify.Number(float64(days)),
			DiscountValue: notify.Number(p.discount),
		})
	}
	return json.Marshal(req)
}
