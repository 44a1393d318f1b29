// Package cart is the shopper's line-item ledger. A Ledger belongs to one
// browser session and has a single writer; it is not safe for concurrent
// use. Every mutation is written through a Store before it becomes visible.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/pricing"
)

// ErrInvalidQuantity is returned by Add for quantities below one.
var ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")

// Line is one product in the cart. UnitPrice is fixed when the product is
// first added; later catalog price changes do not touch it.
type Line struct {
	ProductID     uint            `json:"product_id"`
	Name          string          `json:"name"`
	Code          string          `json:"code"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	RetailPrice   decimal.Decimal `json:"retail_price"`
	CustomerPrice decimal.Decimal `json:"customer_price"`
	Quantity      int             `json:"quantity"`
	Image         string          `json:"image,omitempty"`
}

// Subtotal is UnitPrice × Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Ledger is a viewer's cart.
type Ledger struct {
	viewer pricing.Viewer
	store  Store
	lines  []Line
}

// Open loads the persisted lines for viewer from store.
func Open(ctx context.Context, viewer pricing.Viewer, store Store) (*Ledger, error) {
	lines, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}
	return &Ledger{viewer: viewer, store: store, lines: lines}, nil
}

// Viewer is the identity prices are resolved against.
func (l *Ledger) Viewer() pricing.Viewer { return l.viewer }

// commit persists next and, on success, makes it the current state.
func (l *Ledger) commit(ctx context.Context, next []Line) error {
	if err := l.store.Save(ctx, next); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	l.lines = next
	return nil
}

func (l *Ledger) index(productID uint) int {
	for i, ln := range l.lines {
		if ln.ProductID == productID {
			return i
		}
	}
	return -1
}

func (l *Ledger) copyLines() []Line {
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// Add puts qty of p in the cart. An existing line for the same product has
// its quantity increased; otherwise a line is appended with the viewer's
// price for p.
func (l *Ledger) Add(ctx context.Context, p models.Product, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	next := l.copyLines()
	if i := l.index(p.ID); i >= 0 {
		next[i].Quantity += qty
		return l.commit(ctx, next)
	}
	next = append(next, Line{
		ProductID:     p.ID,
		Name:          p.Name,
		Code:          p.Code(),
		UnitPrice:     pricing.PriceFor(p, l.viewer),
		RetailPrice:   p.RetailPrice,
		CustomerPrice: p.CustomerPrice,
		Quantity:      qty,
		Image:         p.Image(),
	})
	return l.commit(ctx, next)
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it.
// Unknown products are ignored.
func (l *Ledger) UpdateQuantity(ctx context.Context, productID uint, qty int) error {
	if qty <= 0 {
		return l.Remove(ctx, productID)
	}
	i := l.index(productID)
	if i < 0 {
		return nil
	}
	next := l.copyLines()
	next[i].Quantity = qty
	return l.commit(ctx, next)
}

// Remove drops a line if present.
func (l *Ledger) Remove(ctx context.Context, productID uint) error {
	i := l.index(productID)
	if i < 0 {
		return nil
	}
	next := make([]Line, 0, len(l.lines)-1)
	next = append(next, l.lines[:i]...)
	next = append(next, l.lines[i+1:]...)
	return l.commit(ctx, next)
}

// Clear empties the cart.
func (l *Ledger) Clear(ctx context.Context) error {
	return l.commit(ctx, []Line{})
}

// Lines returns a copy of the lines in insertion order.
func (l *Ledger) Lines() []Line { return l.copyLines() }

// Count is the total number of units.
func (l *Ledger) Count() int {
	n := 0
	for _, ln := range l.lines {
		n += ln.Quantity
	}
	return n
}

func (l *Ledger) Subtotal() decimal.Decimal { return subtotal(l.lines) }

// Savings is what an authenticated customer actually saves against retail:
// the snapshotted retail price less the unit price they locked in. Lines
// added at retail, for example before signing in, save nothing. Always zero
// for anonymous viewers.
func (l *Ledger) Savings() decimal.Decimal {
	if !l.viewer.Authenticated() {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, ln := range l.lines {
		diff := ln.RetailPrice.Sub(ln.UnitPrice)
		if diff.IsPositive() {
			total = total.Add(diff.Mul(decimal.NewFromInt(int64(ln.Quantity))))
		}
	}
	return total
}

// Snapshot freezes the current contents for checkout.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{Viewer: l.viewer, Lines: l.copyLines()}
}

// Snapshot is an immutable copy of a cart handed to checkout.
type Snapshot struct {
	Viewer pricing.Viewer
	Lines  []Line
}

func (s Snapshot) Empty() bool               { return len(s.Lines) == 0 }
func (s Snapshot) Subtotal() decimal.Decimal { return subtotal(s.Lines) }

func subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, ln := range lines {
		total = total.Add(ln.Subtotal())
	}
	return total
}
