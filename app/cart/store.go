package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"github.com/shashiranjanraj/rigparts/pkg/session"
)

// Store persists a cart's lines as an ordered list.
type Store interface {
	Load(ctx context.Context) ([]Line, error)
	Save(ctx context.Context, lines []Line) error
}

// SessionKey is the session entry holding the serialized cart.
const SessionKey = "cart"

// Catalog resolves the display fields of session cart lines.
type Catalog interface {
	ProductsByID(ctx context.Context, ids []uint) (map[uint]models.Product, error)
}

// SessionStore keeps the cart in the shopper's browser session. With the
// cookie session driver the cart lives entirely client-side; it is never
// merged across sessions or devices.
//
// Only what the shopper agreed to pay is stored: product id, quantity and
// the unit and retail prices snapshotted at add time, four values per line,
// so roughly ninety six-figure lines fit in a browser cookie. Name, code, image
// and the current customer price are filled in from the catalog on load.
type SessionStore struct {
	sess    *session.Session
	catalog Catalog
}

func NewSessionStore(sess *session.Session, catalog Catalog) *SessionStore {
	return &SessionStore{sess: sess, catalog: catalog}
}

// storedLine is encoded as [product_id, quantity, unit_price, retail_price]
// with the prices as bare JSON numbers.
type storedLine struct {
	ProductID   uint
	Quantity    int
	UnitPrice   decimal.Decimal
	RetailPrice decimal.Decimal
}

func (s storedLine) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{
		s.ProductID,
		s.Quantity,
		json.RawMessage(s.UnitPrice.String()),
		json.RawMessage(s.RetailPrice.String()),
	})
}

func (s *storedLine) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 4 {
		return fmt.Errorf("cart: stored line has %d fields, want 4", len(raw))
	}
	for i, dest := range []any{&s.ProductID, &s.Quantity, &s.UnitPrice, &s.RetailPrice} {
		if err := json.Unmarshal(raw[i], dest); err != nil {
			return fmt.Errorf("cart: stored line field %d: %w", i, err)
		}
	}
	return nil
}

// Load rebuilds the lines. A payload that no longer decodes (written by an
// older release) starts an empty cart rather than locking the shopper out;
// lines whose product has since been deleted are dropped.
func (s *SessionStore) Load(ctx context.Context) ([]Line, error) {
	raw, ok := s.sess.Get(SessionKey)
	if !ok || raw == "" {
		return []Line{}, nil
	}

	var stored []storedLine
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		logger.WithCtx(ctx).Warn("cart: discarding unreadable session cart", "error", err)
		return []Line{}, nil
	}
	if len(stored) == 0 {
		return []Line{}, nil
	}

	ids := make([]uint, len(stored))
	for i, st := range stored {
		ids[i] = st.ProductID
	}
	products, err := s.catalog.ProductsByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("cart: resolve products: %w", err)
	}

	lines := make([]Line, 0, len(stored))
	for _, st := range stored {
		p, ok := products[st.ProductID]
		if !ok {
			logger.WithCtx(ctx).Info("cart: dropping line for deleted product", "product_id", st.ProductID)
			continue
		}
		lines = append(lines, Line{
			ProductID:     st.ProductID,
			Name:          p.Name,
			Code:          p.Code(),
			UnitPrice:     st.UnitPrice,
			RetailPrice:   st.RetailPrice,
			CustomerPrice: p.CustomerPrice,
			Quantity:      st.Quantity,
			Image:         p.Image(),
		})
	}
	return lines, nil
}

func (s *SessionStore) Save(ctx context.Context, lines []Line) error {
	stored := make([]storedLine, len(lines))
	for i, ln := range lines {
		stored[i] = storedLine{
			ProductID:   ln.ProductID,
			Quantity:    ln.Quantity,
			UnitPrice:   ln.UnitPrice,
			RetailPrice: ln.RetailPrice,
		}
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	prev, had := s.sess.Get(SessionKey)
	s.sess.Set(SessionKey, string(b))
	if err := s.sess.Save(ctx); err != nil {
		if had {
			s.sess.Set(SessionKey, prev)
		} else {
			s.sess.Delete(SessionKey)
		}
		return err
	}
	return nil
}

// MemoryStore holds the serialized cart in memory. Used by tests and the CLI.
type MemoryStore struct {
	mu  sync.Mutex
	raw []byte
	// Err, when set, fails every Save.
	Err error
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(_ context.Context) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.raw) == 0 {
		return []Line{}, nil
	}
	return decode(m.raw)
}

func (m *MemoryStore) Save(_ context.Context, lines []Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	m.raw = b
	return nil
}

func decode(raw []byte) ([]Line, error) {
	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("cart: decode: %w", err)
	}
	if lines == nil {
		lines = []Line{}
	}
	return lines, nil
}
