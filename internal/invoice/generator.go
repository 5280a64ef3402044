// Package invoice numbers confirmed orders and writes their invoice documents.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/checkout"
)

const filePrefix = "factura-"

type Generator struct {
	dir    string
	log    logrus.FieldLogger
	now    func() time.Time
	random func(n int) int
}

type Option func(*Generator)

func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithRandom replaces the source of the four-digit number suffix.
func WithRandom(random func(n int) int) Option {
	return func(g *Generator) { g.random = random }
}

// NewGenerator writes documents under dir. An empty dir disables documents;
// invoices then carry only a number and text.
func NewGenerator(dir string, log logrus.FieldLogger, opts ...Option) *Generator {
	g := &Generator{dir: dir, log: log, now: time.Now, random: rand.IntN}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Number returns a new order number of the form MON-YYMMDD-NNNN.
func (g *Generator) Number() string {
	return fmt.Sprintf("MON-%s-%04d", g.now().Format("060102"), g.random(10000))
}

// Issue numbers the order and writes its document. When only the document
// fails, the returned invoice is still usable and the error says why the
// DocumentRef is empty.
func (g *Generator) Issue(_ context.Context, order checkout.Order) (checkout.Invoice, error) {
	issuedAt := order.PlacedAt
	if issuedAt.IsZero() {
		issuedAt = g.now()
	}

	number := g.Number()
	inv := checkout.Invoice{Number: number, Text: Render(number, issuedAt, order)}
	if g.dir == "" {
		return inv, nil
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return inv, fmt.Errorf("create invoice dir: %w", err)
	}
	path := filepath.Join(g.dir, filePrefix+number+".txt")
	if err := os.WriteFile(path, []byte(inv.Text), 0o644); err != nil {
		return inv, fmt.Errorf("write invoice %s: %w", number, err)
	}
	inv.DocumentRef = path

	g.log.WithFields(logrus.Fields{"order_id": number, "path": path}).Info("invoice written")
	return inv, nil
}

// CleanupOlderThan removes invoice documents last modified more than maxAge
// ago and returns how many were removed.
func (g *Generator) CleanupOlderThan(maxAge time.Duration) (int, error) {
	if g.dir == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read invoice dir: %w", err)
	}

	cutoff := g.now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(g.dir, e.Name())
			if err := os.Remove(path); err != nil {
				g.log.WithError(err).WithField("path", path).Warn("remove old invoice")
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// RunCleanup calls CleanupOlderThan every interval until ctx is done.
func (g *Generator) RunCleanup(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := g.CleanupOlderThan(maxAge)
			if err != nil {
				g.log.WithError(err).Error("invoice cleanup failed")
				continue
			}
			if n > 0 {
				g.log.WithField("removed", n).Info("old invoices removed")
			}
		}
	}
}
