package economy

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var ErrInsufficient = errors.New("insufficient balance")

// Currency names one of the two resource counters.
type Currency int

const (
	Acorn Currency = iota
	Diamond
)

func (c Currency) String() string {
	switch c {
	case Acorn:
		return "acorn"
	case Diamond:
		return "diamond"
	}
	return "unknown"
}

// Wallet holds the player's resource counters. Counters never go negative.
type Wallet struct {
	acorns   int
	diamonds int
	log      *zap.Logger
}

func NewWallet(log *zap.Logger) *Wallet {
	return &Wallet{log: log}
}

// Restore replaces both counters from a loaded save. Negative values are
// clamped to zero.
func (w *Wallet) Restore(acorns, diamonds int) {
	w.acorns = max(acorns, 0)
	w.diamonds = max(diamonds, 0)
}

// Pick adds n of c. Non-positive n is ignored.
func (w *Wallet) Pick(c Currency, n int) {
	if n <= 0 {
		return
	}
	*w.counter(c) += n
}

// Use spends n of c, or rejects the spend if the balance is too small.
func (w *Wallet) Use(c Currency, n int) error {
	if n <= 0 {
		return fmt.Errorf("use %d %s: amount must be positive", n, c)
	}
	p := w.counter(c)
	if *p < n {
		w.log.Warn("spend rejected", zap.Stringer("currency", c), zap.Int("want", n), zap.Int("have", *p))
		return fmt.Errorf("use %d %s: %w", n, c, ErrInsufficient)
	}
	*p -= n
	return nil
}

func (w *Wallet) Balance(c Currency) int { return *w.counter(c) }

// Counts implements the save gateway's resource source.
func (w *Wallet) Counts() (acorns, diamonds int) { return w.acorns, w.diamonds }

func (w *Wallet) counter(c Currency) *int {
	if c == Diamond {
		return &w.diamonds
	}
	return &w.acorns
}
