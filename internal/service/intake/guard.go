package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

type counter interface {
	Count(ctx context.Context, q domain.Query) (int, error)
}

// Guard rejects submissions that collide with persisted records under the
// form's uniqueness or recency rule. Forms without a rule always pass.
type Guard struct {
	store counter
}

// NewGuard creates a Guard over the submission store.
func NewGuard(store counter) *Guard {
	return &Guard{store: store}
}

// Check returns the form's ConflictError or RateLimitedError when its
// rule matches an existing record. f must already be validated.
func (g *Guard) Check(ctx context.Context, f Form, now time.Time) error {
	d, ok := baseForm(f).(deduplicated)
	if !ok {
		return nil
	}
	rule := d.duplicateRule(now)

	n, err := g.store.Count(ctx, rule.query)
	if err != nil {
		return fmt.Errorf("duplicate check %s: %w", f.Type(), err)
	}
	if n > 0 {
		return rule.reject
	}
	return nil
}

// rejectionFor returns the error a form's rule produces, or nil for forms
// without one. It maps unique index violations raised on insert.
func rejectionFor(f Form, now time.Time) error {
	if d, ok := baseForm(f).(deduplicated); ok {
		return d.duplicateRule(now).reject
	}
	return nil
}
