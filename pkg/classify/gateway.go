package classify

import (
	"context"
	"errors"
	"time"

	"github.com/entrhq/stacks/pkg/logging"
)

// Gateway wraps a Classifier with the filing-path policy: a bounded
// timeout, a response shape check, and soft failure. A classification
// outage must never prevent an item from being saved, so Place returns
// "no placement" instead of an error no matter what goes wrong.
type Gateway struct {
	classifier Classifier
	timeout    time.Duration
	log        *logging.Logger
}

// NewGateway builds a Gateway. classifier may be nil, in which case every
// item files as uncategorized. A non-positive timeout falls back to 30s.
func NewGateway(classifier Classifier, timeout time.Duration, log *logging.Logger) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{classifier: classifier, timeout: timeout, log: log}
}

// Place asks the collaborator where to file an item. The returned
// placement names exactly one destination, or is nil when the
// collaborator is unavailable, times out, errors, or answers with a shape
// that does not identify a single destination.
func (g *Gateway) Place(ctx context.Context, req Request) *Placement {
	if g.classifier == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	p, err := g.classifier.Classify(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			g.warnf("classification timed out after %s for %q", g.timeout, req.Title)
		} else {
			g.warnf("classification failed for %q: %v", req.Title, err)
		}
		return nil
	}
	if p == nil {
		return nil
	}

	hasExisting := p.CategoryID != ""
	hasNew := p.NewCategory != nil && p.NewCategory.Name != ""
	if hasExisting == hasNew {
		g.warnf("classification for %q did not name exactly one destination", req.Title)
		return nil
	}
	return p
}

func (g *Gateway) warnf(format string, args ...interface{}) {
	if g.log != nil {
		g.log.Warnf(format, args...)
	}
}
