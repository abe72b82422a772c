package extract

import (
	"sync"

	"go.uber.org/zap"

	"github.com/webrenew/leadscout/internal/core"
)

// Signals is the full extractor output for one probe. Recomputed fresh per
// probe, never merged across runs.
type Signals struct {
	Tech     core.TechInfo
	Security core.SecurityInfo
	SEO      core.SEOInfo
	Errors   []string
	Spam     []core.SpamSignal
	Contact  core.ContactInfo
}

// Analyzer fans the independent extractors out over one probe's page set.
// Extractors are pure functions of page content; a parsing failure inside
// one never affects the others.
type Analyzer struct {
	logger *zap.Logger
}

func NewAnalyzer(logger *zap.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

func (a *Analyzer) Analyze(probe *core.DomainProbe) *Signals {
	signals := &Signals{}
	pages := probe.Pages

	var wg sync.WaitGroup
	var mu sync.Mutex

	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	run(func() {
		tech := Technology(pages)
		mu.Lock()
		signals.Tech = tech
		mu.Unlock()
	})
	run(func() {
		sec := Security(pages)
		mu.Lock()
		signals.Security = sec
		mu.Unlock()
	})
	run(func() {
		seo := SEO(pages)
		mu.Lock()
		signals.SEO = seo
		mu.Unlock()
	})
	run(func() {
		errs := PageErrors(pages)
		mu.Lock()
		signals.Errors = errs
		mu.Unlock()
	})
	run(func() {
		spam := SpamSignals(pages)
		mu.Lock()
		signals.Spam = spam
		mu.Unlock()
	})
	run(func() {
		contact := Contact(pages)
		mu.Lock()
		signals.Contact = contact
		mu.Unlock()
	})

	wg.Wait()

	if len(signals.Spam) > 0 {
		a.logger.Debug("spam signals detected",
			zap.String("domain", probe.Domain),
			zap.Int("signals", len(signals.Spam)),
		)
	}

	return signals
}
