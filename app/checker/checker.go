package checker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/feedscope/feedscope/app/database"
	"github.com/feedscope/feedscope/app/feed"
	"github.com/feedscope/feedscope/app/source"
)

// Fetcher resolves a source into its current candidates. Satisfied by
// source.Registry.
type Fetcher interface {
	Fetch(ctx context.Context, kind source.Kind, sourceID string) ([]feed.Candidate, error)
}

// Outcome is the result of checking one subscription. Fetch and parse
// failures land in Err; they never abort the run.
type Outcome struct {
	Subscription database.Subscription
	NewItems     int
	Err          error
}

// Checker fans subscription checks out over a bounded worker pool.
type Checker struct {
	fetcher      Fetcher
	subRepo      database.SubscriptionRepository
	itemRepo     database.ItemRepository
	workerCount  int
	fetchTimeout time.Duration
}

func NewChecker(fetcher Fetcher, subRepo database.SubscriptionRepository,
	itemRepo database.ItemRepository, workerCount int, fetchTimeout time.Duration) *Checker {
	if workerCount <= 0 {
		workerCount = 1
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}

	return &Checker{
		fetcher:      fetcher,
		subRepo:      subRepo,
		itemRepo:     itemRepo,
		workerCount:  workerCount,
		fetchTimeout: fetchTimeout,
	}
}

// Run checks every given subscription and returns exactly one outcome
// per subscription, in input order. Cancellation of ctx marks the
// remaining subscriptions failed instead of dropping them. Only a
// storage failure makes the whole run fail.
func (c *Checker) Run(ctx context.Context, subs []database.Subscription) ([]Outcome, error) {
	outcomes := make([]Outcome, len(subs))
	for i, sub := range subs {
		outcomes[i].Subscription = sub
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var storeErr error
	var once sync.Once
	fail := func(err error) {
		once.Do(func() {
			storeErr = err
			cancel()
		})
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < c.workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := runCtx.Err(); err != nil {
					outcomes[i].Err = fmt.Errorf("check aborted: %w", err)
					continue
				}
				c.checkOne(runCtx, &outcomes[i], fail)
			}
		}()
	}

	for i := range subs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if storeErr != nil {
		return nil, storeErr
	}

	return outcomes, nil
}

func (c *Checker) checkOne(ctx context.Context, outcome *Outcome, fail func(error)) {
	sub := outcome.Subscription

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	candidates, fetchErr := c.fetcher.Fetch(fetchCtx, source.Kind(sub.SourceKind), sub.SourceID)

	// The attempt is recorded whether or not the fetch succeeded.
	if err := c.subRepo.UpdateLastChecked(sub.ID, time.Now().UTC()); err != nil {
		fail(fmt.Errorf("failed to record check time: %w", err))
		return
	}

	if fetchErr != nil {
		outcome.Err = fetchErr
		slog.Warn("Subscription check failed", "kind", sub.SourceKind, "source", sub.SourceID, "error", fetchErr)
		return
	}

	inserted, err := c.itemRepo.InsertBatch(sub.ID, toNewItems(candidates), time.Now().UTC())
	if err != nil {
		fail(fmt.Errorf("failed to store items: %w", err))
		return
	}

	outcome.NewItems = inserted
	slog.Debug("Subscription check completed", "kind", sub.SourceKind, "source", sub.SourceID,
		"fetched", len(candidates), "new", inserted)
}

func toNewItems(candidates []feed.Candidate) []database.NewItem {
	items := make([]database.NewItem, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, database.NewItem{
			Link:        candidate.Link,
			Title:       candidate.Title,
			Content:     candidate.Content,
			Author:      candidate.Author,
			PublishedAt: candidate.Published,
			Metadata:    candidate.Metadata,
		})
	}
	return items
}
