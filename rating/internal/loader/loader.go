// Package loader imports Open Library rating dumps into a RatingStore.
//
// A dump line is tab separated:
//
//	/works/OL1629179W	/books/OL22981670M	5	2018-06-20
package loader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/Astemirdum/book-ratings/rating/internal/errs"
	"github.com/Astemirdum/book-ratings/rating/internal/repository"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const worksPrefix = "/works/"

type Entry struct {
	BookID string
	Rating int
}

// ParseLine extracts the work id and rating of one dump line.
func ParseLine(line string) (Entry, error) {
	parts := strings.Split(strings.TrimSpace(line), "\t")
	if len(parts) < 3 {
		return Entry{}, errors.Wrapf(errs.ErrInvalidInput, "want at least 3 fields, got %d", len(parts))
	}
	workKey := strings.TrimSpace(parts[0])
	if !strings.HasPrefix(workKey, worksPrefix) || len(workKey) == len(worksPrefix) {
		return Entry{}, errors.Wrapf(errs.ErrInvalidInput, "not a work key %q", workKey)
	}
	rating, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return Entry{}, errors.Wrapf(errs.ErrInvalidInput, "rating %q", parts[2])
	}
	if rating < 1 || rating > 5 {
		return Entry{}, errors.Wrapf(errs.ErrInvalidInput, "rating %d out of range", rating)
	}
	return Entry{
		BookID: workKey[strings.LastIndex(workKey, "/")+1:],
		Rating: rating,
	}, nil
}

type Stats struct {
	Scanned int
	Written int
	Skipped int
}

type Loader struct {
	store      repository.RatingStore
	log        *zap.Logger
	workers    int
	userPrefix string
}

func New(store repository.RatingStore, log *zap.Logger, workers int, userPrefix string) *Loader {
	if workers <= 0 {
		workers = 1
	}
	if userPrefix == "" {
		userPrefix = "user"
	}
	return &Loader{
		store:      store,
		log:        log.Named("loader"),
		workers:    workers,
		userPrefix: userPrefix,
	}
}

// Load writes at most limit ratings from r, limit <= 0 means no limit.
// The dump has no user ids, every rating gets a synthetic one.
func (l *Loader) Load(ctx context.Context, r io.Reader, limit int) (Stats, error) {
	var (
		stats      Stats
		dispatched int
		written    atomic.Int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if limit > 0 && dispatched >= limit {
			break
		}
		if gctx.Err() != nil {
			break
		}
		stats.Scanned++
		entry, err := ParseLine(sc.Text())
		if err != nil {
			stats.Skipped++
			l.log.Debug("skip line", zap.Int("line", stats.Scanned), zap.Error(err))
			continue
		}

		userID := fmt.Sprintf("%s_%d", l.userPrefix, dispatched)
		dispatched++
		g.Go(func() error {
			if _, err := l.store.RateBook(gctx, entry.BookID, userID, entry.Rating); err != nil {
				return err
			}
			written.Add(1)
			return nil
		})
		if stats.Scanned%50_000 == 0 {
			l.log.Info("progress", zap.Int("scanned", stats.Scanned), zap.Int64("written", written.Load()))
		}
	}
	err := g.Wait()
	stats.Written = int(written.Load())
	if err != nil {
		return stats, errors.Wrap(err, "write rating")
	}
	if err := sc.Err(); err != nil {
		return stats, errors.Wrap(err, "read dump")
	}
	return stats, nil
}
