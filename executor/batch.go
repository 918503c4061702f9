package executor

import (
	"context"

	"github.com/AnirudhB3000/buildaquery/ast"
	"github.com/AnirudhB3000/buildaquery/com"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// BulkExecuteMany fans sqlText out over paramSets under a concurrency cap,
// batching up to batchSize param sets per call to ExecuteManyWithRetry.
// Grounded on the teacher's database.DB.BulkExec: a channel of arguments is
// chunked via com.Bulk, each chunk acquires one slot of sem and retries
// independently, and the whole fan-out is supervised by one errgroup.
func (e *Executor) BulkExecuteMany(
	ctx context.Context, sqlText string, paramSets <-chan []ast.Value, batchSize int, sem *semaphore.Weighted,
) error {
	if sem == nil {
		sem = semaphore.NewWeighted(1)
	}

	var counter com.Counter
	g, ctx := errgroup.WithContext(ctx)
	chunks := com.Bulk(ctx, paramSets, batchSize, com.NeverSplit[[]ast.Value])

	g.Go(func() error {
		g, ctx := errgroup.WithContext(ctx)

		for chunk := range chunks {
			if err := sem.Acquire(ctx, 1); err != nil {
				return errors.Wrap(err, "acquire batch slot")
			}

			g.Go(func(chunk [][]ast.Value) func() error {
				return func() error {
					defer sem.Release(1)

					if err := e.ExecuteManyWithRetry(ctx, sqlText, chunk); err != nil {
						return err
					}
					counter.Add(uint64(len(chunk)))
					return nil
				}
			}(chunk))
		}

		return g.Wait()
	})

	return g.Wait()
}

// StreamInsert is BulkExecuteMany specialized for an INSERT-shaped sqlText
// whose VALUES placeholders match one entry of rows exactly — the direct
// analogue of the teacher's NamedBulkExec, expressed in terms of a
// pre-compiled INSERT statement's param sets instead of struct reflection.
func (e *Executor) StreamInsert(
	ctx context.Context, insertSQL string, rows <-chan []ast.Value, batchSize int, sem *semaphore.Weighted,
) error {
	return e.BulkExecuteMany(ctx, insertSQL, rows, batchSize, sem)
}
