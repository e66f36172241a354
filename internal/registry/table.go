// This file implements the behavior shared by both table shapes: identity,
// the observable no-op transaction verbs, and connection release.
package registry

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/larder/internal/engine"
	"github.com/mesh-intelligence/larder/pkg/store"
)

type tableBase struct {
	name   string
	typ    store.TableType
	handle *engine.Handle
	col    engine.Collection
	logger *zap.Logger
}

func (t *tableBase) Name() string {
	return t.name
}

func (t *tableBase) Type() store.TableType {
	return t.typ
}

// warnNoTransactions keeps the transaction verbs observable: the document
// engine offers no atomic multi-write guarantee, and a silent no-op would
// let callers assume durability they do not get.
func (t *tableBase) warnNoTransactions(op string) {
	t.logger.Warn("document engine does not support transactions",
		zap.String("operation", op))
}

func (t *tableBase) Begin() error {
	t.warnNoTransactions("begin")
	return nil
}

func (t *tableBase) Commit() error {
	t.warnNoTransactions("commit")
	return nil
}

func (t *tableBase) Rollback() error {
	t.warnNoTransactions("rollback")
	return nil
}

// Close releases this table's reference on the shared connection. Safe to
// call more than once.
func (t *tableBase) Close() error {
	return t.handle.Release()
}
