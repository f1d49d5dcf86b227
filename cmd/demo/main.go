// Command demo stands up one B+Tree index against a local data directory,
// inserts a handful of entries, and walks them back out through the
// forward iterator — a smoke test for the buffer pool, page guards, and
// tree wired together end to end.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ktnguyen/bptreekv/internal/btree"
	"github.com/ktnguyen/bptreekv/internal/bufferpool"
	"github.com/ktnguyen/bptreekv/internal/config"
	"github.com/ktnguyen/bptreekv/internal/guard"
	"github.com/ktnguyen/bptreekv/internal/storage"
)

func main() {
	cfg := config.Default()
	if path := os.Getenv("BPTREEKV_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	dataDir := filepath.Join(cfg.Storage.Dir, "demo")
	fs := storage.LocalFileSet{Dir: dataDir, Base: cfg.Storage.Base}
	sm := storage.NewStorageManager()
	pool, err := bufferpool.NewPool(sm, fs, cfg.Buffer.PoolSize, cfg.Buffer.K)
	if err != nil {
		log.Fatalf("new pool: %v", err)
	}

	headerPageID, headerGuard, err := guard.NewPageGuarded(pool)
	if err != nil {
		log.Fatalf("allocate header page: %v", err)
	}
	headerGuard.Drop()

	tree, err := btree.NewTree("users_id_idx", headerPageID, pool, btree.Int64Comparator, btree.Int64Codec{}, 0, 0)
	if err != nil {
		log.Fatalf("new tree: %v", err)
	}

	for i := int64(1); i <= 20; i++ {
		ok, err := tree.Insert(i, btree.RID{PageID: storage.PageID(i), Slot: 0})
		if err != nil {
			log.Fatalf("insert %d: %v", i, err)
		}
		if !ok {
			slog.Warn("demo: duplicate key ignored", "key", i)
		}
	}

	if _, err := tree.Remove(7); err != nil {
		log.Fatalf("remove 7: %v", err)
	}

	it, err := tree.Begin()
	if err != nil {
		log.Fatalf("begin: %v", err)
	}
	fmt.Println("index contents after removing key 7:")
	for !it.IsEnd() {
		fmt.Printf("  key=%d rid=%+v\n", it.Key(), it.Value())
		if err := it.Next(); err != nil {
			log.Fatalf("next: %v", err)
		}
	}

	if err := pool.FlushAll(); err != nil {
		log.Fatalf("flush: %v", err)
	}
}
