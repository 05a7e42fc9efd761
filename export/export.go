// Package export streams orders as newline-delimited JSON to a file or S3.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"food-storefront/models"
	"food-storefront/store"
)

// Sink receives the exported bytes; Close flushes them to their destination.
type Sink interface {
	io.Writer
	Close() error
}

type SinkFactory interface {
	NewSink(name string) (Sink, error)
}

// FileSinkFactory writes exports under a local directory.
type FileSinkFactory struct {
	Dir string
}

func (f FileSinkFactory) NewSink(name string) (Sink, error) {
	path := filepath.Join(f.Dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

const batchSize = 100

// Orders writes every order matching filter, one JSON document per line,
// and returns how many were written. The filter's page is ignored.
func Orders(ctx context.Context, orders store.OrderRepository, filter store.OrderFilter, w io.Writer) (int, error) {
	enc := json.NewEncoder(w)
	written := 0
	for page := 1; ; page++ {
		filter.Page = store.Page{Page: page, Limit: batchSize}
		batch, total, err := orders.ListOrders(ctx, filter)
		if err != nil {
			return written, fmt.Errorf("export: list orders page %d: %w", page, err)
		}
		for i := range batch {
			if err := enc.Encode(&batch[i]); err != nil {
				return written, fmt.Errorf("export: encode order %s: %w", batch[i].ID, err)
			}
			written++
		}
		if len(batch) < batchSize || int64(written) >= total {
			return written, nil
		}
	}
}

// ToSink exports into a freshly created sink and closes it.
func ToSink(ctx context.Context, orders store.OrderRepository, filter store.OrderFilter, f SinkFactory, name string) (int, error) {
	sink, err := f.NewSink(name)
	if err != nil {
		return 0, err
	}
	n, err := Orders(ctx, orders, filter, sink)
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// ObjectName builds a dated object key for an export of the given status.
func ObjectName(prefix string, status models.OrderStatus, stamp string) string {
	name := "orders"
	if status != "" {
		name += "-" + string(status)
	}
	name += "-" + stamp + ".ndjson"
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
