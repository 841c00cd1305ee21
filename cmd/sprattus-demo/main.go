// Command sprattus-demo exercises the full CRUD surface against a live
// Postgres instance: it creates a demo table from the record type's
// descriptor, runs single and batched create/update/delete round trips,
// and finishes with a concurrent section that hammers one connection from
// several goroutines to demonstrate the statement-level serialization.
//
// Configuration comes from flags with environment fallbacks; see
// internal/config. Optionally pushes operation metrics to a Prometheus
// Pushgateway or a Datadog agent via -metrics.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/dutchmartin/sprattus"
	"github.com/dutchmartin/sprattus/internal/config"
	"github.com/dutchmartin/sprattus/internal/metrics"
	"github.com/dutchmartin/sprattus/internal/metrics/datadog"
	"github.com/dutchmartin/sprattus/internal/metrics/prompush"

	"golang.org/x/sync/errgroup"
)

// Product mirrors the classic dellstore example table.
type Product struct {
	ProdID int32  `sql:"primary_key,name=prod_id"`
	Title  string `sql:"name=title"`
}

func (Product) TableName() string { return "products_demo" }

func main() {
	cfg := config.Load()
	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("sprattus-demo: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := setupMetrics(cfg); err != nil {
		return err
	}
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics flush: %v", err)
		}
	}()

	conn, err := sprattus.Connect(ctx, cfg.ConnString())
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	desc, err := sprattus.Descriptor[Product]()
	if err != nil {
		return err
	}
	log.Printf("table %q, fingerprint %016x", desc.TableName, desc.Fingerprint())

	// Schema setup via the simple query protocol.
	script := "DROP TABLE IF EXISTS \"products_demo\";\n" + desc.CreateTableSQL(true)
	if err := conn.BatchExecute(ctx, script); err != nil {
		return err
	}

	// Single-row round trip. The zero ProdID is ignored on insert; the
	// server assigns the serial key and Create hands it back.
	created, err := sprattus.Create(ctx, conn, Product{Title: "Sql insert lesson"})
	if err != nil {
		return err
	}
	log.Printf("created: %+v", created)

	created.Title = "Rust ORM, rewritten"
	updated, err := sprattus.Update(ctx, conn, created)
	if err != nil {
		return err
	}
	log.Printf("updated: %+v", updated)

	// Batched round trips: one statement, one network hop each.
	batch, err := sprattus.CreateMultiple(ctx, conn, []Product{
		{Title: "Sql insert lesson"},
		{Title: "Go generics lesson"},
		{Title: "Postgres data types lesson"},
	})
	if err != nil {
		return err
	}
	log.Printf("created %d rows in one round trip", len(batch))

	for i := range batch {
		batch[i].Title = fmt.Sprintf("%s (2nd edition)", batch[i].Title)
	}
	if _, err := sprattus.UpdateMultiple(ctx, conn, batch); err != nil {
		return err
	}

	all, err := sprattus.QueryMultiple[Product](ctx, conn,
		`SELECT * FROM "products_demo" ORDER BY "prod_id"`)
	if err != nil {
		return err
	}
	for _, p := range all {
		log.Printf("row: %+v", p)
	}

	// Concurrent writers on one connection: the connection serializes
	// statements internally, so this is safe, just not parallel.
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			for j := 0; j < 5; j++ {
				if _, err := sprattus.Create(gctx, conn, Product{Title: "concurrent insert"}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	leftovers, err := sprattus.QueryMultiple[Product](ctx, conn,
		`SELECT * FROM "products_demo" WHERE "title" = $1`, "concurrent insert")
	if err != nil {
		return err
	}
	deleted, err := sprattus.DeleteMultiple(ctx, conn, leftovers)
	if err != nil {
		return err
	}
	log.Printf("deleted %d concurrent rows in one round trip", len(deleted))

	if _, err := sprattus.Delete(ctx, conn, updated); err != nil {
		return err
	}
	return nil
}

// setupMetrics installs the configured metrics backend, if any.
func setupMetrics(cfg *config.Config) error {
	switch cfg.MetricsBackend {
	case "":
		return nil
	case "prometheus":
		b, err := prompush.NewBackend("sprattus-demo", cfg.PushgatewayURL)
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{Addr: cfg.StatsdAddr, Namespace: "sprattus."})
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
	default:
		return fmt.Errorf("unknown metrics backend %q", cfg.MetricsBackend)
	}
	return nil
}
