// resync recalcula los campos derivados de productos fraccionados (stock equivalente,
// costo por fracción y reparto por depósito) a partir del stock actual de sus hijos.
//
// Uso:
//
//	go run ./cmd/resync -all
//	go run ./cmd/resync <product-id> [<product-id> ...]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/infrastructure/postgres"
	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

func main() {
	all := flag.Bool("all", false, "recalcular todos los productos fraccionados activos")
	timeout := flag.Duration("timeout", 5*time.Minute, "tiempo máximo de ejecución")
	flag.Parse()

	ids := flag.Args()
	if !*all && len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "uso: resync -all | resync <product-id>...")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := inventory.NewStockUseCase(postgres.NewTxRunner(pool), postgres.NewDepositRepository(pool), log.Component("resync"))

	var results []inventory.RecomputeResult
	failed := 0
	if *all {
		results, err = uc.RecomputeAll(ctx)
		if err != nil {
			failed++
		}
	} else {
		for _, id := range ids {
			res, err := uc.RecomputeFractionalProduct(ctx, id)
			if err != nil {
				log.Error().Err(err).Str("product_id", id).Msg("resincronización fallida")
				failed++
				continue
			}
			results = append(results, res)
		}
	}

	for _, r := range results {
		ev := log.Info().Str("product_id", r.ProductID).Bool("resolved", r.Resolved).Strs("warnings", r.Warnings)
		if r.EquivalentStock != nil {
			ev = ev.Int64("equivalent_stock", *r.EquivalentStock)
		}
		if r.CostPerFraction != nil {
			ev = ev.Str("cost_per_fraction", r.CostPerFraction.String())
		}
		ev.Msg("producto recalculado")
	}
	log.Info().Int("recalculados", len(results)).Int("fallidos", failed).Msg("resincronización terminada")
	if failed > 0 {
		os.Exit(1)
	}
}
