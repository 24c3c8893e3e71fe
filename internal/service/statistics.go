package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tuanvumaihuynh/game-store/internal/model"
	"github.com/tuanvumaihuynh/game-store/internal/stats"
	"github.com/tuanvumaihuynh/game-store/internal/store"
)

type StatisticsService interface {
	// Summarize recomputes the statistics from the current sales and products.
	Summarize(ctx context.Context) (model.Stats, error)
}

type statisticsService struct {
	store store.Store
	now   func() time.Time
}

func NewStatisticsService(store store.Store) StatisticsService {
	return &statisticsService{
		store: store,
		now:   time.Now,
	}
}

func (s *statisticsService) Summarize(ctx context.Context) (model.Stats, error) {
	var (
		sales    []model.Sale
		products []model.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if sales, err = s.store.ListSales(gctx); err != nil {
			return fmt.Errorf("store list sales: %w", storeErr(err))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if products, err = s.store.ListProducts(gctx); err != nil {
			return fmt.Errorf("store list products: %w", storeErr(err))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.Stats{}, err
	}

	st := stats.Summarize(sales, products)
	st.SalesToday = stats.CountOnDay(sales, s.now())

	return st, nil
}
