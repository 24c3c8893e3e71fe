package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/game-store/internal/apperr"
	"github.com/tuanvumaihuynh/game-store/internal/model"
	"github.com/tuanvumaihuynh/game-store/internal/service"
)

type saleHandler struct {
	ledger service.SaleLedger
}

func newSaleHandler(ledger service.SaleLedger) *saleHandler {
	return &saleHandler{
		ledger: ledger,
	}
}

func (h *saleHandler) List(w http.ResponseWriter, r *http.Request) error {
	var (
		productID *string
		from      *time.Time
		to        *time.Time
	)
	query := r.URL.Query()
	if err := bindQuery(query, "product_id", &productID); err != nil {
		return err
	}
	if err := bindQuery(query, "from", &from); err != nil {
		return err
	}
	if err := bindQuery(query, "to", &to); err != nil {
		return err
	}

	filter := model.SaleFilter{From: from, To: to}
	if productID != nil {
		id, err := uuid.Parse(*productID)
		if err != nil {
			return apperr.ValidationErr.WithDetails("product_id: must be a valid UUID").WrapParent(err)
		}
		filter.ProductID = &id
	}

	sales, err := h.ledger.ListSales(r.Context(), filter)
	if err != nil {
		return fmt.Errorf("ledger list sales: %w", err)
	}

	writeJSON(w, http.StatusOK, sales)
	return nil
}

func (h *saleHandler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	sale, err := h.ledger.FindByID(r.Context(), id)
	if err != nil {
		return fmt.Errorf("ledger find sale: %w", err)
	}

	writeJSON(w, http.StatusOK, sale)
	return nil
}

func (h *saleHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var in model.SaleInput
	if err := decodeBody(w, r, &in); err != nil {
		return err
	}

	sale, err := h.ledger.CreateSale(r.Context(), in)
	if err != nil {
		return fmt.Errorf("ledger create sale: %w", err)
	}

	writeJSON(w, http.StatusCreated, sale)
	return nil
}

func (h *saleHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.ledger.DeleteSale(r.Context(), id); err != nil {
		return fmt.Errorf("ledger delete sale: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

type statisticsHandler struct {
	stats service.StatisticsService
}

func newStatisticsHandler(stats service.StatisticsService) *statisticsHandler {
	return &statisticsHandler{
		stats: stats,
	}
}

func (h *statisticsHandler) Get(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.stats.Summarize(r.Context())
	if err != nil {
		return fmt.Errorf("summarize statistics: %w", err)
	}

	writeJSON(w, http.StatusOK, stats)
	return nil
}
