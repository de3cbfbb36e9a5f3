package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atlas-erp/atlas-erp/internal/platform/httpx"
	"github.com/atlas-erp/atlas-erp/internal/shared"
)

// Handler exposes inventory operations over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req RecordTransactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	req.ActorID = actorID(r)
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	tx, err := h.service.RecordTransaction(r.Context(), req)
	if err != nil {
		h.respondError(w, "record transaction", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tx)
}

func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	var req AdjustmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	req.ActorID = actorID(r)
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	tx, err := h.service.CreateAdjustment(r.Context(), req)
	if err != nil {
		h.respondError(w, "create adjustment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tx)
}

func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	req.ActorID = actorID(r)
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.CreateTransfer(r.Context(), req)
	if err != nil {
		h.respondError(w, "create transfer", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	companyID := queryInt(r, "company_id")
	repairs, err := h.service.Reconcile(r.Context(), companyID)
	if err != nil {
		h.respondError(w, "reconcile", err)
		return
	}
	if repairs == nil {
		repairs = []DriftRepair{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"repairs": repairs})
}

func (h *Handler) ListLevels(w http.ResponseWriter, r *http.Request) {
	filter := LevelFilter{
		CompanyID:   queryInt(r, "company_id"),
		ProductID:   queryInt(r, "product_id"),
		WarehouseID: queryInt(r, "warehouse_id"),
	}
	levels, err := h.service.ListLevels(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list levels", err)
		return
	}
	httpx.JSON(w, http.StatusOK, levels)
}

func (h *Handler) GetLevel(w http.ResponseWriter, r *http.Request) {
	productID, _ := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	warehouseID, _ := strconv.ParseInt(chi.URLParam(r, "warehouseID"), 10, 64)
	level, err := h.service.GetLevel(r.Context(), queryInt(r, "company_id"), productID, warehouseID)
	if err != nil {
		h.respondError(w, "get level", err)
		return
	}
	httpx.JSON(w, http.StatusOK, level)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := TransactionFilter{
		CompanyID:   queryInt(r, "company_id"),
		ProductID:   queryInt(r, "product_id"),
		WarehouseID: queryInt(r, "warehouse_id"),
		Type:        TransactionType(r.URL.Query().Get("type")),
		From:        queryTime(r, "from"),
		To:          queryTime(r, "to"),
		Limit:       int(queryInt(r, "limit")),
		Offset:      int(queryInt(r, "offset")),
	}
	txs, err := h.service.ListTransactions(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list transactions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, txs)
}

func (h *Handler) ValuationReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Valuation(r.Context(), queryInt(r, "company_id"))
	if err != nil {
		h.respondError(w, "valuation report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) MovementReport(w http.ResponseWriter, r *http.Request) {
	filter := MovementFilter{
		CompanyID:   queryInt(r, "company_id"),
		ProductID:   queryInt(r, "product_id"),
		WarehouseID: queryInt(r, "warehouse_id"),
		From:        queryTime(r, "from"),
		To:          queryTime(r, "to"),
	}
	report, err := h.service.Movement(r.Context(), filter)
	if err != nil {
		h.respondError(w, "movement report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) LowStockReport(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.LowStock(r.Context(), queryInt(r, "company_id"))
	if err != nil {
		h.respondError(w, "low stock report", err)
		return
	}
	if alerts == nil {
		alerts = []StockAlert{}
	}
	httpx.JSON(w, http.StatusOK, alerts)
}

func (h *Handler) OutOfStockReport(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.OutOfStock(r.Context(), queryInt(r, "company_id"))
	if err != nil {
		h.respondError(w, "out of stock report", err)
		return
	}
	if alerts == nil {
		alerts = []StockAlert{}
	}
	httpx.JSON(w, http.StatusOK, alerts)
}

// respondError keeps inventory-specific statuses and defers the shared error
// categories to httpx.RespondError.
func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Insufficient Stock", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate Request", err.Error())
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrValidation):
		httpx.RespondError(w, err)
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func queryInt(r *http.Request, name string) int64 {
	val, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return val
}

func queryTime(r *http.Request, name string) time.Time {
	val, _ := time.Parse(time.RFC3339, r.URL.Query().Get(name))
	return val
}

// actorID reads the acting user from the X-Actor-ID header. Authn/authz is
// enforced upstream.
func actorID(r *http.Request) int64 {
	val, _ := strconv.ParseInt(r.Header.Get("X-Actor-ID"), 10, 64)
	return val
}
