package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/kickslab/shoestore/internal/auth"
	"github.com/kickslab/shoestore/internal/catalog"
	"github.com/kickslab/shoestore/internal/inventory"
	kafkax "github.com/kickslab/shoestore/internal/kafka"
	"github.com/kickslab/shoestore/internal/orders"
	"github.com/kickslab/shoestore/internal/redisx"
)

type PlaceOrderReq struct {
	Items           []orders.LineRequest `json:"items"`
	ShippingAddress string               `json:"shipping_address"`
}

type OrdersHandler struct {
	Service        *orders.Service
	Auth           auth.Resolver
	PlacedProducer *kafkax.Producer // order.placed
	StatusProducer *kafkax.Producer // order.status.changed
	Redis          *redis.Client    // optional stats cache
	ServiceName    string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(h.Auth))
		r.Post("/orders", h.placeOrder)
		r.Get("/orders", h.listOwnOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Get("/admin/orders", h.listAllOrders)
		r.Put("/admin/orders/{id}/status", h.updateStatus)
		r.Get("/admin/stats", h.salesStats)
		r.Get("/admin/top-shoes", h.topShoes)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	var rel *orders.ReleaseError
	if errors.As(err, &rel) {
		// stock may have leaked; this needs an operator, not a retry
		log.Printf("RELEASE FAILURE: %v", rel)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "order could not be completed"})
		return
	}
	switch {
	case errors.Is(err, orders.ErrEmptyOrder), errors.Is(err, orders.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, inventory.ErrItemNotFound), errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, orders.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, orders.ErrAccessDenied):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
	case errors.Is(err, inventory.ErrInsufficientStock), errors.Is(err, orders.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
	}
	return id, ok
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}
	var req PlaceOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	o, err := h.Service.PlaceOrder(r.Context(), who, req.Items, req.ShippingAddress)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.invalidateStats(r)
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.ServiceName,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: o.ID,
	}
	ev.Payload = kafkax.MustMarshal(orders.OrderPlacedPayload{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Items:      o.Items,
		TotalCents: o.TotalCents,
	})
	h.PlacedProducer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) listOwnOrders(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}
	out, err := h.Service.ListOwn(r.Context(), who)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}
	o, err := h.Service.Get(r.Context(), who, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}
	out, err := h.Service.ListAll(r.Context(), who)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	to, ok := orders.ParseStatus(req.Status)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
		return
	}

	o, from, err := h.Service.UpdateStatus(r.Context(), who, chi.URLParam(r, "id"), to)
	if err != nil {
		// a failed release does not undo the transition itself, so
		// consumers still hear about it
		var rel *orders.ReleaseError
		if errors.As(err, &rel) && o.ID != "" {
			h.invalidateStats(r)
			h.publishStatusChanged(r, o, from)
		}
		writeErr(w, err)
		return
	}

	h.invalidateStats(r)
	h.publishStatusChanged(r, o, from)

	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) publishStatusChanged(r *http.Request, o orders.Order, from orders.Status) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.ServiceName,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: o.ID,
	}
	ev.Payload = kafkax.MustMarshal(orders.OrderStatusChangedPayload{OrderID: o.ID, From: from, To: o.Status})
	h.StatusProducer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) salesStats(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}
	if h.fromCache(w, r, who, redisx.KeySalesStats) {
		return
	}
	stats, err := h.Service.SalesStats(r.Context(), who)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.toCache(r, redisx.KeySalesStats, stats)
	writeJSON(w, http.StatusOK, stats)
}

func (h *OrdersHandler) topShoes(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}
	if h.fromCache(w, r, who, redisx.KeyTopShoes) {
		return
	}
	top, err := h.Service.TopShoes(r.Context(), who)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.toCache(r, redisx.KeyTopShoes, top)
	writeJSON(w, http.StatusOK, top)
}

// fromCache serves a cached admin view when present. The role check
// runs before the cache is consulted.
func (h *OrdersHandler) fromCache(w http.ResponseWriter, r *http.Request, who auth.Identity, key string) bool {
	if h.Redis == nil {
		return false
	}
	if !who.IsAdmin() {
		writeErr(w, orders.ErrAccessDenied)
		return true
	}
	s, err := h.Redis.Get(r.Context(), key).Result()
	if err != nil || s == "" {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s))
	return true
}

func (h *OrdersHandler) toCache(r *http.Request, key string, v any) {
	if h.Redis == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = h.Redis.Set(r.Context(), key, b, redisx.TTLStatsCache).Err()
}

func (h *OrdersHandler) invalidateStats(r *http.Request) {
	if h.Redis == nil {
		return
	}
	_ = h.Redis.Del(r.Context(), redisx.KeySalesStats, redisx.KeyTopShoes).Err()
}
