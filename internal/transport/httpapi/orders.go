package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/jms/internal/domain"
	"github.com/vladislavdragonenkov/jms/internal/service/order"
)

type createOrderItem struct {
	JewelryID string `json:"jewelry_id"`
	Qty       int32  `json:"qty"`
}

type createOrderRequest struct {
	CustomerID string            `json:"customer_id" binding:"required"`
	Items      []createOrderItem `json:"items" binding:"required"`
}

// createOrder обрабатывает POST /orders. При наличии заголовка
// Idempotency-Key повтор того же запроса вернёт сохранённый ответ,
// а повтор ключа с другим телом — 409.
func (s *Server) createOrder(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondBadRequest(c, fmt.Errorf("read body: %w", err))
		return
	}

	var req createOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondBadRequest(c, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.CustomerID == "" {
		respondBadRequest(c, domain.ErrCustomerRequired)
		return
	}

	key := c.GetHeader("Idempotency-Key")
	if key != "" && s.idempotency != nil {
		if done := s.beginIdempotent(c, key, body); done {
			return
		}
	}

	items := make([]order.ItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, order.ItemRequest{JewelryID: item.JewelryID, Qty: item.Qty})
	}

	created, err := s.orders.CreateOrder(req.CustomerID, items)
	if err != nil {
		s.finishIdempotent(key, statusForError(err), errorResponse{Error: err.Error()}, false)
		respondError(c, s.logger, err)
		return
	}

	resp := toOrderResponse(created)
	s.finishIdempotent(key, http.StatusCreated, resp, true)
	c.JSON(http.StatusCreated, resp)
}

// beginIdempotent регистрирует ключ. Возвращает true, если ответ уже
// отправлен (replay сохранённого ответа или конфликт ключа).
func (s *Server) beginIdempotent(c *gin.Context, key string, body []byte) bool {
	hash := sha256.Sum256(body)
	requestHash := hex.EncodeToString(hash[:])

	record, err := s.idempotency.CreateProcessing(key, requestHash, time.Now().UTC().Add(s.idempotencyTTL))
	if err == nil {
		return false
	}
	if !domain.IsDuplicateKey(err) {
		respondError(c, s.logger, err)
		return true
	}

	if record.RequestHash != requestHash {
		c.JSON(http.StatusConflict, errorResponse{
			Error: "idempotency key reused with a different request body",
		})
		return true
	}
	if !record.Replayable() {
		c.JSON(http.StatusConflict, errorResponse{
			Error: "request with this idempotency key is still processing",
		})
		return true
	}

	c.Data(record.HTTPStatus, "application/json; charset=utf-8", record.ResponseBody)
	return true
}

// finishIdempotent сохраняет итоговый ответ для ключа; ошибки записи
// не влияют на ответ клиенту.
func (s *Server) finishIdempotent(key string, status int, payload any, ok bool) {
	if key == "" || s.idempotency == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).Warn("marshal idempotent response")
		return
	}
	if ok {
		err = s.idempotency.MarkDone(key, body, status)
	} else {
		err = s.idempotency.MarkFailed(key, body, status)
	}
	if err != nil {
		s.logger.WithError(err).WithField("idempotency_key", key).Warn("store idempotent response")
	}
}

func (s *Server) getOrder(c *gin.Context) {
	found, err := s.orders.GetOrder(c.Param("id"))
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(found))
}

func (s *Server) listOrders(c *gin.Context) {
	customerID := c.Query("customer_id")
	if customerID == "" {
		respondBadRequest(c, domain.ErrCustomerRequired)
		return
	}
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	orders, err := s.orders.ListOrders(customerID, limit)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	result := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": result})
}

// Qty без binding-валидации: неположительное количество должно дойти до
// сервисного слоя и вернуться единым типизированным отказом, а не
// ошибкой привязки.
type addItemRequest struct {
	JewelryID string `json:"jewelry_id" binding:"required"`
	Qty       int32  `json:"qty"`
}

func (s *Server) addOrderItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := s.orders.AddItem(c.Param("id"), req.JewelryID, req.Qty)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(updated))
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) changeOrderStatus(c *gin.Context) {
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := s.orders.Transition(c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(updated))
}

func (s *Server) deleteOrder(c *gin.Context) {
	if err := s.orders.DeleteOrder(c.Param("id")); err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type recordPaymentRequest struct {
	AmountMinor int64  `json:"amount_minor"`
	Method      string `json:"method" binding:"required"`
}

func (s *Server) recordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	payment, paidToDate, err := s.orders.RecordPayment(
		c.Param("id"), req.AmountMinor, domain.PaymentMethod(req.Method),
	)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"payment":            toPaymentResponse(payment),
		"paid_to_date_minor": paidToDate,
	})
}

func (s *Server) listPayments(c *gin.Context) {
	orderID := c.Param("id")
	if _, err := s.orders.GetOrder(orderID); err != nil {
		respondError(c, s.logger, err)
		return
	}
	payments, err := s.orders.Payments().ListByOrder(orderID)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	result := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		result = append(result, toPaymentResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"payments": result})
}

func (s *Server) orderTimeline(c *gin.Context) {
	events, err := s.orders.Timeline(c.Param("id"))
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	result := make([]timelineEventResponse, 0, len(events))
	for _, event := range events {
		result = append(result, timelineEventResponse{
			OrderID:  event.OrderID,
			Type:     event.Type,
			Reason:   event.Reason,
			Occurred: event.Occurred,
		})
	}
	c.JSON(http.StatusOK, gin.H{"events": result})
}

// parseLimit разбирает опциональный query-параметр limit.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer")
	}
	return limit, nil
}
