package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jms/internal/domain"
	"github.com/vladislavdragonenkov/jms/internal/service/order"
	"github.com/vladislavdragonenkov/jms/internal/service/registry"
)

// Server — HTTP-фасад сервиса: заказы, каталог, клиенты, сотрудники.
// Вся доменная логика живёт в сервисном слое, здесь только маршрутизация,
// биндинг запросов и отображение ошибок на коды ответов.
type Server struct {
	engine *gin.Engine
	logger *log.Entry

	orders      *order.Manager
	catalog     *registry.CatalogRegistry
	customers   *registry.CustomerRegistry
	employees   *registry.EmployeeRegistry
	idempotency domain.IdempotencyRepository
	// idempotencyTTL — срок хранения записей Idempotency-Key.
	idempotencyTTL time.Duration
}

// NewServer собирает роутер и регистрирует все маршруты.
// idempotency может быть nil: тогда заголовок Idempotency-Key игнорируется.
func NewServer(
	orders *order.Manager,
	catalog *registry.CatalogRegistry,
	customers *registry.CustomerRegistry,
	employees *registry.EmployeeRegistry,
	idempotency domain.IdempotencyRepository,
	idempotencyTTL time.Duration,
	logger *log.Entry,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		engine:         engine,
		logger:         logger,
		orders:         orders,
		catalog:        catalog,
		customers:      customers,
		employees:      employees,
		idempotency:    idempotency,
		idempotencyTTL: idempotencyTTL,
	}

	engine.Use(gin.Recovery(), s.requestLogger())
	s.registerRoutes()
	return s
}

// Handler возвращает корневой http.Handler для http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	orders := s.engine.Group("/orders")
	{
		orders.POST("", s.createOrder)
		orders.GET("", s.listOrders)
		orders.GET("/:id", s.getOrder)
		orders.DELETE("/:id", s.deleteOrder)
		orders.POST("/:id/items", s.addOrderItem)
		orders.POST("/:id/status", s.changeOrderStatus)
		orders.POST("/:id/payments", s.recordPayment)
		orders.GET("/:id/payments", s.listPayments)
		orders.GET("/:id/timeline", s.orderTimeline)
	}

	jewelry := s.engine.Group("/jewelry")
	{
		jewelry.POST("", s.createJewelry)
		jewelry.GET("", s.listJewelry)
		jewelry.GET("/:id", s.getJewelry)
		jewelry.PUT("/:id/price", s.updateJewelryPrice)
		jewelry.POST("/:id/restock", s.restockJewelry)
		jewelry.DELETE("/:id", s.deleteJewelry)
	}

	customers := s.engine.Group("/customers")
	{
		customers.POST("", s.createCustomer)
		customers.GET("", s.listCustomers)
		customers.GET("/:id", s.getCustomer)
		customers.DELETE("/:id", s.deleteCustomer)
	}

	employees := s.engine.Group("/employees")
	{
		employees.POST("", s.createEmployee)
		employees.GET("", s.listEmployees)
		employees.GET("/:id", s.getEmployee)
		employees.DELETE("/:id", s.deleteEmployee)
	}
}

// requestLogger пишет строку на каждый запрос в стиле access-лога.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithFields(log.Fields{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("http request")
	}
}
