package httpapi

import (
	"time"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

type orderItemResponse struct {
	ID         string    `json:"id"`
	JewelryID  string    `json:"jewelry_id"`
	Qty        int32     `json:"qty"`
	PriceMinor int64     `json:"price_minor"`
	CreatedAt  time.Time `json:"created_at"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	CustomerID string              `json:"customer_id"`
	Status     string              `json:"status"`
	TotalMinor int64               `json:"total_minor"`
	Items      []orderItemResponse `json:"items"`
	Version    int64               `json:"version"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

func toOrderResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:         item.ID,
			JewelryID:  item.JewelryID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
			CreatedAt:  item.CreatedAt,
		})
	}
	return orderResponse{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Status:     string(order.Status),
		TotalMinor: order.TotalMinor,
		Items:      items,
		Version:    order.Version,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
}

type paymentResponse struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	Method      string    `json:"method"`
	AmountMinor int64     `json:"amount_minor"`
	PaidAt      time.Time `json:"paid_at"`
}

func toPaymentResponse(payment domain.Payment) paymentResponse {
	return paymentResponse{
		ID:          payment.ID,
		OrderID:     payment.OrderID,
		Method:      string(payment.Method),
		AmountMinor: payment.AmountMinor,
		PaidAt:      payment.PaidAt,
	}
}

type timelineEventResponse struct {
	OrderID  string    `json:"order_id"`
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred_at"`
}

type customerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toCustomerResponse(customer domain.Customer) customerResponse {
	return customerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		TaxID:     customer.TaxID,
		Email:     customer.Email,
		CreatedAt: customer.CreatedAt,
	}
}

type jewelryResponse struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	Kind       string                  `json:"kind"`
	Material   string                  `json:"material,omitempty"`
	PriceMinor int64                   `json:"price_minor"`
	Stock      int32                   `json:"stock"`
	Ring       *domain.RingDetails     `json:"ring,omitempty"`
	Necklace   *domain.NecklaceDetails `json:"necklace,omitempty"`
	Watch      *domain.WatchDetails    `json:"watch,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

func toJewelryResponse(jewelry domain.Jewelry) jewelryResponse {
	return jewelryResponse{
		ID:         jewelry.ID,
		Name:       jewelry.Name,
		Kind:       string(jewelry.Kind),
		Material:   jewelry.Material,
		PriceMinor: jewelry.PriceMinor,
		Stock:      jewelry.Stock,
		Ring:       jewelry.Ring,
		Necklace:   jewelry.Necklace,
		Watch:      jewelry.Watch,
		CreatedAt:  jewelry.CreatedAt,
	}
}

type employeeResponse struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name"`
	TaxID       string                     `json:"tax_id"`
	Role        string                     `json:"role"`
	Manager     *domain.ManagerDetails     `json:"manager,omitempty"`
	Salesperson *domain.SalespersonDetails `json:"salesperson,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
}

func toEmployeeResponse(employee domain.Employee) employeeResponse {
	return employeeResponse{
		ID:          employee.ID,
		Name:        employee.Name,
		TaxID:       employee.TaxID,
		Role:        string(employee.Role),
		Manager:     employee.Manager,
		Salesperson: employee.Salesperson,
		CreatedAt:   employee.CreatedAt,
	}
}
