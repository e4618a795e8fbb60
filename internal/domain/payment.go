package domain

import "time"

// PaymentMethod описывает способ оплаты заказа.
type PaymentMethod string

const (
	// PaymentMethodCreditCard — оплата банковской картой.
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	// PaymentMethodBankTransfer — оплата банковским переводом.
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	// PaymentMethodCash — оплата наличными.
	PaymentMethodCash PaymentMethod = "cash"
)

// Valid проверяет, что способ оплаты относится к поддерживаемым значениям.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodBankTransfer, PaymentMethodCash:
		return true
	default:
		return false
	}
}

// Payment описывает платёж, привязанный к заказу.
// Платежей по заказу может быть несколько (оплата частями).
type Payment struct {
	ID          string
	OrderID     string
	Method      PaymentMethod
	AmountMinor int64
	PaidAt      time.Time
	CreatedAt   time.Time
}

// Validate проверяет корректность полей платежа и возвращает ошибки, если они есть.
func (p *Payment) Validate() []error {
	var errs []error

	if p.OrderID == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if !p.Method.Valid() {
		errs = append(errs, ErrPaymentMethodInvalid)
	}
	if p.AmountMinor <= 0 {
		errs = append(errs, ErrPaymentAmountInvalid)
	}

	return errs
}
