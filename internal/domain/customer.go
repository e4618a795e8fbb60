package domain

import "time"

// Customer описывает клиента магазина.
// TaxID и Email уникальны в пределах справочника клиентов.
type Customer struct {
	ID        string
	Name      string
	TaxID     string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет корректность полей клиента и возвращает ошибки, если они есть.
func (c *Customer) Validate() []error {
	var errs []error

	if c.TaxID == "" {
		errs = append(errs, ErrTaxIDRequired)
	}
	if c.Email == "" {
		errs = append(errs, ErrEmailRequired)
	}

	return errs
}
