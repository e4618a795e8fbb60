package domain_test

import (
	"testing"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

func makeRing() domain.Jewelry {
	return domain.Jewelry{
		ID:         "jewelry-1",
		Name:       "Gold ring",
		Kind:       domain.JewelryKindRing,
		Material:   "gold",
		PriceMinor: 150000,
		Stock:      3,
		Ring:       &domain.RingDetails{Size: 16.5},
	}
}

func TestJewelryValidate_Ok(t *testing.T) {
	jewelry := makeRing()
	if errs := jewelry.Validate(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestJewelryValidate_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(j *domain.Jewelry)
	}{
		{
			name: "invalid kind",
			mut: func(j *domain.Jewelry) {
				j.Kind = "bracelet"
			},
		},
		{
			name: "negative stock",
			mut: func(j *domain.Jewelry) {
				j.Stock = -1
			},
		},
		{
			name: "non-positive price",
			mut: func(j *domain.Jewelry) {
				j.PriceMinor = 0
			},
		},
		{
			name: "details mismatch kind",
			mut: func(j *domain.Jewelry) {
				j.Ring = nil
				j.Watch = &domain.WatchDetails{Mechanism: "quartz"}
			},
		},
		{
			name: "two payloads at once",
			mut: func(j *domain.Jewelry) {
				j.Necklace = &domain.NecklaceDetails{LengthMM: 450}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			jewelry := makeRing()
			tc.mut(&jewelry)

			if len(jewelry.Validate()) == 0 {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}
		})
	}
}

func TestEmployeeValidate(t *testing.T) {
	employee := domain.Employee{
		ID:          "employee-1",
		Name:        "Anna",
		TaxID:       "500100",
		Role:        domain.EmployeeRoleSalesperson,
		Salesperson: &domain.SalespersonDetails{CommissionPct: 5},
	}
	if errs := employee.Validate(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}

	employee.Role = "director"
	if len(employee.Validate()) == 0 {
		t.Fatal("expected error for unknown role")
	}

	employee.Role = domain.EmployeeRoleManager
	employee.TaxID = ""
	if len(employee.Validate()) == 0 {
		t.Fatal("expected error for empty tax_id")
	}
}
