package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

type createEmployeeRequest struct {
	Name        string                     `json:"name" binding:"required"`
	TaxID       string                     `json:"tax_id" binding:"required"`
	Role        string                     `json:"role" binding:"required"`
	Manager     *domain.ManagerDetails     `json:"manager"`
	Salesperson *domain.SalespersonDetails `json:"salesperson"`
}

func (s *Server) createEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	created, err := s.employees.Create(domain.Employee{
		Name:        req.Name,
		TaxID:       req.TaxID,
		Role:        domain.EmployeeRole(req.Role),
		Manager:     req.Manager,
		Salesperson: req.Salesperson,
	})
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toEmployeeResponse(created))
}

func (s *Server) getEmployee(c *gin.Context) {
	found, err := s.employees.Get(c.Param("id"))
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, toEmployeeResponse(found))
}

func (s *Server) listEmployees(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	employees, err := s.employees.List(limit)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	result := make([]employeeResponse, 0, len(employees))
	for _, employee := range employees {
		result = append(result, toEmployeeResponse(employee))
	}
	c.JSON(http.StatusOK, gin.H{"employees": result})
}

func (s *Server) deleteEmployee(c *gin.Context) {
	if err := s.employees.Delete(c.Param("id")); err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
