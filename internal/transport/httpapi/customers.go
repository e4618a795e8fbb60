package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	TaxID string `json:"tax_id" binding:"required"`
	Email string `json:"email" binding:"required"`
}

func (s *Server) createCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	created, err := s.customers.Create(req.Name, req.TaxID, req.Email)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomerResponse(created))
}

func (s *Server) getCustomer(c *gin.Context) {
	found, err := s.customers.Get(c.Param("id"))
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(found))
}

func (s *Server) listCustomers(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	customers, err := s.customers.List(limit)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	result := make([]customerResponse, 0, len(customers))
	for _, customer := range customers {
		result = append(result, toCustomerResponse(customer))
	}
	c.JSON(http.StatusOK, gin.H{"customers": result})
}

func (s *Server) deleteCustomer(c *gin.Context) {
	if err := s.customers.Delete(c.Param("id")); err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
