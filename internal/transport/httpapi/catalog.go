package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

type createJewelryRequest struct {
	Name       string                  `json:"name" binding:"required"`
	Kind       string                  `json:"kind" binding:"required"`
	Material   string                  `json:"material"`
	PriceMinor int64                   `json:"price_minor" binding:"required"`
	Stock      int32                   `json:"stock"`
	Ring       *domain.RingDetails     `json:"ring"`
	Necklace   *domain.NecklaceDetails `json:"necklace"`
	Watch      *domain.WatchDetails    `json:"watch"`
}

func (s *Server) createJewelry(c *gin.Context) {
	var req createJewelryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	created, err := s.catalog.Create(domain.Jewelry{
		Name:       req.Name,
		Kind:       domain.JewelryKind(req.Kind),
		Material:   req.Material,
		PriceMinor: req.PriceMinor,
		Stock:      req.Stock,
		Ring:       req.Ring,
		Necklace:   req.Necklace,
		Watch:      req.Watch,
	})
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toJewelryResponse(created))
}

func (s *Server) getJewelry(c *gin.Context) {
	found, err := s.catalog.Get(c.Param("id"))
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, toJewelryResponse(found))
}

func (s *Server) listJewelry(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	items, err := s.catalog.List(limit)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	result := make([]jewelryResponse, 0, len(items))
	for _, item := range items {
		result = append(result, toJewelryResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"jewelry": result})
}

type updatePriceRequest struct {
	PriceMinor int64 `json:"price_minor" binding:"required"`
}

func (s *Server) updateJewelryPrice(c *gin.Context) {
	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := s.catalog.UpdatePrice(c.Param("id"), req.PriceMinor)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, toJewelryResponse(updated))
}

type restockRequest struct {
	Qty int32 `json:"qty" binding:"required"`
}

func (s *Server) restockJewelry(c *gin.Context) {
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := s.catalog.Restock(c.Param("id"), req.Qty)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, toJewelryResponse(updated))
}

func (s *Server) deleteJewelry(c *gin.Context) {
	if err := s.catalog.Delete(c.Param("id")); err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
