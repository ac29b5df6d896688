package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/opsdesk/internal/catalog/domain"
)

type CreateServiceRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func (s *Server) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateServiceRequest{
		Name:  req.Name,
		Price: req.Price,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (s *Server) ListServices(c *gin.Context) {
	services, err := s.catalogSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

func (s *Server) GetService(c *gin.Context) {
	service, err := s.catalogSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

type SetCustomerPriceRequest struct {
	ServiceID string          `json:"service_id"`
	Price     decimal.Decimal `json:"price"`
}

func (s *Server) SetCustomerPrice(c *gin.Context) {
	var req SetCustomerPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	override, err := s.catalogSvc.SetCustomerPrice(c.Request.Context(), catalogdomain.SetCustomerPriceRequest{
		CustomerID: c.Param("id"),
		ServiceID:  req.ServiceID,
		Price:      req.Price,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, override)
}

func (s *Server) ListCustomerPrices(c *gin.Context) {
	overrides, err := s.catalogSvc.ListCustomerPrices(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prices": overrides})
}

func (s *Server) DeleteCustomerPrice(c *gin.Context) {
	err := s.catalogSvc.DeleteCustomerPrice(c.Request.Context(), c.Param("id"), c.Param("serviceID"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
