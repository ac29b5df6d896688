package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/opsdesk/internal/customer/domain"
)

type CreateCustomerRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	PaymentDueDay *int   `json:"payment_due_day"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:          req.Name,
		Phone:         req.Phone,
		Address:       req.Address,
		PaymentDueDay: req.PaymentDueDay,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (s *Server) ListCustomers(c *gin.Context) {
	customers, err := s.customerSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (s *Server) GetCustomer(c *gin.Context) {
	customer, err := s.customerSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

type UpdateCustomerRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	PaymentDueDay *int   `json:"payment_due_day"`
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.customerSvc.Update(c.Request.Context(), c.Param("id"), customerdomain.UpdateCustomerRequest{
		Name:          req.Name,
		Phone:         req.Phone,
		Address:       req.Address,
		PaymentDueDay: req.PaymentDueDay,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	if err := s.customerSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type CreatePartyRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateParty(c *gin.Context) {
	var req CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	party, err := s.customerSvc.CreateParty(c.Request.Context(), customerdomain.CreatePartyRequest{
		CustomerID: c.Param("id"),
		Name:       req.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, party)
}

func (s *Server) ListParties(c *gin.Context) {
	parties, err := s.customerSvc.ListParties(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"parties": parties})
}

func (s *Server) DeleteParty(c *gin.Context) {
	if err := s.customerSvc.DeleteParty(c.Request.Context(), c.Param("id"), c.Param("partyID")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
