package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	billingdomain "github.com/smallbiznis/opsdesk/internal/billing/domain"
)

type GenerateBillsRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (s *Server) GenerateMonthlyBills(c *gin.Context) {
	var req GenerateBillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.billingSvc.GenerateMonthlyBills(c.Request.Context(), req.Month, req.Year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) BillingSummary(c *gin.Context) {
	summary, err := s.billingSvc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) CurrentMonthBills(c *gin.Context) {
	cycles, err := s.billingSvc.CurrentMonthBills(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cycles": cycles})
}

func (s *Server) ListCycles(c *gin.Context) {
	cycles, err := s.billingSvc.ListCycles(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cycles": cycles})
}

type RecordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes"`
	PaymentDate   *time.Time      `json:"payment_date"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user := currentUser(c)
	if user == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	domainReq := billingdomain.RecordPaymentRequest{
		BillingCycleID: c.Param("id"),
		Amount:         req.Amount,
		PaymentMethod:  req.PaymentMethod,
		Notes:          req.Notes,
		CreatedBy:      user.ID,
	}
	if req.PaymentDate != nil {
		domainReq.PaymentDate = *req.PaymentDate
	}

	payment, err := s.billingSvc.RecordPayment(c.Request.Context(), domainReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

func (s *Server) ListPayments(c *gin.Context) {
	payments, err := s.billingSvc.ListPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
