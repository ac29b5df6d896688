package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/opsdesk/internal/invoice/domain"
)

func (s *Server) CreatorInvoice(c *gin.Context) {
	s.renderInvoice(c, s.invoiceSvc.CreatorInvoice)
}

func (s *Server) CustomerInvoice(c *gin.Context) {
	s.renderInvoice(c, s.invoiceSvc.CustomerInvoice)
}

func (s *Server) CreatorCustomerInvoice(c *gin.Context) {
	s.renderInvoice(c, s.invoiceSvc.CreatorCustomerInvoice)
}

func (s *Server) renderInvoice(c *gin.Context, render func(context.Context, invoicedomain.DocumentRequest) (string, error)) {
	req, err := documentFilters(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	html, err := render(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func documentFilters(c *gin.Context) (invoicedomain.DocumentRequest, error) {
	orders, err := orderFilters(c)
	if err != nil {
		return invoicedomain.DocumentRequest{}, err
	}
	return invoicedomain.DocumentRequest{
		CustomerID: orders.CustomerID,
		CreatedBy:  orders.CreatedBy,
		From:       orders.From,
		To:         orders.To,
	}, nil
}

func (s *Server) CustomerMonthlyOrders(c *gin.Context) {
	totals, err := s.billingSvc.CustomerMonthlyOrders(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": totals})
}

func (s *Server) CustomerMonthlyReport(c *gin.Context) {
	html, err := s.invoiceSvc.MonthlyReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) CustomerStatementPDF(c *gin.Context) {
	pdfBytes, err := s.invoiceSvc.CustomerStatementPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="statement.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
