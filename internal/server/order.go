package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/smallbiznis/opsdesk/internal/order/domain"
)

type CreateOrderRequest struct {
	CustomerID string `json:"customer_id"`
	PartyID    string `json:"party_id"`
	ServiceID  string `json:"service_id"`
	Quantity   int    `json:"quantity"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user := currentUser(c)
	if user == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	order, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateOrderRequest{
		CustomerID: req.CustomerID,
		PartyID:    req.PartyID,
		ServiceID:  req.ServiceID,
		Quantity:   req.Quantity,
		CreatedBy:  user.ID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (s *Server) ListOrders(c *gin.Context) {
	req, err := orderFilters(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := c.ShouldBindQuery(&req.Page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rows, page, err := s.orderSvc.ListRecent(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": rows, "page_info": page})
}

func (s *Server) GetOrder(c *gin.Context) {
	row, err := s.orderSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (s *Server) OrdersByCustomer(c *gin.Context) {
	rows, err := s.filteredOrders(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": orderdomain.GroupByCustomer(rows)})
}

func (s *Server) OrdersByCreator(c *gin.Context) {
	rows, err := s.filteredOrders(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": orderdomain.GroupByCreator(rows)})
}

func (s *Server) OrdersByCreatorCustomer(c *gin.Context) {
	rows, err := s.filteredOrders(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": orderdomain.GroupByCreatorCustomer(rows)})
}

func (s *Server) filteredOrders(c *gin.Context) ([]orderdomain.Row, error) {
	req, err := orderFilters(c)
	if err != nil {
		return nil, err
	}
	return s.orderSvc.List(c.Request.Context(), req)
}

func orderFilters(c *gin.Context) (orderdomain.ListOrdersRequest, error) {
	req := orderdomain.ListOrdersRequest{
		CustomerID: c.Query("customer_id"),
		CreatedBy:  c.Query("created_by"),
	}

	from, err := parseDateQuery("from", c.Query("from"))
	if err != nil {
		return req, err
	}
	to, err := parseDateQuery("to", c.Query("to"))
	if err != nil {
		return req, err
	}
	if to != nil {
		// Date-only bounds are inclusive of the whole day.
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}

	req.From = from
	req.To = to
	return req, nil
}

func parseDateQuery(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, newValidationError(field, "invalid_date", "must be YYYY-MM-DD or RFC3339")
	}
	return &t, nil
}
