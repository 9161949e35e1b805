package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	subscriptiondomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/subscription/domain"
)

type recordUsageRequest struct {
	Seats   *int64 `json:"seats"`
	Storage *int64 `json:"storage"`
}

type cancelSubscriptionRequest struct {
	Reason string `json:"reason"`
}

func subscriptionIDParam(c *gin.Context) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || id == 0 {
		return 0, subscriptiondomain.ErrInvalidSubscriptionID
	}
	return id, nil
}

// @Summary      List Subscriptions
// @Description  List subscriptions with usage
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Success      200  {object}  subscriptiondomain.ListSubscriptionsResponse
// @Router       /subscriptions [get]
func (s *Server) ListSubscriptions(c *gin.Context) {
	resp, err := s.subs.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Subscription
// @Description  Get a subscription with usage
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Subscription ID"
// @Success      200  {object}  subscriptiondomain.View
// @Router       /subscriptions/{id} [get]
func (s *Server) GetSubscriptionByID(c *gin.Context) {
	sub, err := s.subs.GetByID(c.Request.Context(), subscriptiondomain.GetSubscriptionRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": subscriptiondomain.NewView(*sub)})
}

// @Summary      Record Usage
// @Description  Overwrite the subscription's usage counters
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Subscription ID"
// @Param        request body recordUsageRequest true "Record Usage Request"
// @Success      200  {object}  subscriptiondomain.View
// @Router       /subscriptions/{id}/usage [post]
func (s *Server) RecordSubscriptionUsage(c *gin.Context) {
	id, err := subscriptionIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req recordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sub, err := s.coord.RecordUsage(c.Request.Context(), id, req.Seats, req.Storage)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": subscriptiondomain.NewView(*sub)})
}

// @Summary      Cancel Subscription
// @Description  Cancel a subscription, cascading to its order when it is the only component
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Subscription ID"
// @Param        request body cancelSubscriptionRequest true "Cancel Subscription Request"
// @Success      200  {object}  subscriptiondomain.View
// @Router       /subscriptions/{id}/cancel [post]
func (s *Server) CancelSubscription(c *gin.Context) {
	id, err := subscriptionIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req cancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sub, err := s.coord.CancelSubscription(c.Request.Context(), id, req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": subscriptiondomain.NewView(*sub)})
}

// @Summary      Renew Subscription
// @Description  Attempt a renewal charge, manual retry for failed renewals
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Subscription ID"
// @Success      200  {object}  subscriptiondomain.View
// @Router       /subscriptions/{id}/renew [post]
func (s *Server) RenewSubscription(c *gin.Context) {
	id, err := subscriptionIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sub, err := s.coord.Renew(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": subscriptiondomain.NewView(*sub)})
}
