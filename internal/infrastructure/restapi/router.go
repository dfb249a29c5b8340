// Package restapi exposes the account directory over HTTP.
package restapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds the HTTP engine with every route registered.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.Use(ZapLogger(logger))
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/accounts", h.ListAccounts)
		v1.POST("/accounts", h.LoadAccount)
		v1.GET("/accounts/:address", h.GetAccount)
		v1.DELETE("/accounts/:address", h.DeleteAccount)
		v1.PUT("/accounts/:address/ens/name", h.UpdateENSName)
		v1.PUT("/accounts/:address/ens/avatar", h.UpdateENSAvatar)
		v1.GET("/accounts/:address/activity", h.GetActivity)

		v1.POST("/balances", h.UpdateBalances)
		v1.GET("/portfolio", h.GetPortfolio)
		v1.GET("/poll/errors", h.GetPollErrors)

		v1.POST("/decode/logs", h.DecodeLogs)
		v1.POST("/decode/call", h.DecodeCall)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
