package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tollgate/internal/payment"
	"tollgate/internal/pricing"
	"tollgate/pkg/version"
)

// endpointInfo is one entry in the discovery listing.
type endpointInfo struct {
	Pattern     string `json:"pattern"`
	Price       string `json:"price"`
	Description string `json:"description,omitempty"`
}

// Index returns the root handler with basic service information.
func Index(serviceName string, network payment.NetworkConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		info := version.GetInfo()
		c.JSON(http.StatusOK, gin.H{
			"service": serviceName,
			"version": info.Version,
			"commit":  version.GetShortCommit(),
			"build":   info.BuildDate,
			"network": gin.H{
				"name":    network.Name,
				"chainId": network.ChainID,
				"token":   network.TokenSymbol,
				"testnet": network.IsTestnet,
			},
			"endpoints": "/endpoints",
		})
	}
}

// ListEndpoints returns the handler that lists priced routes so clients can
// discover prices without triggering 402s.
func ListEndpoints(table *pricing.Table, validator *payment.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoints := table.Endpoints()
		list := make([]endpointInfo, 0, len(endpoints))
		for _, ep := range endpoints {
			list = append(list, endpointInfo{
				Pattern:     ep.Pattern,
				Price:       ep.Price.String(),
				Description: ep.Description,
			})
		}

		network := validator.Network()
		c.JSON(http.StatusOK, gin.H{
			"network":   network.Name,
			"chainId":   network.ChainID,
			"token":     validator.Token(),
			"payTo":     validator.PayTo(),
			"endpoints": list,
		})
	}
}
