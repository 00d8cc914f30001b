package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/govland/land-trade/land"
)

// checkErr maps coordinator errors to HTTP statuses. Ledger rejections keep
// the ledger's reason text in the response body.
func checkErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, land.ErrNotConnected):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	case errors.Is(err, land.ErrRoleViolation):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, land.ErrPriceInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, land.ErrTransactionRejected):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, land.ErrMetadataUpload), errors.Is(err, land.ErrMetadataFetch):
		c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": err.Error()})
	}
}
