package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/govland/land-trade/land"
)

type registerRequest struct {
	Profile *land.Profile `json:"profile,omitempty"`
}

type landRequest struct {
	Account string `json:"account"`
	land.Registration
}

type listRequest struct {
	Account   string `json:"account"`
	PriceFiat string `json:"priceFiat"`
}

type buyRequest struct {
	Account string `json:"account"`
}

type approveRequest struct {
	Account  string        `json:"account"`
	Metadata land.Metadata `json:"metadata"`
}

func handleAccountCreation() gin.HandlerFunc {
	return func(c *gin.Context) {
		address, err := createAccount()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"account": address})
	}
}

func handleUserRegistration(coordinator *land.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}

		caller, err := getAccount(c.Param("address"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "account not registered"})
			return
		}

		txHash, err := coordinator.RegisterAccount(c.Request.Context(), caller, req.Profile)
		if err != nil {
			checkErr(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"tx": txHash})
	}
}

func handleLandRegistration(coordinator *land.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req landRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}

		caller, err := getAccount(req.Account)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "account not registered"})
			return
		}

		id, err := coordinator.RegisterLand(c.Request.Context(), caller, req.Registration)
		if err != nil {
			checkErr(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"landId": id})
	}
}

func handleListForSale(coordinator *land.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := landID(c)
		if !ok {
			return
		}

		var req listRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}

		caller, err := getAccount(req.Account)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "account not registered"})
			return
		}

		if err := coordinator.ListForSale(c.Request.Context(), caller, id, req.PriceFiat); err != nil {
			checkErr(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"landId": id, "status": land.StatusForSale.String()})
	}
}

func handleBuyRequest(coordinator *land.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := landID(c)
		if !ok {
			return
		}

		var req buyRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}

		caller, err := getAccount(req.Account)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "account not registered"})
			return
		}

		if err := coordinator.RequestBuy(c.Request.Context(), caller, id); err != nil {
			checkErr(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"landId": id, "status": land.StatusPendingApproval.String()})
	}
}

func handleApproval(coordinator *land.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := landID(c)
		if !ok {
			return
		}

		var req approveRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}

		caller, err := getAccount(req.Account)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "account not registered"})
			return
		}

		if err := coordinator.ApproveTransfer(c.Request.Context(), caller, id, req.Metadata); err != nil {
			checkErr(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"landId": id, "status": land.StatusActive.String()})
	}
}

func handleGetLand(coordinator *land.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := landID(c)
		if !ok {
			return
		}

		view, err := coordinator.Land(c.Request.Context(), id)
		if err != nil {
			checkErr(c, err)
			return
		}

		c.JSON(http.StatusOK, view)
	}
}

func handleAllLands(coordinator *land.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := coordinator.AllLands(c.Request.Context())
		if err != nil {
			checkErr(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"lands": views})
	}
}

func handleOwnedLands(coordinator *land.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := coordinator.OwnedLands(c.Request.Context(), c.Param("address"))
		if err != nil {
			checkErr(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"lands": views})
	}
}

func handleSaleInfo(coordinator *land.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := landID(c)
		if !ok {
			return
		}

		sale, err := coordinator.SaleInfo(c.Request.Context(), id)
		if err != nil {
			checkErr(c, err)
			return
		}

		c.JSON(http.StatusOK, sale)
	}
}

func handleProfile(coordinator *land.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		addr, err := land.ParseAddress(c.Param("address"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		profile, err := coordinator.Profile(c.Request.Context(), addr)
		if err != nil {
			checkErr(c, err)
			return
		}

		c.JSON(http.StatusOK, profile)
	}
}

func landID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid land id"})
		return 0, false
	}
	return id, true
}
