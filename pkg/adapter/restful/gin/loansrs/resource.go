// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package loansrs realizes the loans (borrowing orders) resource,
// allowing the administrators to lend books, mark them as returned,
// and list the borrowing records by the REST APIs.
package loansrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/libcat/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/libcat/pkg/core/usecase/loansuc"
)

type resource struct {
	loans *loansuc.UseCase
}

// Register instantiates a resource adapting the loans use case
// instance with the relevant REST APIs (on the admin group) including:
//  1. POST request to /api/admin/orders
//     in order to lend a book to a borrower,
//  2. PATCH request to /api/admin/orders/:id
//     in order to mark a loan as returned,
//  3. GET request to /api/admin/orders
//     in order to list all loans with their remaining days.
func Register(admin *gin.RouterGroup, loans *loansuc.UseCase) {
	rs := &resource{loans: loans}
	admin.POST("orders", rs.CreateOrder)
	admin.PATCH("orders/:id", rs.UpdateOrder)
	admin.GET("orders", rs.ListOrders)
}

func (rs *resource) CreateOrder(c *gin.Context) {
	nl, ok := DserCreateOrderReq(c)
	if !ok {
		return
	}
	v, err := rs.loans.CreateLoan(c, nl)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Record added successfully",
		"orderId": v.ID.String(),
		"order":   SerOrder(v),
	})
}

func (rs *resource) UpdateOrder(c *gin.Context) {
	id, ok := serdser.ParseID(c, "id")
	if !ok {
		return
	}
	s, ok := DserUpdateOrderReq(c)
	if !ok {
		return
	}
	if err := rs.loans.ReturnLoan(c, id, s); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
}

func (rs *resource) ListOrders(c *gin.Context) {
	vv, err := rs.loans.ListLoans(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, SerOrders(vv))
}
