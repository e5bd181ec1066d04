// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package loansrs

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/libcat/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/libcat/pkg/core/model"
)

// Order is the JSON representation of a model.LoanView. The BookID
// is null for loans whose book was deleted after being returned.
type Order struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	BookID           *string `json:"bookid"`
	BookName         string  `json:"bookname"`
	DateBorrowed     string  `json:"dateborrowed"`
	DateToBeReturned string  `json:"datetobereturned"`
	Status           string  `json:"status"`
	DaysRemaining    int     `json:"daysRemaining"`
	DisplayStatus    string  `json:"displayStatus"`
	IsOverdue        bool    `json:"isOverdue"`
}

// SerOrder converts v to its JSON representation.
func SerOrder(v *model.LoanView) *Order {
	o := &Order{
		ID:               v.ID.String(),
		Name:             v.Borrower,
		BookName:         v.BookTitle,
		DateBorrowed:     v.BorrowedOn.Format(model.DateLayout),
		DateToBeReturned: v.DueOn.Format(model.DateLayout),
		Status:           v.Status.String(),
		DaysRemaining:    v.DaysRemaining,
		DisplayStatus:    v.DisplayStatus,
		IsOverdue:        v.Overdue,
	}
	if v.BookID != uuid.Nil {
		bid := v.BookID.String()
		o.BookID = &bid
	}
	return o
}

// SerOrders converts vv to their JSON representations. The result is
// never nil, so an empty JSON array is reported for no loans.
func SerOrders(vv []*model.LoanView) []*Order {
	res := make([]*Order, 0, len(vv))
	for _, v := range vv {
		res = append(res, SerOrder(v))
	}
	return res
}

type createOrderReq struct {
	Name             string `json:"name" binding:"required,max=255"`
	BookID           string `json:"bookid" binding:"omitempty,uuid"`
	BookName         string `json:"bookname" binding:"required_without=BookID,max=255"`
	DateBorrowed     string `json:"dateborrowed" binding:"required,datetime=2006-01-02"`
	DateToBeReturned string `json:"datetobereturned" binding:"required,datetime=2006-01-02"`
}

// DserCreateOrderReq deserializes a loan creation request body. The
// book may be referenced by its bookid, its bookname, or both of them.
func DserCreateOrderReq(c *gin.Context) (*model.NewLoan, bool) {
	req := &createOrderReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return nil, false
	}
	nl := &model.NewLoan{
		Borrower:  strings.TrimSpace(req.Name),
		BookTitle: strings.TrimSpace(req.BookName),
	}
	var errs map[string][]string
	var err error
	if req.BookID != "" {
		nl.BookID, err = uuid.Parse(req.BookID)
		serdser.Assert(&errs, err == nil, "bookid", "Invalid book id.")
	}
	nl.BorrowedOn, err = model.ParseDate(req.DateBorrowed)
	serdser.Assert(&errs, err == nil, "dateborrowed", "Invalid date.")
	nl.DueOn, err = model.ParseDate(req.DateToBeReturned)
	serdser.Assert(&errs, err == nil, "datetobereturned", "Invalid date.")
	if errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return nil, false
	}
	return nl, true
}

type updateOrderReq struct {
	Status string `json:"status" binding:"required"`
}

// DserUpdateOrderReq deserializes a loan status update request body.
func DserUpdateOrderReq(c *gin.Context) (model.LoanStatus, bool) {
	req := &updateOrderReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return model.LoanStatusInvalid, false
	}
	s, err := model.ParseLoanStatus(req.Status)
	if err != nil {
		var errs map[string][]string
		serdser.AddErr(&errs, "status", "Unknown loan status.")
		c.JSON(http.StatusBadRequest, errs)
		return model.LoanStatusInvalid, false
	}
	return s, true
}
