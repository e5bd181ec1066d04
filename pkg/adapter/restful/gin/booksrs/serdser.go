// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package booksrs

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/momeni/libcat/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/libcat/pkg/core/model"
)

// Book is the JSON representation of a model.Book.
type Book struct {
	ID      string `json:"bookid"`
	Title   string `json:"bookname"`
	Author  string `json:"author"`
	Subject string `json:"subject"`
	Picture string `json:"picture"`
	Status  string `json:"status"`
}

// SerBook converts b to its JSON representation.
func SerBook(b *model.Book) *Book {
	return &Book{
		ID:      b.ID.String(),
		Title:   b.Title,
		Author:  b.Author,
		Subject: b.Subject,
		Picture: b.Picture,
		Status:  b.Status.String(),
	}
}

// SerBooks converts bb to their JSON representations. The result is
// never nil, so an empty JSON array is reported for no books.
func SerBooks(bb []model.Book) []*Book {
	res := make([]*Book, 0, len(bb))
	for i := range bb {
		res = append(res, SerBook(&bb[i]))
	}
	return res
}

// Dashboard is the JSON representation of a model.DashboardStats.
type Dashboard struct {
	TotalBooks     int64 `json:"totalBooks"`
	AvailableBooks int64 `json:"availableBooks"`
	BorrowedBooks  int64 `json:"borrowedBooks"`
	OverdueBooks   int64 `json:"overdueBooks"`
}

// SerDashboard converts s to its JSON representation.
func SerDashboard(s *model.DashboardStats) *Dashboard {
	return &Dashboard{
		TotalBooks:     s.TotalBooks,
		AvailableBooks: s.AvailableBooks,
		BorrowedBooks:  s.BorrowedBooks,
		OverdueBooks:   s.OverdueBooks,
	}
}

type bookReq struct {
	Title   string `json:"bookname" binding:"required,max=255"`
	Author  string `json:"author" binding:"required,max=255"`
	Subject string `json:"subject" binding:"required,max=100"`
	Picture string `json:"picture" binding:"required,max=1024"`
}

// DserBookReq deserializes a book creation or update request body.
// The ID and Status fields of the returned book are left unset.
func DserBookReq(c *gin.Context) (*model.Book, bool) {
	req := &bookReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return nil, false
	}
	return &model.Book{
		Title:   strings.TrimSpace(req.Title),
		Author:  strings.TrimSpace(req.Author),
		Subject: strings.TrimSpace(req.Subject),
		Picture: strings.TrimSpace(req.Picture),
	}, true
}

type searchReq struct {
	Query   string `form:"q"`
	Subject string `form:"subject"`
	Status  string `form:"status"`
}

// DserSearchReq deserializes the search query parameters. The status
// is matched case-insensitively, so both "Not Available" and
// "not available" are accepted.
func DserSearchReq(c *gin.Context) (*model.BookFilter, bool) {
	req := &searchReq{}
	if !serdser.Bind(c, req, binding.Query) {
		return nil, false
	}
	f := &model.BookFilter{
		Query:   strings.TrimSpace(req.Query),
		Subject: strings.TrimSpace(req.Subject),
	}
	switch s := strings.TrimSpace(req.Status); {
	case s == "":
	case strings.EqualFold(s, model.BookAvailable.String()):
		f.Status = model.BookAvailable
	case strings.EqualFold(s, model.BookNotAvailable.String()):
		f.Status = model.BookNotAvailable
	default:
		var errs map[string][]string
		serdser.AddErr(&errs, "status", "Unknown book status.")
		c.JSON(http.StatusBadRequest, errs)
		return nil, false
	}
	return f, true
}
