// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package booksrs realizes the books resource, allowing the public
// catalog browsing APIs and the administrative inventory APIs to be
// accepted and delegated to the books use case respectively.
package booksrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/libcat/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/libcat/pkg/core/model"
	"github.com/momeni/libcat/pkg/core/usecase/booksuc"
)

type resource struct {
	books *booksuc.UseCase
}

// Register instantiates a resource adapting the books use case
// instance with the public REST APIs (on the r group) including:
//  1. GET request to /api/books/featured for a few random books,
//  2. GET request to /api/books/available for all available books,
//  3. GET request to /api/books/search?q=&subject=&status=
//     in order to search the catalog,
//  4. GET request to /api/books/:id for one book details,
//
// and the administrative REST APIs (on the admin group) including:
//  1. GET request to /api/admin/dashboard for the inventory counters,
//  2. GET and POST requests to /api/admin/books
//     in order to list all books or add a new one,
//  3. GET request to /api/admin/books/search (same as public search),
//  4. GET, PUT, and DELETE requests to /api/admin/books/:id
//     in order to fetch, update, or delete a book.
func Register(r, admin *gin.RouterGroup, books *booksuc.UseCase) {
	rs := &resource{books: books}
	r.GET("books/featured", rs.Featured)
	r.GET("books/available", rs.Available)
	r.GET("books/search", rs.Search)
	r.GET("books/:id", rs.Get)

	admin.GET("dashboard", rs.Dashboard)
	admin.GET("books", rs.List)
	admin.POST("books", rs.Add)
	admin.GET("books/search", rs.Search)
	admin.GET("books/:id", rs.Get)
	admin.PUT("books/:id", rs.Update)
	admin.DELETE("books/:id", rs.Delete)
}

func (rs *resource) Featured(c *gin.Context) {
	bb, err := rs.books.Featured(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, SerBooks(bb))
}

func (rs *resource) Available(c *gin.Context) {
	bb, err := rs.books.Search(c, model.BookFilter{
		Status: model.BookAvailable,
	})
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, SerBooks(bb))
}

func (rs *resource) Search(c *gin.Context) {
	f, ok := DserSearchReq(c)
	if !ok {
		return
	}
	bb, err := rs.books.Search(c, *f)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, SerBooks(bb))
}

func (rs *resource) Get(c *gin.Context) {
	id, ok := serdser.ParseID(c, "id")
	if !ok {
		return
	}
	b, err := rs.books.Get(c, id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, SerBook(b))
}

func (rs *resource) List(c *gin.Context) {
	bb, err := rs.books.List(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, SerBooks(bb))
}

func (rs *resource) Add(c *gin.Context) {
	b, ok := DserBookReq(c)
	if !ok {
		return
	}
	if err := rs.books.Add(c, b); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, SerBook(b))
}

func (rs *resource) Update(c *gin.Context) {
	id, ok := serdser.ParseID(c, "id")
	if !ok {
		return
	}
	b, ok := DserBookReq(c)
	if !ok {
		return
	}
	b.ID = id
	if err := rs.books.Update(c, b); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, SerBook(b))
}

func (rs *resource) Delete(c *gin.Context) {
	id, ok := serdser.ParseID(c, "id")
	if !ok {
		return
	}
	if err := rs.books.Delete(c, id); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}

func (rs *resource) Dashboard(c *gin.Context) {
	s, err := rs.books.Dashboard(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, SerDashboard(s))
}
