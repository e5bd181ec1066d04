// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/momeni/libcat/internal/test/dbcontainer"
	"github.com/momeni/libcat/pkg/adapter/config"
	"github.com/momeni/libcat/pkg/adapter/db/postgres"
	"github.com/momeni/libcat/pkg/adapter/hash/scram"
	"github.com/momeni/libcat/pkg/adapter/restful/gin"
	"github.com/momeni/libcat/pkg/adapter/restful/gin/booksrs"
	"github.com/momeni/libcat/pkg/adapter/restful/gin/loansrs"
	"github.com/momeni/libcat/pkg/adapter/restful/gin/routes"
	"github.com/momeni/libcat/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/libcat/pkg/core/model"
	"github.com/stretchr/testify/suite"
)

const (
	adminUser = "librarian"
	adminPass = "correct horse battery staple"
)

type IntegrationGinTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pool *postgres.Pool
	Gin  *gin.Engine

	token string
	today time.Time
}

func TestIntegrationGinTestSuite(t *testing.T) {
	ctx := context.Background()
	_, pool, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, false, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	suite.Run(t, &IntegrationGinTestSuite{
		Ctx:  ctx,
		Pool: pool,
	})
}

func (igts *IntegrationGinTestSuite) SetupSuite() {
	hash, err := scram.SHA256().Hash(adminPass, "", 4096)
	igts.Require().NoError(err, "failed to hash admin password")
	c := &config.Config{
		Auth: config.Auth{
			Admins: []config.Admin{{
				Username:     adminUser,
				PasswordHash: hash,
			}},
			TokenSecret: "an-integration-test-secret-of-32b",
		},
	}
	igts.Require().NoError(c.Auth.ValidateAndNormalize())
	igts.Require().NoError(c.Usecases.ValidateAndNormalize())

	igts.Gin = gin.New()
	igts.Require().NotNil(igts.Gin, "cannot instantiate Gin engine")
	err = routes.Register(igts.Gin, igts.Pool, c)
	igts.Require().NoError(err, "failed to register Gin routes")
}

func (igts *IntegrationGinTestSuite) SetupTest() {
	igts.Require().NoError(dbcontainer.Truncate(igts.Ctx, igts.Pool))
	igts.today = model.Date(time.Now().UTC())
	if igts.token != "" {
		return
	}
	res := &struct{ Token string }{}
	code := igts.sendReqRecvResp(
		http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": adminUser,
			"password": adminPass,
		}, res,
	)
	igts.Require().Equal(http.StatusOK, code, "login failed")
	igts.Require().NotEmpty(res.Token)
	igts.token = res.Token
}

// sendReqRecvResp sends body as a JSON request (if it is not nil) with
// the token bearer (if it is not empty), decodes the JSON response into
// res, and returns the response status code.
func (igts *IntegrationGinTestSuite) sendReqRecvResp(
	method, path, token string, body, res any,
) int {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		igts.Require().NoError(err, "cannot marshal request body")
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, path, r)
	igts.Require().NoError(err, "cannot create %s request", method)
	req.Header.Add("Content-Type", "application/json")
	if token != "" {
		req.Header.Add("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	igts.Gin.ServeHTTP(w, req)
	igts.NoError(json.Unmarshal(w.Body.Bytes(), res), "body is not json")
	return w.Code
}

type message struct {
	Message string
}

func (igts *IntegrationGinTestSuite) addBook(title, subject string) *booksrs.Book {
	b := &booksrs.Book{}
	code := igts.sendReqRecvResp(
		http.MethodPost, "/api/admin/books", igts.token, map[string]string{
			"bookname": title,
			"author":   "Author of " + title,
			"subject":  subject,
			"picture":  "/images/" + title + ".jpg",
		}, b,
	)
	igts.Require().Equal(http.StatusCreated, code, "adding %q", title)
	return b
}

func (igts *IntegrationGinTestSuite) date(days int) string {
	return igts.today.AddDate(0, 0, days).Format(model.DateLayout)
}

func (igts *IntegrationGinTestSuite) TestAuth() {
	res := &message{}
	code := igts.sendReqRecvResp(
		http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": adminUser,
			"password": "wrong",
		}, res,
	)
	igts.Equal(http.StatusUnauthorized, code)
	igts.Equal("invalid credentials", res.Message)

	v := &struct {
		Valid    bool
		Username string
	}{}
	code = igts.sendReqRecvResp(http.MethodGet, "/api/auth/verify", igts.token, nil, v)
	igts.Equal(http.StatusOK, code)
	igts.True(v.Valid)
	igts.Equal(adminUser, v.Username)

	for _, token := range []string{"", "not-a-token", igts.token + "x"} {
		res = &message{}
		code = igts.sendReqRecvResp(http.MethodGet, "/api/admin/books", token, nil, res)
		igts.Equal(http.StatusUnauthorized, code, "token %q", token)
		igts.Equal("invalid token", res.Message)
	}
}

func (igts *IntegrationGinTestSuite) TestBadRequest() {
	for _, tc := range []struct {
		name     string
		path     string
		body     map[string]string
		field    string
		contains string
	}{
		{
			name:     "book without name",
			path:     "/api/admin/books",
			body:     map[string]string{"author": "a", "subject": "s", "picture": "p"},
			field:    "bookname",
			contains: "failed on the 'required' tag",
		},
		{
			name: "order without book",
			path: "/api/admin/orders",
			body: map[string]string{
				"name":             "Alice",
				"dateborrowed":     "2024-01-01",
				"datetobereturned": "2024-01-10",
			},
			field:    "bookname",
			contains: "failed on the 'required_without' tag",
		},
		{
			name: "order with invalid date",
			path: "/api/admin/orders",
			body: map[string]string{
				"name":             "Alice",
				"bookname":         "Dune",
				"dateborrowed":     "01/02/2024",
				"datetobereturned": "2024-01-10",
			},
			field:    "dateborrowed",
			contains: "failed on the 'datetime' tag",
		},
		{
			name: "order with invalid book id",
			path: "/api/admin/orders",
			body: map[string]string{
				"name":             "Alice",
				"bookid":           "42",
				"dateborrowed":     "2024-01-01",
				"datetobereturned": "2024-01-10",
			},
			field:    "bookid",
			contains: "failed on the 'uuid' tag",
		},
	} {
		igts.Run(tc.name, func() {
			res := map[string][]string{}
			code := igts.sendReqRecvResp(
				http.MethodPost, tc.path, igts.token, tc.body, &res,
			)
			igts.Equal(http.StatusBadRequest, code)
			if igts.Len(res[tc.field], 1, "errors: %v", res) {
				igts.Contains(res[tc.field][0], tc.contains)
			}
		})
	}

	res := &message{}
	code := igts.sendReqRecvResp(http.MethodPost, "/api/admin/orders", igts.token,
		map[string]string{
			"name":             "Alice",
			"bookname":         "Dune",
			"dateborrowed":     "2024-01-10",
			"datetobereturned": "2024-01-01",
		}, res,
	)
	igts.Equal(http.StatusBadRequest, code, "due date before borrow date")
	igts.NotEmpty(res.Message)

	errs := map[string][]string{}
	code = igts.sendReqRecvResp(http.MethodGet, "/api/books/42", "", nil, &errs)
	igts.Equal(http.StatusBadRequest, code)
	igts.Equal([]string{"Path param id is not UUID."}, errs["id"])
}

func (igts *IntegrationGinTestSuite) TestBooks() {
	dune := igts.addBook("Dune", "Science Fiction")
	igts.addBook("Emma", "Romance")
	igts.Equal("Available", dune.Status)

	res := &message{}
	code := igts.sendReqRecvResp(
		http.MethodPost, "/api/admin/books", igts.token, map[string]string{
			"bookname": "Dune",
			"author":   "Frank Herbert",
			"subject":  "Science Fiction",
			"picture":  "/images/dune2.jpg",
		}, res,
	)
	igts.Equal(http.StatusConflict, code, "duplicate title")

	b := &booksrs.Book{}
	code = igts.sendReqRecvResp(http.MethodGet, "/api/books/"+dune.ID, "", nil, b)
	igts.Equal(http.StatusOK, code)
	igts.Equal(dune, b)

	res = &message{}
	code = igts.sendReqRecvResp(
		http.MethodGet, "/api/books/"+uuid.NewString(), "", nil, res,
	)
	igts.Equal(http.StatusNotFound, code)
	igts.Equal("book not found", res.Message)

	var bb []booksrs.Book
	code = igts.sendReqRecvResp(http.MethodGet, "/api/books/search?q=fiction", "", nil, &bb)
	igts.Equal(http.StatusOK, code)
	if igts.Len(bb, 1) {
		igts.Equal("Dune", bb[0].Title)
	}
	bb = nil
	code = igts.sendReqRecvResp(
		http.MethodGet, "/api/books/search?status=not+available", "", nil, &bb,
	)
	igts.Equal(http.StatusOK, code)
	igts.Empty(bb)
	errs := map[string][]string{}
	code = igts.sendReqRecvResp(
		http.MethodGet, "/api/books/search?status=lost", "", nil, &errs,
	)
	igts.Equal(http.StatusBadRequest, code)
	igts.Len(errs["status"], 1)

	b = &booksrs.Book{}
	code = igts.sendReqRecvResp(
		http.MethodPut, "/api/admin/books/"+dune.ID, igts.token, map[string]string{
			"bookname": "Dune Messiah",
			"author":   "Frank Herbert",
			"subject":  "Science Fiction",
			"picture":  "/images/messiah.jpg",
		}, b,
	)
	igts.Equal(http.StatusOK, code)
	igts.Equal("Dune Messiah", b.Title)
	igts.Equal("Available", b.Status)

	bb = nil
	code = igts.sendReqRecvResp(http.MethodGet, "/api/admin/books", igts.token, nil, &bb)
	igts.Equal(http.StatusOK, code)
	igts.Len(bb, 2)

	res = &message{}
	code = igts.sendReqRecvResp(
		http.MethodDelete, "/api/admin/books/"+dune.ID, igts.token, nil, res,
	)
	igts.Equal(http.StatusOK, code)
	res = &message{}
	code = igts.sendReqRecvResp(
		http.MethodDelete, "/api/admin/books/"+dune.ID, igts.token, nil, res,
	)
	igts.Equal(http.StatusNotFound, code)
}

func (igts *IntegrationGinTestSuite) TestOrders() {
	dune := igts.addBook("Dune", "Science Fiction")
	emma := igts.addBook("Emma", "Romance")

	created := &struct {
		Message string
		OrderID string `json:"orderId"`
		Order   loansrs.Order
	}{}
	code := igts.sendReqRecvResp(
		http.MethodPost, "/api/admin/orders", igts.token, map[string]string{
			"name":             "Alice",
			"bookid":           dune.ID,
			"dateborrowed":     igts.date(-3),
			"datetobereturned": igts.date(4),
		}, created,
	)
	igts.Require().Equal(http.StatusCreated, code)
	igts.Equal("Record added successfully", created.Message)
	igts.Equal(created.OrderID, created.Order.ID)
	igts.Equal(4, created.Order.DaysRemaining)
	igts.False(created.Order.IsOverdue)
	igts.Equal("Not Returned", created.Order.DisplayStatus)
	igts.Equal("Dune", created.Order.BookName)

	res := &message{}
	code = igts.sendReqRecvResp(
		http.MethodPost, "/api/admin/orders", igts.token, map[string]string{
			"name":             "Bob",
			"bookname":         "Dune",
			"dateborrowed":     igts.date(0),
			"datetobereturned": igts.date(7),
		}, res,
	)
	igts.Equal(http.StatusConflict, code)
	igts.Equal("book not available", res.Message)

	code = igts.sendReqRecvResp(
		http.MethodPost, "/api/admin/orders", igts.token, map[string]string{
			"name":             "Bob",
			"bookname":         "Emma",
			"dateborrowed":     igts.date(-10),
			"datetobereturned": igts.date(-2),
		}, &struct{}{},
	)
	igts.Equal(http.StatusCreated, code)

	var oo []loansrs.Order
	code = igts.sendReqRecvResp(http.MethodGet, "/api/admin/orders", igts.token, nil, &oo)
	igts.Equal(http.StatusOK, code)
	if igts.Len(oo, 2) {
		igts.Equal("Dune", oo[0].BookName, "newest borrow date first")
		igts.Equal("Emma", oo[1].BookName)
		igts.Equal(-2, oo[1].DaysRemaining)
		igts.True(oo[1].IsOverdue)
		igts.Equal("Overdue", oo[1].DisplayStatus)
		igts.Equal(emma.ID, *oo[1].BookID)
	}

	d := &booksrs.Dashboard{}
	code = igts.sendReqRecvResp(http.MethodGet, "/api/admin/dashboard", igts.token, nil, d)
	igts.Equal(http.StatusOK, code)
	igts.Equal(&booksrs.Dashboard{
		TotalBooks:     2,
		AvailableBooks: 0,
		BorrowedBooks:  2,
		OverdueBooks:   1,
	}, d)

	res = &message{}
	code = igts.sendReqRecvResp(
		http.MethodDelete, "/api/admin/books/"+dune.ID, igts.token, nil, res,
	)
	igts.Equal(http.StatusConflict, code, "deleting a lent book")

	path := "/api/admin/orders/" + created.OrderID
	errs := map[string][]string{}
	code = igts.sendReqRecvResp(
		http.MethodPatch, path, igts.token, map[string]string{"status": "Lost"}, &errs,
	)
	igts.Equal(http.StatusBadRequest, code)
	igts.Len(errs["status"], 1)

	res = &message{}
	code = igts.sendReqRecvResp(
		http.MethodPatch, path, igts.token, map[string]string{"status": "Not Returned"}, res,
	)
	igts.Equal(http.StatusBadRequest, code)

	res = &message{}
	code = igts.sendReqRecvResp(
		http.MethodPatch, path, igts.token, map[string]string{"status": "Returned"}, res,
	)
	igts.Equal(http.StatusOK, code)
	igts.Equal("Order status updated", res.Message)

	res = &message{}
	code = igts.sendReqRecvResp(
		http.MethodPatch, path, igts.token, map[string]string{"status": "Returned"}, res,
	)
	igts.Equal(http.StatusConflict, code)
	igts.Equal("loan already returned", res.Message)

	var bb []booksrs.Book
	code = igts.sendReqRecvResp(http.MethodGet, "/api/books/available", "", nil, &bb)
	igts.Equal(http.StatusOK, code)
	if igts.Len(bb, 1) {
		igts.Equal("Dune", bb[0].Title)
	}

	res = &message{}
	code = igts.sendReqRecvResp(
		http.MethodPatch, "/api/admin/orders/"+uuid.NewString(), igts.token,
		map[string]string{"status": "Returned"}, res,
	)
	igts.Equal(http.StatusNotFound, code)
	igts.Equal("loan not found", res.Message)
	igts.NotEqual(serdser.InternalErrorMessage, res.Message)
}
