// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser provides the serialization and deserialization
// helpers which are shared by the resource packages. Requests are
// bound and validated by Bind, while errors are reported by SerErr.
// All error bodies are JSON objects, either having a message field or
// mapping the invalid field names to their error messages.
package serdser

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/momeni/libcat/pkg/core/cerr"
	"github.com/momeni/libcat/pkg/core/log"
)

// InternalErrorMessage is reported for all errors which are not
// wrapped by a cerr.Error, while their details are only logged.
const InternalErrorMessage = "internal server error"

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

// fieldName returns the name of a request struct field as it is seen
// by the clients, so validation errors can be reported by that name.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		}
		return name
	}
	return f.Name
}

// Bind deserializes and validates the request into req using the b
// binding. If it fails, a 400 response is written and false is
// returned. Validation errors are reported per json field name.
func Bind(c *gin.Context, req any, b binding.Binding) bool {
	switch err := c.ShouldBindWith(req, b).(type) {
	case nil:
		return true
	case *validator.InvalidValidationError:
		SerErr(c, err)
	case validator.ValidationErrors:
		var nameToErrs map[string][]string
		for _, ferr := range err {
			AddErr(&nameToErrs, ferr.Field(), ferr.Error())
		}
		c.JSON(http.StatusBadRequest, nameToErrs)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"message": err.Error(),
		})
	}
	return false
}

// AddErr appends msgs to the name field errors, allocating the errs
// map if it is nil.
func AddErr(errs *map[string][]string, name string, msgs ...string) {
	if *errs == nil {
		*errs = make(map[string][]string)
	}
	(*errs)[name] = append((*errs)[name], msgs...)
}

// Assert adds msgs as the name field errors if ok is false. It returns
// ok, so consecutive checks may be chained conditionally.
func Assert(
	errs *map[string][]string, ok bool, name string, msgs ...string,
) bool {
	if !ok {
		AddErr(errs, name, msgs...)
	}
	return ok
}

// ParseID parses the name path parameter as a UUID. If it fails,
// a 400 response is written and false is returned.
func ParseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		var errs map[string][]string
		AddErr(&errs, name, "Path param "+name+" is not UUID.")
		c.JSON(http.StatusBadRequest, errs)
		return uuid.Nil, false
	}
	return id, true
}

// SerErr writes err as a JSON response. A cerr.Error is reported with
// its own status code and message. Other errors are logged and a 500
// response with a generic message is written instead.
func SerErr(c *gin.Context, err error) {
	var ce *cerr.Error
	if errors.As(err, &ce) {
		c.JSON(ce.HTTPStatusCode, gin.H{
			"message": ce.Err.Error(),
		})
		return
	}
	log.Error(
		c, "request failed",
		log.Err("err", err),
		log.Stringer("url", c.Request.URL),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"message": InternalErrorMessage,
	})
}
