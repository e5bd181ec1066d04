// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package authrs realizes the authentication resource, allowing the
// administrators to log in and obtain bearer tokens. It also provides
// the RequireAdmin middleware which guards the administrative APIs.
package authrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/momeni/libcat/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/libcat/pkg/core/usecase/authuc"
)

type resource struct {
	auth *authuc.UseCase
}

// Register instantiates a resource adapting the auth use case instance
// with the relevant REST APIs including:
//  1. POST request to /api/auth/login
//     in order to exchange a username and password with a token.
//  2. GET request to /api/auth/verify
//     in order to check if the bearer token is still valid.
func Register(r *gin.RouterGroup, auth *authuc.UseCase) {
	rs := &resource{auth: auth}
	r.POST("auth/login", rs.Login)
	r.GET("auth/verify", RequireAdmin(auth), rs.Verify)
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (rs *resource) Login(c *gin.Context) {
	req := &loginReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return
	}
	token, err := rs.auth.Login(c, req.Username, req.Password)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (rs *resource) Verify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"username": c.GetString(UsernameKey),
	})
}
