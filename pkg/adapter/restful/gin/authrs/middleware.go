// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authrs

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/momeni/libcat/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/libcat/pkg/core/usecase/authuc"
)

// UsernameKey is the gin context key which holds the authenticated
// administrator username after the RequireAdmin middleware.
const UsernameKey = "libcat/admin"

// RequireAdmin returns a middleware which rejects requests without a
// valid "Authorization: Bearer <token>" header by a 401 response.
func RequireAdmin(auth *authuc.UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			token = ""
		}
		username, err := auth.Verify(c, strings.TrimSpace(token))
		if err != nil {
			serdser.SerErr(c, err)
			c.Abort()
			return
		}
		c.Set(UsernameKey, username)
		c.Next()
	}
}
