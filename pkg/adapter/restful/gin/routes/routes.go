// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// instantiation and registration of all repo, use case, and resource
// packages based on the user provided configuration settings.
package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/momeni/libcat/pkg/adapter/config"
	"github.com/momeni/libcat/pkg/adapter/db/postgres/booksrp"
	"github.com/momeni/libcat/pkg/adapter/db/postgres/loansrp"
	"github.com/momeni/libcat/pkg/adapter/restful/gin/authrs"
	"github.com/momeni/libcat/pkg/adapter/restful/gin/booksrs"
	"github.com/momeni/libcat/pkg/adapter/restful/gin/loansrs"
	"github.com/momeni/libcat/pkg/core/repo"
)

// Register instantiates relevant repositories and use cases based on
// the c configuration settings. The p connections pool is passed to
// the use case instances, so they may acquire/release connections
// and transactions on demand. These connections/transactions will be
// passed to the repositories later in order to run relevant queries on
// them and accomplish those use cases. Each use case package is named
// like loansuc and each repository package is named like loansrp.
// Register instantiates a series of "resource" structs, from packages
// which are named like loansrs, in order to adapt the use cases
// interfaces with the REST APIs. These resources are registered as
// request handlers using the e gin-gonic engine instance. All routes
// are placed under /api and those under /api/admin require a valid
// bearer token.
func Register(e *gin.Engine, p repo.Pool, c *config.Config) error {
	booksRepo := booksrp.New()
	loansRepo := loansrp.New()

	authUseCase, err := c.NewAuthUseCase()
	if err != nil {
		return fmt.Errorf("creating auth use case: %w", err)
	}
	booksUseCase, err := c.NewBooksUseCase(p, booksRepo, loansRepo)
	if err != nil {
		return fmt.Errorf("creating books use case: %w", err)
	}
	loansUseCase, err := c.NewLoansUseCase(p, booksRepo, loansRepo)
	if err != nil {
		return fmt.Errorf("creating loans use case: %w", err)
	}

	r := e.Group("/api")
	admin := r.Group("/admin", authrs.RequireAdmin(authUseCase))
	authrs.Register(r, authUseCase)
	booksrs.Register(r, admin, booksUseCase)
	loansrs.Register(admin, loansUseCase)
	return nil
}
