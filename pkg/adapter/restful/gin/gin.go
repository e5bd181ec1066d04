// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin is an adapter which wraps the gin-gonic web framework,
// so other packages can instantiate an engine with the structured
// access logger and panic recovery middlewares without depending on
// their actual implementations.
package gin

import (
	"log/slog"

	"github.com/FabienMht/ginslog/logger"
	"github.com/FabienMht/ginslog/recovery"
	"github.com/gin-gonic/gin"
)

type HandlerFunc = gin.HandlerFunc
type Engine = gin.Engine

// New creates a gin engine with no default middleware and registers
// the given middlewares on it.
func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.Use(middlewares...)
	return e
}

// Logger returns a middleware which writes one access log record per
// request using the l structured logger.
func Logger(l *slog.Logger) HandlerFunc {
	return logger.New(l)
}

// Recovery returns a middleware which recovers from panics in the
// handlers, logs them using l, and responds with 500 status code.
func Recovery(l *slog.Logger) HandlerFunc {
	return recovery.New(l)
}
