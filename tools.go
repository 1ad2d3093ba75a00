//go:build tools

// Package tools fija dependencias de herramientas que el proyecto necesita
// pero que el código fuente no importa directamente (swag CLI para generar
// la doc OpenAPI). Así `go mod tidy` no las elimina.
package tools

import (
	_ "github.com/swaggo/swag"
)
