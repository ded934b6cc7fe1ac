// Package domain binds the obtuse application service to MCP tools and
// resources.
//
// Handlers are plain functions over the Obtuser interface so they can be
// exercised without a transport.
package domain
