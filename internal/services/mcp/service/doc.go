// Package service hosts the obtuse MCP server over stdio or streamable HTTP.
package service
