package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CatalogURI addresses the active unit catalog.
const CatalogURI = "units://catalog"

// CatalogPayload is the JSON body of the catalog resource.
type CatalogPayload struct {
	Units    []CatalogUnit   `json:"units"`
	Prefixes []CatalogPrefix `json:"prefixes"`
}

// CatalogUnit is one derived unit.
type CatalogUnit struct {
	Name string    `json:"name"`
	Dims DimsInput `json:"dims"`
}

// CatalogPrefix is one metric prefix.
type CatalogPrefix struct {
	Name      string `json:"name"`
	Magnitude int    `json:"magnitude"`
}

// CatalogResource defines the MCP resource for the active unit catalog.
func CatalogResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "unit_catalog",
		Title:       "Unit catalog",
		Description: "Derived units and metric prefixes obtusify draws from",
		MIMEType:    "application/json",
		URI:         CatalogURI,
	}
}

// CatalogResourceHandler serves the active catalog.
func CatalogResourceHandler(svc Obtuser) mcp.ResourceHandler {
	return func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if svc == nil {
			return nil, fmt.Errorf("catalog service is not configured")
		}
		uri := CatalogURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}

		cat := svc.Catalog()
		payload := CatalogPayload{
			Units:    make([]CatalogUnit, 0, len(cat.Units)),
			Prefixes: make([]CatalogPrefix, 0, len(cat.Prefixes)),
		}
		for _, unit := range cat.Units {
			payload.Units = append(payload.Units, CatalogUnit{Name: unit.Name, Dims: dimsOf(unit.Dims)})
		}
		for _, prefix := range cat.Prefixes {
			payload.Prefixes = append(payload.Prefixes, CatalogPrefix{Name: prefix.Name, Magnitude: prefix.Magnitude})
		}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal catalog: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
