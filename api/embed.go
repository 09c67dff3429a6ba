// Package api embeds the OpenAPI document for the admin API.
package api

import _ "embed"

//go:embed openapi.yml
var OpenAPI []byte
