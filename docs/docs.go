// Package docs serves the portal's OpenAPI document through swag so that
// gin-swagger can render it at /swagger/index.html.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json.tmpl
var doc string

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "ACE-SPED Portal API",
	Description:      "Admissions and student lifecycle for the ACE-SPED centre.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  doc,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
