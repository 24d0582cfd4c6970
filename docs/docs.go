// Package docs holds the OpenAPI description served by the Swagger UI.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/check-plagiarism-folder": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["check"],
                "summary": "Check a document against a folder",
                "parameters": [
                    {"type": "file", "description": "main document", "name": "doc1", "in": "formData", "required": true},
                    {"type": "file", "description": "folder files (repeat the field)", "name": "folder", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.CheckResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/reports": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "List reports",
                "parameters": [
                    {"type": "integer", "default": 10, "description": "page size", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.ReportListResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Get a report",
                "parameters": [{"type": "string", "description": "report id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Report"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "delete": {
                "tags": ["reports"],
                "summary": "Delete a report",
                "parameters": [{"type": "string", "description": "report id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/reports/{id}/document": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["reports"],
                "summary": "Download the checked document",
                "parameters": [{"type": "string", "description": "report id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorEnvelope": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handler.errorEnvelope"},
                "request_id": {"type": "string"}
            }
        },
        "model.CheckResponse": {
            "type": "object",
            "properties": {
                "files": {"type": "array", "items": {"$ref": "#/definitions/model.FileResult"}},
                "report_id": {"type": "string"}
            }
        },
        "model.FileResult": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "file_name": {"type": "string"},
                "matches": {"type": "array", "items": {"type": "string"}},
                "plagiarism_percentage": {"type": "number"},
                "suggestions": {"type": "array", "items": {"type": "string"}}
            }
        },
        "model.Report": {
            "type": "object",
            "properties": {
                "average_percentage": {"type": "number"},
                "created_at": {"type": "string"},
                "file_count": {"type": "integer"},
                "files": {"type": "array", "items": {"$ref": "#/definitions/model.FileResult"}},
                "id": {"type": "string"},
                "main_document": {"type": "string"},
                "storage_prefix": {"type": "string"}
            }
        },
        "service.ReportListResult": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/model.Report"}},
                "total": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Plagiarism Check API",
	Description:      "Compares a document against a folder of documents sentence by sentence.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
