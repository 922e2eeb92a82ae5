// Package docs holds the OpenAPI description served at /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}}
            }
        },
        "/auth/sign-up": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register an operator",
                "parameters": [{"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/sign-in": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [{"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/sessions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Opens the board parameters window. The session's journal entries are attributed to the signed-in operator.",
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Start a wizard session",
                "responses": {"201": {"description": "Created"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/v1/sessions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Get open windows",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "End a wizard session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/sessions/{id}/board": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Validates the board form in field order. On success the process window opens seeded with the record.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Submit board parameters",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Board form", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.BoardRequest"}}
                ],
                "responses": {"200": {"description": "board, snapshot"}, "409": {"description": "Conflict"}, "422": {"description": "error, field, label"}}
            }
        },
        "/api/v1/sessions/{id}/process": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Validates t1..t10 and conveyorSpeed, calls the predictor and renders the result.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Submit process parameters",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Process form", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ProcessRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}, "422": {"description": "error, field, label"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/v1/sessions/{id}/back": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Opens a fresh board window and closes the process window.",
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Back to board parameters",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/sessions/{id}/windows/{stage}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Discards the window and any prediction it is waiting for. Closing the last window ends the session.",
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Close a window",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"enum": ["board", "process", "prediction"], "type": "string", "description": "Window", "name": "stage", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "status, open_windows"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Filter logs by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). If 'to' is date-only, it is treated as end-of-day inclusive.",
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List logs",
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "string", "name": "type", "in": "query"},
                    {"type": "string", "name": "session", "in": "query"},
                    {"type": "string", "description": "Operator ID, or 'me' for the signed-in operator", "name": "operator", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "count, events"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/backend/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Predictor backend status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.BackendStatus"}}}
            }
        },
        "/api/v1/spreadsheet/open": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Starts the configured helper on the spreadsheet file and returns without waiting for it.",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Open the PCB data spreadsheet",
                "responses": {"200": {"description": "status, path"}, "404": {"description": "Not Found"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/ws/sessions/{id}": {
            "get": {
                "description": "WebSocket. Sends the current snapshot, then one envelope per window event until the session ends.",
                "tags": ["sessions"],
                "summary": "Stream window events",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {"101": {"description": "Switching Protocols"}, "404": {"description": "Not Found"}}
            }
        }
    },
    "definitions": {
        "handlers.authCredentials": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "handlers.BoardRequest": {
            "type": "object",
            "properties": {
                "length": {"type": "string", "example": "100"},
                "width": {"type": "string", "example": "50"},
                "thickness": {"type": "string", "example": "1.6"},
                "layers": {"type": "string", "example": "4"},
                "cuOuter": {"type": "string", "example": "35"},
                "cuInner": {"type": "string", "example": "18"},
                "solderPasteType": {"type": "string", "example": "Koki S3X58-M406-3"}
            }
        },
        "handlers.ProcessRequest": {
            "type": "object",
            "properties": {
                "t1": {"type": "string", "example": "110"},
                "t2": {"type": "string", "example": "130"},
                "t3": {"type": "string", "example": "150"},
                "t4": {"type": "string", "example": "165"},
                "t5": {"type": "string", "example": "175"},
                "t6": {"type": "string", "example": "185"},
                "t7": {"type": "string", "example": "200"},
                "t8": {"type": "string", "example": "235"},
                "t9": {"type": "string", "example": "245"},
                "t10": {"type": "string", "example": "240"},
                "conveyorSpeed": {"type": "string", "example": "800"}
            }
        },
        "models.BackendStatus": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "address": {"type": "string"},
                "reachable": {"type": "boolean"},
                "last_error": {"type": "string"},
                "consecutive_failures": {"type": "integer"},
                "checked_at": {"type": "string"},
                "reachable_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Reflow Predictor API",
	Description:      "Board and process parameter wizard for reflow profile predictions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
