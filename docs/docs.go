// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/main.go
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
        "/": {
            "get": {
                "produces": ["text/html"],
                "tags": ["pages"],
                "summary": "Control page",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/test": {
            "get": {
                "produces": ["text/html"],
                "tags": ["pages"],
                "summary": "Diagnostic page",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ws": {
            "get": {
                "description": "Upgrades to a websocket and pushes {\"type\":\"status\",\"data\":...} every interval.",
                "tags": ["status"],
                "summary": "Status stream",
                "parameters": [
                    {"type": "string", "description": "Push interval, e.g. 2s", "name": "interval", "in": "query"},
                    {"type": "integer", "description": "Push interval in milliseconds", "name": "interval_ms", "in": "query"}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"}
                }
            }
        },
        "/api/control": {
            "post": {
                "description": "action is forward, reverse or stop. Speed is clamped to 100..1023 and duration to 0..300 s; a missing field keeps the current value.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pumps"],
                "summary": "Control peristaltic pump",
                "parameters": [
                    {
                        "description": "Command",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.ControlRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/liquid_handler.CommandResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/liquid_handler.CommandResponse"}},
                    "405": {"description": "Method Not Allowed", "schema": {"$ref": "#/definitions/liquid_handler.CommandResponse"}}
                }
            }
        },
        "/api/vacuum": {
            "post": {
                "description": "action is start, stop or emergency. Speed is in slider units (0..1023) and converted to a percent of at least 10; the pump never runs above 80%.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pumps"],
                "summary": "Control vacuum pump",
                "parameters": [
                    {
                        "description": "Command",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.ControlRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/liquid_handler.CommandResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/liquid_handler.CommandResponse"}},
                    "405": {"description": "Method Not Allowed", "schema": {"$ref": "#/definitions/liquid_handler.CommandResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/liquid_handler.CommandResponse"}}
                }
            }
        },
        "/api/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pumps"],
                "summary": "Pump status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/liquid_handler.StatusResponse"}}
                }
            }
        },
        "/api/events": {
            "get": {
                "description": "Filter the journal by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'), pump and event type. A date-only 'to' is end-of-day inclusive.",
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List pump events",
                "parameters": [
                    {"type": "string", "example": "2025-08-01", "description": "Start of range", "name": "from", "in": "query"},
                    {"type": "string", "example": "2025-08-31", "description": "End of range. Date-only treated as end of day.", "name": "to", "in": "query"},
                    {"enum": ["peristaltic", "vacuum"], "type": "string", "description": "Pump", "name": "pump", "in": "query"},
                    {"enum": ["START", "STOP", "AUTO_STOP", "EMERGENCY_STOP", "HALT", "REJECTED"], "type": "string", "description": "Event type", "name": "type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, events", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ControlRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "example": "forward"},
                "speed": {"type": "integer", "example": 800},
                "duration": {"type": "integer", "example": 10}
            }
        },
        "liquid_handler.CommandResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "liquid_handler.PumpStatus": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "speed": {"type": "integer"},
                "speedPercent": {"type": "integer"},
                "remainingTime": {"type": "integer"},
                "isTimedRun": {"type": "boolean"},
                "duration": {"type": "integer"},
                "duty": {"type": "integer"}
            }
        },
        "liquid_handler.StatusResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "pump": {"$ref": "#/definitions/liquid_handler.PumpStatus"},
                "vacuum": {"$ref": "#/definitions/liquid_handler.PumpStatus"}
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
	Title:            "Liquid Handler API",
	Description:      "Control and status API for the dual-pump liquid handler.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
