// Package docs registers the control API OpenAPI document with swag.
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
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        },
        "/v1/view": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current view",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}}
                }
            }
        },
        "/v1/events": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["session"],
                "summary": "Event stream",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/session/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Login",
                "parameters": [
                    {"description": "Employee code and phone", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/session/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}}
                }
            }
        },
        "/v1/attendance/check-in": {
            "post": {
                "produces": ["application/json"],
                "tags": ["attendance"],
                "summary": "Start check-in",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/attendance/check-out": {
            "post": {
                "produces": ["application/json"],
                "tags": ["attendance"],
                "summary": "Start check-out",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/scan/signals": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["capability"],
                "summary": "Push scan signal",
                "parameters": [
                    {"description": "Decoded text or decoder error", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.scanSignalRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/scan/cancel": {
            "post": {
                "produces": ["application/json"],
                "tags": ["attendance"],
                "summary": "Cancel scan",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/location": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["capability"],
                "summary": "Grant location",
                "parameters": [
                    {"description": "Optional device fix", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/handler.grantLocationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.viewResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/location/fix": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["capability"],
                "summary": "Supply location fix",
                "parameters": [
                    {"description": "Device fix", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.coordinateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.fixResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/location/error": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["capability"],
                "summary": "Report location failure",
                "parameters": [
                    {"description": "Failure reason", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.locationErrorRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/location/cancel": {
            "post": {
                "produces": ["application/json"],
                "tags": ["attendance"],
                "summary": "Cancel location",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.loginRequest": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "phone": {"type": "string"}}
        },
        "handler.scanSignalRequest": {
            "type": "object",
            "properties": {"text": {"type": "string"}, "error": {"type": "string"}, "benign": {"type": "boolean"}}
        },
        "handler.coordinateRequest": {
            "type": "object",
            "required": ["latitude", "longitude"],
            "properties": {
                "latitude": {"type": "number", "maximum": 90, "minimum": -90},
                "longitude": {"type": "number", "maximum": 180, "minimum": -180}
            }
        },
        "handler.grantLocationRequest": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number", "maximum": 90, "minimum": -90},
                "longitude": {"type": "number", "maximum": 180, "minimum": -180}
            }
        },
        "handler.locationErrorRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string", "enum": ["denied", "timeout", "unavailable"]},
                "message": {"type": "string"}
            }
        },
        "handler.fixResponse": {
            "type": "object",
            "properties": {"delivered": {"type": "boolean"}}
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "dependencies": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.dependencyStatus"}}
            }
        },
        "handler.dependencyStatus": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "error": {"type": "string"}}
        },
        "handler.viewResponse": {
            "type": "object",
            "properties": {
                "view": {"$ref": "#/definitions/ports.View"},
                "notices": {"type": "array", "items": {"$ref": "#/definitions/ports.Notice"}}
            }
        },
        "ports.Notice": {
            "type": "object",
            "properties": {
                "level": {"type": "string", "enum": ["info", "success", "error"]},
                "message": {"type": "string"},
                "at": {"type": "string", "format": "date-time"}
            }
        },
        "ports.View": {
            "type": "object",
            "properties": {
                "revision": {"type": "integer"},
                "state": {"type": "string", "enum": ["unauthenticated", "authenticating", "dashboard", "scanning", "awaiting_location", "submitting"]},
                "screen": {"type": "string"},
                "prompt": {"type": "string"},
                "employee": {"type": "string"},
                "status": {"$ref": "#/definitions/domain.AttendanceStatus"},
                "check_in_enabled": {"type": "boolean"},
                "check_out_enabled": {"type": "boolean"},
                "direction": {"type": "string", "enum": ["check-in", "check-out"]},
                "site_coordinate": {"type": "string"},
                "locating": {"type": "boolean"},
                "holding": {"type": "boolean"}
            }
        },
        "domain.AttendanceStatus": {
            "type": "object",
            "properties": {
                "checked_in": {"type": "boolean"},
                "check_in_time": {"type": "string", "format": "date-time"},
                "check_out_time": {"type": "string", "format": "date-time"}
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
	Title:            "Attendance Kiosk Control API",
	Description:      "Drives the kiosk attendance workflow: login, QR scan, geolocation and check-in/check-out submission.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
