package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "K3Y Open Slots API",
        "description": "Open operating slots on the SKCC K3Y schedule",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Open Slots", "description": "Unbooked hours for an area inside a local window"},
        {"name": "Settings", "description": "Saved defaults for zone, area and window"},
        {"name": "Reference", "description": "Supported zones and areas"}
    ],
    "paths": {
        "/open-slots": {
            "get": {
                "tags": ["Open Slots"],
                "summary": "Open K3Y operating slots",
                "parameters": [
                    {"name": "area", "in": "query", "type": "string", "description": "K3Y/0 through K3Y/9"},
                    {"name": "timeZone", "in": "query", "type": "string", "enum": ["EST", "CST", "MST", "PST", "AKST", "HAST", "SST", "CHST"]},
                    {"name": "start", "in": "query", "type": "string", "description": "HH:MM or hh:mm AM/PM"},
                    {"name": "end", "in": "query", "type": "string", "description": "HH:MM or hh:mm AM/PM"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/OpenSlotsEnvelope"}},
                    "400": {"description": "Invalid zone, area or time", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/open-slots/export": {
            "get": {
                "tags": ["Open Slots"],
                "summary": "Download open slots as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"name": "dates", "in": "query", "type": "string", "description": "Comma separated dates to include"},
                    {"name": "area", "in": "query", "type": "string"},
                    {"name": "timeZone", "in": "query", "type": "string"},
                    {"name": "start", "in": "query", "type": "string"},
                    {"name": "end", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Attachment", "schema": {"type": "file"}}
                }
            }
        },
        "/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Current settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Replace settings",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Settings"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/time-zones": {
            "get": {
                "tags": ["Reference"],
                "summary": "Supported time zones",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/areas": {
            "get": {
                "tags": ["Reference"],
                "summary": "K3Y areas",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "summary": "Aggregated request, cache and fetch counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Settings": {
            "type": "object",
            "properties": {
                "TIME_ZONE_ABBR": {"type": "string", "example": "EST"},
                "K3Y_AREA": {"type": "string", "example": "K3Y/4"},
                "LOCAL_DAY_START": {"type": "string", "example": "07:00 AM"},
                "LOCAL_DAY_END": {"type": "string", "example": "10:00 PM"}
            }
        },
        "OpenSlots": {
            "type": "object",
            "properties": {
                "area": {"type": "string"},
                "timeZone": {"type": "string"},
                "localStart": {"type": "string"},
                "localEnd": {"type": "string"},
                "updatedAt": {"type": "string"},
                "message": {"type": "string"},
                "source": {"type": "string"},
                "columns": {"type": "array", "items": {"type": "string"}},
                "slots": {"type": "array", "items": {"type": "object", "additionalProperties": {"type": "string"}}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "OpenSlotsEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/OpenSlots"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
