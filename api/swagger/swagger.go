package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Attendance Scoring API",
        "description": "Attendance scoring and analytics for course sessions",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Scoring", "description": "Scorecards, date aggregates, host rankings and policy"},
        {"name": "Exports", "description": "Asynchronous CSV/PDF exports"},
        {"name": "Metrics", "description": "Service instrumentation"}
    ],
    "parameters": {
        "courseId": {"name": "courseId", "in": "path", "required": true, "type": "string"},
        "dateFrom": {"name": "date_from", "in": "query", "type": "string", "format": "date"},
        "dateTo": {"name": "date_to", "in": "query", "type": "string", "format": "date"}
    },
    "paths": {
        "/scoring/courses/{courseId}/scorecards": {
            "get": {
                "tags": ["Scoring"],
                "summary": "Ranked student scorecards for a course",
                "parameters": [
                    {"$ref": "#/parameters/courseId"},
                    {"$ref": "#/parameters/dateFrom"},
                    {"$ref": "#/parameters/dateTo"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid date filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown course", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scoring/courses/{courseId}/scorecards/{studentId}": {
            "get": {
                "tags": ["Scoring"],
                "summary": "One student's scorecard",
                "parameters": [
                    {"$ref": "#/parameters/courseId"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"$ref": "#/parameters/dateFrom"},
                    {"$ref": "#/parameters/dateTo"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scoring/courses/{courseId}/dates": {
            "get": {
                "tags": ["Scoring"],
                "summary": "Per-date attendance aggregates",
                "parameters": [
                    {"$ref": "#/parameters/courseId"},
                    {"$ref": "#/parameters/dateFrom"},
                    {"$ref": "#/parameters/dateTo"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scoring/courses/{courseId}/hosts": {
            "get": {
                "tags": ["Scoring"],
                "summary": "Host location rankings",
                "parameters": [
                    {"$ref": "#/parameters/courseId"},
                    {"$ref": "#/parameters/dateFrom"},
                    {"$ref": "#/parameters/dateTo"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scoring/courses/{courseId}/preview": {
            "post": {
                "tags": ["Scoring"],
                "summary": "Evaluate a course under an unsaved policy",
                "parameters": [
                    {"$ref": "#/parameters/courseId"},
                    {"$ref": "#/parameters/dateFrom"},
                    {"$ref": "#/parameters/dateTo"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScoringPolicy"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid policy", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scoring/policy": {
            "get": {
                "tags": ["Scoring"],
                "summary": "Current scoring policy",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Policy API disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Scoring"],
                "summary": "Replace the scoring policy",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScoringPolicy"}}
                ],
                "responses": {
                    "200": {"description": "Saved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid policy", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a CSV or PDF export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "security": [],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/system": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Aggregated service metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ScoringPolicy": {
            "type": "object",
            "properties": {
                "weights": {
                    "type": "object",
                    "properties": {
                        "quality": {"type": "number"},
                        "attendance": {"type": "number"},
                        "punctuality": {"type": "number"}
                    }
                },
                "decay": {
                    "type": "object",
                    "properties": {
                        "constant": {"type": "number"},
                        "minimum_credit": {"type": "number"},
                        "unknown_late_estimate": {"type": "number"}
                    }
                },
                "coverage": {
                    "type": "object",
                    "properties": {
                        "enabled": {"type": "boolean"},
                        "method": {"type": "string", "enum": ["sqrt", "linear", "log", "none"]},
                        "minimum_factor": {"type": "number"}
                    }
                },
                "adjustments": {
                    "type": "object",
                    "properties": {
                        "perfect_attendance_bonus": {"type": "number"},
                        "streak_bonus_per_week": {"type": "number"},
                        "absence_penalty_multiplier": {"type": "number"}
                    }
                },
                "late_brackets": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "label": {"type": "string"},
                            "min": {"type": "number"},
                            "max": {"type": "number"}
                        }
                    }
                }
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["dataset", "format", "courseId"],
            "properties": {
                "dataset": {"type": "string", "enum": ["scorecards", "dates", "hosts"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "courseId": {"type": "string"},
                "dateFrom": {"type": "string", "format": "date"},
                "dateTo": {"type": "string", "format": "date"}
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
                "meta": {
                    "type": "object",
                    "properties": {
                        "cache_hit": {"type": "boolean"},
                        "processing_time_ms": {"type": "integer"}
                    }
                }
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
