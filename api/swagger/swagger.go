package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EduPulse Analytics API",
        "description": "Student success prediction and academic integrity analytics",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Analytics", "description": "Success prediction and integrity pipelines"},
        {"name": "Exports", "description": "Report downloads"},
        {"name": "System", "description": "Observability"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["System"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/analytics/predictions": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Run the success-prediction pipeline",
                "parameters": [
                    {"name": "days", "in": "query", "type": "integer", "description": "Analysis window in days"},
                    {"name": "quizId", "in": "query", "type": "string", "description": "Restrict to one quiz"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid window parameters", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown quiz", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analytics/integrity": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Run the integrity-analysis pipeline",
                "parameters": [
                    {"name": "days", "in": "query", "type": "integer", "description": "Analysis window in days"},
                    {"name": "quizId", "in": "query", "type": "string", "description": "Restrict to one quiz"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid window parameters", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown quiz", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analytics/system": {
            "get": {
                "tags": ["System"],
                "summary": "Aggregated pipeline metrics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analytics/exports/predictions": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the prediction report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "days", "in": "query", "type": "integer"},
                    {"name": "quizId", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "400": {"description": "Invalid parameters", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analytics/exports/integrity": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the integrity report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "days", "in": "query", "type": "integer"},
                    {"name": "quizId", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "400": {"description": "Invalid parameters", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
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
