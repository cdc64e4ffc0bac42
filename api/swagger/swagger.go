package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tanuki API",
        "description": "Consultant NPS feedback tracking for HR",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Login and session introspection"},
        {"name": "Users", "description": "API user provisioning"},
        {"name": "Employees", "description": "Employee directory"},
        {"name": "Aggregations", "description": "Per-manager NPS rollups"},
        {"name": "Feedbacks", "description": "Consultant feedback management"},
        {"name": "Clients", "description": "Client contacts"},
        {"name": "Accounts", "description": "Customer accounts"},
        {"name": "Filters", "description": "Dashboard filter options"},
        {"name": "Exports", "description": "CSV and PDF exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current authenticated user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users": {
            "post": {
                "tags": ["Users"],
                "summary": "Provision an API user for an employee",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProvisionUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No matching employee"}
                }
            }
        },
        "/employees": {
            "get": {
                "tags": ["Employees"],
                "summary": "Search the employee directory",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "query", "in": "query", "type": "string", "description": "Name or email search, min 3 characters"},
                    {"name": "type", "in": "query", "type": "string", "enum": ["manager", "ACMA"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employees/managers/aggregation": {
            "get": {
                "tags": ["Aggregations"],
                "summary": "Per-manager feedback rollups",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "startup", "in": "query", "type": "array", "items": {"type": "string"}},
                    {"name": "manager", "in": "query", "type": "array", "items": {"type": "string"}},
                    {"name": "start", "in": "query", "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "type": "string", "format": "date"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "perPage", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/feedbacks": {
            "get": {
                "tags": ["Feedbacks"],
                "summary": "List feedbacks",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "manager", "in": "query", "type": "array", "items": {"type": "string"}},
                    {"name": "startup", "in": "query", "type": "array", "items": {"type": "string"}},
                    {"name": "start", "in": "query", "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "type": "string", "format": "date"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "perPage", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Feedbacks"],
                "summary": "Record a feedback",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FeedbackPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/feedbacks/{id}": {
            "get": {
                "tags": ["Feedbacks"],
                "summary": "Fetch a feedback with its chronological rank",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Feedbacks"],
                "summary": "Update a feedback",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FeedbackPayload"}}
                ],
                "responses": {
                    "204": {"description": "Updated"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Feedbacks"],
                "summary": "Archive and delete a feedback",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/clients": {
            "get": {
                "tags": ["Clients"],
                "summary": "List clients with their accounts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Clients"],
                "summary": "Create a client, optionally with a new account",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClientPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error or duplicate"}
                }
            }
        },
        "/accounts": {
            "get": {
                "tags": ["Accounts"],
                "summary": "Search customer accounts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "query", "in": "query", "type": "string"},
                    {"name": "acma", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/filters/periods": {
            "get": {
                "tags": ["Filters"],
                "summary": "Period filter options covering every recorded feedback",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "manager", "in": "query", "type": "string"},
                    {"name": "default", "in": "query", "type": "string"},
                    {"name": "until", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employees/export": {
            "post": {
                "tags": ["Exports"],
                "summary": "Export per-employee NPS averages as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "200": {"description": "File attachment"}
                }
            }
        },
        "/feedbacks/export": {
            "post": {
                "tags": ["Exports"],
                "summary": "Export raw feedbacks of the period as CSV",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "200": {"description": "File attachment"},
                    "403": {"description": "Admin only"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ProvisionUserRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8}
            }
        },
        "FeedbackPayload": {
            "type": "object",
            "required": ["employeeId", "date", "grade"],
            "properties": {
                "employeeId": {"type": "string"},
                "clientId": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "grade": {"type": "number", "minimum": 0.5, "maximum": 10},
                "context": {"type": "string"},
                "positives": {"type": "string"},
                "improvements": {"type": "string"},
                "comment": {"type": "string"},
                "details": {"type": "string"}
            }
        },
        "ClientPayload": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "details": {"type": "string"},
                "accountId": {"type": "string"},
                "accountData": {"$ref": "#/definitions/AccountPayload"}
            }
        },
        "AccountPayload": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "accountManagerId": {"type": "string"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["start", "end"],
            "properties": {
                "start": {"type": "string", "format": "date"},
                "end": {"type": "string", "format": "date"},
                "type": {"type": "string", "enum": ["managees", "managers", "consultants"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "perPage": {"type": "integer"},
                "totalCount": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"}
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
