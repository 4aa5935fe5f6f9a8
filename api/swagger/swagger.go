package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Admin Dashboard API",
        "description": "Backend for the admin dashboard: aggregated finance view model and finance API helpers.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Dashboard", "description": "Admin dashboard view model"},
        {"name": "Finance", "description": "Payments, manual purchases and revenue"}
    ],
    "paths": {
        "/health": {
            "get": {"summary": "Liveness check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {
                "summary": "Readiness check of Redis and PostgreSQL when enabled",
                "responses": {"200": {"description": "Ready"}, "503": {"description": "A dependency is unreachable"}}
            }
        },
        "/metrics": {
            "get": {"summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "OK"}}}
        },
        "/{locale}/admin/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Admin dashboard data",
                "description": "Recent payments, recent students and total revenue. Sections whose upstream request failed are returned empty.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "locale", "in": "path", "required": true, "type": "string"},
                    {"name": "refresh", "in": "query", "type": "boolean", "description": "Skip the cached dashboard"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DashboardEnvelope"}},
                    "302": {"description": "Redirect to /{locale}/login"},
                    "409": {"description": "Superseded by a newer load of the same session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/{locale}/admin/dashboard/snapshot": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Last published admin dashboard",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "locale", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "302": {"description": "Redirect to /{locale}/login"},
                    "404": {"description": "Nothing loaded yet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/purchases/pending": {
            "get": {
                "tags": ["Finance"],
                "summary": "Pending manual purchases",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PaymentsEnvelope"}},
                    "502": {"description": "Finance service unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/purchases/{enrollmentId}/mark-paid": {
            "post": {
                "tags": ["Finance"],
                "summary": "Mark a manual purchase as paid",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "enrollmentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/MarkPaidRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid amount", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown enrollment", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Finance service unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/purchases/{enrollmentId}/audit": {
            "get": {
                "tags": ["Finance"],
                "summary": "Admin actions recorded for an enrollment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "enrollmentId", "in": "path", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer", "minimum": 1, "maximum": 100, "default": 20}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid limit", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/revenue/timeseries": {
            "get": {
                "tags": ["Finance"],
                "summary": "Daily revenue",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "days", "in": "query", "type": "integer", "minimum": 1, "maximum": 365, "default": 14}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid window", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/payments": {
            "get": {
                "tags": ["Finance"],
                "summary": "List payments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer", "maximum": 100},
                    {"name": "status", "in": "query", "type": "string", "enum": ["COMPLETED", "PENDING", "FAILED", "REFUNDED"]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/PaymentsEnvelope"}}}
            }
        },
        "/api/v1/admin/payments/export": {
            "get": {
                "tags": ["Finance"],
                "summary": "Download payments",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"name": "limit", "in": "query", "type": "integer", "maximum": 500},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "File", "schema": {"type": "file"}}}
            }
        }
    },
    "definitions": {
        "PaymentRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "amount": {"type": "number"},
                "currency": {"type": "string"},
                "status": {"type": "string", "enum": ["COMPLETED", "PENDING", "FAILED", "REFUNDED"]},
                "provider": {"type": "string", "enum": ["STRIPE", "PAYPAL", "MANUAL_WHATSAPP"]},
                "createdAt": {"type": "string", "format": "date-time"},
                "enrollmentId": {"type": "string"},
                "course": {
                    "type": "object",
                    "properties": {
                        "title": {"type": "string"},
                        "price": {"type": "number"},
                        "university": {"type": "object", "properties": {"name": {"type": "string"}}}
                    }
                },
                "user": {
                    "type": "object",
                    "properties": {
                        "id": {"type": "string"},
                        "firstName": {"type": "string"},
                        "lastName": {"type": "string"},
                        "email": {"type": "string"}
                    }
                }
            }
        },
        "Student": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "courseTitle": {"type": "string"},
                "enrolledAt": {"type": "string", "format": "date-time"}
            }
        },
        "RevenuePoint": {
            "type": "object",
            "properties": {"date": {"type": "string"}, "amount": {"type": "number"}}
        },
        "AdminDashboard": {
            "type": "object",
            "properties": {
                "payments": {"type": "array", "items": {"$ref": "#/definitions/PaymentRecord"}},
                "students": {"type": "array", "items": {"$ref": "#/definitions/Student"}},
                "totalRevenue": {"type": "number"},
                "revenueSeries": {"type": "array", "items": {"$ref": "#/definitions/RevenuePoint"}}
            }
        },
        "MarkPaidRequest": {
            "type": "object",
            "properties": {"amount": {"type": "number", "minimum": 0}}
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        },
        "DashboardEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/AdminDashboard"},
                "meta": {"type": "object"}
            }
        },
        "PaymentsEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/PaymentRecord"}},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
