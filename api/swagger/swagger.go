package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "WorkPulse Timesheet API",
        "description": "Timesheet lifecycle and workforce analytics service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Registration and login"},
        {"name": "Timesheets", "description": "Weekly timesheet workflow"},
        {"name": "Analytics", "description": "Dashboard, trend and overwork reporting"},
        {"name": "Exports", "description": "CSV and PDF exports"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
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
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timesheets": {
            "post": {
                "tags": ["Timesheets"],
                "summary": "Create or replace the caller's timesheet for a week",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveTimesheetRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timesheets/my": {
            "get": {
                "tags": ["Timesheets"],
                "summary": "List the caller's timesheets",
                "parameters": [
                    {"name": "start_date", "in": "query", "type": "string"},
                    {"name": "end_date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timesheets/week": {
            "get": {
                "tags": ["Timesheets"],
                "summary": "Get the caller's timesheet for a week",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No timesheet for the week", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timesheets/pending": {
            "get": {
                "tags": ["Timesheets"],
                "summary": "List submitted timesheets awaiting review (manager/admin)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timesheets/{id}": {
            "get": {
                "tags": ["Timesheets"],
                "summary": "Get a timesheet",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timesheets/{id}/submit": {
            "patch": {
                "tags": ["Timesheets"],
                "summary": "Submit a draft timesheet for review",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not in draft state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timesheets/{id}/review": {
            "patch": {
                "tags": ["Timesheets"],
                "summary": "Approve or reject a submitted timesheet (manager/admin)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not awaiting review", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/dashboard": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Dashboard statistics for a month",
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/trend": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Weekly hour totals over a trailing window",
                "parameters": [
                    {"name": "weeks", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/overworked": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Risk-tiered overwork report (manager/admin)",
                "parameters": [
                    {"name": "weeks", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/csv": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export timesheet entries as CSV",
                "parameters": [
                    {"name": "start_date", "in": "query", "type": "string"},
                    {"name": "end_date", "in": "query", "type": "string"},
                    {"name": "user_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV payload"}
                }
            }
        },
        "/exports/timesheets/{id}/pdf": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export a single timesheet as PDF",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF payload"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"},
                "role": {"type": "string", "enum": ["employee", "manager", "admin"]},
                "department": {"type": "string"},
                "manager_id": {"type": "string"}
            },
            "required": ["email", "password", "full_name", "role"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "SaveTimesheetRequest": {
            "type": "object",
            "properties": {
                "week_start_date": {"type": "string"},
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/TimeEntryPayload"}
                }
            },
            "required": ["week_start_date", "entries"]
        },
        "TimeEntryPayload": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "hours": {"type": "number"},
                "project_name": {"type": "string"},
                "task_description": {"type": "string"},
                "status": {"type": "string", "enum": ["completed", "in-progress", "blocked"]}
            },
            "required": ["date"]
        },
        "ReviewRequest": {
            "type": "object",
            "properties": {
                "decision": {"type": "string", "enum": ["approved", "rejected"]},
                "rejection_reason": {"type": "string"}
            },
            "required": ["decision"]
        },
        "Timesheet": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "owner_id": {"type": "string"},
                "week_start": {"type": "string"},
                "week_end": {"type": "string"},
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/TimeEntryPayload"}
                },
                "total_hours": {"type": "number"},
                "status": {"type": "string", "enum": ["draft", "submitted", "approved", "rejected"]},
                "submitted_at": {"type": "string"},
                "reviewed_at": {"type": "string"},
                "reviewer_id": {"type": "string"},
                "rejection_reason": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
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
