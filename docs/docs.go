// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register an account with the starting balance",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "400": {"description": "Validation error or USER_EXISTS", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange credentials for a token",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["auth"],
                "security": [{"BearerAuth": []}],
                "summary": "Current account",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Account"}}}
            }
        },
        "/users/profile": {
            "put": {
                "tags": ["users"],
                "security": [{"BearerAuth": []}],
                "summary": "Update name, email or phone; omitted fields are kept",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ProfileRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Account"}},
                    "400": {"description": "Validation error or USER_EXISTS", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/users/change-password": {
            "put": {
                "tags": ["users"],
                "security": [{"BearerAuth": []}],
                "summary": "Change password; newPassword and confirmPassword must match",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "MISSING_FIELDS, PASSWORD_MISMATCH or WEAK_PASSWORD", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "401": {"description": "Current password incorrect", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/transactions": {
            "post": {
                "tags": ["transactions"],
                "security": [{"BearerAuth": []}],
                "summary": "Transfer funds to another account",
                "parameters": [
                    {"in": "header", "name": "Idempotency-Key", "type": "string", "required": false},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/TransferRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/TransferResponse"}},
                    "200": {"description": "Replayed by idempotency key", "schema": {"$ref": "#/definitions/TransferResponse"}},
                    "400": {"description": "Invalid amount, self transfer or insufficient balance", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Payee not found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "409": {"description": "Idempotency key reused", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "503": {"description": "Storage unavailable, nothing applied", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/transactions/my": {
            "get": {
                "tags": ["transactions"],
                "security": [{"BearerAuth": []}],
                "summary": "Transactions where the caller is sender or receiver, newest first",
                "parameters": [
                    {"in": "query", "name": "limit", "type": "integer", "required": false, "description": "Page size, default 50, at most 200"},
                    {"in": "query", "name": "before", "type": "integer", "required": false, "description": "Return records older than this id"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "headers": {"X-Next-Before": {"type": "integer", "description": "Cursor for the next page, absent on the last page"}},
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/Transaction"}}
                    },
                    "400": {"description": "INVALID_QUERY", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/requests": {
            "post": {
                "tags": ["requests"],
                "security": [{"BearerAuth": []}],
                "summary": "Ask another account for money",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/MoneyRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Transaction"}},
                    "400": {"description": "Invalid amount or self request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Payer not found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/requests/my": {
            "get": {
                "tags": ["requests"],
                "security": [{"BearerAuth": []}],
                "summary": "Pending requests addressed to the caller",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Transaction"}}}}
            }
        },
        "/requests/{id}/accept": {
            "post": {
                "tags": ["requests"],
                "security": [{"BearerAuth": []}],
                "summary": "Pay a pending request",
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AcceptResponse"}},
                    "400": {"description": "Insufficient balance or already resolved", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "403": {"description": "Caller is not the requested payer", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Request not found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/requests/{id}/reject": {
            "post": {
                "tags": ["requests"],
                "security": [{"BearerAuth": []}],
                "summary": "Decline a pending request",
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Already resolved", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "403": {"description": "Caller is not the requested payer", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Request not found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/credit-score/my": {
            "get": {
                "tags": ["credit-score"],
                "security": [{"BearerAuth": []}],
                "summary": "Derived credit score for the caller",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "string"}}},
        "Account": {"type": "object", "properties": {
            "id": {"type": "integer"}, "name": {"type": "string"}, "email": {"type": "string"},
            "phone": {"type": "string"}, "balance": {"type": "integer"}, "createdAt": {"type": "string"}
        }},
        "Transaction": {"type": "object", "properties": {
            "id": {"type": "integer"}, "senderId": {"type": "integer"}, "receiverId": {"type": "integer"},
            "kind": {"type": "string", "enum": ["payment", "request"]}, "amount": {"type": "integer"},
            "status": {"type": "string", "enum": ["success", "pending", "accepted", "rejected"]},
            "method": {"type": "string"}, "description": {"type": "string"}, "requestId": {"type": "integer"},
            "createdAt": {"type": "string"}, "resolvedAt": {"type": "string"}
        }},
        "RegisterRequest": {"type": "object", "properties": {
            "name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"},
            "confirmPassword": {"type": "string"}, "phone": {"type": "string"}
        }},
        "ProfileRequest": {"type": "object", "properties": {
            "name": {"type": "string"}, "email": {"type": "string"}, "phone": {"type": "string"}
        }},
        "ChangePasswordRequest": {"type": "object", "properties": {
            "currentPassword": {"type": "string"}, "newPassword": {"type": "string"}, "confirmPassword": {"type": "string"}
        }},
        "LoginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "AuthResponse": {"type": "object", "properties": {"token": {"type": "string"}, "user": {"$ref": "#/definitions/Account"}}},
        "TransferRequest": {"type": "object", "properties": {
            "payeeIdentifier": {"type": "string"}, "amount": {"type": "integer"},
            "description": {"type": "string", "maxLength": 500},
            "method": {"type": "string", "enum": ["online", "offline", "qr"]}
        }},
        "TransferResponse": {"type": "object", "properties": {
            "message": {"type": "string"}, "transaction": {"$ref": "#/definitions/Transaction"},
            "newBalance": {"type": "integer"}, "replayed": {"type": "boolean"}
        }},
        "MoneyRequest": {"type": "object", "properties": {
            "payerIdentifier": {"type": "string"}, "amount": {"type": "integer"}, "note": {"type": "string"}
        }},
        "AcceptResponse": {"type": "object", "properties": {
            "message": {"type": "string"}, "request": {"$ref": "#/definitions/Transaction"},
            "transaction": {"$ref": "#/definitions/Transaction"}, "newBalance": {"type": "integer"}
        }}
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "eWallet API",
	Description:      "Wallet transfers and money requests.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
