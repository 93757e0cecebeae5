// Package docs holds the OpenAPI description served by the swagger route.
// Regenerate with: swag init -g cmd/familybank_backend/main.go -o cmd/docs
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
    "paths": {
        "/user": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Get the caller's profile", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UserResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}, "404": {"description": "Profile not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update a profile", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "user", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateUserRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UserResponse"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}}
        },
        "/user/register": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Register as a parent", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "user", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterParentRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.UserResponse"}}, "409": {"description": "Profile already exists", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}}
        },
        "/children": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["children"], "summary": "List children", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListChildrenResponse"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["children"], "summary": "Create a child account", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "child", "required": true, "schema": {"$ref": "#/definitions/dto.CreateChildRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.UserResponse"}}}}
        },
        "/children/{childId}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["children"], "summary": "Get a child summary", "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "childId", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ChildSummaryResponse"}}}}
        },
        "/adjust-balance": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["children"], "summary": "Adjust a child's balance", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "adjustment", "required": true, "schema": {"$ref": "#/definitions/dto.AdjustBalanceRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AdjustBalanceResponse"}}, "400": {"description": "Invalid amount or insufficient funds", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}, "409": {"description": "Balance changed concurrently", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}}}
        },
        "/transactions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "List transactions", "produces": ["application/json"],
                "parameters": [
                    {"in": "query", "name": "userId", "type": "string"},
                    {"in": "query", "name": "limit", "type": "integer", "default": 50},
                    {"in": "query", "name": "nextToken", "type": "string"},
                    {"in": "query", "name": "order", "type": "string", "enum": ["desc", "asc"], "default": "desc"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListTransactionsResponse"}}}}
        }
    },
    "definitions": {
        "dto.ErrorResponse": {"type": "object", "properties": {"error": {"type": "object", "properties": {
            "kind": {"type": "string"}, "message": {"type": "string"}, "details": {"type": "object", "additionalProperties": {"type": "string"}}}}}},
        "dto.UserResponse": {"type": "object", "properties": {
            "userId": {"type": "string"}, "role": {"type": "string"}, "name": {"type": "string"}, "email": {"type": "string"},
            "balance": {"type": "string"}, "interestRate": {"type": "string"}, "parentId": {"type": "string"},
            "createdAt": {"type": "string"}, "updatedAt": {"type": "string"}}},
        "dto.RegisterParentRequest": {"type": "object", "required": ["name", "email"], "properties": {
            "name": {"type": "string"}, "email": {"type": "string"}}},
        "dto.UpdateUserRequest": {"type": "object", "properties": {
            "userId": {"type": "string"}, "name": {"type": "string"}, "interestRate": {"type": "number"}}},
        "dto.CreateChildRequest": {"type": "object", "required": ["name", "email"], "properties": {
            "childId": {"type": "string"}, "name": {"type": "string"}, "email": {"type": "string"},
            "initialBalance": {"type": "number"}, "interestRate": {"type": "number"}}},
        "dto.ListChildrenResponse": {"type": "object", "properties": {
            "children": {"type": "array", "items": {"$ref": "#/definitions/dto.UserResponse"}}, "count": {"type": "integer"}}},
        "dto.TransactionResponse": {"type": "object", "properties": {
            "transactionId": {"type": "string"}, "userId": {"type": "string"}, "amount": {"type": "string"},
            "type": {"type": "string"}, "description": {"type": "string"}, "balanceAfter": {"type": "string"},
            "initiatedBy": {"type": "string"}, "timestamp": {"type": "string"}}},
        "dto.ChildSummaryResponse": {"type": "object", "properties": {
            "child": {"$ref": "#/definitions/dto.UserResponse"},
            "recentTransactions": {"type": "array", "items": {"$ref": "#/definitions/dto.TransactionResponse"}}}},
        "dto.AdjustBalanceRequest": {"type": "object", "required": ["childId", "amount"], "properties": {
            "childId": {"type": "string"}, "amount": {"type": "number"}, "type": {"type": "string", "enum": ["deposit", "withdrawal", "adjustment"]},
            "description": {"type": "string"}}},
        "dto.AdjustBalanceResponse": {"type": "object", "properties": {
            "message": {"type": "string"}, "transaction": {"$ref": "#/definitions/dto.TransactionResponse"}, "newBalance": {"type": "string"}}},
        "dto.ListTransactionsResponse": {"type": "object", "properties": {
            "userId": {"type": "string"}, "transactions": {"type": "array", "items": {"$ref": "#/definitions/dto.TransactionResponse"}},
            "count": {"type": "integer"}, "nextToken": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "Type \"Bearer\" followed by a space and the identity token.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Family Bank API",
	Description:      "Virtual allowance accounts for families: balances, transactions and interest.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
