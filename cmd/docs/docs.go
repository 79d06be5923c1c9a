// Package docs registers the OpenAPI description of the exchange API with swag.
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
        "/ledger/transactions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ledger"],
                "summary": "Post a ledger transaction",
                "parameters": [{"in": "body", "name": "transaction", "required": true, "schema": {"$ref": "#/definitions/dto.PostTransactionRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.PostTransactionResponse"}},
                    "400": {"description": "Invalid input or unbalanced entries"},
                    "403": {"description": "Service role required"},
                    "422": {"description": "Insufficient funds"},
                    "503": {"description": "Transient storage fault, retry"}
                }
            }
        },
        "/ledger/balances/{accountID}/{assetID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ledger"],
                "summary": "Get a balance",
                "parameters": [
                    {"type": "string", "name": "accountID", "in": "path", "required": true},
                    {"type": "string", "name": "assetID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BalanceResponse"}}}
            }
        },
        "/ledger/public": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ledger"],
                "summary": "Public ledger",
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "boolean", "name": "onlyMine", "in": "query"},
                    {"type": "string", "name": "eventType", "in": "query"},
                    {"type": "string", "name": "contextType", "in": "query"},
                    {"type": "string", "name": "assetCode", "in": "query"},
                    {"type": "string", "name": "cursor", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/curricula/{curriculumID}/orders": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["exchange"],
                "summary": "Place a limit order",
                "parameters": [
                    {"type": "string", "name": "curriculumID", "in": "path", "required": true},
                    {"in": "body", "name": "order", "required": true, "schema": {"$ref": "#/definitions/dto.PlaceOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Insufficient funds or shares"},
                    "429": {"description": "Too many requests"}
                }
            }
        },
        "/curricula/{curriculumID}/book": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["exchange"],
                "summary": "Order book",
                "parameters": [{"type": "string", "name": "curriculumID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/curricula/{curriculumID}/trades": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["exchange"],
                "summary": "Recent trades",
                "parameters": [
                    {"type": "string", "name": "curriculumID", "in": "path", "required": true},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/curricula/{curriculumID}/drain": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["exchange"],
                "summary": "Drain an order book",
                "parameters": [{"type": "string", "name": "curriculumID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Service role required"}}
            }
        },
        "/orders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["exchange"],
                "summary": "List the caller's orders",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/orders/{orderID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["exchange"],
                "summary": "Get an order",
                "parameters": [{"type": "string", "name": "orderID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Order not found"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["exchange"],
                "summary": "Cancel an order",
                "parameters": [{"type": "string", "name": "orderID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Order belongs to another user"},
                    "409": {"description": "Order is no longer active"}
                }
            }
        },
        "/tax/daily": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tax"],
                "summary": "Charge one user's daily access tax",
                "responses": {"200": {"description": "OK"}, "403": {"description": "Service role required"}}
            }
        },
        "/tax/daily/all": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tax"],
                "summary": "Charge the daily access tax of every user",
                "responses": {"200": {"description": "OK"}, "403": {"description": "Service role required"}}
            }
        },
        "/rewards/signup-bonus": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rewards"],
                "summary": "Grant the signup bonus",
                "responses": {"200": {"description": "OK"}, "403": {"description": "Service role required"}}
            }
        },
        "/rewards/lessons": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rewards"],
                "summary": "Reward a completed lesson",
                "responses": {"200": {"description": "OK"}, "403": {"description": "Service role required"}}
            }
        },
        "/rewards/payouts": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["rewards"],
                "summary": "Pay out every curriculum wallet",
                "responses": {"200": {"description": "OK"}, "403": {"description": "Service role required"}}
            }
        },
        "/curricula/{curriculumID}/shares": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rewards"],
                "summary": "Mint curriculum shares",
                "parameters": [{"type": "string", "name": "curriculumID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "403": {"description": "Service role required"}}
            }
        },
        "/curricula/{curriculumID}/payout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["rewards"],
                "summary": "Pay out a curriculum wallet",
                "parameters": [{"type": "string", "name": "curriculumID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Service role required"}}
            }
        },
        "/curricula/{curriculumID}/liquidation": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["portfolio"],
                "summary": "Liquidation value of a share count",
                "parameters": [
                    {"type": "string", "name": "curriculumID", "in": "path", "required": true},
                    {"type": "integer", "name": "shares", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/portfolio": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["portfolio"],
                "summary": "The caller's portfolio",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "dto.EntryRequest": {
            "type": "object",
            "required": ["accountID", "assetID", "delta", "entryType"],
            "properties": {
                "accountID": {"type": "string"},
                "assetID": {"type": "string"},
                "delta": {"type": "integer"},
                "entryType": {"type": "string"}
            }
        },
        "dto.PostTransactionRequest": {
            "type": "object",
            "required": ["entries", "eventType", "idempotencyKey"],
            "properties": {
                "eventType": {"type": "string"},
                "idempotencyKey": {"type": "string"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/dto.EntryRequest"}},
                "contextType": {"type": "string"},
                "contextID": {"type": "string"},
                "memo": {"type": "object"},
                "allowOverdraft": {"type": "boolean"}
            }
        },
        "dto.PostTransactionResponse": {
            "type": "object",
            "properties": {
                "transactionID": {"type": "string"},
                "idempotencyKey": {"type": "string"}
            }
        },
        "dto.BalanceResponse": {
            "type": "object",
            "properties": {
                "accountID": {"type": "string"},
                "assetID": {"type": "string"},
                "balance": {"type": "integer"}
            }
        },
        "dto.PlaceOrderRequest": {
            "type": "object",
            "required": ["side", "quantity", "limitPrice"],
            "properties": {
                "side": {"type": "string", "enum": ["bid", "ask"]},
                "quantity": {"type": "integer"},
                "limitPrice": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Access Exchange API",
	Description:      "Internal API of the Access Note ledger and curriculum share exchange.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
