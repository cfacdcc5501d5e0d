// Package docs registra a especificação OpenAPI do stocktrack para o swaggo.
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
        "/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Lista todos os produtos (mais novos primeiro)",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Product"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Cria um produto",
                "parameters": [
                    {"description": "Nome, descrição, estoque e limite de estoque baixo", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.ProductInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "400": {"description": "Payload inválido", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/products/low-stock": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Lista produtos com estoque abaixo do limite",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Product"}}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Busca um produto",
                "parameters": [{"type": "string", "description": "ID do produto (24 caracteres hex)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "400": {"description": "ID inválido", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "404": {"description": "Produto não encontrado", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Atualiza parcialmente um produto",
                "parameters": [
                    {"type": "string", "description": "ID do produto", "name": "id", "in": "path", "required": true},
                    {"description": "Campos a alterar", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.ProductInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["products"],
                "summary": "Remove um produto",
                "parameters": [{"type": "string", "description": "ID do produto", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "Sem corpo"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/products/{id}/increase-stock": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["stock"],
                "summary": "Aumenta o estoque de um produto",
                "parameters": [
                    {"type": "string", "description": "ID do produto", "name": "id", "in": "path", "required": true},
                    {"description": "Quantidade (inteiro positivo)", "name": "adjustment", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.AdjustmentInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/products/{id}/decrease-stock": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["stock"],
                "summary": "Diminui o estoque de um produto",
                "parameters": [
                    {"type": "string", "description": "ID do produto", "name": "id", "in": "path", "required": true},
                    {"description": "Quantidade (inteiro positivo)", "name": "adjustment", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.AdjustmentInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Registra um novo usuário",
                "parameters": [{"description": "Credenciais de registro (email e senha)", "name": "registration", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.UserRegistration"}}],
                "responses": {
                    "201": {"description": "Usuário criado com sucesso", "schema": {"$ref": "#/definitions/domain.User"}},
                    "409": {"description": "Email já cadastrado", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Autentica um usuário e retorna um JWT",
                "parameters": [{"description": "Credenciais do usuário (email e senha)", "name": "login", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.UserCredentials"}}],
                "responses": {
                    "200": {"description": "Token JWT emitido", "schema": {"$ref": "#/definitions/user.LoginResponse"}},
                    "401": {"description": "Credenciais inválidas", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.AdjustmentInput": {
            "type": "object",
            "properties": {"quantity": {"type": "integer"}}
        },
        "domain.ErrorResponse": {
            "type": "object",
            "properties": {
                "category": {"type": "string", "example": "VALIDATION_ERROR"},
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "Invalid product id"},
                "message": {"type": "string", "example": "Invalid product id"}
            }
        },
        "domain.Product": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "description": {"type": "string", "example": "Blue widget"},
                "id": {"type": "string", "example": "652f1c2e9b1e8a3d4c5b6a79"},
                "low_stock_threshold": {"type": "integer", "example": 5},
                "name": {"type": "string", "example": "Widget"},
                "stock_quantity": {"type": "integer", "example": 10},
                "updated_at": {"type": "string"}
            }
        },
        "domain.ProductInput": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "low_stock_threshold": {"type": "integer"},
                "name": {"type": "string"},
                "stock_quantity": {"type": "integer"}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "email": {"type": "string"},
                "id": {"type": "string"},
                "role": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "domain.UserCredentials": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "domain.UserRegistration": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "maxLength": 72, "minLength": 8}
            }
        },
        "user.LoginResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}}
        }
    }
}`

// SwaggerInfo guarda as informações exportadas da especificação.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "stocktrack API",
	Description:      "Cadastro de produtos, ajustes de estoque e alerta de estoque baixo.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
