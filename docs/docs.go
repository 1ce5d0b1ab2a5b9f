// Package docs registers the OpenAPI description of the Hornet Helper API with swag.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/login": {
            "post": {
                "summary": "Sign in and receive a token",
                "tags": ["auth"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/me": {
            "get": {"summary": "Current user profile", "tags": ["auth"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/me/major": {
            "put": {"summary": "Set the user's major", "tags": ["auth"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Unknown major"}}}
        },
        "/catalog/majors": {
            "get": {"summary": "Departments and majors", "tags": ["catalog"], "responses": {"200": {"description": "OK"}}}
        },
        "/catalog/locations": {
            "get": {"summary": "Campus study locations", "tags": ["catalog"], "responses": {"200": {"description": "OK"}}}
        },
        "/sessions/{kind}": {
            "parameters": [{"$ref": "#/parameters/kind"}],
            "get": {"summary": "List sessions, newest first", "tags": ["sessions"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Session"}}}}},
            "post": {
                "summary": "Create a session owned by the caller",
                "tags": ["sessions"],
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Session"}}, "400": {"description": "Invalid session"}}
            }
        },
        "/sessions/{kind}/{id}": {
            "parameters": [{"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/id"}],
            "get": {"summary": "Get a session", "tags": ["sessions"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Session"}}, "404": {"description": "Not Found"}}},
            "delete": {"summary": "Disband a session (owner only)", "tags": ["sessions"], "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Not the owner"}, "404": {"description": "Not Found"}}}
        },
        "/sessions/{kind}/{id}/join": {
            "parameters": [{"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/id"}],
            "post": {"summary": "Join a session", "tags": ["sessions"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Session"}}, "409": {"description": "Full or already joined"}}}
        },
        "/sessions/{kind}/{id}/leave": {
            "parameters": [{"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/id"}],
            "post": {"summary": "Leave a session", "tags": ["sessions"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Session"}}, "403": {"description": "Not a participant"}, "409": {"description": "Owner cannot leave"}}}
        },
        "/sessions/{kind}/{id}/messages": {
            "parameters": [{"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/id"}],
            "get": {"summary": "Chat history, oldest first", "tags": ["chat"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Not a participant"}}},
            "post": {"summary": "Post a chat message", "tags": ["chat"], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "403": {"description": "Not a participant"}}}
        },
        "/sessions/{kind}/{id}/assistant": {
            "parameters": [{"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/id"}],
            "post": {"summary": "Ask the assistant inside the session chat", "tags": ["chat"], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/calendar": {
            "get": {"summary": "The caller's calendar", "tags": ["calendar"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/ai/ask": {
            "post": {"summary": "Ask the study assistant", "tags": ["ai"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/ai/videos": {
            "post": {"summary": "Video suggestions for a major", "tags": ["ai"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "500": {"description": "Recommender unavailable"}}}
        }
    },
    "parameters": {
        "kind": {"name": "kind", "in": "path", "required": true, "type": "string", "enum": ["duo", "group"]},
        "id": {"name": "id", "in": "path", "required": true, "type": "string"}
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["uid", "displayName", "secret"],
            "properties": {
                "uid": {"type": "string"},
                "displayName": {"type": "string"},
                "email": {"type": "string"},
                "photoURL": {"type": "string"},
                "secret": {"type": "string"}
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "user": {"type": "object"}}
        },
        "Participant": {
            "type": "object",
            "properties": {"uid": {"type": "string"}, "displayName": {"type": "string"}, "photoURL": {"type": "string"}}
        },
        "CreateSessionRequest": {
            "type": "object",
            "required": ["course"],
            "properties": {
                "course": {"type": "string"},
                "major": {"type": "string"},
                "location": {"type": "string"},
                "dateTime": {"type": "string", "example": "2025-04-01T14:30"},
                "capacity": {"type": "integer", "minimum": 0, "maximum": 10, "description": "required for group sessions (3 to 10), ignored for duo"}
            }
        },
        "Session": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string"},
                "course": {"type": "string"},
                "major": {"type": "string"},
                "location": {"type": "string"},
                "dateTime": {"type": "string"},
                "ownerUserId": {"type": "string"},
                "participants": {"type": "array", "items": {"$ref": "#/definitions/Participant"}},
                "capacity": {"type": "integer"},
                "full": {"type": "boolean"},
                "active": {"type": "boolean"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Hornet Helper API",
	Description:      "Study session matching, calendars and chat for campus students.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
