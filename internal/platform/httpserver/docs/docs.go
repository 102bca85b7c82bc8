// Package docs registers the OpenAPI description served under /swagger/.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["platform"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/elections": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["elections"],
                "summary": "Create an election owned by the caller",
                "parameters": [
                    {"$ref": "#/parameters/userID"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateElectionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ElectionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/elections/{election_key}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["elections"],
                "summary": "Get an election with its current winners",
                "parameters": [{"$ref": "#/parameters/electionKey"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ElectionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/elections/{election_key}/winners": {
            "get": {
                "produces": ["application/json"],
                "tags": ["elections"],
                "summary": "List ranked winners",
                "parameters": [{"$ref": "#/parameters/electionKey"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/WinnersResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/elections/{election_key}/applications": {
            "post": {
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Apply as a candidate during the application stage",
                "parameters": [{"$ref": "#/parameters/userID"}, {"$ref": "#/parameters/electionKey"}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/CandidateIdentityResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/elections/{election_key}/candidates": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Register the caller's candidate record",
                "parameters": [
                    {"$ref": "#/parameters/userID"},
                    {"$ref": "#/parameters/electionKey"},
                    {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/RegisterCandidateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/CandidateResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/elections/{election_key}/candidates/{candidate_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Get a registered candidate",
                "parameters": [
                    {"$ref": "#/parameters/electionKey"},
                    {"name": "candidate_id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CandidateResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/elections/{election_key}/stage": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["elections"],
                "summary": "Advance the election stage",
                "parameters": [
                    {"$ref": "#/parameters/userID"},
                    {"$ref": "#/parameters/electionKey"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdvanceStageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ElectionResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/elections/{election_key}/votes": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["votes"],
                "summary": "Cast the caller's single vote",
                "parameters": [
                    {"$ref": "#/parameters/userID"},
                    {"$ref": "#/parameters/electionKey"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CastVoteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/VoteReceiptResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/elections/{election_key}/votes/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["votes"],
                "summary": "Get the caller's vote receipt",
                "parameters": [{"$ref": "#/parameters/userID"}, {"$ref": "#/parameters/electionKey"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/VoteReceiptResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/elections/{election_key}/results": {
            "get": {
                "produces": ["application/json"],
                "tags": ["elections"],
                "summary": "Get the archived final result of a closed election",
                "parameters": [{"$ref": "#/parameters/electionKey"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ElectionResultResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "parameters": {
        "userID": {"name": "X-User-Id", "in": "header", "required": true, "type": "string", "description": "hex encoded 32 byte identity"},
        "electionKey": {"name": "election_key", "in": "path", "required": true, "type": "string"}
    },
    "definitions": {
        "ErrorResponse": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "CreateElectionRequest": {
            "type": "object",
            "properties": {"winners_capacity": {"type": "integer", "minimum": 1, "maximum": 255}, "election_key": {"type": "string"}}
        },
        "AdvanceStageRequest": {
            "type": "object",
            "properties": {"stage": {"type": "string", "enum": ["voting", "closed"]}}
        },
        "RegisterCandidateRequest": {
            "type": "object",
            "properties": {"candidate_owner": {"type": "string"}}
        },
        "CastVoteRequest": {
            "type": "object",
            "properties": {"candidate_id": {"type": "integer"}}
        },
        "StandingItem": {
            "type": "object",
            "properties": {"rank": {"type": "integer"}, "candidate_id": {"type": "integer"}, "votes": {"type": "integer"}}
        },
        "ElectionResponse": {
            "type": "object",
            "properties": {
                "election_key": {"type": "string"},
                "stage": {"type": "string"},
                "initiator": {"type": "string"},
                "winners_capacity": {"type": "integer"},
                "candidate_count": {"type": "integer"},
                "winners": {"type": "array", "items": {"$ref": "#/definitions/StandingItem"}},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "WinnersResponse": {
            "type": "object",
            "properties": {
                "election_key": {"type": "string"},
                "stage": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/StandingItem"}}
            }
        },
        "CandidateIdentityResponse": {
            "type": "object",
            "properties": {
                "election_key": {"type": "string"},
                "candidate_id": {"type": "integer"},
                "owner": {"type": "string"},
                "applied_at": {"type": "string", "format": "date-time"}
            }
        },
        "CandidateResponse": {
            "type": "object",
            "properties": {
                "election_key": {"type": "string"},
                "candidate_id": {"type": "integer"},
                "owner": {"type": "string"},
                "votes": {"type": "integer"},
                "is_winner": {"type": "boolean"},
                "registered_at": {"type": "string", "format": "date-time"}
            }
        },
        "VoteReceiptResponse": {
            "type": "object",
            "properties": {
                "election_key": {"type": "string"},
                "voter": {"type": "string"},
                "candidate_id": {"type": "integer"},
                "candidate_votes": {"type": "integer"},
                "cast_at": {"type": "string", "format": "date-time"}
            }
        },
        "ElectionResultResponse": {
            "type": "object",
            "properties": {
                "election_key": {"type": "string"},
                "winners_capacity": {"type": "integer"},
                "candidate_count": {"type": "integer"},
                "standings": {"type": "array", "items": {"$ref": "#/definitions/StandingItem"}},
                "closed_at": {"type": "string", "format": "date-time"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Electoral API",
	Description:      "Staged elections with a bounded ranked winners board.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
