package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "MediaVault API",
        "description": "Content-addressed personal media repository daemon",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Files", "description": "File catalog"},
        {"name": "Content", "description": "Raw content and per-file tags"},
        {"name": "Thumbnails", "description": "File previews"},
        {"name": "Tags", "description": "Tag catalog"},
        {"name": "Buffers", "description": "Transient payload buffers"},
        {"name": "Repository", "description": "Connection management"}
    ],
    "paths": {
        "/files": {
            "get": {
                "tags": ["Files"],
                "summary": "List all files",
                "parameters": [
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string", "enum": ["asc", "desc"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Files"],
                "summary": "Add a file from inline content",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddFileRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload"},
                    "503": {"description": "No repository connection"}
                }
            }
        },
        "/files/path": {
            "post": {
                "tags": ["Files"],
                "summary": "Import a file from a path on the daemon host",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddFileFromPathRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/find": {
            "post": {
                "tags": ["Files"],
                "summary": "Find files by tag predicates",
                "description": "Conjunctive matching: a file must carry every non-negated tag and none of the negated ones.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FindFilesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/{id}": {
            "get": {
                "tags": ["Files"],
                "summary": "Get file by id",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown file"}
                }
            }
        },
        "/files/{id}/name": {
            "patch": {
                "tags": ["Files"],
                "summary": "Rename a file",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateFileNameRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/{id}/status": {
            "patch": {
                "tags": ["Files"],
                "summary": "Move a file through its lifecycle",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateFileStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/content/{hash}": {
            "get": {
                "tags": ["Content"],
                "summary": "Read raw file content by hash",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "hash", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Raw bytes"},
                    "404": {"description": "Unknown hash"},
                    "500": {"description": "Content missing from byte store"}
                }
            }
        },
        "/content/{hash}/tags": {
            "get": {
                "tags": ["Content"],
                "summary": "List tags of the file with the given hash",
                "parameters": [
                    {"name": "hash", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Content"],
                "summary": "Add and remove tags on the file with the given hash",
                "parameters": [
                    {"name": "hash", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangeFileTagsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/content/{hash}/thumbnails": {
            "get": {
                "tags": ["Thumbnails"],
                "summary": "List stored thumbnails of a file",
                "parameters": [
                    {"name": "hash", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/content/{hash}/thumbnail": {
            "get": {
                "tags": ["Thumbnails"],
                "summary": "Get a thumbnail, rendering one when no stored size fits",
                "description": "Any stored thumbnail within 0.8x to 1.2x of the requested dimensions is reused.",
                "produces": ["image/png"],
                "parameters": [
                    {"name": "hash", "in": "path", "required": true, "type": "string"},
                    {"name": "height", "in": "query", "type": "integer", "default": 250},
                    {"name": "width", "in": "query", "type": "integer", "default": 250}
                ],
                "responses": {
                    "200": {"description": "PNG bytes"},
                    "503": {"description": "Thumbnail storage not configured"}
                }
            }
        },
        "/content/{hash}/thumbnail/{tier}": {
            "post": {
                "tags": ["Thumbnails"],
                "summary": "Render a thumbnail at a named size tier",
                "parameters": [
                    {"name": "hash", "in": "path", "required": true, "type": "string"},
                    {"name": "tier", "in": "path", "required": true, "type": "string", "enum": ["small", "medium", "large"]}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tags": {
            "get": {
                "tags": ["Tags"],
                "summary": "List every tag in the catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Tags"],
                "summary": "Create tags from raw namespace:name strings",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTagsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tags/files": {
            "post": {
                "tags": ["Tags"],
                "summary": "List the distinct tags across a set of file hashes",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TagsForFilesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/buffers/{key}": {
            "get": {
                "tags": ["Buffers"],
                "summary": "Read a buffered payload by key",
                "description": "One-shot buffers are consumed by the first read; a second read returns 404.",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Raw bytes"},
                    "404": {"description": "Buffer expired or unknown"}
                }
            }
        },
        "/repo/connect": {
            "post": {
                "tags": ["Repository"],
                "summary": "Connect to a repository, replacing any active connection",
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/ConnectRequest"}}
                ],
                "responses": {
                    "200": {"description": "Connected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Connection failed"}
                }
            }
        },
        "/repo/disconnect": {
            "post": {
                "tags": ["Repository"],
                "summary": "Close the active repository connection",
                "responses": {
                    "204": {"description": "Disconnected"},
                    "503": {"description": "Nothing connected"}
                }
            }
        },
        "/repo/status": {
            "get": {
                "tags": ["Repository"],
                "summary": "Report the current connection state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "AddFileRequest": {
            "type": "object",
            "required": ["content"],
            "properties": {
                "name": {"type": "string"},
                "mime_type": {"type": "string"},
                "content": {"type": "string", "format": "byte"},
                "creation_time": {"type": "string", "format": "date-time"},
                "change_time": {"type": "string", "format": "date-time"}
            }
        },
        "AddFileFromPathRequest": {
            "type": "object",
            "required": ["path"],
            "properties": {
                "path": {"type": "string"}
            }
        },
        "FindFilesRequest": {
            "type": "object",
            "required": ["tags"],
            "properties": {
                "tags": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "tag": {"type": "string"},
                            "negate": {"type": "boolean"}
                        }
                    }
                },
                "sort_by": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "field": {"type": "string"},
                            "ascending": {"type": "boolean"}
                        }
                    }
                }
            }
        },
        "UpdateFileNameRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"}
            }
        },
        "UpdateFileStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["IMPORTED", "ARCHIVED", "DELETED"]}
            }
        },
        "CreateTagsRequest": {
            "type": "object",
            "required": ["tags"],
            "properties": {
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "TagsForFilesRequest": {
            "type": "object",
            "required": ["hashes"],
            "properties": {
                "hashes": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ChangeFileTagsRequest": {
            "type": "object",
            "properties": {
                "add": {"type": "array", "items": {"type": "string"}},
                "remove": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ConnectRequest": {
            "type": "object",
            "properties": {
                "dsn": {"type": "string"}
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
                "error": {"$ref": "#/definitions/APIError"}
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
