package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Portal API",
        "description": "Module catalogue, outline and slide uploads, and topic chat for the student course portal.",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Modules", "description": "Module catalogue"},
        {"name": "Uploads", "description": "Outline and slide processing"},
        {"name": "Outlines", "description": "Stored extraction results"},
        {"name": "Slides", "description": "Signed slide links"},
        {"name": "Chat", "description": "Topic assistant"},
        {"name": "Observability", "description": "Metrics"}
    ],
    "paths": {
        "/modules": {
            "get": {
                "tags": ["Modules"],
                "summary": "List modules",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "year", "in": "query", "type": "string"},
                    {"name": "term", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string", "description": "Matches id or name"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ModuleListResponse"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "post": {
                "tags": ["Modules"],
                "summary": "Add a module",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateModuleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ModuleCreatedResponse"}},
                    "400": {"description": "Missing fields", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "409": {"description": "Module already exists", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/modules/terms": {
            "get": {
                "tags": ["Modules"],
                "summary": "List year/term filter options",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TermOptionsResponse"}}
                }
            }
        },
        "/modules/export.csv": {
            "get": {
                "tags": ["Modules"],
                "summary": "Export modules as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV file", "schema": {"type": "file"}}
                }
            }
        },
        "/modules/{id}": {
            "delete": {
                "tags": ["Modules"],
                "summary": "Delete a module with its outline and slides",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/MessageBody"}},
                    "400": {"description": "Module ID is required", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Module not found", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Failed to delete module", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/modules/{id}/outline": {
            "get": {
                "tags": ["Outlines"],
                "summary": "Fetch a module's extracted outline",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/OutlineResponse"}},
                    "404": {"description": "No outline uploaded yet", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Failed to load outline", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/modules/{id}/outline.pdf": {
            "get": {
                "tags": ["Outlines"],
                "summary": "Download a printable outline",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF", "schema": {"type": "file"}},
                    "404": {"description": "No outline uploaded yet", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/modules/{id}/topics/{topic}/slides": {
            "get": {
                "tags": ["Slides"],
                "summary": "Get a signed link to a topic's slides",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "topic", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SlideReference"}},
                    "404": {"description": "No slides uploaded yet", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/slides/download": {
            "get": {
                "tags": ["Slides"],
                "summary": "Stream a slide deck behind a signed link",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF", "schema": {"type": "file"}},
                    "403": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Slides not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/upload": {
            "post": {
                "tags": ["Uploads"],
                "summary": "Upload a course outline for extraction",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "moduleId", "in": "formData", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Backend body, relayed", "schema": {"$ref": "#/definitions/ExtractionResult"}},
                    "400": {"description": "No file uploaded / Only PDF files are allowed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "422": {"description": "Not a course outline", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "502": {"description": "Cannot reach processing backend", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/uploadppt": {
            "post": {
                "tags": ["Uploads"],
                "summary": "Upload a topic's slide deck",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "moduleId", "in": "formData", "required": true, "type": "string"},
                    {"name": "topic", "in": "formData", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Backend body, relayed"},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "502": {"description": "Cannot reach processing backend", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/chat": {
            "post": {
                "tags": ["Chat"],
                "summary": "Ask the topic assistant",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ChatResponse"}},
                    "400": {"description": "Missing parameters", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "502": {"description": "Cannot reach processing backend", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "In-process metrics summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/MetricsSnapshot"}}
                }
            }
        }
    },
    "definitions": {
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "MessageBody": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "Module": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "CS101"},
                "name": {"type": "string"},
                "year": {"type": "string"},
                "term": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "CreateModuleRequest": {
            "type": "object",
            "required": ["moduleId", "name", "year", "term"],
            "properties": {
                "moduleId": {"type": "string"},
                "name": {"type": "string"},
                "year": {"type": "string"},
                "term": {"type": "string"}
            }
        },
        "ModuleListResponse": {
            "type": "object",
            "properties": {
                "modules": {"type": "array", "items": {"$ref": "#/definitions/Module"}}
            }
        },
        "ModuleCreatedResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Module added"},
                "module": {"$ref": "#/definitions/Module"}
            }
        },
        "TermOptionsResponse": {
            "type": "object",
            "properties": {
                "terms": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "year": {"type": "string"},
                            "term": {"type": "string"},
                            "label": {"type": "string"}
                        }
                    }
                }
            }
        },
        "ExtractionResult": {
            "type": "object",
            "properties": {
                "summary": {"type": "string"},
                "lecturers": {
                    "type": "array",
                    "items": {"type": "object", "properties": {"name": {"type": "string"}, "email": {"type": "string"}}}
                },
                "topics": {"type": "array", "items": {"type": "string"}},
                "assessments": {
                    "type": "array",
                    "items": {"type": "object", "properties": {"method": {"type": "string"}, "weighting": {"type": "number"}}}
                },
                "learningOutcomes": {"type": "array", "items": {"type": "string"}},
                "textbook": {
                    "type": "object",
                    "properties": {
                        "title": {"type": "string"},
                        "edition": {"type": "string"},
                        "authors": {"type": "array", "items": {"type": "string"}},
                        "publisher": {"type": "string"},
                        "year": {"type": "string"}
                    }
                }
            }
        },
        "OutlineResponse": {
            "type": "object",
            "properties": {
                "moduleId": {"type": "string"},
                "outline": {"$ref": "#/definitions/ExtractionResult"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "SlideReference": {
            "type": "object",
            "properties": {
                "moduleId": {"type": "string"},
                "topic": {"type": "string"},
                "url": {"type": "string"},
                "expiresAt": {"type": "string", "format": "date-time"}
            }
        },
        "ChatMessage": {
            "type": "object",
            "properties": {
                "role": {"type": "string", "enum": ["user", "assistant"]},
                "text": {"type": "string"}
            }
        },
        "ChatRequest": {
            "type": "object",
            "required": ["message", "topic", "moduleId", "chatHistory"],
            "properties": {
                "message": {"type": "string"},
                "topic": {"type": "string"},
                "moduleId": {"type": "string"},
                "chatHistory": {"type": "array", "items": {"$ref": "#/definitions/ChatMessage"}}
            }
        },
        "ChatResponse": {
            "type": "object",
            "properties": {
                "answer": {"type": "string"}
            }
        },
        "MetricsSnapshot": {
            "type": "object",
            "properties": {
                "requestsTotal": {"type": "integer"},
                "averageRequestDurationMs": {"type": "number"},
                "backendCalls": {"type": "integer"},
                "backendFailures": {"type": "integer"},
                "averageBackendDurationMs": {"type": "number"},
                "uploadsTotal": {"type": "integer"},
                "goroutines": {"type": "integer"},
                "generatedAt": {"type": "string", "format": "date-time"}
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
