package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Aselo Helpline Backend API",
    "description": "Counselor chat assistant and case-intake record extraction for a child helpline",
    "version": "1.0.0"
  },
  "basePath": "/",
  "paths": {
    "/healthz": {"get": {"tags": ["meta"], "summary": "Health check", "responses": {"200": {"description": "OK"}, "503": {"description": "Store unavailable"}}}},
    "/metrics": {"get": {"tags": ["meta"], "summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "OK"}}}},
    "/api/chat": {"post": {"tags": ["chat"], "summary": "Send a chat message", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/ChatRequest"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid request"}, "429": {"description": "Model rate limited"}, "502": {"description": "Model error"}, "504": {"description": "Model timeout"}}}},
    "/api/autofill": {"post": {"tags": ["chat"], "summary": "Extract a case record", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/SessionRequest"}}], "responses": {"200": {"description": "Case record; X-Extraction-Outcome is extracted or fallback"}, "404": {"description": "Conversation not found"}}}},
    "/api/summarize": {"post": {"tags": ["chat"], "summary": "Summarise a conversation", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/SessionRequest"}}], "responses": {"200": {"description": "OK"}, "404": {"description": "Conversation not found"}}}},
    "/api/metadata": {"post": {"tags": ["chat"], "summary": "Post-call metadata", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/SessionRequest"}}], "responses": {"200": {"description": "OK"}, "404": {"description": "Conversation not found"}}}},
    "/api/conversation/{session_id}": {
      "get": {"tags": ["chat"], "summary": "Conversation history", "parameters": [{"in": "path", "name": "session_id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Conversation not found"}}},
      "delete": {"tags": ["chat"], "summary": "Delete a conversation", "parameters": [{"in": "path", "name": "session_id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Conversation not found"}}}
    },
    "/api/conversations": {"get": {"tags": ["chat"], "summary": "List conversations", "responses": {"200": {"description": "OK"}}}},
    "/api/submitForm": {"post": {"tags": ["forms"], "summary": "Submit a case form", "responses": {"200": {"description": "OK"}, "400": {"description": "Validation failed"}}}},
    "/api/submission/{session_id}": {"get": {"tags": ["forms"], "summary": "Get a form submission", "parameters": [{"in": "path", "name": "session_id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Submission not found"}}}},
    "/api/submission/{session_id}/status": {"put": {"tags": ["forms"], "summary": "Update a submission status", "parameters": [{"in": "path", "name": "session_id", "type": "string", "required": true}, {"in": "query", "name": "status", "type": "string", "enum": ["submitted", "in_review", "closed"], "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid status"}, "404": {"description": "Submission not found"}}}},
    "/api/submissions": {"get": {"tags": ["forms"], "summary": "List form submissions", "responses": {"200": {"description": "OK"}}}}
  },
  "definitions": {
    "ChatRequest": {"type": "object", "required": ["sessionId", "message"], "properties": {"sessionId": {"type": "string"}, "message": {"type": "string"}}},
    "SessionRequest": {"type": "object", "required": ["sessionId"], "properties": {"sessionId": {"type": "string"}}}
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
