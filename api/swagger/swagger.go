package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Scrutini API",
        "description": "End-of-term grading session management",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Staff authentication"},
        {"name": "Definitions", "description": "Grading-period definitions"},
        {"name": "Sessions", "description": "Grading session lifecycle"},
        {"name": "Proposals", "description": "Teacher grade proposals"},
        {"name": "Grades", "description": "Finalized session grades"},
        {"name": "Outcomes", "description": "Per-student session results"},
        {"name": "Archive", "description": "Transcript archive"},
        {"name": "Results", "description": "Published class results"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate staff account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/definitions": {
            "get": {
                "tags": ["Definitions"],
                "summary": "List period definitions",
                "parameters": [
                    {"name": "period", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Definitions"],
                "summary": "Create period definition",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DefinitionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/definitions/{id}": {
            "get": {
                "tags": ["Definitions"],
                "summary": "Get period definition",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Definitions"],
                "summary": "Update period definition",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DefinitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List grading sessions",
                "parameters": [
                    {"name": "period", "in": "query", "type": "string"},
                    {"name": "class_id", "in": "query", "type": "string"},
                    {"name": "state", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Create grading session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get grading session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/state": {
            "put": {
                "tags": ["Sessions"],
                "summary": "Transition session state",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Illegal transition"}
                }
            }
        },
        "/sessions/{id}/visibility": {
            "put": {
                "tags": ["Sessions"],
                "summary": "Set visibility gate",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VisibilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/sync": {
            "put": {
                "tags": ["Sessions"],
                "summary": "Update registry sync status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SyncRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/export": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Export session result sheet",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "412": {"description": "Session not closed"}
                }
            }
        },
        "/proposals": {
            "get": {
                "tags": ["Proposals"],
                "summary": "List grade proposals",
                "parameters": [
                    {"name": "period", "in": "query", "type": "string"},
                    {"name": "class_id", "in": "query", "type": "string"},
                    {"name": "student_id", "in": "query", "type": "string"},
                    {"name": "subject_id", "in": "query", "type": "string"},
                    {"name": "teacher_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Proposals"],
                "summary": "Submit grade proposal",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProposalRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/proposals/{id}": {
            "get": {
                "tags": ["Proposals"],
                "summary": "Get grade proposal",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Proposals"],
                "summary": "Update proposal marks",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarksRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "List session grades",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "student_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Grades"],
                "summary": "Record finalized grade",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GradeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Session not in progress"}
                }
            }
        },
        "/sessions/{id}/grades/promote": {
            "post": {
                "tags": ["Grades"],
                "summary": "Promote proposals into session grades",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Session not in progress"}
                }
            }
        },
        "/grades/{id}": {
            "put": {
                "tags": ["Grades"],
                "summary": "Update finalized grade marks",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarksRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/outcomes": {
            "get": {
                "tags": ["Outcomes"],
                "summary": "List session outcomes",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "student_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Outcomes"],
                "summary": "Record student outcome",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OutcomeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/outcomes/{id}": {
            "put": {
                "tags": ["Outcomes"],
                "summary": "Update student outcome",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OutcomeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/transcript": {
            "get": {
                "tags": ["Archive"],
                "summary": "Get student transcript",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Archive"],
                "summary": "Archive student result",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SnapshotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already archived"}
                }
            }
        },
        "/archive/outcomes/{id}": {
            "put": {
                "tags": ["Archive"],
                "summary": "Correct archived outcome",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OutcomeCorrection"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/archive/grades/{id}": {
            "put": {
                "tags": ["Archive"],
                "summary": "Correct archived grade",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GradeCorrection"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/results": {
            "get": {
                "tags": ["Results"],
                "summary": "Published class results",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "DefinitionRequest": {
            "type": "object",
            "properties": {
                "period": {"type": "string"},
                "session_date": {"type": "string"},
                "proposal_deadline": {"type": "string"},
                "topics": {"type": "object"},
                "steps": {"type": "array", "items": {"type": "object"}},
                "class_visibility": {"type": "object"},
                "extra": {"type": "object"}
            },
            "required": ["period", "session_date", "proposal_deadline", "steps", "class_visibility"]
        },
        "CreateSessionRequest": {
            "type": "object",
            "properties": {
                "period": {"type": "string"},
                "class_id": {"type": "string"},
                "extra": {"type": "object"}
            },
            "required": ["period", "class_id"]
        },
        "UpdateStateRequest": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "session_date": {"type": "string"},
                "started_at": {"type": "string"},
                "ended_at": {"type": "string"}
            },
            "required": ["state"]
        },
        "VisibilityRequest": {
            "type": "object",
            "properties": {
                "visible_from": {"type": "string"}
            }
        },
        "SyncRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "MarksRequest": {
            "type": "object",
            "properties": {
                "oral": {"type": "integer"},
                "written": {"type": "integer"},
                "practical": {"type": "integer"},
                "single": {"type": "integer"},
                "recovery_debt": {"type": "string"},
                "recovery": {"type": "string"},
                "absences": {"type": "integer"}
            }
        },
        "ProposalRequest": {
            "type": "object",
            "properties": {
                "period": {"type": "string"},
                "class_id": {"type": "string"},
                "student_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "oral": {"type": "integer"},
                "written": {"type": "integer"},
                "practical": {"type": "integer"},
                "single": {"type": "integer"},
                "recovery_debt": {"type": "string"},
                "recovery": {"type": "string"},
                "absences": {"type": "integer"},
                "extra": {"type": "object"}
            },
            "required": ["period", "class_id", "student_id", "subject_id", "teacher_id"]
        },
        "GradeRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "oral": {"type": "integer"},
                "written": {"type": "integer"},
                "practical": {"type": "integer"},
                "single": {"type": "integer"},
                "recovery_debt": {"type": "string"},
                "recovery": {"type": "string"},
                "absences": {"type": "integer"},
                "extra": {"type": "object"}
            },
            "required": ["student_id", "subject_id"]
        },
        "OutcomeRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "result": {"type": "string"},
                "average": {"type": "number"},
                "credit": {"type": "integer"},
                "prior_credit": {"type": "integer"},
                "extra": {"type": "object"}
            },
            "required": ["student_id", "result"]
        },
        "SnapshotRequest": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"}
            },
            "required": ["session_id"]
        },
        "OutcomeCorrection": {
            "type": "object",
            "properties": {
                "class_label": {"type": "string"},
                "result": {"type": "string"},
                "period": {"type": "string"},
                "average": {"type": "number"},
                "credit": {"type": "integer"},
                "prior_credit": {"type": "integer"},
                "extra": {"type": "object"}
            },
            "required": ["class_label", "result", "period"]
        },
        "GradeCorrection": {
            "type": "object",
            "properties": {
                "grade": {"type": "integer"},
                "gaps": {"type": "string"},
                "extra": {"type": "object"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
