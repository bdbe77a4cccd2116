package swagger

import "github.com/swaggo/swag"

// The /health, /ready, /metrics and /docs routes sit outside basePath and are not listed.
const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TEMPO Schedule API",
        "description": "Weekly fitness-class schedule and instructor assignment service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Catalog",
            "description": "Class types, days and times"
        },
        {
            "name": "Schedule",
            "description": "Weekly class grid and assignment"
        },
        {
            "name": "Locks",
            "description": "Pinned instructor assignments"
        },
        {
            "name": "Instructors",
            "description": "Instructor roster"
        },
        {
            "name": "Authentication",
            "description": "Admin tokens"
        },
        {
            "name": "Observability",
            "description": "Metrics"
        }
    ],
    "paths": {
        "/catalog": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "List class types, days and times",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/state": {
            "get": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Get instructors, schedule and locks",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schedule": {
            "get": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Get the weekly schedule grid",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schedule/stats": {
            "get": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Schedule totals and instructor load",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schedule/audit": {
            "get": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Check the schedule against its invariants",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schedule/export": {
            "get": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Download the weekly schedule",
                "produces": [
                    "text/csv",
                    "application/pdf",
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ],
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf",
                            "xlsx"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Unsupported format",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schedule/classes": {
            "post": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Offer a class in a slot",
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Instructor already teaches at this time",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AddClassRequest"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Stop offering a class",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SlotRequest"
                        }
                    }
                ]
            }
        },
        "/schedule/assign": {
            "post": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Manually assign an instructor and lock the slot",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Double booked",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Ineligible or unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AssignInstructorRequest"
                        }
                    }
                ]
            }
        },
        "/schedule/locks": {
            "get": {
                "tags": [
                    "Locks"
                ],
                "summary": "Report whether a slot is locked",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "day",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "type",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "time",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Locks"
                ],
                "summary": "Lock the current assignment of a slot",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Slot has no assigned instructor",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SlotRequest"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Locks"
                ],
                "summary": "Remove the lock on a slot",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SlotRequest"
                        }
                    }
                ]
            }
        },
        "/schedule/generate": {
            "post": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Fill unresolved slots with the assignment engine",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/schedule/seed": {
            "post": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Offer the standard weekly class template",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/schedule/clear": {
            "post": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Clear every class and lock",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/schedule/undo": {
            "post": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Restore the state before the last change",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Nothing to undo",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/instructors": {
            "get": {
                "tags": [
                    "Instructors"
                ],
                "summary": "List instructors",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Instructors"
                ],
                "summary": "Add an instructor",
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Duplicate id",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateInstructorRequest"
                        }
                    }
                ]
            }
        },
        "/instructors/register": {
            "post": {
                "tags": [
                    "Instructors"
                ],
                "summary": "Register an instructor from the sign-up form",
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RegisterInstructorRequest"
                        }
                    }
                ]
            }
        },
        "/instructors/{id}": {
            "get": {
                "tags": [
                    "Instructors"
                ],
                "summary": "Get instructor detail",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ]
            },
            "patch": {
                "tags": [
                    "Instructors"
                ],
                "summary": "Update an instructor",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateInstructorRequest"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Instructors"
                ],
                "summary": "Delete an instructor and release their classes",
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/instructors/{id}/classes": {
            "get": {
                "tags": [
                    "Instructors"
                ],
                "summary": "List the classes an instructor teaches",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/instructors/{id}/availability": {
            "put": {
                "tags": [
                    "Instructors"
                ],
                "summary": "Mark a day and time as available or unavailable",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SetAvailabilityRequest"
                        }
                    }
                ]
            }
        },
        "/auth/admin": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Exchange the admin password for a bearer token",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Invalid password",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AdminLoginRequest"
                        }
                    }
                ]
            }
        },
        "/auth/session": {
            "get": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Describe the current admin session",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": [
                    "Observability"
                ],
                "summary": "Summarised process and scheduler metrics",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "SlotRequest": {
            "type": "object",
            "required": [
                "day",
                "type",
                "time"
            ],
            "properties": {
                "day": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                },
                "time": {
                    "type": "string"
                }
            }
        },
        "AddClassRequest": {
            "type": "object",
            "required": [
                "day",
                "type",
                "time"
            ],
            "properties": {
                "day": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                },
                "time": {
                    "type": "string"
                },
                "instructorId": {
                    "type": "string"
                }
            }
        },
        "AssignInstructorRequest": {
            "type": "object",
            "required": [
                "day",
                "type",
                "time",
                "instructorId"
            ],
            "properties": {
                "day": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                },
                "time": {
                    "type": "string"
                },
                "instructorId": {
                    "type": "string"
                }
            }
        },
        "Unavailability": {
            "type": "object",
            "properties": {
                "days": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "slots": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "timeRanges": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "days": {
                                "type": "array",
                                "items": {
                                    "type": "string"
                                }
                            },
                            "startTime": {
                                "type": "string"
                            },
                            "endTime": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "CreateInstructorRequest": {
            "type": "object",
            "required": [
                "name",
                "classTypes"
            ],
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "classTypes": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "blockSize": {
                    "type": "integer"
                },
                "minClasses": {
                    "type": "integer"
                },
                "maxClasses": {
                    "type": "integer"
                },
                "availability": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "classTypePreferences": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "unavailability": {
                    "$ref": "#/definitions/Unavailability"
                }
            }
        },
        "UpdateInstructorRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "classTypes": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "blockSize": {
                    "type": "integer"
                },
                "minClasses": {
                    "type": "integer"
                },
                "maxClasses": {
                    "type": "integer"
                },
                "availability": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "classTypePreferences": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "unavailability": {
                    "$ref": "#/definitions/Unavailability"
                }
            }
        },
        "RegisterInstructorRequest": {
            "type": "object",
            "required": [
                "name",
                "email",
                "classTypes",
                "preferredDays",
                "timeRanges"
            ],
            "properties": {
                "name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "classTypes": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "preferredDays": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "timeRanges": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "maxClasses": {
                    "type": "integer"
                }
            }
        },
        "SetAvailabilityRequest": {
            "type": "object",
            "required": [
                "day",
                "time",
                "available"
            ],
            "properties": {
                "day": {
                    "type": "string"
                },
                "time": {
                    "type": "string"
                },
                "available": {
                    "type": "boolean"
                }
            }
        },
        "AdminLoginRequest": {
            "type": "object",
            "required": [
                "password"
            ],
            "properties": {
                "password": {
                    "type": "string"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
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
