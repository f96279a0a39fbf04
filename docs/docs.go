// Package docs registers the OpenAPI document served at /swagger/. The template is kept
// in step with the godoc annotations on the controllers by hand.
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
        "/auth/login": {
            "post": {
                "description": "Authenticate with email and password. Returns a bearer JWT for the admin endpoints.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "data contains token, token_type and user", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/auth/signup": {
            "post": {
                "description": "Create an admin account with email, password, and name. Password is stored hashed.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign up an admin",
                "parameters": [
                    {"description": "Sign-up data", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.SignUpRequest"}}
                ],
                "responses": {
                    "201": {"description": "data contains the created user", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events": {
            "get": {
                "description": "Newest first.",
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List events",
                "parameters": [
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 20, max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "data contains items and pagination", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{eventID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Get an event by ID",
                "parameters": [
                    {"type": "string", "description": "Event ID", "name": "eventID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "data contains the event", "schema": {"$ref": "#/definitions/controllers.CreateEventSuccessResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Deletes the event and releases its venue booking. Only the creating admin may delete it.",
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Delete an event",
                "parameters": [
                    {"type": "string", "description": "Event ID", "name": "eventID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "403": {"description": "error.code: forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/post/event": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates an event and books its venue in one step. The request is refused with 409 when the slot overlaps a confirmed booking; error.details then names the clashing event.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Create an event",
                "parameters": [
                    {"description": "Event data", "name": "event", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.CreateEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "data contains the created event", "schema": {"$ref": "#/definitions/controllers.CreateEventSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict; error.details holds {name,date,time,venue}", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/venues": {
            "get": {
                "produces": ["application/json"],
                "tags": ["venues"],
                "summary": "List venues",
                "parameters": [
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 20, max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "data contains items and pagination", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a bookable venue. New venues accept bookings.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["venues"],
                "summary": "Create a venue",
                "parameters": [
                    {"description": "Venue data", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.CreateVenueRequest"}}
                ],
                "responses": {
                    "201": {"description": "data contains the created venue", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict; the name is taken", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/venues/book": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Books a venue for an event slot. The availability check and the insert run in one transaction, so two overlapping requests cannot both succeed.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["venues"],
                "summary": "Book a venue",
                "parameters": [
                    {"description": "Booking", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.BookVenueRequest"}}
                ],
                "responses": {
                    "201": {"description": "data contains the stored booking", "schema": {"$ref": "#/definitions/controllers.BookVenueSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict; error.details holds {name,date,time,venue} for a clash", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/venues/cancel-booking": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Removes the booking an event holds at a venue, freeing the slot.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["venues"],
                "summary": "Cancel a venue booking",
                "parameters": [
                    {"description": "Venue and event", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.CancelBookingRequest"}}
                ],
                "responses": {
                    "200": {"description": "data is null", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/venues/check-availability": {
            "post": {
                "description": "Reports whether a venue is free for a date and time slot. Dates are DD/MM/YYYY, DD/MM/YY or YYYY-MM-DD; times are H:MM with optional AM/PM. A missing end_time means a two hour slot. Only confirmed bookings block.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["venues"],
                "summary": "Check venue availability",
                "parameters": [
                    {"description": "Candidate slot", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.CheckAvailabilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "data.available is false when the venue is disabled or booked", "schema": {"$ref": "#/definitions/controllers.AvailabilitySuccessResponse"}},
                    "400": {"description": "error.code: bad_request; error.details holds the availability", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/venues/{venueID}": {
            "get": {
                "description": "Looks the venue up by id, then by exact name.",
                "produces": ["application/json"],
                "tags": ["venues"],
                "summary": "Get a venue",
                "parameters": [
                    {"type": "string", "description": "Venue ID or name", "name": "venueID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "data contains the venue with its bookings", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Partial update. Setting generally_available to false blocks all new bookings.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["venues"],
                "summary": "Update a venue",
                "parameters": [
                    {"type": "string", "description": "Venue ID or name", "name": "venueID", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.UpdateVenueRequest"}}
                ],
                "responses": {
                    "200": {"description": "data contains the updated venue", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict; the name is taken", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Only venues without bookings can be deleted.",
                "produces": ["application/json"],
                "tags": ["venues"],
                "summary": "Delete a venue",
                "parameters": [
                    {"type": "string", "description": "Venue ID or name", "name": "venueID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/venues/{venueID}/bookings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["venues"],
                "summary": "List a venue's bookings",
                "parameters": [
                    {"type": "string", "description": "Venue ID or name", "name": "venueID", "in": "path", "required": true},
                    {"type": "string", "description": "confirmed, pending or cancelled", "name": "status", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "data contains the bookings", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/venues/{venueID}/calendar.ics": {
            "get": {
                "description": "iCalendar feed of the venue's confirmed bookings, with floating local times.",
                "produces": ["text/calendar"],
                "tags": ["venues"],
                "summary": "Venue calendar feed",
                "parameters": [
                    {"type": "string", "description": "Venue ID or name", "name": "venueID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "VCALENDAR", "schema": {"type": "string"}},
                    "204": {"description": "Venue has no confirmed bookings"},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "controllers.AvailabilitySuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/domain.Availability"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.BookVenueRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "end_time": {"type": "string"},
                "event_id": {"type": "string"},
                "event_name": {"type": "string"},
                "start_time": {"type": "string"},
                "venue_id": {"type": "string"}
            }
        },
        "controllers.BookVenueSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/domain.Booking"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.CancelBookingRequest": {
            "type": "object",
            "properties": {
                "event_id": {"type": "string"},
                "venue_id": {"type": "string"}
            }
        },
        "controllers.CheckAvailabilityRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "end_time": {"type": "string"},
                "start_time": {"type": "string"},
                "venue_id": {"type": "string"}
            }
        },
        "controllers.CreateEventRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "description": {"type": "string"},
                "end_time": {"type": "string"},
                "name": {"type": "string"},
                "organizer": {"type": "string"},
                "price": {"type": "number"},
                "time": {"type": "string"},
                "venue": {"type": "string"},
                "venue_id": {"type": "string"}
            }
        },
        "controllers.CreateEventSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/domain.Event"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.CreateVenueRequest": {
            "type": "object",
            "properties": {
                "capacity": {"type": "integer"},
                "description": {"type": "string"},
                "facilities": {"type": "array", "items": {"type": "string"}},
                "image": {"type": "string"},
                "location": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "controllers.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "controllers.SignUpRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "controllers.UpdateVenueRequest": {
            "type": "object",
            "properties": {
                "capacity": {"type": "integer"},
                "description": {"type": "string"},
                "facilities": {"type": "array", "items": {"type": "string"}},
                "generally_available": {"type": "boolean"},
                "image": {"type": "string"},
                "location": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "domain.Availability": {
            "type": "object",
            "properties": {
                "available": {"type": "boolean"},
                "conflictingBooking": {"$ref": "#/definitions/domain.Booking"},
                "conflicts": {"type": "array", "items": {"$ref": "#/definitions/domain.Booking"}},
                "reason": {"type": "string"},
                "skipped": {"type": "integer"},
                "venue_id": {"type": "string"}
            }
        },
        "domain.Booking": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "date": {"type": "string"},
                "end_time": {"type": "string"},
                "event_id": {"type": "string"},
                "event_name": {"type": "string"},
                "id": {"type": "string"},
                "start_time": {"type": "string"},
                "status": {"type": "string"},
                "venue_id": {"type": "string"}
            }
        },
        "domain.Event": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "created_by": {"type": "string"},
                "date": {"type": "string"},
                "description": {"type": "string"},
                "end_time": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "organizer": {"type": "string"},
                "price": {"type": "number"},
                "time": {"type": "string"},
                "updated_at": {"type": "string"},
                "venue_id": {"type": "string"},
                "venue_name": {"type": "string"}
            }
        },
        "helpers.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {},
                "message": {"type": "string"}
            }
        },
        "helpers.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Campus Events API",
	Description:      "Venue booking and event management with double-booking detection.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
