package outbox

import "example.com/habits/internal/events"

// SchemaCatalogEntry maps an event type to its registry subject and JSON schema.
type SchemaCatalogEntry struct {
	Subject string
	Schema  string
}

var schemaCatalog = map[string]SchemaCatalogEntry{
	events.TypeHabitCreated: {
		Subject: "habit_created-value",
		Schema:  habitCreatedSchema,
	},
	events.TypeHabitCompleted: {
		Subject: "habit_completed-value",
		Schema:  habitCompletedSchema,
	},
}

const habitCreatedSchema = `{
  "type": "object",
  "title": "HabitCreated",
  "properties": {
    "habit_id": {"type": "string"},
    "name": {"type": "string"},
    "description": {"type": "string"},
    "created_at": {"type": "string", "format": "date-time"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["habit_id", "name", "created_at", "occurred_at"],
  "additionalProperties": false
}`

const habitCompletedSchema = `{
  "type": "object",
  "title": "HabitCompleted",
  "properties": {
    "habit_id": {"type": "string"},
    "name": {"type": "string"},
    "streak": {"type": "integer", "minimum": 1},
    "previous_streak": {"type": "integer", "minimum": 0},
    "outcome": {"type": "string", "enum": ["started", "extended", "reset"]},
    "completed_on": {"type": "string", "format": "date"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["habit_id", "name", "streak", "previous_streak", "outcome", "completed_on", "occurred_at"],
  "additionalProperties": false
}`
