package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQLOperation(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected string
	}{
		{
			name:     "select statement",
			sql:      "SELECT id, streak FROM users WHERE id = $1",
			expected: "SELECT",
		},
		{
			name:     "lowercase keyword is uppercased",
			sql:      "insert into daily_picks (user_id, pick_date) VALUES ($1, $2)",
			expected: "INSERT",
		},
		{
			name:     "leading whitespace is ignored",
			sql:      "\n\tUPDATE roster_slots SET curator_id = $1",
			expected: "UPDATE",
		},
		{
			name:     "empty statement",
			sql:      "",
			expected: "OTHER",
		},
		{
			name:     "whitespace only",
			sql:      "   ",
			expected: "OTHER",
		},
		{
			name:     "leading comment",
			sql:      "-- cleanup\nDELETE FROM pending_swaps",
			expected: "OTHER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sqlOperation(tt.sql))
		})
	}
}
