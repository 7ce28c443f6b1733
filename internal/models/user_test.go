package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadableName(t *testing.T) {
	cases := []struct {
		username string
		want     string
	}{
		{"john_doe", "John Doe"},
		{"jane", "Jane"},
		{"dr_jane_smith", "Dr Jane Smith"},
		{"already Capitalized", "Already Capitalized"},
		{"__double__underscores__", "Double Underscores"},
		{"", ""},
	}

	for _, tc := range cases {
		u := User{Username: tc.username}
		assert.Equal(t, tc.want, u.ReadableName(), "username %q", tc.username)
	}
}
