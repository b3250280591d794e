package util_test

import (
	"testing"

	"github.com/reverb-bot/reverb/internal/util"
)

func TestGetOne(t *testing.T) {
	tc := []struct {
		name     string
		input    map[string]string
		expected string
		err      bool
	}{
		{
			name:     "single element",
			input:    map[string]string{"audio": "clip.ogg"},
			expected: "clip.ogg",
			err:      false,
		},
		{
			name:  "multiple elements",
			input: map[string]string{"audio": "clip.ogg", "extra": "other.ogg"},
			err:   true,
		},
		{
			name:  "no elements",
			input: map[string]string{},
			err:   true,
		},
	}

	for _, test := range tc {
		t.Run(test.name, func(t *testing.T) {
			result, err := util.GetOne(test.input)
			if test.err {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if result != test.expected {
				t.Errorf("expected %v, got %v", test.expected, result)
			}
		})
	}
}
