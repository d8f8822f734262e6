package todo

import (
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		todo Todo
		ok   bool
	}{
		{Todo{Title: "water the plants", Priority: Medium}, true},
		{Todo{Title: "water the plants", Priority: High, DueDate: "2023-06-30"}, true},
		{Todo{Title: "", Priority: Medium}, false},
		{Todo{Title: "   ", Priority: Medium}, false},
		{Todo{Title: "water the plants", Priority: "urgent"}, false},
		{Todo{Title: "water the plants", Priority: Low, DueDate: "30 June"}, false},
		{Todo{Title: "water the plants", Priority: Low, DueDate: "2023-06-31"}, false},
	}

	for _, test := range tests {
		err := test.todo.Validate()
		if test.ok && err != nil {
			t.Errorf("Unexpected error validating %+v (%v)", test.todo, err)
		}

		if !test.ok && err == nil {
			t.Errorf("Expected error validating %+v, got %v", test.todo, err)
		}
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		value    string
		expected Priority
		ok       bool
	}{
		{"high", High, true},
		{"HIGH", High, true},
		{" medium ", Medium, true},
		{"low", Low, true},
		{"", Medium, true},
		{"高", High, true},
		{"中", Medium, true},
		{"低", Low, true},
		{"urgent", Medium, false},
	}

	for _, test := range tests {
		priority, ok := ParsePriority(test.value)
		if ok != test.ok {
			t.Errorf("ParsePriority(%q) - expected ok:%v, got ok:%v", test.value, test.ok, ok)
		}

		if priority != test.expected {
			t.Errorf("ParsePriority(%q) - expected %v, got %v", test.value, test.expected, priority)
		}
	}
}

func TestCompleted(t *testing.T) {
	tests := []struct {
		status   string
		expected bool
	}{
		{"", false},
		{"completed", true},
		{"Completed", true},
		{"完了", true},
		{"in progress", false},
	}

	for _, test := range tests {
		todo := Todo{Title: "water the plants", Status: test.status}
		if completed := todo.Completed(); completed != test.expected {
			t.Errorf("Completed() for status %q - expected %v, got %v", test.status, test.expected, completed)
		}
	}
}
