package wake

import "testing"

func TestDetect(t *testing.T) {
	d := New()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"exact", "may", true},
		{"in sentence", "hey may what time is it", true},
		{"mixed case", "Hey May!", true},
		{"embedded substring", "maybe later", true},
		{"absent", "hello there", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Detect(tt.text); got != tt.want {
				t.Errorf("Detect(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestQuery(t *testing.T) {
	d := New()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"inline question", "may what time is it", "what time is it"},
		{"mixed case", "May what day is it", "what day is it"},
		{"bare wake word", "may", ""},
		{"no wake word", "tell me a joke", ""},
		{"preserves case", "may call Alice", "call Alice"},
		{"leading filler kept", "hey may tell me a joke", "hey  tell me a joke"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Query(tt.text); got != tt.want {
				t.Errorf("Query(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsTermination(t *testing.T) {
	d := New()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"goodbye", "goodbye may", true},
		{"bye", "bye", true},
		{"see you later", "okay see you later", true},
		{"talk to you later", "talk to you later", true},
		{"stop listening", "please stop listening", true},
		{"go to sleep", "go to sleep now", true},
		{"mixed case", "Goodbye!", true},
		{"ordinary question", "what is the weather", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.IsTermination(tt.text); got != tt.want {
				t.Errorf("IsTermination(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCustomWords(t *testing.T) {
	d := New(WithWords("eva"), WithTerminations("shut down"))

	if d.Detect("hey may") {
		t.Error("default wake word should be replaced")
	}
	if !d.Detect("hey eva") {
		t.Error("custom wake word not detected")
	}
	if got := d.Query("eva what day is it"); got != "what day is it" {
		t.Errorf("Query = %q, want %q", got, "what day is it")
	}
	if d.IsTermination("goodbye") {
		t.Error("default termination should be replaced")
	}
	if !d.IsTermination("shut down now") {
		t.Error("custom termination not detected")
	}
}
