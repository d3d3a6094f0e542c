package validation

import "testing"

type renameInput struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name" validate:"min=3"`
	Secret string `json:"-" validate:"required"`
	Email  string `json:"email" validate:"omitempty,email"`
}

func TestStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   renameInput
		wantErr string
	}{
		{
			name:  "valid",
			input: renameInput{ID: "1", Name: "tea", Secret: "s"},
		},
		{
			name:    "required field uses json name",
			input:   renameInput{Secret: "s"},
			wantErr: "id is required",
		},
		{
			name:    "min length",
			input:   renameInput{ID: "1", Name: "te", Secret: "s"},
			wantErr: "name must be at least 3 characters",
		},
		{
			name:    "multiple errors are joined",
			input:   renameInput{Name: "te", Secret: "s"},
			wantErr: "id is required; name must be at least 3 characters",
		},
		{
			name:    "other rules",
			input:   renameInput{ID: "1", Name: "tea", Secret: "s", Email: "nope"},
			wantErr: `email failed the "email" rule`,
		},
	}

	for _, tt := range tests {
		tt := tt // per-iteration copy for parallel subtests (go < 1.22)
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Struct(tt.input)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Struct() error = %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("Struct() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestStructRejectsNonStruct(t *testing.T) {
	t.Parallel()

	if err := Struct("not a struct"); err == nil {
		t.Error("Expected error for a non-struct value")
	}
}
