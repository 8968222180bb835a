package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidAcademicSession(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2025/2026", true},
		{"1999/2000", true},
		{"2025/2027", false},
		{"2026/2025", false},
		{"2025-2026", false},
		{"25/26", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidAcademicSession(tt.in), tt.in)
	}

	year, ok := SessionStartYear("2025/2026")
	assert.True(t, ok)
	assert.Equal(t, 2025, year)
}

func TestRegisterCustomValidations(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterCustomValidations(v))

	type req struct {
		Session  string `json:"session" validate:"academic_session"`
		Semester string `json:"semester" validate:"semester"`
		Grade    string `json:"grade" validate:"omitempty,grade"`
	}

	assert.NoError(t, v.Struct(req{Session: "2025/2026", Semester: "first", Grade: "b"}))

	err := v.Struct(req{Session: "2025/2030", Semester: "Third", Grade: "Z"})
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 3)
	assert.Equal(t, "session", verrs[0].Field())
	assert.Equal(t, "session must look like 2025/2026", FormatFieldError(verrs[0]))
}
