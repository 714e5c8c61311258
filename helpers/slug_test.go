package helpers_test

import (
	"strings"
	"testing"

	"elearn/database"
	"elearn/helpers"
	"elearn/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlug(t *testing.T) {
	cases := map[string]string{
		"Go Basics":              "go-basics",
		"  Intro to   Go!  ":     "intro-to-go",
		"C++ & Rust: a tour":     "c-rust-a-tour",
		"Ünïcode Lessons":        "ünïcode-lessons",
		"---":                    "",
		strings.Repeat("a", 100): strings.Repeat("a", helpers.DefaultSlugMaxLen),
	}
	for in, want := range cases {
		assert.Equal(t, want, helpers.GenerateSlug(in), "input %q", in)
	}
}

func TestGenerateUniqueSlug(t *testing.T) {
	db, err := database.OpenSQLite("helpers_unique_slug")
	require.NoError(t, err)

	slug, err := helpers.GenerateUniqueSlug(db, "subjects", "slug", "Math", "subject", 0)
	require.NoError(t, err)
	assert.Equal(t, "math", slug)

	first := course.Subject{Title: "Math"}
	require.NoError(t, db.Create(&first).Error)
	second := course.Subject{Title: "math"}
	require.NoError(t, db.Create(&second).Error)
	assert.Equal(t, "math-2", second.Slug)

	slug, err = helpers.GenerateUniqueSlug(db, "subjects", "slug", "Math", "subject", 0)
	require.NoError(t, err)
	assert.Equal(t, "math-3", slug)

	// renaming a row to its own title keeps its slug
	slug, err = helpers.GenerateUniqueSlug(db, "subjects", "slug", "Math", "subject", first.ID)
	require.NoError(t, err)
	assert.Equal(t, "math", slug)

	slug, err = helpers.GenerateUniqueSlug(db, "subjects", "slug", "!!!", "subject", 0)
	require.NoError(t, err)
	assert.Equal(t, "subject", slug)
}
