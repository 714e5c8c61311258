package course_test

import (
	"testing"

	"elearn/models/course"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentValidate(t *testing.T) {
	cases := []struct {
		name    string
		content course.Content
		want    error
	}{
		{"text ok", course.Content{ResourceType: course.ResourceText, Text: "hello"}, nil},
		{"video ok", course.Content{ResourceType: course.ResourceVideo, VideoFile: "/v.mp4"}, nil},
		{"unknown type", course.Content{ResourceType: "AudioContent", Text: "x"}, course.ErrUnknownResourceType},
		{"missing payload", course.Content{ResourceType: course.ResourceImage}, course.ErrPayloadMissing},
		{"foreign payload", course.Content{ResourceType: course.ResourceText, Text: "x", File: "/f.pdf"}, course.ErrPayloadMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.content.Validate()
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestContentCreateRejectsInvalidPayload(t *testing.T) {
	f := newFixture(t)
	m := f.newModule(t, f.course.ID, "M")

	bad := course.Content{ModuleID: m.ID, OwnerID: f.instructor.ID, ResourceType: course.ResourceVideo, Title: "clip"}
	err := f.db.Create(&bad).Error
	assert.ErrorIs(t, err, course.ErrPayloadMissing)
}

func TestContentJSONCarriesOnlyItsVariant(t *testing.T) {
	file := course.Content{
		ResourceType: course.ResourceFile,
		Title:        "Slides",
		File:         "/uploads/slides.pdf",
		FileSize:     2048,
	}
	raw, err := sonic.Marshal(file)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, sonic.Unmarshal(raw, &out))
	assert.Equal(t, "FileContent", out["resourcetype"])
	assert.Equal(t, "/uploads/slides.pdf", out["file"])
	assert.EqualValues(t, 2048, out["file_size"])
	assert.NotContains(t, out, "text")
	assert.NotContains(t, out, "video_file")
	assert.NotContains(t, out, "image_file")

	video := course.Content{ResourceType: course.ResourceVideo, VideoFile: "/v.mp4", ThumbnailURL: "/t.jpg"}
	raw, err = sonic.Marshal(video)
	require.NoError(t, err)
	out = nil
	require.NoError(t, sonic.Unmarshal(raw, &out))
	assert.Equal(t, "/t.jpg", out["thumbnail_url"])
	assert.NotContains(t, out, "file")
}
