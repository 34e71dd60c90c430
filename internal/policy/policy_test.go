package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/courtside/internal/form"
)

func withMedia(s form.State, kind form.MediaKind) form.State {
	s = form.Reduce(s, form.BeginMediaLoad{})
	return form.Reduce(s, form.MediaLoaded{Kind: kind, Gen: s.MediaGen, Encoded: "data:x;base64,AA=="})
}

func withTranscript(s form.State, text string) form.State {
	return form.Reduce(s, form.SetTranscript{Text: text})
}

func TestEmptyInputsSatisfyNoPolicy(t *testing.T) {
	for _, transcript := range []string{"", "   ", "\n\t \r\n"} {
		s := withTranscript(form.New(), transcript)
		require.False(t, Strict.Satisfied(s), "strict %q", transcript)
		require.False(t, MediaOptional.Satisfied(s), "media_optional %q", transcript)
		require.False(t, ImageRequired.Satisfied(s), "image_required %q", transcript)
	}
}

func TestPolicyMatrix(t *testing.T) {
	tests := []struct {
		name          string
		media         form.MediaKind
		transcript    string
		strict        bool
		mediaOptional bool
		imageRequired bool
	}{
		{name: "image only", media: form.MediaImage},
		{name: "video only", media: form.MediaVideo, mediaOptional: true},
		{name: "transcript only", transcript: "Q1 10:00 jumper", mediaOptional: true},
		{name: "image and transcript", media: form.MediaImage, transcript: "Q1", strict: true, mediaOptional: true, imageRequired: true},
		{name: "video and transcript", media: form.MediaVideo, transcript: "Q1", strict: true, mediaOptional: true},
		{name: "image and blank transcript", media: form.MediaImage, transcript: "  \n"},
		{name: "video and blank transcript", media: form.MediaVideo, transcript: "\t", mediaOptional: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := form.New()
			if tc.media != form.MediaNone {
				s = withMedia(s, tc.media)
			}
			s = withTranscript(s, tc.transcript)

			require.Equal(t, tc.strict, Strict.Satisfied(s))
			require.Equal(t, tc.mediaOptional, MediaOptional.Satisfied(s))
			require.Equal(t, tc.imageRequired, ImageRequired.Satisfied(s))
		})
	}
}

func TestLookup(t *testing.T) {
	p, err := Lookup("media_optional")
	require.NoError(t, err)
	require.Equal(t, NameMediaOptional, p.Name())

	p, err = Lookup("  STRICT ")
	require.NoError(t, err)
	require.Equal(t, NameStrict, p.Name())
	require.NotEmpty(t, p.Requirement())

	_, err = Lookup("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must be set")

	_, err = Lookup("lenient")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown validation policy")
}

func TestNamesSorted(t *testing.T) {
	require.Equal(t, []string{NameImageRequired, NameMediaOptional, NameStrict}, Names())
}
