package form

import "strings"

// MediaKind identifies which media field is populated.
type MediaKind int

const (
	MediaNone MediaKind = iota
	MediaImage
	MediaVideo
)

func (k MediaKind) String() string {
	switch k {
	case MediaImage:
		return "image"
	case MediaVideo:
		return "video"
	default:
		return "none"
	}
}

// Accept returns the MIME prefix a file must carry to populate this media kind.
func (k MediaKind) Accept() string {
	switch k {
	case MediaImage:
		return "image/"
	case MediaVideo:
		return "video/"
	default:
		return ""
	}
}

// Media is the single media slot. Holding image and video in one slot keeps them exclusive.
type Media struct {
	Kind    MediaKind
	Encoded string
}

// State is every input field of one analysis session.
//
// MediaGen and TranscriptGen are bumped whenever a new edit supersedes pending async loads;
// a load completion carrying an older generation is dropped by Reduce.
type State struct {
	Media      Media
	Transcript string
	Quarter    Quarter
	Category   Category

	MediaGen      uint64
	TranscriptGen uint64
}

// New returns the session-start defaults.
func New() State {
	return State{
		Quarter:  QuarterFullGame,
		Category: CategoryHighSchool,
	}
}

// Image returns the encoded court image, or "" when no image is set.
func (s State) Image() string {
	if s.Media.Kind != MediaImage {
		return ""
	}
	return s.Media.Encoded
}

// Video returns the encoded game video, or "" when no video is set.
func (s State) Video() string {
	if s.Media.Kind != MediaVideo {
		return ""
	}
	return s.Media.Encoded
}

func (s State) HasImage() bool { return s.Image() != "" }

func (s State) HasVideo() bool { return s.Video() != "" }

// HasTranscript reports whether the transcript has content once whitespace is trimmed.
func (s State) HasTranscript() bool {
	return strings.TrimSpace(s.Transcript) != ""
}
