package form

// Action is one edit applied to State by Reduce.
type Action interface {
	apply(State) State
}

// Reduce applies action to s and returns the next state. It never mutates s.
func Reduce(s State, action Action) State {
	if action == nil {
		return s
	}
	return action.apply(s)
}

// SetQuarter replaces the quarter filter. Unknown values leave the state unchanged.
type SetQuarter struct{ Quarter Quarter }

func (a SetQuarter) apply(s State) State {
	if !a.Quarter.Valid() {
		return s
	}
	s.Quarter = a.Quarter
	return s
}

// SetCategory replaces the court category. Unknown values leave the state unchanged.
type SetCategory struct{ Category Category }

func (a SetCategory) apply(s State) State {
	if !a.Category.Valid() {
		return s
	}
	s.Category = a.Category
	return s
}

// SetTranscript replaces the transcript with typed text and supersedes pending file loads.
type SetTranscript struct{ Text string }

func (a SetTranscript) apply(s State) State {
	s.Transcript = a.Text
	s.TranscriptGen++
	return s
}

// BeginTranscriptLoad reserves a new transcript generation for an async file load.
type BeginTranscriptLoad struct{}

func (BeginTranscriptLoad) apply(s State) State {
	s.TranscriptGen++
	return s
}

// TranscriptLoaded overwrites the transcript when Gen is still current.
type TranscriptLoaded struct {
	Gen  uint64
	Text string
}

func (a TranscriptLoaded) apply(s State) State {
	if a.Gen != s.TranscriptGen {
		return s
	}
	s.Transcript = a.Text
	return s
}

// BeginMediaLoad reserves a new media generation. Image and video share one counter,
// so the most recently started selection is the only one allowed to settle.
type BeginMediaLoad struct{}

func (BeginMediaLoad) apply(s State) State {
	s.MediaGen++
	return s
}

// MediaLoaded fills the media slot and clears the sibling field when Gen is still current.
type MediaLoaded struct {
	Kind    MediaKind
	Gen     uint64
	Encoded string
}

func (a MediaLoaded) apply(s State) State {
	if a.Gen != s.MediaGen {
		return s
	}
	if a.Kind != MediaImage && a.Kind != MediaVideo {
		return s
	}
	s.Media = Media{Kind: a.Kind, Encoded: a.Encoded}
	return s
}

// ClearMedia empties the media slot and supersedes pending media loads.
type ClearMedia struct{}

func (ClearMedia) apply(s State) State {
	s.Media = Media{}
	s.MediaGen++
	return s
}

// CurrentMedia reports whether a media completion for gen would still be applied.
func (s State) CurrentMedia(gen uint64) bool { return gen == s.MediaGen }

// CurrentTranscript reports whether a transcript completion for gen would still be applied.
func (s State) CurrentTranscript(gen uint64) bool { return gen == s.TranscriptGen }
