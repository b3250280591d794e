package opus

// NewClipDecoderWith builds a ClipDecoder around a substitute decoder so
// tests outside the package can drive DecodeClip without libopus.
func NewClipDecoderWith(dec floatDecoder) *ClipDecoder {
	return &ClipDecoder{dec: dec}
}
