// Package opus handles the encoded-audio side of the soundboard: framing,
// encoding, and decoding of Opus packets.
//
// Audio is stored in a minimal binary format: concatenated length-prefixed
// frames ([uint16 LE length][opus bytes]). No headers, no metadata.
//
// Encode transcodes any audio to Opus via FFmpeg and produces length-prefixed
// frames. ExtractPackets and PacketBuffer split demuxed byte chunks into
// self-delimited packets on TOC frame-count boundaries. ClipDecoder decodes
// packets to float PCM, converts to int16, and assembles one contiguous clip
// buffer per sound.
package opus
