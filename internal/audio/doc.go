// Package audio synthesises the sounds that accompany a session: a short
// chime on every state change and an ambient pad whose filter opens while the
// points are in flight.
//
// Streams are plain beep streamers. A Player sends them to the speaker, and
// WriteWAV renders them to a file for headless use.
package audio
