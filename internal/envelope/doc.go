// Package envelope turns a decoded audio buffer into per-frame RMS and peak
// envelopes on a frame grid derived from the target frame rate.
//
// The grid has round(sampleRate/fps) samples per frame and
// ceil(len/samplesPerFrame) frames. Each frame window is centred on
// i*spf + spf/2 and clamped to the buffer. Envelopes are scaled by their
// 99th percentile, clamped to 1 and rounded to six decimals.
package envelope
