// Package pixel implements the packed monochrome framebuffer used by memory LCD panels.
//
// Pixels are stored one bit each, row-major, with the most significant bit of a byte
// being the leftmost pixel. A cleared bit is ink (black), a set bit is background (white).
// [MonoImage] is compatible with Go's native [image.Image] and [draw.Image] interfaces.
package pixel
