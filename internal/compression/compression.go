// Package compression decodes bitshuffle-LZ4-compressed image-cube files.
// The high-throughput capture path for this telescope writes image cube
// files with the ".bslz4" marker (spec.md §4.3) when the detector's own
// pipeline already produced bitshuffle-LZ4 buffers rather than plain
// FITS; the resolver only probes for the marker, and the image store
// hands such a file's whole contents here before handing the decoded
// bytes to the FITS reader.
package compression

// CompressedExt marks an image-cube file whose bytes must be run through
// Decompress before they are valid FITS data.
const CompressedExt = ".bslz4"
