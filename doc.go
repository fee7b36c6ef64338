// Package dtos provides a base for JSON serializable Data Transfer Objects and a typed
// [Collection] to group them.
//
// A DTO is a struct that embeds [Base]. Its exported fields form the fixed field set of the
// DTO, named the same way [encoding/json] names them. [Serialize] turns a DTO into a JSON value,
// [Populate] fills a DTO from a decoded JSON value, and [DiagnosticString] renders it for humans.
//
// JSON text is decoded with [Decode], which keeps objects as ordered [*Object] values. Plain
// key-value maps (as produced by [json.Unmarshal] into an any) are rejected as deserialization
// sources with [ErrInvalidInput].
//
// Decoding onto Go types is done by a [Decoder] which walks the target type and pulls data out
// of a [Source]. [JSONSource] adapts decoded JSON values to a [Source].
package dtos
