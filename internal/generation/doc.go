// Package generation defines the boundary to the external text-generation
// service. The engine sends fully-formed prompts and receives raw text; it
// never assumes the collaborator guarantees valid structure, so parsing and
// malformed-output recovery happen on this side of the boundary.
package generation
