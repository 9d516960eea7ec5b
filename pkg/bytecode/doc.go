// Package bytecode holds minivm programs and their on-disk encodings.
//
// A Program is a named, decoded instruction sequence ready for the engine in
// package vm. Programs move between tools in three encodings:
//
//   - Wire: canonical CBOR with an "MVBC" magic and a format version. This is
//     the compact form stored in the program store and written to .mvb files.
//
//   - YAML: a hand-editable document, one mapping per instruction
//     (.yaml, .yml).
//
//   - Listing: the text form printed by Disassemble and read back by
//     Assemble (.mvl, .txt).
//
// A listing has one instruction per line, with an optional leading offset:
//
//	; === greet ===
//	0000  LOAD_CONST     "World"
//	0001  STORE_FAST     name
//	0002  RETURN_VALUE
//
// Opcodes travel by mnemonic in every encoding. A mnemonic the engine does
// not support still decodes; it fails with UnsupportedOpcode when executed.
package bytecode
