package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexUnterminatedChar         Code = 1005
	LexBadRawString             Code = 1006

	// Синтаксические
	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynUnclosedDelimiter Code = 2002
	SynUnbalancedClose   Code = 2003
	SynExpectSemicolon   Code = 2004
	SynExpectIdentifier  Code = 2005
	SynExpectItem        Code = 2006
	SynBadAttribute      Code = 2007

	// Разрешение модулей
	ResInfo                Code = 3000
	ResFileNotFound        Code = 3001
	ResAmbiguousCandidates Code = 3002
	ResCyclicDeclaration   Code = 3003
	ResDuplicateModule     Code = 3004
	ResUnresolvedReference Code = 3005
	ResLibraryInlined      Code = 3006

	// IO
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002

	// Проект
	ProjInfo             Code = 5000
	ProjMissingManifest  Code = 5001
	ProjNoTarget         Code = 5002
	ProjMultipleBinaries Code = 5003
	ProjUnknownBinary    Code = 5004
	ProjBadConfig        Code = 5005

	// Сжатие
	MinInfo              Code = 6000
	MinIntegrityMismatch Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Invalid numeric literal",
	LexUnterminatedChar:         "Unterminated character literal",
	LexBadRawString:             "Malformed raw string literal",
	SynInfo:                     "Syntax information",
	SynUnexpectedToken:          "Unexpected token",
	SynUnclosedDelimiter:        "Unclosed delimiter",
	SynUnbalancedClose:          "Unbalanced closing delimiter",
	SynExpectSemicolon:          "Expected ';'",
	SynExpectIdentifier:         "Expected identifier",
	SynExpectItem:               "Expected item",
	SynBadAttribute:             "Malformed attribute",
	ResInfo:                     "Resolution information",
	ResFileNotFound:             "Module file not found",
	ResAmbiguousCandidates:      "Ambiguous module file",
	ResCyclicDeclaration:        "Cyclic module declaration",
	ResDuplicateModule:          "Duplicate module",
	ResUnresolvedReference:      "Unresolved library reference",
	ResLibraryInlined:           "Library crate inlined",
	IOLoadFileError:             "Failed to load file",
	IOWriteFileError:            "Failed to write file",
	ProjInfo:                    "Project information",
	ProjMissingManifest:         "Cargo.toml not found",
	ProjNoTarget:                "No bundleable target",
	ProjMultipleBinaries:        "Several binary targets",
	ProjUnknownBinary:           "Unknown binary target",
	ProjBadConfig:               "Invalid configuration",
	MinInfo:                     "Compression information",
	MinIntegrityMismatch:        "Compressed output changed the item structure",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("MIN%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
