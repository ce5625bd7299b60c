package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token, raw identifiers included.
	Ident
	// Lifetime represents a lifetime or loop label ('a).
	Lifetime

	KwAs        // as
	KwAsync     // async
	KwAwait     // await
	KwBreak     // break
	KwConst     // const
	KwContinue  // continue
	KwCrate     // crate
	KwDyn       // dyn
	KwElse      // else
	KwEnum      // enum
	KwExtern    // extern
	KwFalse     // false
	KwFn        // fn
	KwFor       // for
	KwIf        // if
	KwImpl      // impl
	KwIn        // in
	KwLet       // let
	KwLoop      // loop
	KwMatch     // match
	KwMod       // mod
	KwMove      // move
	KwMut       // mut
	KwPub       // pub
	KwRef       // ref
	KwReturn    // return
	KwSelfLower // self
	KwSelfUpper // Self
	KwStatic    // static
	KwStruct    // struct
	KwSuper     // super
	KwTrait     // trait
	KwTrue      // true
	KwType      // type
	KwUnsafe    // unsafe
	KwUse       // use
	KwWhere     // where
	KwWhile     // while

	// IntLit represents an integer literal, suffix included (1u8).
	IntLit
	// FloatLit represents a float literal, suffix included (1.0f32).
	FloatLit
	// CharLit represents 'x'.
	CharLit
	// ByteLit represents b'x'.
	ByteLit
	// StringLit represents "..." and c"...".
	StringLit
	// ByteStringLit represents b"...".
	ByteStringLit
	// RawStringLit represents r"..." / r#"..."# and their b/c prefixed forms.
	RawStringLit

	// DocLineOuter represents /// comments.
	DocLineOuter
	// DocLineInner represents //! comments.
	DocLineInner
	// DocBlockOuter represents /** */ comments.
	DocBlockOuter
	// DocBlockInner represents /*! */ comments.
	DocBlockInner

	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	Caret         // ^
	Bang          // !
	Amp           // &
	Pipe          // |
	AndAnd        // &&
	OrOr          // ||
	Shl           // <<
	Shr           // >>
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	CaretAssign   // ^=
	AmpAssign     // &=
	PipeAssign    // |=
	ShlAssign     // <<=
	ShrAssign     // >>=
	Assign        // =
	EqEq          // ==
	BangEq        // !=
	Gt            // >
	Lt            // <
	GtEq          // >=
	LtEq          // <=
	At            // @
	Underscore    // _
	Dot           // .
	DotDot        // ..
	DotDotDot     // ...
	DotDotEq      // ..=
	Comma         // ,
	Semicolon     // ;
	Colon         // :
	ColonColon    // ::
	Arrow         // ->
	FatArrow      // =>
	Pound         // #
	Dollar        // $
	Question      // ?
	Tilde         // ~
	LParen        // (
	RParen        // )
	LBrace        // {
	RBrace        // }
	LBracket      // [
	RBracket      // ]
)

var kindNames = [...]string{
	Invalid:       "Invalid",
	EOF:           "EOF",
	Ident:         "Ident",
	Lifetime:      "Lifetime",
	IntLit:        "IntLit",
	FloatLit:      "FloatLit",
	CharLit:       "CharLit",
	ByteLit:       "ByteLit",
	StringLit:     "StringLit",
	ByteStringLit: "ByteStringLit",
	RawStringLit:  "RawStringLit",
	DocLineOuter:  "DocLineOuter",
	DocLineInner:  "DocLineInner",
	DocBlockOuter: "DocBlockOuter",
	DocBlockInner: "DocBlockInner",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	if s, ok := kindText[k]; ok {
		return s
	}
	return "Kind(?)"
}

// Text returns the fixed spelling of keyword and punctuation kinds, or "" for
// kinds whose text varies.
func (k Kind) Text() string {
	return kindText[k]
}
