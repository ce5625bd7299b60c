package token

var kindText = map[Kind]string{
	KwAs: "as", KwAsync: "async", KwAwait: "await", KwBreak: "break",
	KwConst: "const", KwContinue: "continue", KwCrate: "crate", KwDyn: "dyn",
	KwElse: "else", KwEnum: "enum", KwExtern: "extern", KwFalse: "false",
	KwFn: "fn", KwFor: "for", KwIf: "if", KwImpl: "impl", KwIn: "in",
	KwLet: "let", KwLoop: "loop", KwMatch: "match", KwMod: "mod",
	KwMove: "move", KwMut: "mut", KwPub: "pub", KwRef: "ref",
	KwReturn: "return", KwSelfLower: "self", KwSelfUpper: "Self",
	KwStatic: "static", KwStruct: "struct", KwSuper: "super",
	KwTrait: "trait", KwTrue: "true", KwType: "type", KwUnsafe: "unsafe",
	KwUse: "use", KwWhere: "where", KwWhile: "while",

	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", Caret: "^",
	Bang: "!", Amp: "&", Pipe: "|", AndAnd: "&&", OrOr: "||", Shl: "<<",
	Shr: ">>", PlusAssign: "+=", MinusAssign: "-=", StarAssign: "*=",
	SlashAssign: "/=", PercentAssign: "%=", CaretAssign: "^=",
	AmpAssign: "&=", PipeAssign: "|=", ShlAssign: "<<=", ShrAssign: ">>=",
	Assign: "=", EqEq: "==", BangEq: "!=", Gt: ">", Lt: "<", GtEq: ">=",
	LtEq: "<=", At: "@", Underscore: "_", Dot: ".", DotDot: "..",
	DotDotDot: "...", DotDotEq: "..=", Comma: ",", Semicolon: ";",
	Colon: ":", ColonColon: "::", Arrow: "->", FatArrow: "=>", Pound: "#",
	Dollar: "$", Question: "?", Tilde: "~", LParen: "(", RParen: ")",
	LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
}
