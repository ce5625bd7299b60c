package token

var keywords = map[string]Kind{}

func init() {
	for k := KwAs; k <= KwWhile; k++ {
		keywords[kindText[k]] = k
	}
}

// LookupKeyword возвращает тип и bool если это строгое ключевое слово.
// Слабые ключевые слова (union, macro_rules, default) остаются Ident.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
