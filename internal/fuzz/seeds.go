package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
	maxFuzzInput = 1 << 16
)

// languageSeeds cover the constructs the bundler treats specially.
var languageSeeds = []string{
	"//! crate doc\n#![allow(unused)]\nuse std::io;\n/// Point\n#[derive(Debug)]\npub struct Point { pub x: i32 }\nmod geo;\nmod inner { pub fn id<T>(x: T) -> T { x } }\nfn main() { let s = \"a   b\\n\"; }\n",
	"fn f() -> impl Iterator<Item = u8> { (0..10).map(|x| x * 2) }\n",
	"impl<T: Clone> From<T> for Wrapper<T> where T: Default { fn from(t: T) -> Self { Self(t) } }\n",
	"fn g(x: &&u8) -> bool { match *x { &0 | &1 => true, n if n > &5 => { false } _ => -1 < 0 } }\n",
	"macro_rules! m { ($($x:expr),*) => { $(println!(\"{}\", $x);)* }; }\nconst N: usize = 1.max(2);\n",
	"pub(crate) static S: &[&str] = &[\"a\", r#\"b\"#]; fn t() { let x = y.0.1; let _ = 'l: loop { break 'l; }; }\n",
	"struct S<'a> { r: &'a str } fn h<T: ?Sized>() {} fn k() { a.b()?.c()?; }\n",
	"#[cfg(test)]\nmod tests {\n    #[test]\n    fn it_works() { assert_eq!(2 + 2, 4); }\n}\n",
	// сломанный ввод: парсер обязан вернуть ошибку, а не упасть
	"fn main( {}\n",
	"fn main() { \"open }\n",
	"mod m { fn f() {\n",
	"#[\n",
	"r#\"unterminated",
	"/* /* nested */\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

// addTestdataSeeds adds every *.rs file under the repository testdata
// directory, if there is one.
func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".rs" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
