// Package fuzztests houses Go fuzz harnesses for the bundling pipeline
// (source -> lexer -> parser -> render -> minify). They guard against
// panics, hangs and output that no longer parses.
//
// Назначение: прогонять произвольные байты через лексер, парсер, рендер и
// компрессор и проверять их инварианты.
//
// Не делает: разрешение модулей по файловой системе, запуск CLI.
package fuzztests
