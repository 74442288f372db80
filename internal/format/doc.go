// Package format prints synthesized syntax nodes as source text and moves
// existing text between indentation levels.
//
// Назначение: сериализация новых узлов из overlay-дерева правок и
// переотступ перенесённого текста.
// Не делает: форматирование целого файла; неизменённый текст копируется как есть.
// Зависимости: internal/ast, internal/token, internal/parser (проверка round-trip).
package format
