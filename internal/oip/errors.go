package oip

import "errors"

// Ошибки согласованности дерева операций.
//
// Они означают, что форма дерева изменилась между вычислением позиции
// и её использованием. Это ошибка программы, а не сервера.
var (
	// ErrPositionNotFound — позиция отсутствует в таблице текущего дерева.
	ErrPositionNotFound = errors.New("position not found in operation tree")

	// ErrPositionOutOfRange — индекс ребёнка за пределами дерева.
	ErrPositionOutOfRange = errors.New("position out of range in operation tree")

	// ErrInconsistentTree — корень завершён, а активная позиция не корневая.
	ErrInconsistentTree = errors.New("operation tree is inconsistent")
)

// ErrMalformedStatus — строку статуса операции не удалось разобрать.
var ErrMalformedStatus = errors.New("malformed operation status")
