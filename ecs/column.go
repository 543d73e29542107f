package ecs

import "unsafe"

const chunkSize = 64

// column is a type-erased, append-only component column.
type column interface {
	append(item any) int
	ptr(index int) unsafe.Pointer
	get(index int) any
	len() int
}

// typedColumn stores components of type T in fixed-size chunks so that
// pointers handed out by ptr stay valid while the column grows.
type typedColumn[T any] struct {
	chunks []*[chunkSize]T
	n      int
}

func (c *typedColumn[T]) append(item any) int {
	var value T
	switch v := item.(type) {
	case *T:
		value = *v
	case T:
		value = v
	default:
		panic("ecs: component of wrong type appended to column")
	}

	index := c.n
	if index/chunkSize >= len(c.chunks) {
		c.chunks = append(c.chunks, new([chunkSize]T))
	}
	c.chunks[index/chunkSize][index%chunkSize] = value
	c.n++
	return index
}

func (c *typedColumn[T]) at(index int) *T {
	if index < 0 || index >= c.n {
		return nil
	}
	return &c.chunks[index/chunkSize][index%chunkSize]
}

func (c *typedColumn[T]) ptr(index int) unsafe.Pointer {
	p := c.at(index)
	if p == nil {
		return nil
	}
	return unsafe.Pointer(p)
}

func (c *typedColumn[T]) get(index int) any {
	p := c.at(index)
	if p == nil {
		return nil
	}
	return p
}

func (c *typedColumn[T]) len() int {
	return c.n
}
