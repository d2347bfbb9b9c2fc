package compliance

// boundedLog lista append-only con tope de tamaño; al superarlo descarta los más antiguos.
// No es segura para uso concurrente: el Monitor la protege con su mutex.
type boundedLog[T any] struct {
	items []T
	limit int
}

func newBoundedLog[T any](limit int) *boundedLog[T] {
	return &boundedLog[T]{limit: limit}
}

// append agrega v y devuelve cuántos elementos fueron desalojados.
func (l *boundedLog[T]) append(v T) int {
	l.items = append(l.items, v)
	if l.limit <= 0 || len(l.items) <= l.limit {
		return 0
	}
	evicted := len(l.items) - l.limit
	// El arreglo subyacente se libera cuando append vuelve a reservar memoria.
	var zero T
	for i := 0; i < evicted; i++ {
		l.items[i] = zero
	}
	l.items = l.items[evicted:]
	return evicted
}

// dropWhile descarta del inicio mientras pred sea verdadero (los elementos están en orden de llegada).
func (l *boundedLog[T]) dropWhile(pred func(T) bool) int {
	n := 0
	for n < len(l.items) && pred(l.items[n]) {
		n++
	}
	if n > 0 {
		l.items = append([]T(nil), l.items[n:]...)
	}
	return n
}

func (l *boundedLog[T]) len() int { return len(l.items) }

// snapshot copia superficial del contenido.
func (l *boundedLog[T]) snapshot() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}
